package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "eduapp-backend/cmd/api"
	courseRepo "eduapp-backend/internal/course/repository"
	courseScheduler "eduapp-backend/internal/course/scheduler"
	courseUsecase "eduapp-backend/internal/course/usecase"
	dispatchDelivery "eduapp-backend/internal/dispatchlog/delivery"
	dispatchRepo "eduapp-backend/internal/dispatchlog/repository"
	"eduapp-backend/internal/functions"
	newsRepo "eduapp-backend/internal/news/repository"
	newsUsecase "eduapp-backend/internal/news/usecase"
	"eduapp-backend/internal/notification"
	"eduapp-backend/internal/trigger"
	userRepo "eduapp-backend/internal/user/repository"
	"eduapp-backend/pkg/config"
	"eduapp-backend/pkg/database"
	"eduapp-backend/pkg/docstore"
	"eduapp-backend/pkg/fcm"
	"eduapp-backend/pkg/firebaseapp"
	"eduapp-backend/pkg/logger"
	"eduapp-backend/pkg/telemetry"

	firebase "firebase.google.com/go/v4"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing := telemetry.Init(ctx, log, telemetry.Config{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
	})
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	bus := trigger.NewBus(log, trigger.WithTimeout(cfg.HandlerTimeout))

	// Firebase app backs both the document store and FCM
	var app *firebase.App
	if cfg.StoreDriver == config.StoreFirestore || cfg.FirebaseCredentials != "" {
		app, err = firebaseapp.New(ctx, cfg.GoogleProjectID, cfg.FirebaseCredentials)
		if err != nil {
			log.Fatal("failed to initialize firebase", "error", err)
		}
	}

	// Initialize document store
	var store docstore.Store
	var localStore *docstore.Memory
	switch cfg.StoreDriver {
	case config.StoreMemory:
		mem := docstore.NewMemory()
		bus.Attach(mem)
		store = mem
		localStore = mem
		log.Warn("using in-memory document store, data is lost on exit")
	case config.StoreFirestore:
		fs, err := docstore.NewFirestore(ctx, app)
		if err != nil {
			log.Fatal("failed to initialize firestore", "error", err)
		}
		defer fs.Close()
		store = fs
	default:
		log.Fatal("unknown store driver", "driver", cfg.StoreDriver)
	}

	// Initialize FCM Client (falls back to logging when unavailable)
	var dispatcher notification.Dispatcher = notification.NewLogDispatcher(log)
	if app != nil {
		fcmClient, err := fcm.NewClient(ctx, app, log)
		if err != nil {
			log.Warn("failed to initialize FCM client, push notifications are only logged", "error", err)
		} else {
			dispatcher = fcmClient
		}
	}

	// Initialize repositories (dependency injection)
	tokenRepository := userRepo.NewTokenRepository(store)
	commentRepository := newsRepo.NewCommentRepository(store)
	courseRepository := courseRepo.NewCourseRepository(store)

	notifOpts := []notification.Option{}
	if cfg.PruneTokens {
		notifOpts = append(notifOpts, notification.WithTokenPruner(tokenRepository))
	}

	// Optional dispatch log
	var dispatchHandler *dispatchDelivery.DispatchHandler
	if cfg.DatabaseURL != "" {
		db, err := database.NewPostgresConnection(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("failed to connect to database", "error", err)
		}
		records, err := dispatchRepo.NewGormDispatchRepository(db)
		if err != nil {
			log.Fatal("failed to migrate dispatch log", "error", err)
		}
		notifOpts = append(notifOpts, notification.WithDispatchLog(records))
		dispatchHandler = dispatchDelivery.NewDispatchHandler(records)
		log.Info("dispatch log enabled")
	}

	notifService := notification.NewService(dispatcher, log, notifOpts...)

	// Initialize use cases (dependency injection)
	counterService := courseUsecase.NewCounterService(courseRepository, log)
	if err := functions.Register(bus, functions.Deps{
		News:     newsUsecase.NewNewsNotifier(notifService, cfg.NewsTopic, log),
		Replies:  newsUsecase.NewReplyNotifier(commentRepository, tokenRepository, notifService, log),
		Counters: counterService,
		Log:      log,
	}); err != nil {
		log.Fatal("failed to register triggers", "error", err)
	}

	// Periodic counter sweep
	reconciler := courseScheduler.NewCounterReconciler(courseRepository, counterService, cfg.ReconcileInterval, log)
	reconciler.Start(ctx)
	defer reconciler.Stop()

	// Pull subscription for change events. Only start if project ID is configured
	if cfg.GoogleProjectID != "" {
		sub, err := trigger.NewSubscriber(ctx, cfg.GoogleProjectID, cfg.EventsTopic, cfg.EventsSubscription, bus, log, firebaseapp.ClientOptions(cfg.FirebaseCredentials)...)
		if err != nil {
			log.Error("failed to initialize event subscriber, only push delivery is available", "error", err)
		} else {
			defer sub.Close()
			go func() {
				if err := sub.Start(ctx); err != nil {
					log.Error("event subscriber stopped", "error", err)
				}
			}()
		}
	} else {
		log.Warn("GOOGLE_PROJECT_ID not configured, event subscriber disabled")
	}

	// Start server
	handler := api.NewHandler(bus, counterService, dispatchHandler, log)
	if localStore != nil {
		handler.SetLocalStore(localStore)
	}
	srv := handler.Server(":" + cfg.Port)
	go func() {
		log.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error("server shutdown failed", "error", err)
	}
}
