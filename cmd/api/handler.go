package api

import (
	"context"
	"errors"
	"net/http"

	coursedomain "eduapp-backend/internal/course/domain"
	dispatchDelivery "eduapp-backend/internal/dispatchlog/delivery"
	"eduapp-backend/internal/trigger"
	"eduapp-backend/pkg/docstore"
	"eduapp-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// CourseRecounter refreshes both counters of a course on demand
type CourseRecounter interface {
	Recount(ctx context.Context, courseID string) (*coursedomain.Course, error)
}

type Handler struct {
	bus             *trigger.Bus
	counters        CourseRecounter
	dispatchHandler *dispatchDelivery.DispatchHandler
	localStore      *docstore.Memory
	log             *logger.Logger
}

// NewHandler wires the HTTP surface. dispatchHandler may be nil when the
// dispatch log is disabled.
func NewHandler(bus *trigger.Bus, counters CourseRecounter, dispatchHandler *dispatchDelivery.DispatchHandler, log *logger.Logger) *Handler {
	return &Handler{
		bus:             bus,
		counters:        counters,
		dispatchHandler: dispatchHandler,
		log:             log,
	}
}

// SetLocalStore switches event ingress to local mode: posted events are
// written to store and its change feed, attached to the bus, runs the
// triggers.
func (h *Handler) SetLocalStore(store *docstore.Memory) {
	h.localStore = store
}

// Engine builds the gin engine with middleware and routes
func (h *Handler) Engine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h)
	return r
}

// Server returns an http.Server for addr so callers can shut it down
func (h *Handler) Server(addr string) *http.Server {
	return &http.Server{Addr: addr, Handler: h.Engine()}
}

type resultView struct {
	Trigger    string         `json:"trigger"`
	Path       string         `json:"path"`
	Params     trigger.Params `json:"params,omitempty"`
	OK         bool           `json:"ok"`
	Error      string         `json:"error,omitempty"`
	DurationMs int64          `json:"duration_ms"`
}

// ReceiveEvent accepts a Pub/Sub push envelope or a raw change event and
// runs the matching triggers. In local mode the event is applied to the
// memory store first. Failed triggers are reported in the body;
// the status stays 200 so the sender does not redeliver.
// POST /api/events
func (h *Handler) ReceiveEvent(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	evt, err := trigger.DecodeRequest(body)
	if err != nil {
		h.log.Warn("rejected undecodable event", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var results []trigger.Result
	if h.localStore != nil {
		ctx, collected := trigger.CollectResults(c.Request.Context())
		if err := h.localStore.Apply(ctx, evt.Change()); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		results = collected()
	} else {
		results = h.bus.Dispatch(c.Request.Context(), evt)
	}

	views := make([]resultView, 0, len(results))
	for _, r := range results {
		v := resultView{
			Trigger:    r.Trigger,
			Path:       r.Path,
			Params:     r.Params,
			OK:         r.OK(),
			DurationMs: r.Duration.Milliseconds(),
		}
		if r.Err != nil {
			v.Error = r.Err.Error()
		}
		views = append(views, v)
	}

	c.JSON(http.StatusOK, gin.H{
		"event_id": evt.ID,
		"type":     evt.Type,
		"path":     evt.Path,
		"results":  views,
	})
}

// RecountCourse recomputes moduleCount and lessonCount of one course
// POST /api/courses/:id/recount
func (h *Handler) RecountCourse(c *gin.Context) {
	courseID := c.Param("id")

	course, err := h.counters.Recount(c.Request.Context(), courseID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
			return
		}
		h.log.Error("course recount failed", "course_id", courseID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, course)
}

// ListTriggers returns the registered trigger bindings
// GET /api/triggers
func (h *Handler) ListTriggers(c *gin.Context) {
	bindings := h.bus.Triggers()
	out := make([]gin.H, 0, len(bindings))
	for _, t := range bindings {
		out = append(out, gin.H{
			"name":    t.Name,
			"pattern": t.Pattern.String(),
			"kind":    t.Kind.String(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"triggers": out})
}
