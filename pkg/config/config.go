package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers
const (
	StoreFirestore = "firestore"
	StoreMemory    = "memory"
)

type Config struct {
	Port                string
	LogMode             string
	StoreDriver         string
	GoogleProjectID     string
	FirebaseCredentials string
	EventsTopic         string
	EventsSubscription  string
	NewsTopic           string
	HandlerTimeout      time.Duration
	ReconcileInterval   time.Duration
	DatabaseURL         string
	PruneTokens         bool
	ServiceName         string
	Environment         string
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	handlerTimeout := getDuration("HANDLER_TIMEOUT", 60*time.Second)

	// Accept a full resource name (projects/p/topics/t) as well as the short form
	eventsTopic := getEnv("EVENTS_TOPIC", "firestore-changes")
	if parts := strings.Split(eventsTopic, "/"); len(parts) > 1 {
		eventsTopic = parts[len(parts)-1]
	}

	return &Config{
		Port:                getEnv("PORT", "8080"),
		LogMode:             getEnv("LOG_MODE", "dev"),
		StoreDriver:         strings.ToLower(getEnv("STORE_DRIVER", StoreFirestore)),
		GoogleProjectID:     getEnv("GOOGLE_PROJECT_ID", ""),
		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),
		EventsTopic:         eventsTopic,
		EventsSubscription:  getEnv("EVENTS_SUBSCRIPTION", eventsTopic+"-sub"), // Convention: topic-sub
		NewsTopic:           getEnv("NEWS_TOPIC", "news"),
		HandlerTimeout:      handlerTimeout,
		ReconcileInterval:   getDuration("RECONCILE_INTERVAL", 0), // Disabled unless set
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		PruneTokens:         getBool("PRUNE_UNREGISTERED_TOKENS", false),
		ServiceName:         getEnv("SERVICE_NAME", "eduapp-backend"),
		Environment:         getEnv("ENVIRONMENT", "development"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return defaultValue
	}
}
