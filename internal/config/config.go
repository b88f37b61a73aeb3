package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string

	StoreType          string // memory | mongo | firestore
	MongoURI           string
	MongoDB            string
	FirestoreProjectID string

	JWTSecret string

	BidWindowSweepInterval time.Duration
	SLASweepInterval       time.Duration
	SLAPolicyPath          string
	WeightsPath            string

	WebhookURL        string
	MessageGatewayURL string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		Environment:        getEnv("ENVIRONMENT", "development"),
		StoreType:          getEnv("STORE_TYPE", "memory"),
		MongoURI:           getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:            getEnv("MONGO_DB", "pttp"),
		FirestoreProjectID: getEnv("FIRESTORE_PROJECT_ID", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		SLAPolicyPath:      getEnv("SLA_POLICY_PATH", ""),
		WeightsPath:        getEnv("WEIGHTS_PATH", ""),
		WebhookURL:         getEnv("WEBHOOK_URL", ""),
		MessageGatewayURL:  getEnv("MESSAGE_GATEWAY_URL", ""),
		ReadTimeout:        10 * time.Second,
		WriteTimeout:       20 * time.Second,
		IdleTimeout:        60 * time.Second,
	}

	var err error
	cfg.BidWindowSweepInterval, err = getDuration("BID_WINDOW_SWEEP_INTERVAL", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.SLASweepInterval, err = getDuration("SLA_SWEEP_INTERVAL", time.Hour)
	if err != nil {
		return nil, err
	}

	switch cfg.StoreType {
	case "memory", "mongo", "firestore":
	default:
		return nil, fmt.Errorf("unsupported STORE_TYPE %q", cfg.StoreType)
	}
	if cfg.Environment == "production" {
		if cfg.JWTSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		if cfg.StoreType == "firestore" && cfg.FirestoreProjectID == "" {
			return nil, fmt.Errorf("FIRESTORE_PROJECT_ID is required in production with firestore store")
		}
	}

	return cfg, nil
}

func (c *Config) Development() bool {
	return c.Environment != "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
