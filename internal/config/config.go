package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds the runtime configuration, sourced from the environment.
type Config struct {
	Port          string
	MongoURI      string
	MongoDatabase string
	LogFormat     string

	MQTTBroker      string
	MQTTClientID    string
	MQTTTopicPrefix string

	RestoreAvailabilityOnCancel bool
	SweepInterval               time.Duration

	RateLimitRequests      int
	RateLimitWindowSeconds int
}

// Load reads configuration from a .env file (if present) and the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using environment variables")
	}

	return &Config{
		Port:          getEnv("PORT", "8080"),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "car_rental"),
		LogFormat:     getEnv("LOG_FORMAT", "text"),

		MQTTBroker:      getEnv("MQTT_BROKER", ""),
		MQTTClientID:    getEnv("MQTT_CLIENT_ID", "car-rental-api"),
		MQTTTopicPrefix: getEnv("MQTT_TOPIC_PREFIX", "rental/bookings"),

		RestoreAvailabilityOnCancel: getBool("RESTORE_AVAILABILITY_ON_CANCEL", true),
		SweepInterval:               getDuration("SWEEP_INTERVAL", time.Hour),

		RateLimitRequests:      getInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindowSeconds: getInt("RATE_LIMIT_WINDOW_SECONDS", 60),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.WithField("key", key).Warnf("Invalid boolean %q, using default", v)
		return fallback
	}
	return b
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.WithField("key", key).Warnf("Invalid integer %q, using default", v)
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.WithField("key", key).Warnf("Invalid duration %q, using default", v)
		return fallback
	}
	return d
}
