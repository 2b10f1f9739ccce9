package server

import (
	"os"
	"time"
)

// Config holds server settings, read from the environment.
type Config struct {
	// Addr is the listen address.
	Addr string

	// MongoURI enables the Mongo-backed plan store when set. Without it
	// plans are held in memory and lost on restart.
	MongoURI string

	// MongoDatabase is the database holding the plans collection.
	MongoDatabase string

	// RedisAddr enables the shared Redis plan cache when set.
	RedisAddr string

	// RedisPassword authenticates the Redis connection when required.
	RedisPassword string

	// CacheDir enables the file-backed plan cache when set and Redis is
	// not configured.
	CacheDir string

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration
}

// ConfigFromEnv reads configuration from CHANNELHOP_* environment
// variables, applying defaults for anything unset.
func ConfigFromEnv() Config {
	return Config{
		Addr:            envOr("CHANNELHOP_ADDR", ":8080"),
		MongoURI:        os.Getenv("CHANNELHOP_MONGO_URI"),
		MongoDatabase:   envOr("CHANNELHOP_MONGO_DB", "channelhop"),
		RedisAddr:       os.Getenv("CHANNELHOP_REDIS_ADDR"),
		RedisPassword:   os.Getenv("CHANNELHOP_REDIS_PASSWORD"),
		CacheDir:        os.Getenv("CHANNELHOP_CACHE_DIR"),
		ShutdownTimeout: 10 * time.Second,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
