package config

import (
	"os"
	"time"
)

type Config struct {
	DatabaseURL string
	HTTPAddr    string
	LogLevel    string
	Env         string // dev|prod
	SentryDSN   string
	JWTSecret   string
	RedisAddr   string
	StorageDir  string
	Location    *time.Location
}

func Load() (*Config, error) {
	tz := getenv("TZ", "Europe/Paris")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.Local
	}

	cfg := &Config{
		DatabaseURL: mustEnv("DATABASE_URL"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		Env:         getenv("ENV", "dev"),
		SentryDSN:   os.Getenv("SENTRY_DSN"),
		JWTSecret:   mustEnv("JWT_SECRET"),
		RedisAddr:   getenv("REDIS_ADDR", "localhost:6379"),
		StorageDir:  getenv("STORAGE_DIR", "./data/blobs"),
		Location:    loc,
	}
	return cfg, nil
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("required env " + k + " is empty")
	}
	return v
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
