package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env             string
	Port            string
	PublicBaseURL   string
	DatabaseURL     string
	SessionSecret   string
	SessionTTL      time.Duration
	PageSize        int
	MinIOEndpoint   string
	MinIOAccessKey  string
	MinIOSecretKey  string
	MinIOUseSSL     bool
	MinIOBucket     string
	MinIOPublicURL  string
	ImageMaxBytes   int64
	ImageMaxCount   int
	GeocoderBaseURL string
	GeocoderAPIKey  string
	GeocoderRPS     int
	RedisAddr       string
	RedisPassword   string
	GeocodeCacheTTL time.Duration
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	sessionTTL := 7 * 24 * time.Hour
	if v, err := time.ParseDuration(getenv("SESSION_TTL", "168h")); err == nil && v > 0 {
		sessionTTL = v
	}

	cacheTTL := 24 * time.Hour
	if v, err := time.ParseDuration(getenv("GEOCODE_CACHE_TTL", "24h")); err == nil && v > 0 {
		cacheTTL = v
	}

	pageSize := 12
	if v, err := strconv.Atoi(getenv("PAGE_SIZE", "12")); err == nil && v > 0 {
		pageSize = v
	}

	imageMax := int64(5 * 1024 * 1024)
	if v, err := strconv.ParseInt(getenv("IMAGE_MAX_BYTES", "5242880"), 10, 64); err == nil && v > 0 {
		imageMax = v
	}

	imageCount := 10
	if v, err := strconv.Atoi(getenv("IMAGE_MAX_COUNT", "10")); err == nil && v > 0 {
		imageCount = v
	}

	rps := 5
	if v, err := strconv.Atoi(getenv("GEOCODER_RPS", "5")); err == nil && v > 0 {
		rps = v
	}

	return Config{
		Env:             getenv("APP_ENV", "production"),
		Port:            getenv("PORT", "3000"),
		PublicBaseURL:   getenv("PUBLIC_BASE_URL", ""),
		DatabaseURL:     must("DATABASE_URL"),
		SessionSecret:   must("SESSION_SECRET"),
		SessionTTL:      sessionTTL,
		PageSize:        pageSize,
		MinIOEndpoint:   must("MINIO_ENDPOINT"),
		MinIOAccessKey:  must("MINIO_ACCESS_KEY"),
		MinIOSecretKey:  must("MINIO_SECRET_KEY"),
		MinIOUseSSL:     getenv("MINIO_USE_SSL", "false") == "true",
		MinIOBucket:     getenv("MINIO_BUCKET", "yelpcamp-images"),
		MinIOPublicURL:  getenv("MINIO_PUBLIC_URL", ""),
		ImageMaxBytes:   imageMax,
		ImageMaxCount:   imageCount,
		GeocoderBaseURL: getenv("GEOCODER_BASE_URL", "https://api.maptiler.com"),
		GeocoderAPIKey:  must("GEOCODER_API_KEY"),
		GeocoderRPS:     rps,
		RedisAddr:       getenv("REDIS_ADDR", ""),
		RedisPassword:   getenv("REDIS_PASSWORD", ""),
		GeocodeCacheTTL: cacheTTL,
	}
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
