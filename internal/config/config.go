// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string // PORTAL_DATABASE_URL (required)
	HTTPAddr    string // PORTAL_HTTP_ADDR (default ":8080")
	NATSURL     string // PORTAL_NATS_URL (optional, empty = no change feed)
	JWTSecret   string // PORTAL_JWT_SECRET (required)
	JWTIssuer   string // PORTAL_JWT_ISSUER (default "shirkaty")
	TokenTTL    time.Duration // PORTAL_TOKEN_TTL (default 24h)

	// Blob storage settings for document files.
	BlobS3Bucket   string // PORTAL_BLOB_S3_BUCKET (enables S3 when set)
	BlobS3Endpoint string // PORTAL_BLOB_S3_ENDPOINT (custom endpoint for MinIO)
	BlobS3Region   string // PORTAL_BLOB_S3_REGION (default "eu-west-2")
	BlobS3Prefix   string // PORTAL_BLOB_S3_PREFIX (default "documents/")
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present, without overriding real env vars.
func Load() (*Config, error) {
	_ = godotenv.Load()

	c := &Config{
		DatabaseURL:    os.Getenv("PORTAL_DATABASE_URL"),
		HTTPAddr:       envOrDefault("PORTAL_HTTP_ADDR", ":8080"),
		NATSURL:        os.Getenv("PORTAL_NATS_URL"),
		JWTSecret:      os.Getenv("PORTAL_JWT_SECRET"),
		JWTIssuer:      envOrDefault("PORTAL_JWT_ISSUER", "shirkaty"),
		BlobS3Bucket:   os.Getenv("PORTAL_BLOB_S3_BUCKET"),
		BlobS3Endpoint: os.Getenv("PORTAL_BLOB_S3_ENDPOINT"),
		BlobS3Region:   envOrDefault("PORTAL_BLOB_S3_REGION", "eu-west-2"),
		BlobS3Prefix:   envOrDefault("PORTAL_BLOB_S3_PREFIX", "documents/"),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("PORTAL_DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return nil, fmt.Errorf("PORTAL_JWT_SECRET is required")
	}

	ttlStr := envOrDefault("PORTAL_TOKEN_TTL", "24h")
	d, err := time.ParseDuration(ttlStr)
	if err != nil {
		return nil, fmt.Errorf("PORTAL_TOKEN_TTL: %w", err)
	}
	c.TokenTTL = d

	return c, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
