package config

import (
	"log"
	"os"
)

const (
	defaultDBPath = "./dev.db"
	defaultPort   = "8080"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	AdminEmail    string
	AdminPassword string
	JWTSecret     string
	DBPath        string
	Port          string

	// Optional S3-compatible image storage. Uploads are disabled when Bucket
	// is empty; everything else keeps working without it.
	BlobBucket    string
	BlobRegion    string
	BlobEndpoint  string
	BlobPathStyle bool
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// Best-effort: load local dev environment variables.
	// We don't fail if the file is missing; production should use real env injection.
	_ = loadDotEnv(".env")

	cfg := Config{
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		DBPath:        os.Getenv("DB_PATH"),
		Port:          os.Getenv("PORT"),
		BlobBucket:    os.Getenv("BLOB_S3_BUCKET"),
		BlobRegion:    os.Getenv("BLOB_S3_REGION"),
		BlobEndpoint:  os.Getenv("BLOB_S3_ENDPOINT"),
		BlobPathStyle: os.Getenv("BLOB_S3_PATH_STYLE") == "true",
	}

	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}

	if cfg.JWTSecret == "" {
		log.Print("warning: JWT_SECRET is not set")
	}
	if cfg.AdminEmail == "" {
		log.Print("warning: ADMIN_EMAIL is not set")
	}
	if cfg.AdminPassword == "" {
		log.Print("warning: ADMIN_PASSWORD is not set")
	}
	if cfg.BlobBucket == "" {
		log.Print("warning: BLOB_S3_BUCKET is not set, image uploads are disabled")
	}

	return cfg
}

// IsDev reports whether the process runs in development mode. Migrations are
// applied automatically only in dev; production deploys run them explicitly.
func (c Config) IsDev() bool {
	return os.Getenv("APP_ENV") != "production"
}
