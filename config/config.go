package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration parameters of the application.
type Config struct {
	DatabaseURL    string
	MigrationsPath string
	JWTSecretKey   string
	ServerPort     int

	// Prefix for the topics domain events are published to.
	EventsTopicPrefix string

	// Optional S3-compatible storage for tournament banners.
	// Banner uploads are disabled when these are not set.
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// Load reads configuration from environment variables,
// optionally picking up a .env file for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}

	topicPrefix := os.Getenv("EVENTS_TOPIC_PREFIX")
	if topicPrefix == "" {
		topicPrefix = "pickuphub"
	}

	cfg := &Config{
		DatabaseURL:       dbURL,
		MigrationsPath:    migrationsPath,
		JWTSecretKey:      jwtKey,
		ServerPort:        port,
		EventsTopicPrefix: topicPrefix,

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	return cfg, nil
}

// BannerStorageConfigured reports whether all R2 settings required
// for banner uploads are present.
func (c *Config) BannerStorageConfigured() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" &&
		c.R2SecretAccessKey != "" && c.R2BucketName != "" &&
		c.R2PublicBaseURL != ""
}
