// Package yolo provides a client for an external YOLO inference service.
package yolo

import (
	"os"
	"time"
)

// Config holds configuration for the YOLO inference service client.
type Config struct {
	BaseURL string        // Base URL of the inference service (e.g., "http://localhost:8500")
	Timeout time.Duration // HTTP request timeout
}

// LoadConfig loads inference service configuration from environment variables.
func LoadConfig() Config {
	return Config{
		BaseURL: os.Getenv("YOLO_BASE_URL"),
		Timeout: 30 * time.Second,
	}
}
