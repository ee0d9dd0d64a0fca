package config

import (
	"os"
	"strconv"
)

// DefaultOutputName is the file written next to the input.
const DefaultOutputName = "image_compressed.jpg"

// Config holds application configuration
type Config struct {
	Dir         string
	Input       string
	Output      string
	LogLevel    string
	MetricsFile string
	NoProgress  bool
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	cfg := &Config{
		Dir:         getEnv("IMGSHRINK_DIR", "."),
		Input:       getEnv("IMGSHRINK_INPUT", ""),
		Output:      getEnv("IMGSHRINK_OUTPUT", ""),
		LogLevel:    getEnv("IMGSHRINK_LOG_LEVEL", "info"),
		MetricsFile: getEnv("IMGSHRINK_METRICS_FILE", ""),
		NoProgress:  getEnvBool("IMGSHRINK_NO_PROGRESS", false),
	}
	return cfg
}

func getEnv(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultValue
}
