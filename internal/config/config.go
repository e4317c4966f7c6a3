package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const DefaultExternalAPIBaseURL = "https://echo-serv.tbxnet.com/v1/secret"

type Config struct {
	ExternalAPIBaseURL string
	ExternalAPIKey     string
	APIPort            string
	NumFetchWorkers    int
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	LogLevel           string
	LogDevelopment     bool
}

func New() (*Config, error) {
	apiKey := os.Getenv("EXTERNAL_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("EXTERNAL_API_KEY environment variable is not set")
	}

	cfg := &Config{
		ExternalAPIBaseURL: getEnv("EXTERNAL_API_BASE_URL", DefaultExternalAPIBaseURL),
		ExternalAPIKey:     apiKey,
		APIPort:            getEnv("API_PORT", "8080"),
		NumFetchWorkers:    8,
		RequestTimeout:     10 * time.Second,
		ShutdownTimeout:    5 * time.Second,
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}

	var err error
	cfg.NumFetchWorkers, err = getEnvAsInt("NUM_FETCH_WORKERS", cfg.NumFetchWorkers)
	if err != nil {
		return nil, err
	}
	if cfg.NumFetchWorkers < 1 {
		return nil, fmt.Errorf("invalid value for NUM_FETCH_WORKERS: must be at least 1, got %d", cfg.NumFetchWorkers)
	}

	cfg.RequestTimeout, err = getEnvAsDuration("REQUEST_TIMEOUT", cfg.RequestTimeout)
	if err != nil {
		return nil, err
	}

	cfg.ShutdownTimeout, err = getEnvAsDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return nil, err
	}

	cfg.LogDevelopment, err = getEnvAsBool("LOG_DEVELOPMENT", false)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: expected an integer, got '%s'", key, valueStr)
	}

	return value, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("invalid value for %s: expected a positive duration, got '%s'", key, valueStr)
	}

	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return false, fmt.Errorf("invalid value for %s: expected a boolean, got '%s'", key, valueStr)
	}

	return value, nil
}
