package utils

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv loads .env (if present) and returns the required variables, failing
// on the first one that is missing or empty.
func LoadEnv(requiredVars []string) (map[string]string, error) {
	_ = godotenv.Load()

	envVars := make(map[string]string)

	for _, key := range requiredVars {
		value := os.Getenv(key)
		if value == "" {
			return nil, fmt.Errorf("missing required environment variable: %s", key)
		}
		envVars[key] = value
	}

	return envVars, nil
}

// GetEnv returns an optional variable or fallback when it is unset.
func GetEnv(key, fallback string) string {
	_ = godotenv.Load()

	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
