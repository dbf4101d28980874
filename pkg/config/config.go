package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort       string
	FirestoreProject string
	RedisURL         string
	Environment      string
	WSSendBufferSize int
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		FirestoreProject: getEnv("FIRESTORE_PROJECT_ID", ""),
		RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379/0"),
		Environment:      getEnv("ENVIRONMENT", "development"),
		WSSendBufferSize: getEnvAsInt("WS_SEND_BUFFER_SIZE", 256),
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.Atoi(value)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}
