package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Services  ServicesConfig
	Messaging MessagingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
}

type DatabaseConfig struct {
	Connection string
}

// ServicesConfig addresses the surrounding document and AI services the
// dispatcher calls out to.
type ServicesConfig struct {
	DocAddress string
	AiAddress  string
}

type MessagingConfig struct {
	NatsURL string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Services: ServicesConfig{
			DocAddress: getEnv("DOC_SERVICE_ADDRESS", "http://localhost:8001"),
			AiAddress:  getEnv("AI_SERVICE_ADDRESS", "http://localhost:8002"),
		},
		Messaging: MessagingConfig{
			NatsURL: getEnv("NATS_URL", "nats://localhost:4222"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
