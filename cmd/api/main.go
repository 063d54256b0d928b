package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"library-backend/pkg/logger"
)

func main() {
	// ========================================
	// LOAD ENVIRONMENT VARIABLES
	// ========================================
	// .env is for development/local. Production uses system
	// environment variables.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// ========================================
	// SET GIN MODE
	// ========================================
	env := getEnv("APP_ENV", "development")
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	logger.Init(env)

	log.Printf("Environment: %s", env)

	// ========================================
	// START SERVER
	// ========================================
	// main() stays a thin entry point, Serve() owns the lifecycle.
	Serve()
}

// getEnv reads an environment variable with a fallback default.
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
