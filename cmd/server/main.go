package main

import (
	"net/http"

	"github.com/joho/godotenv"
	"github.com/lalit-mendapara/fittrack/config"
	"github.com/lalit-mendapara/fittrack/database"
	"github.com/lalit-mendapara/fittrack/jobs"
	"github.com/lalit-mendapara/fittrack/logger"
	"github.com/lalit-mendapara/fittrack/routes"
)

func main() {
	// Initialize Structured Logger
	logger.Init()

	// Load .env
	if err := godotenv.Load(); err != nil {
		logger.Warn("No .env file found, using system env vars")
	}

	// Initialize DB
	database.InitDB()

	// Close out expired campaigns in the background
	jobs.StartSweeper(database.DB)

	// Setup Router
	r := routes.SetupRouter()

	port := config.GetEnv("PORT", "8080")
	logger.Info("Server starting", "port", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		logger.Error("Server failed to start", "error", err)
	}
}
