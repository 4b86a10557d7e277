package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/achievemate/gradeflow/cmd"
	"github.com/achievemate/gradeflow/internal/config"
	"github.com/achievemate/gradeflow/internal/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Commands load their own configuration; here we only need the logging
	// settings, falling back to defaults when the config is incomplete.
	cfg, err := config.Load()
	if err != nil {
		if err := logger.Setup(logger.DefaultConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	} else {
		if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	}

	mainLog := logger.WithComponent("main")
	mainLog.Info().Msg("Starting Gradeflow")

	cmd.Execute()

	mainLog.Info().Msg("Gradeflow shutdown")
	os.Exit(0)
}
