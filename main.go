package main

import (
	"log"
	"os"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	"cxc/cmd"
	"cxc/internal/config"
	"cxc/internal/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	logConfig := logger.DefaultConfig()
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Warning: Could not load configuration: %v", err)
	} else {
		logConfig = cfg.GetLoggerConfig()
	}

	closeLog, err := logger.Setup(logConfig)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	mainLog := logger.WithComponent("main")
	mainLog.Debug().Msg("Starting cxc")

	code := cmd.Execute()

	mainLog.Debug().Int("exit_code", code).Msg("cxc finished")
	if err := closeLog(); err != nil {
		log.Printf("Warning: Could not close log output: %v", err)
	}
	os.Exit(code)
}
