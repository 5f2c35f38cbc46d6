package main

import (
	"log"
	"net"

	"github.com/joho/godotenv"

	"caseview/app"
	"caseview/internal"
	"caseview/internal/config"
	"caseview/ui"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.DefaultLogger
	service := app.NewResultsService(cfg.Results.DemoCases)

	// Optional initial connection; a failure leaves the viewer disconnected
	// with guidance on screen rather than refusing to start.
	switch {
	case cfg.Results.DemoMode:
		service.ConnectDemo()
	case cfg.Results.Root != "":
		if err := service.Connect(cfg.Results.Root); err != nil {
			logger.Warn("initial connect failed: %v", err)
		}
	}

	sessions := ui.NewSessionStore(cfg.Session.TTL)
	webApp, err := ui.NewApp(service, sessions)
	if err != nil {
		log.Fatalf("Failed to initialize UI: %v", err)
	}

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	if err := webApp.Serve(addr); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
