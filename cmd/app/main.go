package main

import (
	"flag"
	"log"
	"os"

	"FinGauge/internal/di"
	"FinGauge/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	log.Printf("env=%s port=%d redis=%t refresh=%q",
		cfg.Environment, cfg.Server.Port, cfg.Redis.Enabled, cfg.Refresh.Spec)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	// Run blocks until SIGINT or SIGTERM.
	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
