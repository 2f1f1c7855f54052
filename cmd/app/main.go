package main

import (
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/notiabet/courtedge/internal/di"
	"github.com/notiabet/courtedge/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s season=%s sportsbook=%s", cfg.Environment, cfg.Stats.Season, cfg.Odds.Sportsbook)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
