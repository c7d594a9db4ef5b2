package main

import (
	"context"
	"os"

	log "github.com/sirupsen/logrus"

	"taskboard/internal/config"
	"taskboard/internal/server"
)

func main() {
	cfg, err := config.Load(config.New(), os.Getenv("TASKBOARD_CONFIG"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	cfg.ConfigureLogging()

	ctx := context.Background()
	s, err := server.Init(ctx, cfg)
	if err != nil {
		log.Fatalf("server initialization failed: %v", err)
	}

	log.Info("API endpoints:")
	for _, r := range s.Engine.Routes() {
		log.Infof("  %-6s %s", r.Method, r.Path)
	}

	if err := s.Run(ctx); err != nil {
		log.Fatal(err)
	}
}
