// Package main provides the discovery service binary: the name-to-address
// registry all rooms and players resolve each other through.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/roomnet/roomnet/internal/config"
	"github.com/roomnet/roomnet/internal/observability"
	"github.com/roomnet/roomnet/internal/registry"
	"github.com/roomnet/roomnet/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file; empty = built-in defaults")
	port := flag.Int("port", 0, "listening port override; 0 = use configuration")
	flag.Parse()

	ctx := context.Background()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
		cfg = loaded
	}
	if *port != 0 {
		cfg.Discovery.Port = *port
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting discovery service",
		zap.String("addr", cfg.Discovery.Addr()),
	)

	store := registry.NewStore()
	svc := registry.NewService(cfg.Discovery, store, logger)

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("discovery", svc)

	logger.Info("discovery service initialized",
		zap.Duration("startup", time.Since(start)),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("discovery service error", zap.Error(err))
	}
}
