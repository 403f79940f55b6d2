// Package main provides the room server binary. Each process owns exactly
// one room out of the shared world file and serves all player interaction
// for it.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/roomnet/roomnet/internal/config"
	"github.com/roomnet/roomnet/internal/discovery"
	"github.com/roomnet/roomnet/internal/observability"
	"github.com/roomnet/roomnet/internal/room"
	"github.com/roomnet/roomnet/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file; empty = built-in defaults")
	worldFile := flag.String("world", "", "path to world YAML file; empty = use configuration")
	roomName := flag.String("room", "", "name of the room this process serves")
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
	if *worldFile != "" {
		cfg.Room.WorldFile = *worldFile
	}
	if *roomName == "" {
		log.Fatal("missing required flag: -room")
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	worldStart := time.Now()
	defs, err := room.LoadWorldFromFile(cfg.Room.WorldFile)
	if err != nil {
		logger.Fatal("loading world file", zap.Error(err))
	}
	def, err := room.FindRoom(defs, *roomName)
	if err != nil {
		logger.Fatal("selecting room", zap.Error(err))
	}
	logger.Info("world loaded",
		zap.String("world_file", cfg.Room.WorldFile),
		zap.Int("rooms", len(defs)),
		zap.String("room", def.Name),
		zap.Int("items", len(def.Items)),
		zap.Int("neighbors", len(def.Neighbors)),
		zap.Duration("elapsed", time.Since(worldStart)),
	)

	disc := discovery.NewClient(cfg.Discovery, logger)
	srv := room.NewServer(cfg.Room, def, disc, logger)

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("room", srv)

	logger.Info("room server initialized",
		zap.String("discovery", cfg.Discovery.Addr()),
		zap.Duration("startup", time.Since(start)),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("room server error", zap.Error(err))
	}
}
