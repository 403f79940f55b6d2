// Package main provides the terminal player client. It resolves a starting
// room through discovery, joins it, and relays commands and room broadcasts
// between the terminal and the current room server.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/roomnet/roomnet/internal/client"
	"github.com/roomnet/roomnet/internal/config"
	"github.com/roomnet/roomnet/internal/discovery"
	"github.com/roomnet/roomnet/internal/observability"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file; empty = built-in defaults")
	name := flag.String("name", "", "player display name")
	startRoom := flag.String("room", "", "name of the room to join")
	flag.Parse()

	if *name == "" {
		log.Fatal("missing required flag: -name")
	}
	if *startRoom == "" {
		log.Fatal("missing required flag: -room")
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
		cfg = loaded
	} else {
		// Keep the terminal quiet unless the player asked for logs.
		cfg.Logging.Level = "warn"
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	player := client.NewPlayer(*name)
	disc := discovery.NewClient(cfg.Discovery, logger)
	sess := client.NewSession(player, disc, os.Stdout, logger)

	if err := sess.Connect(*startRoom); err != nil {
		logger.Fatal("connecting to room",
			zap.String("room", *startRoom),
			zap.Error(err),
		)
	}
	fmt.Printf("Welcome, %s. You are in %s.\n", *name, *startRoom)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Printf("\nDisconnecting %s ...\n", player.Name())
		sess.Close()
	}()

	if err := sess.Run(os.Stdin); err != nil {
		logger.Fatal("session error", zap.Error(err))
	}
}
