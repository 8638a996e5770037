package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"tonehub/internal/config"
	"tonehub/internal/daemonrun"
)

func main() {
	configPath := flag.String("config", "", "Configuration file path")
	diagnostic := flag.Bool("diagnostic", false, "Also write a debug JSON log")
	flag.Parse()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	err = daemonrun.Run(context.Background(), cfg, daemonrun.Options{Diagnostic: *diagnostic})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("tonehubd: %v", err)
	}
}
