package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/JaimeStill/unpdf/internal/config"
)

func main() {
	configPath := flag.String("config", "", "configuration file (default config.toml when present)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("config load failed: ", err)
	}

	if err := cfg.Finalize(); err != nil {
		log.Fatal("config finalize failed: ", err)
	}

	svc, err := NewService(cfg)
	if err != nil {
		log.Fatal("service init failed: ", err)
	}

	if err := svc.Start(); err != nil {
		log.Fatal("service start failed: ", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeoutDuration())
	defer cancel()

	if err := svc.Shutdown(shutdownCtx); err != nil {
		log.Fatal("shutdown failed: ", err)
	}

	log.Println("service stopped gracefully")
}
