package main

import (
	"log"

	"go.uber.org/zap"

	"github.com/formic/formic/formic"
	"github.com/formic/formic/formic/config"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialise logger: %v", err)
	}
	defer logger.Sync()

	cfg := config.Load()
	srv, err := formic.NewService(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialise service", zap.Error(err))
	}

	if err := srv.Start(); err != nil {
		logger.Fatal("failed to start service", zap.Error(err))
	}
	srv.WaitForInterrupt()
	srv.Stop()
}
