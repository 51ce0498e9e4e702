package main

import (
	"log"

	"github.com/nebulamart/storefront/internal/config"
	"github.com/nebulamart/storefront/internal/devserver"
	"github.com/nebulamart/storefront/internal/logging"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.LOG_LEVEL)

	db, err := devserver.OpenDB(cfg)
	if err != nil {
		logger.Error("open database", "error", err)
		return
	}

	srv := devserver.New(cfg, db, logger)

	if cfg.ES_URL != "" {
		es, err := devserver.NewESClient(cfg)
		if err != nil {
			logger.Warn("elasticsearch unavailable, search falls back to LIKE", "error", err)
		} else {
			srv.ES = es
		}
	}
	if cfg.KAFKA_ADDRESS != "" {
		srv.Producer = devserver.NewProducer(cfg.KAFKA_ADDRESS)
		defer srv.Producer.Close()
	}

	if err := srv.Seed(); err != nil {
		logger.Error("seed fixtures", "error", err)
		return
	}

	e := srv.Router()
	logger.Info("devserver listening", "addr", cfg.LISTEN_ADDR)
	if err := e.Start(cfg.LISTEN_ADDR); err != nil {
		logger.Error("server stopped", "error", err)
	}
}
