package main

import (
	"context"
	"os"

	"tripsettle/config"
	"tripsettle/pkg/logger"
	"tripsettle/storage/postgres"
)

// Clears operational data. Catalogs, drivers and tariff rules are reference
// data and stay.
func main() {
	cfg := config.Load()
	log := logger.New(cfg.ServiceName, cfg.LoggerLevel)

	pg, err := postgres.New(context.Background(), cfg, log)
	if err != nil {
		log.Error("failed to connect to postgres", logger.Error(err))
		os.Exit(1)
	}
	defer pg.Close()

	_, err = pg.GetPool().Exec(context.Background(), "TRUNCATE TABLE settlements, trips RESTART IDENTITY CASCADE")
	if err != nil {
		log.Error("failed to truncate tables", logger.Error(err))
		return
	}
	log.Info("truncated settlements and trips")
}
