package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"tripsettle/config"
	"tripsettle/pkg/api"
	"tripsettle/pkg/bot"
	"tripsettle/pkg/geo"
	"tripsettle/pkg/logger"
	"tripsettle/service"
	"tripsettle/storage"
	"tripsettle/storage/memory"
	"tripsettle/storage/postgres"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()

	log := logger.New(cfg.ServiceName, cfg.LoggerLevel)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stg, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open storage", logger.Error(err))
		os.Exit(1)
	}
	defer stg.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warning("redis unavailable, geocode cache disabled until it recovers", logger.Error(err))
	}

	lookup := geo.NewCachedLookup(
		geo.NewORSGeocoder(cfg.ORSBaseURL, cfg.ORSAPIKey, cfg.GeocodeCountry, cfg.GeocodeTimeout, log),
		rdb,
		cfg.GeocodeCacheTTL,
		log,
	)

	svc := service.New(stg, lookup, cfg.Location(), log)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return api.Run(ctx, api.New(svc, log), cfg.HTTPPort, log)
	})

	if cfg.TelegramBotToken != "" {
		operatorBot, err := bot.New(cfg, svc, log)
		if err != nil {
			log.Error("failed to initialize operator bot", logger.Error(err))
			os.Exit(1)
		}
		g.Go(func() error {
			return operatorBot.Run(ctx)
		})
	} else {
		log.Info("TG_BOT_TOKEN not set, operator bot disabled")
	}

	log.Info("🚀 tripsettle is running", logger.Int("port", cfg.HTTPPort), logger.String("storage", cfg.StorageDriver))

	if err := g.Wait(); err != nil {
		log.Error("shutting down with error", logger.Error(err))
		os.Exit(1)
	}
	log.Info("stopped")
}

func openStorage(ctx context.Context, cfg config.Config, log logger.ILogger) (storage.IStorage, error) {
	if cfg.StorageDriver == "memory" {
		log.Warning("using in-memory storage, data is lost on exit")
		return memory.New(), nil
	}
	return postgres.New(ctx, cfg, log)
}
