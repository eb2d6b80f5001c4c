package app

import (
	"context"

	"github.com/adanyl0v/go-tracker/internal/config"
	"github.com/adanyl0v/go-tracker/internal/storage"
	"github.com/adanyl0v/go-tracker/internal/storage/memory"
	"github.com/adanyl0v/go-tracker/internal/storage/postgres"
)

var globalStore storage.Store

func MustConnectStorage() {
	cfg := config.Global()

	if cfg.StorageDriver == config.StorageDriverMemory {
		globalStore = memory.New()
		globalLogger.Warn().Msg("using in-memory storage, data is lost on exit")
		return
	}

	pgCfg := cfg.Postgres
	ctx := context.Background()
	store, err := postgres.Connect(ctx, componentLogger("postgres"), postgres.Config{
		URL:            pgCfg.URL(),
		ConnectTimeout: pgCfg.ConnectTimeout,
		PingTimeout:    pgCfg.PingTimeout,
		MaxConns:       pgCfg.MaxConns,
	})
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to connect to postgres")
		panic(err)
	}
	globalLogger.Info().
		Str("host", pgCfg.Host).
		Int("port", pgCfg.Port).
		Msg("connected to postgres")

	err = store.Migrate(ctx)
	if err != nil {
		store.Close()
		globalLogger.Error().
			Err(err).
			Msg("failed to migrate postgres")
		panic(err)
	}
	globalLogger.Info().Msg("migrated postgres")

	globalStore = store
}

func DisconnectStorage() {
	globalStore.Close()
	globalLogger.Info().
		Str("storage_driver", config.Global().StorageDriver).
		Msg("disconnected from storage")
}
