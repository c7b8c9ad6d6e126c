package main

import (
	"log"

	"go.uber.org/zap"

	"github.com/wows-tools/wows-clan-sync/config"
	"github.com/wows-tools/wows-clan-sync/events"
	"github.com/wows-tools/wows-clan-sync/resync"
	"github.com/wows-tools/wows-clan-sync/server"
	"github.com/wows-tools/wows-clan-sync/source"
	"github.com/wows-tools/wows-clan-sync/store"
	"github.com/wows-tools/wows-clan-sync/syncer"
)

func main() {
	zlogger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}
	defer zlogger.Sync()
	logger := zlogger.Sugar()

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatalf("configuration: %s", err)
	}

	var clanStore syncer.Store
	if cfg.UseHTTPStore() {
		clanStore = store.NewHTTP(cfg.StoreHost, cfg.StorePort, logger)
	} else {
		dbStore, err := store.NewDB(cfg.StoreDBPath, zlogger)
		if err != nil {
			logger.Fatalf("opening the embedded clan store: %s", err)
		}
		clanStore = dbStore
	}

	var clanSource syncer.Source
	if cfg.UseHTTPSource() {
		clanSource = source.NewHTTP(cfg.APIHost, cfg.APIPort, logger)
	} else {
		wgSource, err := source.NewWargaming(cfg.WowsAPIKey, cfg.WowsRealm, logger)
		if err != nil {
			logger.Fatalf("building the wargaming source client: %s", err)
		}
		clanSource = wgSource
	}

	pool := events.NewPool(cfg.NATSURL, logger)
	defer pool.Close()

	sync := syncer.New(clanStore, clanSource, logger)

	if len(cfg.SyncTags) > 0 {
		sweeper := resync.NewSweeper(sync, pool, cfg.SyncTags, cfg.SyncInterval, logger)
		if err := sweeper.Start(); err != nil {
			logger.Fatalf("starting the resync scheduler: %s", err)
		}
		defer sweeper.Stop()
	}

	srv := server.New(sync, pool, logger)
	if err := srv.Run(cfg.ListenAddr); err != nil {
		logger.Fatalf("http server: %s", err)
	}
}
