// osu-sync-bridge - osu! library bridge between Stable and Lazer
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package main is the entry point for osu-sync-bridge's local worker
// process. It initializes configuration and logging, builds the suture
// supervisor tree described in internal/worker, and serves the local
// chi + websocket API that a separate UI process drives.
//
// Initialization order:
//
//  1. Configuration: layered defaults, config.json, SYNCTOOL_ env vars.
//  2. Logging: zerolog, configured from the loaded config.
//  3. Progress store: a BadgerDB file under the user cache directory,
//     backing resumable sync-progress checkpoints.
//  4. Core services: the unified-storage game monitor, supervised so a
//     panic there never takes the API down.
//  5. API service: chi router + websocket hub, supervised independently.
//  6. Signal handling: SIGINT/SIGTERM trigger a graceful shutdown of the
//     whole supervisor tree.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/osusync/bridge/internal/activity"
	"github.com/osusync/bridge/internal/api"
	"github.com/osusync/bridge/internal/config"
	"github.com/osusync/bridge/internal/logging"
	syncpkg "github.com/osusync/bridge/internal/sync"
	"github.com/osusync/bridge/internal/unified"
	"github.com/osusync/bridge/internal/worker"
)

const defaultListenAddr = "127.0.0.1:7727"

func main() {
	addr := flag.String("addr", defaultListenAddr, "local API listen address")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	logging.Info().
		Str("stable_path", cfg.StablePath).
		Str("lazer_path", cfg.LazerPath).
		Str("duplicate_strategy", string(cfg.DuplicateStrategy)).
		Msg("configuration loaded")

	progressStore, closeDB, err := openProgressStore()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open progress store")
	}
	defer func() {
		if err := closeDB(); err != nil {
			logging.Error().Err(err).Msg("error closing progress store")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := worker.NewBus(worker.DefaultConfig())

	gameMonitor := unified.NewGameMonitor(0)
	unifiedEngine := unified.NewEngine(gameMonitor)
	bus.AddCoreService(worker.NewGameMonitorService(gameMonitor, bus))

	syncEngine := syncpkg.NewEngine(progressStore)
	dispatcher := worker.NewDispatcher(bus, syncEngine, unifiedEngine)

	stateDir, err := os.UserCacheDir()
	if err != nil {
		stateDir = os.TempDir()
	}
	stateDir = filepath.Join(stateDir, "osu-sync")
	activityLog, err := activity.Load(filepath.Join(stateDir, "activity.ndjson"))
	if err != nil {
		logging.Warn().Err(err).Msg("failed to load activity history, starting empty")
		activityLog = activity.New(filepath.Join(stateDir, "activity.ndjson"))
	}
	dispatcher.SetActivityLog(activityLog)

	skipList, err := activity.LoadSkipList(filepath.Join(stateDir, "skiplist.json"))
	if err != nil {
		logging.Warn().Err(err).Msg("failed to load skip list, starting empty")
		skipList = activity.NewSkipList(filepath.Join(stateDir, "skiplist.json"))
	}
	dispatcher.SetSkipList(skipList)

	router, _ := api.NewRouter(ctx, dispatcher, bus)
	server := &http.Server{
		Addr:              *addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	bus.AddAPIService(worker.NewHTTPServerService(server, 10*time.Second))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("shutdown requested")
		cancel()
	}()

	logging.Info().Str("addr", *addr).Msg("osu-sync-bridge listening")
	if err := bus.Serve(ctx); err != nil && ctx.Err() == nil {
		logging.Fatal().Err(err).Msg("supervisor tree exited unexpectedly")
	}
	logging.Info().Msg("osu-sync-bridge stopped")
}

// openProgressStore opens (creating if absent) the BadgerDB file backing
// resumable sync-progress checkpoints, under the user's cache directory.
func openProgressStore() (*syncpkg.ProgressStore, func() error, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	dbDir := filepath.Join(cacheDir, "osu-sync", "progress")
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, nil, err
	}

	opts := badger.DefaultOptions(dbDir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, nil, err
	}
	return syncpkg.NewProgressStore(db), db.Close, nil
}
