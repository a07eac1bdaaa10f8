package main

import (
	"context"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/llehouerou/tracksearch/internal/config"
	"github.com/llehouerou/tracksearch/internal/errmsg"
	"github.com/llehouerou/tracksearch/internal/ingest"
	"github.com/llehouerou/tracksearch/internal/library"
	"github.com/llehouerou/tracksearch/internal/logger"
	"github.com/llehouerou/tracksearch/internal/notify"
	"github.com/llehouerou/tracksearch/internal/state"
)

// app holds the collaborators of an initialised library.
type app struct {
	log   *zap.Logger
	lib   *library.Library
	state *state.Manager
}

// openApp loads the configuration and initialises the library, rebuilding
// the index when needed or when force is set. A fatal library error cancels
// ctx through cancel.
func openApp(ctx context.Context, cancel context.CancelFunc, force bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errmsg.Wrap(errmsg.OpConfigLoad, "", err)
	}
	log := logger.New(os.Stderr, cfg.GetLoggerConfig())

	store, err := state.Open(cfg.GetStateDB(), version, cfg.GetRefreshInterval())
	if err != nil {
		return nil, errmsg.Wrap(errmsg.OpStateOpen, cfg.GetStateDB(), err)
	}

	var notifier library.Notifier
	if cfg.NotificationsEnabled() {
		notifier = notify.New(log)
	}

	scanner := ingest.NewScanner(cfg.LibrarySources, ingest.WithLogger(log))
	lib := library.New(library.Options{
		IndexDir:       cfg.GetIndexDir(),
		BatchSize:      cfg.GetBatchSize(),
		MaxHits:        cfg.GetMaxHits(),
		ShuffleTimeout: cfg.GetShuffleTimeout(),
		ForceRebuild:   force,
	}, scanner, store, notifier,
		library.WithLogger(log),
		library.WithFatalHandler(func(err error) {
			log.Error("fatal library error, shutting down", zap.Error(err))
			cancel()
		}),
	)

	if err := lib.Initialise(ctx); err != nil {
		return nil, errmsg.Wrap(errmsg.OpInitialize, cfg.GetIndexDir(), multierr.Append(err, store.Close()))
	}
	return &app{log: log, lib: lib, state: store}, nil
}

func (a *app) Close() error {
	err := multierr.Combine(a.lib.Shutdown(), a.state.Close())
	_ = a.log.Sync()
	return err
}

// run opens the app, calls fn, and closes the app again. Errors of fn are
// reported as failures of op on subject.
func run(ctx context.Context, op errmsg.Op, subject string, force bool, fn func(ctx context.Context, a *app) error) (err error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a, err := openApp(ctx, cancel, force)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, errmsg.Wrap(errmsg.OpShutdown, "", a.Close()))
	}()
	return errmsg.Wrap(op, subject, fn(ctx, a))
}
