package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"fintrack/internal/auth"
	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/events"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
	"fintrack/internal/session"
	"fintrack/internal/store"
)

var ErrNotLoggedIn = errors.New("not logged in: run 'fintrack login' or 'fintrack register'")

// App is the wired object graph for one command invocation.
type App struct {
	cfg         *config.Config
	logger      *log.Logger
	store       store.Store
	credentials *auth.CredentialStore
	engine      *ledger.Engine
	session     *session.Controller
	feed        *events.Client
	view        *view

	cleanup []func() error
}

func newApp(ctx context.Context, s *settings, out, errOut io.Writer) (*App, error) {
	cfg, err := LoadAndValidateConfig(s.configPath)
	if err != nil {
		return nil, err
	}
	logger, err := SetupLogger(cfg, errOut)
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, logger: logger, view: newView(out, cfg.Currency)}

	if s.store != nil {
		a.store = s.store
	} else {
		opts, err := store.OptionsFromConfig(cfg)
		if err != nil {
			return nil, err
		}
		opened, err := store.Open(ctx, opts, logger)
		if err != nil {
			return nil, err
		}
		a.store = opened.Store
		a.cleanup = append(a.cleanup, opened.Cleanup)
	}

	engineOpts := []ledger.Option{ledger.WithLogger(logger)}
	if cfg.AMQPEnabled() {
		feed, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			// The feed is optional; the ledger works without it.
			logger.WarnContext(ctx, "Event feed unavailable",
				log.NewFields().
					WithOperation(log.OpStartup).
					WithError(err, log.ErrorTypeNetwork).
					ToSlice()...)
		} else {
			a.feed = feed
			a.cleanup = append(a.cleanup, feed.Close)
			engineOpts = append(engineOpts, ledger.WithPublisher(feed))
		}
	}

	a.credentials = auth.NewCredentialStore(a.store,
		auth.WithIterations(cfg.PBKDF2Iterations),
		auth.WithLogger(logger))
	a.engine = ledger.New(a.store, engineOpts...)
	a.session = session.NewController(a.credentials, a.engine, logger)

	if err := a.session.Start(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// active returns the identity of the restored session.
func (a *App) active() (core.Identity, error) {
	id, ok := a.session.Identity()
	if !ok {
		return core.Identity{}, ErrNotLoggedIn
	}
	return id, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		if err := a.cleanup[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.cleanup = nil
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}
