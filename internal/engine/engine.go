// Package engine runs the recoil and auto-click loops against an input backend.
package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"recoilctl/internal/input"
	"recoilctl/internal/notify"
	"recoilctl/internal/profile"
	"recoilctl/internal/state"
)

// Options configures both loops.
type Options struct {
	Recoil    RecoilConfig
	AutoClick AutoClickConfig
}

// Engine owns the two worker loops.
type Engine struct {
	recoil  *Recoil
	clicker *AutoClicker
	logger  *zap.Logger
}

// New refuses to build an engine without a backend.
func New(b input.Backend, st *state.State, profiles *profile.Store, sink notify.Sink, logger *zap.Logger, opts Options) (*Engine, error) {
	if b == nil {
		return nil, fmt.Errorf("engine: %w", input.ErrBackendUnavailable)
	}
	if st == nil || profiles == nil {
		return nil, fmt.Errorf("engine: state and profile store are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		recoil:  NewRecoil(b, st, profiles, sink, logger, opts.Recoil),
		clicker: NewAutoClicker(b, st, sink, logger, opts.AutoClick),
		logger:  logger,
	}, nil
}

// Run blocks until ctx is done. Both loops release held input before it returns.
func (e *Engine) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return e.recoil.Run(ctx) })
	g.Go(func() error { return e.clicker.Run(ctx) })
	e.logger.Info("engine started")
	err := g.Wait()
	e.logger.Info("engine stopped")
	return err
}
