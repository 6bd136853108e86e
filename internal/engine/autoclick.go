package engine

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"recoilctl/internal/input"
	"recoilctl/internal/notify"
	"recoilctl/internal/state"
)

// AutoClickConfig tunes the auto-click loop. Zero fields take the defaults.
type AutoClickConfig struct {
	Button       input.Button
	PollInterval time.Duration
}

// DefaultAutoClickPoll is how often the left button is sampled while idle.
const DefaultAutoClickPoll = 10 * time.Millisecond

func (c AutoClickConfig) withDefaults() AutoClickConfig {
	if c.Button == input.ButtonNone {
		c.Button = input.ButtonLeft
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultAutoClickPoll
	}
	return c
}

// AutoClicker repeats clicks of the configured button while it is physically held and
// auto-click is enabled.
type AutoClicker struct {
	backend input.Backend
	state   *state.State
	logger  *zap.Logger
	cfg     AutoClickConfig
	inj     *injector
	randN   func(n int64) int64
}

// NewAutoClicker returns an auto-clicker driving b. Zero fields of cfg take their defaults.
func NewAutoClicker(b input.Backend, st *state.State, sink notify.Sink, logger *zap.Logger, cfg AutoClickConfig) *AutoClicker {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("autoclick")
	return &AutoClicker{
		backend: b,
		state:   st,
		logger:  logger,
		cfg:     cfg.withDefaults(),
		inj:     newInjector("auto_click", b, st, Link{}, sink, logger),
		randN:   rand.Int63n,
	}
}

// Run clicks until ctx is done. The button state is polled before every click, so a
// release stops the loop without a trailing click.
func (a *AutoClicker) Run(ctx context.Context) error {
	defer func() {
		if n := a.inj.releaseAll(); n > 0 {
			a.logger.Warn("input still held after release attempt", zap.Int("count", n))
		}
	}()

	clicking := false
	for {
		if ctx.Err() != nil {
			return nil
		}
		if !a.active() {
			if clicking {
				clicking = false
				a.logger.Debug("auto-click stopped")
			}
			if a.inj.held() > 0 {
				a.inj.releaseAll()
			}
			if !sleep(ctx, a.cfg.PollInterval, a.cfg.PollInterval, nil) {
				return nil
			}
			continue
		}
		if !clicking {
			clicking = true
			a.logger.Debug("auto-click started", zap.Stringer("button", a.cfg.Button))
		}
		a.inj.click(a.cfg.Button)
		if !sleep(ctx, a.nextDelay(), a.cfg.PollInterval, a.inactive) {
			return nil
		}
	}
}

func (a *AutoClicker) active() bool {
	return a.state.AutoClickEnabled() && a.backend.ButtonDown(a.cfg.Button)
}

func (a *AutoClicker) inactive() bool { return !a.active() }

// nextDelay is ClickDelay plus a uniform jitter in [-ClickJitter, +ClickJitter],
// never below one millisecond.
func (a *AutoClicker) nextDelay() time.Duration {
	d := a.state.ClickDelay()
	if j := int64(a.state.ClickJitter()); j > 0 {
		d += time.Duration(a.randN(2*j+1) - j)
	}
	return max(d, state.MinClickDelay)
}
