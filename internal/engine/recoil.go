package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"recoilctl/internal/input"
	"recoilctl/internal/notify"
	"recoilctl/internal/profile"
	"recoilctl/internal/state"
)

// RecoilConfig tunes the recoil loop. Zero fields take the defaults.
type RecoilConfig struct {
	// ActivationButtons must all be physically held for the loop to fire.
	ActivationButtons []input.Button
	// PollInterval bounds how long the loop sleeps before re-checking state.
	PollInterval time.Duration
	Link         Link
	// LogEvery logs progress every n cycles at debug level. Zero disables it.
	LogEvery int
}

// DefaultRecoilPoll is the activation sampling interval.
const (
	DefaultRecoilPoll = 2 * time.Millisecond
	minCycleDelay     = time.Millisecond
)

func (c RecoilConfig) withDefaults() RecoilConfig {
	if len(c.ActivationButtons) == 0 {
		c.ActivationButtons = []input.Button{input.ButtonRight, input.ButtonLeft}
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultRecoilPoll
	}
	if c.Link == (Link{}) {
		c.Link = DefaultLink
	}
	return c
}

// Recoil moves the cursor down while the activation buttons are held and recoil is
// armed, following the selected weapon's pull profile.
type Recoil struct {
	backend  input.Backend
	state    *state.State
	profiles *profile.Store
	logger   *zap.Logger
	cfg      RecoilConfig
	inj      *injector

	trigger input.Key // trigger key currently held, "" if none
}

// activation is the per-burst bookkeeping, reset every time the loop goes idle.
type activation struct {
	start       time.Time
	phase       profile.Phase
	phaseCycles int
	cycles      int
	residual    float64
	weapon      string
}

// NewRecoil returns a recoil loop that pulls with the weapon selected in profiles.
// Zero fields of cfg take their defaults.
func NewRecoil(b input.Backend, st *state.State, profiles *profile.Store, sink notify.Sink, logger *zap.Logger, cfg RecoilConfig) *Recoil {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("recoil")
	cfg = cfg.withDefaults()
	return &Recoil{
		backend:  b,
		state:    st,
		profiles: profiles,
		logger:   logger,
		cfg:      cfg,
		inj:      newInjector("recoil", b, st, cfg.Link, sink, logger),
	}
}

// Run drives the loop until ctx is done. Everything the loop pressed is released
// before it returns.
func (r *Recoil) Run(ctx context.Context) error {
	defer func() {
		if n := r.inj.releaseAll(); n > 0 {
			r.logger.Warn("input still held after release attempt", zap.Int("count", n))
		}
	}()

	var act *activation
	for {
		if ctx.Err() != nil {
			r.deactivate(act)
			return nil
		}

		w, ok := r.ready()
		if !ok {
			if act != nil {
				r.deactivate(act)
				act = nil
			} else if r.trigger != "" || r.inj.held() > 0 {
				// A release failed earlier; keep retrying while idle.
				r.syncTrigger(false)
				r.inj.releaseAll()
			}
			if !sleep(ctx, r.cfg.PollInterval, r.cfg.PollInterval, nil) {
				return nil
			}
			continue
		}

		if act == nil {
			act = &activation{start: time.Now(), phase: profile.PhaseInitial, weapon: w.Name()}
			r.logger.Debug("recoil active", zap.String("weapon", w.Name()))
		}
		r.syncTrigger(true)
		delay := r.cycle(act, w)

		if !sleep(ctx, delay, r.cfg.PollInterval, r.stopped) {
			r.deactivate(act)
			return nil
		}
	}
}

// ready reports whether the loop should fire and with which weapon.
func (r *Recoil) ready() (profile.Weapon, bool) {
	if !r.state.RecoilArmed() {
		return profile.Weapon{}, false
	}
	for _, b := range r.cfg.ActivationButtons {
		if !r.backend.ButtonDown(b) {
			return profile.Weapon{}, false
		}
	}
	w, _, ok := r.profiles.Current()
	return w, ok
}

func (r *Recoil) stopped() bool {
	_, ok := r.ready()
	return !ok
}

// cycle injects one step of compensation and returns the delay until the next one.
func (r *Recoil) cycle(a *activation, w profile.Weapon) time.Duration {
	if w.Name() != a.weapon {
		r.logger.Debug("weapon changed mid-burst", zap.String("from", a.weapon), zap.String("to", w.Name()))
		a.weapon = w.Name()
	}
	if phase := w.PhaseAt(time.Since(a.start)); phase != a.phase {
		a.phase = phase
		a.phaseCycles = 0
	}

	pull := w.Pull(a.phase, a.phaseCycles, a.cycles)
	a.phaseCycles++
	a.cycles++

	a.residual += pull
	dy := int(a.residual)
	a.residual -= float64(dy)
	if dy != 0 {
		r.inj.move(0, dy)
	}

	if r.cfg.LogEvery > 0 && a.cycles%r.cfg.LogEvery == 0 {
		r.logger.Debug("recoil progress",
			zap.Int("cycles", a.cycles),
			zap.Stringer("phase", a.phase),
			zap.Float64("pull", pull),
			zap.String("weapon", w.Name()))
	}
	return max(w.SleepTime(), minCycleDelay)
}

// syncTrigger holds the trigger key while active and auto-press is on, following
// changes to the trigger character.
func (r *Recoil) syncTrigger(active bool) {
	want := active && r.state.TriggerKeyAutoPress()
	key := r.state.TriggerKey()
	if r.trigger != "" && (!want || r.trigger != key) {
		if r.inj.releaseKey(r.trigger) == nil || !r.inj.holding(r.trigger) {
			r.trigger = ""
		}
	}
	if want && r.trigger == "" {
		if r.inj.pressKey(key) == nil {
			r.trigger = key
		}
	}
}

func (r *Recoil) deactivate(a *activation) {
	r.syncTrigger(false)
	if a != nil {
		r.logger.Debug("recoil idle", zap.Int("cycles", a.cycles), zap.Duration("active", time.Since(a.start)))
	}
}
