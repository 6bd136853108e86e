package profile

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"recoilctl/internal/notify"
)

// ErrNoProfiles is returned by selection calls while no set is loaded.
var ErrNoProfiles = errors.New("no weapon profiles loaded")

type selection struct {
	set   *Set
	index int
}

// Store holds the active Set and the selected index. Readers never block; writers are
// serialised. A reload that fails leaves the running set in place.
type Store struct {
	sources []Source
	sink    notify.Sink
	logger  *zap.Logger

	mu  sync.Mutex
	cur atomic.Pointer[selection]
}

// NewStore creates an empty store that reloads from sources.
func NewStore(sources []Source, sink notify.Sink, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{sources: sources, sink: sink, logger: logger.Named("profiles")}
	s.cur.Store(&selection{})
	return s
}

// Sources returns the candidate files in priority order.
func (s *Store) Sources() []Source {
	return append([]Source(nil), s.sources...)
}

// Reload loads from the configured sources and swaps the set in on success. The
// selected weapon is kept by name when it still exists, otherwise the index is clamped.
func (s *Store) Reload() (*Set, error) {
	set, err := Load(s.sources...)
	if err != nil {
		s.logger.Warn("reload failed, keeping current profiles", zap.Error(err))
		notify.Send(s.sink, notify.Event{Kind: notify.KindError, Action: "reload", Err: err})
		return nil, err
	}
	s.Replace(set)
	s.logger.Info("profiles loaded",
		zap.Stringer("source", set.Source()),
		zap.Strings("weapons", set.Names()))
	notify.Send(s.sink, notify.Event{Kind: notify.KindProfilesReloaded, Action: "reload", New: set.Source().Path})
	return set, nil
}

// Replace installs set directly.
func (s *Store) Replace(set *Set) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.cur.Load()
	idx := 0
	if old.set != nil && old.set.Len() > 0 {
		if i, ok := set.Index(old.set.At(old.index).Name()); ok {
			idx = i
		} else {
			idx = clamp(old.index, set.Len())
		}
	}
	s.cur.Store(&selection{set: set, index: idx})
}

// Set returns the active set, possibly nil.
func (s *Store) Set() *Set {
	return s.cur.Load().set
}

// Current returns the selected weapon and its index; ok is false while no set is loaded.
func (s *Store) Current() (w Weapon, index int, ok bool) {
	sel := s.cur.Load()
	if sel.set.Len() == 0 {
		return Weapon{}, 0, false
	}
	return sel.set.At(sel.index), sel.index, true
}

// Next selects the following weapon, wrapping to the first.
func (s *Store) Next() (Weapon, error) { return s.step(1) }

// Previous selects the preceding weapon, wrapping to the last.
func (s *Store) Previous() (Weapon, error) { return s.step(-1) }

func (s *Store) step(delta int) (Weapon, error) {
	return s.update(func(sel *selection) (int, error) {
		n := sel.set.Len()
		return ((sel.index+delta)%n + n) % n, nil
	})
}

// Select selects by index, clamping out-of-range values.
func (s *Store) Select(i int) (Weapon, error) {
	return s.update(func(sel *selection) (int, error) {
		return clamp(i, sel.set.Len()), nil
	})
}

// SelectName selects the weapon with the given name.
func (s *Store) SelectName(name string) (Weapon, error) {
	return s.update(func(sel *selection) (int, error) {
		i, ok := sel.set.Index(name)
		if !ok {
			return 0, fmt.Errorf("unknown weapon %q", name)
		}
		return i, nil
	})
}

func (s *Store) update(pick func(*selection) (int, error)) (Weapon, error) {
	s.mu.Lock()
	sel := s.cur.Load()
	if sel.set.Len() == 0 {
		s.mu.Unlock()
		return Weapon{}, ErrNoProfiles
	}
	idx, err := pick(sel)
	if err != nil {
		s.mu.Unlock()
		return Weapon{}, err
	}
	changed := idx != sel.index
	s.cur.Store(&selection{set: sel.set, index: idx})
	s.mu.Unlock()

	w := sel.set.At(idx)
	if changed {
		s.logger.Info("weapon selected", zap.String("weapon", w.Name()), zap.Int("index", idx))
		notify.Send(s.sink, notify.Event{
			Kind:    notify.KindProfileSwitched,
			Old:     sel.set.At(sel.index).Name(),
			New:     w.Name(),
			Profile: w.Name(),
		})
	}
	return w, nil
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
