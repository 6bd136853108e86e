package profile

import (
	"errors"
	"fmt"
)

// Set is an ordered, immutable list of weapons with unique names.
type Set struct {
	weapons []Weapon
	index   map[string]int
	source  Source
}

// NewSet validates uniqueness and non-emptiness.
func NewSet(weapons ...Weapon) (*Set, error) {
	if len(weapons) == 0 {
		return nil, errors.New("no weapons defined")
	}
	s := &Set{weapons: append([]Weapon(nil), weapons...), index: make(map[string]int, len(weapons))}
	for i, w := range s.weapons {
		if w.name == "" {
			return nil, fmt.Errorf("weapon %d has no name", i)
		}
		if j, dup := s.index[w.name]; dup {
			return nil, fmt.Errorf("duplicate weapon name %q (entries %d and %d)", w.name, j, i)
		}
		s.index[w.name] = i
	}
	return s, nil
}

// FromSpecs builds a Set from on-disk entries.
func FromSpecs(specs []Spec) (*Set, error) {
	weapons := make([]Weapon, 0, len(specs))
	for i, sp := range specs {
		w, err := New(sp)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		weapons = append(weapons, w)
	}
	return NewSet(weapons...)
}

// Len returns the number of weapons; a nil Set is empty.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.weapons)
}

// Source is the file the set was loaded from; zero for sets built in memory.
func (s *Set) Source() Source {
	if s == nil {
		return Source{}
	}
	return s.source
}

// At returns the weapon at position i. It panics if i is out of range.
func (s *Set) At(i int) Weapon { return s.weapons[i] }

// Index returns the position of the named weapon.
func (s *Set) Index(name string) (int, bool) {
	if s == nil {
		return 0, false
	}
	i, ok := s.index[name]
	return i, ok
}

// Names lists the weapon names in file order.
func (s *Set) Names() []string {
	names := make([]string, s.Len())
	for i := range names {
		names[i] = s.weapons[i].name
	}
	return names
}

// Weapons returns a copy of the list.
func (s *Set) Weapons() []Weapon {
	if s == nil {
		return nil
	}
	return append([]Weapon(nil), s.weapons...)
}
