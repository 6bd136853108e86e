package profile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recoilctl/internal/notify"
)

func newTestStore(t *testing.T, content string) (*Store, string, *notify.Recorder) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "weapons.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	rec := &notify.Recorder{}
	s := NewStore([]Source{{Path: path, Format: FormatYAML}}, rec, nil)
	_, err := s.Reload()
	require.NoError(t, err)
	return s, path, rec
}

func TestStoreEmpty(t *testing.T) {
	s := NewStore(nil, nil, nil)
	_, _, ok := s.Current()
	assert.False(t, ok)
	_, err := s.Next()
	assert.True(t, errors.Is(err, ErrNoProfiles))
}

func TestStoreNextPreviousWrap(t *testing.T) {
	s, _, rec := newTestStore(t, "weapons:\n  - name: a\n  - name: b\n  - name: c\n")

	w, i, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "a", w.Name())
	assert.Equal(t, 0, i)

	w, err := s.Previous()
	require.NoError(t, err)
	assert.Equal(t, "c", w.Name())

	w, _ = s.Next()
	assert.Equal(t, "a", w.Name())
	w, _ = s.Next()
	w, _ = s.Next()
	assert.Equal(t, "c", w.Name())
	w, _ = s.Next()
	assert.Equal(t, "a", w.Name())

	switched := rec.OfKind(notify.KindProfileSwitched)
	require.Len(t, switched, 5)
	assert.Equal(t, "c", switched[0].New)
	assert.Equal(t, "a", switched[0].Old)
}

func TestStoreSelect(t *testing.T) {
	s, _, _ := newTestStore(t, "weapons:\n  - name: a\n  - name: b\n")

	w, err := s.Select(99)
	require.NoError(t, err)
	assert.Equal(t, "b", w.Name())
	w, _ = s.Select(-4)
	assert.Equal(t, "a", w.Name())

	w, err = s.SelectName("b")
	require.NoError(t, err)
	assert.Equal(t, "b", w.Name())
	_, err = s.SelectName("zzz")
	assert.Error(t, err)
	w, _, _ = s.Current()
	assert.Equal(t, "b", w.Name())
}

func TestStoreReloadKeepsSetOnFailure(t *testing.T) {
	s, path, rec := newTestStore(t, "weapons:\n  - name: a\n  - name: b\n")
	s.Next()
	before := s.Set()

	require.NoError(t, os.WriteFile(path, []byte("weapons: [broken"), 0o644))
	_, err := s.Reload()
	require.Error(t, err)
	var cerr *ConfigError
	assert.True(t, errors.As(err, &cerr))

	assert.Same(t, before, s.Set())
	w, _, _ := s.Current()
	assert.Equal(t, "b", w.Name())
	assert.Len(t, rec.OfKind(notify.KindError), 1)
}

func TestStoreReloadPreservesSelectionByName(t *testing.T) {
	s, path, _ := newTestStore(t, "weapons:\n  - name: a\n  - name: b\n  - name: c\n")
	s.SelectName("c")

	require.NoError(t, os.WriteFile(path, []byte("weapons:\n  - name: c\n  - name: a\n"), 0o644))
	_, err := s.Reload()
	require.NoError(t, err)
	w, i, _ := s.Current()
	assert.Equal(t, "c", w.Name())
	assert.Equal(t, 0, i)

	require.NoError(t, os.WriteFile(path, []byte("weapons:\n  - name: x\n"), 0o644))
	_, err = s.Reload()
	require.NoError(t, err)
	w, i, _ = s.Current()
	assert.Equal(t, "x", w.Name())
	assert.Equal(t, 0, i)
}
