package profile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	s, path, _ := newTestStore(t, "weapons:\n  - name: a\n")

	w, err := NewWatcher(s, nil)
	require.NoError(t, err)
	w.debounce = 20 * time.Millisecond
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("weapons:\n  - name: a\n  - name: b\n"), 0o644))

	require.Eventually(t, func() bool {
		return s.Set().Len() == 2
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatcherCreatesMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plugins")
	s := NewStore(SourcesIn(dir), nil, nil)
	_, err := s.Reload()
	require.Error(t, err)

	w, err := NewWatcher(s, nil)
	require.NoError(t, err)
	w.debounce = 20 * time.Millisecond
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.DirExists(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "weapons.json"), []byte(`{"weapons": [{"name": "late"}]}`), 0o644))

	require.Eventually(t, func() bool {
		cur, _, ok := s.Current()
		return ok && cur.Name() == "late"
	}, 5*time.Second, 20*time.Millisecond)
}
