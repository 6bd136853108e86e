package osutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseDirFallsBackToWorkingDir(t *testing.T) {
	dir := t.TempDir()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })

	wd, err := os.Getwd()
	require.NoError(t, err)
	// The test binary's directory has no plugins folder.
	assert.Equal(t, wd, BaseDir())
	assert.Equal(t, filepath.Join(wd, PluginDirName), PluginDir())
}
