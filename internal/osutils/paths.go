// Package osutils holds small platform helpers: privilege checks and runtime paths.
package osutils

import (
	"os"
	"path/filepath"
)

// PluginDirName is the folder holding weapon profile files.
const PluginDirName = "plugins"

// BaseDir is the directory runtime files are resolved against: the executable's
// directory when it contains a plugins folder, otherwise the working directory.
func BaseDir() string {
	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		dir := filepath.Dir(exe)
		if isDir(filepath.Join(dir, PluginDirName)) {
			return dir
		}
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

// PluginDir returns the weapon profile directory under BaseDir.
func PluginDir() string {
	return filepath.Join(BaseDir(), PluginDirName)
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
