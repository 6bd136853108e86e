//go:build !windows

package osutils

import "os"

// IsAdmin reports whether the process runs as root.
func IsAdmin() bool {
	return os.Geteuid() == 0
}

// NeedsElevation is false where window privilege levels do not filter input.
func NeedsElevation() bool {
	return false
}
