// Package fs provides file system backed implementations of blame interfaces.
package fs

import (
	"os"
	"path/filepath"
)

// CacheDirEnv overrides the cache location when set.
const CacheDirEnv = "BLAME_CACHE_DIR"

// DefaultCacheDir returns the directory blame outcomes are cached in.
// BLAME_CACHE_DIR wins, then the platform user cache directory, then the
// system temp directory.
func DefaultCacheDir() string {
	if dir := os.Getenv(CacheDirEnv); dir != "" {
		return dir
	}
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "blame")
}
