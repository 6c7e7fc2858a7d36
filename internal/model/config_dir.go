package model

import (
	"os"
	"path/filepath"
)

// defaultCacheDir resolves the on-disk cache location.
// Falls back to a relative directory when the user cache dir is unknown.
func defaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return ".personagen-cache"
	}
	return filepath.Join(base, "personagen")
}
