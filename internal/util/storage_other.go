//go:build !linux && !darwin

package util

import (
	"fmt"
	"os"
)

// statStorage only checks that path exists; every library counts as local
func statStorage(path string) (*StorageInfo, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to stat filesystem: %w", err)
	}
	return &StorageInfo{}, nil
}
