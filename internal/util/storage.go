package util

import (
	"fmt"
	"path/filepath"
)

// StorageInfo describes the filesystem a path lives on
type StorageInfo struct {
	IsNetwork bool
	// Protocol is the network filesystem type (nfs, cifs, smbfs, ...); empty
	// for local storage
	Protocol  string
	MountPath string
}

// DetectStorage reports whether path is on network-mounted storage
func DetectStorage(path string) (*StorageInfo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}
	return statStorage(abs)
}

// IsNetworkStorage reports whether path is on network storage. Paths that
// cannot be inspected count as local.
func IsNetworkStorage(path string) bool {
	info, err := DetectStorage(path)
	if err != nil {
		return false
	}
	return info.IsNetwork
}
