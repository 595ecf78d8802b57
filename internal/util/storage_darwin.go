//go:build darwin

package util

import (
	"fmt"
	"strings"

	"golang.org/x/sys/unix"
)

func statStorage(path string) (*StorageInfo, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return nil, fmt.Errorf("failed to stat filesystem: %w", err)
	}

	fsType := strings.ToLower(unix.ByteSliceToString(st.Fstypename[:]))
	info := &StorageInfo{MountPath: unix.ByteSliceToString(st.Mntonname[:])}
	for _, net := range []string{"nfs", "smbfs", "afpfs", "cifs", "webdav"} {
		if strings.Contains(fsType, net) {
			info.IsNetwork = true
			info.Protocol = fsType
			break
		}
	}
	return info, nil
}
