//go:build linux

package util

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// statfs(2) magic numbers of network filesystems
var networkMagic = map[uint32]string{
	0x6969:     "nfs",
	0xff534d42: "cifs",
	0xfe534d42: "smb2",
	0x517b:     "smb",
	0x564c:     "ncp",
	// FUSE may be local or remote; the mount table decides
	0x65735546: "fuse",
}

type mount struct {
	Point  string
	FsType string
}

func statStorage(path string) (*StorageInfo, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return nil, fmt.Errorf("failed to stat filesystem: %w", err)
	}

	info := &StorageInfo{}
	if proto, ok := networkMagic[uint32(st.Type)]; ok {
		info.IsNetwork = true
		info.Protocol = proto
	}

	mounts, err := readMounts("/proc/self/mounts")
	if err != nil {
		DebugLog("Cannot read mount table: %v", err)
		return info, nil
	}
	m, ok := mountFor(path, mounts)
	if !ok {
		return info, nil
	}

	info.MountPath = m.Point
	switch {
	case networkFsType(m.FsType):
		info.IsNetwork = true
		info.Protocol = m.FsType
	case info.Protocol == "fuse":
		// ntfs-3g, gocryptfs and the like
		info.IsNetwork = false
		info.Protocol = ""
	}
	return info, nil
}

func networkFsType(fsType string) bool {
	fsType = strings.ToLower(fsType)
	for _, net := range []string{"nfs", "cifs", "smb", "ncpfs", "fuse.sshfs", "fuse.rclone"} {
		if strings.Contains(fsType, net) {
			return true
		}
	}
	return false
}

// readMounts parses a mounts file: device, mount point, type, options...
func readMounts(path string) ([]mount, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var mounts []mount
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		mounts = append(mounts, mount{
			Point:  strings.ReplaceAll(fields[1], `\040`, " "),
			FsType: fields[2],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return mounts, nil
}

// mountFor returns the deepest mount containing path. A later mount on the
// same point shadows an earlier one.
func mountFor(path string, mounts []mount) (mount, bool) {
	var best mount
	found := false
	for _, m := range mounts {
		if !within(path, m.Point) {
			continue
		}
		if !found || len(m.Point) >= len(best.Point) {
			best = m
			found = true
		}
	}
	return best, found
}

func within(path, dir string) bool {
	if dir == "/" {
		return strings.HasPrefix(path, "/")
	}
	return path == dir || strings.HasPrefix(path, dir+"/")
}
