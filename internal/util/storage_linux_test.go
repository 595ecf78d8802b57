//go:build linux

package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadMounts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mounts")
	content := `/dev/sda1 / ext4 rw,relatime 0 0
//nas/videos /mnt/nas\040share cifs rw 0 0
short line
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	mounts, err := readMounts(path)
	if err != nil {
		t.Fatalf("readMounts failed: %v", err)
	}
	if len(mounts) != 2 {
		t.Fatalf("expected 2 mounts, got %+v", mounts)
	}
	if mounts[1].Point != "/mnt/nas share" || mounts[1].FsType != "cifs" {
		t.Errorf("unexpected mount: %+v", mounts[1])
	}
}

func TestReadSystemMounts(t *testing.T) {
	mounts, err := readMounts("/proc/self/mounts")
	if err != nil {
		t.Skipf("no mount table: %v", err)
	}
	if _, ok := mountFor("/", mounts); !ok {
		t.Error("expected a mount for /")
	}
}

func TestMountFor(t *testing.T) {
	mounts := []mount{
		{Point: "/", FsType: "ext4"},
		{Point: "/mnt/a", FsType: "nfs4"},
		{Point: "/mnt/a/b", FsType: "ext4"},
		{Point: "/mnt/a", FsType: "cifs"},
	}

	tests := []struct {
		path, point, fsType string
	}{
		{"/home/me/videos", "/", "ext4"},
		{"/mnt/a", "/mnt/a", "cifs"},
		{"/mnt/a/x.mp4", "/mnt/a", "cifs"},
		{"/mnt/ab/x.mp4", "/", "ext4"},
		{"/mnt/a/b/c", "/mnt/a/b", "ext4"},
	}
	for _, tt := range tests {
		m, ok := mountFor(tt.path, mounts)
		if !ok || m.Point != tt.point || m.FsType != tt.fsType {
			t.Errorf("mountFor(%s) = %+v, %v; expected %s (%s)", tt.path, m, ok, tt.point, tt.fsType)
		}
	}
}

func TestNetworkFsType(t *testing.T) {
	tests := map[string]bool{
		"nfs4":           true,
		"cifs":           true,
		"SMB3":           true,
		"fuse.sshfs":     true,
		"fuse.rclone":    true,
		"ext4":           false,
		"fuse.gocryptfs": false,
		"tmpfs":          false,
	}
	for fsType, want := range tests {
		if got := networkFsType(fsType); got != want {
			t.Errorf("networkFsType(%s) = %v, expected %v", fsType, got, want)
		}
	}
}
