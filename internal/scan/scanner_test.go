package scan

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func TestIsVideoFile(t *testing.T) {
	scanner := New(&Config{Fs: afero.NewMemMapFs()})

	tests := []struct {
		path     string
		expected bool
	}{
		{"clip.mp4", true},
		{"clip.MP4", true}, // Case insensitive
		{"clip.mkv", true},
		{"clip.webm", true},
		{"clip.ogg", true},
		{"clip.jpg", false},
		{"clip.txt", false},
		{"clip", false},
		{".mov", true},
	}

	for _, tt := range tests {
		result := scanner.isVideoFile(tt.path)
		if result != tt.expected {
			t.Errorf("isVideoFile(%s) = %v, expected %v", tt.path, result, tt.expected)
		}
	}
}

func TestAdditionalExtensions(t *testing.T) {
	scanner := New(&Config{
		Fs:             afero.NewMemMapFs(),
		AdditionalExts: []string{".TS", "m2ts", " "},
	})

	for _, path := range []string{"a.ts", "b.m2ts", "c.mp4"} {
		if !scanner.isVideoFile(path) {
			t.Errorf("expected %s to be a video", path)
		}
	}
	if scanner.isVideoFile("d") {
		t.Error("blank extension should not match extensionless files")
	}
}

func writeFiles(t *testing.T, fs afero.Fs, paths ...string) {
	t.Helper()
	for _, p := range paths {
		if err := afero.WriteFile(fs, p, []byte("x"), 0o644); err != nil {
			t.Fatalf("Failed to create %s: %v", p, err)
		}
	}
}

func TestScanFindsVideosAndSidecars(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs,
		"/lib/A/x.mp4",
		"/lib/A/x.png",
		"/lib/A/x.jpg",
		"/lib/B/y.MKV",
		"/lib/B/notes.txt",
		"/lib/C/sub/z.webm",
		"/lib/C/sub/z.webp",
		"/lib/top.mov",
	)

	scanner := New(&Config{Fs: fs})
	result, err := scanner.Scan(context.Background(), "/lib")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	wantPaths := []string{"/lib/A/x.mp4", "/lib/B/y.MKV", "/lib/C/sub/z.webm", "/lib/top.mov"}
	if len(result.Entries) != len(wantPaths) {
		t.Fatalf("expected %d entries, got %+v", len(wantPaths), result.Entries)
	}
	for i, want := range wantPaths {
		if result.Entries[i].Path != want {
			t.Errorf("entry %d: expected %s, got %s", i, want, result.Entries[i].Path)
		}
	}

	x := result.Entries[0]
	if x.Name != "x.mp4" || x.FolderName != "A" {
		t.Errorf("unexpected entry: %+v", x)
	}
	// .jpg is checked before .png
	if x.SidecarPath != "/lib/A/x.jpg" {
		t.Errorf("expected jpg sidecar, got %q", x.SidecarPath)
	}
	if z := result.Entries[2]; z.FolderName != "sub" || z.SidecarPath != "/lib/C/sub/z.webp" {
		t.Errorf("unexpected nested entry: %+v", z)
	}
	if result.Entries[3].FolderName != "lib" {
		t.Errorf("top-level video should group under the root folder name, got %q", result.Entries[3].FolderName)
	}
	if result.Sidecars != 2 {
		t.Errorf("expected 2 sidecars, got %d", result.Sidecars)
	}
}

func TestScanMissingRoot(t *testing.T) {
	scanner := New(&Config{Fs: afero.NewMemMapFs()})

	_, err := scanner.Scan(context.Background(), "/nowhere")
	var serr *ScanError
	if !errors.As(err, &serr) {
		t.Fatalf("expected ScanError, got %v", err)
	}
	if serr.Root != "/nowhere" {
		t.Errorf("expected root /nowhere, got %s", serr.Root)
	}
}

func TestScanRootIsFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, "/clip.mp4")

	_, err := New(&Config{Fs: fs}).Scan(context.Background(), "/clip.mp4")
	var serr *ScanError
	if !errors.As(err, &serr) {
		t.Fatalf("expected ScanError, got %v", err)
	}
}

// denyFs fails to open the listed directories
type denyFs struct {
	afero.Fs
	deny map[string]bool
}

func (d denyFs) Open(name string) (afero.File, error) {
	if d.deny[name] {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
	}
	return d.Fs.Open(name)
}

func TestScanUnreadableRoot(t *testing.T) {
	mem := afero.NewMemMapFs()
	writeFiles(t, mem, "/lib/A/x.mp4")
	fs := denyFs{Fs: mem, deny: map[string]bool{"/lib": true}}

	_, err := New(&Config{Fs: fs}).Scan(context.Background(), "/lib")
	var serr *ScanError
	if !errors.As(err, &serr) {
		t.Fatalf("expected ScanError, got %v", err)
	}
	if !errors.Is(err, os.ErrPermission) {
		t.Errorf("expected permission cause, got %v", err)
	}
}

func TestScanSkipsUnreadableSubdir(t *testing.T) {
	mem := afero.NewMemMapFs()
	writeFiles(t, mem, "/lib/A/x.mp4", "/lib/B/y.mp4", "/lib/C/z.mp4")
	fs := denyFs{Fs: mem, deny: map[string]bool{"/lib/B": true}}

	result, err := New(&Config{Fs: fs}).Scan(context.Background(), "/lib")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(result.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %+v", result.Entries)
	}
	if result.Entries[0].Path != "/lib/A/x.mp4" || result.Entries[1].Path != "/lib/C/z.mp4" {
		t.Errorf("unexpected entries: %+v", result.Entries)
	}
	if result.Skipped != 1 || len(result.Errors) != 1 {
		t.Errorf("expected one skipped entry, got skipped=%d errors=%v", result.Skipped, result.Errors)
	}
}

func TestScanCancelled(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFiles(t, fs, "/lib/A/x.mp4")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(&Config{Fs: fs}).Scan(ctx, "/lib")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// blockFs blocks Stat of one path until released
type blockFs struct {
	afero.Fs
	path    string
	release chan struct{}
}

func (b blockFs) Stat(name string) (os.FileInfo, error) {
	if name == b.path {
		<-b.release
	}
	return b.Fs.Stat(name)
}

type outcomes struct {
	mu   sync.Mutex
	list []Outcome
}

func (o *outcomes) add(out Outcome) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.list = append(o.list, out)
}

func (o *outcomes) all() []Outcome {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Outcome(nil), o.list...)
}

func TestManagerDeliversLatestOnly(t *testing.T) {
	mem := afero.NewMemMapFs()
	writeFiles(t, mem, "/old/A/x.mp4", "/new/B/y.mp4")
	release := make(chan struct{})
	m := NewManager(New(&Config{Fs: blockFs{Fs: mem, path: "/old", release: release}}))

	var got outcomes
	ctx := context.Background()
	first := m.Start(ctx, "/old", got.add)
	second := m.Start(ctx, "/new", got.add)
	if second != first+1 {
		t.Errorf("expected generations to increase, got %d then %d", first, second)
	}

	close(release)
	m.Wait()

	list := got.all()
	if len(list) != 1 {
		t.Fatalf("expected exactly one outcome, got %+v", list)
	}
	if list[0].Root != "/new" || list[0].Generation != second || list[0].Err != nil {
		t.Errorf("unexpected outcome: %+v", list[0])
	}
	if len(list[0].Result.Entries) != 1 {
		t.Errorf("expected one entry, got %+v", list[0].Result.Entries)
	}
	if m.IsCurrent(first) {
		t.Error("first generation should be stale")
	}
}

func TestManagerCancelDropsOutcome(t *testing.T) {
	mem := afero.NewMemMapFs()
	writeFiles(t, mem, "/lib/A/x.mp4")
	release := make(chan struct{})
	m := NewManager(New(&Config{Fs: blockFs{Fs: mem, path: "/lib", release: release}}))

	var got outcomes
	m.Start(context.Background(), "/lib", got.add)
	m.Cancel()
	close(release)
	m.Wait()

	if list := got.all(); len(list) != 0 {
		t.Errorf("expected no outcome after cancel, got %+v", list)
	}
}

func TestManagerDeliversScanError(t *testing.T) {
	m := NewManager(New(&Config{Fs: afero.NewMemMapFs()}))

	var got outcomes
	m.Start(context.Background(), "/missing", got.add)
	m.Wait()

	list := got.all()
	if len(list) != 1 {
		t.Fatalf("expected one outcome, got %+v", list)
	}
	var serr *ScanError
	if !errors.As(list[0].Err, &serr) {
		t.Errorf("expected ScanError, got %v", list[0].Err)
	}
}

func TestWatcherReportsChanges(t *testing.T) {
	root := t.TempDir()
	scanner := New(&Config{})
	changes := make(chan struct{}, 8)

	w, err := NewWatcher(root, WatcherOptions{
		Debounce: 20 * time.Millisecond,
		Match:    scanner.Matches,
		OnChange: func() { changes <- struct{}{} },
	})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	wait := func(what string) {
		t.Helper()
		select {
		case <-changes:
		case <-time.After(3 * time.Second):
			t.Fatalf("no change reported after %s", what)
		}
	}

	if err := os.WriteFile(filepath.Join(root, "clip.mp4"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	wait("creating a video")

	sub := filepath.Join(root, "Artist")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	wait("creating a folder")

	if err := os.WriteFile(filepath.Join(sub, "clip.webm"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	wait("creating a video in a new folder")
}

func TestMatches(t *testing.T) {
	scanner := New(&Config{Fs: afero.NewMemMapFs()})
	for path, want := range map[string]bool{
		"a.mp4":  true,
		"a.JPEG": true,
		"a.webp": true,
		"a.txt":  false,
		"a.db":   false,
	} {
		if got := scanner.Matches(path); got != want {
			t.Errorf("Matches(%s) = %v, expected %v", path, got, want)
		}
	}
}
