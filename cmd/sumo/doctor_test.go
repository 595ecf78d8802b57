package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/franz/sumotube/internal/overlay"
	"github.com/franz/sumotube/internal/store"
	"github.com/gofrs/flock"
)

func TestCheckFFprobe(t *testing.T) {
	result := checkFFprobe()

	// ffprobe is optional, so it can warn but never error
	if result.error {
		t.Errorf("ffprobe check should not error, got: %s", result.message)
	}

	if result.message == "" {
		t.Error("expected version information in message")
	}
}

func TestCheckOpener(t *testing.T) {
	for _, goos := range []string{"linux", "darwin", "windows"} {
		result := checkOpener(goos)
		if result.error {
			t.Errorf("%s: opener check should not error: %s", goos, result.message)
		}
		if result.message == "" {
			t.Errorf("%s: expected opener name in message", goos)
		}
	}
}

func TestCheckSQLite(t *testing.T) {
	result := checkSQLite()

	if result.error {
		t.Errorf("SQLite check failed: %s", result.message)
	}

	if result.message == "" {
		t.Error("expected version information in message")
	}
}

func TestCheckDatabase_NonExistent(t *testing.T) {
	// Check a database that doesn't exist
	dbPath := filepath.Join(t.TempDir(), "nonexistent.db")

	result := checkDatabase(dbPath)

	// Should not error - database will be created on first run
	if result.error {
		t.Errorf("non-existent database check should not error: %s", result.message)
	}

	if !strings.Contains(result.message, "created") {
		t.Errorf("expected message about database creation, got %q", result.message)
	}
}

func TestCheckDatabase_Existing(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	now := time.Now()
	run := &store.ScanRun{Root: "/videos", StartedAt: now, CompletedAt: now, Videos: 3}
	if err := db.RecordScan(run); err != nil {
		t.Fatalf("failed to record scan: %v", err)
	}
	db.Close()

	result := checkDatabase(dbPath)

	if result.error {
		t.Errorf("database check failed: %s", result.message)
	}

	if !strings.Contains(result.message, "last scan") {
		t.Errorf("expected last scan in message, got %q", result.message)
	}
}

func TestCheckDatabase_Directory(t *testing.T) {
	result := checkDatabase(t.TempDir())

	if !result.error {
		t.Error("expected error when database path is a directory")
	}
}

func TestCheckLock(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "sumo.db")

	if result := checkLock(dbPath); result.warning || result.error {
		t.Errorf("expected free lock, got %+v", result)
	}

	held := flock.New(dbPath + ".lock")
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("failed to take lock: %v", err)
	}
	defer held.Unlock()

	// flock locks are per open file description, so a second handle conflicts
	if result := checkLock(dbPath); !result.warning {
		t.Errorf("expected warning for held lock, got %+v", result)
	}
}

func TestCheckOverlay(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "sumo.db")

	if result := checkOverlay(dbPath); result.error || result.warning {
		t.Errorf("missing database should report an empty overlay, got %+v", result)
	}

	db, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	s := overlay.New(overlay.Options{Backend: overlay.NewSQLiteBackend(db)})
	s.Load(context.Background())
	s.TogglePinned("/videos/A/x.mp4")
	s.CreatePlaylist(overlay.PlaylistSpec{Name: "Favourites"})
	if err := s.LastSaveError(); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	db.Close()

	result := checkOverlay(dbPath)
	if result.error || result.warning {
		t.Fatalf("overlay check failed: %+v", result)
	}
	if !strings.Contains(result.message, "1 pinned") || !strings.Contains(result.message, "1 playlists") {
		t.Errorf("unexpected message: %q", result.message)
	}
}

func TestCheckLibraryFolder_Valid(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "clip.mp4"), []byte("x"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	result := checkLibraryFolder(dir)

	if result.error {
		t.Errorf("library folder check failed: %s", result.message)
	}
	if !strings.Contains(result.message, "1 entries") {
		t.Errorf("expected entry count, got %q", result.message)
	}
}

func TestCheckLibraryFolder_NonExistent(t *testing.T) {
	result := checkLibraryFolder("/nonexistent/path/that/does/not/exist")

	if !result.error {
		t.Error("expected error for non-existent directory")
	}
}

func TestCheckLibraryFolder_File(t *testing.T) {
	// Create a file instead of directory
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, "file.txt")
	if err := os.WriteFile(filePath, []byte("test"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	result := checkLibraryFolder(filePath)

	if !result.error {
		t.Error("expected error when path is a file, not a directory")
	}
}

func TestLastFolderOf(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "sumo.db")
	if got := lastFolderOf(dbPath); got != "" {
		t.Errorf("expected no folder for missing database, got %q", got)
	}

	db, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if err := db.SetLastFolder("/videos"); err != nil {
		t.Fatalf("SetLastFolder failed: %v", err)
	}
	db.Close()

	if got := lastFolderOf(dbPath); got != "/videos" {
		t.Errorf("expected /videos, got %q", got)
	}
}
