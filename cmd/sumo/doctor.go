package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/franz/sumotube/internal/overlay"
	"github.com/franz/sumotube/internal/store"
	"github.com/franz/sumotube/internal/util"
	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks on the environment and configuration",
	Long: `Run diagnostic checks to ensure sumo can operate correctly.

This command checks:
- ffprobe (used for video lengths)
- The system's default-application opener
- SQLite and the state database
- The overlay document
- Whether another session holds the state lock
- The library folder and whether it is on network storage

Use this command to troubleshoot issues before browsing.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)

	doctorCmd.Flags().String("folder", "", "Library folder to check (default is the last opened folder)")
}

type checkResult struct {
	name    string
	message string
	error   bool
	warning bool
}

func runDoctor(cmd *cobra.Command, args []string) error {
	util.InfoLog("=== Sumo Doctor - System Diagnostics ===")
	util.InfoLog("")

	results := []checkResult{}

	results = append(results, checkFFprobe())
	results = append(results, checkOpener(runtime.GOOS))
	results = append(results, checkSQLite())

	path := dbPath()
	results = append(results, checkDatabase(path))
	results = append(results, checkLock(path))
	results = append(results, checkOverlay(path))

	folder, _ := cmd.Flags().GetString("folder")
	if folder == "" {
		folder = lastFolderOf(path)
	}
	if folder != "" {
		results = append(results, checkLibraryFolder(absPath(folder)))
		results = append(results, checkNetwork(absPath(folder)))
	}

	// Print results
	util.InfoLog("")
	util.InfoLog("=== Diagnostic Results ===")
	util.InfoLog("")

	hasErrors := false
	hasWarnings := false

	for _, r := range results {
		symbol := "✓"
		if r.error {
			symbol = "✗"
			hasErrors = true
		} else if r.warning {
			symbol = "⚠"
			hasWarnings = true
		}

		line := fmt.Sprintf("[%s] %s", symbol, r.name)
		if r.message != "" {
			line += fmt.Sprintf(": %s", r.message)
		}

		if r.error {
			util.ErrorLog("%s", line)
		} else if r.warning {
			util.WarnLog("%s", line)
		} else {
			util.SuccessLog("%s", line)
		}
	}

	// Summary
	util.InfoLog("")
	if hasErrors {
		util.ErrorLog("Some critical checks failed. Please resolve errors before browsing.")
		return fmt.Errorf("system diagnostics failed")
	} else if hasWarnings {
		util.WarnLog("Some checks produced warnings. Sumo still works with reduced features.")
	} else {
		util.SuccessLog("All checks passed!")
	}

	return nil
}

// checkFFprobe verifies ffprobe is available and gets version.
// Without it every length shows as unknown, so it is only a warning.
func checkFFprobe() checkResult {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "ffprobe", "-version")
	output, err := cmd.CombinedOutput()

	if err != nil {
		return checkResult{
			name:    "ffprobe",
			warning: true,
			message: "not found (video lengths will show as --:--)",
		}
	}

	// Parse version from first line
	lines := strings.Split(string(output), "\n")
	version := "unknown"
	if len(lines) > 0 {
		parts := strings.Fields(lines[0])
		if len(parts) >= 3 {
			version = parts[2]
		}
	}

	return checkResult{
		name:    "ffprobe",
		message: fmt.Sprintf("version %s", version),
	}
}

// checkOpener verifies the command used to open videos exists
func checkOpener(goos string) checkResult {
	name := "xdg-open"
	switch goos {
	case "darwin":
		name = "open"
	case "windows":
		name = "rundll32"
	}

	if _, err := exec.LookPath(name); err != nil {
		return checkResult{
			name:    "External player",
			warning: true,
			message: fmt.Sprintf("%s not found (videos cannot be opened)", name),
		}
	}
	return checkResult{
		name:    "External player",
		message: name,
	}
}

// checkSQLite verifies SQLite version
func checkSQLite() checkResult {
	// modernc.org/sqlite is built in; just verify we can get the version
	version := store.SQLiteVersion()
	if version == "" {
		return checkResult{
			name:    "SQLite",
			error:   true,
			message: "unable to determine version",
		}
	}

	return checkResult{
		name:    "SQLite",
		message: fmt.Sprintf("version %s (built-in)", version),
	}
}

// checkDatabase verifies database file accessibility
func checkDatabase(dbPath string) checkResult {
	info, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return checkResult{
				name:    "Database",
				message: fmt.Sprintf("%s (will be created on first run)", dbPath),
			}
		}
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("cannot access %s: %v", dbPath, err),
		}
	}

	if !info.Mode().IsRegular() {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("%s is not a regular file", dbPath),
		}
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("cannot open %s: %v", dbPath, err),
		}
	}
	defer db.Close()

	if err := db.CheckIntegrity(); err != nil {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("integrity check failed: %v", err),
		}
	}

	scans, _ := db.RecentScans(1)
	last := "never scanned"
	if len(scans) > 0 {
		last = "last scan " + humanize.Time(scans[0].StartedAt)
	}

	message := fmt.Sprintf("%s (%s, %s)", dbPath, humanize.Bytes(uint64(info.Size())), last)
	if util.IsNetworkStorage(filepath.Dir(dbPath)) {
		return checkResult{
			name:    "Database",
			warning: true,
			message: message + "; on network storage, SQLite locking may be unreliable",
		}
	}
	return checkResult{
		name:    "Database",
		message: message,
	}
}

// checkLock reports whether another session is running
func checkLock(dbPath string) checkResult {
	lock := flock.New(dbPath + ".lock")
	if _, err := os.Stat(lock.Path()); os.IsNotExist(err) {
		return checkResult{name: "Session lock", message: "free"}
	}

	ok, err := lock.TryLock()
	if err != nil {
		return checkResult{
			name:    "Session lock",
			warning: true,
			message: fmt.Sprintf("cannot check %s: %v", lock.Path(), err),
		}
	}
	if !ok {
		return checkResult{
			name:    "Session lock",
			warning: true,
			message: "held by another sumo session (edits will fail until it exits)",
		}
	}
	lock.Unlock()
	return checkResult{name: "Session lock", message: "free"}
}

// checkOverlay verifies the stored overlay document decodes
func checkOverlay(dbPath string) checkResult {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return checkResult{name: "Overlay", message: "empty"}
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return checkResult{name: "Overlay", error: true, message: err.Error()}
	}
	defer db.Close()

	backend, err := overlayBackend(db)
	if err != nil {
		return checkResult{name: "Overlay", error: true, message: err.Error()}
	}

	doc, err := backend.Load(context.Background())
	if err != nil {
		return checkResult{
			name:    "Overlay",
			warning: true,
			message: fmt.Sprintf("%s is unreadable and will be ignored: %v", backend.Name(), err),
		}
	}
	if doc == nil {
		doc = overlay.NewDocument()
	}

	return checkResult{
		name: "Overlay",
		message: fmt.Sprintf("%s (%d pinned, %d artist profiles, %d playlists)",
			backend.Name(), len(doc.Pinned()), len(doc.ArtistProfiles()), len(doc.Playlists())),
	}
}

// checkLibraryFolder verifies the library folder is readable
func checkLibraryFolder(path string) checkResult {
	info, err := os.Stat(path)
	if err != nil {
		return checkResult{
			name:    "Library folder",
			error:   true,
			message: fmt.Sprintf("cannot access %s: %v", path, err),
		}
	}

	if !info.IsDir() {
		return checkResult{
			name:    "Library folder",
			error:   true,
			message: fmt.Sprintf("%s is not a directory", path),
		}
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return checkResult{
			name:    "Library folder",
			error:   true,
			message: fmt.Sprintf("cannot read %s: %v", path, err),
		}
	}

	return checkResult{
		name:    "Library folder",
		message: fmt.Sprintf("%s (%d entries)", path, len(entries)),
	}
}

// checkNetwork reports how probes are tuned for the library's storage
func checkNetwork(path string) checkResult {
	tuning := libraryTuning(path)
	if !tuning.IsNASMode {
		return checkResult{name: "Storage", message: "local filesystem"}
	}
	return checkResult{
		name:    "Storage",
		warning: true,
		message: strings.ReplaceAll(util.FormatNASSettings(tuning), "\n", ";"),
	}
}

func lastFolderOf(dbPath string) string {
	if _, err := os.Stat(dbPath); err != nil {
		return ""
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return ""
	}
	defer db.Close()
	folder, _ := db.LastFolder()
	return folder
}
