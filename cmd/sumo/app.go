package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/franz/sumotube/internal/catalog"
	"github.com/franz/sumotube/internal/host"
	"github.com/franz/sumotube/internal/overlay"
	"github.com/franz/sumotube/internal/report"
	"github.com/franz/sumotube/internal/scan"
	"github.com/franz/sumotube/internal/store"
	"github.com/franz/sumotube/internal/util"
	"github.com/gofrs/flock"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// app holds what every command needs: the state database, the overlay
// store, the event log and the host collaborators
type app struct {
	db      *store.Store
	lock    *flock.Flock
	events  *report.EventLogger
	overlay *overlay.Store
	host    *host.Host
}

type appOptions struct {
	// write takes the single-writer lock
	write bool
	// interactive disables the scan progress bar
	interactive bool
	// prompter overrides the stdin prompter
	prompter *host.Prompter
}

// openApp opens the state database and loads the overlay document
func openApp(ctx context.Context, opts appOptions) (*app, error) {
	path := dbPath()
	a := &app{}

	if opts.write {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
		a.lock = flock.New(path + ".lock")
		ok, err := a.lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("acquire lock: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s", util.ErrLocked, a.lock.Path())
		}
	}

	util.DebugLog("Opening database: %s", path)
	db, err := store.Open(path)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a.db = db

	a.events = openEvents()

	backend, err := overlayBackend(db)
	if err != nil {
		a.close()
		return nil, err
	}
	a.overlay = overlay.New(overlay.Options{Backend: backend, Events: a.events})
	a.overlay.Load(ctx)

	scanner := scan.New(&scan.Config{
		AdditionalExts: GetConfigStringSlice("scan.extensions"),
		Logger:         a.events,
		NoProgress:     opts.interactive,
	})
	a.host = host.New(host.Options{
		Scanner:  scanner,
		Settings: db,
		Prompter: opts.prompter,
		Events:   a.events,
	})

	return a, nil
}

// openEvents creates the event logger with a level that follows the log
// settings. An empty events directory disables it.
func openEvents() *report.EventLogger {
	dir := viper.GetString("events")
	if dir == "" {
		return report.NullLogger()
	}

	logLevel := report.LevelInfo // Default
	if viper.IsSet("event-level") {
		logLevel = report.ParseLevel(viper.GetString("event-level"))
	} else if viper.GetBool("quiet") {
		logLevel = report.LevelWarning // Only warnings and errors
	} else if viper.GetBool("verbose") {
		logLevel = report.LevelDebug // Everything
	}

	logger, err := report.NewEventLogger(dir, logLevel)
	if err != nil {
		util.WarnLog("Failed to create event logger: %v", err)
		return report.NullLogger()
	}
	util.DebugLog("Event log: %s", logger.Path())
	return logger
}

// overlayBackend picks where the overlay document lives
func overlayBackend(db *store.Store) (overlay.Backend, error) {
	switch strings.ToLower(GetConfigString("overlay.backend", "sqlite")) {
	case "sqlite":
		return overlay.NewSQLiteBackend(db), nil
	case "file":
		return overlay.NewFileBackend(afero.NewOsFs(), overlayFilePath()), nil
	default:
		return nil, fmt.Errorf("%w: overlay.backend %q (want sqlite or file)",
			util.ErrInvalidConfig, viper.GetString("overlay.backend"))
	}
}

func (a *app) close() {
	if a.events != nil {
		a.events.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
	if a.lock != nil {
		a.lock.Unlock()
	}
}

// folderArg returns the folder argument or the last opened folder
func (a *app) folderArg(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		abs, err := filepath.Abs(host.ExpandHome(args[0]))
		if err != nil {
			return "", err
		}
		return abs, nil
	}
	if last := a.host.LastFolder(); last != "" {
		return last, nil
	}
	return "", errors.New("no folder given and no folder opened before")
}

// scanFolder scans root, records the run and remembers the folder
func (a *app) scanFolder(ctx context.Context, root string) (*scan.Result, error) {
	started := time.Now()
	result, err := a.host.Scanner().Scan(ctx, root)
	a.recordScan(root, started, result, err)
	if err != nil {
		return nil, err
	}

	if err := a.host.SetLastFolder(root); err != nil {
		util.WarnLog("%v", err)
	}
	return result, nil
}

// recordScan adds a scan run to the history
func (a *app) recordScan(root string, started time.Time, result *scan.Result, err error) {
	run := &store.ScanRun{Root: root, StartedAt: started, CompletedAt: time.Now()}
	if result != nil {
		run.Videos = len(result.Entries)
		run.Sidecars = result.Sidecars
		run.Skipped = result.Skipped
	}
	if err != nil {
		run.Error = err.Error()
	}
	if rerr := a.db.RecordScan(run); rerr != nil {
		util.WarnLog("Failed to record scan: %v", rerr)
	}
}

// loadFolder scans the folder argument
func (a *app) loadFolder(ctx context.Context, args []string) (*scan.Result, error) {
	root, err := a.folderArg(args)
	if err != nil {
		return nil, err
	}
	return a.scanFolder(ctx, root)
}

// rawVideo derives a video from a path argument. The file need not be in a
// scanned folder; defaults come from its name and parent folder.
func rawVideo(arg string) (catalog.RawVideo, error) {
	path, err := filepath.Abs(host.ExpandHome(arg))
	if err != nil {
		return catalog.RawVideo{}, err
	}
	return catalog.FromPath(path), nil
}

// apply runs one overlay command and reports a failed save
func (a *app) apply(cmd overlay.Command) (overlay.Change, error) {
	change := cmd.Apply(a.overlay)
	if change.IsNone() {
		util.InfoLog("Nothing changed")
		return change, nil
	}
	if err := a.overlay.LastSaveError(); err != nil {
		return change, err
	}
	util.SuccessLog("Saved %s", change)
	return change, nil
}

// withWriter opens the app holding the writer lock and runs fn
func withWriter(fn func(ctx context.Context, a *app) error) error {
	ctx := context.Background()
	a, err := openApp(ctx, appOptions{write: true})
	if err != nil {
		return err
	}
	defer a.close()
	return fn(ctx, a)
}

// absPath expands ~ and makes path absolute, keeping it as given on error
func absPath(path string) string {
	abs, err := filepath.Abs(host.ExpandHome(path))
	if err != nil {
		return path
	}
	return abs
}
