// Package scan discovers video files and their sidecar images under a folder.
package scan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/franz/sumotube/internal/catalog"
	"github.com/franz/sumotube/internal/report"
	"github.com/franz/sumotube/internal/util"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"
)

// VideoExtensions are the default supported video file extensions
var VideoExtensions = []string{
	".mp4",
	".mkv",
	".webm",
	".mov",
	".avi",
	".flv",
	".ogg",
}

// SidecarExtensions are checked in order for a same-basename image
var SidecarExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}

// ScanError means the scan root itself could not be read
type ScanError struct {
	Root string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("cannot scan %s: %v", e.Root, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// Scanner discovers video files in a directory tree
type Scanner struct {
	fs         afero.Fs
	extensions map[string]bool
	logger     *report.EventLogger
	noProgress bool
}

// Config holds scanner configuration
type Config struct {
	Fs             afero.Fs
	AdditionalExts []string
	Logger         *report.EventLogger
	NoProgress     bool
}

// New creates a new Scanner. A nil Fs scans the OS filesystem.
func New(cfg *Config) *Scanner {
	fs := cfg.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	// Build extension map (case-insensitive)
	extMap := make(map[string]bool)
	for _, ext := range VideoExtensions {
		extMap[ext] = true
	}
	for _, ext := range cfg.AdditionalExts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extMap[ext] = true
	}

	return &Scanner{
		fs:         fs,
		extensions: extMap,
		logger:     cfg.Logger,
		noProgress: cfg.NoProgress,
	}
}

// Result represents a scan result
type Result struct {
	Root     string
	Entries  []catalog.Entry
	Sidecars int
	Skipped  int
	Errors   []error
	Duration time.Duration
}

// Scan walks root and returns every video found, in walk order.
// An unreadable root fails with *ScanError; unreadable entries below it are
// skipped with a warning.
func (s *Scanner) Scan(ctx context.Context, root string) (*Result, error) {
	start := time.Now()
	util.DebugLog("Starting scan of: %s", root)

	result := &Result{Root: root}

	info, err := s.fs.Stat(root)
	if err != nil {
		return s.fail(result, start, err)
	}
	if !info.IsDir() {
		return s.fail(result, start, fmt.Errorf("%w: not a directory", util.ErrNotFound))
	}

	var bar *progressbar.ProgressBar
	if !s.noProgress && util.IsTerminal(os.Stdout.Fd()) && !util.IsQuiet() {
		bar = progressbar.NewOptions(-1,
			progressbar.OptionSetDescription("Scanning"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("videos"),
			progressbar.OptionThrottle(200*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}

	var rootErr error
	walkErr := afero.Walk(s.fs, root, func(path string, fi os.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			if path == root {
				rootErr = err
				return err
			}
			util.WarnLog("Skipping unreadable entry %s: %v", path, err)
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Errorf("access error: %s: %w", path, err))
			s.logger.LogSkip(path, err)
			return nil
		}

		if fi.IsDir() || !s.isVideoFile(path) {
			return nil
		}

		entry := catalog.Entry{
			Path:        path,
			Name:        fi.Name(),
			FolderName:  filepath.Base(filepath.Dir(path)),
			SidecarPath: s.SidecarFor(path),
		}
		if entry.SidecarPath != "" {
			result.Sidecars++
		}
		result.Entries = append(result.Entries, entry)

		if bar != nil {
			bar.Add(1)
		}
		return nil
	})

	if bar != nil {
		bar.Finish()
	}
	result.Duration = time.Since(start)

	if rootErr != nil {
		return s.fail(result, start, rootErr)
	}
	if walkErr != nil {
		if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
			return result, walkErr
		}
		return result, fmt.Errorf("walk error: %w", walkErr)
	}

	util.DebugLog("Scan complete: %d videos, %d sidecars, %d skipped in %s",
		len(result.Entries), result.Sidecars, result.Skipped, result.Duration.Round(time.Millisecond))
	s.logger.LogScan(root, len(result.Entries), result.Sidecars, result.Skipped, result.Duration, nil)

	return result, nil
}

func (s *Scanner) fail(result *Result, start time.Time, err error) (*Result, error) {
	result.Duration = time.Since(start)
	serr := &ScanError{Root: result.Root, Err: err}
	s.logger.LogScan(result.Root, 0, 0, 0, result.Duration, serr)
	return result, serr
}

// SidecarFor returns the first same-basename image next to a video, or ""
func (s *Scanner) SidecarFor(videoPath string) string {
	base := strings.TrimSuffix(videoPath, filepath.Ext(videoPath))
	for _, ext := range SidecarExtensions {
		candidate := base + ext
		if fi, err := s.fs.Stat(candidate); err == nil && !fi.IsDir() {
			return candidate
		}
	}
	return ""
}

// isVideoFile checks if a file has a supported video extension
func (s *Scanner) isVideoFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return s.extensions[ext]
}

// SupportedExtensions returns the list of supported extensions
func (s *Scanner) SupportedExtensions() []string {
	exts := make([]string, 0, len(s.extensions))
	for ext := range s.extensions {
		exts = append(exts, ext)
	}
	return exts
}
