// Package host provides the platform collaborators of a browsing session:
// folder scanning, path prompts, the external viewer and the last-folder
// setting.
package host

import (
	"context"
	"errors"
	"fmt"

	"github.com/franz/sumotube/internal/catalog"
	"github.com/franz/sumotube/internal/report"
	"github.com/franz/sumotube/internal/scan"
	"github.com/franz/sumotube/internal/util"
)

// Settings persists the last opened folder
type Settings interface {
	LastFolder() (string, error)
	SetLastFolder(path string) error
}

// Options configures a Host
type Options struct {
	Scanner  *scan.Scanner
	Settings Settings
	Prompter *Prompter
	Events   *report.EventLogger
}

// Host bundles the collaborators
type Host struct {
	scanner  *scan.Scanner
	settings Settings
	prompter *Prompter
	events   *report.EventLogger
}

// New creates a Host. A nil Scanner scans the OS filesystem and a nil
// Prompter reads stdin.
func New(opts Options) *Host {
	if opts.Scanner == nil {
		opts.Scanner = scan.New(&scan.Config{Logger: opts.Events})
	}
	if opts.Prompter == nil {
		opts.Prompter = NewPrompter(nil, nil)
	}
	return &Host{
		scanner:  opts.Scanner,
		settings: opts.Settings,
		prompter: opts.Prompter,
		events:   opts.Events,
	}
}

// Scanner returns the underlying scanner
func (h *Host) Scanner() *scan.Scanner {
	return h.scanner
}

// ScanFolder lists the videos below root. An unreadable root fails with
// *scan.ScanError.
func (h *Host) ScanFolder(ctx context.Context, root string) ([]catalog.Entry, error) {
	result, err := h.scanner.Scan(ctx, root)
	if err != nil {
		return nil, err
	}
	return result.Entries, nil
}

// PickFolder prompts for a folder, offering defaultPath
func (h *Host) PickFolder(defaultPath string) (string, bool) {
	return h.prompter.PickFolder(defaultPath)
}

// Ask reads one answer from the prompter's input
func (h *Host) Ask(question string) (string, bool) {
	return h.prompter.Ask(question)
}

// PickImageFile prompts for a picture or thumbnail image
func (h *Host) PickImageFile() (string, bool) {
	return h.prompter.PickImageFile()
}

// OpenInExternalViewer opens path in the default application and records
// the attempt. Returns "" on success.
func (h *Host) OpenInExternalViewer(path string) string {
	failure := OpenInExternalViewer(path)
	if failure != "" {
		util.WarnLog("Open failed: %s", failure)
	}
	h.events.LogOpen(path, failure)
	return failure
}

// LastFolder returns the last opened folder, or "" if unknown.
// Read failures are logged and treated as unknown.
func (h *Host) LastFolder() string {
	if h.settings == nil {
		return ""
	}
	folder, err := h.settings.LastFolder()
	if err != nil {
		util.WarnLog("Failed to read last folder: %v", err)
		return ""
	}
	return folder
}

// SetLastFolder records the last opened folder
func (h *Host) SetLastFolder(path string) error {
	if h.settings == nil {
		return errors.New("no settings store")
	}
	if err := h.settings.SetLastFolder(path); err != nil {
		return fmt.Errorf("failed to save last folder: %w", err)
	}
	return nil
}
