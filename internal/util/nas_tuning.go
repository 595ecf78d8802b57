package util

import (
	"fmt"
	"time"
)

// LibraryTuning holds background-work settings for one video library
type LibraryTuning struct {
	ProbeConcurrency int
	ProbeWindow      time.Duration
	Watch            bool
	IsNASMode        bool
	DetectedInfo     *StorageInfo
}

// AutoTuneForLibrary detects whether a library lives on network storage and
// adjusts base accordingly. A non-nil nasMode overrides detection.
func AutoTuneForLibrary(root string, nasMode *bool, base LibraryTuning) *LibraryTuning {
	cfg := base
	cfg.IsNASMode = false
	cfg.DetectedInfo = nil

	if nasMode != nil {
		cfg.IsNASMode = *nasMode
		if cfg.IsNASMode {
			applyNASOptimizations(&cfg)
			DebugLog("NAS mode: explicitly enabled via config/flag")
		}
		return &cfg
	}

	if root == "" {
		return &cfg
	}

	info, err := DetectStorage(root)
	if err != nil {
		WarnLog("Failed to detect filesystem for %s: %v", root, err)
		return &cfg
	}
	if !info.IsNetwork {
		DebugLog("Local filesystem detected for %s", root)
		return &cfg
	}

	cfg.IsNASMode = true
	cfg.DetectedInfo = info
	applyNASOptimizations(&cfg)
	InfoLog("Network filesystem detected: %s on %s (%s)", root, info.Protocol, info.MountPath)
	InfoLog("  Probe concurrency: %d → %d", base.ProbeConcurrency, cfg.ProbeConcurrency)
	InfoLog("  Probe window: %s → %s", base.ProbeWindow, cfg.ProbeWindow)
	if base.Watch {
		InfoLog("  Folder watching disabled")
	}
	return &cfg
}

// applyNASOptimizations applies NAS-specific optimizations to config
func applyNASOptimizations(cfg *LibraryTuning) {
	// Each probe reads the container header over the network
	if cfg.ProbeConcurrency > 2 || cfg.ProbeConcurrency <= 0 {
		cfg.ProbeConcurrency = 2
	}

	if cfg.ProbeWindow < 6*time.Second {
		cfg.ProbeWindow = 6 * time.Second
	}

	// inotify does not see changes made by other machines
	cfg.Watch = false
}

// FormatNASSettings returns a human-readable string of NAS settings
func FormatNASSettings(cfg *LibraryTuning) string {
	if !cfg.IsNASMode {
		return "NAS mode: disabled (local filesystem)"
	}

	protocol := "unknown"
	mountPath := "unknown"
	if cfg.DetectedInfo != nil {
		protocol = cfg.DetectedInfo.Protocol
		mountPath = cfg.DetectedInfo.MountPath
	}

	return fmt.Sprintf(`NAS mode: enabled
  Protocol: %s
  Mount: %s
  Probe concurrency: %d
  Probe window: %s
  Watch: %v`,
		protocol, mountPath,
		cfg.ProbeConcurrency, cfg.ProbeWindow, cfg.Watch)
}
