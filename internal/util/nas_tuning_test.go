package util

import (
	"strings"
	"testing"
	"time"
)

func TestAutoTuneExplicitNAS(t *testing.T) {
	on := true
	base := LibraryTuning{ProbeConcurrency: 8, ProbeWindow: 3 * time.Second, Watch: true}

	cfg := AutoTuneForLibrary("/does/not/matter", &on, base)
	if !cfg.IsNASMode {
		t.Fatal("expected NAS mode")
	}
	if cfg.ProbeConcurrency != 2 {
		t.Errorf("expected concurrency 2, got %d", cfg.ProbeConcurrency)
	}
	if cfg.ProbeWindow != 6*time.Second {
		t.Errorf("expected 6s window, got %s", cfg.ProbeWindow)
	}
	if cfg.Watch {
		t.Error("expected watching to be disabled")
	}
	if base.ProbeConcurrency != 8 {
		t.Error("base settings must not be modified")
	}
}

func TestAutoTuneExplicitLocal(t *testing.T) {
	off := false
	base := LibraryTuning{ProbeConcurrency: 8, ProbeWindow: time.Second, Watch: true}

	cfg := AutoTuneForLibrary("/does/not/matter", &off, base)
	if cfg.IsNASMode || cfg.ProbeConcurrency != 8 || cfg.ProbeWindow != time.Second || !cfg.Watch {
		t.Errorf("expected base settings, got %+v", cfg)
	}
}

func TestAutoTuneKeepsLongerWindow(t *testing.T) {
	on := true
	cfg := AutoTuneForLibrary("", &on, LibraryTuning{ProbeConcurrency: 1, ProbeWindow: 10 * time.Second})
	if cfg.ProbeConcurrency != 1 {
		t.Errorf("expected concurrency 1 to be kept, got %d", cfg.ProbeConcurrency)
	}
	if cfg.ProbeWindow != 10*time.Second {
		t.Errorf("expected 10s window to be kept, got %s", cfg.ProbeWindow)
	}
}

func TestAutoTuneMissingPath(t *testing.T) {
	base := LibraryTuning{ProbeConcurrency: 4, ProbeWindow: 3 * time.Second, Watch: true}
	cfg := AutoTuneForLibrary("/this/path/does/not/exist/hopefully", nil, base)
	if cfg.IsNASMode || cfg.ProbeConcurrency != 4 || !cfg.Watch {
		t.Errorf("expected base settings when detection fails, got %+v", cfg)
	}
}

func TestFormatNASSettings(t *testing.T) {
	if got := FormatNASSettings(&LibraryTuning{}); !strings.Contains(got, "disabled") {
		t.Errorf("unexpected local summary: %q", got)
	}

	got := FormatNASSettings(&LibraryTuning{
		IsNASMode:        true,
		ProbeConcurrency: 2,
		ProbeWindow:      6 * time.Second,
		DetectedInfo:     &StorageInfo{IsNetwork: true, Protocol: "cifs", MountPath: "/mnt/nas"},
	})
	for _, want := range []string{"cifs", "/mnt/nas", "Probe concurrency: 2", "6s"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in %q", want, got)
		}
	}
}
