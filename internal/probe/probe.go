// Package probe reads media facts for videos in the background. Results
// arrive asynchronously and may arrive late; a fallback is delivered when a
// probe takes longer than the configured window.
package probe

import (
	"context"
	"fmt"
	"math"
	"time"
)

// FallbackText is shown when a duration is unknown
const FallbackText = "--:--"

// Info holds media facts for one video
type Info struct {
	Duration   time.Duration
	Container  string
	VideoCodec string
	AudioCodec string
	Width      int
	Height     int
}

// Resolution returns "WxH" or an empty string
func (i Info) Resolution() string {
	if i.Width == 0 || i.Height == 0 {
		return ""
	}
	return fmt.Sprintf("%dx%d", i.Width, i.Height)
}

// Prober reads media facts for a file
type Prober interface {
	Probe(ctx context.Context, path string) (Info, error)
}

// ProberFunc adapts a function to Prober
type ProberFunc func(ctx context.Context, path string) (Info, error)

func (fn ProberFunc) Probe(ctx context.Context, path string) (Info, error) {
	return fn(ctx, path)
}

// MediaProbeError means a file's media facts could not be read
type MediaProbeError struct {
	Path string
	Err  error
}

func (e *MediaProbeError) Error() string {
	return fmt.Sprintf("probe %s: %v", e.Path, e.Err)
}

func (e *MediaProbeError) Unwrap() error {
	return e.Err
}

// FormatDuration renders a duration as m:ss with minutes unbounded.
// Zero or negative durations are unknown.
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return FallbackText
	}
	secs := int(math.Round(d.Seconds()))
	if secs == 0 {
		return FallbackText
	}
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
