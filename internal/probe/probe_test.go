package probe

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/franz/sumotube/internal/util"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "--:--"},
		{-time.Second, "--:--"},
		{400 * time.Millisecond, "--:--"},
		{time.Second, "0:01"},
		{59*time.Second + 600*time.Millisecond, "1:00"},
		{3*time.Minute + 7*time.Second, "3:07"},
		{75*time.Minute + 3*time.Second, "75:03"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFFprobeInfo(t *testing.T) {
	info, err := ParseFFprobe([]byte(`{"streams":[
		{"index":0,"codec_type":"video","codec_name":"h264","width":1920,"height":"1080","duration":"N/A"},
		{"index":1,"codec_type":"audio","codec_name":"aac","duration":"187.2"}
	],"format":{"format_name":"mov,mp4,m4a","duration":""}}`))
	if err != nil {
		t.Fatalf("ParseFFprobe failed: %v", err)
	}

	got := info.Info()
	if got.Resolution() != "1920x1080" {
		t.Errorf("expected 1920x1080, got %q", got.Resolution())
	}
	if got.VideoCodec != "h264" || got.AudioCodec != "aac" {
		t.Errorf("unexpected codecs: %+v", got)
	}
	// container duration missing: longest stream wins
	if FormatDuration(got.Duration) != "3:07" {
		t.Errorf("expected 3:07, got %s", FormatDuration(got.Duration))
	}
}

func TestContainerDurationWins(t *testing.T) {
	info, err := ParseFFprobe([]byte(`{"streams":[{"codec_type":"video","duration":"10"}],"format":{"duration":"62.0"}}`))
	if err != nil {
		t.Fatalf("ParseFFprobe failed: %v", err)
	}
	if d := info.Info().Duration; d != 62*time.Second {
		t.Errorf("expected 62s, got %v", d)
	}
}

type collector struct {
	mu      sync.Mutex
	results []Result
	got     chan Result
}

func newCollector() *collector {
	return &collector{got: make(chan Result, 16)}
}

func (c *collector) deliver(r Result) {
	c.mu.Lock()
	c.results = append(c.results, r)
	c.mu.Unlock()
	c.got <- r
}

func (c *collector) next(t *testing.T) Result {
	t.Helper()
	select {
	case r := <-c.got:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a probe result")
		return Result{}
	}
}

func TestDispatcherDeliversAnswer(t *testing.T) {
	c := newCollector()
	d := NewDispatcher(context.Background(), DispatcherOptions{
		Prober: ProberFunc(func(ctx context.Context, path string) (Info, error) {
			return Info{Duration: 65 * time.Second}, nil
		}),
		Window:  time.Second,
		Deliver: c.deliver,
	})
	defer d.Close()

	d.Request("/v/a.mp4")
	r := c.next(t)
	if r.Path != "/v/a.mp4" || r.Text != "1:05" || r.Err != nil || r.Late {
		t.Errorf("unexpected result: %+v", r)
	}
}

func TestDispatcherFallbackThenLateAnswer(t *testing.T) {
	release := make(chan struct{})
	c := newCollector()
	d := NewDispatcher(context.Background(), DispatcherOptions{
		Prober: ProberFunc(func(ctx context.Context, path string) (Info, error) {
			<-release
			return Info{Duration: 2 * time.Second}, nil
		}),
		Window:  20 * time.Millisecond,
		Deliver: c.deliver,
	})
	defer d.Close()

	d.Request("/v/slow.mp4")

	fallback := c.next(t)
	if fallback.Text != FallbackText || !errors.Is(fallback.Err, util.ErrProbeTimeout) {
		t.Errorf("expected timeout fallback, got %+v", fallback)
	}

	close(release)
	late := c.next(t)
	if !late.Late || late.Text != "0:02" {
		t.Errorf("expected late answer, got %+v", late)
	}
}

func TestDispatcherProbeError(t *testing.T) {
	c := newCollector()
	d := NewDispatcher(context.Background(), DispatcherOptions{
		Prober: ProberFunc(func(ctx context.Context, path string) (Info, error) {
			return Info{}, &MediaProbeError{Path: path, Err: errors.New("moov atom not found")}
		}),
		Deliver: c.deliver,
	})
	defer d.Close()

	d.Request("/v/broken.mp4")
	r := c.next(t)

	var perr *MediaProbeError
	if !errors.As(r.Err, &perr) || perr.Path != "/v/broken.mp4" {
		t.Errorf("expected MediaProbeError, got %v", r.Err)
	}
	if r.Text != FallbackText {
		t.Errorf("expected fallback text, got %q", r.Text)
	}
}

func TestDispatcherBoundsConcurrency(t *testing.T) {
	var running, peak atomic.Int32
	c := newCollector()
	d := NewDispatcher(context.Background(), DispatcherOptions{
		Prober: ProberFunc(func(ctx context.Context, path string) (Info, error) {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			running.Add(-1)
			return Info{Duration: time.Minute}, nil
		}),
		Concurrency: 2,
		Window:      time.Second,
		Deliver:     c.deliver,
	})
	defer d.Close()

	for i := 0; i < 6; i++ {
		d.Request(filepath.Join("/v", string(rune('a'+i))+".mp4"))
	}
	for i := 0; i < 6; i++ {
		c.next(t)
	}
	if peak.Load() > 2 {
		t.Errorf("expected at most 2 concurrent probes, saw %d", peak.Load())
	}
}

func TestDispatcherCloseDropsPending(t *testing.T) {
	c := newCollector()
	d := NewDispatcher(context.Background(), DispatcherOptions{
		Prober: ProberFunc(func(ctx context.Context, path string) (Info, error) {
			<-ctx.Done()
			return Info{}, ctx.Err()
		}),
		Window:  time.Hour,
		Deliver: c.deliver,
	})

	d.Request("/v/a.mp4")
	d.Close()
	d.Request("/v/b.mp4")

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.results) != 0 {
		t.Errorf("expected no deliveries after close, got %+v", c.results)
	}
}

func TestReadTagsMissingFile(t *testing.T) {
	if _, err := ReadTags(filepath.Join(t.TempDir(), "missing.mp4")); err == nil {
		t.Error("expected error for missing file")
	}
}
