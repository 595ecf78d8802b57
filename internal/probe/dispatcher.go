package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/franz/sumotube/internal/report"
	"github.com/franz/sumotube/internal/util"
	"github.com/sourcegraph/conc"
)

const (
	DefaultWindow      = 3 * time.Second
	DefaultConcurrency = 4
)

// Result is one delivered probe outcome. A fallback result has Err set and
// Text == FallbackText; a later real answer for the same path has Late set.
type Result struct {
	Path    string
	Info    Info
	Text    string
	Err     error
	Late    bool
	Elapsed time.Duration
}

// DispatcherOptions configures a Dispatcher
type DispatcherOptions struct {
	Prober      Prober
	Window      time.Duration
	Concurrency int
	Deliver     func(Result)
	Events      *report.EventLogger
}

// Dispatcher runs fire-and-forget probes with bounded concurrency
type Dispatcher struct {
	prober  Prober
	window  time.Duration
	sem     chan struct{}
	deliver func(Result)
	events  *report.EventLogger

	ctx    context.Context
	cancel context.CancelFunc
	wg     conc.WaitGroup
}

// NewDispatcher creates a dispatcher. Probes stop when ctx is cancelled or
// Close is called.
func NewDispatcher(ctx context.Context, opts DispatcherOptions) *Dispatcher {
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Deliver == nil {
		opts.Deliver = func(Result) {}
	}
	ctx, cancel := context.WithCancel(ctx)
	return &Dispatcher{
		prober:  opts.Prober,
		window:  opts.Window,
		sem:     make(chan struct{}, opts.Concurrency),
		deliver: opts.Deliver,
		events:  opts.Events,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Request starts a probe for path and returns immediately
func (d *Dispatcher) Request(path string) {
	if d.ctx.Err() != nil {
		return
	}
	d.wg.Go(func() { d.run(path) })
}

func (d *Dispatcher) run(path string) {
	answer := make(chan Result, 1)
	d.wg.Go(func() { answer <- d.probe(path) })

	timer := time.NewTimer(d.window)
	defer timer.Stop()

	select {
	case res := <-answer:
		d.send(res)
	case <-timer.C:
		d.send(Result{
			Path: path,
			Text: FallbackText,
			Err:  fmt.Errorf("%w: %s after %s", util.ErrProbeTimeout, path, d.window),
		})
		select {
		case res := <-answer:
			if res.Err == nil {
				res.Late = true
				d.send(res)
			}
		case <-d.ctx.Done():
		}
	case <-d.ctx.Done():
	}
}

func (d *Dispatcher) probe(path string) Result {
	select {
	case d.sem <- struct{}{}:
		defer func() { <-d.sem }()
	case <-d.ctx.Done():
		return Result{Path: path, Text: FallbackText, Err: d.ctx.Err()}
	}

	start := time.Now()
	info, err := d.prober.Probe(d.ctx, path)
	res := Result{Path: path, Info: info, Elapsed: time.Since(start)}
	if err != nil {
		res.Err = err
		res.Text = FallbackText
		return res
	}
	res.Text = FormatDuration(info.Duration)
	return res
}

func (d *Dispatcher) send(res Result) {
	if d.ctx.Err() != nil {
		return
	}
	if res.Err != nil {
		util.DebugLog("Probe %s: %v", res.Path, res.Err)
	}
	d.events.LogProbe(res.Path, res.Info.Duration, res.Late, res.Err)
	d.deliver(res)
}

// Close cancels outstanding probes and waits for their goroutines
func (d *Dispatcher) Close() {
	d.cancel()
	d.wg.Wait()
}
