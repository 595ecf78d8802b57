package scan

import (
	"context"
	"errors"
	"sync"

	"github.com/franz/sumotube/internal/util"
	"github.com/sourcegraph/conc"
)

// Outcome is the result of one managed scan
type Outcome struct {
	Generation uint64
	Root       string
	Result     *Result
	Err        error
}

// Manager runs at most one scan at a time. Starting a scan cancels the
// outstanding one; only the newest generation is ever delivered.
type Manager struct {
	scanner *Scanner

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	wg     conc.WaitGroup
}

// NewManager creates a scan manager around scanner
func NewManager(scanner *Scanner) *Manager {
	return &Manager{scanner: scanner}
}

// Start cancels any outstanding scan and scans root in the background.
// deliver runs on the scan goroutine; it is skipped when a newer scan has
// started in the meantime.
func (m *Manager) Start(ctx context.Context, root string, deliver func(Outcome)) uint64 {
	m.mu.Lock()
	if m.cancel != nil {
		m.cancel()
	}
	m.gen++
	gen := m.gen
	scanCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.mu.Unlock()

	m.wg.Go(func() {
		defer cancel()
		res, err := m.scanner.Scan(scanCtx, root)
		if !m.IsCurrent(gen) {
			util.DebugLog("Dropping stale scan of %s (generation %d)", root, gen)
			return
		}
		if errors.Is(err, context.Canceled) {
			return
		}
		deliver(Outcome{Generation: gen, Root: root, Result: res, Err: err})
	})
	return gen
}

// IsCurrent reports whether gen is the newest scan generation
func (m *Manager) IsCurrent(gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return gen == m.gen
}

// Cancel stops the outstanding scan, if any
func (m *Manager) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.gen++
}

// Wait blocks until every started scan goroutine has returned
func (m *Manager) Wait() {
	m.wg.Wait()
}
