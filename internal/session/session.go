// Package session serializes everything that touches the view router.
// User input, scan outcomes and probe results are all posted as tasks and
// run one at a time on a single loop goroutine.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/franz/sumotube/internal/util"
	"github.com/franz/sumotube/internal/view"
	"github.com/sourcegraph/conc"
)

// ErrClosed is returned when posting to a stopped session
var ErrClosed = errors.New("session closed")

// Task runs on the loop goroutine with exclusive access to the router
type Task func(r *view.Router)

// Session owns a router and the loop that drives it
type Session struct {
	router *view.Router
	tasks  chan Task

	mu      sync.Mutex
	stopped bool
	quit    chan struct{}
	wg      conc.WaitGroup
}

// New creates a session around router. Call Start before posting.
func New(router *view.Router) *Session {
	return &Session{
		router: router,
		tasks:  make(chan Task, 64),
		quit:   make(chan struct{}),
	}
}

// Start runs the loop until ctx is cancelled or Close is called
func (s *Session) Start(ctx context.Context) {
	s.wg.Go(func() {
		for {
			select {
			case <-ctx.Done():
				s.stop()
				return
			case <-s.quit:
				return
			case task := <-s.tasks:
				s.run(task)
			}
		}
	})
}

func (s *Session) run(task Task) {
	defer func() {
		if r := recover(); r != nil {
			util.ErrorLog("Session task panicked: %v", r)
		}
	}()
	task(s.router)
}

// Post queues a task without waiting for it
func (s *Session) Post(task Task) error {
	s.mu.Lock()
	stopped := s.stopped
	s.mu.Unlock()
	if stopped {
		return ErrClosed
	}

	select {
	case s.tasks <- task:
		return nil
	case <-s.quit:
		return ErrClosed
	}
}

// Do queues a task and waits for it to finish
func (s *Session) Do(task Task) error {
	done := make(chan struct{})
	err := s.Post(func(r *view.Router) {
		defer close(done)
		task(r)
	})
	if err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-s.quit:
		return ErrClosed
	}
}

func (s *Session) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		s.stopped = true
		close(s.quit)
	}
}

// Close stops the loop and waits for it to exit. Queued tasks that have
// not started are dropped.
func (s *Session) Close() {
	s.stop()
	s.wg.Wait()
}
