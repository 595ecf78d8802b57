package scan

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/franz/sumotube/internal/util"
	"github.com/fsnotify/fsnotify"
	"github.com/sourcegraph/conc"
)

// DefaultDebounce is how long the watcher waits for the tree to settle
const DefaultDebounce = 500 * time.Millisecond

// WatcherOptions configures a Watcher
type WatcherOptions struct {
	Debounce time.Duration
	// Match filters file events; nil accepts every file
	Match    func(path string) bool
	OnChange func()
}

// Watcher reports debounced changes below a folder tree
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	match    func(string) bool
	onChange func()

	mu     sync.Mutex
	timer  *time.Timer
	closed bool
	wg     conc.WaitGroup
}

// NewWatcher watches root and every directory below it
func NewWatcher(root string, opts WatcherOptions) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.OnChange == nil {
		opts.OnChange = func() {}
	}

	w := &Watcher{
		fsw:      fsw,
		debounce: opts.Debounce,
		match:    opts.Match,
		onChange: opts.OnChange,
	}
	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}

	w.wg.Go(w.loop)
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			util.WarnLog("Not watching %s: %v", path, err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			util.WarnLog("Not watching %s: %v", path, err)
		}
		return nil
	})
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			util.WarnLog("Watch error: %v", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) {
		return
	}

	// New directories must be watched too
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			w.addTree(ev.Name)
			w.schedule()
			return
		}
	}

	// Removed or renamed entries may have been directories
	if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) || w.match == nil || w.match(ev.Name) {
		util.DebugLog("Watch: %s", ev)
		w.schedule()
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if !closed {
		w.onChange()
	}
}

// Close stops watching and drops a pending change
func (w *Watcher) Close() error {
	w.mu.Lock()
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

// Matches reports whether a path is a video or sidecar image the scanner
// would pick up
func (s *Scanner) Matches(path string) bool {
	if s.isVideoFile(path) {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, sc := range SidecarExtensions {
		if ext == sc {
			return true
		}
	}
	return false
}
