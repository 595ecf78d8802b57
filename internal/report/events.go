package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventType represents the type of event
type EventType string

const (
	EventScan     EventType = "scan"
	EventSkip     EventType = "skip"
	EventMutation EventType = "mutation"
	EventLoad     EventType = "load"
	EventSave     EventType = "save"
	EventImport   EventType = "import"
	EventProbe    EventType = "probe"
	EventOpen     EventType = "open"
	EventNavigate EventType = "navigate"
	EventError    EventType = "error"
)

// EventLevel represents the severity level
type EventLevel string

const (
	LevelDebug   EventLevel = "debug"
	LevelInfo    EventLevel = "info"
	LevelWarning EventLevel = "warning"
	LevelError   EventLevel = "error"
)

// levelPriority maps event levels to numeric priorities for comparison
var levelPriority = map[EventLevel]int{
	LevelDebug:   0,
	LevelInfo:    1,
	LevelWarning: 2,
	LevelError:   3,
}

// ParseLevel maps a level name to an EventLevel, defaulting to info
func ParseLevel(name string) EventLevel {
	level := EventLevel(name)
	if _, ok := levelPriority[level]; ok {
		return level
	}
	return LevelInfo
}

// Event represents a single event in a browsing session
type Event struct {
	Timestamp  time.Time         `json:"ts"`
	Level      EventLevel        `json:"level"`
	Event      EventType         `json:"event"`
	Path       string            `json:"path,omitempty"`
	Folder     string            `json:"folder,omitempty"`
	PlaylistID string            `json:"playlist_id,omitempty"`
	Action     string            `json:"action,omitempty"`
	Reason     string            `json:"reason,omitempty"`
	Count      int               `json:"count,omitempty"`
	Duration   int64             `json:"duration_ms,omitempty"` // in milliseconds
	Error      string            `json:"error,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// EventLogger writes events to a JSONL file
type EventLogger struct {
	file     *os.File
	encoder  *json.Encoder
	mu       sync.Mutex
	path     string
	minLevel EventLevel
}

// NewEventLogger creates a new event logger with a minimum log level
// minLevel determines which events are written (e.g., LevelInfo skips LevelDebug)
func NewEventLogger(outputDir string, minLevel EventLevel) (*EventLogger, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	filename := fmt.Sprintf("events-%s.jsonl", timestamp)
	path := filepath.Join(outputDir, filename)

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create event log: %w", err)
	}

	return &EventLogger{
		file:     file,
		encoder:  json.NewEncoder(file),
		path:     path,
		minLevel: minLevel,
	}, nil
}

// Log writes an event to the JSONL file
func (l *EventLogger) Log(event *Event) error {
	if l == nil || l.file == nil {
		return nil // Silently ignore if logger not initialized
	}

	if levelPriority[event.Level] < levelPriority[l.minLevel] {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if err := l.encoder.Encode(event); err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	return nil
}

// LogScan logs a finished folder scan
func (l *EventLogger) LogScan(root string, videos, sidecars, skipped int, duration time.Duration, err error) error {
	level := LevelInfo
	errMsg := ""
	if err != nil {
		level = LevelError
		errMsg = err.Error()
	}

	return l.Log(&Event{
		Level:    level,
		Event:    EventScan,
		Path:     root,
		Count:    videos,
		Duration: duration.Milliseconds(),
		Error:    errMsg,
		Extra: map[string]string{
			"sidecars": fmt.Sprintf("%d", sidecars),
			"skipped":  fmt.Sprintf("%d", skipped),
		},
	})
}

// LogSkip logs an entry the scanner could not read
func (l *EventLogger) LogSkip(path string, err error) error {
	return l.Log(&Event{
		Level: LevelWarning,
		Event: EventSkip,
		Path:  path,
		Error: err.Error(),
	})
}

// LogMutation logs an applied overlay change
func (l *EventLogger) LogMutation(action, path, folder, playlistID string) error {
	return l.Log(&Event{
		Level:      LevelInfo,
		Event:      EventMutation,
		Action:     action,
		Path:       path,
		Folder:     folder,
		PlaylistID: playlistID,
	})
}

// LogLoad logs loading the overlay at startup
func (l *EventLogger) LogLoad(source string, err error) error {
	level := LevelInfo
	errMsg := ""
	if err != nil {
		level = LevelWarning
		errMsg = err.Error()
	}

	return l.Log(&Event{
		Level:  level,
		Event:  EventLoad,
		Path:   source,
		Error:  errMsg,
		Reason: "overlay",
	})
}

// LogSave logs an overlay save; failures are errors, successes debug
func (l *EventLogger) LogSave(target string, duration time.Duration, err error) error {
	level := LevelDebug
	errMsg := ""
	if err != nil {
		level = LevelError
		errMsg = err.Error()
	}

	return l.Log(&Event{
		Level:    level,
		Event:    EventSave,
		Path:     target,
		Duration: duration.Milliseconds(),
		Error:    errMsg,
	})
}

// LogImport logs an overlay import or export
func (l *EventLogger) LogImport(action, path, format string) error {
	return l.Log(&Event{
		Level:  LevelInfo,
		Event:  EventImport,
		Action: action,
		Path:   path,
		Extra: map[string]string{
			"format": format,
		},
	})
}

// LogProbe logs a duration probe result
func (l *EventLogger) LogProbe(path string, duration time.Duration, late bool, err error) error {
	level := LevelDebug
	errMsg := ""
	if err != nil {
		level = LevelWarning
		errMsg = err.Error()
	}

	return l.Log(&Event{
		Level:    level,
		Event:    EventProbe,
		Path:     path,
		Duration: duration.Milliseconds(),
		Error:    errMsg,
		Extra: map[string]string{
			"late": fmt.Sprintf("%t", late),
		},
	})
}

// LogOpen logs handing a file to the external viewer
func (l *EventLogger) LogOpen(path, failure string) error {
	level := LevelInfo
	if failure != "" {
		level = LevelWarning
	}

	return l.Log(&Event{
		Level: level,
		Event: EventOpen,
		Path:  path,
		Error: failure,
	})
}

// LogNavigate logs a view change
func (l *EventLogger) LogNavigate(view, reason string) error {
	return l.Log(&Event{
		Level:  LevelDebug,
		Event:  EventNavigate,
		Action: view,
		Reason: reason,
	})
}

// LogError logs an error event
func (l *EventLogger) LogError(event EventType, path string, err error) error {
	return l.Log(&Event{
		Level: LevelError,
		Event: event,
		Path:  path,
		Error: err.Error(),
	})
}

// Close closes the event log file
func (l *EventLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.file.Close()
}

// Path returns the path to the event log file
func (l *EventLogger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// NullLogger returns a no-op event logger
func NullLogger() *EventLogger {
	return nil
}
