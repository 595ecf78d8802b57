package overlay

import "fmt"

// PersistenceReadError means the stored document was unreadable or corrupt.
// Load recovers from it with empty defaults.
type PersistenceReadError struct {
	Source string
	Err    error
}

func (e *PersistenceReadError) Error() string {
	return fmt.Sprintf("read overlay from %s: %v", e.Source, e.Err)
}

func (e *PersistenceReadError) Unwrap() error {
	return e.Err
}

// PersistenceWriteError means a save failed. The in-memory document stays
// authoritative for the session.
type PersistenceWriteError struct {
	Target string
	Err    error
}

func (e *PersistenceWriteError) Error() string {
	return fmt.Sprintf("write overlay to %s: %v", e.Target, e.Err)
}

func (e *PersistenceWriteError) Unwrap() error {
	return e.Err
}
