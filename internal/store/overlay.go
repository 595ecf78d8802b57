package store

import (
	"database/sql"
	"fmt"
	"time"
)

// LoadOverlayDocument returns the stored overlay document body.
// Returns (nil, time.Time{}, nil) when nothing has been saved yet.
func (s *Store) LoadOverlayDocument() ([]byte, time.Time, error) {
	var body string
	var savedAt time.Time
	err := s.db.QueryRow(`
		SELECT body, saved_at FROM overlay_document WHERE id = 1
	`).Scan(&body, &savedAt)
	if err == sql.ErrNoRows {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to load overlay document: %w", err)
	}
	return []byte(body), savedAt, nil
}

// SaveOverlayDocument replaces the stored overlay document body
func (s *Store) SaveOverlayDocument(body []byte) error {
	return s.Transaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO overlay_document (id, body, saved_at) VALUES (1, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				body = excluded.body,
				saved_at = excluded.saved_at
		`, string(body), time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to save overlay document: %w", err)
		}
		return nil
	})
}

// ClearOverlayDocument removes the stored overlay document
func (s *Store) ClearOverlayDocument() error {
	_, err := s.db.Exec(`DELETE FROM overlay_document`)
	return err
}
