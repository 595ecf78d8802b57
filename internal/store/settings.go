package store

import (
	"database/sql"
	"fmt"
)

const settingLastFolder = "last_folder"

// GetSetting returns a setting value. A missing key returns ("", false, nil).
func (s *Store) GetSetting(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, true, nil
}

// SetSetting inserts or replaces a setting value
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}

// DeleteSetting removes a setting
func (s *Store) DeleteSetting(key string) error {
	_, err := s.db.Exec(`DELETE FROM settings WHERE key = ?`, key)
	return err
}

// LastFolder returns the last opened folder, or "" if none was recorded
func (s *Store) LastFolder() (string, error) {
	value, _, err := s.GetSetting(settingLastFolder)
	return value, err
}

// SetLastFolder records the last opened folder
func (s *Store) SetLastFolder(path string) error {
	if path == "" {
		return s.DeleteSetting(settingLastFolder)
	}
	return s.SetSetting(settingLastFolder, path)
}
