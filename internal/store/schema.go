package store

// Schema v1 - settings and the overlay document
const schemaV1 = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
  version INTEGER PRIMARY KEY,
  applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Key/value host settings (last folder, ...)
CREATE TABLE IF NOT EXISTS settings (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- The overlay document, stored whole (single row)
CREATE TABLE IF NOT EXISTS overlay_document (
  id INTEGER PRIMARY KEY CHECK (id = 1),
  body TEXT NOT NULL,
  saved_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// Schema v2 - scan history
const schemaV2 = `
CREATE TABLE IF NOT EXISTS scan_runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  root TEXT NOT NULL,
  started_at DATETIME NOT NULL,
  completed_at DATETIME,
  videos INTEGER DEFAULT 0,
  sidecars INTEGER DEFAULT 0,
  skipped INTEGER DEFAULT 0,
  error TEXT
);

CREATE INDEX IF NOT EXISTS idx_scan_runs_root ON scan_runs(root, started_at);
`
