package overlay

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/franz/sumotube/internal/store"
	"github.com/franz/sumotube/internal/util"
	"github.com/spf13/afero"
)

// Backend persists the whole overlay document
type Backend interface {
	// Name identifies the backend in logs
	Name() string
	// Load returns the stored document, or nil with no error when nothing
	// has been stored yet
	Load(ctx context.Context) (*Document, error)
	Save(ctx context.Context, doc *Document) error
}

// SQLiteBackend keeps the document as JSON in the state database
type SQLiteBackend struct {
	db    *store.Store
	retry *util.RetryConfig
}

// NewSQLiteBackend wraps an open state database
func NewSQLiteBackend(db *store.Store) *SQLiteBackend {
	return &SQLiteBackend{db: db, retry: util.DefaultRetryConfig()}
}

func (b *SQLiteBackend) Name() string {
	return "sqlite:" + b.db.Path()
}

func (b *SQLiteBackend) Load(ctx context.Context) (*Document, error) {
	body, _, err := b.db.LoadOverlayDocument()
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, nil
	}
	return Decode(body, FormatJSON)
}

func (b *SQLiteBackend) Save(ctx context.Context, doc *Document) error {
	body, err := Encode(doc, FormatJSON)
	if err != nil {
		return err
	}
	return util.Retry(ctx, b.retry, func() error {
		return b.db.SaveOverlayDocument(body)
	}, "save overlay document")
}

// FileBackend keeps the document as a file on an afero filesystem. The
// format follows the file extension.
type FileBackend struct {
	fs     afero.Fs
	path   string
	format Format
	retry  *util.RetryConfig
}

// NewFileBackend creates a file backend for path on fs
func NewFileBackend(fs afero.Fs, path string) *FileBackend {
	return &FileBackend{
		fs:     fs,
		path:   path,
		format: FormatForPath(path),
		retry:  util.DefaultRetryConfig(),
	}
}

func (b *FileBackend) Name() string {
	return "file:" + b.path
}

func (b *FileBackend) Load(ctx context.Context) (*Document, error) {
	data, err := afero.ReadFile(b.fs, b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	return Decode(data, b.format)
}

// Save writes to a temp file next to the target and renames it into place
func (b *FileBackend) Save(ctx context.Context, doc *Document) error {
	data, err := Encode(doc, b.format)
	if err != nil {
		return err
	}

	dir := filepath.Dir(b.path)
	if err := b.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create overlay directory: %w", err)
	}

	tmp := b.path + ".tmp"
	return util.Retry(ctx, b.retry, func() error {
		if err := afero.WriteFile(b.fs, tmp, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", tmp, err)
		}
		if err := b.fs.Rename(tmp, b.path); err != nil {
			b.fs.Remove(tmp)
			return fmt.Errorf("failed to replace %s: %w", b.path, err)
		}
		return nil
	}, "save overlay file")
}
