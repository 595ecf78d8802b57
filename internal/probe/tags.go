package probe

import (
	"errors"
	"fmt"
	"os"

	"github.com/dhowden/tag"
)

// Tags is the embedded metadata of a media file
type Tags struct {
	Format   string
	FileType string
	Title    string
	Artist   string
	Album    string
	Year     int
	Comment  string
}

// ReadTags reads embedded tags. A file without tags returns nil, nil.
func ReadTags(path string) (*Tags, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		if errors.Is(err, tag.ErrNoTagsFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read tags: %w", err)
	}

	return &Tags{
		Format:   string(m.Format()),
		FileType: string(m.FileType()),
		Title:    m.Title(),
		Artist:   m.Artist(),
		Album:    m.Album(),
		Year:     m.Year(),
		Comment:  m.Comment(),
	}, nil
}
