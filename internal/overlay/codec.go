package overlay

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/franz/sumotube/internal/util"
	"github.com/pelletier/go-toml/v2"
	"go.yaml.in/yaml/v3"
)

// Format is a serialization of the overlay document
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts a format name or file extension
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "json":
		return FormatJSON, nil
	case "toml":
		return FormatTOML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: overlay format %q", util.ErrUnsupported, name)
	}
}

// FormatForPath picks a format from a file extension, defaulting to JSON
func FormatForPath(path string) Format {
	if f, err := ParseFormat(filepath.Ext(path)); err == nil {
		return f
	}
	return FormatJSON
}

type wireProfile struct {
	DisplayName        *string `json:"displayName,omitempty" toml:"displayName,omitempty" yaml:"displayName,omitempty"`
	Bio                *string `json:"bio,omitempty" toml:"bio,omitempty" yaml:"bio,omitempty"`
	ProfilePicturePath *string `json:"profilePicturePath,omitempty" toml:"profilePicturePath,omitempty" yaml:"profilePicturePath,omitempty"`
}

type wireOverride struct {
	Title              *string `json:"title,omitempty" toml:"title,omitempty" yaml:"title,omitempty"`
	ArtistNameOverride *string `json:"artistNameOverride,omitempty" toml:"artistNameOverride,omitempty" yaml:"artistNameOverride,omitempty"`
}

type wirePlaylist struct {
	ID            string   `json:"id" toml:"id" yaml:"id"`
	Name          string   `json:"name" toml:"name" yaml:"name"`
	Description   string   `json:"description" toml:"description" yaml:"description"`
	ThumbnailPath *string  `json:"thumbnailPath,omitempty" toml:"thumbnailPath,omitempty" yaml:"thumbnailPath,omitempty"`
	MemberPaths   []string `json:"memberPaths" toml:"memberPaths" yaml:"memberPaths"`
}

type wireDocument struct {
	Pinned                 []string                `json:"pinned" toml:"pinned" yaml:"pinned"`
	ArtistProfiles         map[string]wireProfile  `json:"artistProfiles" toml:"artistProfiles" yaml:"artistProfiles"`
	CustomThumbnails       map[string]string       `json:"customThumbnails" toml:"customThumbnails" yaml:"customThumbnails"`
	VideoMetadataOverrides map[string]wireOverride `json:"videoMetadataOverrides" toml:"videoMetadataOverrides" yaml:"videoMetadataOverrides"`
	Playlists              []wirePlaylist          `json:"playlists" toml:"playlists" yaml:"playlists"`
}

func toWire(d *Document) wireDocument {
	w := wireDocument{
		Pinned:                 d.Pinned(),
		ArtistProfiles:         make(map[string]wireProfile, len(d.profiles)),
		CustomThumbnails:       make(map[string]string, len(d.thumbnails)),
		VideoMetadataOverrides: make(map[string]wireOverride, len(d.overrides)),
		Playlists:              make([]wirePlaylist, 0, len(d.playlists)),
	}
	if w.Pinned == nil {
		w.Pinned = []string{}
	}
	for folder, p := range d.profiles {
		w.ArtistProfiles[folder] = wireProfile{
			DisplayName:        p.DisplayName.Ptr(),
			Bio:                p.Bio.Ptr(),
			ProfilePicturePath: p.ProfilePicturePath.Ptr(),
		}
	}
	for path, img := range d.thumbnails {
		w.CustomThumbnails[path] = img
	}
	for path, o := range d.overrides {
		w.VideoMetadataOverrides[path] = wireOverride{
			Title:              o.Title.Ptr(),
			ArtistNameOverride: o.ArtistName.Ptr(),
		}
	}
	for _, p := range d.playlists {
		members := p.MemberPaths
		if members == nil {
			members = []string{}
		}
		w.Playlists = append(w.Playlists, wirePlaylist{
			ID:            p.ID,
			Name:          p.Name,
			Description:   p.Description,
			ThumbnailPath: p.ThumbnailPath.Ptr(),
			MemberPaths:   members,
		})
	}
	return w
}

// fromWire rebuilds a document, applying the same cleanup the mutators do
func fromWire(w wireDocument, newID func() string) *Document {
	d := NewDocument()
	for _, p := range w.Pinned {
		if p != "" {
			d.setPinned(p, true)
		}
	}
	for folder, p := range w.ArtistProfiles {
		d.putProfile(folder, ArtistProfile{
			DisplayName:        textUnless(deref(p.DisplayName), folder),
			Bio:                Text(deref(p.Bio)),
			ProfilePicturePath: Text(deref(p.ProfilePicturePath)),
		})
	}
	for path, img := range w.CustomThumbnails {
		d.putThumbnail(path, Text(img))
	}
	for path, o := range w.VideoMetadataOverrides {
		d.putOverride(path, VideoOverride{
			Title:      Text(deref(o.Title)),
			ArtistName: Text(deref(o.ArtistNameOverride)),
		})
	}
	for _, p := range w.Playlists {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			id = newID()
		}
		name := strings.TrimSpace(p.Name)
		if name == "" {
			name = DefaultPlaylistName
		}
		if !d.addPlaylist(Playlist{
			ID:            id,
			Name:          name,
			Description:   strings.TrimSpace(p.Description),
			ThumbnailPath: Text(deref(p.ThumbnailPath)),
			MemberPaths:   p.MemberPaths,
		}) {
			util.WarnLog("Dropping playlist %q: duplicate id %s", name, id)
		}
	}
	return d
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Encode serializes the document. Map keys are emitted in sorted order by
// every codec, so equal documents encode to equal bytes.
func Encode(d *Document, format Format) ([]byte, error) {
	if d == nil {
		d = NewDocument()
	}
	w := toWire(d)
	switch format {
	case FormatJSON, "":
		return json.MarshalIndent(w, "", "  ")
	case FormatTOML:
		return toml.Marshal(w)
	case FormatYAML:
		return yaml.Marshal(w)
	default:
		return nil, fmt.Errorf("%w: overlay format %q", util.ErrUnsupported, format)
	}
}

// Decode parses a document. Malformed input is reported as util.ErrCorrupt.
func Decode(data []byte, format Format) (*Document, error) {
	return decode(data, format, NewPlaylistID)
}

func decode(data []byte, format Format, newID func() string) (*Document, error) {
	var w wireDocument
	var err error
	switch format {
	case FormatJSON, "":
		err = json.Unmarshal(data, &w)
	case FormatTOML:
		err = toml.Unmarshal(data, &w)
	case FormatYAML:
		err = yaml.Unmarshal(data, &w)
	default:
		return nil, fmt.Errorf("%w: overlay format %q", util.ErrUnsupported, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s overlay: %v", util.ErrCorrupt, format, err)
	}
	return fromWire(w, newID), nil
}
