// Package catalog holds the raw, filesystem-derived video listing.
package catalog

import (
	"path/filepath"
	"strings"
)

const (
	untitledName  = "Untitled"
	unknownFolder = "Unknown"
)

// Entry is one discovered video file as reported by the scanner
type Entry struct {
	Path        string
	Name        string
	FolderName  string
	SidecarPath string
}

// RawVideo is the canonical, immutable shape of a discovered video.
// FolderName is the grouping and profile key; nothing else is.
type RawVideo struct {
	Path        string
	Name        string
	Title       string
	FolderName  string
	SidecarPath string
}

// HasSidecar reports whether a same-basename image was found at scan time
func (v RawVideo) HasSidecar() bool {
	return v.SidecarPath != ""
}

// FromEntry normalizes a scanner entry, filling in names the entry omits
func FromEntry(e Entry) RawVideo {
	name := e.Name
	if name == "" && e.Path != "" {
		name = filepath.Base(e.Path)
	}
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = untitledName
	}

	folder := e.FolderName
	if folder == "" && e.Path != "" {
		folder = filepath.Base(filepath.Dir(e.Path))
	}
	if folder == "" || folder == "." || folder == string(filepath.Separator) {
		folder = unknownFolder
	}

	return RawVideo{
		Path:        e.Path,
		Name:        name,
		Title:       TitleFromName(name),
		FolderName:  folder,
		SidecarPath: e.SidecarPath,
	}
}

// FromPath derives a RawVideo from a bare path, without sidecar information
func FromPath(path string) RawVideo {
	return FromEntry(Entry{Path: path})
}

// TitleFromName strips the last extension from a filename.
// A name that is only an extension (".mp4") keeps its text.
func TitleFromName(name string) string {
	ext := filepath.Ext(name)
	if ext == "" || ext == name {
		return name
	}
	return strings.TrimSuffix(name, ext)
}

// Catalog is the ordered raw listing for one scanned folder
type Catalog struct {
	Root   string
	videos []RawVideo
	byPath map[string]int
}

// New normalizes scanner entries into a catalog. Discovery order is kept;
// a repeated path keeps its first occurrence.
func New(root string, entries []Entry) *Catalog {
	c := &Catalog{
		Root:   root,
		videos: make([]RawVideo, 0, len(entries)),
		byPath: make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if e.Path == "" {
			continue
		}
		if _, dup := c.byPath[e.Path]; dup {
			continue
		}
		c.byPath[e.Path] = len(c.videos)
		c.videos = append(c.videos, FromEntry(e))
	}
	return c
}

// Empty returns a catalog with no videos
func Empty() *Catalog {
	return New("", nil)
}

// Len returns the number of videos
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.videos)
}

// Videos returns a copy of the videos in discovery order
func (c *Catalog) Videos() []RawVideo {
	if c == nil {
		return nil
	}
	out := make([]RawVideo, len(c.videos))
	copy(out, c.videos)
	return out
}

// Lookup finds a video by path
func (c *Catalog) Lookup(path string) (RawVideo, bool) {
	if c == nil {
		return RawVideo{}, false
	}
	i, ok := c.byPath[path]
	if !ok {
		return RawVideo{}, false
	}
	return c.videos[i], true
}

// Contains reports whether path is part of the catalog
func (c *Catalog) Contains(path string) bool {
	_, ok := c.Lookup(path)
	return ok
}

// InFolder returns the videos whose FolderName matches, in discovery order
func (c *Catalog) InFolder(folderName string) []RawVideo {
	if c == nil {
		return nil
	}
	var out []RawVideo
	for _, v := range c.videos {
		if v.FolderName == folderName {
			out = append(out, v)
		}
	}
	return out
}

// Folder is one artist group of the catalog
type Folder struct {
	Name  string
	Count int
}

// Folders groups videos by FolderName in order of first appearance
func (c *Catalog) Folders() []Folder {
	if c == nil {
		return nil
	}
	index := make(map[string]int)
	var out []Folder
	for _, v := range c.videos {
		i, ok := index[v.FolderName]
		if !ok {
			index[v.FolderName] = len(out)
			out = append(out, Folder{Name: v.FolderName, Count: 1})
			continue
		}
		out[i].Count++
	}
	return out
}

// SidecarCount returns how many videos have a sidecar image
func (c *Catalog) SidecarCount() int {
	n := 0
	for _, v := range c.Videos() {
		if v.HasSidecar() {
			n++
		}
	}
	return n
}
