package view

import (
	"github.com/franz/sumotube/internal/query"
	"github.com/franz/sumotube/internal/resolve"
)

// Item is one rendered video
type Item struct {
	Video         resolve.DisplayVideo
	Pinned        bool
	PlaylistCount int
	// Duration is "m:ss", "--:--" when unknown, or empty before a probe
	Duration string
}

// Header describes the current artist or playlist. It is empty in the grid.
type Header struct {
	Title       string
	Description string
	ImagePath   string
}

// ArtistEntry is one sidebar artist
type ArtistEntry struct {
	FolderName  string
	DisplayName string
	Count       int
	PicturePath string
}

// PlaylistEntry is one sidebar playlist
type PlaylistEntry struct {
	ID    string
	Name  string
	Count int
}

// Frame is everything a render shows. A new frame replaces the previous
// one entirely.
type Frame struct {
	View      View
	Root      string
	Query     string
	Sort      query.SortKey
	Header    Header
	Items     []Item
	Artists   []ArtistEntry
	Playlists []PlaylistEntry
	// Notice is a one-shot message such as a scan failure
	Notice string
}

// IndexOf returns the item index of path, or -1
func (f Frame) IndexOf(path string) int {
	for i, item := range f.Items {
		if item.Video.Path() == path {
			return i
		}
	}
	return -1
}

// Renderer presents frames
type Renderer interface {
	Render(f Frame)
}

// DurationSink is implemented by renderers that can update one item's
// duration in place. Renderers without it get the whole frame again.
type DurationSink interface {
	SetDuration(path, text string)
}

// RendererFunc adapts a function to Renderer
type RendererFunc func(f Frame)

func (fn RendererFunc) Render(f Frame) {
	fn(f)
}
