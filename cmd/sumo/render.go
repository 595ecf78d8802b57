package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/franz/sumotube/internal/resolve"
	"github.com/franz/sumotube/internal/view"
)

// frameRenderer prints frames as tables. Durations arriving after a render
// patch the kept frame and show on the next print.
type frameRenderer struct {
	mu    sync.Mutex
	out   io.Writer
	frame view.Frame
	// silent keeps frames without printing them
	silent bool
}

func newFrameRenderer(out io.Writer) *frameRenderer {
	return &frameRenderer{out: out}
}

func (fr *frameRenderer) Render(f view.Frame) {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	fr.frame = f
	if !fr.silent {
		fmt.Fprint(fr.out, formatFrame(f))
	}
}

func (fr *frameRenderer) SetDuration(path, text string) {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	if i := fr.frame.IndexOf(path); i >= 0 {
		fr.frame.Items[i].Duration = text
	}
}

// Reprint prints the kept frame again, with any durations that arrived
func (fr *frameRenderer) Reprint() {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	fmt.Fprint(fr.out, formatFrame(fr.frame))
}

// Frame returns the kept frame
func (fr *frameRenderer) Frame() view.Frame {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	return fr.frame
}

func formatFrame(f view.Frame) string {
	var b strings.Builder

	if f.Notice != "" {
		fmt.Fprintf(&b, "! %s\n", f.Notice)
	}

	switch f.View.Kind {
	case view.KindArtist:
		fmt.Fprintf(&b, "\nArtist: %s\n", f.Header.Title)
	case view.KindPlaylist:
		fmt.Fprintf(&b, "\nPlaylist: %s\n", f.Header.Title)
	default:
		if f.Header.Title != "" {
			fmt.Fprintf(&b, "\n%s\n", f.Header.Title)
		}
	}
	if f.Header.Description != "" {
		fmt.Fprintf(&b, "%s\n", f.Header.Description)
	}
	if f.Header.ImagePath != "" {
		fmt.Fprintf(&b, "Image: %s\n", f.Header.ImagePath)
	}

	if len(f.Items) == 0 {
		if f.Query != "" {
			fmt.Fprintf(&b, "No videos match %q\n", f.Query)
		} else {
			b.WriteString("No videos\n")
		}
		return b.String()
	}

	b.WriteString(formatItems(f.Items))
	b.WriteString("\n")

	summary := fmt.Sprintf("%s videos, sorted %s", humanize.Comma(int64(len(f.Items))), f.Sort)
	if f.Query != "" {
		summary += fmt.Sprintf(", matching %q", f.Query)
	}
	b.WriteString(summary + "\n")
	return b.String()
}

func formatItems(items []view.Item) string {
	rows := make([][]string, 0, len(items))
	for i, item := range items {
		dv := item.Video
		pin := ""
		if item.Pinned {
			pin = "*"
		}
		lists := ""
		if item.PlaylistCount > 0 {
			lists = fmt.Sprintf("%d", item.PlaylistCount)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			pin,
			markCustom(dv.Title, dv.IsCustomTitle),
			markCustom(dv.DisplayArtist, dv.IsCustomArtist),
			item.Duration,
			lists,
			thumbnailLabel(dv.Thumbnail),
		})
	}
	return renderTable(
		[]string{"#", "Pin", "Title", "Artist", "Length", "Lists", "Thumb"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	)
}

func markCustom(s string, custom bool) string {
	if custom {
		return s + " ✎"
	}
	return s
}

func thumbnailLabel(t resolve.Thumbnail) string {
	switch t.Kind {
	case resolve.ThumbnailCustom:
		return "custom"
	case resolve.ThumbnailSidecar:
		return "sidecar"
	default:
		return ""
	}
}

func formatArtists(entries []view.ArtistEntry) string {
	rows := make([][]string, 0, len(entries))
	for i, a := range entries {
		folder := ""
		if a.DisplayName != a.FolderName {
			folder = a.FolderName
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			a.DisplayName,
			folder,
			humanize.Comma(int64(a.Count)),
		})
	}
	return renderTable(
		[]string{"#", "Artist", "Folder", "Videos"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
	) + "\n"
}

func formatPlaylists(entries []view.PlaylistEntry) string {
	if len(entries) == 0 {
		return "No playlists\n"
	}
	rows := make([][]string, 0, len(entries))
	for i, p := range entries {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			p.Name,
			humanize.Comma(int64(p.Count)),
			p.ID,
		})
	}
	return renderTable(
		[]string{"#", "Playlist", "Videos", "ID"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft},
	) + "\n"
}
