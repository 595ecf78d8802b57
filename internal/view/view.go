// Package view owns the browsing state: which subset of the catalog is on
// screen, how it is filtered and ordered, and what the last render showed.
package view

import "fmt"

// Kind is the view type
type Kind int

const (
	KindGrid Kind = iota
	KindArtist
	KindPlaylist
)

func (k Kind) String() string {
	switch k {
	case KindArtist:
		return "artist"
	case KindPlaylist:
		return "playlist"
	default:
		return "grid"
	}
}

// View is a router state. FolderName is set for artist views, PlaylistID
// for playlist views.
type View struct {
	Kind       Kind
	FolderName string
	PlaylistID string
}

// Grid is the whole-catalog view
func Grid() View {
	return View{Kind: KindGrid}
}

// Artist is the view of one folder's videos
func Artist(folderName string) View {
	return View{Kind: KindArtist, FolderName: folderName}
}

// Playlist is the view of one playlist's members
func Playlist(id string) View {
	return View{Kind: KindPlaylist, PlaylistID: id}
}

func (v View) String() string {
	switch v.Kind {
	case KindArtist:
		return fmt.Sprintf("artist(%s)", v.FolderName)
	case KindPlaylist:
		return fmt.Sprintf("playlist(%s)", v.PlaylistID)
	default:
		return "grid"
	}
}
