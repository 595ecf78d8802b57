package overlay

import "fmt"

// ChangeKind tells the caller how much must be recomputed after a mutation
type ChangeKind int

const (
	// ChangeNone: nothing changed, nothing was saved
	ChangeNone ChangeKind = iota
	// ChangeVideo: one video's resolved fields may differ (Path)
	ChangeVideo
	// ChangeArtist: every video of one folder may differ (FolderName)
	ChangeArtist
	// ChangePinned: pin state of one video changed; ordering only
	ChangePinned
	// ChangePlaylist: a playlist or its membership changed (PlaylistID)
	ChangePlaylist
	// ChangeAll: the whole document was replaced
	ChangeAll
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeNone:
		return "none"
	case ChangeVideo:
		return "video"
	case ChangeArtist:
		return "artist"
	case ChangePinned:
		return "pinned"
	case ChangePlaylist:
		return "playlist"
	case ChangeAll:
		return "all"
	default:
		return fmt.Sprintf("ChangeKind(%d)", int(k))
	}
}

// Change describes what a mutation touched
type Change struct {
	Kind            ChangeKind
	Path            string
	FolderName      string
	PlaylistID      string
	PlaylistDeleted bool
	Pinned          bool
}

// IsNone reports whether the mutation was a no-op
func (c Change) IsNone() bool {
	return c.Kind == ChangeNone
}

// Key returns the record key the change refers to
func (c Change) Key() string {
	switch c.Kind {
	case ChangeVideo, ChangePinned:
		return c.Path
	case ChangeArtist:
		return c.FolderName
	case ChangePlaylist:
		return c.PlaylistID
	default:
		return ""
	}
}

func (c Change) String() string {
	if key := c.Key(); key != "" {
		return c.Kind.String() + ":" + key
	}
	return c.Kind.String()
}
