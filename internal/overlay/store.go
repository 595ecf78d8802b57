package overlay

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/franz/sumotube/internal/catalog"
	"github.com/franz/sumotube/internal/report"
	"github.com/franz/sumotube/internal/util"
	"github.com/google/uuid"
)

// NewPlaylistID generates a playlist identifier
func NewPlaylistID() string {
	return "pl-" + uuid.NewString()
}

// Options configures a Store
type Options struct {
	Backend Backend
	Events  *report.EventLogger
	// NewID overrides playlist id generation (tests)
	NewID func() string
}

// Store is the single authority for every user customization. All mutators
// apply, clean up, save and report what changed. Save failures never reach
// the caller; they are logged and kept in LastSaveError.
type Store struct {
	mu          sync.Mutex
	doc         *Document
	backend     Backend
	events      *report.EventLogger
	newID       func() string
	lastSaveErr error
}

// New creates a store holding an empty document. Call Load to read the
// persisted one.
func New(opts Options) *Store {
	newID := opts.NewID
	if newID == nil {
		newID = NewPlaylistID
	}
	return &Store{
		doc:     NewDocument(),
		backend: opts.Backend,
		events:  opts.Events,
		newID:   newID,
	}
}

// Load replaces the in-memory document with the persisted one. A missing
// document leaves empty defaults; an unreadable one is logged and also
// leaves empty defaults.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc = NewDocument()
	if s.backend == nil {
		return
	}

	doc, err := s.backend.Load(ctx)
	if err != nil {
		rerr := &PersistenceReadError{Source: s.backend.Name(), Err: err}
		util.WarnLog("Ignoring stored overlay: %v", rerr)
		s.events.LogLoad(s.backend.Name(), rerr)
		return
	}
	if doc == nil {
		util.DebugLog("No stored overlay in %s", s.backend.Name())
		return
	}
	s.doc = doc
	s.events.LogLoad(s.backend.Name(), nil)
}

// Snapshot returns a copy of the current document
func (s *Store) Snapshot() *Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// LastSaveError returns the error of the most recent save, or nil
func (s *Store) LastSaveError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSaveErr
}

// Flush saves the current document unconditionally and returns the result
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveLocked(ctx)
	return s.lastSaveErr
}

// mutate runs fn against the live document. fn returns the change it made;
// anything other than ChangeNone is saved.
func (s *Store) mutate(action string, fn func(d *Document) Change) Change {
	s.mu.Lock()
	defer s.mu.Unlock()

	change := fn(s.doc)
	if change.IsNone() {
		return change
	}
	util.DebugLog("Overlay %s (%s)", action, change)
	s.events.LogMutation(action, change.Path, change.FolderName, change.PlaylistID)
	s.saveLocked(context.Background())
	return change
}

func (s *Store) saveLocked(ctx context.Context) {
	if s.backend == nil {
		return
	}
	start := time.Now()
	err := s.backend.Save(ctx, s.doc)
	if err != nil {
		werr := &PersistenceWriteError{Target: s.backend.Name(), Err: err}
		s.lastSaveErr = werr
		util.ErrorLog("Failed to save overlay: %v", werr)
		s.events.LogSave(s.backend.Name(), time.Since(start), werr)
		return
	}
	s.lastSaveErr = nil
	s.events.LogSave(s.backend.Name(), time.Since(start), nil)
}

func (s *Store) updateProfile(action, folderName string, edit func(p *ArtistProfile)) Change {
	return s.mutate(action, func(d *Document) Change {
		before, _ := d.ArtistProfile(folderName)
		after := before
		edit(&after)
		if after == before {
			return Change{}
		}
		d.putProfile(folderName, after)
		return Change{Kind: ChangeArtist, FolderName: folderName}
	})
}

// SetArtistDisplayName sets the display name for a folder. Empty or equal
// to the folder name clears it.
func (s *Store) SetArtistDisplayName(folderName, name string) Change {
	return s.updateProfile("artist-name", folderName, func(p *ArtistProfile) {
		p.DisplayName = textUnless(name, folderName)
	})
}

// SetArtistBio sets the artist bio; empty clears it
func (s *Store) SetArtistBio(folderName, bio string) Change {
	return s.updateProfile("artist-bio", folderName, func(p *ArtistProfile) {
		p.Bio = Text(bio)
	})
}

// SetArtistPicture sets the profile picture path; empty clears it
func (s *Store) SetArtistPicture(folderName, imagePath string) Change {
	return s.updateProfile("artist-picture", folderName, func(p *ArtistProfile) {
		p.ProfilePicturePath = Text(imagePath)
	})
}

// ClearArtistProfile removes every override for a folder
func (s *Store) ClearArtistProfile(folderName string) Change {
	return s.updateProfile("artist-clear", folderName, func(p *ArtistProfile) {
		*p = ArtistProfile{}
	})
}

func (s *Store) updateOverride(action, path string, edit func(o *VideoOverride)) Change {
	return s.mutate(action, func(d *Document) Change {
		before, _ := d.VideoOverride(path)
		after := before
		edit(&after)
		if after == before {
			return Change{}
		}
		d.putOverride(path, after)
		return Change{Kind: ChangeVideo, Path: path}
	})
}

// SetVideoTitleOverride sets a custom title. Empty or equal to the raw
// title clears it.
func (s *Store) SetVideoTitleOverride(v catalog.RawVideo, title string) Change {
	return s.updateOverride("video-title", v.Path, func(o *VideoOverride) {
		o.Title = textUnless(title, v.Title)
	})
}

// SetVideoArtistOverride sets a per-video artist. Empty or equal to the
// folder name clears it.
func (s *Store) SetVideoArtistOverride(v catalog.RawVideo, artist string) Change {
	return s.updateOverride("video-artist", v.Path, func(o *VideoOverride) {
		o.ArtistName = textUnless(artist, v.FolderName)
	})
}

// ClearVideoMetadata removes the title and artist overrides of a video
func (s *Store) ClearVideoMetadata(path string) Change {
	return s.updateOverride("video-clear", path, func(o *VideoOverride) {
		*o = VideoOverride{}
	})
}

// SetCustomThumbnail sets the thumbnail image for a video; empty clears it
func (s *Store) SetCustomThumbnail(path, imagePath string) Change {
	return s.mutate("thumbnail", func(d *Document) Change {
		before, ok := d.CustomThumbnail(path)
		img := Text(imagePath)
		if v, set := img.Get(); set == ok && v == before {
			return Change{}
		}
		d.putThumbnail(path, img)
		return Change{Kind: ChangeVideo, Path: path}
	})
}

// ClearCustomThumbnail removes the custom thumbnail of a video
func (s *Store) ClearCustomThumbnail(path string) Change {
	return s.SetCustomThumbnail(path, "")
}

// TogglePinned flips membership of path in the pinned set
func (s *Store) TogglePinned(path string) Change {
	return s.mutate("pin", func(d *Document) Change {
		pinned := !d.IsPinned(path)
		d.setPinned(path, pinned)
		return Change{Kind: ChangePinned, Path: path, Pinned: pinned}
	})
}

// PlaylistSpec describes a playlist to create
type PlaylistSpec struct {
	Name          string
	Description   string
	ThumbnailPath string
	InitialMember string
}

// CreatePlaylist adds a playlist and reports its id in Change.PlaylistID
func (s *Store) CreatePlaylist(spec PlaylistSpec) Change {
	return s.mutate("playlist-create", func(d *Document) Change {
		name := strings.TrimSpace(spec.Name)
		if name == "" {
			name = DefaultPlaylistName
		}
		var members []string
		if spec.InitialMember != "" {
			members = []string{spec.InitialMember}
		}
		id := s.newID()
		for d.playlistIndex(id) >= 0 {
			id = s.newID()
		}
		d.addPlaylist(Playlist{
			ID:            id,
			Name:          name,
			Description:   strings.TrimSpace(spec.Description),
			ThumbnailPath: Text(spec.ThumbnailPath),
			MemberPaths:   members,
		})
		return Change{Kind: ChangePlaylist, PlaylistID: id}
	})
}

// DeletePlaylist removes a playlist; unknown ids are a no-op
func (s *Store) DeletePlaylist(id string) Change {
	return s.mutate("playlist-delete", func(d *Document) Change {
		i := d.playlistIndex(id)
		if i < 0 {
			return Change{}
		}
		d.playlists = append(d.playlists[:i], d.playlists[i+1:]...)
		return Change{Kind: ChangePlaylist, PlaylistID: id, PlaylistDeleted: true}
	})
}

func (s *Store) updatePlaylist(action, id string, edit func(p *Playlist) bool) Change {
	return s.mutate(action, func(d *Document) Change {
		i := d.playlistIndex(id)
		if i < 0 {
			return Change{}
		}
		if !edit(&d.playlists[i]) {
			return Change{}
		}
		return Change{Kind: ChangePlaylist, PlaylistID: id}
	})
}

// RenamePlaylist sets the playlist name. An empty name is ignored.
func (s *Store) RenamePlaylist(id, name string) Change {
	name = strings.TrimSpace(name)
	return s.updatePlaylist("playlist-rename", id, func(p *Playlist) bool {
		if name == "" || name == p.Name {
			return false
		}
		p.Name = name
		return true
	})
}

// SetPlaylistDescription sets the playlist description
func (s *Store) SetPlaylistDescription(id, description string) Change {
	description = strings.TrimSpace(description)
	return s.updatePlaylist("playlist-describe", id, func(p *Playlist) bool {
		if description == p.Description {
			return false
		}
		p.Description = description
		return true
	})
}

// SetPlaylistThumbnail sets the playlist thumbnail; empty clears it
func (s *Store) SetPlaylistThumbnail(id, imagePath string) Change {
	img := Text(imagePath)
	return s.updatePlaylist("playlist-thumbnail", id, func(p *Playlist) bool {
		if img == p.ThumbnailPath {
			return false
		}
		p.ThumbnailPath = img
		return true
	})
}

// AddToPlaylist appends path unless it is already a member
func (s *Store) AddToPlaylist(id, path string) Change {
	return s.updatePlaylist("playlist-add", id, func(p *Playlist) bool {
		if path == "" || p.Contains(path) {
			return false
		}
		p.MemberPaths = append(p.MemberPaths, path)
		return true
	})
}

// RemoveFromPlaylist removes path if it is a member
func (s *Store) RemoveFromPlaylist(id, path string) Change {
	return s.updatePlaylist("playlist-remove", id, func(p *Playlist) bool {
		for i, member := range p.MemberPaths {
			if member == path {
				p.MemberPaths = append(p.MemberPaths[:i], p.MemberPaths[i+1:]...)
				return true
			}
		}
		return false
	})
}

// Replace swaps in a whole document, as after an import
func (s *Store) Replace(doc *Document) Change {
	return s.mutate("replace", func(d *Document) Change {
		*d = *doc.Clone()
		return Change{Kind: ChangeAll}
	})
}
