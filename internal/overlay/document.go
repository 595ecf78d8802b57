package overlay

import (
	"slices"
	"sort"
)

// DefaultPlaylistName is used when a playlist is created without a name
const DefaultPlaylistName = "New playlist"

// ArtistProfile holds the overrides for one folder-derived artist
type ArtistProfile struct {
	DisplayName        Opt[string]
	Bio                Opt[string]
	ProfilePicturePath Opt[string]
}

// IsEmpty reports whether no field is set
func (p ArtistProfile) IsEmpty() bool {
	return !p.DisplayName.IsSet() && !p.Bio.IsSet() && !p.ProfilePicturePath.IsSet()
}

// VideoOverride holds per-video metadata overrides
type VideoOverride struct {
	Title      Opt[string]
	ArtistName Opt[string]
}

// IsEmpty reports whether no field is set
func (o VideoOverride) IsEmpty() bool {
	return !o.Title.IsSet() && !o.ArtistName.IsSet()
}

// Playlist is an ordered, duplicate-free list of video paths
type Playlist struct {
	ID            string
	Name          string
	Description   string
	ThumbnailPath Opt[string]
	MemberPaths   []string
}

// Contains reports whether path is a member
func (p Playlist) Contains(path string) bool {
	return slices.Contains(p.MemberPaths, path)
}

func (p Playlist) clone() Playlist {
	p.MemberPaths = slices.Clone(p.MemberPaths)
	return p
}

// Document is the whole overlay: every user customization layered on the
// raw catalog. Records are only written through put* helpers, which drop
// records that became empty.
type Document struct {
	pinned     map[string]struct{}
	profiles   map[string]ArtistProfile
	thumbnails map[string]string
	overrides  map[string]VideoOverride
	playlists  []Playlist
}

// NewDocument returns an empty document
func NewDocument() *Document {
	return &Document{
		pinned:     make(map[string]struct{}),
		profiles:   make(map[string]ArtistProfile),
		thumbnails: make(map[string]string),
		overrides:  make(map[string]VideoOverride),
	}
}

// Clone returns a deep copy
func (d *Document) Clone() *Document {
	c := NewDocument()
	if d == nil {
		return c
	}
	for k := range d.pinned {
		c.pinned[k] = struct{}{}
	}
	for k, v := range d.profiles {
		c.profiles[k] = v
	}
	for k, v := range d.thumbnails {
		c.thumbnails[k] = v
	}
	for k, v := range d.overrides {
		c.overrides[k] = v
	}
	c.playlists = make([]Playlist, 0, len(d.playlists))
	for _, p := range d.playlists {
		c.playlists = append(c.playlists, p.clone())
	}
	return c
}

// IsEmpty reports whether the document holds no customization at all
func (d *Document) IsEmpty() bool {
	return d == nil || (len(d.pinned) == 0 && len(d.profiles) == 0 &&
		len(d.thumbnails) == 0 && len(d.overrides) == 0 && len(d.playlists) == 0)
}

// IsPinned reports whether path is in the pinned set
func (d *Document) IsPinned(path string) bool {
	if d == nil {
		return false
	}
	_, ok := d.pinned[path]
	return ok
}

// Pinned returns the pinned paths, sorted
func (d *Document) Pinned() []string {
	if d == nil {
		return nil
	}
	out := make([]string, 0, len(d.pinned))
	for p := range d.pinned {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// ArtistProfile returns the profile for a folder name
func (d *Document) ArtistProfile(folderName string) (ArtistProfile, bool) {
	if d == nil {
		return ArtistProfile{}, false
	}
	p, ok := d.profiles[folderName]
	return p, ok
}

// ArtistProfiles returns a copy of all profiles keyed by folder name
func (d *Document) ArtistProfiles() map[string]ArtistProfile {
	out := make(map[string]ArtistProfile)
	if d == nil {
		return out
	}
	for k, v := range d.profiles {
		out[k] = v
	}
	return out
}

// Folders returns the folder names that carry a profile, sorted
func (d *Document) Folders() []string {
	if d == nil {
		return nil
	}
	out := make([]string, 0, len(d.profiles))
	for f := range d.profiles {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// VideoOverride returns the metadata override for a path
func (d *Document) VideoOverride(path string) (VideoOverride, bool) {
	if d == nil {
		return VideoOverride{}, false
	}
	o, ok := d.overrides[path]
	return o, ok
}

// CustomThumbnail returns the custom thumbnail image for a path
func (d *Document) CustomThumbnail(path string) (string, bool) {
	if d == nil {
		return "", false
	}
	img, ok := d.thumbnails[path]
	return img, ok
}

// Playlists returns copies of all playlists in creation order
func (d *Document) Playlists() []Playlist {
	if d == nil {
		return nil
	}
	out := make([]Playlist, 0, len(d.playlists))
	for _, p := range d.playlists {
		out = append(out, p.clone())
	}
	return out
}

// Playlist returns a copy of the playlist with the given id
func (d *Document) Playlist(id string) (Playlist, bool) {
	if i := d.playlistIndex(id); i >= 0 {
		return d.playlists[i].clone(), true
	}
	return Playlist{}, false
}

// PlaylistsContaining counts the playlists that include path
func (d *Document) PlaylistsContaining(path string) int {
	if d == nil {
		return 0
	}
	n := 0
	for _, p := range d.playlists {
		if p.Contains(path) {
			n++
		}
	}
	return n
}

func (d *Document) playlistIndex(id string) int {
	if d == nil {
		return -1
	}
	for i, p := range d.playlists {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (d *Document) putProfile(folderName string, p ArtistProfile) {
	if p.IsEmpty() {
		delete(d.profiles, folderName)
		return
	}
	d.profiles[folderName] = p
}

func (d *Document) putOverride(path string, o VideoOverride) {
	if o.IsEmpty() {
		delete(d.overrides, path)
		return
	}
	d.overrides[path] = o
}

func (d *Document) putThumbnail(path string, img Opt[string]) {
	if v, ok := img.Get(); ok {
		d.thumbnails[path] = v
		return
	}
	delete(d.thumbnails, path)
}

func (d *Document) setPinned(path string, pinned bool) {
	if pinned {
		d.pinned[path] = struct{}{}
		return
	}
	delete(d.pinned, path)
}

// addPlaylist appends p, dropping duplicate members and refusing a reused id
func (d *Document) addPlaylist(p Playlist) bool {
	if p.ID == "" || d.playlistIndex(p.ID) >= 0 {
		return false
	}
	p.MemberPaths = dedupe(p.MemberPaths)
	d.playlists = append(d.playlists, p)
	return true
}

func dedupe(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
