package overlay

import "github.com/franz/sumotube/internal/catalog"

// Command is a mutation that can be handed around as a value and applied
// later, typically by the view router so it can reconcile in the same step.
type Command interface {
	Apply(s *Store) Change
}

type SetArtistDisplayName struct {
	FolderName  string
	DisplayName string
}

func (c SetArtistDisplayName) Apply(s *Store) Change {
	return s.SetArtistDisplayName(c.FolderName, c.DisplayName)
}

type SetArtistBio struct {
	FolderName string
	Bio        string
}

func (c SetArtistBio) Apply(s *Store) Change {
	return s.SetArtistBio(c.FolderName, c.Bio)
}

type SetArtistPicture struct {
	FolderName string
	ImagePath  string
}

func (c SetArtistPicture) Apply(s *Store) Change {
	return s.SetArtistPicture(c.FolderName, c.ImagePath)
}

type ClearArtistProfile struct {
	FolderName string
}

func (c ClearArtistProfile) Apply(s *Store) Change {
	return s.ClearArtistProfile(c.FolderName)
}

type SetVideoTitle struct {
	Video catalog.RawVideo
	Title string
}

func (c SetVideoTitle) Apply(s *Store) Change {
	return s.SetVideoTitleOverride(c.Video, c.Title)
}

type SetVideoArtist struct {
	Video  catalog.RawVideo
	Artist string
}

func (c SetVideoArtist) Apply(s *Store) Change {
	return s.SetVideoArtistOverride(c.Video, c.Artist)
}

type ClearVideoMetadata struct {
	Path string
}

func (c ClearVideoMetadata) Apply(s *Store) Change {
	return s.ClearVideoMetadata(c.Path)
}

type SetCustomThumbnail struct {
	Path      string
	ImagePath string
}

func (c SetCustomThumbnail) Apply(s *Store) Change {
	return s.SetCustomThumbnail(c.Path, c.ImagePath)
}

type ClearCustomThumbnail struct {
	Path string
}

func (c ClearCustomThumbnail) Apply(s *Store) Change {
	return s.ClearCustomThumbnail(c.Path)
}

type TogglePinned struct {
	Path string
}

func (c TogglePinned) Apply(s *Store) Change {
	return s.TogglePinned(c.Path)
}

type CreatePlaylist struct {
	Spec PlaylistSpec
}

func (c CreatePlaylist) Apply(s *Store) Change {
	return s.CreatePlaylist(c.Spec)
}

type DeletePlaylist struct {
	ID string
}

func (c DeletePlaylist) Apply(s *Store) Change {
	return s.DeletePlaylist(c.ID)
}

type RenamePlaylist struct {
	ID   string
	Name string
}

func (c RenamePlaylist) Apply(s *Store) Change {
	return s.RenamePlaylist(c.ID, c.Name)
}

type SetPlaylistDescription struct {
	ID          string
	Description string
}

func (c SetPlaylistDescription) Apply(s *Store) Change {
	return s.SetPlaylistDescription(c.ID, c.Description)
}

type SetPlaylistThumbnail struct {
	ID        string
	ImagePath string
}

func (c SetPlaylistThumbnail) Apply(s *Store) Change {
	return s.SetPlaylistThumbnail(c.ID, c.ImagePath)
}

type AddToPlaylist struct {
	ID   string
	Path string
}

func (c AddToPlaylist) Apply(s *Store) Change {
	return s.AddToPlaylist(c.ID, c.Path)
}

type RemoveFromPlaylist struct {
	ID   string
	Path string
}

func (c RemoveFromPlaylist) Apply(s *Store) Change {
	return s.RemoveFromPlaylist(c.ID, c.Path)
}

type Replace struct {
	Document *Document
}

func (c Replace) Apply(s *Store) Change {
	return s.Replace(c.Document)
}
