// Package resolve merges raw catalog facts with overlay customizations into
// what is actually displayed. Every function here is pure and total.
package resolve

import (
	"github.com/franz/sumotube/internal/catalog"
	"github.com/franz/sumotube/internal/overlay"
)

// ThumbnailKind says where a thumbnail comes from
type ThumbnailKind int

const (
	// ThumbnailFrame: no image; the presentation shows a frame of the video
	ThumbnailFrame ThumbnailKind = iota
	ThumbnailSidecar
	ThumbnailCustom
)

func (k ThumbnailKind) String() string {
	switch k {
	case ThumbnailCustom:
		return "custom"
	case ThumbnailSidecar:
		return "sidecar"
	default:
		return "frame"
	}
}

// Thumbnail is the resolved image source of a video
type Thumbnail struct {
	Kind ThumbnailKind
	// Path is the image path; it is the video path for ThumbnailFrame
	Path string
}

// DisplayVideo is a raw video with every override applied. It is derived,
// never stored.
type DisplayVideo struct {
	Raw            catalog.RawVideo
	Title          string
	DisplayArtist  string
	IsCustomTitle  bool
	IsCustomArtist bool
	Thumbnail      Thumbnail
}

// Resolve computes the display form of one video
func Resolve(v catalog.RawVideo, doc *overlay.Document) DisplayVideo {
	dv := DisplayVideo{
		Raw:           v,
		Title:         v.Title,
		DisplayArtist: v.FolderName,
	}

	override, _ := doc.VideoOverride(v.Path)
	if title, ok := override.Title.Get(); ok {
		dv.Title = title
		dv.IsCustomTitle = true
	}

	if artist, ok := override.ArtistName.Get(); ok {
		dv.DisplayArtist = artist
		dv.IsCustomArtist = true
	} else if profile, ok := doc.ArtistProfile(v.FolderName); ok {
		if name, ok := profile.DisplayName.Get(); ok {
			dv.DisplayArtist = name
			dv.IsCustomArtist = true
		}
	}

	dv.Thumbnail = ResolveThumbnail(v, doc)
	return dv
}

// Path returns the video's unique key
func (dv DisplayVideo) Path() string {
	return dv.Raw.Path
}

// ResolveThumbnail picks custom, then sidecar, then a frame of the video
func ResolveThumbnail(v catalog.RawVideo, doc *overlay.Document) Thumbnail {
	if img, ok := doc.CustomThumbnail(v.Path); ok {
		return Thumbnail{Kind: ThumbnailCustom, Path: img}
	}
	if v.HasSidecar() {
		return Thumbnail{Kind: ThumbnailSidecar, Path: v.SidecarPath}
	}
	return Thumbnail{Kind: ThumbnailFrame, Path: v.Path}
}

// ResolveAll resolves a list of videos, keeping their order
func ResolveAll(videos []catalog.RawVideo, doc *overlay.Document) []DisplayVideo {
	out := make([]DisplayVideo, len(videos))
	for i, v := range videos {
		out[i] = Resolve(v, doc)
	}
	return out
}

// ArtistName returns the display name of a folder: the profile display name
// if one is set, otherwise the folder name
func ArtistName(folderName string, doc *overlay.Document) string {
	if profile, ok := doc.ArtistProfile(folderName); ok {
		return profile.DisplayName.OrElse(folderName)
	}
	return folderName
}
