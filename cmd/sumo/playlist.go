package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/franz/sumotube/internal/catalog"
	"github.com/franz/sumotube/internal/overlay"
	"github.com/franz/sumotube/internal/resolve"
	"github.com/franz/sumotube/internal/util"
	"github.com/spf13/cobra"
)

var playlistCmd = &cobra.Command{
	Use:   "playlist",
	Short: "Manage playlists",
	Long: `Playlists are ordered lists of videos. A playlist is referred to by its id
or by its name when the name is unique.`,
}

var playlistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List playlists",
	Args:  cobra.NoArgs,
	RunE:  runPlaylistList,
}

var playlistShowCmd = &cobra.Command{
	Use:   "show <playlist>",
	Short: "Show a playlist and its videos",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlaylistShow,
}

var playlistCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a playlist",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPlaylistCreate,
}

var playlistDeleteCmd = &cobra.Command{
	Use:   "delete <playlist>",
	Short: "Delete a playlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPlaylist(args[0], func(a *app, p overlay.Playlist) error {
			_, err := a.apply(overlay.DeletePlaylist{ID: p.ID})
			return err
		})
	},
}

var playlistRenameCmd = &cobra.Command{
	Use:   "rename <playlist> <name>",
	Short: "Rename a playlist",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPlaylist(args[0], func(a *app, p overlay.Playlist) error {
			_, err := a.apply(overlay.RenamePlaylist{ID: p.ID, Name: args[1]})
			return err
		})
	},
}

var playlistDescribeCmd = &cobra.Command{
	Use:   "describe <playlist> [description]",
	Short: "Set the description of a playlist (empty clears it)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPlaylist(args[0], func(a *app, p overlay.Playlist) error {
			_, err := a.apply(overlay.SetPlaylistDescription{ID: p.ID, Description: argAt(args, 1)})
			return err
		})
	},
}

var playlistThumbnailCmd = &cobra.Command{
	Use:   "thumbnail <playlist> [image]",
	Short: "Set the cover image of a playlist",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		clearImage, _ := cmd.Flags().GetBool("clear")
		return withPlaylist(args[0], func(a *app, p overlay.Playlist) error {
			image := ""
			if !clearImage {
				var err error
				if image, err = pickImage(a, argAt(args, 1)); err != nil {
					return err
				}
			}
			_, err := a.apply(overlay.SetPlaylistThumbnail{ID: p.ID, ImagePath: image})
			return err
		})
	},
}

var playlistAddCmd = &cobra.Command{
	Use:   "add <playlist> <video>...",
	Short: "Append videos to a playlist",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPlaylist(args[0], func(a *app, p overlay.Playlist) error {
			for _, arg := range args[1:] {
				if _, err := a.apply(overlay.AddToPlaylist{ID: p.ID, Path: absPath(arg)}); err != nil {
					return err
				}
			}
			return nil
		})
	},
}

var playlistRemoveCmd = &cobra.Command{
	Use:   "remove <playlist> <video>...",
	Short: "Remove videos from a playlist",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPlaylist(args[0], func(a *app, p overlay.Playlist) error {
			for _, arg := range args[1:] {
				if _, err := a.apply(overlay.RemoveFromPlaylist{ID: p.ID, Path: absPath(arg)}); err != nil {
					return err
				}
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(playlistCmd)
	playlistCmd.AddCommand(playlistListCmd, playlistShowCmd, playlistCreateCmd, playlistDeleteCmd,
		playlistRenameCmd, playlistDescribeCmd, playlistThumbnailCmd, playlistAddCmd, playlistRemoveCmd)

	playlistCreateCmd.Flags().String("description", "", "Playlist description")
	playlistCreateCmd.Flags().String("thumbnail", "", "Cover image")
	playlistCreateCmd.Flags().String("video", "", "First video of the playlist")
	playlistThumbnailCmd.Flags().Bool("clear", false, "Remove the cover image")
}

// findPlaylist looks a playlist up by id, then by unique name
func findPlaylist(doc *overlay.Document, ref string) (overlay.Playlist, error) {
	if p, ok := doc.Playlist(ref); ok {
		return p, nil
	}

	var matches []overlay.Playlist
	for _, p := range doc.Playlists() {
		if strings.EqualFold(p.Name, strings.TrimSpace(ref)) {
			matches = append(matches, p)
		}
	}
	switch len(matches) {
	case 0:
		return overlay.Playlist{}, fmt.Errorf("%w: playlist %q", util.ErrNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		ids := make([]string, len(matches))
		for i, p := range matches {
			ids[i] = p.ID
		}
		return overlay.Playlist{}, fmt.Errorf("%w: %d playlists are named %q, use an id: %s",
			util.ErrInvalidConfig, len(matches), ref, strings.Join(ids, ", "))
	}
}

func withPlaylist(ref string, fn func(a *app, p overlay.Playlist) error) error {
	return withWriter(func(ctx context.Context, a *app) error {
		p, err := findPlaylist(a.overlay.Snapshot(), ref)
		if err != nil {
			return err
		}
		return fn(a, p)
	})
}

func runPlaylistList(cmd *cobra.Command, args []string) error {
	a, err := openApp(context.Background(), appOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	doc := a.overlay.Snapshot()
	entries := make([][]string, 0)
	for i, p := range doc.Playlists() {
		entries = append(entries, []string{
			fmt.Sprintf("%d", i+1),
			p.Name,
			humanize.Comma(int64(len(p.MemberPaths))),
			truncate(p.Description, 40),
			p.ID,
		})
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No playlists")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"#", "Playlist", "Videos", "Description", "ID"},
		entries,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignLeft},
	))
	return nil
}

func runPlaylistShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(context.Background(), appOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	doc := a.overlay.Snapshot()
	p, err := findPlaylist(doc, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Playlist: %s (%s)\n", p.Name, p.ID)
	if p.Description != "" {
		fmt.Fprintln(out, p.Description)
	}
	if img, ok := p.ThumbnailPath.Get(); ok {
		fmt.Fprintf(out, "Image: %s\n", img)
	}
	if len(p.MemberPaths) == 0 {
		fmt.Fprintln(out, "No videos")
		return nil
	}

	rows := make([][]string, 0, len(p.MemberPaths))
	for i, path := range p.MemberPaths {
		raw := catalog.FromPath(path)
		raw.SidecarPath = a.host.Scanner().SidecarFor(path)
		dv := resolve.Resolve(raw, doc)
		status := ""
		if _, err := os.Stat(path); err != nil {
			status = "missing"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			markCustom(dv.Title, dv.IsCustomTitle),
			markCustom(dv.DisplayArtist, dv.IsCustomArtist),
			path,
			status,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Title", "Artist", "Path", ""},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
	))
	return nil
}

func runPlaylistCreate(cmd *cobra.Command, args []string) error {
	description, _ := cmd.Flags().GetString("description")
	thumbnail, _ := cmd.Flags().GetString("thumbnail")
	video, _ := cmd.Flags().GetString("video")

	return withWriter(func(ctx context.Context, a *app) error {
		spec := overlay.PlaylistSpec{Name: argAt(args, 0), Description: description}
		if thumbnail != "" {
			image, err := pickImage(a, thumbnail)
			if err != nil {
				return err
			}
			spec.ThumbnailPath = image
		}
		if video != "" {
			spec.InitialMember = absPath(video)
		}

		change, err := a.apply(overlay.CreatePlaylist{Spec: spec})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), change.PlaylistID)
		return nil
	})
}
