package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/franz/sumotube/internal/catalog"
	"github.com/franz/sumotube/internal/overlay"
	"github.com/franz/sumotube/internal/probe"
	"github.com/franz/sumotube/internal/resolve"
	"github.com/franz/sumotube/internal/util"
	"github.com/spf13/cobra"
)

var videoCmd = &cobra.Command{
	Use:   "video",
	Short: "Show and edit single videos",
	Long: `Edit the display metadata of one video. Overrides live in the overlay;
the video file is never modified. Setting a title or artist equal to its
default removes the override.`,
}

var videoTitleCmd = &cobra.Command{
	Use:   "title <video> [title]",
	Short: "Override the display title (empty resets it)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withVideo(args[0], func(a *app, v catalog.RawVideo) error {
			_, err := a.apply(overlay.SetVideoTitle{Video: v, Title: argAt(args, 1)})
			return err
		})
	},
}

var videoArtistCmd = &cobra.Command{
	Use:   "artist <video> [artist]",
	Short: "Override the display artist of one video (empty resets it)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withVideo(args[0], func(a *app, v catalog.RawVideo) error {
			_, err := a.apply(overlay.SetVideoArtist{Video: v, Artist: argAt(args, 1)})
			return err
		})
	},
}

var videoThumbnailCmd = &cobra.Command{
	Use:   "thumbnail <video> [image]",
	Short: "Set a custom thumbnail; without an image you are asked for one",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withVideo(args[0], func(a *app, v catalog.RawVideo) error {
			image, err := pickImage(a, argAt(args, 1))
			if err != nil {
				return err
			}
			_, err = a.apply(overlay.SetCustomThumbnail{Path: v.Path, ImagePath: image})
			return err
		})
	},
}

var videoUnthumbnailCmd = &cobra.Command{
	Use:   "unthumbnail <video>",
	Short: "Remove a custom thumbnail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withVideo(args[0], func(a *app, v catalog.RawVideo) error {
			_, err := a.apply(overlay.ClearCustomThumbnail{Path: v.Path})
			return err
		})
	},
}

var videoPinCmd = &cobra.Command{
	Use:   "pin <video>",
	Short: "Toggle whether a video is pinned to the top",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withVideo(args[0], func(a *app, v catalog.RawVideo) error {
			change, err := a.apply(overlay.TogglePinned{Path: v.Path})
			if err == nil && !change.IsNone() {
				state := "unpinned"
				if change.Pinned {
					state = "pinned"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", v.Title, state)
			}
			return err
		})
	},
}

var videoClearCmd = &cobra.Command{
	Use:   "clear <video>",
	Short: "Remove title and artist overrides of a video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withVideo(args[0], func(a *app, v catalog.RawVideo) error {
			_, err := a.apply(overlay.ClearVideoMetadata{Path: v.Path})
			return err
		})
	},
}

var videoOpenCmd = &cobra.Command{
	Use:   "open <video>",
	Short: "Open a video in the system's default player",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(context.Background(), appOptions{})
		if err != nil {
			return err
		}
		defer a.close()

		if failure := a.host.OpenInExternalViewer(absPath(args[0])); failure != "" {
			return errors.New(failure)
		}
		return nil
	},
}

var videoInfoCmd = &cobra.Command{
	Use:   "info <video>",
	Short: "Show everything known about a video",
	Args:  cobra.ExactArgs(1),
	RunE:  runVideoInfo,
}

func init() {
	rootCmd.AddCommand(videoCmd)
	videoCmd.AddCommand(videoTitleCmd, videoArtistCmd, videoThumbnailCmd, videoUnthumbnailCmd,
		videoPinCmd, videoInfoCmd, videoOpenCmd, videoClearCmd)
}

// withVideo opens the app for writing and resolves the video argument
func withVideo(arg string, fn func(a *app, v catalog.RawVideo) error) error {
	v, err := rawVideo(arg)
	if err != nil {
		return err
	}
	if _, err := os.Stat(v.Path); err != nil {
		util.WarnLog("%s is not on disk; editing its overlay entry anyway", v.Path)
	}
	return withWriter(func(ctx context.Context, a *app) error {
		return fn(a, v)
	})
}

func runVideoInfo(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := openApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	raw, err := rawVideo(args[0])
	if err != nil {
		return err
	}
	raw.SidecarPath = a.host.Scanner().SidecarFor(raw.Path)

	doc := a.overlay.Snapshot()
	dv := resolve.Resolve(raw, doc)

	out := cmd.OutOrStdout()
	field := func(name, value string) {
		if value != "" {
			fmt.Fprintf(out, "%-12s %s\n", name+":", value)
		}
	}

	field("Path", raw.Path)
	if fi, err := os.Stat(raw.Path); err == nil {
		field("Size", humanize.Bytes(uint64(fi.Size())))
		field("Modified", humanize.Time(fi.ModTime()))
	} else {
		field("File", "missing")
	}
	field("Title", markCustom(dv.Title, dv.IsCustomTitle))
	field("Artist", markCustom(dv.DisplayArtist, dv.IsCustomArtist))
	field("Folder", raw.FolderName)
	field("Thumbnail", fmt.Sprintf("%s (%s)", dv.Thumbnail.Path, dv.Thumbnail.Kind))
	if doc.IsPinned(raw.Path) {
		field("Pinned", "yes")
	}

	var lists []string
	for _, p := range doc.Playlists() {
		if p.Contains(raw.Path) {
			lists = append(lists, p.Name)
		}
	}
	field("Playlists", strings.Join(lists, ", "))

	probeCtx, cancel := context.WithTimeout(ctx, GetConfigDuration("probe.window", probe.DefaultWindow))
	defer cancel()
	if info, err := (probe.FFprobe{}).Probe(probeCtx, raw.Path); err == nil {
		field("Length", probe.FormatDuration(info.Duration))
		field("Resolution", info.Resolution())
		field("Container", info.Container)
		field("Codecs", strings.Trim(info.VideoCodec+"/"+info.AudioCodec, "/"))
	} else {
		field("Length", probe.FallbackText)
		util.DebugLog("ffprobe: %v", err)
	}

	tags, err := probe.ReadTags(raw.Path)
	if err != nil {
		util.DebugLog("tags: %v", err)
	}
	if tags != nil {
		field("Tag title", tags.Title)
		field("Tag artist", tags.Artist)
		field("Tag album", tags.Album)
		if tags.Year > 0 {
			field("Tag year", fmt.Sprintf("%d", tags.Year))
		}
		field("Tag format", strings.TrimSpace(tags.FileType+" "+tags.Format))
	}

	if probeCtx.Err() == context.DeadlineExceeded {
		util.WarnLog("Media probe took longer than %s", GetConfigDuration("probe.window", probe.DefaultWindow).Round(time.Millisecond))
	}
	return nil
}
