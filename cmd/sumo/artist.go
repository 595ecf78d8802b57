package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/franz/sumotube/internal/catalog"
	"github.com/franz/sumotube/internal/host"
	"github.com/franz/sumotube/internal/overlay"
	"github.com/franz/sumotube/internal/resolve"
	"github.com/spf13/cobra"
)

var artistCmd = &cobra.Command{
	Use:   "artist",
	Short: "Show and edit artist profiles",
	Long: `Artists are the folders that contain videos. A profile gives a folder a
display name, a bio and a picture; the folder itself is never renamed.`,
}

var artistListCmd = &cobra.Command{
	Use:   "list [folder]",
	Short: "List the artists of a folder",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runArtistList,
}

var artistShowCmd = &cobra.Command{
	Use:   "show <artist-folder>",
	Short: "Show an artist profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runArtistShow,
}

var artistRenameCmd = &cobra.Command{
	Use:   "rename <artist-folder> [display-name]",
	Short: "Set the display name of an artist (empty resets it)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWriter(func(ctx context.Context, a *app) error {
			_, err := a.apply(overlay.SetArtistDisplayName{FolderName: args[0], DisplayName: argAt(args, 1)})
			return err
		})
	},
}

var artistBioCmd = &cobra.Command{
	Use:   "bio <artist-folder> [text]",
	Short: "Set the bio of an artist (empty clears it)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWriter(func(ctx context.Context, a *app) error {
			_, err := a.apply(overlay.SetArtistBio{FolderName: args[0], Bio: argAt(args, 1)})
			return err
		})
	},
}

var artistPictureCmd = &cobra.Command{
	Use:   "picture <artist-folder> [image]",
	Short: "Set the profile picture of an artist",
	Long: `Set the profile picture of an artist. Without an image argument you are
asked for one. Use --clear to remove the picture.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runArtistPicture,
}

var artistClearCmd = &cobra.Command{
	Use:   "clear <artist-folder>",
	Short: "Remove an artist profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWriter(func(ctx context.Context, a *app) error {
			_, err := a.apply(overlay.ClearArtistProfile{FolderName: args[0]})
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(artistCmd)
	artistCmd.AddCommand(artistListCmd, artistShowCmd, artistRenameCmd, artistBioCmd, artistPictureCmd, artistClearCmd)

	artistPictureCmd.Flags().Bool("clear", false, "Remove the picture")
}

func argAt(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func runArtistList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := openApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	result, err := a.loadFolder(ctx, args)
	if err != nil {
		return err
	}
	cat := catalog.New(result.Root, result.Entries)
	doc := a.overlay.Snapshot()

	rows := make([][]string, 0)
	for _, f := range cat.Folders() {
		profile, _ := doc.ArtistProfile(f.Name)
		rows = append(rows, []string{
			resolve.ArtistName(f.Name, doc),
			f.Name,
			humanize.Comma(int64(f.Count)),
			truncate(profile.Bio.OrElse(""), 40),
			profile.ProfilePicturePath.OrElse(""),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Artist", "Folder", "Videos", "Bio", "Picture"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
	))

	// Profiles whose folder is not part of this scan
	var orphans []string
	for _, name := range doc.Folders() {
		if len(cat.InFolder(name)) == 0 {
			orphans = append(orphans, name)
		}
	}
	if len(orphans) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Profiles for folders not in %s: %s\n", result.Root, strings.Join(orphans, ", "))
	}
	return nil
}

func runArtistShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := openApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	folder := args[0]
	doc := a.overlay.Snapshot()
	profile, ok := doc.ArtistProfile(folder)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Folder:       %s\n", folder)
	fmt.Fprintf(out, "Display name: %s\n", resolve.ArtistName(folder, doc))
	if !ok {
		fmt.Fprintln(out, "No profile")
		return nil
	}
	if bio, ok := profile.Bio.Get(); ok {
		fmt.Fprintf(out, "Bio:          %s\n", bio)
	}
	if pic, ok := profile.ProfilePicturePath.Get(); ok {
		fmt.Fprintf(out, "Picture:      %s\n", pic)
	}
	return nil
}

func runArtistPicture(cmd *cobra.Command, args []string) error {
	clearPicture, _ := cmd.Flags().GetBool("clear")
	return withWriter(func(ctx context.Context, a *app) error {
		if clearPicture {
			_, err := a.apply(overlay.SetArtistPicture{FolderName: args[0]})
			return err
		}
		image, err := pickImage(a, argAt(args, 1))
		if err != nil {
			return err
		}
		_, err = a.apply(overlay.SetArtistPicture{FolderName: args[0], ImagePath: image})
		return err
	})
}

// pickImage validates an image argument, or prompts for one
func pickImage(a *app, arg string) (string, error) {
	if arg == "" {
		path, ok := a.host.PickImageFile()
		if !ok {
			return "", fmt.Errorf("no image chosen")
		}
		return path, nil
	}
	info, err := host.ValidateImage(absPath(arg))
	if err != nil {
		return "", err
	}
	return info.Path, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
