package main

import (
	"context"
	"fmt"

	"github.com/franz/sumotube/internal/query"
	"github.com/franz/sumotube/internal/view"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list [folder]",
	Short: "List videos with their display titles and artists",
	Long: `List the videos of a folder the way the browser shows them: pinned
videos first, then the rest in the chosen sort order.

Use --artist or --playlist to list one artist folder or one playlist, and
--search to filter by title, artist or folder name.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().String("artist", "", "List one artist folder")
	listCmd.Flags().String("playlist", "", "List one playlist (id or name)")
	listCmd.Flags().StringP("search", "s", "", "Filter by title, artist or folder")
	listCmd.Flags().String("sort", "", "Sort key: random, title-asc, title-desc, artist-asc, artist-desc")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	sortName, _ := cmd.Flags().GetString("sort")
	sortKey, err := defaultSort()
	if err != nil {
		return err
	}
	if sortName != "" {
		if sortKey, err = query.ParseSortKey(sortName); err != nil {
			return err
		}
	}

	a, err := openApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	result, err := a.loadFolder(ctx, args)
	if err != nil {
		return err
	}

	renderer := newFrameRenderer(cmd.OutOrStdout())
	renderer.silent = true
	router := view.NewRouter(view.Options{
		Store:    a.overlay,
		Renderer: renderer,
		Events:   a.events,
		Sort:     sortKey,
	})
	router.LoadFolder(result.Root, result.Entries)

	target := view.Grid()
	if artist, _ := cmd.Flags().GetString("artist"); artist != "" {
		target = view.Artist(artist)
	}
	if pl, _ := cmd.Flags().GetString("playlist"); pl != "" {
		p, err := findPlaylist(a.overlay.Snapshot(), pl)
		if err != nil {
			return err
		}
		target = view.Playlist(p.ID)
	}
	search, _ := cmd.Flags().GetString("search")

	router.Navigate(target)
	router.SetQuery(search)

	fmt.Fprint(cmd.OutOrStdout(), formatFrame(renderer.Frame()))
	return nil
}
