package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/franz/sumotube/internal/catalog"
	"github.com/franz/sumotube/internal/util"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan [folder]",
	Short: "Scan a folder and summarize its videos by artist",
	Long: `Scan a folder tree for video files and their sidecar thumbnails.

Videos are grouped by the name of the folder that contains them. The folder
becomes the default for commands that take an optional folder argument.

With --history, shows recent scans instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().Bool("history", false, "Show recent scans")
	scanCmd.Flags().Int("limit", 10, "Number of scans to show with --history")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	if history, _ := cmd.Flags().GetBool("history"); history {
		limit, _ := cmd.Flags().GetInt("limit")
		return showScanHistory(cmd, a, limit)
	}

	root, err := a.folderArg(args)
	if err != nil {
		return err
	}

	util.InfoLog("Scanning: %s", root)
	result, err := a.scanFolder(ctx, root)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	util.SuccessLog("Scan complete in %v", result.Duration.Round(time.Millisecond))
	util.InfoLog("  Videos: %s", humanize.Comma(int64(len(result.Entries))))
	util.InfoLog("  Sidecar thumbnails: %s", humanize.Comma(int64(result.Sidecars)))
	if result.Skipped > 0 {
		util.WarnLog("  Unreadable entries skipped: %d", result.Skipped)
	}

	cat := catalog.New(root, result.Entries)
	if cat.Len() == 0 {
		return nil
	}

	doc := a.overlay.Snapshot()
	rows := make([][]string, 0)
	for _, f := range cat.Folders() {
		name := f.Name
		if profile, ok := doc.ArtistProfile(f.Name); ok {
			name = profile.DisplayName.OrElse(f.Name)
		}
		rows = append(rows, []string{name, f.Name, humanize.Comma(int64(f.Count))})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Artist", "Folder", "Videos"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight},
	))
	return nil
}

func showScanHistory(cmd *cobra.Command, a *app, limit int) error {
	runs, err := a.db.RecentScans(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		util.InfoLog("No scans recorded yet")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		status := "ok"
		if run.Error != "" {
			status = run.Error
		}
		rows = append(rows, []string{
			humanize.Time(run.StartedAt),
			run.Root,
			humanize.Comma(int64(run.Videos)),
			humanize.Comma(int64(run.Sidecars)),
			run.Duration().Round(time.Millisecond).String(),
			status,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"When", "Folder", "Videos", "Sidecars", "Took", "Status"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
	))
	return nil
}
