package main

import (
	"context"
	"fmt"
	"os"

	"github.com/franz/sumotube/internal/overlay"
	"github.com/franz/sumotube/internal/util"
	"github.com/spf13/cobra"
)

var overlayCmd = &cobra.Command{
	Use:   "overlay",
	Short: "Export or import the overlay document",
	Long: `The overlay document holds every customization: pins, artist profiles,
custom thumbnails, title and artist overrides and playlists.

It can be exported to and imported from JSON, TOML or YAML. The format
follows the file extension unless --format is given.`,
}

var overlayExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the overlay document to a file or stdout",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runOverlayExport,
}

var overlayImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the overlay document with a file's contents",
	Args:  cobra.ExactArgs(1),
	RunE:  runOverlayImport,
}

func init() {
	rootCmd.AddCommand(overlayCmd)
	overlayCmd.AddCommand(overlayExportCmd, overlayImportCmd)

	overlayExportCmd.Flags().String("format", "", "json, toml or yaml")
	overlayImportCmd.Flags().String("format", "", "json, toml or yaml")
}

func overlayFormat(cmd *cobra.Command, path string) (overlay.Format, error) {
	if name, _ := cmd.Flags().GetString("format"); name != "" {
		return overlay.ParseFormat(name)
	}
	return overlay.FormatForPath(path), nil
}

func runOverlayExport(cmd *cobra.Command, args []string) error {
	path := argAt(args, 0)
	format, err := overlayFormat(cmd, path)
	if err != nil {
		return err
	}

	a, err := openApp(context.Background(), appOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	data, err := overlay.Encode(a.overlay.Snapshot(), format)
	if err != nil {
		return err
	}

	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	a.events.LogImport("export", path, string(format))
	util.SuccessLog("Exported overlay to %s (%s)", path, format)
	return nil
}

func runOverlayImport(cmd *cobra.Command, args []string) error {
	path := args[0]
	format, err := overlayFormat(cmd, path)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := overlay.Decode(data, format)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	return withWriter(func(ctx context.Context, a *app) error {
		if _, err := a.apply(overlay.Replace{Document: doc}); err != nil {
			return err
		}
		a.events.LogImport("import", path, string(format))
		util.InfoLog("  Pinned: %d", len(doc.Pinned()))
		util.InfoLog("  Artist profiles: %d", len(doc.ArtistProfiles()))
		util.InfoLog("  Playlists: %d", len(doc.Playlists()))
		return nil
	})
}
