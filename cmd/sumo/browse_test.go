package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/franz/sumotube/internal/host"
	"github.com/franz/sumotube/internal/overlay"
	"github.com/franz/sumotube/internal/query"
	"github.com/spf13/viper"
)

// useTempDB points the state database at a fresh temp dir for one test
func useTempDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state", "sumo.db")
	viper.Set("db", path)
	t.Cleanup(func() { viper.Set("db", "") })
	return path
}

func makeLibrary(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		path := filepath.Join(root, f)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

// runScript browses root feeding script as the typed input
func runScript(t *testing.T, root, script string) (string, *overlay.Document) {
	t.Helper()
	ctx := context.Background()

	a, err := openApp(ctx, appOptions{
		write:       true,
		interactive: true,
		prompter:    host.NewPrompter(strings.NewReader(script), io.Discard),
	})
	if err != nil {
		t.Fatalf("openApp failed: %v", err)
	}
	defer a.close()

	var out bytes.Buffer
	if err := browse(ctx, a, root, &out, browseOptions{sort: query.SortTitleAsc}); err != nil {
		t.Fatalf("browse failed: %v", err)
	}
	return out.String(), a.overlay.Snapshot()
}

func TestBrowseEdits(t *testing.T) {
	useTempDB(t)
	root := makeLibrary(t, "Alpha/one.mp4", "Alpha/two.mp4", "Beta/three.mkv")
	two := filepath.Join(root, "Alpha", "two.mp4")

	// title-asc lists one, three, two; pinning two moves it to the top
	script := strings.Join([]string{
		"pin 3",
		"title 1 Zulu",
		"newpl Faves",
		"add 1 1",
		"playlist 1",
		"describe Late night",
		"quit",
	}, "\n") + "\n"

	out, doc := runScript(t, root, script)

	if !doc.IsPinned(two) {
		t.Errorf("expected %s to be pinned", two)
	}
	o, ok := doc.VideoOverride(two)
	if !ok || o.Title.OrElse("") != "Zulu" {
		t.Errorf("expected title override Zulu, got %+v", o)
	}
	lists := doc.Playlists()
	if len(lists) != 1 {
		t.Fatalf("expected one playlist, got %+v", lists)
	}
	if lists[0].Name != "Faves" || !lists[0].Contains(two) {
		t.Errorf("unexpected playlist: %+v", lists[0])
	}
	if lists[0].Description != "Late night" {
		t.Errorf("expected description, got %q", lists[0].Description)
	}
	if !strings.Contains(out, "Playlist: Faves") {
		t.Errorf("expected playlist header in output:\n%s", out)
	}
}

func TestBrowseArtistView(t *testing.T) {
	useTempDB(t)
	root := makeLibrary(t, "Alpha/one.mp4", "Beta/three.mkv")

	script := "artist 2\nrename The Betas\nback\nsearch betas\nquit\n"
	out, doc := runScript(t, root, script)

	profile, ok := doc.ArtistProfile("Beta")
	if !ok || profile.DisplayName.OrElse("") != "The Betas" {
		t.Errorf("expected display name override, got %+v", profile)
	}
	if !strings.Contains(out, "Artist: The Betas") {
		t.Errorf("expected renamed artist header in output:\n%s", out)
	}
	if !strings.Contains(out, `matching "betas"`) {
		t.Errorf("expected search summary in output:\n%s", out)
	}
}

func TestBrowseReportsBadInput(t *testing.T) {
	useTempDB(t)
	root := makeLibrary(t, "Alpha/one.mp4")

	script := "pin 9\nfly\ndelpl\nsort sideways\nquit\n"
	out, doc := runScript(t, root, script)

	for _, want := range []string{
		"no video 9",
		`Unknown command "fly"`,
		"not in a playlist",
		"unknown sort key",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	if len(doc.Pinned()) != 0 {
		t.Errorf("expected nothing pinned, got %v", doc.Pinned())
	}
}

func TestBrowseMissingFolder(t *testing.T) {
	useTempDB(t)
	missing := filepath.Join(t.TempDir(), "gone")

	out, _ := runScript(t, missing, "quit\n")
	if !strings.Contains(out, "Could not scan") {
		t.Errorf("expected scan failure notice:\n%s", out)
	}
}

func TestBrowseRemembersFolder(t *testing.T) {
	useTempDB(t)
	root := makeLibrary(t, "Alpha/one.mp4")

	runScript(t, root, "quit\n")

	ctx := context.Background()
	a, err := openApp(ctx, appOptions{})
	if err != nil {
		t.Fatalf("openApp failed: %v", err)
	}
	defer a.close()

	if got := a.host.LastFolder(); got != root {
		t.Errorf("expected last folder %s, got %s", root, got)
	}
	scans, err := a.db.RecentScans(5)
	if err != nil || len(scans) != 1 {
		t.Fatalf("expected one recorded scan, got %v (%v)", scans, err)
	}
}

func TestBrowseLockedByAnotherSession(t *testing.T) {
	useTempDB(t)
	ctx := context.Background()

	first, err := openApp(ctx, appOptions{write: true})
	if err != nil {
		t.Fatalf("openApp failed: %v", err)
	}
	defer first.close()

	if _, err := openApp(ctx, appOptions{write: true}); err == nil {
		t.Error("expected second writer to be refused")
	}
}

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		line, name, arg string
	}{
		{"pin 3", "pin", "3"},
		{"  TITLE 2  Hello  World ", "title", "2  Hello  World"},
		{"ls", "ls", ""},
		{"", "", ""},
	}
	for _, tt := range tests {
		name, arg := splitCommand(tt.line)
		if name != tt.name || arg != tt.arg {
			t.Errorf("splitCommand(%q) = %q, %q; expected %q, %q", tt.line, name, arg, tt.name, tt.arg)
		}
	}
}

func TestSplitIndex(t *testing.T) {
	n, rest, err := splitIndex("12 new title")
	if err != nil || n != 12 || rest != "new title" {
		t.Errorf("unexpected result: %d %q %v", n, rest, err)
	}

	for _, bad := range []string{"", "zero", "0", "-1"} {
		if _, _, err := splitIndex(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestLookupCommand(t *testing.T) {
	for _, name := range []string{"ls", "pin", "title", "add", "folder", "unpicture"} {
		if _, ok := lookupCommand(name); !ok {
			t.Errorf("expected command %s", name)
		}
	}
	if _, ok := lookupCommand("N"); ok {
		t.Error("usage arguments must not match as commands")
	}
}
