package host

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/franz/sumotube/internal/scan"
	"github.com/franz/sumotube/internal/store"
	"github.com/franz/sumotube/internal/util"
	"github.com/spf13/afero"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("png.Encode failed: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestValidateImage(t *testing.T) {
	dir := t.TempDir()

	pngPath := filepath.Join(dir, "cover.png")
	writePNG(t, pngPath, 3, 2)

	jpgPath := filepath.Join(dir, "cover.JPG")
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4)), nil); err != nil {
		t.Fatal(err)
	}
	os.WriteFile(jpgPath, buf.Bytes(), 0o644)

	fakePath := filepath.Join(dir, "fake.webp")
	os.WriteFile(fakePath, []byte("not an image"), 0o644)

	gifPath := filepath.Join(dir, "anim.gif")
	os.WriteFile(gifPath, []byte("GIF89a"), 0o644)

	info, err := ValidateImage(pngPath)
	if err != nil {
		t.Fatalf("ValidateImage(png) failed: %v", err)
	}
	if info.Format != "png" || info.Width != 3 || info.Height != 2 {
		t.Errorf("unexpected png info: %+v", info)
	}

	if info, err := ValidateImage(jpgPath); err != nil || info.Format != "jpeg" {
		t.Errorf("expected jpeg, got %+v, %v", info, err)
	}

	tests := []struct {
		path string
		want error
	}{
		{fakePath, util.ErrCorrupt},
		{gifPath, util.ErrUnsupported},
		{filepath.Join(dir, "missing.png"), util.ErrNotFound},
	}
	for _, tt := range tests {
		if _, err := ValidateImage(tt.path); !errors.Is(err, tt.want) {
			t.Errorf("ValidateImage(%s) = %v, expected %v", filepath.Base(tt.path), err, tt.want)
		}
	}
}

func TestPickFolder(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "clip.mp4")
	os.WriteFile(file, nil, 0o644)

	tests := []struct {
		name   string
		input  string
		def    string
		want   string
		wantOK bool
	}{
		{"typed", dir + "\n", "", dir, true},
		{"default", "\n", dir, dir, true},
		{"no trailing newline", dir, "", dir, true},
		{"empty without default", "\n", "", "", false},
		{"eof", "", dir, "", false},
		{"file then folder", file + "\n" + dir + "\n", "", dir, true},
		{"file then eof", file + "\n", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewPrompter(strings.NewReader(tt.input), &out)
			got, ok := p.PickFolder(tt.def)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("PickFolder = (%q, %v), expected (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestPromptModel(t *testing.T) {
	var m tea.Model = newPromptModel("Folder: ", "/default")
	for _, msg := range []tea.Msg{
		tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/vid")},
		tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("eos")},
		tea.KeyMsg{Type: tea.KeyBackspace},
		tea.KeyMsg{Type: tea.KeyEnter},
	} {
		m, _ = m.Update(msg)
	}

	answer, ok := m.(promptModel).Answer()
	if !ok || answer != "/video" {
		t.Errorf("Answer = (%q, %v), expected (/video, true)", answer, ok)
	}
	if view := m.View(); !strings.Contains(view, "Folder: /video") {
		t.Errorf("expected submitted answer in view, got %q", view)
	}

	m = newPromptModel("Folder: ", "")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if _, ok := m.(promptModel).Answer(); ok {
		t.Error("escape should cancel the prompt")
	}
}

func TestAskScriptedLines(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("  title 2 Hello  World \n\nlast"), &out)

	for _, want := range []string{"title 2 Hello  World", "", "last"} {
		got, ok := p.Ask("sumo> ")
		if !ok || got != want {
			t.Errorf("Ask = (%q, %v), expected (%q, true)", got, ok, want)
		}
	}
	if _, ok := p.Ask("sumo> "); ok {
		t.Error("expected end of input")
	}
}

func TestPickImageFileReasks(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "pic.png")
	writePNG(t, good, 1, 1)
	bad := filepath.Join(dir, "pic.txt")
	os.WriteFile(bad, []byte("x"), 0o644)

	var out bytes.Buffer
	p := NewPrompter(strings.NewReader(bad+"\n"+good+"\n"), &out)
	got, ok := p.PickImageFile()
	if !ok || got != good {
		t.Errorf("PickImageFile = (%q, %v), expected %q", got, ok, good)
	}
	if !strings.Contains(out.String(), "Not a usable image") {
		t.Errorf("expected rejection message, got %q", out.String())
	}

	p = NewPrompter(strings.NewReader("\n"), &out)
	if _, ok := p.PickImageFile(); ok {
		t.Error("empty answer should cancel")
	}
}

func TestOpenerCommand(t *testing.T) {
	tests := []struct {
		goos string
		want string
	}{
		{"linux", "xdg-open"},
		{"freebsd", "xdg-open"},
		{"darwin", "open"},
		{"windows", "rundll32"},
	}
	for _, tt := range tests {
		name, args := openerCommand(tt.goos, "/v/a.mp4")
		if name != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.goos, tt.want, name)
		}
		if args[len(args)-1] != "/v/a.mp4" {
			t.Errorf("%s: path must be the last argument, got %v", tt.goos, args)
		}
	}
}

func TestOpenInExternalViewer(t *testing.T) {
	orig := startCommand
	defer func() { startCommand = orig }()

	var launched []string
	startCommand = func(name string, args ...string) error {
		launched = append(launched, name)
		if strings.HasSuffix(args[len(args)-1], "broken.mp4") {
			return errors.New("no handler")
		}
		return nil
	}

	dir := t.TempDir()
	good := filepath.Join(dir, "good.mp4")
	broken := filepath.Join(dir, "broken.mp4")
	os.WriteFile(good, nil, 0o644)
	os.WriteFile(broken, nil, 0o644)

	h := New(Options{})
	if msg := h.OpenInExternalViewer(good); msg != "" {
		t.Errorf("expected success, got %q", msg)
	}
	if msg := h.OpenInExternalViewer(broken); !strings.Contains(msg, "no handler") {
		t.Errorf("expected failure text, got %q", msg)
	}
	if msg := h.OpenInExternalViewer(filepath.Join(dir, "gone.mp4")); msg == "" {
		t.Error("expected failure for a missing file")
	}
	if len(launched) != 2 {
		t.Errorf("missing files must not launch a viewer, launched %v", launched)
	}
}

func TestScanFolder(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/lib/A/x.mp4", []byte("x"), 0o644)
	afero.WriteFile(fs, "/lib/A/x.jpeg", []byte("x"), 0o644)

	h := New(Options{Scanner: scan.New(&scan.Config{Fs: fs})})
	entries, err := h.ScanFolder(context.Background(), "/lib")
	if err != nil {
		t.Fatalf("ScanFolder failed: %v", err)
	}
	if len(entries) != 1 || entries[0].SidecarPath != "/lib/A/x.jpeg" {
		t.Errorf("unexpected entries: %+v", entries)
	}

	_, err = h.ScanFolder(context.Background(), "/missing")
	var serr *scan.ScanError
	if !errors.As(err, &serr) {
		t.Errorf("expected ScanError, got %v", err)
	}
}

func TestLastFolder(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	h := New(Options{Settings: db})
	if got := h.LastFolder(); got != "" {
		t.Errorf("expected no last folder, got %q", got)
	}
	if err := h.SetLastFolder("/videos"); err != nil {
		t.Fatalf("SetLastFolder failed: %v", err)
	}
	if got := h.LastFolder(); got != "/videos" {
		t.Errorf("expected /videos, got %q", got)
	}

	if New(Options{}).LastFolder() != "" {
		t.Error("host without settings should report no last folder")
	}
}
