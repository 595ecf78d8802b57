package query

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/franz/sumotube/internal/catalog"
	"github.com/franz/sumotube/internal/overlay"
	"github.com/franz/sumotube/internal/resolve"
	"github.com/franz/sumotube/internal/util"
)

func displayVideos(doc *overlay.Document, paths ...string) []resolve.DisplayVideo {
	raw := make([]catalog.RawVideo, len(paths))
	for i, p := range paths {
		raw[i] = catalog.FromPath(p)
	}
	return resolve.ResolveAll(raw, doc)
}

func paths(videos []resolve.DisplayVideo) []string {
	out := make([]string, len(videos))
	for i, dv := range videos {
		out[i] = dv.Path()
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func testEngine() *Engine {
	return NewEngine(rand.New(rand.NewPCG(1, 2)))
}

func TestPinnedTitleDescScenario(t *testing.T) {
	s := overlay.New(overlay.Options{})
	s.TogglePinned("/A/x.mp4")
	doc := s.Snapshot()

	videos := displayVideos(doc, "/A/x.mp4", "/A/y.mp4", "/B/z.mp4")
	got := paths(testEngine().Apply(videos, doc.IsPinned, "", SortTitleDesc))

	want := []string{"/A/x.mp4", "/B/z.mp4", "/A/y.mp4"}
	if !equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestPinnedAlwaysFirst(t *testing.T) {
	s := overlay.New(overlay.Options{})
	s.TogglePinned("/C/m.mp4")
	s.TogglePinned("/A/b.mp4")
	doc := s.Snapshot()

	videos := displayVideos(doc,
		"/A/a.mp4", "/A/b.mp4", "/B/c.mp4", "/C/m.mp4", "/B/d.mp4", "/C/e.mp4")
	engine := testEngine()

	for _, key := range SortKeys {
		runs := 1
		if key == SortRandom {
			runs = 25
		}
		for i := 0; i < runs; i++ {
			got := paths(engine.Apply(videos, doc.IsPinned, "", key))
			if len(got) != len(videos) {
				t.Fatalf("%s: lost videos: %v", key, got)
			}
			// pinned keep discovery order, not the sort order
			if got[0] != "/A/b.mp4" || got[1] != "/C/m.mp4" {
				t.Errorf("%s run %d: pinned not leading in discovery order: %v", key, i, got)
			}
		}
	}
}

func TestSortOrders(t *testing.T) {
	s := overlay.New(overlay.Options{})
	s.SetArtistDisplayName("A", "Zed")
	doc := s.Snapshot()
	videos := displayVideos(doc, "/A/beta.mp4", "/B/alpha.mp4", "/A/Gamma.mp4", "/C/delta.mp4")

	tests := []struct {
		key  SortKey
		want []string
	}{
		{SortTitleAsc, []string{"/B/alpha.mp4", "/A/beta.mp4", "/C/delta.mp4", "/A/Gamma.mp4"}},
		{SortTitleDesc, []string{"/A/Gamma.mp4", "/C/delta.mp4", "/A/beta.mp4", "/B/alpha.mp4"}},
		// ties (both Zed) keep discovery order
		{SortArtistAsc, []string{"/B/alpha.mp4", "/C/delta.mp4", "/A/beta.mp4", "/A/Gamma.mp4"}},
		{SortArtistDesc, []string{"/A/beta.mp4", "/A/Gamma.mp4", "/C/delta.mp4", "/B/alpha.mp4"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			got := paths(testEngine().Apply(videos, doc.IsPinned, "", tt.key))
			if !equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRandomIsPermutation(t *testing.T) {
	doc := overlay.NewDocument()
	videos := displayVideos(doc, "/A/1.mp4", "/A/2.mp4", "/A/3.mp4", "/A/4.mp4", "/A/5.mp4")
	engine := testEngine()

	seenOrders := make(map[string]bool)
	for i := 0; i < 50; i++ {
		got := engine.Apply(videos, doc.IsPinned, "", SortRandom)
		seen := make(map[string]bool)
		key := ""
		for _, p := range paths(got) {
			seen[p] = true
			key += p
		}
		if len(seen) != len(videos) {
			t.Fatalf("random order lost or duplicated videos: %v", paths(got))
		}
		seenOrders[key] = true
	}
	if len(seenOrders) < 2 {
		t.Error("expected random ordering to vary between renders")
	}
	if !equal(paths(videos), []string{"/A/1.mp4", "/A/2.mp4", "/A/3.mp4", "/A/4.mp4", "/A/5.mp4"}) {
		t.Error("input slice must not be reordered")
	}
}

func TestSearch(t *testing.T) {
	s := overlay.New(overlay.Options{})
	s.SetArtistDisplayName("Band", "Cool Artist")
	s.SetVideoTitleOverride(catalog.FromPath("/Other/clip.mp4"), "Café Live")
	doc := s.Snapshot()
	videos := displayVideos(doc, "/Band/one.mp4", "/Other/clip.mp4", "/Other/two.mp4")
	engine := testEngine()

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"/Other/clip.mp4", "/Band/one.mp4", "/Other/two.mp4"}},
		{"  COOL ", []string{"/Band/one.mp4"}},
		{"band", []string{"/Band/one.mp4"}},
		{"café", []string{"/Other/clip.mp4"}},
		{"CAFE\u0301", []string{"/Other/clip.mp4"}},
		{"other", []string{"/Other/clip.mp4", "/Other/two.mp4"}},
		// the raw title is hidden by the override
		{"clip", nil},
		{"nothing", nil},
	}

	for _, tt := range tests {
		got := paths(engine.Apply(videos, doc.IsPinned, tt.query, SortTitleAsc))
		if !equal(got, tt.want) {
			t.Errorf("query %q: got %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestParseSortKey(t *testing.T) {
	for _, key := range SortKeys {
		got, err := ParseSortKey(" " + string(key) + " ")
		if err != nil || got != key {
			t.Errorf("ParseSortKey(%q) = %q, %v", key, got, err)
		}
	}
	if _, err := ParseSortKey("newest"); !errors.Is(err, util.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}
