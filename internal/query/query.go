// Package query filters and orders display videos. Pinned videos always
// lead, in the order they were given.
package query

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"github.com/franz/sumotube/internal/resolve"
	"github.com/franz/sumotube/internal/util"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// SortKey selects the ordering of the unpinned videos
type SortKey string

const (
	SortRandom     SortKey = "random"
	SortTitleAsc   SortKey = "title-asc"
	SortTitleDesc  SortKey = "title-desc"
	SortArtistAsc  SortKey = "artist-asc"
	SortArtistDesc SortKey = "artist-desc"
)

// SortKeys lists every valid key
var SortKeys = []SortKey{SortRandom, SortTitleAsc, SortTitleDesc, SortArtistAsc, SortArtistDesc}

// ParseSortKey validates a sort key name
func ParseSortKey(name string) (SortKey, error) {
	key := SortKey(strings.ToLower(strings.TrimSpace(name)))
	for _, k := range SortKeys {
		if k == key {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown sort key %q (want one of %v)", util.ErrInvalidConfig, name, SortKeys)
}

// Normalize prepares text for matching: trimmed, NFC, case-folded
func Normalize(s string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
}

// Matches reports whether a normalized needle occurs in the resolved title,
// the resolved artist or the raw folder name. An empty needle matches all.
func Matches(dv resolve.DisplayVideo, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(Normalize(dv.Title), needle) ||
		strings.Contains(Normalize(dv.DisplayArtist), needle) ||
		strings.Contains(Normalize(dv.Raw.FolderName), needle)
}

// Engine applies queries. It is not safe for concurrent use.
type Engine struct {
	rng      *rand.Rand
	collator *collate.Collator
}

// NewEngine creates an engine. A nil rng seeds one from the clock.
func NewEngine(rng *rand.Rand) *Engine {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>32|1))
	}
	return &Engine{
		rng:      rng,
		collator: collate.New(language.Und),
	}
}

// Apply filters videos by text and orders them by key. isPinned decides the
// leading partition; pinned videos keep their input order.
func (e *Engine) Apply(videos []resolve.DisplayVideo, isPinned func(path string) bool, text string, key SortKey) []resolve.DisplayVideo {
	needle := Normalize(text)

	var pinned, rest []resolve.DisplayVideo
	for _, dv := range videos {
		if !Matches(dv, needle) {
			continue
		}
		if isPinned != nil && isPinned(dv.Path()) {
			pinned = append(pinned, dv)
		} else {
			rest = append(rest, dv)
		}
	}

	e.order(rest, key)

	out := make([]resolve.DisplayVideo, 0, len(pinned)+len(rest))
	out = append(out, pinned...)
	return append(out, rest...)
}

func (e *Engine) order(videos []resolve.DisplayVideo, key SortKey) {
	switch key {
	case SortTitleAsc:
		e.sortBy(videos, func(dv resolve.DisplayVideo) string { return dv.Title }, false)
	case SortTitleDesc:
		e.sortBy(videos, func(dv resolve.DisplayVideo) string { return dv.Title }, true)
	case SortArtistAsc:
		e.sortBy(videos, func(dv resolve.DisplayVideo) string { return dv.DisplayArtist }, false)
	case SortArtistDesc:
		e.sortBy(videos, func(dv resolve.DisplayVideo) string { return dv.DisplayArtist }, true)
	default:
		e.shuffle(videos)
	}
}

// sortBy is stable: equal values keep their input order in both directions
func (e *Engine) sortBy(videos []resolve.DisplayVideo, field func(resolve.DisplayVideo) string, desc bool) {
	sort.SliceStable(videos, func(i, j int) bool {
		c := e.collator.CompareString(field(videos[i]), field(videos[j]))
		if desc {
			return c > 0
		}
		return c < 0
	})
}

// shuffle is Fisher-Yates
func (e *Engine) shuffle(videos []resolve.DisplayVideo) {
	for i := len(videos) - 1; i > 0; i-- {
		j := e.rng.IntN(i + 1)
		videos[i], videos[j] = videos[j], videos[i]
	}
}
