package view

import (
	"path/filepath"

	"github.com/franz/sumotube/internal/catalog"
	"github.com/franz/sumotube/internal/overlay"
	"github.com/franz/sumotube/internal/query"
	"github.com/franz/sumotube/internal/report"
	"github.com/franz/sumotube/internal/resolve"
	"github.com/franz/sumotube/internal/util"
)

// Options configures a Router
type Options struct {
	Store    *overlay.Store
	Engine   *query.Engine
	Renderer Renderer
	Events   *report.EventLogger
	Sort     query.SortKey
	// Probe is called once per rendered video that has no duration yet
	Probe func(path string)
}

// Router holds the catalog, the resolved display index and the current
// view. Every transition and every mutation recomputes the visible subset
// and renders it. It is not safe for concurrent use; the session loop owns it.
type Router struct {
	store    *overlay.Store
	engine   *query.Engine
	renderer Renderer
	events   *report.EventLogger
	probe    func(path string)

	catalog  *catalog.Catalog
	doc      *overlay.Document
	resolved map[string]resolve.DisplayVideo

	view   View
	text   string
	sort   query.SortKey
	notice string

	durations map[string]string
	requested map[string]bool
	frame     Frame
}

// NewRouter creates a router showing an empty grid
func NewRouter(opts Options) *Router {
	engine := opts.Engine
	if engine == nil {
		engine = query.NewEngine(nil)
	}
	sort := opts.Sort
	if sort == "" {
		sort = query.SortRandom
	}
	r := &Router{
		store:     opts.Store,
		engine:    engine,
		renderer:  opts.Renderer,
		events:    opts.Events,
		probe:     opts.Probe,
		catalog:   catalog.Empty(),
		view:      Grid(),
		sort:      sort,
		durations: make(map[string]string),
		requested: make(map[string]bool),
	}
	r.doc = r.snapshot()
	r.resolved = make(map[string]resolve.DisplayVideo)
	return r
}

func (r *Router) snapshot() *overlay.Document {
	if r.store == nil {
		return overlay.NewDocument()
	}
	return r.store.Snapshot()
}

// View returns the current view
func (r *Router) View() View {
	return r.view
}

// Frame returns the last rendered frame
func (r *Router) Frame() Frame {
	return r.frame
}

// Catalog returns the current raw catalog
func (r *Router) Catalog() *catalog.Catalog {
	return r.catalog
}

// Document returns the overlay snapshot the last render used
func (r *Router) Document() *overlay.Document {
	return r.doc
}

// Lookup returns the resolved form of a catalog video
func (r *Router) Lookup(path string) (resolve.DisplayVideo, bool) {
	dv, ok := r.resolved[path]
	return dv, ok
}

// LoadFolder replaces the catalog with a freshly scanned folder and returns
// to the grid
func (r *Router) LoadFolder(root string, entries []catalog.Entry) {
	r.setCatalog(catalog.New(root, entries))
	r.durations = make(map[string]string)
	r.requested = make(map[string]bool)
	r.transition(Grid(), "load")
}

// Refresh replaces the catalog with a rescan of the same folder and keeps
// the current view
func (r *Router) Refresh(entries []catalog.Entry) {
	r.setCatalog(catalog.New(r.catalog.Root, entries))
	r.requested = make(map[string]bool)
	r.Render()
}

func (r *Router) setCatalog(c *catalog.Catalog) {
	r.catalog = c
	r.doc = r.snapshot()
	r.resolved = make(map[string]resolve.DisplayVideo, c.Len())
	for _, v := range c.Videos() {
		r.resolved[v.Path] = resolve.Resolve(v, r.doc)
	}
}

// Navigate moves to v. A playlist that does not exist lands on the grid.
func (r *Router) Navigate(v View) {
	r.transition(v, "navigate")
}

// ShowGrid navigates to the grid
func (r *Router) ShowGrid() {
	r.Navigate(Grid())
}

// ShowArtist navigates to a folder's videos
func (r *Router) ShowArtist(folderName string) {
	r.Navigate(Artist(folderName))
}

// ShowPlaylist navigates to a playlist
func (r *Router) ShowPlaylist(id string) {
	r.Navigate(Playlist(id))
}

// Back always returns to the grid
func (r *Router) Back() {
	r.transition(Grid(), "back")
}

func (r *Router) transition(v View, reason string) {
	if v != r.view {
		util.DebugLog("View %s -> %s (%s)", r.view, v, reason)
		r.events.LogNavigate(v.String(), reason)
	}
	r.view = v
	r.Render()
}

// SetQuery changes the search text and re-renders
func (r *Router) SetQuery(text string) {
	r.text = text
	r.Render()
}

// SetSort changes the sort key and re-renders
func (r *Router) SetSort(key query.SortKey) {
	r.sort = key
	r.Render()
}

// Notify attaches a one-shot notice to the next render
func (r *Router) Notify(msg string) {
	r.notice = msg
	r.Render()
}

// Execute applies a mutation and reconciles the display index by what it
// changed, then renders
func (r *Router) Execute(cmd overlay.Command) overlay.Change {
	if r.store == nil {
		return overlay.Change{}
	}
	change := cmd.Apply(r.store)
	r.Reconcile(change)
	return change
}

// Reconcile brings the display index up to date after change. Changes that
// only affect ordering or playlists need no re-resolve.
func (r *Router) Reconcile(change overlay.Change) {
	if change.IsNone() {
		return
	}
	r.doc = r.snapshot()

	switch change.Kind {
	case overlay.ChangeVideo:
		if v, ok := r.catalog.Lookup(change.Path); ok {
			r.resolved[v.Path] = resolve.Resolve(v, r.doc)
		}
	case overlay.ChangeArtist:
		for _, v := range r.catalog.InFolder(change.FolderName) {
			r.resolved[v.Path] = resolve.Resolve(v, r.doc)
		}
	case overlay.ChangeAll:
		for _, v := range r.catalog.Videos() {
			r.resolved[v.Path] = resolve.Resolve(v, r.doc)
		}
	}

	if change.PlaylistDeleted && r.view.Kind == KindPlaylist && r.view.PlaylistID == change.PlaylistID {
		r.transition(Grid(), "playlist deleted")
		return
	}
	r.Render()
}

// Render recomputes the visible subset and hands a new frame to the renderer
func (r *Router) Render() {
	if r.view.Kind == KindPlaylist {
		if _, ok := r.doc.Playlist(r.view.PlaylistID); !ok {
			r.transition(Grid(), "playlist missing")
			return
		}
	}

	f := Frame{
		View:      r.view,
		Root:      r.catalog.Root,
		Query:     r.text,
		Sort:      r.sort,
		Header:    r.header(),
		Artists:   r.artists(),
		Playlists: r.playlists(),
		Notice:    r.notice,
	}
	r.notice = ""

	ordered := r.engine.Apply(r.subset(), r.doc.IsPinned, r.text, r.sort)
	f.Items = make([]Item, len(ordered))
	for i, dv := range ordered {
		f.Items[i] = Item{
			Video:         dv,
			Pinned:        r.doc.IsPinned(dv.Path()),
			PlaylistCount: r.doc.PlaylistsContaining(dv.Path()),
			Duration:      r.durations[dv.Path()],
		}
	}

	r.frame = f
	if r.renderer != nil {
		r.renderer.Render(f)
	}
	r.requestProbes()
}

func (r *Router) subset() []resolve.DisplayVideo {
	var raw []catalog.RawVideo
	switch r.view.Kind {
	case KindArtist:
		raw = r.catalog.InFolder(r.view.FolderName)
	case KindPlaylist:
		p, _ := r.doc.Playlist(r.view.PlaylistID)
		for _, path := range p.MemberPaths {
			if v, ok := r.catalog.Lookup(path); ok {
				raw = append(raw, v)
			}
		}
	default:
		raw = r.catalog.Videos()
	}

	out := make([]resolve.DisplayVideo, 0, len(raw))
	for _, v := range raw {
		dv, ok := r.resolved[v.Path]
		if !ok {
			dv = resolve.Resolve(v, r.doc)
			r.resolved[v.Path] = dv
		}
		out = append(out, dv)
	}
	return out
}

func (r *Router) header() Header {
	switch r.view.Kind {
	case KindArtist:
		profile, _ := r.doc.ArtistProfile(r.view.FolderName)
		return Header{
			Title:       resolve.ArtistName(r.view.FolderName, r.doc),
			Description: profile.Bio.OrElse(""),
			ImagePath:   profile.ProfilePicturePath.OrElse(""),
		}
	case KindPlaylist:
		p, _ := r.doc.Playlist(r.view.PlaylistID)
		return Header{
			Title:       p.Name,
			Description: p.Description,
			ImagePath:   p.ThumbnailPath.OrElse(""),
		}
	default:
		if r.catalog.Root == "" {
			return Header{}
		}
		return Header{Title: filepath.Base(r.catalog.Root)}
	}
}

func (r *Router) artists() []ArtistEntry {
	folders := r.catalog.Folders()
	out := make([]ArtistEntry, 0, len(folders))
	for _, f := range folders {
		profile, _ := r.doc.ArtistProfile(f.Name)
		out = append(out, ArtistEntry{
			FolderName:  f.Name,
			DisplayName: resolve.ArtistName(f.Name, r.doc),
			Count:       f.Count,
			PicturePath: profile.ProfilePicturePath.OrElse(""),
		})
	}
	return out
}

func (r *Router) playlists() []PlaylistEntry {
	lists := r.doc.Playlists()
	out := make([]PlaylistEntry, 0, len(lists))
	for _, p := range lists {
		out = append(out, PlaylistEntry{ID: p.ID, Name: p.Name, Count: len(p.MemberPaths)})
	}
	return out
}

func (r *Router) requestProbes() {
	if r.probe == nil {
		return
	}
	for _, item := range r.frame.Items {
		path := item.Video.Path()
		if item.Duration != "" || r.requested[path] {
			continue
		}
		r.requested[path] = true
		r.probe(path)
	}
}

// ApplyProbe records a duration for a catalog video. Only a video in the
// current frame is redrawn, and only then is true returned; the others pick
// the duration up when they are next rendered.
func (r *Router) ApplyProbe(path, duration string) bool {
	if _, ok := r.catalog.Lookup(path); !ok {
		return false
	}
	r.durations[path] = duration

	i := r.frame.IndexOf(path)
	if i < 0 {
		return false
	}
	r.frame.Items[i].Duration = duration

	if sink, ok := r.renderer.(DurationSink); ok {
		sink.SetDuration(path, duration)
	} else if r.renderer != nil {
		r.renderer.Render(r.frame)
	}
	return true
}
