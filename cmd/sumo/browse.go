package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/franz/sumotube/internal/catalog"
	"github.com/franz/sumotube/internal/host"
	"github.com/franz/sumotube/internal/overlay"
	"github.com/franz/sumotube/internal/probe"
	"github.com/franz/sumotube/internal/query"
	"github.com/franz/sumotube/internal/report"
	"github.com/franz/sumotube/internal/scan"
	"github.com/franz/sumotube/internal/session"
	"github.com/franz/sumotube/internal/util"
	"github.com/franz/sumotube/internal/view"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var browseCmd = &cobra.Command{
	Use:   "browse [folder]",
	Short: "Browse a folder interactively",
	Long: `Open a folder and browse it from a prompt.

The folder is scanned once on open and again on "rescan" (or on every change
with --watch). Video lengths are probed in the background and show up the
next time the list is printed. Every edit is saved immediately.

Numbers in commands refer to the last printed list. Type "help" at the
prompt for the full command list.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)

	browseCmd.Flags().Bool("watch", false, "Rescan when videos or sidecar images change")
	browseCmd.Flags().Bool("nas-mode", false, "Tune probes for network storage (default: auto-detect)")
	browseCmd.Flags().String("sort", "", "Initial sort key: random, title-asc, title-desc, artist-asc, artist-desc")
	browseCmd.Flags().Bool("no-probe", false, "Do not probe video lengths")

	viper.BindPFlag("watch", browseCmd.Flags().Lookup("watch"))
	viper.BindPFlag("nas-mode", browseCmd.Flags().Lookup("nas-mode"))
}

type browseOptions struct {
	sort  query.SortKey
	probe bool
}

func runBrowse(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := browseOptions{probe: viper.GetBool("probe.enabled")}
	var err error
	if opts.sort, err = defaultSort(); err != nil {
		return err
	}
	if name, _ := cmd.Flags().GetString("sort"); name != "" {
		if opts.sort, err = query.ParseSortKey(name); err != nil {
			return err
		}
	}
	if noProbe, _ := cmd.Flags().GetBool("no-probe"); noProbe {
		opts.probe = false
	}

	a, err := openApp(ctx, appOptions{
		write:       true,
		interactive: true,
		prompter:    host.NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr()),
	})
	if err != nil {
		return err
	}
	defer a.close()

	root, err := a.folderArg(args)
	if err != nil {
		picked, ok := a.host.PickFolder("")
		if !ok {
			return errors.New("no folder chosen")
		}
		root = picked
	}

	return browse(ctx, a, root, cmd.OutOrStdout(), opts)
}

// browser runs one interactive session. Everything that touches the router
// goes through the session loop.
type browser struct {
	ctx      context.Context
	a        *app
	out      io.Writer
	renderer *frameRenderer
	sess     *session.Session
	scans    *scan.Manager
	probes   *probe.Dispatcher

	mu      sync.Mutex
	watcher *scan.Watcher
}

func browse(ctx context.Context, a *app, root string, out io.Writer, opts browseOptions) error {
	tuning := libraryTuning(root)

	b := &browser{
		ctx:      ctx,
		a:        a,
		out:      out,
		renderer: newFrameRenderer(out),
		scans:    scan.NewManager(a.host.Scanner()),
	}

	routerOpts := view.Options{
		Store:    a.overlay,
		Renderer: b.renderer,
		Events:   a.events,
		Sort:     opts.sort,
	}
	if opts.probe {
		if !probe.CheckFFprobeAvailable() {
			util.WarnLog("ffprobe not found; lengths will show as %s", probe.FallbackText)
		}
		b.probes = probe.NewDispatcher(ctx, probe.DispatcherOptions{
			Prober:      probe.FFprobe{},
			Window:      tuning.ProbeWindow,
			Concurrency: tuning.ProbeConcurrency,
			Events:      a.events,
			Deliver: func(res probe.Result) {
				b.sess.Post(func(r *view.Router) {
					r.ApplyProbe(res.Path, res.Text)
				})
			},
		})
		routerOpts.Probe = b.probes.Request
	}

	router := view.NewRouter(routerOpts)
	b.sess = session.New(router)
	b.sess.Start(ctx)
	defer b.shutdown()

	// The first scan runs in the foreground so the prompt starts on a
	// loaded grid
	result, err := a.scanFolder(ctx, root)
	if err != nil {
		b.sess.Do(func(r *view.Router) {
			r.Notify(fmt.Sprintf("Could not scan %s: %v", root, err))
		})
	} else {
		b.sess.Do(func(r *view.Router) {
			r.LoadFolder(result.Root, result.Entries)
		})
		b.watch(root, tuning)
	}

	return b.repl()
}

func (b *browser) shutdown() {
	b.mu.Lock()
	if b.watcher != nil {
		b.watcher.Close()
		b.watcher = nil
	}
	b.mu.Unlock()

	if b.probes != nil {
		b.probes.Close()
	}
	b.scans.Cancel()
	b.scans.Wait()
	b.sess.Close()

	if b.a.overlay.LastSaveError() != nil {
		if err := b.a.overlay.Flush(context.Background()); err != nil {
			util.ErrorLog("Unsaved overlay changes: %v", err)
		}
	}
}

// startScan rescans root in the background. Only the newest scan is applied.
func (b *browser) startScan(root string) {
	started := time.Now()
	b.scans.Start(b.ctx, root, func(out scan.Outcome) {
		b.a.recordScan(out.Root, started, out.Result, out.Err)
		b.sess.Post(func(r *view.Router) {
			b.applyScan(r, out)
		})
	})
}

func (b *browser) applyScan(r *view.Router, out scan.Outcome) {
	if !b.scans.IsCurrent(out.Generation) {
		return
	}
	if out.Err != nil {
		r.Notify(fmt.Sprintf("Could not scan %s: %v", out.Root, out.Err))
		return
	}
	if out.Root == r.Catalog().Root {
		r.Refresh(out.Result.Entries)
		return
	}

	r.LoadFolder(out.Root, out.Result.Entries)
	if err := b.a.host.SetLastFolder(out.Root); err != nil {
		util.WarnLog("%v", err)
	}
	b.watch(out.Root, libraryTuning(out.Root))
}

// watch replaces the folder watcher, if watching is enabled for root
func (b *browser) watch(root string, tuning *util.LibraryTuning) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.watcher != nil {
		b.watcher.Close()
		b.watcher = nil
	}
	if !tuning.Watch {
		return
	}

	w, err := scan.NewWatcher(root, scan.WatcherOptions{
		Match:    b.a.host.Scanner().Matches,
		OnChange: func() { b.startScan(root) },
	})
	if err != nil {
		util.WarnLog("Not watching %s: %v", root, err)
		return
	}
	util.DebugLog("Watching %s", root)
	b.watcher = w
}

type browseCommand struct {
	usage string
	help  string
	run   func(b *browser, arg string) error
}

var browseCommands = []browseCommand{
	{"ls", "print the current list again", (*browser).list},
	{"grid", "show every video", func(b *browser, _ string) error {
		return b.nav(func(r *view.Router) { r.ShowGrid() })
	}},
	{"back", "return to the grid", func(b *browser, _ string) error {
		return b.nav(func(r *view.Router) { r.Back() })
	}},
	{"artists", "list artist folders", (*browser).artists},
	{"artist N", "show artist N", (*browser).artist},
	{"playlists", "list playlists", (*browser).playlists},
	{"playlist N", "show playlist N", (*browser).playlist},
	{"search [text]", "filter by title, artist or folder (empty clears)", func(b *browser, arg string) error {
		return b.nav(func(r *view.Router) { r.SetQuery(arg) })
	}},
	{"sort KEY", "sort by " + sortKeyList(), (*browser).sortBy},
	{"pin N", "pin or unpin video N", func(b *browser, arg string) error {
		v, _, err := b.item(arg)
		if err != nil {
			return err
		}
		return b.execute(overlay.TogglePinned{Path: v.Path})
	}},
	{"title N [text]", "set the title of video N (empty resets)", func(b *browser, arg string) error {
		v, rest, err := b.item(arg)
		if err != nil {
			return err
		}
		return b.execute(overlay.SetVideoTitle{Video: v, Title: rest})
	}},
	{"by N [artist]", "set the artist of video N (empty resets)", func(b *browser, arg string) error {
		v, rest, err := b.item(arg)
		if err != nil {
			return err
		}
		return b.execute(overlay.SetVideoArtist{Video: v, Artist: rest})
	}},
	{"reset N", "clear the title and artist of video N", func(b *browser, arg string) error {
		v, _, err := b.item(arg)
		if err != nil {
			return err
		}
		return b.execute(overlay.ClearVideoMetadata{Path: v.Path})
	}},
	{"thumb N", "choose a thumbnail image for video N", func(b *browser, arg string) error {
		v, _, err := b.item(arg)
		if err != nil {
			return err
		}
		img, ok := b.a.host.PickImageFile()
		if !ok {
			return nil
		}
		return b.execute(overlay.SetCustomThumbnail{Path: v.Path, ImagePath: img})
	}},
	{"unthumb N", "remove the custom thumbnail of video N", func(b *browser, arg string) error {
		v, _, err := b.item(arg)
		if err != nil {
			return err
		}
		return b.execute(overlay.ClearCustomThumbnail{Path: v.Path})
	}},
	{"open N", "open video N in the default player", func(b *browser, arg string) error {
		v, _, err := b.item(arg)
		if err != nil {
			return err
		}
		if failure := b.a.host.OpenInExternalViewer(v.Path); failure != "" {
			return errors.New(failure)
		}
		return nil
	}},
	{"add N P", "add video N to playlist P", (*browser).addToPlaylist},
	{"remove N", "remove video N from the current playlist", func(b *browser, arg string) error {
		id, err := b.currentPlaylist()
		if err != nil {
			return err
		}
		v, _, err := b.item(arg)
		if err != nil {
			return err
		}
		return b.execute(overlay.RemoveFromPlaylist{ID: id, Path: v.Path})
	}},
	{"newpl NAME", "create a playlist", func(b *browser, arg string) error {
		return b.execute(overlay.CreatePlaylist{Spec: overlay.PlaylistSpec{Name: arg}})
	}},
	{"delpl", "delete the current playlist", func(b *browser, _ string) error {
		id, err := b.currentPlaylist()
		if err != nil {
			return err
		}
		return b.execute(overlay.DeletePlaylist{ID: id})
	}},
	{"rename [text]", "rename the current artist or playlist", (*browser).rename},
	{"describe [text]", "set the bio of the current artist or the description of the current playlist", (*browser).describe},
	{"picture", "choose the picture of the current artist or playlist", func(b *browser, _ string) error {
		if _, err := b.headerTarget(); err != nil {
			return err
		}
		img, ok := b.a.host.PickImageFile()
		if !ok {
			return nil
		}
		return b.setPicture(img)
	}},
	{"unpicture", "remove the picture of the current artist or playlist", func(b *browser, _ string) error {
		return b.setPicture("")
	}},
	{"rescan", "scan the current folder again", func(b *browser, _ string) error {
		root := b.frame().Root
		if root == "" {
			return errors.New("no folder open")
		}
		fmt.Fprintf(b.out, "Scanning %s...\n", root)
		b.startScan(root)
		return nil
	}},
	{"folder [path]", "open another folder", (*browser).folder},
}

func (b *browser) repl() error {
	fmt.Fprintln(b.out, `Type "help" for commands, "quit" to leave.`)
	for {
		line, ok := b.a.host.Ask("sumo> ")
		if !ok {
			return nil
		}
		name, arg := splitCommand(line)
		switch name {
		case "":
			continue
		case "quit", "exit", "q":
			return nil
		case "help", "?":
			b.help()
			continue
		}

		c, found := lookupCommand(name)
		if !found {
			fmt.Fprintf(b.out, "Unknown command %q (type help)\n", name)
			continue
		}
		if err := c.run(b, arg); err != nil {
			fmt.Fprintf(b.out, "Error: %v\n", err)
			b.a.events.LogError(report.EventError, line, err)
		}
	}
}

func (b *browser) help() {
	rows := make([][]string, 0, len(browseCommands)+1)
	for _, c := range browseCommands {
		rows = append(rows, []string{c.usage, c.help})
	}
	rows = append(rows, []string{"quit", "leave"})
	fmt.Fprintln(b.out, renderTable([]string{"Command", "Does"}, rows, []columnAlignment{alignLeft, alignLeft}))
}

func lookupCommand(name string) (browseCommand, bool) {
	for _, c := range browseCommands {
		if commandName(c.usage) == name {
			return c, true
		}
	}
	return browseCommand{}, false
}

func commandName(usage string) string {
	name, _, _ := strings.Cut(usage, " ")
	return name
}

// splitCommand separates the lowercased command word from its argument text
func splitCommand(line string) (string, string) {
	name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	return strings.ToLower(name), strings.TrimSpace(arg)
}

// splitIndex parses a leading 1-based number
func splitIndex(arg string) (int, string, error) {
	first, rest, _ := strings.Cut(strings.TrimSpace(arg), " ")
	if first == "" {
		return 0, "", errors.New("missing number")
	}
	n, err := strconv.Atoi(first)
	if err != nil || n < 1 {
		return 0, "", fmt.Errorf("not a list number: %q", first)
	}
	return n, strings.TrimSpace(rest), nil
}

func sortKeyList() string {
	names := make([]string, len(query.SortKeys))
	for i, k := range query.SortKeys {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

// do runs fn on the session loop and returns its error
func (b *browser) do(fn func(r *view.Router) error) error {
	var err error
	if serr := b.sess.Do(func(r *view.Router) { err = fn(r) }); serr != nil {
		return serr
	}
	return err
}

func (b *browser) nav(fn func(r *view.Router)) error {
	return b.sess.Do(fn)
}

func (b *browser) frame() view.Frame {
	var f view.Frame
	b.sess.Do(func(r *view.Router) { f = r.Frame() })
	return f
}

// item returns video N of the last frame and the text after the number
func (b *browser) item(arg string) (catalog.RawVideo, string, error) {
	n, rest, err := splitIndex(arg)
	if err != nil {
		return catalog.RawVideo{}, "", err
	}

	var v catalog.RawVideo
	err = b.do(func(r *view.Router) error {
		items := r.Frame().Items
		if n > len(items) {
			return fmt.Errorf("no video %d (list has %d)", n, len(items))
		}
		path := items[n-1].Video.Path()
		var ok bool
		if v, ok = r.Catalog().Lookup(path); !ok {
			return fmt.Errorf("%w: %s", util.ErrNotFound, path)
		}
		return nil
	})
	return v, rest, err
}

// execute applies a mutation through the router, which renders the result
func (b *browser) execute(cmd overlay.Command) error {
	var change overlay.Change
	if err := b.sess.Do(func(r *view.Router) { change = r.Execute(cmd) }); err != nil {
		return err
	}
	if change.IsNone() {
		fmt.Fprintln(b.out, "Nothing changed")
		return nil
	}
	if err := b.a.overlay.LastSaveError(); err != nil {
		return fmt.Errorf("not saved: %w", err)
	}
	return nil
}

func (b *browser) list(string) error {
	b.renderer.Reprint()
	return nil
}

func (b *browser) artists(string) error {
	fmt.Fprint(b.out, formatArtists(b.frame().Artists))
	return nil
}

func (b *browser) artist(arg string) error {
	n, _, err := splitIndex(arg)
	if err != nil {
		return err
	}
	return b.do(func(r *view.Router) error {
		artists := r.Frame().Artists
		if n > len(artists) {
			return fmt.Errorf("no artist %d (%d artists)", n, len(artists))
		}
		r.ShowArtist(artists[n-1].FolderName)
		return nil
	})
}

func (b *browser) playlists(string) error {
	fmt.Fprint(b.out, formatPlaylists(b.frame().Playlists))
	return nil
}

func (b *browser) playlist(arg string) error {
	n, _, err := splitIndex(arg)
	if err != nil {
		return err
	}
	return b.do(func(r *view.Router) error {
		id, err := playlistAt(r.Frame(), n)
		if err != nil {
			return err
		}
		r.ShowPlaylist(id)
		return nil
	})
}

func playlistAt(f view.Frame, n int) (string, error) {
	if n > len(f.Playlists) {
		return "", fmt.Errorf("no playlist %d (%d playlists)", n, len(f.Playlists))
	}
	return f.Playlists[n-1].ID, nil
}

func (b *browser) sortBy(arg string) error {
	key, err := query.ParseSortKey(arg)
	if err != nil {
		return err
	}
	return b.nav(func(r *view.Router) { r.SetSort(key) })
}

func (b *browser) addToPlaylist(arg string) error {
	v, rest, err := b.item(arg)
	if err != nil {
		return err
	}
	n, _, err := splitIndex(rest)
	if err != nil {
		return fmt.Errorf("playlist: %w", err)
	}
	id, err := playlistAt(b.frame(), n)
	if err != nil {
		return err
	}
	return b.execute(overlay.AddToPlaylist{ID: id, Path: v.Path})
}

func (b *browser) currentPlaylist() (string, error) {
	f := b.frame()
	if f.View.Kind != view.KindPlaylist {
		return "", errors.New("not in a playlist")
	}
	return f.View.PlaylistID, nil
}

// headerTarget returns the artist or playlist view the header belongs to
func (b *browser) headerTarget() (view.View, error) {
	v := b.frame().View
	if v.Kind == view.KindGrid {
		return v, errors.New("open an artist or a playlist first")
	}
	return v, nil
}

func (b *browser) rename(arg string) error {
	v, err := b.headerTarget()
	if err != nil {
		return err
	}
	if v.Kind == view.KindArtist {
		return b.execute(overlay.SetArtistDisplayName{FolderName: v.FolderName, DisplayName: arg})
	}
	return b.execute(overlay.RenamePlaylist{ID: v.PlaylistID, Name: arg})
}

func (b *browser) describe(arg string) error {
	v, err := b.headerTarget()
	if err != nil {
		return err
	}
	if v.Kind == view.KindArtist {
		return b.execute(overlay.SetArtistBio{FolderName: v.FolderName, Bio: arg})
	}
	return b.execute(overlay.SetPlaylistDescription{ID: v.PlaylistID, Description: arg})
}

func (b *browser) setPicture(img string) error {
	v, err := b.headerTarget()
	if err != nil {
		return err
	}
	if v.Kind == view.KindArtist {
		return b.execute(overlay.SetArtistPicture{FolderName: v.FolderName, ImagePath: img})
	}
	return b.execute(overlay.SetPlaylistThumbnail{ID: v.PlaylistID, ImagePath: img})
}

func (b *browser) folder(arg string) error {
	root := ""
	if arg != "" {
		root = absPath(arg)
		if fi, err := os.Stat(root); err != nil || !fi.IsDir() {
			return fmt.Errorf("%w: not a folder: %s", util.ErrNotFound, root)
		}
	} else {
		picked, ok := b.a.host.PickFolder(b.frame().Root)
		if !ok {
			return nil
		}
		root = picked
	}

	fmt.Fprintf(b.out, "Scanning %s...\n", root)
	b.startScan(root)
	return nil
}
