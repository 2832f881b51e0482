package release

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"tagger/internal/catalog"
	"tagger/internal/cluster"
	"tagger/internal/events"
	"tagger/internal/file"
	"tagger/internal/logging"
	"tagger/internal/metadata"
)

// Status is an album's load lifecycle state.
type Status string

const (
	StatusNone    Status = ""
	StatusLoading Status = "loading"
	StatusError   Status = "error"
)

type afterLoadCallback struct {
	fn func()
	// always-callbacks run even when the load failed.
	always bool
}

// Album is one release being tagged. Until Load completes the album has
// no tracks and every assigned file sits in the Unmatched pool.
//
// All methods must be called on the control goroutine.
type Album struct {
	env *Env

	// ID is the canonical release id. It can change once, when the
	// catalog reports the release was merged into another.
	ID string

	Metadata     *metadata.Container
	OrigMetadata *metadata.Container
	Tracks       []*Track
	ReleaseGroup *ReleaseGroup

	// Unmatched holds files assigned to the album but not yet placed on
	// a track.
	Unmatched *cluster.Cluster

	// Errors collects non-fatal problems from the last load: processor
	// failures, script failures, fetch errors.
	Errors []error

	status       Status
	loaded       bool
	tracksLoaded bool
	requests     int
	loadGen      int
	loadTask     catalog.Task
	fileCount    int
	afterLoad    []afterLoadCallback
	nat          bool

	// Staging area for an in-flight load. Swapped in atomically when the
	// request counter reaches zero.
	newMetadata *metadata.Container
	newTracks   []*Track
	releaseNode *catalog.Release
}

// NewAlbum creates an unloaded album for the given release id.
func NewAlbum(env *Env, id string) *Album {
	a := &Album{
		env:          env,
		ID:           id,
		Metadata:     metadata.New(),
		OrigMetadata: metadata.New(),
	}
	a.Unmatched = cluster.New("", "", true)
	a.Unmatched.RelatedAlbum = a
	return a
}

// Loaded reports whether the last load finished, successfully or not.
func (a *Album) Loaded() bool { return a.loaded }

// Status returns the album's load lifecycle state.
func (a *Album) Status() Status { return a.status }

// IsNAT reports whether this is the non-album-tracks pseudo-album.
func (a *Album) IsNAT() bool { return a.nat }

func (a *Album) Title() string  { return a.Metadata.Get("album") }
func (a *Album) Artist() string { return a.Metadata.Get("albumartist") }

func (a *Album) log() *slog.Logger {
	return logging.NewComponentLogger(a.env.Logger, "album")
}

// Load starts fetching the release document. A load already in flight
// makes this a no-op; the canonical way to restart is RemoveAlbum plus
// LoadAlbum, or a Refresh once the first load settles.
func (a *Album) Load(priority, refresh bool) {
	if a.nat {
		return
	}
	if a.requests > 0 {
		a.log().Debug("load already in progress", slog.String("album", a.ID))
		return
	}
	a.loaded = false
	a.tracksLoaded = false
	a.status = StatusLoading
	if a.ReleaseGroup != nil {
		a.ReleaseGroup.Loaded = false
	}
	a.Metadata.Clear()
	a.Errors = nil
	a.newMetadata = metadata.New()
	a.newTracks = nil
	a.releaseNode = nil
	a.notifyUpdate()

	a.requests = 1
	a.loadGen++
	gen := a.loadGen
	opts := catalog.FetchOptions{
		Include:     a.env.lookupIncludes(),
		RequireAuth: a.env.Config.Lookup.Authenticated,
		Priority:    priority,
		Refresh:     refresh,
	}
	a.loadTask = a.env.Client.FetchReleaseByID(a.ID, func(rel *catalog.Release, err error) {
		a.env.post(func() {
			a.releaseFetchDone(gen, rel, err)
		})
	}, opts)
}

// StopLoading cancels an in-flight fetch. A completion that was already
// posted is discarded by the generation check.
func (a *Album) StopLoading() {
	if a.loadTask != nil {
		a.loadTask.Cancel()
		a.loadTask = nil
	}
	a.loadGen++
	a.requests = 0
}

// AddRequest lets a metadata processor hold the load open while it
// fetches additional data. Every AddRequest needs a matching
// RemoveRequest.
func (a *Album) AddRequest() {
	a.requests++
}

// RemoveRequest releases one hold; the last release finalizes the load.
func (a *Album) RemoveRequest() {
	if a.requests > 0 {
		a.requests--
	}
	if a.requests == 0 {
		a.finalizeLoading(false)
	}
}

// RunWhenLoaded schedules fn for when the album finishes loading, or
// runs it immediately if it already has. With always set, fn also runs
// when the load ends in error.
func (a *Album) RunWhenLoaded(fn func(), always bool) {
	if a.loaded {
		fn()
		return
	}
	a.afterLoad = append(a.afterLoad, afterLoadCallback{fn: fn, always: always})
}

func (a *Album) releaseFetchDone(gen int, rel *catalog.Release, err error) {
	if gen != a.loadGen {
		return
	}
	a.loadTask = nil

	parsed := false
	errored := false
	switch {
	case err != nil:
		if errors.Is(err, catalog.ErrNotFound) && a.recoverNonAlbumTracks() {
			return
		}
		a.appendError(fmt.Errorf("load release %s: %w", a.ID, err))
		errored = true
	default:
		ok, perr := a.parseRelease(rel)
		if perr != nil {
			a.appendError(perr)
			errored = true
		} else if !ok {
			// Merged into an already-registered album; this one is gone.
			return
		} else {
			parsed = true
		}
	}

	if a.requests > 0 {
		a.requests--
	}
	if parsed || errored {
		a.finalizeLoading(errored)
	}
}

// recoverNonAlbumTracks handles a deleted release whose files were
// saved as non-album tracks: files carrying a valid recording id and
// the non-album placeholder title move to the NAT pseudo-album instead
// of failing the load. Reports whether the album fully dissolved.
func (a *Album) recoverNonAlbumTracks() bool {
	nonAlbum := a.env.Config.Naming.NonAlbum
	moved := false
	for _, f := range a.Unmatched.IterFiles() {
		rid := f.Metadata.Get("musicbrainz_recordingid")
		if f.Metadata.Get("album") == nonAlbum && catalog.IsValidID(rid) {
			a.env.Registry.MoveFileToNAT(f, rid)
			moved = true
		}
	}
	if moved && a.Unmatched.Len() == 0 && a.fileCount == 0 {
		a.log().Info("release gone from catalog, recovered files as non-album tracks",
			slog.String("album", a.ID))
		a.env.Registry.RemoveAlbum(a)
		return true
	}
	return false
}

// parseRelease digests the fetched document into the staging metadata.
// It returns ok=false when a merge redirect folded this album into an
// existing one.
func (a *Album) parseRelease(rel *catalog.Release) (bool, error) {
	if rel == nil {
		return false, errors.New("catalog returned an empty release document")
	}
	if rel.ID != a.ID {
		// The release was merged; rel.ID is the canonical id now.
		if existing := a.env.Registry.AlbumByID(rel.ID); existing != nil && existing != a {
			a.log().Info("release merged into an already loaded album",
				slog.String("album", a.ID), slog.String("into", rel.ID))
			existing.MatchFiles(a.Unmatched.IterFiles())
			a.env.Registry.RemoveAlbum(a)
			return false, nil
		}
		a.log().Info("release id redirected",
			slog.String("album", a.ID), slog.String("canonical", rel.ID))
		a.env.Registry.RekeyAlbum(a, rel.ID)
	}

	m := a.newMetadata
	m.Length = 0

	rg := a.env.Registry.ReleaseGroupByID(rel.ReleaseGroup.ID)
	if a.ReleaseGroup != rg {
		if a.ReleaseGroup != nil {
			a.ReleaseGroup.Release(a.ID)
		}
		a.ReleaseGroup = rg
		rg.Acquire(a.ID)
	}
	releaseGroupToMetadata(&rel.ReleaseGroup, rg.Metadata)
	m.Copy(rg.Metadata)
	releaseToMetadata(rel, m)

	if m.Get("musicbrainz_albumartistid") == VariousArtistsID {
		m.Set("albumartist", a.env.Config.Naming.VariousArtists)
		m.Set("albumartistsort", a.env.Config.Naming.VariousArtists)
	}
	if a.env.Config.Metadata.ConvertPunctuation {
		m.ApplyFunc(metadata.NormalizePunctuation)
	}

	for _, err := range a.env.Hooks.runAlbum(a, m, rel) {
		a.appendError(err)
	}

	a.releaseNode = rel
	return true, nil
}

func (a *Album) finalizeLoading(errored bool) {
	if errored {
		a.Metadata.Clear()
		a.status = StatusError
		a.newMetadata = nil
		a.newTracks = nil
		a.releaseNode = nil
		a.notifyUpdate()
		if a.requests == 0 {
			a.loaded = true
			for _, cb := range a.afterLoad {
				if cb.always {
					cb.fn()
				}
			}
		}
		return
	}

	if a.requests > 0 {
		return
	}
	if !a.tracksLoaded && a.releaseNode != nil {
		a.buildTracks()
		a.tracksLoaded = true
	}
	if a.requests > 0 || !a.tracksLoaded {
		return
	}

	for _, t := range a.newTracks {
		t.OrigMetadata.Copy(t.Metadata)
	}
	a.runScript()

	// Collect files linked to the previous generation of tracks before
	// the swap; they get re-matched against the new tracks below.
	var oldFiles []*file.Record
	for _, t := range a.Tracks {
		oldFiles = append(oldFiles, t.Files()...)
	}

	a.Metadata = a.newMetadata
	a.OrigMetadata.Copy(a.Metadata)
	a.OrigMetadata.Images = nil
	a.Tracks = a.newTracks
	a.newMetadata = nil
	a.newTracks = nil
	a.releaseNode = nil
	a.loaded = true
	a.status = StatusNone

	a.MatchFiles(append(oldFiles, a.Unmatched.IterFiles()...))

	a.env.Events.StatusMessage(
		fmt.Sprintf("Album %s loaded: %s - %s", a.ID, a.Artist(), a.Title()),
		3*time.Second,
	)
	callbacks := a.afterLoad
	a.afterLoad = nil
	for _, cb := range callbacks {
		cb.fn()
	}
	a.notifyUpdate()
}

func (a *Album) runScript() {
	script := a.env.Hooks.Script
	if script == nil {
		return
	}
	for _, t := range a.newTracks {
		if err := script(t.Metadata); err != nil {
			a.appendError(fmt.Errorf("tagging script on track %s: %w", t.ID, err))
		}
		t.Metadata.StripWhitespace()
	}
	if err := script(a.newMetadata); err != nil {
		a.appendError(fmt.Errorf("tagging script on album: %w", err))
	}
	a.newMetadata.StripWhitespace()
}

func (a *Album) buildTracks() {
	rel := a.releaseNode
	va := a.newMetadata.Get("musicbrainz_albumartistid") == VariousArtistsID
	artists := make(map[string]struct{})
	var allMedia []string
	absolute := 0

	a.newMetadata.SetInt("totaldiscs", len(rel.Media))
	for i := range rel.Media {
		medium := &rel.Media[i]
		mm := a.newMetadata.Clone()
		mediumToMetadata(medium, mm)
		if format := mm.Get("media"); format != "" && !contains(allMedia, format) {
			allMedia = append(allMedia, format)
		}
		if va {
			mm.Set("compilation", "1")
		} else {
			mm.Delete("compilation")
		}
		if medium.Pregap != nil {
			mm.Set("~discpregap", "1")
			absolute++
			t := a.buildTrack(medium.Pregap, mm, artists)
			t.Metadata.Set("~pregap", "1")
			t.Metadata.SetInt("~absolutetracknumber", absolute)
			t.Number = absolute
		}
		for j := range medium.Tracks {
			absolute++
			t := a.buildTrack(&medium.Tracks[j], mm, artists)
			t.Metadata.SetInt("~absolutetracknumber", absolute)
			t.Number = absolute
		}
		for j := range medium.DataTracks {
			t := a.buildTrack(&medium.DataTracks[j], mm, artists)
			t.Metadata.Set("~datatrack", "1")
		}
	}

	if len(allMedia) > 0 {
		a.newMetadata.Set("media", strings.Join(allMedia, " / "))
	}
	total := len(a.newTracks)
	a.newMetadata.SetInt("~totalalbumtracks", total)
	multi := len(artists) > 1
	for _, t := range a.newTracks {
		t.Metadata.SetInt("~totalalbumtracks", total)
		if multi {
			t.Metadata.Set("~multiartist", "1")
		}
	}
}

func (a *Album) buildTrack(node *catalog.TrackNode, mm *metadata.Container, artists map[string]struct{}) *Track {
	t := NewTrack(node.Recording.ID, a)
	a.newTracks = append(a.newTracks, t)
	t.Metadata.Copy(mm)
	trackToMetadata(node, t.Metadata)
	t.customize()
	a.newMetadata.Length += t.Metadata.Length
	if artist := t.Metadata.Get("artist"); artist != "" {
		artists[artist] = struct{}{}
	}
	for _, err := range a.env.Hooks.runTrack(a, t.Metadata, node, a.releaseNode) {
		a.appendError(err)
	}
	return t
}

func (a *Album) appendError(err error) {
	a.Errors = append(a.Errors, err)
	a.log().Warn("album load problem",
		slog.String("album", a.ID), logging.Error(err))
}

// FilesChanged implements cluster.AlbumLink for the unmatched pool.
func (a *Album) FilesChanged() {
	a.notifyUpdate()
}

func (a *Album) fileAdded(*file.Record) {
	a.fileCount++
	a.notifyUpdate()
}

func (a *Album) fileRemoved(*file.Record) {
	if a.fileCount > 0 {
		a.fileCount--
	}
	a.notifyUpdate()
}

// LinkedFileCount counts files placed on tracks, excluding the
// unmatched pool.
func (a *Album) LinkedFileCount() int { return a.fileCount }

// AllFiles returns every file assigned to the album, matched first.
func (a *Album) AllFiles() []*file.Record {
	var out []*file.Record
	for _, t := range a.Tracks {
		out = append(out, t.Files()...)
	}
	return append(out, a.Unmatched.IterFiles()...)
}

// IsComplete reports whether every non-ignored track holds exactly one
// file and nothing is left unmatched.
func (a *Album) IsComplete() bool {
	if !a.loaded || len(a.Tracks) == 0 {
		return false
	}
	for _, t := range a.Tracks {
		if !t.IsComplete() {
			return false
		}
	}
	return a.Unmatched.Len() == 0
}

func (a *Album) notifyUpdate() {
	a.env.Events.ItemUpdated(events.KindAlbum, a.ID)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Capability surface used by UI-facing dispatch.

func (a *Album) CanSave() bool     { return a.fileCount > 0 }
func (a *Album) CanRemove() bool   { return true }
func (a *Album) CanEditTags() bool { return a.loaded }
func (a *Album) CanAutotag() bool  { return false }
func (a *Album) CanAnalyze() bool  { return false }
func (a *Album) CanRefresh() bool  { return a.loaded && !a.nat }
func (a *Album) IsAlbumLike() bool { return true }
