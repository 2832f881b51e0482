package testsupport

import (
	"sync"

	"github.com/google/uuid"

	"tagger/internal/catalog"
)

// ID returns a deterministic valid catalog id derived from seed, so
// fixtures can reference the same entity without hardcoding UUIDs.
func ID(seed string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed)).String()
}

type fakeTask struct {
	mu        sync.Mutex
	cancelled bool
}

func (t *fakeTask) Cancel() {
	t.mu.Lock()
	t.cancelled = true
	t.mu.Unlock()
}

func (t *fakeTask) isCancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancelled
}

// FakeClient is a catalog.Client serving canned documents. Completions
// run synchronously inside the fetch call unless Hold is set, in which
// case they queue until Deliver.
type FakeClient struct {
	mu            sync.Mutex
	releases      map[string]*catalog.Release
	recordings    map[string]*catalog.Recording
	searchResults []*catalog.Release
	searchErr     error

	hold    bool
	pending []func()

	ReleaseFetches   int
	RecordingFetches int
	Searches         int
}

func NewFakeClient() *FakeClient {
	return &FakeClient{
		releases:   make(map[string]*catalog.Release),
		recordings: make(map[string]*catalog.Recording),
	}
}

// AddRelease registers rel under its own id.
func (f *FakeClient) AddRelease(rel *catalog.Release) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.releases[rel.ID] = rel
}

// AddRedirect serves rel when oldID is fetched; rel.ID stays the
// canonical id, mimicking a merged release.
func (f *FakeClient) AddRedirect(oldID string, rel *catalog.Release) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.releases[oldID] = rel
}

func (f *FakeClient) AddRecording(rec *catalog.Recording) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recordings[rec.ID] = rec
}

func (f *FakeClient) SetSearchResults(results []*catalog.Release, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchResults = results
	f.searchErr = err
}

// Hold queues completions instead of delivering them inline.
func (f *FakeClient) Hold() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hold = true
}

// Deliver runs every queued completion and stops holding.
func (f *FakeClient) Deliver() {
	f.mu.Lock()
	queued := f.pending
	f.pending = nil
	f.hold = false
	f.mu.Unlock()
	for _, fn := range queued {
		fn()
	}
}

func (f *FakeClient) dispatch(task *fakeTask, fn func()) {
	wrapped := func() {
		if !task.isCancelled() {
			fn()
		}
	}
	f.mu.Lock()
	if f.hold {
		f.pending = append(f.pending, wrapped)
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()
	wrapped()
}

func (f *FakeClient) FetchReleaseByID(id string, done catalog.ReleaseCallback, opts catalog.FetchOptions) catalog.Task {
	f.mu.Lock()
	f.ReleaseFetches++
	rel, ok := f.releases[id]
	f.mu.Unlock()

	task := &fakeTask{}
	f.dispatch(task, func() {
		if !ok {
			done(nil, catalog.ErrNotFound)
			return
		}
		done(rel, nil)
	})
	return task
}

func (f *FakeClient) FetchRecordingByID(id string, done catalog.RecordingCallback, opts catalog.FetchOptions) catalog.Task {
	f.mu.Lock()
	f.RecordingFetches++
	rec, ok := f.recordings[id]
	f.mu.Unlock()

	task := &fakeTask{}
	f.dispatch(task, func() {
		if !ok {
			done(nil, catalog.ErrNotFound)
			return
		}
		done(rec, nil)
	})
	return task
}

func (f *FakeClient) FindReleases(done catalog.SearchCallback, query catalog.Query) catalog.Task {
	f.mu.Lock()
	f.Searches++
	results := f.searchResults
	err := f.searchErr
	f.mu.Unlock()

	task := &fakeTask{}
	f.dispatch(task, func() {
		done(results, err)
	})
	return task
}

// Credit builds a single-artist credit list with ids derived from the
// artist name.
func Credit(name string) []catalog.ArtistCredit {
	return []catalog.ArtistCredit{{
		Artist: catalog.Artist{
			ID:       ID("artist:" + name),
			Name:     name,
			SortName: name,
		},
	}}
}

// SimpleRelease builds a one-medium release with the given track
// titles. Every id is deterministic, derived from the album title and
// track position.
func SimpleRelease(album, artist string, titles ...string) *catalog.Release {
	rel := &catalog.Release{
		ID:           ID("release:" + album),
		Title:        album,
		Status:       "Official",
		Date:         "2001-05-15",
		Country:      "GB",
		ArtistCredit: Credit(artist),
		ReleaseGroup: catalog.ReleaseGroupNode{
			ID:               ID("group:" + album),
			Title:            album,
			PrimaryType:      "Album",
			FirstReleaseDate: "2001-05-15",
			ArtistCredit:     Credit(artist),
		},
	}
	medium := catalog.Medium{
		Position:   1,
		Format:     "CD",
		TrackCount: len(titles),
	}
	for i, title := range titles {
		medium.Tracks = append(medium.Tracks, Node(album, title, i+1, artist))
	}
	rel.Media = []catalog.Medium{medium}
	return rel
}

// Node builds one track node with a deterministic recording id.
func Node(album, title string, position int, artist string) catalog.TrackNode {
	return catalog.TrackNode{
		ID:           ID("track:" + album + ":" + title),
		Position:     position,
		Title:        title,
		Length:       180000,
		ArtistCredit: Credit(artist),
		Recording: catalog.Recording{
			ID:           ID("recording:" + album + ":" + title),
			Title:        title,
			Length:       180000,
			ArtistCredit: Credit(artist),
		},
	}
}
