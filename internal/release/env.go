package release

import (
	"log/slog"

	"tagger/internal/catalog"
	"tagger/internal/config"
	"tagger/internal/events"
	"tagger/internal/file"
	"tagger/internal/metadata"
)

// Registry is the view albums have of their owning workspace. It is
// implemented by the tagger controller; albums call it only from the
// control goroutine.
type Registry interface {
	// AlbumByID returns the registered album for a canonical id, or nil.
	AlbumByID(id string) *Album

	// RekeyAlbum re-registers album under newID after a merge redirect
	// and records the old id as an alias.
	RekeyAlbum(album *Album, newID string)

	// RemoveAlbum drops the album from the registry, returning its files
	// to the unclustered pool.
	RemoveAlbum(album *Album)

	// ReleaseGroupByID returns the shared release group, creating it on
	// first use.
	ReleaseGroupByID(id string) *ReleaseGroup

	// MoveFileToNAT places the file on the non-album pseudo-album's
	// track for the given recording.
	MoveFileToNAT(r *file.Record, recordingID string)
}

// Env bundles the collaborators every album and track needs. One Env is
// shared across the workspace.
type Env struct {
	Config   *config.Config
	Client   catalog.Client
	Events   events.Sink
	Logger   *slog.Logger
	Hooks    *Hooks
	Registry Registry

	// Scorer computes string similarity for metadata comparison.
	Scorer metadata.Scorer

	// Post schedules fn on the control goroutine. Catalog callbacks use
	// it to re-enter the engine safely.
	Post func(fn func()) error
}

// CompareWeights translates the configured field weights into the form
// metadata.Compare consumes.
func (e *Env) CompareWeights() []metadata.FieldWeight {
	w := e.Config.Weights
	return []metadata.FieldWeight{
		{Field: "title", Weight: float64(w.Title)},
		{Field: "artist", Weight: float64(w.Artist)},
		{Field: "album", Weight: float64(w.Album)},
		{Field: "tracknumber", Weight: float64(w.TrackNumber)},
		{Field: "totaltracks", Weight: float64(w.TotalTracks)},
		{Field: "discnumber", Weight: float64(w.DiscNumber)},
		{Field: "totaldiscs", Weight: float64(w.TotalDiscs)},
	}
}

// lookupIncludes builds the sub-resource list for a release fetch from
// the lookup configuration.
func (e *Env) lookupIncludes() []catalog.Include {
	inc := []catalog.Include{
		catalog.IncMedia,
		catalog.IncRecordings,
		catalog.IncArtistCredits,
		catalog.IncReleaseGroups,
	}
	if e.Config.Lookup.Relationships {
		inc = append(inc, catalog.IncRelationships)
	}
	if e.Config.Lookup.Collections {
		inc = append(inc, catalog.IncCollections)
	}
	if e.Config.Lookup.Tags {
		inc = append(inc, catalog.IncTags, catalog.IncRatings)
	}
	return inc
}

func (e *Env) post(fn func()) {
	if e.Post == nil {
		fn()
		return
	}
	// Dropped tasks after shutdown are fine; the graph is gone anyway.
	_ = e.Post(fn)
}
