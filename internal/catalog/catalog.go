// Package catalog defines the collaborator interface to the remote music
// metadata catalog and the document shapes its responses are parsed into.
//
// The engine never performs network I/O itself: it issues fetches through
// the Client interface and receives completions as callbacks posted onto
// its control loop. Implementations own transport, caching, and rate
// limiting. The document types mirror the release → medium → track →
// recording hierarchy of the remote service.
package catalog

import (
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound reports that the requested entity does not exist in the
// catalog. The release loader uses it to trigger non-album-track
// recovery instead of a hard failure.
var ErrNotFound = errors.New("catalog: not found")

// IsValidID reports whether s looks like a catalog identifier. Catalog
// ids are UUIDs.
func IsValidID(s string) bool {
	if s == "" {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// Include names an optional sub-resource requested with a release fetch.
type Include string

const (
	IncMedia         Include = "media"
	IncRecordings    Include = "recordings"
	IncArtistCredits Include = "artist-credits"
	IncReleaseGroups Include = "release-groups"
	IncRelationships Include = "relationships"
	IncCollections   Include = "collections"
	IncTags          Include = "tags"
	IncRatings       Include = "ratings"
)

// Task is the handle for one in-flight fetch. Cancel is idempotent; a
// cancelled task's callback must not be delivered.
type Task interface {
	Cancel()
}

// FetchOptions tune one fetch request.
type FetchOptions struct {
	Include     []Include
	RequireAuth bool
	Priority    bool
	Refresh     bool
}

// Query describes a release search.
type Query struct {
	Artist  string
	Release string
	Tracks  int
	Limit   int
}

// ReleaseCallback receives the fetched release or an error. Exactly one
// of the two is non-zero unless the task was cancelled, in which case the
// callback never runs.
type ReleaseCallback func(release *Release, err error)

// RecordingCallback receives a fetched standalone recording.
type RecordingCallback func(recording *Recording, err error)

// SearchCallback receives release search results.
type SearchCallback func(results []*Release, err error)

// Client is the narrow surface the engine needs from the catalog.
type Client interface {
	FetchReleaseByID(id string, done ReleaseCallback, opts FetchOptions) Task
	FetchRecordingByID(id string, done RecordingCallback, opts FetchOptions) Task
	FindReleases(done SearchCallback, query Query) Task
}

// Artist is one credited artist.
type Artist struct {
	ID       string
	Name     string
	SortName string
}

// ArtistCredit is one entry of a credited artist list, including the
// join phrase leading to the next entry.
type ArtistCredit struct {
	Name       string
	JoinPhrase string
	Artist     Artist
}

// CreditedName flattens an artist credit list into display and sort
// names.
func CreditedName(credits []ArtistCredit) (name, sortName string) {
	for _, credit := range credits {
		n := credit.Name
		if n == "" {
			n = credit.Artist.Name
		}
		name += n + credit.JoinPhrase
		sortName += credit.Artist.SortName + credit.JoinPhrase
	}
	return name, sortName
}

// CreditedIDs returns the artist ids of a credit list in order.
func CreditedIDs(credits []ArtistCredit) []string {
	ids := make([]string, 0, len(credits))
	for _, credit := range credits {
		ids = append(ids, credit.Artist.ID)
	}
	return ids
}

// ReleaseGroupNode is release-group data embedded in a release document.
type ReleaseGroupNode struct {
	ID               string
	Title            string
	PrimaryType      string
	SecondaryTypes   []string
	FirstReleaseDate string
	ArtistCredit     []ArtistCredit
}

// Recording is the stable audio entity a track points at.
type Recording struct {
	ID             string
	Title          string
	Length         int64
	Video          bool
	Disambiguation string
	ArtistCredit   []ArtistCredit
}

// TrackNode is one position on a medium.
type TrackNode struct {
	ID           string
	Position     int
	Number       string
	Title        string
	Length       int64
	ArtistCredit []ArtistCredit
	Recording    Recording
}

// Medium is one disc of a release.
type Medium struct {
	Position   int
	Format     string
	Title      string
	TrackCount int
	Pregap     *TrackNode
	Tracks     []TrackNode
	DataTracks []TrackNode
	DiscIDs    []string
}

// Release is a full release document.
type Release struct {
	ID             string
	Title          string
	Disambiguation string
	Status         string
	Date           string
	Country        string
	Barcode        string
	Asin           string
	ArtistCredit   []ArtistCredit
	ReleaseGroup   ReleaseGroupNode
	Media          []Medium
	Labels         []LabelInfo
	// TrackCount is the total across all media, as reported by search
	// results that omit the media themselves.
	TrackCount int
}

// LabelInfo is one label/catalog-number pair.
type LabelInfo struct {
	Name          string
	CatalogNumber string
}
