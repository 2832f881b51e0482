package release

import (
	"testing"

	"tagger/internal/catalog"
	"tagger/internal/metadata"
)

func TestReleaseToMetadata(t *testing.T) {
	rel := &catalog.Release{
		ID:      "rel-1",
		Title:   "Blue Lines",
		Status:  "Official",
		Date:    "1991-04-08",
		Country: "GB",
		Barcode: "5012394144470",
		ArtistCredit: []catalog.ArtistCredit{{
			Artist: catalog.Artist{ID: "art-1", Name: "Massive Attack", SortName: "Massive Attack"},
		}},
		Labels: []catalog.LabelInfo{
			{Name: "Wild Bunch", CatalogNumber: "WBRCD1"},
			{Name: "Wild Bunch", CatalogNumber: "WBRLP1"},
		},
	}
	m := metadata.New()
	releaseToMetadata(rel, m)

	for tag, want := range map[string]string{
		"musicbrainz_albumid":       "rel-1",
		"album":                     "Blue Lines",
		"releasestatus":             "official",
		"date":                      "1991-04-08",
		"releasecountry":            "GB",
		"barcode":                   "5012394144470",
		"albumartist":               "Massive Attack",
		"musicbrainz_albumartistid": "art-1",
		"label":                     "Wild Bunch",
	} {
		if got := m.Get(tag); got != want {
			t.Errorf("%s = %q, want %q", tag, got, want)
		}
	}
	if got := m.GetAll("catalognumber"); len(got) != 2 {
		t.Errorf("catalognumber = %v", got)
	}
}

func TestReleaseGroupToMetadata(t *testing.T) {
	node := &catalog.ReleaseGroupNode{
		ID:               "grp-1",
		Title:            "Blue Lines",
		PrimaryType:      "Album",
		SecondaryTypes:   []string{"Compilation"},
		FirstReleaseDate: "1991-04-08",
	}
	m := metadata.New()
	releaseGroupToMetadata(node, m)

	if got := m.Get("originalyear"); got != "1991" {
		t.Errorf("originalyear = %q", got)
	}
	if got := m.Get("originaldate"); got != "1991-04-08" {
		t.Errorf("originaldate = %q", got)
	}
	if got := m.GetAll("releasetype"); len(got) != 2 || got[0] != "album" || got[1] != "compilation" {
		t.Errorf("releasetype = %v", got)
	}
	if got := m.Get("~primaryreleasetype"); got != "album" {
		t.Errorf("~primaryreleasetype = %q", got)
	}
	if got := m.Get("~secondaryreleasetype"); got != "compilation" {
		t.Errorf("~secondaryreleasetype = %q", got)
	}
}

func TestTrackToMetadataLengthFallback(t *testing.T) {
	node := &catalog.TrackNode{
		ID:       "trk-1",
		Position: 3,
		Number:   "B1",
		Recording: catalog.Recording{
			ID:     "rec-1",
			Title:  "Five Man Army",
			Length: 184000,
			ArtistCredit: []catalog.ArtistCredit{{
				Artist: catalog.Artist{ID: "art-1", Name: "Massive Attack"},
			}},
		},
	}
	m := metadata.New()
	trackToMetadata(node, m)

	if got := m.Get("title"); got != "Five Man Army" {
		t.Errorf("title fell back wrong: %q", got)
	}
	if m.Length != 184000 {
		t.Errorf("length = %d, want recording fallback", m.Length)
	}
	if got := m.Get("tracknumber"); got != "3" {
		t.Errorf("tracknumber = %q", got)
	}
	if got := m.Get("~musicbrainz_tracknumber"); got != "B1" {
		t.Errorf("vinyl number = %q", got)
	}
	if got := m.Get("artist"); got != "Massive Attack" {
		t.Errorf("artist = %q, want recording credit fallback", got)
	}
}

func TestTrackToMetadataVideo(t *testing.T) {
	node := &catalog.TrackNode{
		ID:        "trk-1",
		Recording: catalog.Recording{ID: "rec-1", Title: "Clip", Video: true},
	}
	m := metadata.New()
	trackToMetadata(node, m)
	if m.Get("~video") == "" {
		t.Error("video recordings must be marked")
	}
}

func TestCreditJoinPhrase(t *testing.T) {
	credits := []catalog.ArtistCredit{
		{Artist: catalog.Artist{ID: "a1", Name: "David Bowie", SortName: "Bowie, David"}, JoinPhrase: " & "},
		{Artist: catalog.Artist{ID: "a2", Name: "Queen", SortName: "Queen"}},
	}
	m := metadata.New()
	creditToMetadata(credits, m, "")
	if got := m.Get("artist"); got != "David Bowie & Queen" {
		t.Errorf("artist = %q", got)
	}
	if got := m.Get("artistsort"); got != "Bowie, David & Queen" {
		t.Errorf("artistsort = %q", got)
	}
	if got := m.GetAll("musicbrainz_artistid"); len(got) != 2 {
		t.Errorf("artist ids = %v", got)
	}
}
