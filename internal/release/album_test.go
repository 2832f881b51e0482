package release_test

import (
	"strconv"
	"testing"

	"tagger/internal/catalog"
	"tagger/internal/release"
	"tagger/internal/tagger"
	"tagger/internal/testsupport"
)

func loadAlbum(t *testing.T, ctrl *tagger.Controller, id string) *release.Album {
	t.Helper()
	var a *release.Album
	testsupport.Run(t, ctrl, func() {
		a = ctrl.LoadAlbum(id)
	})
	testsupport.Settle(t, ctrl)
	if a == nil {
		t.Fatalf("LoadAlbum(%s) returned nil", id)
	}
	return a
}

func TestLoadAlbumBuildsTracks(t *testing.T) {
	client := testsupport.NewFakeClient()
	rel := testsupport.SimpleRelease("Dummy", "Portishead", "Mysterons", "Sour Times", "Strangers")
	client.AddRelease(rel)
	ctrl := testsupport.NewController(t, nil, client, testsupport.NewFakeCodec())

	a := loadAlbum(t, ctrl, rel.ID)

	testsupport.Run(t, ctrl, func() {
		if !a.Loaded() || a.Status() == release.StatusError {
			t.Fatalf("loaded = %v, status = %s, errors = %v", a.Loaded(), a.Status(), a.Errors)
		}
		if got := a.Title(); got != "Dummy" {
			t.Errorf("title = %q", got)
		}
		if got := a.Artist(); got != "Portishead" {
			t.Errorf("artist = %q", got)
		}
		if got := a.Metadata.Get("musicbrainz_albumid"); got != rel.ID {
			t.Errorf("album id = %q", got)
		}
		if len(a.Tracks) != 3 {
			t.Fatalf("tracks = %d", len(a.Tracks))
		}
		for i, tr := range a.Tracks {
			if got := tr.Metadata.Get("tracknumber"); got != strconv.Itoa(i+1) {
				t.Errorf("track %d number = %q", i, got)
			}
			if got := tr.Metadata.Get("~absolutetracknumber"); got != strconv.Itoa(i+1) {
				t.Errorf("track %d absolute = %q", i, got)
			}
			if got := tr.Metadata.Get("~totalalbumtracks"); got != "3" {
				t.Errorf("track %d total = %q", i, got)
			}
			if tr.Metadata.Get("~multiartist") != "" {
				t.Errorf("track %d marked multi-artist on a single-artist album", i)
			}
		}
		if got := a.Tracks[1].Metadata.Get("title"); got != "Sour Times" {
			t.Errorf("track title = %q", got)
		}
	})
}

func TestLoadAlbumPregapAndDataTracks(t *testing.T) {
	client := testsupport.NewFakeClient()
	rel := testsupport.SimpleRelease("Layered", "Band", "One", "Two")
	pregap := testsupport.Node("Layered", "Hidden Intro", 0, "Band")
	rel.Media[0].Pregap = &pregap
	second := catalog.Medium{Position: 2, Format: "CD", TrackCount: 2}
	second.Tracks = []catalog.TrackNode{
		testsupport.Node("Layered", "Three", 1, "Band"),
		testsupport.Node("Layered", "Four", 2, "Band"),
	}
	second.DataTracks = []catalog.TrackNode{
		testsupport.Node("Layered", "[data track]", 3, "Band"),
	}
	rel.Media = append(rel.Media, second)
	client.AddRelease(rel)
	ctrl := testsupport.NewController(t, nil, client, testsupport.NewFakeCodec())

	a := loadAlbum(t, ctrl, rel.ID)

	testsupport.Run(t, ctrl, func() {
		if len(a.Tracks) != 6 {
			t.Fatalf("tracks = %d", len(a.Tracks))
		}
		pre := a.Tracks[0]
		if !pre.IsPregap() {
			t.Error("first track should be the pregap")
		}
		if got := pre.Metadata.Get("~absolutetracknumber"); got != "1" {
			t.Errorf("pregap absolute = %q", got)
		}
		if pre.Metadata.Get("~discpregap") == "" {
			t.Error("pregap medium must be marked")
		}
		// Absolute numbering continues across media: pregap, One, Two,
		// Three, Four.
		if got := a.Tracks[3].Metadata.Get("~absolutetracknumber"); got != "4" {
			t.Errorf("second-medium absolute = %q", got)
		}
		data := a.Tracks[5]
		if !data.IsData() {
			t.Error("last track should be the data track")
		}
		if data.Metadata.Get("~absolutetracknumber") != "" {
			t.Error("data tracks must not consume an absolute number")
		}
		if got := a.Metadata.Get("totaldiscs"); got != "2" {
			t.Errorf("totaldiscs = %q", got)
		}
		if got := a.Metadata.Get("media"); got != "CD" {
			t.Errorf("media = %q", got)
		}
	})
}

func TestLoadVariousArtistsAlbum(t *testing.T) {
	client := testsupport.NewFakeClient()
	rel := testsupport.SimpleRelease("Now That's Music", "Ignored", "A", "B")
	va := []catalog.ArtistCredit{{
		Artist: catalog.Artist{ID: release.VariousArtistsID, Name: "Various Artists", SortName: "Various Artists"},
	}}
	rel.ArtistCredit = va
	rel.ReleaseGroup.ArtistCredit = va
	rel.Media[0].Tracks[0].ArtistCredit = testsupport.Credit("First Act")
	rel.Media[0].Tracks[0].Recording.ArtistCredit = nil
	rel.Media[0].Tracks[1].ArtistCredit = testsupport.Credit("Second Act")
	rel.Media[0].Tracks[1].Recording.ArtistCredit = nil
	client.AddRelease(rel)
	ctrl := testsupport.NewController(t, nil, client, testsupport.NewFakeCodec())

	a := loadAlbum(t, ctrl, rel.ID)

	testsupport.Run(t, ctrl, func() {
		if got := a.Artist(); got != "Various Artists" {
			t.Errorf("album artist = %q", got)
		}
		for i, tr := range a.Tracks {
			if got := tr.Metadata.Get("compilation"); got != "1" {
				t.Errorf("track %d compilation = %q", i, got)
			}
			if tr.Metadata.Get("~multiartist") == "" {
				t.Errorf("track %d missing multi-artist mark", i)
			}
		}
		if got := a.Tracks[1].Metadata.Get("artist"); got != "Second Act" {
			t.Errorf("track artist = %q", got)
		}
	})
}

func TestLoadWhileInFlightIsNoop(t *testing.T) {
	client := testsupport.NewFakeClient()
	rel := testsupport.SimpleRelease("Dummy", "Portishead", "Mysterons")
	client.AddRelease(rel)
	client.Hold()
	ctrl := testsupport.NewController(t, nil, client, testsupport.NewFakeCodec())

	var a *release.Album
	testsupport.Run(t, ctrl, func() {
		a = ctrl.LoadAlbum(rel.ID)
		a.Load(false, false)
		a.Load(true, true)
	})
	client.Deliver()
	testsupport.Settle(t, ctrl)

	if client.ReleaseFetches != 1 {
		t.Fatalf("fetches = %d, want 1", client.ReleaseFetches)
	}
	testsupport.Run(t, ctrl, func() {
		if !a.Loaded() {
			t.Fatal("album should have loaded")
		}
	})
}

func TestRedirectRekeysAlbum(t *testing.T) {
	client := testsupport.NewFakeClient()
	rel := testsupport.SimpleRelease("Dummy", "Portishead", "Mysterons")
	oldID := testsupport.ID("release:old-dummy")
	client.AddRedirect(oldID, rel)
	ctrl := testsupport.NewController(t, nil, client, testsupport.NewFakeCodec())

	a := loadAlbum(t, ctrl, oldID)

	testsupport.Run(t, ctrl, func() {
		if a.ID != rel.ID {
			t.Errorf("album id = %s, want canonical %s", a.ID, rel.ID)
		}
		if got := ctrl.AlbumByID(rel.ID); got != a {
			t.Error("canonical id must resolve to the album")
		}
		if got := ctrl.AlbumByID(oldID); got != a {
			t.Error("old id must keep resolving through the redirect")
		}
	})
}

func TestMergedReleaseFoldsIntoExistingAlbum(t *testing.T) {
	client := testsupport.NewFakeClient()
	rel := testsupport.SimpleRelease("Dummy", "Portishead", "Mysterons", "Sour Times")
	oldID := testsupport.ID("release:merged-dummy")
	client.AddRelease(rel)
	client.AddRedirect(oldID, rel)
	codec := testsupport.NewFakeCodec()
	codec.SetTags("/m/01.flac", testsupport.Tagged("Sour Times", "Portishead", "Dummy", 2, 1))
	ctrl := testsupport.NewController(t, nil, client, codec)

	canonical := loadAlbum(t, ctrl, rel.ID)
	records := testsupport.AddReadyFiles(t, ctrl, "/m/01.flac")

	// Park the file on the stale id; its load discovers the merge.
	client.Hold()
	var stale *release.Album
	testsupport.Run(t, ctrl, func() {
		stale = ctrl.LoadAlbum(oldID)
		ctrl.MoveFilesToAlbum(records, stale)
	})
	client.Deliver()
	testsupport.Settle(t, ctrl)

	testsupport.Run(t, ctrl, func() {
		if ctrl.AlbumByID(oldID) == stale {
			t.Error("stale album should be deregistered")
		}
		if parent, ok := records[0].Parent().(*release.Track); !ok || parent.Album != canonical {
			t.Errorf("file parent = %T, want track on the canonical album", records[0].Parent())
		}
	})
}

func TestLoadFailureSetsErrorState(t *testing.T) {
	client := testsupport.NewFakeClient()
	ctrl := testsupport.NewController(t, nil, client, testsupport.NewFakeCodec())

	a := loadAlbum(t, ctrl, testsupport.ID("release:not-there"))

	testsupport.Run(t, ctrl, func() {
		if a.Status() != release.StatusError {
			t.Fatalf("status = %s", a.Status())
		}
		if !a.Loaded() {
			t.Error("an errored album still counts as done loading")
		}
		if len(a.Errors) == 0 {
			t.Error("errors should be recorded")
		}
		if a.Metadata.Len() != 0 {
			t.Error("metadata should be cleared on error")
		}
	})
}

func TestRunWhenLoadedAlwaysFiresOnError(t *testing.T) {
	client := testsupport.NewFakeClient()
	client.Hold()
	ctrl := testsupport.NewController(t, nil, client, testsupport.NewFakeCodec())

	fired := false
	skipped := false
	testsupport.Run(t, ctrl, func() {
		a := ctrl.LoadAlbum(testsupport.ID("release:not-there"))
		a.RunWhenLoaded(func() { fired = true }, true)
		a.RunWhenLoaded(func() { skipped = true }, false)
	})
	client.Deliver()
	testsupport.Settle(t, ctrl)

	if !fired {
		t.Error("always-callback must fire on a failed load")
	}
	if skipped {
		t.Error("plain callback must not fire on a failed load")
	}
}

func TestDeletedReleaseRecoversNonAlbumTracks(t *testing.T) {
	client := testsupport.NewFakeClient()
	recID := testsupport.ID("recording:nat:Wild Thing")
	client.AddRecording(&catalog.Recording{
		ID:           recID,
		Title:        "Wild Thing",
		Length:       156000,
		ArtistCredit: testsupport.Credit("The Troggs"),
	})
	codec := testsupport.NewFakeCodec()
	tags := testsupport.Tagged("Wild Thing", "The Troggs", "[non-album tracks]", 0, 0)
	tags.Set("musicbrainz_recordingid", recID)
	codec.SetTags("/m/wild.flac", tags)
	ctrl := testsupport.NewController(t, nil, client, codec)

	records := testsupport.AddReadyFiles(t, ctrl, "/m/wild.flac")
	goneID := testsupport.ID("release:deleted")

	client.Hold()
	testsupport.Run(t, ctrl, func() {
		a := ctrl.LoadAlbum(goneID)
		ctrl.MoveFilesToAlbum(records, a)
	})
	client.Deliver()
	testsupport.Settle(t, ctrl)

	testsupport.Run(t, ctrl, func() {
		if ctrl.AlbumByID(goneID) != nil {
			t.Error("dissolved album should be deregistered")
		}
		tr, ok := records[0].Parent().(*release.Track)
		if !ok {
			t.Fatalf("file parent = %T, want a non-album track", records[0].Parent())
		}
		if tr.ID != recID {
			t.Errorf("track recording = %s, want %s", tr.ID, recID)
		}
		if !tr.Album.IsNAT() {
			t.Error("recovered track should live on the non-album pseudo-album")
		}
	})
}
