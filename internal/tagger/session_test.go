package tagger_test

import (
	"testing"

	"tagger/internal/catalog"
	"tagger/internal/file"
	"tagger/internal/release"
	"tagger/internal/session"
	"tagger/internal/similarity"
	"tagger/internal/testsupport"
)

func sessionFixture(t *testing.T) (*testsupport.FakeClient, *testsupport.FakeCodec, *catalog.Release, string) {
	t.Helper()
	client := testsupport.NewFakeClient()
	rel := testsupport.SimpleRelease("Mezzanine", "Massive Attack", "Angel", "Risingson")
	client.AddRelease(rel)
	natRec := testsupport.ID("recording:single:Lonely Soul")
	client.AddRecording(&catalog.Recording{
		ID:           natRec,
		Title:        "Lonely Soul",
		Length:       553000,
		ArtistCredit: testsupport.Credit("UNKLE"),
	})

	codec := testsupport.NewFakeCodec()
	codec.SetTags("/m/mezz/01.flac", testsupport.Tagged("Angel", "Massive Attack", "Mezzanine", 1, 1))
	codec.SetTags("/m/dummy/01.flac", testsupport.Tagged("Mysterons", "Portishead", "Dummy", 1, 1))
	codec.SetTags("/m/dummy/02.flac", testsupport.Tagged("Sour Times", "Portishead", "Dummy", 2, 1))
	codec.SetTags("/m/lonely.flac", testsupport.Tagged("Lonely Soul", "UNKLE", "Psyence Fiction", 2, 1))
	codec.SetTags("/m/stray.flac", testsupport.Tagged("Stray", "Nobody", "", 0, 0))
	return client, codec, rel, natRec
}

func TestSnapshotRestoreRoundtrip(t *testing.T) {
	client, codec, rel, natRec := sessionFixture(t)
	ctrl := testsupport.NewController(t, nil, client, codec)

	records := testsupport.AddReadyFiles(t, ctrl,
		"/m/mezz/01.flac", "/m/dummy/01.flac", "/m/dummy/02.flac", "/m/lonely.flac", "/m/stray.flac")
	var a *release.Album
	testsupport.Run(t, ctrl, func() {
		a = ctrl.LoadAlbum(rel.ID)
	})
	testsupport.Settle(t, ctrl)
	testsupport.Run(t, ctrl, func() {
		ctrl.MoveFilesToAlbum(records[:1], a)
		ctrl.ClusterFiles()
		ctrl.MoveFileToNonAlbum(records[3], natRec)
		// An unsaved edit rides along in the snapshot.
		records[0].Metadata.Set("genre", "Trip-Hop")
		records[0].Update(similarity.Score, nil)
	})
	testsupport.Settle(t, ctrl)

	var snap *session.Snapshot
	testsupport.Run(t, ctrl, func() {
		snap = ctrl.Snapshot()
	})

	if len(snap.Albums) != 1 || snap.Albums[0] != rel.ID {
		t.Fatalf("albums = %v", snap.Albums)
	}
	kinds := make(map[string]session.PlacementKind, len(snap.Files))
	for _, fp := range snap.Files {
		kinds[fp.Path] = fp.Kind
	}
	want := map[string]session.PlacementKind{
		"/m/mezz/01.flac":  session.PlacementTrack,
		"/m/dummy/01.flac": session.PlacementCluster,
		"/m/dummy/02.flac": session.PlacementCluster,
		"/m/lonely.flac":   session.PlacementNonAlbum,
		"/m/stray.flac":    session.PlacementUnclustered,
	}
	for path, kind := range want {
		if kinds[path] != kind {
			t.Errorf("%s placed as %q, want %q", path, kinds[path], kind)
		}
	}

	// Rebuild a fresh workspace from the snapshot.
	restored := testsupport.NewController(t, nil, client, codec)
	testsupport.Run(t, restored, func() {
		restored.Restore(snap)
	})
	testsupport.Settle(t, restored)
	testsupport.Settle(t, restored)

	testsupport.Run(t, restored, func() {
		a := restored.AlbumByID(rel.ID)
		if a == nil || !a.Loaded() {
			t.Fatal("album should be loaded again")
		}
		r := restored.FileByPath("/m/mezz/01.flac")
		if tr, ok := r.Parent().(*release.Track); !ok || tr.Album != a {
			t.Errorf("album file parent = %T", r.Parent())
		}
		if got := r.Metadata.Get("genre"); got != "Trip-Hop" {
			t.Errorf("restored edit = %q", got)
		}
		if r.State() != file.StateChanged {
			t.Errorf("restored state = %s, want the edit still unsaved", r.State())
		}

		clusters := restored.Clusters()
		if len(clusters) != 1 || clusters[0].Name() != "Dummy" {
			t.Fatalf("clusters = %v", clusters)
		}
		if clusters[0].Len() != 2 {
			t.Errorf("cluster files = %d", clusters[0].Len())
		}

		nat := restored.FileByPath("/m/lonely.flac")
		if tr, ok := nat.Parent().(*release.Track); !ok || !tr.Album.IsNAT() || tr.ID != natRec {
			t.Errorf("non-album file parent = %T", nat.Parent())
		}

		stray := restored.FileByPath("/m/stray.flac")
		if stray.Parent() != restored.Unclustered() {
			t.Errorf("stray parent = %T", stray.Parent())
		}
	})
}

func TestSnapshotSkipsNATAlbumFromAlbumList(t *testing.T) {
	client, codec, _, natRec := sessionFixture(t)
	ctrl := testsupport.NewController(t, nil, client, codec)

	records := testsupport.AddReadyFiles(t, ctrl, "/m/lonely.flac")
	testsupport.Run(t, ctrl, func() {
		ctrl.MoveFileToNonAlbum(records[0], natRec)
	})
	testsupport.Settle(t, ctrl)

	testsupport.Run(t, ctrl, func() {
		snap := ctrl.Snapshot()
		if len(snap.Albums) != 0 {
			t.Errorf("albums = %v, the non-album pseudo-album is placement data", snap.Albums)
		}
		if len(snap.Files) != 1 || snap.Files[0].Kind != session.PlacementNonAlbum {
			t.Errorf("files = %v", snap.Files)
		}
	})
}
