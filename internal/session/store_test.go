package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openStore(t *testing.T, path string) *Store {
	t.Helper()
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	store := openStore(t, path)

	snap := &Snapshot{
		Albums: []string{"album-a", "album-b"},
		Files: []FilePlacement{
			{Path: "/m/a.flac", Kind: PlacementTrack, AlbumID: "album-a", RecordingID: "rec-1",
				Overrides: map[string][]string{"title": {"Corrected Title"}, "comment": nil}},
			{Path: "/m/b.flac", Kind: PlacementCluster, ClusterName: "Dummy", ClusterArtist: "Portishead"},
			{Path: "/m/c.flac", Kind: PlacementNonAlbum, RecordingID: "rec-2"},
			{Path: "/m/d.flac", Kind: PlacementUnclustered},
		},
	}
	if err := store.Save(context.Background(), snap); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.SavedAt.IsZero() {
		t.Error("save time missing")
	}
	if len(got.Albums) != 2 || got.Albums[0] != "album-a" || got.Albums[1] != "album-b" {
		t.Errorf("albums = %v", got.Albums)
	}
	if len(got.Files) != 4 {
		t.Fatalf("files = %d", len(got.Files))
	}
	byPath := make(map[string]FilePlacement, len(got.Files))
	for _, fp := range got.Files {
		byPath[fp.Path] = fp
	}
	if fp := byPath["/m/a.flac"]; fp.Kind != PlacementTrack || fp.AlbumID != "album-a" || fp.RecordingID != "rec-1" {
		t.Errorf("track placement = %+v", fp)
	}
	if got := byPath["/m/a.flac"].Overrides; len(got) != 2 || got["title"][0] != "Corrected Title" {
		t.Errorf("overrides = %v", got)
	}
	if fp := byPath["/m/d.flac"]; fp.Overrides != nil {
		t.Errorf("empty overrides decoded as %v", fp.Overrides)
	}
	if fp := byPath["/m/b.flac"]; fp.Kind != PlacementCluster || fp.ClusterName != "Dummy" || fp.ClusterArtist != "Portishead" {
		t.Errorf("cluster placement = %+v", fp)
	}
}

func TestSaveReplacesPreviousSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	store := openStore(t, path)
	ctx := context.Background()

	first := &Snapshot{
		Albums: []string{"album-a"},
		Files:  []FilePlacement{{Path: "/m/a.flac", Kind: PlacementUnclustered}},
	}
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}
	second := &Snapshot{Files: []FilePlacement{{Path: "/m/b.flac", Kind: PlacementUnclustered}}}
	if err := store.Save(ctx, second); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Albums) != 0 {
		t.Errorf("albums = %v", got.Albums)
	}
	if len(got.Files) != 1 || got.Files[0].Path != "/m/b.flac" {
		t.Errorf("files = %v", got.Files)
	}
}

func TestLoadEmptyDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	store := openStore(t, path)

	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Albums) != 0 || len(got.Files) != 0 {
		t.Errorf("snapshot = %+v, want empty", got)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	store := openStore(t, path)
	ctx := context.Background()

	snap := &Snapshot{Albums: []string{"album-a"}}
	if err := store.Save(ctx, snap); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened := openStore(t, path)
	got, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Albums) != 1 || got.Albums[0] != "album-a" {
		t.Errorf("albums = %v", got.Albums)
	}
}

func TestSecondOpenIsLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	openStore(t, path)

	if _, err := Open(path); !errors.Is(err, ErrLocked) {
		t.Fatalf("second open = %v, want ErrLocked", err)
	}
}

func TestSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	store := openStore(t, path)
	ctx := context.Background()
	if _, err := store.db.ExecContext(ctx, "UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if _, err := Open(path); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("open = %v, want ErrSchemaMismatch", err)
	}
}
