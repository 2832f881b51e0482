package cluster

import (
	"fmt"
	"testing"

	"tagger/internal/file"
	"tagger/internal/metadata"
	"tagger/internal/similarity"
)

func taggedFile(path, album, artist string) *file.Record {
	r := file.NewRecord(path)
	m := metadata.New()
	m.Set("album", album)
	m.Set("artist", artist)
	r.SetTags(m)
	return r
}

func defaultOptions() Options {
	return Options{
		Threshold:      0.6,
		VariousArtists: "Various Artists",
		Score:          similarity.Score,
	}
}

func TestPartitionGroupsByAlbum(t *testing.T) {
	files := []*file.Record{
		taggedFile("/m/1.mp3", "OK Computer", "Radiohead"),
		taggedFile("/m/2.mp3", "OK Computer", "Radiohead"),
		taggedFile("/m/3.mp3", "OK Computerr", "Radiohead"),
		taggedFile("/m/4.mp3", "Homework", "Daft Punk"),
		taggedFile("/m/5.mp3", "Homework", "Daft Punk"),
	}
	groups := Partition(files, defaultOptions())
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups[0].Album != "OK Computer" || len(groups[0].Files) != 3 {
		t.Fatalf("group 0 = %q with %d files", groups[0].Album, len(groups[0].Files))
	}
	if groups[0].Artist != "Radiohead" {
		t.Fatalf("group 0 artist = %q", groups[0].Artist)
	}
	if groups[1].Album != "Homework" || len(groups[1].Files) != 2 {
		t.Fatalf("group 1 = %q with %d files", groups[1].Album, len(groups[1].Files))
	}
}

func TestPartitionExcludesUniqueAlbums(t *testing.T) {
	files := []*file.Record{
		taggedFile("/m/1.mp3", "Lonely Album", "Someone"),
		taggedFile("/m/2.mp3", "Completely Different", "Someone Else"),
	}
	groups := Partition(files, defaultOptions())
	if len(groups) != 0 {
		t.Fatalf("got %d groups, want none", len(groups))
	}
}

func TestPartitionUntaggedExcluded(t *testing.T) {
	files := []*file.Record{
		taggedFile("/m/1.mp3", "", ""),
		taggedFile("/m/2.mp3", "", ""),
	}
	groups := Partition(files, defaultOptions())
	if len(groups) != 0 {
		t.Fatalf("files with no album must not cluster, got %d groups", len(groups))
	}
}

func TestPartitionVariousArtistsFallback(t *testing.T) {
	files := []*file.Record{
		taggedFile("/m/1.mp3", "Mixtape", ""),
		taggedFile("/m/2.mp3", "Mixtape", ""),
	}
	groups := Partition(files, defaultOptions())
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	if groups[0].Artist != "Various Artists" {
		t.Fatalf("artist = %q, want Various Artists", groups[0].Artist)
	}
}

func TestPartitionMostFrequentArtistWins(t *testing.T) {
	files := []*file.Record{
		taggedFile("/m/1.mp3", "Split Single", "Band A"),
		taggedFile("/m/2.mp3", "Split Single", "Band A"),
		taggedFile("/m/3.mp3", "Split Single", "Completely Other"),
	}
	groups := Partition(files, defaultOptions())
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	if groups[0].Artist != "Band A" {
		t.Fatalf("artist = %q, want Band A", groups[0].Artist)
	}
}

func TestPartitionDirectoryHints(t *testing.T) {
	opts := defaultOptions()
	opts.DirectoryHints = true
	var files []*file.Record
	for i := 1; i <= 2; i++ {
		files = append(files, taggedFile(
			fmt.Sprintf("/music/Daft Punk/Discovery/%02d.mp3", i), "", ""))
	}
	groups := Partition(files, opts)
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	if groups[0].Album != "Discovery" || groups[0].Artist != "Daft Punk" {
		t.Fatalf("group = %q / %q", groups[0].Album, groups[0].Artist)
	}
}

func TestClusterBookkeeping(t *testing.T) {
	cl := New("Discovery", "Daft Punk", false)
	var emptied bool
	cl.OnEmpty = func(*Cluster) { emptied = true }

	r1 := taggedFile("/m/1.mp3", "Discovery", "Daft Punk")
	r1.Metadata.Length = 120000
	r2 := taggedFile("/m/2.mp3", "Discovery", "Daft Punk")
	r2.Metadata.Length = 60000

	r1.Move(cl)
	r2.Move(cl)
	if cl.Len() != 2 {
		t.Fatalf("Len = %d", cl.Len())
	}
	if got := cl.Metadata.Get("totaltracks"); got != "2" {
		t.Fatalf("totaltracks = %q", got)
	}
	if cl.Metadata.Length != 180000 {
		t.Fatalf("Length = %d", cl.Metadata.Length)
	}

	other := New("", "", true)
	r1.Move(other)
	r2.Move(other)
	if !emptied {
		t.Fatal("OnEmpty must fire when the last file leaves")
	}
	if cl.Metadata.Length != 0 {
		t.Fatalf("Length = %d after emptying", cl.Metadata.Length)
	}
}

func TestClusterTotalsAfterLateTagRead(t *testing.T) {
	pool := New("", "", true)

	settled := taggedFile("/m/1.mp3", "Discovery", "Daft Punk")
	settled.Metadata.Length = 120000
	settled.Move(pool)

	// The record joins while its tags are still being read.
	pending := file.NewRecord("/m/2.mp3")
	pending.Move(pool)
	if pool.Metadata.Length != 120000 {
		t.Fatalf("Length with pending member = %d", pool.Metadata.Length)
	}

	m := metadata.New()
	m.Set("album", "Discovery")
	m.Length = 60000
	pending.SetTags(m)
	if pool.Metadata.Length != 180000 {
		t.Fatalf("Length after tags landed = %d", pool.Metadata.Length)
	}

	other := New("", "", true)
	pending.Move(other)
	if pool.Metadata.Length != 120000 {
		t.Fatalf("Length after departure = %d", pool.Metadata.Length)
	}
	if got := pool.Metadata.Get("totaltracks"); got != "1" {
		t.Fatalf("totaltracks = %q", got)
	}
}
