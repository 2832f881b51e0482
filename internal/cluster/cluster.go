package cluster

import (
	"tagger/internal/file"
	"tagger/internal/metadata"
)

// AlbumLink is the narrow view a per-album unmatched pool has of its
// owning album.
type AlbumLink interface {
	// FilesChanged signals that the pool's contents changed so the album
	// can refresh its aggregates.
	FilesChanged()
}

// Cluster holds files sharing an inferred album/artist identity. The
// two singleton pools (global unclustered files, per-album unmatched
// files) are marked Special: they survive emptying and cannot be
// removed by the user.
type Cluster struct {
	Metadata *metadata.Container
	Files    []*file.Record

	Special bool

	// RelatedAlbum is set only on a per-album unmatched pool.
	RelatedAlbum AlbumLink

	// OnEmpty is invoked when a non-special cluster loses its last file
	// so the owner can drop it from the registry.
	OnEmpty func(*Cluster)

	// Notify, when set, is invoked after membership changes.
	Notify func(*Cluster)
}

// New creates a cluster with the given inferred album and artist names.
func New(name, artist string, special bool) *Cluster {
	m := metadata.New()
	m.Set("album", name)
	m.Set("albumartist", artist)
	m.SetInt("totaltracks", 0)
	return &Cluster{
		Metadata: m,
		Special:  special,
	}
}

// Name returns the cluster's inferred album name.
func (c *Cluster) Name() string { return c.Metadata.Get("album") }

// Artist returns the cluster's inferred artist name.
func (c *Cluster) Artist() string { return c.Metadata.Get("albumartist") }

// AddFile implements file.Holder. Called only via Record.Move.
func (c *Cluster) AddFile(r *file.Record) {
	c.Files = append(c.Files, r)
	c.RefreshTotals()
	if c.RelatedAlbum != nil {
		c.RelatedAlbum.FilesChanged()
	}
	c.notify()
}

// RemoveFile implements file.Holder. A non-special cluster that empties
// reports itself through OnEmpty.
func (c *Cluster) RemoveFile(r *file.Record) {
	for i, held := range c.Files {
		if held == r {
			c.Files = append(c.Files[:i], c.Files[i+1:]...)
			break
		}
	}
	c.RefreshTotals()
	if c.RelatedAlbum != nil {
		c.RelatedAlbum.FilesChanged()
	}
	c.notify()
	if !c.Special && len(c.Files) == 0 && c.OnEmpty != nil {
		c.OnEmpty(c)
	}
}

// RefreshTotals recomputes the aggregate length and track count from
// the current membership. Totals are derived rather than incrementally
// adjusted: a record that joins while Pending reports a zero length
// until its tags land.
func (c *Cluster) RefreshTotals() {
	var length int64
	for _, r := range c.Files {
		length += r.Metadata.Length
	}
	c.Metadata.Length = length
	c.Metadata.SetInt("totaltracks", len(c.Files))
}

func (c *Cluster) notify() {
	if c.Notify != nil {
		c.Notify(c)
	}
}

// Len returns the number of held files.
func (c *Cluster) Len() int { return len(c.Files) }

// IterFiles returns a copy of the file list, safe to mutate while
// moving files out of the cluster.
func (c *Cluster) IterFiles() []*file.Record {
	cp := make([]*file.Record, len(c.Files))
	copy(cp, c.Files)
	return cp
}

// Capability surface used by UI-facing dispatch.

func (c *Cluster) CanSave() bool     { return len(c.Files) > 0 }
func (c *Cluster) CanRemove() bool   { return !c.Special }
func (c *Cluster) CanEditTags() bool { return !c.Special }
func (c *Cluster) CanAutotag() bool  { return len(c.Files) > 0 }
func (c *Cluster) CanRefresh() bool  { return false }

func (c *Cluster) CanAnalyze() bool {
	for _, r := range c.Files {
		if r.CanAnalyze() {
			return true
		}
	}
	return false
}

func (c *Cluster) IsAlbumLike() bool { return true }
