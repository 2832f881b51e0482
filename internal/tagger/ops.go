package tagger

import (
	"log/slog"

	"tagger/internal/catalog"
	"tagger/internal/cluster"
	"tagger/internal/events"
	"tagger/internal/file"
	"tagger/internal/logging"
	"tagger/internal/release"
	"tagger/internal/similarity"
)

// Workspace operations. All of these must run on the control
// goroutine; external callers wrap them in Post or PostWait.

// AddFiles registers new paths and starts their tag reads. Paths
// already in the workspace return their existing records. New records
// land in the unclustered pool in Pending state.
func (c *Controller) AddFiles(paths []string) []*file.Record {
	out := make([]*file.Record, 0, len(paths))
	for _, path := range paths {
		if r, ok := c.files[path]; ok {
			out = append(out, r)
			continue
		}
		r := file.NewRecord(path)
		r.Notify = func(r *file.Record) {
			c.events.ItemUpdated(events.KindFile, r.Filename)
		}
		c.files[path] = r
		r.Move(c.unclustered)
		c.readTags(r)
		out = append(out, r)
	}
	return out
}

// readTags performs the codec read off-thread and posts the result
// back onto the control goroutine.
func (c *Controller) readTags(r *file.Record) {
	go func() {
		m, err := c.codec.ReadTags(r.Filename)
		_ = c.loop.Post(func() {
			if err != nil {
				c.logger.Warn("tag read failed",
					slog.String("file", r.Filename), logging.Error(err))
				r.SetError(err)
				return
			}
			r.SetTags(m)
		})
	}()
}

// RemoveFiles detaches records from their holders and drops them from
// the workspace.
func (c *Controller) RemoveFiles(records []*file.Record) {
	for _, r := range records {
		delete(c.files, r.Filename)
		r.Remove(true)
	}
	c.pruneNAT()
}

// WhenFilesReady runs fn once every given record has finished its tag
// read. Records already past Pending count immediately.
func (c *Controller) WhenFilesReady(records []*file.Record, fn func()) {
	remaining := len(records)
	if remaining == 0 {
		fn()
		return
	}
	done := func() {
		remaining--
		if remaining == 0 {
			fn()
		}
	}
	for _, r := range records {
		r.WhenReady(done)
	}
}

// ClusterFiles partitions the unclustered pool into album clusters.
// Groups of one stay unclustered; groups matching an existing cluster's
// name and artist merge into it.
func (c *Controller) ClusterFiles() {
	files := c.unclustered.IterFiles()
	groups := cluster.Partition(files, cluster.Options{
		Threshold:      c.cfg.Matching.ClusterThreshold,
		VariousArtists: c.cfg.Naming.VariousArtists,
		DirectoryHints: c.cfg.Matching.DirectoryHints,
		Score:          similarity.Score,
	})
	for _, g := range groups {
		if len(g.Files) < 2 {
			continue
		}
		target := c.findCluster(g.Album, g.Artist)
		if target == nil {
			target = c.addCluster(g.Album, g.Artist)
		}
		for _, f := range g.Files {
			f.Move(target)
		}
	}
}

func (c *Controller) findCluster(name, artist string) *cluster.Cluster {
	for _, cl := range c.clusters {
		if cl.Name() == name && cl.Artist() == artist {
			return cl
		}
	}
	return nil
}

func (c *Controller) addCluster(name, artist string) *cluster.Cluster {
	cl := cluster.New(name, artist, false)
	cl.OnEmpty = c.dropCluster
	cl.Notify = func(cl *cluster.Cluster) {
		c.events.ItemUpdated(events.KindCluster, cl.Name())
	}
	c.clusters = append(c.clusters, cl)
	c.events.ClusterAdded(name, artist)
	return cl
}

func (c *Controller) dropCluster(cl *cluster.Cluster) {
	for i, held := range c.clusters {
		if held == cl {
			c.clusters = append(c.clusters[:i], c.clusters[i+1:]...)
			c.events.ClusterRemoved(cl.Name(), cl.Artist())
			return
		}
	}
}

// RemoveCluster dissolves a cluster, returning its files to the
// unclustered pool. The special pools cannot be removed.
func (c *Controller) RemoveCluster(cl *cluster.Cluster) {
	if cl.Special {
		return
	}
	for _, f := range cl.IterFiles() {
		f.Move(c.unclustered)
	}
	// Empty from the start, so OnEmpty never fired.
	if cl.Len() == 0 {
		c.dropCluster(cl)
	}
}

// LoadAlbum registers an album for the release id and starts its load.
// Known ids, directly or through a recorded redirect, return the
// existing album. Invalid ids return nil.
func (c *Controller) LoadAlbum(id string) *release.Album {
	id = c.resolveRedirect(id)
	if a, ok := c.albums[id]; ok {
		return a
	}
	if !catalog.IsValidID(id) {
		c.logger.Warn("ignoring invalid release id", slog.String("id", id))
		return nil
	}
	a := release.NewAlbum(c.env, id)
	c.albums[id] = a
	c.events.AlbumAdded(id)
	a.Load(false, false)
	return a
}

// RefreshAlbum re-fetches a loaded album, bypassing caches.
func (c *Controller) RefreshAlbum(a *release.Album) {
	if a.CanRefresh() {
		a.Load(true, true)
	}
}

func (c *Controller) removeAlbum(a *release.Album) {
	if _, ok := c.albums[a.ID]; !ok {
		return
	}
	a.StopLoading()
	for _, f := range a.AllFiles() {
		f.Move(c.unclustered)
	}
	if rg := a.ReleaseGroup; rg != nil && rg.Release(a.ID) {
		delete(c.releaseGroups, rg.ID)
	}
	delete(c.albums, a.ID)
	if c.nat != nil && a == c.nat.Album {
		c.nat = nil
	}
	c.events.AlbumRemoved(a.ID)
}

// MoveFilesToAlbum assigns files to an album, matching them onto
// tracks immediately when the album is loaded.
func (c *Controller) MoveFilesToAlbum(records []*file.Record, a *release.Album) {
	a.MatchFiles(records)
	c.pruneNAT()
}

// MoveFileToTrack places a file on a specific track.
func (c *Controller) MoveFileToTrack(r *file.Record, t *release.Track) {
	r.Move(t)
	c.pruneNAT()
}

// MoveFileToNonAlbum places a file on the non-album track for the
// given recording id.
func (c *Controller) MoveFileToNonAlbum(r *file.Record, recordingID string) {
	if !catalog.IsValidID(recordingID) {
		return
	}
	c.natAlbum().MoveFile(r, recordingID)
}

func (c *Controller) pruneNAT() {
	if c.nat != nil && !c.nat.Prune() {
		c.removeAlbum(c.nat.Album)
	}
}

// LookupCluster searches the catalog for releases matching a cluster's
// inferred identity and, on a confident hit, loads the album and moves
// the cluster's files onto it.
func (c *Controller) LookupCluster(cl *cluster.Cluster) {
	query := catalog.Query{
		Artist:  cl.Artist(),
		Release: cl.Name(),
		Tracks:  cl.Len(),
		Limit:   25,
	}
	c.statusf("Looking up %s - %s", cl.Artist(), cl.Name())
	c.client.FindReleases(func(results []*catalog.Release, err error) {
		_ = c.loop.Post(func() {
			c.lookupFinished(cl, results, err)
		})
	}, query)
}

func (c *Controller) lookupFinished(cl *cluster.Cluster, results []*catalog.Release, err error) {
	if err != nil {
		c.logger.Warn("cluster lookup failed",
			slog.String("cluster", cl.Name()), logging.Error(err))
		c.statusf("Lookup failed for %s", cl.Name())
		return
	}
	scores := make([]float64, len(results))
	for i, rel := range results {
		scores[i] = release.ScoreClusterRelease(cl, rel, similarity.Score)
	}
	best, bestScore := similarity.BestMatch(scores)
	if best < 0 || bestScore < c.cfg.Matching.ClusterThreshold {
		c.statusf("No matching releases for %s", cl.Name())
		return
	}
	matched := results[best]
	c.logger.Info("cluster lookup matched release",
		slog.String("cluster", cl.Name()),
		slog.String("release", matched.ID),
		slog.Float64("score", bestScore))
	a := c.LoadAlbum(matched.ID)
	if a == nil {
		return
	}
	c.MoveFilesToAlbum(cl.IterFiles(), a)
}

// SaveFiles writes each record's editable metadata back to disk. Reads
// and writes happen off-thread; completions update the record state on
// the control goroutine.
func (c *Controller) SaveFiles(records []*file.Record) {
	for _, r := range records {
		r := r
		if !r.CanSave() {
			continue
		}
		m := r.Metadata.Clone()
		go func() {
			err := c.codec.WriteTags(r.Filename, m)
			_ = c.loop.Post(func() {
				if err != nil {
					c.logger.Warn("tag write failed",
						slog.String("file", r.Filename), logging.Error(err))
					r.SetError(err)
					return
				}
				r.MarkSaved()
			})
		}()
	}
}
