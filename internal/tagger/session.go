package tagger

import (
	"sort"

	"tagger/internal/file"
	"tagger/internal/metadata"
	"tagger/internal/session"
)

// Snapshot captures the current workspace layout for persistence.
// Must run on the control goroutine.
func (c *Controller) Snapshot() *session.Snapshot {
	snap := &session.Snapshot{}

	for id, a := range c.albums {
		if a.IsNAT() {
			continue
		}
		snap.Albums = append(snap.Albums, id)
	}
	sort.Strings(snap.Albums)

	for _, r := range c.unclustered.IterFiles() {
		snap.Files = append(snap.Files, session.FilePlacement{
			Path:      r.Filename,
			Kind:      session.PlacementUnclustered,
			Overrides: overriddenTags(r),
		})
	}
	for _, cl := range c.clusters {
		for _, r := range cl.IterFiles() {
			snap.Files = append(snap.Files, session.FilePlacement{
				Path:          r.Filename,
				Kind:          session.PlacementCluster,
				ClusterName:   cl.Name(),
				ClusterArtist: cl.Artist(),
				Overrides:     overriddenTags(r),
			})
		}
	}
	for _, a := range c.albums {
		if a.IsNAT() {
			for _, t := range a.Tracks {
				for _, r := range t.Files() {
					snap.Files = append(snap.Files, session.FilePlacement{
						Path:        r.Filename,
						Kind:        session.PlacementNonAlbum,
						RecordingID: t.ID,
						Overrides:   overriddenTags(r),
					})
				}
			}
			continue
		}
		for _, t := range a.Tracks {
			for _, r := range t.Files() {
				snap.Files = append(snap.Files, session.FilePlacement{
					Path:        r.Filename,
					Kind:        session.PlacementTrack,
					AlbumID:     a.ID,
					RecordingID: t.ID,
					Overrides:   overriddenTags(r),
				})
			}
		}
		for _, r := range a.Unmatched.IterFiles() {
			snap.Files = append(snap.Files, session.FilePlacement{
				Path:      r.Filename,
				Kind:      session.PlacementAlbum,
				AlbumID:   a.ID,
				Overrides: overriddenTags(r),
			})
		}
	}

	sort.Slice(snap.Files, func(i, j int) bool {
		return snap.Files[i].Path < snap.Files[j].Path
	})
	return snap
}

// Restore rebuilds the workspace from a saved layout: albums start
// loading, files are re-read from disk and routed to their recorded
// holders once their tags arrive. Must run on the control goroutine.
func (c *Controller) Restore(snap *session.Snapshot) {
	for _, id := range snap.Albums {
		c.LoadAlbum(id)
	}

	for _, fp := range snap.Files {
		records := c.AddFiles([]string{fp.Path})
		if len(records) == 0 {
			continue
		}
		r := records[0]
		r.WhenReady(func() {
			c.place(r.Filename, fp)
		})
	}
}

func (c *Controller) place(path string, fp session.FilePlacement) {
	r := c.files[path]
	if r == nil {
		return
	}
	switch fp.Kind {
	case session.PlacementCluster:
		target := c.findCluster(fp.ClusterName, fp.ClusterArtist)
		if target == nil {
			target = c.addCluster(fp.ClusterName, fp.ClusterArtist)
		}
		r.Move(target)
		c.applyOverrides(r, fp.Overrides)
	case session.PlacementAlbum:
		if a := c.LoadAlbum(fp.AlbumID); a != nil {
			c.MoveFilesToAlbum([]*file.Record{r}, a)
			a.RunWhenLoaded(func() { c.applyOverrides(r, fp.Overrides) }, true)
		}
	case session.PlacementTrack:
		if a := c.LoadAlbum(fp.AlbumID); a != nil {
			a.MatchFile(r, fp.RecordingID)
			// Track metadata lands on the file when the load settles;
			// the user's edits go back on top of it.
			a.RunWhenLoaded(func() { c.applyOverrides(r, fp.Overrides) }, true)
		}
	case session.PlacementNonAlbum:
		c.MoveFileToNonAlbum(r, fp.RecordingID)
		c.applyOverrides(r, fp.Overrides)
	default:
		c.applyOverrides(r, fp.Overrides)
	}
}

// overriddenTags captures a record's unsaved edits: the visible tags
// whose current values differ from the on-disk baseline, plus deleted
// tags as empty slices. Unchanged records yield nil.
func overriddenTags(r *file.Record) map[string][]string {
	if r.State() != file.StateChanged {
		return nil
	}
	out := make(map[string][]string)
	for _, item := range r.Metadata.Diff(r.OrigMetadata).RawItems() {
		if metadata.IsInternal(item.Name) {
			continue
		}
		out[item.Name] = append([]string(nil), item.Values...)
	}
	for _, item := range r.OrigMetadata.RawItems() {
		if metadata.IsInternal(item.Name) || r.Metadata.Contains(item.Name) {
			continue
		}
		out[item.Name] = nil
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (c *Controller) applyOverrides(r *file.Record, overrides map[string][]string) {
	if len(overrides) == 0 {
		return
	}
	for name, values := range overrides {
		if len(values) == 0 {
			r.Metadata.Delete(name)
			continue
		}
		r.Metadata.Set(name, values...)
	}
	r.Update(c.env.Scorer, c.env.CompareWeights())
}
