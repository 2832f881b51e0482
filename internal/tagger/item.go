package tagger

import (
	"tagger/internal/cluster"
	"tagger/internal/file"
	"tagger/internal/release"
)

// Item is the capability surface shared by every selectable object in
// the workspace. UI layers query it to enable actions uniformly
// instead of type-switching over the graph.
type Item interface {
	CanSave() bool
	CanRemove() bool
	CanEditTags() bool
	CanAutotag() bool
	CanAnalyze() bool
	CanRefresh() bool
	IsAlbumLike() bool
}

var (
	_ Item = (*file.Record)(nil)
	_ Item = (*cluster.Cluster)(nil)
	_ Item = (*release.Track)(nil)
	_ Item = (*release.Album)(nil)
)
