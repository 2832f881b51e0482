package release

import "tagger/internal/metadata"

// ReleaseGroup aggregates the albums loaded from the same MusicBrainz
// release group. Metadata holds group-level tags shared by every
// release in the group and versions collected for the alternate
// version picker.
type ReleaseGroup struct {
	ID       string
	Metadata *metadata.Container

	// Loaded reports whether version information for the group has
	// been fetched.
	Loaded bool

	// LoadedAlbums tracks which album IDs currently reference this
	// group so version listings can mark them.
	LoadedAlbums map[string]struct{}
}

func NewReleaseGroup(id string) *ReleaseGroup {
	return &ReleaseGroup{
		ID:           id,
		Metadata:     metadata.New(),
		LoadedAlbums: make(map[string]struct{}),
	}
}

// Acquire records that album uses this group. Acquiring twice for the
// same album is a no-op.
func (rg *ReleaseGroup) Acquire(albumID string) {
	rg.LoadedAlbums[albumID] = struct{}{}
}

// Release drops the album's reference and reports whether the group is
// now unused and can be discarded from the registry.
func (rg *ReleaseGroup) Release(albumID string) bool {
	delete(rg.LoadedAlbums, albumID)
	return len(rg.LoadedAlbums) == 0
}

func (rg *ReleaseGroup) RefCount() int {
	return len(rg.LoadedAlbums)
}
