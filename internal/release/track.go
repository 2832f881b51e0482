package release

import (
	"tagger/internal/events"
	"tagger/internal/file"
	"tagger/internal/metadata"
)

// Track is one position on a loaded album. Metadata is the editable
// container shown to the user; OrigMetadata is the as-loaded baseline
// used for comparisons so user edits never skew matching.
type Track struct {
	// ID is the recording id the track points at.
	ID     string
	Album  *Album
	Number int

	Metadata     *metadata.Container
	OrigMetadata *metadata.Container

	files []*file.Record
}

func NewTrack(id string, album *Album) *Track {
	return &Track{
		ID:           id,
		Album:        album,
		Metadata:     metadata.New(),
		OrigMetadata: metadata.New(),
	}
}

// AddFile implements file.Holder. The file takes on the track's
// metadata and recomputes its similarity.
func (t *Track) AddFile(r *file.Record) {
	t.files = append(t.files, r)
	t.Album.fileAdded(r)
	r.CopyMetadata(t.Metadata)
	r.Update(t.Album.env.Scorer, t.Album.env.CompareWeights())
	t.notifyUpdate()
}

// RemoveFile implements file.Holder. The file's editable metadata
// reverts to its on-disk baseline.
func (t *Track) RemoveFile(r *file.Record) {
	for i, held := range t.files {
		if held == r {
			t.files = append(t.files[:i], t.files[i+1:]...)
			break
		}
	}
	r.CopyMetadata(r.OrigMetadata)
	r.Update(t.Album.env.Scorer, t.Album.env.CompareWeights())
	t.Album.fileRemoved(r)
	t.notifyUpdate()
}

// Files returns a copy of the linked files.
func (t *Track) Files() []*file.Record {
	cp := make([]*file.Record, len(t.files))
	copy(cp, t.files)
	return cp
}

func (t *Track) FileCount() int { return len(t.files) }

// IsLinked reports whether at least one file sits on the track.
func (t *Track) IsLinked() bool { return len(t.files) > 0 }

func (t *Track) IsVideo() bool   { return t.Metadata.Get("~video") != "" }
func (t *Track) IsPregap() bool  { return t.Metadata.Get("~pregap") != "" }
func (t *Track) IsData() bool    { return t.Metadata.Get("~datatrack") != "" }
func (t *Track) IsSilence() bool { return t.Metadata.Get("~silence") != "" }

// IgnoredForCompleteness reports whether the track is excluded from the
// album's complete/incomplete accounting per the completeness
// configuration.
func (t *Track) IgnoredForCompleteness() bool {
	c := t.Album.env.Config.Completeness
	switch {
	case c.IgnoreVideos && t.IsVideo():
		return true
	case c.IgnorePregap && t.IsPregap():
		return true
	case c.IgnoreData && t.IsData():
		return true
	case c.IgnoreSilence && t.IsSilence():
		return true
	}
	return false
}

// IsComplete reports whether the track is satisfied: exactly one linked
// file, or ignored outright.
func (t *Track) IsComplete() bool {
	if t.IgnoredForCompleteness() {
		return true
	}
	return len(t.files) == 1
}

// customize applies workspace-level adjustments after the catalog tags
// are in place: the Various Artists display name, placeholder marks for
// data and silence tracks, and punctuation normalization.
func (t *Track) customize() {
	env := t.Album.env
	if t.Metadata.Get("musicbrainz_artistid") == VariousArtistsID {
		t.Metadata.Set("artist", env.Config.Naming.VariousArtists)
		t.Metadata.Set("artistsort", env.Config.Naming.VariousArtists)
	}
	switch t.Metadata.Get("title") {
	case DataTrackTitle:
		t.Metadata.Set("~datatrack", "1")
	case SilenceTrackTitle:
		t.Metadata.Set("~silence", "1")
	}
	if env.Config.Metadata.ConvertPunctuation {
		t.Metadata.ApplyFunc(metadata.NormalizePunctuation)
	}
}

func (t *Track) notifyUpdate() {
	t.Album.env.Events.ItemUpdated(events.KindTrack, t.ID)
}

// Capability surface used by UI-facing dispatch.

func (t *Track) CanSave() bool     { return len(t.files) > 0 }
func (t *Track) CanRemove() bool   { return false }
func (t *Track) CanEditTags() bool { return true }
func (t *Track) CanAutotag() bool  { return false }
func (t *Track) CanAnalyze() bool  { return false }
func (t *Track) CanRefresh() bool  { return false }
func (t *Track) IsAlbumLike() bool { return false }
