package release

import (
	"fmt"

	"log/slog"

	"tagger/internal/catalog"
	"tagger/internal/file"
)

// NATAlbumID keys the non-album-tracks pseudo-album in the registry.
// It is not a catalog id and is never fetched.
const NATAlbumID = "NATS"

// NATAlbum collects standalone recordings that belong to no release.
// It is always "loaded"; tracks appear on demand, one per recording,
// and each fetches its own recording document.
type NATAlbum struct {
	*Album

	byRecording map[string]*Track
	tasks       map[string]catalog.Task
}

func NewNATAlbum(env *Env) *NATAlbum {
	a := NewAlbum(env, NATAlbumID)
	a.nat = true
	a.loaded = true
	a.Metadata.Set("album", env.Config.Naming.NonAlbum)
	a.OrigMetadata.Copy(a.Metadata)
	return &NATAlbum{
		Album:       a,
		byRecording: make(map[string]*Track),
		tasks:       make(map[string]catalog.Task),
	}
}

// TrackFor returns the track for a recording id, creating it and
// starting its recording fetch on first use.
func (n *NATAlbum) TrackFor(recordingID string) *Track {
	if t, ok := n.byRecording[recordingID]; ok {
		return t
	}
	t := NewTrack(recordingID, n.Album)
	t.Metadata.Set("album", n.env.Config.Naming.NonAlbum)
	t.Metadata.Set("musicbrainz_recordingid", recordingID)
	t.OrigMetadata.Copy(t.Metadata)
	n.Tracks = append(n.Tracks, t)
	n.byRecording[recordingID] = t
	n.loadTrack(t)
	n.notifyUpdate()
	return t
}

// MoveFile places the file on the recording's NAT track.
func (n *NATAlbum) MoveFile(f *file.Record, recordingID string) {
	f.Move(n.TrackFor(recordingID))
}

func (n *NATAlbum) loadTrack(t *Track) {
	if _, busy := n.tasks[t.ID]; busy {
		return
	}
	opts := catalog.FetchOptions{Include: []catalog.Include{catalog.IncArtistCredits}}
	n.tasks[t.ID] = n.env.Client.FetchRecordingByID(t.ID, func(rec *catalog.Recording, err error) {
		n.env.post(func() {
			n.trackFetchDone(t, rec, err)
		})
	}, opts)
}

func (n *NATAlbum) trackFetchDone(t *Track, rec *catalog.Recording, err error) {
	delete(n.tasks, t.ID)
	if err != nil {
		n.appendError(fmt.Errorf("load recording %s: %w", t.ID, err))
		return
	}
	recordingToMetadata(rec, t.Metadata)
	t.Metadata.Set("album", n.env.Config.Naming.NonAlbum)
	t.customize()
	if script := n.env.Hooks.Script; script != nil {
		if err := script(t.Metadata); err != nil {
			n.appendError(fmt.Errorf("tagging script on recording %s: %w", t.ID, err))
		}
		t.Metadata.StripWhitespace()
	}
	t.OrigMetadata.Copy(t.Metadata)
	for _, f := range t.Files() {
		f.CopyMetadata(t.Metadata)
		f.Update(n.env.Scorer, n.env.CompareWeights())
	}
	n.log().Debug("non-album track loaded",
		slog.String("recording", t.ID), slog.String("title", t.Metadata.Get("title")))
	t.notifyUpdate()
}

// Prune drops tracks whose files have all moved away and reports
// whether any tracks remain.
func (n *NATAlbum) Prune() bool {
	kept := n.Tracks[:0]
	for _, t := range n.Tracks {
		if t.IsLinked() {
			kept = append(kept, t)
			continue
		}
		if task, ok := n.tasks[t.ID]; ok {
			task.Cancel()
			delete(n.tasks, t.ID)
		}
		delete(n.byRecording, t.ID)
	}
	if len(kept) != len(n.Tracks) {
		n.Tracks = kept
		n.notifyUpdate()
	}
	return len(n.Tracks) > 0
}
