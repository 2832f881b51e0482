package release

import (
	"tagger/internal/catalog"
	"tagger/internal/file"
)

// Recording-id match quality levels. A track sharing the file's
// recording id always beats any metadata similarity; position
// agreement refines which of several such tracks wins.
const (
	matchIDOnly      = 2.0
	matchIDTrack     = 3.0
	matchIDTrackDisc = 4.0
)

// MatchFiles assigns each file to its best track, or to the unmatched
// pool when nothing clears the similarity threshold. On an album still
// loading, files park in the unmatched pool and are re-matched when the
// load settles. Removed files are skipped.
func (a *Album) MatchFiles(files []*file.Record) {
	if !a.loaded {
		for _, f := range files {
			if f.State() == file.StateRemoved {
				continue
			}
			f.Move(a.Unmatched)
		}
		return
	}
	for _, f := range files {
		if f.State() == file.StateRemoved {
			continue
		}
		f.Move(a.matchTarget(f, false))
		f.MatchRecordingID = ""
	}
}

// MatchFile places one file, optionally pinned to a recording id. With
// a valid id the metadata-similarity fallback is skipped entirely: the
// file lands on an id-matching track or in the unmatched pool.
func (a *Album) MatchFile(f *file.Record, recordingID string) {
	if f.State() == file.StateRemoved {
		return
	}
	idOnly := false
	if catalog.IsValidID(recordingID) {
		f.MatchRecordingID = recordingID
		idOnly = true
	}
	if !a.loaded {
		f.Move(a.Unmatched)
		return
	}
	f.Move(a.matchTarget(f, idOnly))
	f.MatchRecordingID = ""
}

func (a *Album) matchTarget(f *file.Record, idOnly bool) file.Holder {
	if t := a.matchByRecordingID(f); t != nil {
		return t
	}
	if idOnly {
		return a.Unmatched
	}

	threshold := a.env.Config.Matching.TrackThreshold
	weights := a.env.CompareWeights()
	var best *Track
	bestSim := -1.0
	for _, t := range a.Tracks {
		sim := t.Metadata.Compare(f.OrigMetadata, a.env.Scorer, weights)
		if sim > bestSim {
			best = t
			bestSim = sim
		}
	}
	if best != nil && bestSim >= threshold {
		return best
	}
	return a.Unmatched
}

func (a *Album) matchByRecordingID(f *file.Record) *Track {
	rid := f.MatchRecordingID
	if rid == "" {
		rid = f.Metadata.Get("musicbrainz_recordingid")
	}
	if !catalog.IsValidID(rid) {
		return nil
	}
	trackNum := f.Metadata.Get("tracknumber")
	discNum := f.Metadata.Get("discnumber")

	var best *Track
	bestScore := 0.0
	for _, t := range a.Tracks {
		if t.OrigMetadata.Get("musicbrainz_recordingid") != rid {
			continue
		}
		score := matchIDOnly
		if trackNum != "" && trackNum == t.OrigMetadata.Get("tracknumber") {
			if discNum != "" && discNum == t.OrigMetadata.Get("discnumber") {
				score = matchIDTrackDisc
			} else {
				score = matchIDTrack
			}
		}
		if score > bestScore {
			best = t
			bestScore = score
		}
		if score == matchIDTrackDisc {
			break
		}
	}
	return best
}
