package file

import (
	"tagger/internal/metadata"
)

// Holder is a container that can hold file records: a cluster, a track,
// or one of the special pools. AddFile and RemoveFile perform the
// holder's own bookkeeping; they are called only from Record.Move,
// Record.Remove, and holder teardown.
type Holder interface {
	AddFile(*Record)
	RemoveFile(*Record)
}

// TotalsRefresher is implemented by holders whose aggregate metadata
// derives from member metadata, so a tag read that lands after the
// record joined can update the totals.
type TotalsRefresher interface {
	RefreshTotals()
}

// Codec reads and writes tags for one on-disk format. Implementations
// live outside the core; errors surface as a per-file error state and
// never affect sibling files.
type Codec interface {
	ReadTags(path string) (*metadata.Container, error)
	WriteTags(path string, m *metadata.Container) error
}

// Record is one audio file in the workspace.
type Record struct {
	// Filename is the absolute path; it keys the workspace registry.
	Filename string

	// Metadata is the current, editable container. OrigMetadata is the
	// last-loaded or last-saved baseline used for diffing.
	Metadata     *metadata.Container
	OrigMetadata *metadata.Container

	// Similarity is the score against the matched track's metadata;
	// meaningful only once the record sits on a track.
	Similarity float64

	// MatchRecordingID overrides recording-id matching for one explicit
	// "assign to this track" action; cleared after use.
	MatchRecordingID string

	// Notify, when set, is invoked after state or metadata updates so
	// observers can re-render. Must be cheap.
	Notify func(*Record)

	state   State
	err     error
	parent  Holder
	waiters []func()
}

// NewRecord creates a pending record for a discovered path.
func NewRecord(filename string) *Record {
	return &Record{
		Filename:     filename,
		Metadata:     metadata.New(),
		OrigMetadata: metadata.New(),
		Similarity:   1.0,
		state:        StatePending,
	}
}

// State returns the record's lifecycle state.
func (r *Record) State() State { return r.state }

// Err returns the error behind an Error state, or nil.
func (r *Record) Err() error { return r.err }

// Parent returns the holder currently containing the record, or nil.
func (r *Record) Parent() Holder { return r.parent }

// SetTags installs the container read from disk, moves the record out of
// Pending, and runs any registered continuations.
func (r *Record) SetTags(m *metadata.Container) {
	if r.state == StateRemoved {
		return
	}
	r.OrigMetadata.Copy(m)
	r.OrigMetadata.Set("~extension", m.Get("~extension"))
	r.Metadata.Copy(r.OrigMetadata)
	r.Similarity = 1.0
	r.err = nil
	if h, ok := r.parent.(TotalsRefresher); ok {
		h.RefreshTotals()
	}
	r.setState(StateNormal)
}

// SetError marks the last I/O operation on the record as failed.
// Continuations still run: the record has left Pending, just not
// usably.
func (r *Record) SetError(err error) {
	if r.state == StateRemoved {
		return
	}
	r.err = err
	r.setState(StateError)
}

// MarkSaved promotes the editable metadata to the new on-disk baseline
// after a successful tag write.
func (r *Record) MarkSaved() {
	if r.state == StateRemoved {
		return
	}
	r.OrigMetadata.Copy(r.Metadata)
	r.Similarity = 1.0
	r.err = nil
	r.setState(StateNormal)
}

func (r *Record) setState(state State) {
	wasPending := r.state == StatePending
	r.state = state
	if wasPending && state != StatePending {
		waiters := r.waiters
		r.waiters = nil
		for _, fn := range waiters {
			fn()
		}
	}
	r.notify()
}

// WhenReady runs fn once the record is no longer Pending. If it already
// left Pending the continuation runs immediately. Continuations that
// never fire (a record stuck in Pending) are dropped at workspace
// teardown.
func (r *Record) WhenReady(fn func()) {
	if r.state != StatePending {
		fn()
		return
	}
	r.waiters = append(r.waiters, fn)
}

// DropWaiters discards registered continuations without running them.
func (r *Record) DropWaiters() {
	r.waiters = nil
}

// Move transfers the record to a new holder, detaching it from the old
// one first. Moving to the current holder is a no-op. The record is
// never visible in two holders at once.
func (r *Record) Move(to Holder) {
	if to == nil || to == r.parent {
		return
	}
	if r.parent != nil {
		r.parent.RemoveFile(r)
	}
	r.parent = to
	to.AddFile(r)
	r.notify()
}

// Remove detaches the record and marks it Removed. With fromParent
// false the holder is assumed to have already dropped it.
func (r *Record) Remove(fromParent bool) {
	if fromParent && r.parent != nil {
		r.parent.RemoveFile(r)
	}
	r.parent = nil
	r.waiters = nil
	r.state = StateRemoved
	r.notify()
}

// CopyMetadata replaces the editable metadata, keeping the original
// file extension tag.
func (r *Record) CopyMetadata(m *metadata.Container) {
	ext := r.OrigMetadata.Get("~extension")
	r.Metadata.Copy(m)
	if ext != "" {
		r.Metadata.Set("~extension", ext)
	}
}

// Update recomputes the similarity between the editable and original
// metadata and flips the Normal/Changed state accordingly.
func (r *Record) Update(scorer metadata.Scorer, weights []metadata.FieldWeight) {
	if r.state != StateNormal && r.state != StateChanged {
		return
	}
	if r.modified() {
		r.Similarity = r.OrigMetadata.Compare(r.Metadata, scorer, weights)
		if r.state == StateNormal {
			r.state = StateChanged
		}
	} else {
		r.Similarity = 1.0
		if r.state == StateChanged {
			r.state = StateNormal
		}
	}
	r.notify()
}

func (r *Record) modified() bool {
	seen := make(map[string]struct{})
	for _, item := range r.Metadata.RawItems() {
		if metadata.IsInternal(item.Name) {
			continue
		}
		seen[item.Name] = struct{}{}
		if !equal(item.Values, r.OrigMetadata.GetAll(item.Name)) {
			return true
		}
	}
	for _, item := range r.OrigMetadata.RawItems() {
		if metadata.IsInternal(item.Name) {
			continue
		}
		if _, ok := seen[item.Name]; !ok {
			return true
		}
	}
	return false
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// IsSaved reports whether the file on disk matches the editable
// metadata.
func (r *Record) IsSaved() bool {
	return r.Similarity == 1.0 && r.state == StateNormal
}

func (r *Record) notify() {
	if r.Notify != nil {
		r.Notify(r)
	}
}

// Capability surface used by UI-facing dispatch.

func (r *Record) CanSave() bool     { return r.state != StateRemoved && r.state != StatePending }
func (r *Record) CanRemove() bool   { return r.state != StateRemoved }
func (r *Record) CanEditTags() bool { return r.state != StateRemoved && r.state != StatePending }
func (r *Record) CanAutotag() bool  { return r.state == StateNormal || r.state == StateChanged }
func (r *Record) CanAnalyze() bool  { return r.state == StateNormal || r.state == StateChanged }
func (r *Record) CanRefresh() bool  { return false }
func (r *Record) IsAlbumLike() bool { return false }
