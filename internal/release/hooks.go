package release

import (
	"fmt"
	"sort"

	"tagger/internal/catalog"
	"tagger/internal/metadata"
)

// Processor priorities. Higher priorities run earlier; registration
// order breaks ties.
const (
	PriorityHigh   = 1
	PriorityNormal = 0
	PriorityLow    = -1
)

// AlbumProcessor mutates album-level metadata after the release
// document has been parsed and before tracks are built.
type AlbumProcessor func(album *Album, m *metadata.Container, rel *catalog.Release) error

// TrackProcessor mutates track-level metadata after a track node has
// been parsed.
type TrackProcessor func(album *Album, m *metadata.Container, node *catalog.TrackNode, rel *catalog.Release) error

// ScriptRunner applies the user's tagging script to a metadata
// container. A failing script does not abort the load.
type ScriptRunner func(m *metadata.Container) error

type albumHook struct {
	priority int
	fn       AlbumProcessor
}

type trackHook struct {
	priority int
	fn       TrackProcessor
}

// Hooks holds the metadata processor registries for a tagger instance.
// Registration is not safe for concurrent use; register everything
// before loading starts.
type Hooks struct {
	album  []albumHook
	track  []trackHook
	Script ScriptRunner
}

func NewHooks() *Hooks {
	return &Hooks{}
}

func (h *Hooks) RegisterAlbumProcessor(fn AlbumProcessor, priority int) {
	h.album = append(h.album, albumHook{priority: priority, fn: fn})
	sort.SliceStable(h.album, func(i, j int) bool {
		return h.album[i].priority > h.album[j].priority
	})
}

func (h *Hooks) RegisterTrackProcessor(fn TrackProcessor, priority int) {
	h.track = append(h.track, trackHook{priority: priority, fn: fn})
	sort.SliceStable(h.track, func(i, j int) bool {
		return h.track[i].priority > h.track[j].priority
	})
}

// runAlbum invokes every album processor in priority order. Failures
// are collected, never fatal to the load.
func (h *Hooks) runAlbum(album *Album, m *metadata.Container, rel *catalog.Release) []error {
	var errs []error
	for _, hook := range h.album {
		if err := h.invokeAlbum(hook.fn, album, m, rel); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func (h *Hooks) runTrack(album *Album, m *metadata.Container, node *catalog.TrackNode, rel *catalog.Release) []error {
	var errs []error
	for _, hook := range h.track {
		if err := h.invokeTrack(hook.fn, album, m, node, rel); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func (h *Hooks) invokeAlbum(fn AlbumProcessor, album *Album, m *metadata.Container, rel *catalog.Release) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("album processor panic: %v", r)
		}
	}()
	return fn(album, m, rel)
}

func (h *Hooks) invokeTrack(fn TrackProcessor, album *Album, m *metadata.Container, node *catalog.TrackNode, rel *catalog.Release) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("track processor panic: %v", r)
		}
	}()
	return fn(album, m, node, rel)
}
