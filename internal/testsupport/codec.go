package testsupport

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"tagger/internal/metadata"
)

// FakeCodec serves tag containers from memory. Paths without
// registered tags read as an untagged file named after the path.
type FakeCodec struct {
	mu      sync.Mutex
	tags    map[string]*metadata.Container
	errs    map[string]error
	written map[string]*metadata.Container
}

func NewFakeCodec() *FakeCodec {
	return &FakeCodec{
		tags:    make(map[string]*metadata.Container),
		errs:    make(map[string]error),
		written: make(map[string]*metadata.Container),
	}
}

// SetTags registers the container ReadTags returns for path.
func (f *FakeCodec) SetTags(path string, m *metadata.Container) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tags[path] = m.Clone()
}

// SetError makes ReadTags fail for path.
func (f *FakeCodec) SetError(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[path] = err
}

func (f *FakeCodec) ReadTags(path string) (*metadata.Container, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs[path]; ok {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if m, ok := f.tags[path]; ok {
		return m.Clone(), nil
	}
	base := filepath.Base(path)
	m := metadata.New()
	m.Set("title", strings.TrimSuffix(base, filepath.Ext(base)))
	m.Set("~extension", strings.TrimPrefix(filepath.Ext(base), "."))
	return m, nil
}

func (f *FakeCodec) WriteTags(path string, m *metadata.Container) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs[path]; ok {
		return fmt.Errorf("write %s: %w", path, err)
	}
	f.written[path] = m.Clone()
	return nil
}

// Written returns the last container written for path, or nil.
func (f *FakeCodec) Written(path string) *metadata.Container {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.written[path]
}

// Tagged builds a container with the common compared fields filled in.
func Tagged(title, artist, album string, track, disc int) *metadata.Container {
	m := metadata.New()
	m.Set("title", title)
	m.Set("artist", artist)
	m.Set("album", album)
	if track > 0 {
		m.SetInt("tracknumber", track)
	}
	if disc > 0 {
		m.SetInt("discnumber", disc)
	}
	return m
}
