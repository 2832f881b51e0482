package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"tagger/internal/file"
	"tagger/internal/tagger"
)

var audioExtensions = map[string]struct{}{
	".mp3":  {},
	".flac": {},
	".ogg":  {},
	".oga":  {},
	".opus": {},
	".m4a":  {},
	".mp4":  {},
	".wav":  {},
	".aiff": {},
	".wv":   {},
}

func isAudioPath(path string) bool {
	_, ok := audioExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// collectAudioFiles expands the given paths, walking directories
// concurrently, and returns the sorted audio file list.
func collectAudioFiles(paths []string) ([]string, error) {
	var (
		mu    sync.Mutex
		found []string
	)
	g := new(errgroup.Group)
	g.SetLimit(8)

	for _, path := range paths {
		path := path
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		if !info.IsDir() {
			if isAudioPath(path) {
				found = append(found, path)
			}
			continue
		}
		g.Go(func() error {
			return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() || !isAudioPath(p) {
					return nil
				}
				mu.Lock()
				found = append(found, p)
				mu.Unlock()
				return nil
			})
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Strings(found)
	return found, nil
}

// addAndSettle loads paths into the workspace and waits for every tag
// read to finish.
func addAndSettle(ctrl *tagger.Controller, paths []string) ([]*file.Record, error) {
	var records []*file.Record
	ready := make(chan struct{})
	err := ctrl.PostWait(func() {
		records = ctrl.AddFiles(paths)
		ctrl.WhenFilesReady(records, func() {
			close(ready)
		})
	})
	if err != nil {
		return nil, err
	}
	select {
	case <-ready:
	case <-time.After(2 * time.Minute):
		return nil, fmt.Errorf("timed out reading tags from %d files", len(paths))
	}
	return records, nil
}

func formatDuration(ms int64) string {
	secs := (ms + 500) / 1000
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
