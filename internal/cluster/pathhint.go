package cluster

import (
	"path/filepath"
	"regexp"
	"strings"
)

var discDirPattern = regexp.MustCompile(`(?i)\b(?:CD|DVD|Disc)\s*\d+\b`)

// AlbumArtistFromPath fills a missing album name (and possibly artist)
// from the file's directory structure. Embedded tags always win: when
// album is already set the inputs pass through unchanged. The heuristic
// assumes artist/album/file or "artist - album"/file layouts, skipping a
// trailing per-disc directory.
func AlbumArtistFromPath(filename, album, artist string) (string, string) {
	if album != "" {
		return album, artist
	}
	dir := strings.TrimLeft(filepath.ToSlash(filepath.Dir(filename)), "/")
	dirs := strings.Split(dir, "/")
	if len(dirs) > 0 && discDirPattern.MatchString(dirs[len(dirs)-1]) {
		dirs = dirs[:len(dirs)-1]
	}
	if len(dirs) == 0 {
		return album, artist
	}
	album = dirs[len(dirs)-1]
	if strings.Contains(album, " - ") {
		parts := strings.SplitN(album, " - ", 2)
		album = parts[1]
		if artist == "" {
			artist = parts[0]
		}
	} else if artist == "" && len(dirs) >= 2 {
		artist = dirs[len(dirs)-2]
	}
	return album, artist
}
