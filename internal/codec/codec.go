// Package codec adapts an audio tag parsing library to the engine's
// FileCodec collaborator interface.
//
// Reading is backed by dhowden/tag, which covers MP3, MP4, FLAC, and OGG
// containers. Writing is not supported by that library; WriteTags
// returns ErrWriteUnsupported so callers degrade to read-only behavior
// rather than failing the whole workspace.
package codec

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dhowden/tag"

	"tagger/internal/metadata"
)

// ErrWriteUnsupported reports that the backing library cannot write tags.
var ErrWriteUnsupported = errors.New("codec: tag writing not supported")

// TagCodec reads tags from local audio files.
type TagCodec struct{}

// New returns a codec backed by dhowden/tag.
func New() *TagCodec {
	return &TagCodec{}
}

// ReadTags parses the file's embedded tags into a metadata container.
func (c *TagCodec) ReadTags(path string) (*metadata.Container, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	parsed, err := tag.ReadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("read tags %s: %w", path, err)
	}

	m := metadata.New()
	m.Set("title", parsed.Title())
	m.Set("album", parsed.Album())
	m.Set("artist", parsed.Artist())
	m.Set("albumartist", parsed.AlbumArtist())
	m.Set("composer", parsed.Composer())
	m.Set("genre", parsed.Genre())
	if year := parsed.Year(); year > 0 {
		m.Set("date", strconv.Itoa(year))
	}
	if number, total := parsed.Track(); number > 0 {
		m.SetInt("tracknumber", number)
		if total > 0 {
			m.SetInt("totaltracks", total)
		}
	}
	if number, total := parsed.Disc(); number > 0 {
		m.SetInt("discnumber", number)
		if total > 0 {
			m.SetInt("totaldiscs", total)
		}
	}
	if id := parsed.Raw()["musicbrainz_trackid"]; id != nil {
		if s, ok := id.(string); ok {
			m.Set("musicbrainz_recordingid", s)
		}
	}
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	m.Set("~extension", strings.ToLower(ext))
	m.Set("~format", string(parsed.FileType()))
	return m, nil
}

// WriteTags is unsupported by the backing library.
func (c *TagCodec) WriteTags(path string, m *metadata.Container) error {
	return fmt.Errorf("write tags %s: %w", path, ErrWriteUnsupported)
}
