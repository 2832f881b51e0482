package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Matching holds the similarity thresholds and clustering options.
type Matching struct {
	// TrackThreshold is the minimum metadata similarity for a file to be
	// placed on a track instead of the unmatched pool.
	TrackThreshold float64 `toml:"track_threshold"`
	// ClusterThreshold is the minimum token similarity for two names to
	// fall into the same cluster bin.
	ClusterThreshold float64 `toml:"cluster_threshold"`
	// DirectoryHints derives album/artist candidates from path segments
	// when tags are missing.
	DirectoryHints bool `toml:"directory_hints"`
}

// Weights holds the per-field comparison weights used when scoring a
// file against a track.
type Weights struct {
	Title       int `toml:"title"`
	Artist      int `toml:"artist"`
	Album       int `toml:"album"`
	TrackNumber int `toml:"tracknumber"`
	TotalTracks int `toml:"totaltracks"`
	DiscNumber  int `toml:"discnumber"`
	TotalDiscs  int `toml:"totaldiscs"`
}

// Completeness controls which track kinds are excluded from album
// completeness accounting.
type Completeness struct {
	IgnoreVideos  bool `toml:"ignore_videos"`
	IgnorePregap  bool `toml:"ignore_pregap"`
	IgnoreData    bool `toml:"ignore_data"`
	IgnoreSilence bool `toml:"ignore_silence"`
}

// Naming holds user-facing display names.
type Naming struct {
	VariousArtists string `toml:"various_artists"`
	NonAlbum       string `toml:"non_album"`
}

// Lookup selects the optional sub-resources requested with a release.
type Lookup struct {
	Relationships bool `toml:"relationships"`
	Collections   bool `toml:"collections"`
	Tags          bool `toml:"tags"`
	Authenticated bool `toml:"authenticated"`
}

// Metadata holds metadata post-processing toggles.
type Metadata struct {
	// ConvertPunctuation normalizes Unicode punctuation to ASCII after a
	// release is parsed.
	ConvertPunctuation bool `toml:"convert_punctuation"`
}

// Session configures workspace persistence.
type Session struct {
	DatabasePath string `toml:"database_path"`
}

// Logging configures log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config is the root configuration document.
type Config struct {
	Matching     Matching     `toml:"matching"`
	Weights      Weights      `toml:"weights"`
	Completeness Completeness `toml:"completeness"`
	Naming       Naming       `toml:"naming"`
	Lookup       Lookup       `toml:"lookup"`
	Metadata     Metadata     `toml:"metadata"`
	Session      Session      `toml:"session"`
	Logging      Logging      `toml:"logging"`
}

// Default returns the repository defaults.
func Default() *Config {
	return &Config{
		Matching: Matching{
			TrackThreshold:   0.4,
			ClusterThreshold: 0.6,
			DirectoryHints:   true,
		},
		Weights: Weights{
			Title:       22,
			Artist:      6,
			Album:       12,
			TrackNumber: 6,
			TotalTracks: 5,
			DiscNumber:  5,
			TotalDiscs:  4,
		},
		Completeness: Completeness{
			IgnorePregap: true,
			IgnoreData:   true,
		},
		Naming: Naming{
			VariousArtists: "Various Artists",
			NonAlbum:       "[non-album tracks]",
		},
		Session: Session{
			DatabasePath: defaultSessionPath(),
		},
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
	}
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "tagger-session.db"
	}
	return filepath.Join(home, ".local", "share", "tagger", "session.db")
}

// Load reads a TOML file over the defaults. A missing file yields the
// defaults without error; a malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (c *Config) normalize() {
	c.Matching.TrackThreshold = clamp01(c.Matching.TrackThreshold)
	c.Matching.ClusterThreshold = clamp01(c.Matching.ClusterThreshold)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Naming.VariousArtists == "" {
		c.Naming.VariousArtists = "Various Artists"
	}
	if c.Naming.NonAlbum == "" {
		c.Naming.NonAlbum = "[non-album tracks]"
	}
}

// Validate reports configuration errors that cannot be normalized away.
func (c *Config) Validate() error {
	for name, w := range map[string]int{
		"title":       c.Weights.Title,
		"artist":      c.Weights.Artist,
		"album":       c.Weights.Album,
		"tracknumber": c.Weights.TrackNumber,
		"totaltracks": c.Weights.TotalTracks,
		"discnumber":  c.Weights.DiscNumber,
		"totaldiscs":  c.Weights.TotalDiscs,
	} {
		if w < 0 {
			return fmt.Errorf("weights.%s: must not be negative", name)
		}
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
