package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

// PlacementKind says which holder a file sat in when the session was
// saved.
type PlacementKind string

const (
	PlacementUnclustered PlacementKind = "unclustered"
	PlacementCluster     PlacementKind = "cluster"
	PlacementAlbum       PlacementKind = "album"
	PlacementTrack       PlacementKind = "track"
	PlacementNonAlbum    PlacementKind = "nat"
)

// FilePlacement records one file's position in the workspace.
type FilePlacement struct {
	Path string
	Kind PlacementKind

	// AlbumID is set for album and track placements.
	AlbumID string
	// RecordingID pins track and non-album placements to a recording.
	RecordingID string
	// ClusterName and ClusterArtist identify a cluster placement.
	ClusterName   string
	ClusterArtist string

	// Overrides holds the file's unsaved tag edits, re-applied after
	// the file lands in its holder on restore.
	Overrides map[string][]string
}

// Snapshot is one saved workspace layout.
type Snapshot struct {
	// Albums lists every loaded release id, including albums with no
	// files yet.
	Albums []string
	Files  []FilePlacement
	// SavedAt is set by the store on save.
	SavedAt time.Time
}

// schemaVersion is bumped on incompatible schema changes; an old
// database must be deleted rather than migrated.
const schemaVersion = 1

var ErrSchemaMismatch = errors.New("session: schema version mismatch")

// ErrLocked reports that another process holds the session database.
var ErrLocked = errors.New("session: database locked by another process")

const schemaSQL = `
CREATE TABLE schema_version (
    version INTEGER NOT NULL
);

CREATE TABLE session_meta (
    id       INTEGER PRIMARY KEY CHECK (id = 1),
    saved_at TEXT NOT NULL
);

CREATE TABLE session_albums (
    album_id TEXT PRIMARY KEY
);

CREATE TABLE session_files (
    path           TEXT PRIMARY KEY,
    kind           TEXT NOT NULL,
    album_id       TEXT NOT NULL DEFAULT '',
    recording_id   TEXT NOT NULL DEFAULT '',
    cluster_name   TEXT NOT NULL DEFAULT '',
    cluster_artist TEXT NOT NULL DEFAULT '',
    overrides      TEXT NOT NULL DEFAULT ''
);
`

// Store manages session persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	lock *flock.Flock
	path string
}

// Open initializes or connects to the session database, holding an
// exclusive flock sidecar for the store's lifetime.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure session dir: %w", err)
	}

	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire session lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open session db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, lock: lock, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	return store, nil
}

// Path returns the database location.
func (s *Store) Path() string { return s.path }

// Close closes the database and releases the lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var err error
	if s.db != nil {
		err = s.db.Close()
	}
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); err == nil {
			err = unlockErr
		}
	}
	return err
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin schema tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()
		if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		return tx.Commit()
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

// Save replaces the stored layout with the given snapshot.
func (s *Store) Save(ctx context.Context, snap *Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{
		"DELETE FROM session_meta",
		"DELETE FROM session_albums",
		"DELETE FROM session_files",
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
	}

	savedAt := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO session_meta (id, saved_at) VALUES (1, ?)", savedAt); err != nil {
		return fmt.Errorf("record save time: %w", err)
	}
	for _, id := range snap.Albums {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO session_albums (album_id) VALUES (?)", id); err != nil {
			return fmt.Errorf("insert album %s: %w", id, err)
		}
	}
	for _, fp := range snap.Files {
		overrides := ""
		if len(fp.Overrides) > 0 {
			encoded, err := json.Marshal(fp.Overrides)
			if err != nil {
				return fmt.Errorf("encode overrides for %s: %w", fp.Path, err)
			}
			overrides = string(encoded)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO session_files
			     (path, kind, album_id, recording_id, cluster_name, cluster_artist, overrides)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			fp.Path, string(fp.Kind), fp.AlbumID, fp.RecordingID,
			fp.ClusterName, fp.ClusterArtist, overrides); err != nil {
			return fmt.Errorf("insert file %s: %w", fp.Path, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Load reads the stored layout. An empty database yields an empty
// snapshot, not an error.
func (s *Store) Load(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}

	var savedAt string
	err := s.db.QueryRowContext(ctx, "SELECT saved_at FROM session_meta WHERE id = 1").Scan(&savedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return snap, nil
	case err != nil:
		return nil, fmt.Errorf("read save time: %w", err)
	}
	if ts, parseErr := time.Parse(time.RFC3339Nano, savedAt); parseErr == nil {
		snap.SavedAt = ts
	}

	rows, err := s.db.QueryContext(ctx, "SELECT album_id FROM session_albums ORDER BY album_id")
	if err != nil {
		return nil, fmt.Errorf("read albums: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan album: %w", err)
		}
		snap.Albums = append(snap.Albums, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate albums: %w", err)
	}

	fileRows, err := s.db.QueryContext(ctx,
		`SELECT path, kind, album_id, recording_id, cluster_name, cluster_artist, overrides
		 FROM session_files ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("read files: %w", err)
	}
	defer fileRows.Close()
	for fileRows.Next() {
		var fp FilePlacement
		var kind, overrides string
		if err := fileRows.Scan(&fp.Path, &kind, &fp.AlbumID, &fp.RecordingID,
			&fp.ClusterName, &fp.ClusterArtist, &overrides); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		fp.Kind = PlacementKind(kind)
		if overrides != "" {
			if err := json.Unmarshal([]byte(overrides), &fp.Overrides); err != nil {
				return nil, fmt.Errorf("decode overrides for %s: %w", fp.Path, err)
			}
		}
		snap.Files = append(snap.Files, fp)
	}
	if err := fileRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}
	return snap, nil
}
