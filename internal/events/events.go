// Package events defines the notification surface the engine emits for
// observers such as a UI layer.
//
// All notifications are fire-and-forget: the engine never waits on a sink
// and sink failures are invisible to it. The default logging sink is
// useful for headless runs; a GUI supplies its own implementation. Extend
// the Sink interface rather than reaching into engine internals for
// update signals.
package events

import (
	"log/slog"
	"time"

	"tagger/internal/logging"
)

// Kind identifies which entity an update notification refers to.
type Kind string

const (
	KindFile    Kind = "file"
	KindTrack   Kind = "track"
	KindAlbum   Kind = "album"
	KindCluster Kind = "cluster"
)

// Sink receives engine notifications. Implementations must be cheap and
// non-blocking; they are invoked on the engine's control goroutine.
type Sink interface {
	AlbumAdded(id string)
	AlbumRemoved(id string)
	ClusterAdded(name, artist string)
	ClusterRemoved(name, artist string)
	ItemUpdated(kind Kind, key string)
	StatusMessage(message string, timeout time.Duration)
}

// Nop returns a sink that ignores everything.
func Nop() Sink {
	return nopSink{}
}

type nopSink struct{}

func (nopSink) AlbumAdded(string)                  {}
func (nopSink) AlbumRemoved(string)                {}
func (nopSink) ClusterAdded(string, string)        {}
func (nopSink) ClusterRemoved(string, string)      {}
func (nopSink) ItemUpdated(Kind, string)           {}
func (nopSink) StatusMessage(string, time.Duration) {}

// NewLogSink returns a sink that mirrors notifications to a logger at
// debug level, with status messages at info.
func NewLogSink(logger *slog.Logger) Sink {
	return &logSink{logger: logging.NewComponentLogger(logger, "events")}
}

type logSink struct {
	logger *slog.Logger
}

func (s *logSink) AlbumAdded(id string) {
	s.logger.Debug("album added", slog.String("album", id))
}

func (s *logSink) AlbumRemoved(id string) {
	s.logger.Debug("album removed", slog.String("album", id))
}

func (s *logSink) ClusterAdded(name, artist string) {
	s.logger.Debug("cluster added", slog.String("album", name), slog.String("artist", artist))
}

func (s *logSink) ClusterRemoved(name, artist string) {
	s.logger.Debug("cluster removed", slog.String("album", name), slog.String("artist", artist))
}

func (s *logSink) ItemUpdated(kind Kind, key string) {
	s.logger.Debug("item updated", slog.String("kind", string(kind)), slog.String("key", key))
}

func (s *logSink) StatusMessage(message string, timeout time.Duration) {
	s.logger.Info(message, slog.Duration("timeout", timeout))
}
