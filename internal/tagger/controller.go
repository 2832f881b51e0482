package tagger

import (
	"context"
	"errors"
	"fmt"

	"log/slog"

	"tagger/internal/catalog"
	"tagger/internal/cluster"
	"tagger/internal/config"
	"tagger/internal/dispatch"
	"tagger/internal/events"
	"tagger/internal/file"
	"tagger/internal/logging"
	"tagger/internal/release"
	"tagger/internal/similarity"
)

// Options configure a controller. Config, Client, and Codec are
// required; the rest default to quiet implementations.
type Options struct {
	Config *config.Config
	Logger *slog.Logger
	Client catalog.Client
	Codec  file.Codec
	Events events.Sink
	Hooks  *release.Hooks
}

// Controller is the workspace root. It owns every registry and the
// control loop all mutations run on.
type Controller struct {
	cfg    *config.Config
	logger *slog.Logger
	loop   *dispatch.Loop
	client catalog.Client
	codec  file.Codec
	events events.Sink
	hooks  *release.Hooks
	env    *release.Env

	files         map[string]*file.Record
	albums        map[string]*release.Album
	redirects     map[string]string
	releaseGroups map[string]*release.ReleaseGroup
	clusters      []*cluster.Cluster
	unclustered   *cluster.Cluster
	nat           *release.NATAlbum
}

// New builds an idle controller. Call Start before submitting work.
func New(opts Options) (*Controller, error) {
	if opts.Config == nil {
		return nil, errors.New("tagger: config is required")
	}
	if opts.Client == nil {
		return nil, errors.New("tagger: catalog client is required")
	}
	if opts.Codec == nil {
		return nil, errors.New("tagger: codec is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	sink := opts.Events
	if sink == nil {
		sink = events.Nop()
	}
	hooks := opts.Hooks
	if hooks == nil {
		hooks = release.NewHooks()
	}

	c := &Controller{
		cfg:           opts.Config,
		logger:        logging.NewComponentLogger(logger, "tagger"),
		loop:          dispatch.New(logger),
		client:        opts.Client,
		codec:         opts.Codec,
		events:        sink,
		hooks:         hooks,
		files:         make(map[string]*file.Record),
		albums:        make(map[string]*release.Album),
		redirects:     make(map[string]string),
		releaseGroups: make(map[string]*release.ReleaseGroup),
	}
	c.unclustered = cluster.New("Unclustered Files", "", true)
	c.env = &release.Env{
		Config:   opts.Config,
		Client:   opts.Client,
		Events:   sink,
		Logger:   logger,
		Hooks:    hooks,
		Registry: c,
		Scorer:   similarity.Score,
		Post:     func(fn func()) error { return c.loop.Post(fn) },
	}
	return c, nil
}

// Start launches the control loop.
func (c *Controller) Start(ctx context.Context) error {
	return c.loop.Start(ctx)
}

// Stop cancels in-flight loads, drops pending continuations, and shuts
// the control loop down. The object graph must not be used afterwards.
func (c *Controller) Stop() {
	_ = c.loop.Post(func() {
		for _, a := range c.albums {
			a.StopLoading()
		}
		for _, r := range c.files {
			r.DropWaiters()
		}
	})
	c.loop.Stop()
}

// Post schedules fn on the control goroutine.
func (c *Controller) Post(fn func()) error { return c.loop.Post(fn) }

// PostWait runs fn on the control goroutine and waits for it. Must not
// be called from the control goroutine itself.
func (c *Controller) PostWait(fn func()) error { return c.loop.PostWait(fn) }

// Env exposes the shared collaborator bundle, mainly for tests and
// hook implementations.
func (c *Controller) Env() *release.Env { return c.env }

// Unclustered returns the pool of files not yet clustered or assigned.
func (c *Controller) Unclustered() *cluster.Cluster { return c.unclustered }

// Clusters returns the current non-special clusters.
func (c *Controller) Clusters() []*cluster.Cluster {
	cp := make([]*cluster.Cluster, len(c.clusters))
	copy(cp, c.clusters)
	return cp
}

// Albums returns the registered albums, NAT pseudo-album included.
func (c *Controller) Albums() []*release.Album {
	out := make([]*release.Album, 0, len(c.albums))
	for _, a := range c.albums {
		out = append(out, a)
	}
	return out
}

// FileByPath returns the registered record for a path, or nil.
func (c *Controller) FileByPath(path string) *file.Record {
	return c.files[path]
}

// release.Registry implementation. Called on the control goroutine.

func (c *Controller) AlbumByID(id string) *release.Album {
	return c.albums[c.resolveRedirect(id)]
}

func (c *Controller) RekeyAlbum(a *release.Album, newID string) {
	delete(c.albums, a.ID)
	c.redirects[a.ID] = newID
	a.ID = newID
	c.albums[newID] = a
}

func (c *Controller) RemoveAlbum(a *release.Album) {
	c.removeAlbum(a)
}

func (c *Controller) ReleaseGroupByID(id string) *release.ReleaseGroup {
	rg, ok := c.releaseGroups[id]
	if !ok {
		rg = release.NewReleaseGroup(id)
		c.releaseGroups[id] = rg
	}
	return rg
}

func (c *Controller) MoveFileToNAT(r *file.Record, recordingID string) {
	c.natAlbum().MoveFile(r, recordingID)
}

func (c *Controller) natAlbum() *release.NATAlbum {
	if c.nat == nil {
		c.nat = release.NewNATAlbum(c.env)
		c.albums[release.NATAlbumID] = c.nat.Album
		c.events.AlbumAdded(release.NATAlbumID)
	}
	return c.nat
}

func (c *Controller) resolveRedirect(id string) string {
	seen := 0
	for {
		next, ok := c.redirects[id]
		if !ok {
			return id
		}
		id = next
		// A redirect cycle would be a catalog bug; bail out.
		if seen++; seen > 16 {
			return id
		}
	}
}

func (c *Controller) statusf(format string, args ...any) {
	c.events.StatusMessage(fmt.Sprintf(format, args...), 0)
}
