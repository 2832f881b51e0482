package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"log/slog"

	"tagger/internal/logging"
)

// DefaultBaseURL is the public MusicBrainz web service root.
const DefaultBaseURL = "https://musicbrainz.org/ws/2"

// minRequestGap is the polite rate limit the public service asks for.
const minRequestGap = time.Second

// WSClientOptions configure a web service client.
type WSClientOptions struct {
	// BaseURL defaults to the public MusicBrainz service.
	BaseURL string
	// UserAgent identifies this client to the service; required by the
	// public instance's terms.
	UserAgent string
	// HTTPClient defaults to a client with a 30 second timeout.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// WSClient implements Client against a MusicBrainz-compatible web
// service. Requests run on a single worker goroutine, rate limited to
// one per second; priority requests jump the queue.
type WSClient struct {
	base      string
	userAgent string
	http      *http.Client
	logger    *slog.Logger

	mu       sync.Mutex
	queue    []*wsRequest
	wake     chan struct{}
	cancel   context.CancelFunc
	done     chan struct{}
	stopped  bool
	lastSent time.Time
}

type wsRequest struct {
	path     string
	params   url.Values
	priority bool
	deliver  func(body []byte, status int, err error)

	mu        sync.Mutex
	cancelled bool
}

func (r *wsRequest) Cancel() {
	r.mu.Lock()
	r.cancelled = true
	r.mu.Unlock()
}

func (r *wsRequest) isCancelled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancelled
}

// NewWSClient builds and starts a web service client. Close releases
// its worker.
func NewWSClient(opts WSClientOptions) *WSClient {
	base := strings.TrimSuffix(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &WSClient{
		base:      base,
		userAgent: opts.UserAgent,
		http:      httpClient,
		logger:    logging.NewComponentLogger(logger, "catalog"),
		wake:      make(chan struct{}, 1),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	go c.run(ctx)
	return c
}

// Close stops the worker. Queued requests are dropped without
// delivering their callbacks.
func (c *WSClient) Close() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	c.mu.Unlock()
	c.cancel()
	<-c.done
}

func (c *WSClient) enqueue(req *wsRequest) {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	if req.priority {
		c.queue = append([]*wsRequest{req}, c.queue...)
	} else {
		c.queue = append(c.queue, req)
	}
	c.mu.Unlock()
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *WSClient) next() *wsRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) == 0 {
		return nil
	}
	req := c.queue[0]
	c.queue = c.queue[1:]
	return req
}

func (c *WSClient) run(ctx context.Context) {
	defer close(c.done)
	for {
		req := c.next()
		if req == nil {
			select {
			case <-ctx.Done():
				return
			case <-c.wake:
				continue
			}
		}
		if req.isCancelled() {
			continue
		}
		c.throttle(ctx)
		if ctx.Err() != nil {
			return
		}
		body, status, err := c.do(ctx, req)
		if req.isCancelled() {
			continue
		}
		req.deliver(body, status, err)
	}
}

func (c *WSClient) throttle(ctx context.Context) {
	c.mu.Lock()
	wait := minRequestGap - time.Since(c.lastSent)
	c.mu.Unlock()
	if wait > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
	c.mu.Lock()
	c.lastSent = time.Now()
	c.mu.Unlock()
}

func (c *WSClient) do(ctx context.Context, req *wsRequest) ([]byte, int, error) {
	params := req.params
	if params == nil {
		params = url.Values{}
	}
	params.Set("fmt", "json")
	endpoint := c.base + req.path + "?" + params.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch %s: %w", req.path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	c.logger.Debug("request finished",
		slog.String("path", req.path), slog.Int("status", resp.StatusCode))
	return body, resp.StatusCode, nil
}

func includeParam(includes []Include) string {
	parts := make([]string, 0, len(includes))
	for _, inc := range includes {
		parts = append(parts, string(inc))
	}
	return strings.Join(parts, "+")
}

func statusError(path string, status int) error {
	if status == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return fmt.Errorf("catalog request %s failed with status %d", path, status)
}

// FetchReleaseByID implements Client.
func (c *WSClient) FetchReleaseByID(id string, done ReleaseCallback, opts FetchOptions) Task {
	path := "/release/" + url.PathEscape(id)
	params := url.Values{}
	if inc := includeParam(opts.Include); inc != "" {
		params.Set("inc", inc)
	}
	req := &wsRequest{
		path:     path,
		params:   params,
		priority: opts.Priority,
		deliver: func(body []byte, status int, err error) {
			if err != nil {
				done(nil, err)
				return
			}
			if status != http.StatusOK {
				done(nil, statusError(path, status))
				return
			}
			var doc wsRelease
			if err := json.Unmarshal(body, &doc); err != nil {
				done(nil, fmt.Errorf("decode release %s: %w", id, err))
				return
			}
			done(doc.toRelease(), nil)
		},
	}
	c.enqueue(req)
	return req
}

// FetchRecordingByID implements Client.
func (c *WSClient) FetchRecordingByID(id string, done RecordingCallback, opts FetchOptions) Task {
	path := "/recording/" + url.PathEscape(id)
	params := url.Values{}
	if inc := includeParam(opts.Include); inc != "" {
		params.Set("inc", inc)
	}
	req := &wsRequest{
		path:     path,
		params:   params,
		priority: opts.Priority,
		deliver: func(body []byte, status int, err error) {
			if err != nil {
				done(nil, err)
				return
			}
			if status != http.StatusOK {
				done(nil, statusError(path, status))
				return
			}
			var doc wsRecording
			if err := json.Unmarshal(body, &doc); err != nil {
				done(nil, fmt.Errorf("decode recording %s: %w", id, err))
				return
			}
			rec := doc.toRecording()
			done(&rec, nil)
		},
	}
	c.enqueue(req)
	return req
}

// FindReleases implements Client.
func (c *WSClient) FindReleases(done SearchCallback, query Query) Task {
	var clauses []string
	if query.Release != "" {
		clauses = append(clauses, fmt.Sprintf("release:%q", query.Release))
	}
	if query.Artist != "" {
		clauses = append(clauses, fmt.Sprintf("artist:%q", query.Artist))
	}
	if query.Tracks > 0 {
		clauses = append(clauses, fmt.Sprintf("tracks:%d", query.Tracks))
	}
	limit := query.Limit
	if limit <= 0 {
		limit = 25
	}
	params := url.Values{}
	params.Set("query", strings.Join(clauses, " AND "))
	params.Set("limit", fmt.Sprintf("%d", limit))

	req := &wsRequest{
		path:   "/release",
		params: params,
		deliver: func(body []byte, status int, err error) {
			if err != nil {
				done(nil, err)
				return
			}
			if status != http.StatusOK {
				done(nil, statusError("/release", status))
				return
			}
			var doc wsSearchResult
			if err := json.Unmarshal(body, &doc); err != nil {
				done(nil, fmt.Errorf("decode search result: %w", err))
				return
			}
			results := make([]*Release, 0, len(doc.Releases))
			for i := range doc.Releases {
				results = append(results, doc.Releases[i].toRelease())
			}
			done(results, nil)
		},
	}
	c.enqueue(req)
	return req
}
