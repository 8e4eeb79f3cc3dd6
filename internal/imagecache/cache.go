package imagecache

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

const (
	maxImageBytes  = 4 << 20
	requestTimeout = 10 * time.Second
)

// Handle is a loan of one cached image. The cache retains ownership: a handle
// becomes invalid once the cache replaces or clears its entry.
type Handle struct {
	url  string
	data []byte

	mu     sync.Mutex
	closed bool
}

// URL returns the absolute resource URL the handle was fetched from.
func (h *Handle) URL() string { return h.url }

// Len returns the image size in bytes.
func (h *Handle) Len() int { return len(h.data) }

// Bytes returns the image bytes. The slice must not be mutated or retained
// past the handle's lifetime.
func (h *Handle) Bytes() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	return h.data
}

func (h *Handle) close() {
	h.mu.Lock()
	h.closed = true
	h.data = nil
	h.mu.Unlock()
}

type entry struct {
	handle       *Handle
	etag         string
	lastModified string
}

// Cache is a process-wide byte cache keyed by absolute URL. Safe for the
// fan-out of near-simultaneous thumbnail fetches a list page produces.
type Cache struct {
	http *http.Client

	mu      sync.Mutex
	entries map[string]*entry
}

// New builds an empty Cache. A nil client selects a default with a timeout.
func New(client *http.Client) *Cache {
	if client == nil {
		client = &http.Client{Timeout: requestTimeout}
	}
	return &Cache{http: client, entries: make(map[string]*entry)}
}

// Fetch returns a handle for the image at url, issuing a conditional request
// when a cached entry exists. A 304 reuses the existing handle without new
// bytes; a 200 replaces the entry and releases the old handle. Any other
// outcome returns an error and leaves the cache untouched, so the caller can
// fall back to a placeholder.
func (c *Cache) Fetch(ctx context.Context, url, token string) (*Handle, error) {
	c.mu.Lock()
	cached := c.entries[url]
	var etag, lastModified string
	if cached != nil {
		etag = cached.etag
		lastModified = cached.lastModified
	}
	c.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create image request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastModified != "" {
		req.Header.Set("If-Modified-Since", lastModified)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotModified && cached != nil:
		return cached.handle, nil
	case resp.StatusCode == http.StatusOK:
		data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
		if err != nil {
			return nil, fmt.Errorf("read image body: %w", err)
		}
		handle := &Handle{url: url, data: data}
		fresh := &entry{
			handle:       handle,
			etag:         resp.Header.Get("ETag"),
			lastModified: resp.Header.Get("Last-Modified"),
		}

		c.mu.Lock()
		old := c.entries[url]
		c.entries[url] = fresh
		c.mu.Unlock()

		// Release the displaced bytes so repeated uploads of the same
		// logical picture don't accumulate.
		if old != nil && old.handle != handle {
			old.handle.close()
		}
		return handle, nil
	default:
		return nil, fmt.Errorf("image fetch returned status %d", resp.StatusCode)
	}
}

// Clear releases every cached handle and empties the cache. Called at logout
// so a later login under a different identity never sees stale pictures.
func (c *Cache) Clear() {
	c.mu.Lock()
	entries := c.entries
	c.entries = make(map[string]*entry)
	c.mu.Unlock()

	for _, e := range entries {
		e.handle.close()
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
