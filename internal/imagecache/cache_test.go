package imagecache

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// imageServer serves a mutable image with ETag revalidation and records the
// conditional headers it saw.
type imageServer struct {
	mu      sync.Mutex
	body    []byte
	etag    string
	gotAuth string
	gotINM  []string
	hits    int
}

func (s *imageServer) handler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hits++
	s.gotAuth = r.Header.Get("Authorization")
	inm := r.Header.Get("If-None-Match")
	s.gotINM = append(s.gotINM, inm)

	if inm != "" && inm == s.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", s.etag)
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(s.body)
}

func TestCache_RevalidationReusesTheSameHandle(t *testing.T) {
	t.Parallel()

	srv := &imageServer{body: []byte("png-bytes-v1"), etag: `"v1"`}
	server := httptest.NewServer(http.HandlerFunc(srv.handler))
	t.Cleanup(server.Close)

	cache := New(nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	first, err := cache.Fetch(ctx, server.URL+"/avatar.png", "tok")
	if err != nil {
		t.Fatalf("first Fetch returned error: %v", err)
	}
	if !bytes.Equal(first.Bytes(), []byte("png-bytes-v1")) {
		t.Fatalf("first bytes = %q, want body", first.Bytes())
	}

	second, err := cache.Fetch(ctx, server.URL+"/avatar.png", "tok")
	if err != nil {
		t.Fatalf("second Fetch returned error: %v", err)
	}
	// Identity, not just equality: unchanged images must not reallocate.
	if second != first {
		t.Fatal("304 response produced a new handle, want the cached one")
	}

	srv.mu.Lock()
	if srv.gotAuth != "Bearer tok" {
		t.Fatalf("Authorization = %q, want Bearer tok", srv.gotAuth)
	}
	if len(srv.gotINM) != 2 || srv.gotINM[0] != "" || srv.gotINM[1] != `"v1"` {
		t.Fatalf("If-None-Match sequence = %q, want none then etag", srv.gotINM)
	}
	srv.mu.Unlock()
}

func TestCache_ChangedImageReplacesAndReleasesOldHandle(t *testing.T) {
	t.Parallel()

	srv := &imageServer{body: []byte("v1"), etag: `"v1"`}
	server := httptest.NewServer(http.HandlerFunc(srv.handler))
	t.Cleanup(server.Close)

	cache := New(nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	old, err := cache.Fetch(ctx, server.URL+"/avatar.png", "")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	srv.mu.Lock()
	srv.body = []byte("v2")
	srv.etag = `"v2"`
	srv.mu.Unlock()

	fresh, err := cache.Fetch(ctx, server.URL+"/avatar.png", "")
	if err != nil {
		t.Fatalf("Fetch after change returned error: %v", err)
	}
	if fresh == old {
		t.Fatal("changed image returned the stale handle")
	}
	if !bytes.Equal(fresh.Bytes(), []byte("v2")) {
		t.Fatalf("fresh bytes = %q, want v2", fresh.Bytes())
	}
	if old.Bytes() != nil {
		t.Fatal("displaced handle still holds bytes, want released")
	}
}

func TestCache_ErrorLeavesCacheUntouched(t *testing.T) {
	t.Parallel()

	var failing bool
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		fail := failing
		mu.Unlock()
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write([]byte("v1"))
	}))
	t.Cleanup(server.Close)

	cache := New(nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	handle, err := cache.Fetch(ctx, server.URL+"/a.png", "")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	mu.Lock()
	failing = true
	mu.Unlock()

	if _, err := cache.Fetch(ctx, server.URL+"/a.png", ""); err == nil {
		t.Fatal("Fetch returned nil error for a 500")
	}
	if handle.Bytes() == nil {
		t.Fatal("cached handle was released by a failed revalidation")
	}
	if cache.Len() != 1 {
		t.Fatalf("cache Len = %d, want entry kept", cache.Len())
	}
}

func TestCache_ClearReleasesEverything(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("bytes"))
	}))
	t.Cleanup(server.Close)

	cache := New(nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	a, err := cache.Fetch(ctx, server.URL+"/a.png", "")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	b, err := cache.Fetch(ctx, server.URL+"/b.png", "")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	cache.Clear()

	if cache.Len() != 0 {
		t.Fatalf("Len = %d after Clear, want 0", cache.Len())
	}
	if a.Bytes() != nil || b.Bytes() != nil {
		t.Fatal("handles still hold bytes after Clear")
	}
}
