package pagedfetch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/emporia-game/peddler/internal/emporia"
)

// scriptedFetch hands out manually-settled fetches in issue order.
type scriptedFetch struct {
	mu     sync.Mutex
	calls  []*fetchCall
	notify chan struct{}
}

type fetchCall struct {
	query emporia.PagedQuery
	done  chan fetchOutcome
}

type fetchOutcome struct {
	result *emporia.PagedResult[string]
	err    error
}

func newScriptedFetch() *scriptedFetch {
	return &scriptedFetch{notify: make(chan struct{}, 16)}
}

func (s *scriptedFetch) fn(ctx context.Context, query emporia.PagedQuery) (*emporia.PagedResult[string], error) {
	call := &fetchCall{query: query, done: make(chan fetchOutcome, 1)}
	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()
	s.notify <- struct{}{}
	out := <-call.done
	return out.result, out.err
}

// wait blocks until the nth fetch (0-based) has been issued.
func (s *scriptedFetch) wait(t *testing.T, n int) *fetchCall {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		s.mu.Lock()
		if len(s.calls) > n {
			call := s.calls[n]
			s.mu.Unlock()
			return call
		}
		s.mu.Unlock()
		select {
		case <-s.notify:
		case <-deadline:
			t.Fatalf("fetch %d never issued", n)
		}
	}
}

func page(items ...string) *emporia.PagedResult[string] {
	return &emporia.PagedResult[string]{Items: items, TotalPages: 1, TotalItemsCount: len(items)}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestController_LastIssuedQueryWins(t *testing.T) {
	t.Parallel()

	fetch := newScriptedFetch()
	c := New(fetch.fn, Options{Debounce: time.Hour})
	t.Cleanup(c.Close)

	ctx := context.Background()
	c.SetQuery(ctx, emporia.DefaultPagedQuery("Name").WithPage(2))
	first := fetch.wait(t, 0)

	c.SetQuery(ctx, emporia.DefaultPagedQuery("Name").WithPage(3))
	second := fetch.wait(t, 1)

	// The newer fetch settles first; the older one must then be discarded.
	second.done <- fetchOutcome{result: page("page-three")}
	waitFor(t, "second result", func() bool { return c.Result() != nil })

	first.done <- fetchOutcome{result: page("page-two")}
	time.Sleep(20 * time.Millisecond)

	if got := c.Result().Items[0]; got != "page-three" {
		t.Fatalf("result = %q, want the later query's page to survive", got)
	}
	if c.State() != StateLoaded {
		t.Fatalf("state = %v, want StateLoaded", c.State())
	}
}

func TestController_InitialLoadDebouncesSpinner(t *testing.T) {
	t.Parallel()

	fetch := newScriptedFetch()
	c := New(fetch.fn, Options{Debounce: 30 * time.Millisecond})
	t.Cleanup(c.Close)

	c.SetQuery(context.Background(), emporia.DefaultPagedQuery("Name"))
	fetch.wait(t, 0)

	if c.ShowLoading() {
		t.Fatal("ShowLoading = true before the debounce elapsed")
	}
	waitFor(t, "debounced spinner", c.ShowLoading)
}

func TestController_FastInitialLoadNeverShowsSpinner(t *testing.T) {
	t.Parallel()

	fetch := newScriptedFetch()
	c := New(fetch.fn, Options{Debounce: 80 * time.Millisecond})
	t.Cleanup(c.Close)

	c.SetQuery(context.Background(), emporia.DefaultPagedQuery("Name"))
	fetch.wait(t, 0).done <- fetchOutcome{result: page("fast")}
	waitFor(t, "result", func() bool { return c.Result() != nil })

	time.Sleep(120 * time.Millisecond)
	if c.ShowLoading() {
		t.Fatal("ShowLoading = true after a fast response")
	}
}

func TestController_LateDebounceFireAfterSettleStaysQuiet(t *testing.T) {
	t.Parallel()

	fetch := newScriptedFetch()
	c := New(fetch.fn, Options{Debounce: time.Hour})
	t.Cleanup(c.Close)

	c.SetQuery(context.Background(), emporia.DefaultPagedQuery("Name"))
	fetch.wait(t, 0).done <- fetchOutcome{result: page("done")}
	waitFor(t, "result", func() bool { return c.Result() != nil })

	// timer.Stop can lose to an already-spawned callback, so the callback may
	// run after the fetch settled. Invoke it directly for that interleaving.
	c.debounceFired(1)

	if c.ShowLoading() {
		t.Fatal("ShowLoading = true after the fetch already settled")
	}
	if c.State() != StateLoaded {
		t.Fatalf("state = %v, want StateLoaded", c.State())
	}
}

func TestController_RefetchShowsRefreshingOverOldData(t *testing.T) {
	t.Parallel()

	fetch := newScriptedFetch()
	c := New(fetch.fn, Options{Debounce: time.Hour})
	t.Cleanup(c.Close)

	ctx := context.Background()
	c.SetQuery(ctx, emporia.DefaultPagedQuery("Name"))
	fetch.wait(t, 0).done <- fetchOutcome{result: page("old")}
	waitFor(t, "first result", func() bool { return c.Result() != nil })

	c.Refresh(ctx)
	fetch.wait(t, 1)

	if c.State() != StateRefreshing {
		t.Fatalf("state = %v, want StateRefreshing", c.State())
	}
	if c.ShowLoading() {
		t.Fatal("ShowLoading = true during a refetch with data on screen")
	}
	if got := c.Result().Items[0]; got != "old" {
		t.Fatalf("result = %q, want old data kept while refetching", got)
	}
}

func TestController_FailedRefetchKeepsOldData(t *testing.T) {
	t.Parallel()

	fetch := newScriptedFetch()
	banners := make(chan string, 4)
	c := New(fetch.fn, Options{
		Debounce: time.Hour,
		OnError:  func(msg string) { banners <- msg },
	})
	t.Cleanup(c.Close)

	ctx := context.Background()
	c.SetQuery(ctx, emporia.DefaultPagedQuery("Name"))
	fetch.wait(t, 0).done <- fetchOutcome{result: page("kept")}
	waitFor(t, "first result", func() bool { return c.Result() != nil })

	c.Refresh(ctx)
	fetch.wait(t, 1).done <- fetchOutcome{err: &emporia.Problem{Status: 500, Title: "Server exploded"}}
	waitFor(t, "error", func() bool { return c.Err() != "" })

	if got := c.Result().Items[0]; got != "kept" {
		t.Fatalf("result = %q, want previous page retained after error", got)
	}
	if c.Err() != "Server exploded" {
		t.Fatalf("Err = %q, want problem title", c.Err())
	}
	select {
	case banner := <-banners:
		if banner != "Server exploded" {
			t.Fatalf("OnError got %q, want problem title", banner)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("OnError was never invoked")
	}

	// The next successful fetch clears the banner.
	c.Refresh(ctx)
	fetch.wait(t, 2).done <- fetchOutcome{result: page("fresh")}
	waitFor(t, "recovery", func() bool { return c.Err() == "" && c.Result().Items[0] == "fresh" })
}

func TestController_CloseDiscardsInFlightWork(t *testing.T) {
	t.Parallel()

	fetch := newScriptedFetch()
	c := New(fetch.fn, Options{Debounce: time.Hour})

	c.SetQuery(context.Background(), emporia.DefaultPagedQuery("Name"))
	call := fetch.wait(t, 0)

	c.Close()
	call.done <- fetchOutcome{result: page("late")}
	time.Sleep(20 * time.Millisecond)

	if c.Result() != nil {
		t.Fatal("closed controller accepted a late result")
	}
}

func TestMessageFor(t *testing.T) {
	if got := messageFor(&emporia.Problem{Title: "No balance"}); got != "No balance" {
		t.Fatalf("messageFor = %q, want problem title", got)
	}
	if got := messageFor(context.Canceled); got != "context canceled" {
		t.Fatalf("messageFor = %q, want wrapped error text", got)
	}
}
