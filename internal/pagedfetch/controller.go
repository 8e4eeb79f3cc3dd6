package pagedfetch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/emporia-game/peddler/internal/emporia"
)

// State describes where a controller is in its loading lifecycle.
type State int

const (
	// StateInitial means no fetch has ever completed.
	StateInitial State = iota
	// StateRefreshing means data exists and a fetch for a new query is in
	// flight.
	StateRefreshing
	// StateLoaded means the most recent fetch has settled, successfully or
	// not.
	StateLoaded
)

// FetchFunc loads one page for the given query.
type FetchFunc[T any] func(ctx context.Context, query emporia.PagedQuery) (*emporia.PagedResult[T], error)

const defaultDebounce = 200 * time.Millisecond

// Options configure a Controller. All callbacks are optional and are invoked
// outside the controller's lock.
type Options struct {
	// Debounce is how long an initial fetch may run before ShowLoading flips
	// true. Zero selects the 200ms default.
	Debounce time.Duration
	// Notify fires after any observable state change, e.g. to repaint a view.
	Notify func()
	// OnLoading mirrors the initial-fetch loading phase for a page-wide flag.
	OnLoading func(loading bool)
	// OnError receives the banner message for a failed fetch.
	OnError func(msg string)
}

// Controller owns the fetch lifecycle for one list view. The query object is
// the only fetch trigger: SetQuery issues a fetch tagged with a generation,
// and a completion whose generation has been superseded is discarded, so the
// last-issued query always wins regardless of network completion order.
type Controller[T any] struct {
	fetch FetchFunc[T]
	opts  Options

	mu          sync.Mutex
	query       emporia.PagedQuery
	result      *emporia.PagedResult[T]
	state       State
	showLoading bool
	errMsg      string
	gen         uint64
	closed      bool
}

// New builds a Controller around fetch. No fetch is issued until SetQuery.
func New[T any](fetch FetchFunc[T], opts Options) *Controller[T] {
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	return &Controller[T]{fetch: fetch, opts: opts, state: StateInitial}
}

// SetQuery replaces the query and issues a fetch for it. Callers construct
// new query values through the PagedQuery helpers; the controller never
// interprets individual fields.
func (c *Controller[T]) SetQuery(ctx context.Context, query emporia.PagedQuery) {
	c.issue(ctx, query)
}

// Refresh re-issues the current query.
func (c *Controller[T]) Refresh(ctx context.Context) {
	c.mu.Lock()
	query := c.query
	c.mu.Unlock()
	c.issue(ctx, query)
}

func (c *Controller[T]) issue(ctx context.Context, query emporia.PagedQuery) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.gen++
	gen := c.gen
	c.query = query
	c.errMsg = ""

	initial := c.state == StateInitial
	if !initial {
		// The view already has content to show underneath, so the debounce
		// is skipped in favor of an immediate "updating" indicator.
		c.state = StateRefreshing
	}
	c.mu.Unlock()

	var timer *time.Timer
	if initial {
		if c.opts.OnLoading != nil {
			c.opts.OnLoading(true)
		}
		timer = time.AfterFunc(c.opts.Debounce, func() { c.debounceFired(gen) })
	}
	c.notify()

	go func() {
		result, err := c.fetch(ctx, query)
		if timer != nil {
			timer.Stop()
		}
		c.settle(gen, initial, result, err)
	}()
}

// debounceFired flips the loading flag if the initial fetch for gen is still
// unresolved when the debounce elapses. The timer is only ever armed for
// initial fetches, so any state other than StateInitial means this generation
// already settled and timer.Stop lost the race with the callback being
// spawned; flipping the flag then would leave a spinner over loaded data.
func (c *Controller[T]) debounceFired(gen uint64) {
	c.mu.Lock()
	stale := c.closed || c.gen != gen || c.state != StateInitial
	if !stale {
		c.showLoading = true
	}
	c.mu.Unlock()
	if !stale {
		c.notify()
	}
}

func (c *Controller[T]) settle(gen uint64, initial bool, result *emporia.PagedResult[T], err error) {
	c.mu.Lock()
	if c.closed || c.gen != gen {
		// A later query was issued while this fetch was in flight; its
		// outcome owns the state now.
		c.mu.Unlock()
		return
	}

	var errMsg string
	if err != nil {
		errMsg = messageFor(err)
		// Previously loaded data stays visible under the error banner.
		c.errMsg = errMsg
	} else {
		c.result = result
	}
	c.state = StateLoaded
	c.showLoading = false
	c.mu.Unlock()

	if initial && c.opts.OnLoading != nil {
		c.opts.OnLoading(false)
	}
	if errMsg != "" && c.opts.OnError != nil {
		c.opts.OnError(errMsg)
	}
	c.notify()
}

func (c *Controller[T]) notify() {
	if c.opts.Notify != nil {
		c.opts.Notify()
	}
}

// Close makes the controller inert: in-flight completions and timers are
// discarded. Safe to call when the owning view goes away mid-fetch.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

// Query returns the current query value.
func (c *Controller[T]) Query() emporia.PagedQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// Result returns the most recently loaded page, or nil before the first
// successful fetch.
func (c *Controller[T]) Result() *emporia.PagedResult[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// State returns the loading lifecycle state.
func (c *Controller[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ShowLoading reports whether the view should render a loading state: true
// only when an initial fetch has outlived the debounce window.
func (c *Controller[T]) ShowLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.showLoading
}

// Err returns the banner message for the most recent failed fetch, or "".
func (c *Controller[T]) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

func messageFor(err error) string {
	var problem *emporia.Problem
	if errors.As(err, &problem) && problem.Title != "" {
		return problem.Title
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return "Failed to load data"
}
