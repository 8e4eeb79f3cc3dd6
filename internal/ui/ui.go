package ui

import (
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/emporia-game/peddler/internal/emporia"
	"github.com/emporia-game/peddler/internal/imagecache"
	"github.com/emporia-game/peddler/internal/session"
	"github.com/emporia-game/peddler/internal/state"
)

// Options configure the UI runtime.
type Options struct {
	Context   context.Context
	Client    *emporia.Client
	Session   *session.Manager
	Images    *imagecache.Cache
	Store     *state.Store
	Logger    *zap.Logger
	PageSize  int
	ThemeName string
	PrefsPath string
}

// Run starts the bubbletea program and blocks until the user quits or the
// context is cancelled.
func Run(opts Options) error {
	if opts.Client == nil || opts.Session == nil {
		return fmt.Errorf("ui requires an api client and session manager")
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Images == nil {
		opts.Images = imagecache.New(nil)
	}
	if opts.Store == nil {
		opts.Store = &state.Store{}
	}

	notify := &notifier{}
	model := newModel(opts, notify)

	program := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithContext(opts.Context),
	)
	notify.bind(program.Send)

	_, err := program.Run()
	return err
}

// notifier bridges the pagedfetch controllers' callbacks into the bubbletea
// message loop. Controllers are built before the program exists, so the send
// function is bound late.
type notifier struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

func (n *notifier) bind(send func(tea.Msg)) {
	n.mu.Lock()
	n.send = send
	n.mu.Unlock()
}

// Notify posts a repaint message. Safe to call from any goroutine; a no-op
// until bound.
func (n *notifier) Notify() {
	n.mu.Lock()
	send := n.send
	n.mu.Unlock()
	if send != nil {
		send(paneUpdatedMsg{})
	}
}

// Messages.

// paneUpdatedMsg means a fetch controller changed state; re-render.
type paneUpdatedMsg struct{}

// tickMsg drives the periodic header refresh from the state store.
type tickMsg struct{}

// sessionMsg reports the outcome of login/register/logout commands.
type sessionMsg struct {
	action string // "login", "register", "logout"
	err    error
}

// actionMsg reports the outcome of a mutation (accept request, purchase...).
type actionMsg struct {
	action string
	err    error
}

// inventoryMsg carries the unpaged inventory list.
type inventoryMsg struct {
	items []emporia.UserItem
	err   error
}

// gameInfoMsg carries a freshly fetched account header.
type gameInfoMsg struct {
	info *emporia.GameInfo
	err  error
}

// avatarsMsg carries the avatar handles for one loaded page. gen identifies
// the page load that requested them; stale batches are dropped.
type avatarsMsg struct {
	pane    paneID
	gen     uint64
	handles map[string]*imagecache.Handle
}
