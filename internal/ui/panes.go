package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/emporia-game/peddler/internal/emporia"
	"github.com/emporia-game/peddler/internal/imagecache"
	"github.com/emporia-game/peddler/internal/pagedfetch"
)

type paneID int

const (
	paneInventory paneID = iota
	paneOffers
	paneFriends
	paneReceived
	paneSent
	paneSearch
)

type sortOption struct {
	field string
	label string
}

// pageSizeCycle is the page size progression offered by the z key.
var pageSizeCycle = []int{5, 10, 15}

// paneView is the type-erased surface the root model drives panes through.
// Item-specific actions go through the concrete *pane[T] fields instead.
type paneView interface {
	activate(ctx context.Context) tea.Cmd
	handleKey(ctx context.Context, msg tea.KeyMsg) (bool, tea.Cmd)
	onUpdated(ctx context.Context) tea.Cmd
	applyAvatars(msg avatarsMsg)
	view(st Styles, width int) string
	refresh(ctx context.Context)
	searchFocused() bool
}

// pane wires one paged list view to a fetch controller: filter controls,
// cursor movement, pagination, and the avatar fan-out for the current page.
type pane[T any] struct {
	id        paneID
	title     string
	itemLabel string
	emptyText string

	ctrl        *pagedfetch.Controller[T]
	images      *imagecache.Cache
	token       func() string
	sortOptions []sortOption
	sortIdx     int

	search    textinput.Model
	searching bool

	cursor int

	renderItem func(item T, hasAvatar bool, st Styles) string
	avatarOf   func(item T) (key, url string)

	avatars   map[string]*imagecache.Handle
	avatarGen uint64
	lastPage  *emporia.PagedResult[T]

	// pendingQuery holds the initial query until the pane is first shown so
	// hidden panes don't fetch at startup.
	pendingQuery *emporia.PagedQuery
	started      bool
}

type paneConfig[T any] struct {
	id          paneID
	title       string
	itemLabel   string
	emptyText   string
	defaultSort string
	sortOptions []sortOption
	pageSize    int
	fetch       pagedfetch.FetchFunc[T]
	notify      func()
	renderItem  func(item T, hasAvatar bool, st Styles) string
	avatarOf    func(item T) (key, url string)
	images      *imagecache.Cache
	token       func() string
}

func newPane[T any](cfg paneConfig[T]) *pane[T] {
	search := textinput.New()
	search.Placeholder = "search " + cfg.itemLabel + "..."
	search.CharLimit = 64
	search.Width = 32

	ctrl := pagedfetch.New(cfg.fetch, pagedfetch.Options{Notify: cfg.notify})

	p := &pane[T]{
		id:          cfg.id,
		title:       cfg.title,
		itemLabel:   cfg.itemLabel,
		emptyText:   cfg.emptyText,
		ctrl:        ctrl,
		images:      cfg.images,
		token:       cfg.token,
		sortOptions: cfg.sortOptions,
		search:      search,
		renderItem:  cfg.renderItem,
		avatarOf:    cfg.avatarOf,
		avatars:     map[string]*imagecache.Handle{},
	}

	query := emporia.DefaultPagedQuery(cfg.defaultSort)
	if cfg.pageSize > 0 {
		query = query.WithPageSize(cfg.pageSize)
	}
	// Stored but not issued until the pane is first shown.
	p.pendingQuery = &query
	return p
}

func (p *pane[T]) activate(ctx context.Context) tea.Cmd {
	if p.started {
		return nil
	}
	p.started = true
	if p.pendingQuery != nil {
		q := *p.pendingQuery
		p.pendingQuery = nil
		p.ctrl.SetQuery(ctx, q)
	}
	return nil
}

func (p *pane[T]) refresh(ctx context.Context) {
	if !p.started {
		return
	}
	p.ctrl.Refresh(ctx)
}

func (p *pane[T]) searchFocused() bool { return p.searching }

// handleKey processes a key for this pane. The bool result reports whether
// the key was consumed.
func (p *pane[T]) handleKey(ctx context.Context, msg tea.KeyMsg) (bool, tea.Cmd) {
	if p.searching {
		switch msg.String() {
		case "enter":
			p.searching = false
			p.search.Blur()
			p.cursor = 0
			p.ctrl.SetQuery(ctx, p.ctrl.Query().WithSearch(strings.TrimSpace(p.search.Value())))
			return true, nil
		case "esc":
			p.searching = false
			p.search.Blur()
			return true, nil
		default:
			var cmd tea.Cmd
			p.search, cmd = p.search.Update(msg)
			return true, cmd
		}
	}

	switch msg.String() {
	case "/":
		p.searching = true
		return true, p.search.Focus()
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
		return true, nil
	case "down", "j":
		if result := p.ctrl.Result(); result != nil && p.cursor < len(result.Items)-1 {
			p.cursor++
		}
		return true, nil
	case "left", "h", "p":
		query := p.ctrl.Query()
		if result := p.ctrl.Result(); result != nil && query.PageNumber > 1 {
			p.cursor = 0
			p.ctrl.SetQuery(ctx, query.WithPage(query.PageNumber-1))
		}
		return true, nil
	case "right", "l", "n":
		query := p.ctrl.Query()
		if result := p.ctrl.Result(); result != nil && query.PageNumber < result.TotalPages {
			p.cursor = 0
			p.ctrl.SetQuery(ctx, query.WithPage(query.PageNumber+1))
		}
		return true, nil
	case "s":
		if len(p.sortOptions) > 1 {
			p.sortIdx = (p.sortIdx + 1) % len(p.sortOptions)
			p.cursor = 0
			p.ctrl.SetQuery(ctx, p.ctrl.Query().WithSortBy(p.sortOptions[p.sortIdx].field))
		}
		return true, nil
	case "d":
		query := p.ctrl.Query()
		dir := emporia.Ascending
		if query.SortDirection == emporia.Ascending {
			dir = emporia.Descending
		}
		p.ctrl.SetQuery(ctx, query.WithSortDirection(dir))
		return true, nil
	case "z":
		query := p.ctrl.Query()
		next := pageSizeCycle[0]
		for i, size := range pageSizeCycle {
			if size == query.PageSize {
				next = pageSizeCycle[(i+1)%len(pageSizeCycle)]
				break
			}
		}
		p.cursor = 0
		p.ctrl.SetQuery(ctx, query.WithPageSize(next))
		return true, nil
	case "r":
		p.ctrl.Refresh(ctx)
		return true, nil
	}
	return false, nil
}

// onUpdated reacts to controller changes: when a new page has landed, kick
// off the avatar fan-out for it.
func (p *pane[T]) onUpdated(ctx context.Context) tea.Cmd {
	result := p.ctrl.Result()
	if result == nil || result == p.lastPage || p.avatarOf == nil || p.images == nil {
		return nil
	}
	p.lastPage = result
	if p.cursor >= len(result.Items) {
		p.cursor = 0
	}

	p.avatarGen++
	gen := p.avatarGen
	items := result.Items
	id := p.id
	images := p.images
	avatarOf := p.avatarOf
	token := ""
	if p.token != nil {
		token = p.token()
	}

	return func() tea.Msg {
		handles := loadAvatars(ctx, images, token, items, avatarOf)
		return avatarsMsg{pane: id, gen: gen, handles: handles}
	}
}

func (p *pane[T]) applyAvatars(msg avatarsMsg) {
	if msg.pane != p.id || msg.gen != p.avatarGen {
		// A newer page superseded this batch; dropping it keeps thumbnails
		// and list rows from ever mismatching.
		return
	}
	p.avatars = msg.handles
}

// selected returns the item under the cursor.
func (p *pane[T]) selected() (T, bool) {
	var zero T
	result := p.ctrl.Result()
	if result == nil || p.cursor < 0 || p.cursor >= len(result.Items) {
		return zero, false
	}
	return result.Items[p.cursor], true
}

func (p *pane[T]) view(st Styles, width int) string {
	var b strings.Builder

	// Filter bar.
	query := p.ctrl.Query()
	sortLabel := query.SortBy
	for _, opt := range p.sortOptions {
		if opt.field == query.SortBy {
			sortLabel = opt.label
		}
	}
	filter := fmt.Sprintf("sort %s %s  page size %d", sortLabel, arrow(query.SortDirection), query.PageSize)
	if p.searching {
		b.WriteString(st.Accent.Render("search: ") + p.search.View())
	} else if query.SearchPhrase != "" {
		b.WriteString(st.Muted.Render(fmt.Sprintf("search %q  %s", query.SearchPhrase, filter)))
	} else {
		b.WriteString(st.Muted.Render(filter))
	}
	b.WriteString("\n")

	if p.ctrl.State() == pagedfetch.StateRefreshing {
		b.WriteString(st.Warning.Render("Updating...") + "\n")
	}
	if msg := p.ctrl.Err(); msg != "" {
		b.WriteString(st.Danger.Render(msg) + "\n")
	}

	result := p.ctrl.Result()
	switch {
	case p.ctrl.ShowLoading():
		b.WriteString(st.Muted.Render("Loading...") + "\n")
	case result == nil:
		// Nothing fetched yet and the debounce window hasn't elapsed; render
		// nothing rather than a premature empty state.
	case len(result.Items) == 0:
		b.WriteString(st.Muted.Render(p.emptyText) + "\n")
	default:
		for i, item := range result.Items {
			key := ""
			if p.avatarOf != nil {
				key, _ = p.avatarOf(item)
			}
			_, hasAvatar := p.avatars[key]
			line := p.renderItem(item, hasAvatar, st)
			if i == p.cursor {
				line = st.Selected.Render("> " + line)
			} else {
				line = "  " + line
			}
			b.WriteString(line + "\n")
		}
		if result.Paginated() {
			b.WriteString(st.Footer.Render(paginationLabel(query.PageNumber, result, p.itemLabel)) + "\n")
		}
	}

	return b.String()
}

func arrow(dir emporia.SortDirection) string {
	if dir == emporia.Descending {
		return "↓"
	}
	return "↑"
}

// paginationLabel formats the footer, e.g. "Page 1 of 3 (1-10 of 25 friends)".
func paginationLabel[T any](page int, result *emporia.PagedResult[T], label string) string {
	return fmt.Sprintf("Page %d of %d (%d-%d of %d %s)",
		page, result.TotalPages, result.ItemsFrom, result.ItemsTo, result.TotalItemsCount, label)
}

// loadAvatars fans out one cache fetch per item that has a picture URL.
// Failures fall back to the placeholder silently.
func loadAvatars[T any](ctx context.Context, images *imagecache.Cache, token string, items []T, avatarOf func(T) (string, string)) map[string]*imagecache.Handle {
	handles := make(map[string]*imagecache.Handle)
	type loaded struct {
		key    string
		handle *imagecache.Handle
	}
	results := make(chan loaded, len(items))
	count := 0
	for _, item := range items {
		key, url := avatarOf(item)
		if key == "" || url == "" {
			continue
		}
		count++
		go func(key, url string) {
			handle, err := images.Fetch(ctx, url, token)
			if err != nil {
				handle = nil
			}
			results <- loaded{key: key, handle: handle}
		}(key, url)
	}
	for i := 0; i < count; i++ {
		r := <-results
		if r.handle != nil {
			handles[r.key] = r.handle
		}
	}
	return handles
}
