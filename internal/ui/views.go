package ui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/emporia-game/peddler/internal/emporia"
	"github.com/emporia-game/peddler/internal/imagecache"
	"github.com/emporia-game/peddler/internal/session"
)

// deps bundles what every view constructor needs.
type deps struct {
	client   *emporia.Client
	session  *session.Manager
	images   *imagecache.Cache
	notify   func()
	pageSize int
}

func (d deps) token() string { return d.session.Token() }

func newOffersPane(d deps, showActive *atomic.Bool) *pane[emporia.Offer] {
	return newPane(paneConfig[emporia.Offer]{
		id:          paneOffers,
		title:       "Offers",
		itemLabel:   "offers",
		emptyText:   "No offers on the market right now.",
		defaultSort: "PublishedAt",
		sortOptions: []sortOption{
			{field: "PublishedAt", label: "published"},
			{field: "Price", label: "price"},
			{field: "ItemName", label: "item"},
		},
		pageSize: d.pageSize,
		fetch: func(ctx context.Context, query emporia.PagedQuery) (*emporia.PagedResult[emporia.Offer], error) {
			var result *emporia.PagedResult[emporia.Offer]
			err := d.session.Do(ctx, func(ctx context.Context, token string) error {
				var err error
				result, err = d.client.Offers(ctx, token, query, showActive.Load())
				return err
			})
			return result, err
		},
		notify: d.notify,
		images: d.images,
		token:  d.token,
		renderItem: func(offer emporia.Offer, hasAvatar bool, st Styles) string {
			line := fmt.Sprintf("%s %s  %s  by %s", avatarMark(hasAvatar),
				offer.UserItem.Item.Name, st.Accent.Render(coins(offer.Price)), offer.SellerUsername)
			if offer.BoughtAt != nil {
				line += st.Muted.Render("  sold")
			}
			return line
		},
		avatarOf: func(offer emporia.Offer) (string, string) {
			return offer.ID.String(), offer.UserItem.Item.ThumbnailURL
		},
	})
}

func newFriendsPane(d deps) *pane[emporia.Friend] {
	return newPane(paneConfig[emporia.Friend]{
		id:          paneFriends,
		title:       "Friends",
		itemLabel:   "friends",
		emptyText:   "No friends yet. Find people on the Search tab.",
		defaultSort: "UserName",
		sortOptions: []sortOption{
			{field: "UserName", label: "name"},
			{field: "FriendsSince", label: "since"},
		},
		pageSize: d.pageSize,
		fetch: func(ctx context.Context, query emporia.PagedQuery) (*emporia.PagedResult[emporia.Friend], error) {
			var result *emporia.PagedResult[emporia.Friend]
			err := d.session.Do(ctx, func(ctx context.Context, token string) error {
				var err error
				result, err = d.client.Friends(ctx, token, query)
				return err
			})
			return result, err
		},
		notify: d.notify,
		images: d.images,
		token:  d.token,
		renderItem: func(friend emporia.Friend, hasAvatar bool, st Styles) string {
			return fmt.Sprintf("%s %s  %s", avatarMark(hasAvatar), friend.UserName,
				st.Muted.Render("since "+friend.FriendsSince.Format("2006-01-02")))
		},
		avatarOf: func(friend emporia.Friend) (string, string) {
			return friend.UserID.String(), friend.ProfilePictureURL
		},
	})
}

func newReceivedPane(d deps) *pane[emporia.FriendRequest] {
	return newPane(paneConfig[emporia.FriendRequest]{
		id:          paneReceived,
		title:       "Received",
		itemLabel:   "requests",
		emptyText:   "No incoming friend requests.",
		defaultSort: "CreatedAt",
		sortOptions: []sortOption{
			{field: "CreatedAt", label: "received"},
			{field: "UserName", label: "name"},
		},
		pageSize: d.pageSize,
		fetch: func(ctx context.Context, query emporia.PagedQuery) (*emporia.PagedResult[emporia.FriendRequest], error) {
			var result *emporia.PagedResult[emporia.FriendRequest]
			err := d.session.Do(ctx, func(ctx context.Context, token string) error {
				var err error
				result, err = d.client.ReceivedFriendRequests(ctx, token, query)
				return err
			})
			return result, err
		},
		notify: d.notify,
		images: d.images,
		token:  d.token,
		renderItem: func(req emporia.FriendRequest, hasAvatar bool, st Styles) string {
			return fmt.Sprintf("%s %s  %s", avatarMark(hasAvatar), req.RequesterUserName,
				st.Muted.Render(req.CreatedAt.Format("2006-01-02")))
		},
		avatarOf: func(req emporia.FriendRequest) (string, string) {
			return req.ID.String(), req.RequesterProfilePictureURL
		},
	})
}

func newSentPane(d deps) *pane[emporia.FriendRequest] {
	return newPane(paneConfig[emporia.FriendRequest]{
		id:          paneSent,
		title:       "Sent",
		itemLabel:   "requests",
		emptyText:   "No outgoing friend requests.",
		defaultSort: "CreatedAt",
		sortOptions: []sortOption{
			{field: "CreatedAt", label: "sent"},
			{field: "UserName", label: "name"},
		},
		pageSize: d.pageSize,
		fetch: func(ctx context.Context, query emporia.PagedQuery) (*emporia.PagedResult[emporia.FriendRequest], error) {
			var result *emporia.PagedResult[emporia.FriendRequest]
			err := d.session.Do(ctx, func(ctx context.Context, token string) error {
				var err error
				result, err = d.client.SentFriendRequests(ctx, token, query)
				return err
			})
			return result, err
		},
		notify: d.notify,
		images: d.images,
		token:  d.token,
		renderItem: func(req emporia.FriendRequest, hasAvatar bool, st Styles) string {
			return fmt.Sprintf("%s %s  %s", avatarMark(hasAvatar), req.ReceiverUserName,
				st.Muted.Render(req.CreatedAt.Format("2006-01-02")))
		},
		avatarOf: func(req emporia.FriendRequest) (string, string) {
			return req.ID.String(), req.ReceiverProfilePictureURL
		},
	})
}

func newSearchPane(d deps) *pane[emporia.UserSearchResult] {
	return newPane(paneConfig[emporia.UserSearchResult]{
		id:          paneSearch,
		title:       "Search",
		itemLabel:   "users",
		emptyText:   "No users matched. Press / to search.",
		defaultSort: "UserName",
		sortOptions: []sortOption{
			{field: "UserName", label: "name"},
		},
		pageSize: d.pageSize,
		fetch: func(ctx context.Context, query emporia.PagedQuery) (*emporia.PagedResult[emporia.UserSearchResult], error) {
			if strings.TrimSpace(query.SearchPhrase) == "" {
				// An empty phrase would list the whole user base; serve an
				// empty page locally instead of asking the server to.
				return &emporia.PagedResult[emporia.UserSearchResult]{
					Items:      []emporia.UserSearchResult{},
					TotalPages: 1,
				}, nil
			}
			var result *emporia.PagedResult[emporia.UserSearchResult]
			err := d.session.Do(ctx, func(ctx context.Context, token string) error {
				var err error
				result, err = d.client.SearchUsers(ctx, token, query)
				return err
			})
			return result, err
		},
		notify: d.notify,
		images: d.images,
		token:  d.token,
		renderItem: func(user emporia.UserSearchResult, hasAvatar bool, st Styles) string {
			return fmt.Sprintf("%s %s", avatarMark(hasAvatar), user.UserName)
		},
		avatarOf: func(user emporia.UserSearchResult) (string, string) {
			return user.ID.String(), user.ProfilePictureURL
		},
	})
}

func avatarMark(hasAvatar bool) string {
	if hasAvatar {
		return "●"
	}
	return "○"
}

func coins(amount int64) string {
	return fmt.Sprintf("%d⛁", amount)
}

// inventoryView lists the player's own items. The endpoint is unpaged, so
// it sidesteps the fetch controller and loads in one shot.
type inventoryView struct {
	client  *emporia.Client
	session *session.Manager

	items   []emporia.UserItem
	loaded  bool
	loading bool
	errMsg  string
	cursor  int

	// priceInput is shown when publishing an offer for the selected item.
	pricing    bool
	priceInput textinput.Model
}

func newInventoryView(d deps) *inventoryView {
	price := textinput.New()
	price.Placeholder = "price"
	price.CharLimit = 12
	price.Width = 12
	return &inventoryView{client: d.client, session: d.session, priceInput: price}
}

func (v *inventoryView) load(ctx context.Context) tea.Cmd {
	v.loading = true
	v.errMsg = ""
	client, mgr := v.client, v.session
	return func() tea.Msg {
		var items []emporia.UserItem
		err := mgr.Do(ctx, func(ctx context.Context, token string) error {
			var err error
			items, err = client.MyItems(ctx, token)
			return err
		})
		return inventoryMsg{items: items, err: err}
	}
}

func (v *inventoryView) activate(ctx context.Context) tea.Cmd {
	if v.loaded || v.loading {
		return nil
	}
	return v.load(ctx)
}

func (v *inventoryView) refresh(ctx context.Context) tea.Cmd {
	if v.loading {
		return nil
	}
	return v.load(ctx)
}

func (v *inventoryView) onLoaded(msg inventoryMsg) {
	v.loading = false
	if msg.err != nil {
		// Keep whatever was on screen, same as the paged views do.
		v.errMsg = errorMessage(msg.err)
		return
	}
	v.loaded = true
	v.errMsg = ""
	v.items = msg.items
	if v.cursor >= len(v.items) {
		v.cursor = 0
	}
}

func (v *inventoryView) selected() (emporia.UserItem, bool) {
	if v.cursor < 0 || v.cursor >= len(v.items) {
		return emporia.UserItem{}, false
	}
	return v.items[v.cursor], true
}

// handleKey processes a key for the inventory. The bool result reports
// whether the key was consumed.
func (v *inventoryView) handleKey(ctx context.Context, msg tea.KeyMsg) (bool, tea.Cmd) {
	if v.pricing {
		switch msg.String() {
		case "enter":
			item, ok := v.selected()
			if !ok {
				v.pricing = false
				return true, nil
			}
			price, err := strconv.ParseInt(strings.TrimSpace(v.priceInput.Value()), 10, 64)
			if err != nil || price <= 0 {
				v.errMsg = "Price must be a positive whole number."
				return true, nil
			}
			v.pricing = false
			v.priceInput.Blur()
			v.priceInput.SetValue("")
			v.errMsg = ""
			return true, createOfferCmd(ctx, v.session, v.client, item.ID, price)
		case "esc":
			v.pricing = false
			v.priceInput.Blur()
			v.priceInput.SetValue("")
			return true, nil
		default:
			var cmd tea.Cmd
			v.priceInput, cmd = v.priceInput.Update(msg)
			return true, cmd
		}
	}

	switch msg.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
		return true, nil
	case "down", "j":
		if v.cursor < len(v.items)-1 {
			v.cursor++
		}
		return true, nil
	case "o":
		item, ok := v.selected()
		if !ok {
			return true, nil
		}
		if item.ActiveOfferID != nil {
			v.errMsg = "That item is already listed."
			return true, nil
		}
		v.pricing = true
		return true, v.priceInput.Focus()
	case "r":
		return true, v.refresh(ctx)
	}
	return false, nil
}

func (v *inventoryView) view(st Styles) string {
	var b strings.Builder
	if v.loading && !v.loaded {
		b.WriteString(st.Muted.Render("Loading...") + "\n")
		return b.String()
	}
	if v.loading {
		b.WriteString(st.Warning.Render("Updating...") + "\n")
	}
	if v.errMsg != "" {
		b.WriteString(st.Danger.Render(v.errMsg) + "\n")
	}
	if v.loaded && len(v.items) == 0 {
		b.WriteString(st.Muted.Render("Your bag is empty.") + "\n")
		return b.String()
	}
	for i, item := range v.items {
		line := fmt.Sprintf("%s  %s", item.Item.Name, st.Muted.Render(item.Item.Type.Display()))
		if item.ActiveOfferPrice != nil {
			line += "  " + st.Accent.Render("listed at "+coins(*item.ActiveOfferPrice))
		}
		if i == v.cursor {
			line = st.Selected.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
		if i == v.cursor && v.pricing {
			b.WriteString("    " + st.Accent.Render("price: ") + v.priceInput.View() + "\n")
		}
	}
	return b.String()
}

// Marketplace and friend mutations, each reported back as an actionMsg.

func createOfferCmd(ctx context.Context, mgr *session.Manager, client *emporia.Client, userItemID uuid.UUID, price int64) tea.Cmd {
	return func() tea.Msg {
		err := mgr.Do(ctx, func(ctx context.Context, token string) error {
			return client.CreateOffer(ctx, token, emporia.CreateOfferRequest{
				UserItemID: userItemID,
				Price:      price,
			})
		})
		return actionMsg{action: "create-offer", err: err}
	}
}

func purchaseOfferCmd(ctx context.Context, mgr *session.Manager, client *emporia.Client, offerID uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		err := mgr.Do(ctx, func(ctx context.Context, token string) error {
			return client.PurchaseOffer(ctx, token, offerID)
		})
		return actionMsg{action: "purchase", err: err}
	}
}

func sendFriendRequestCmd(ctx context.Context, mgr *session.Manager, client *emporia.Client, receiverID uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		err := mgr.Do(ctx, func(ctx context.Context, token string) error {
			return client.SendFriendRequest(ctx, token, receiverID)
		})
		return actionMsg{action: "send-request", err: err}
	}
}

func acceptFriendRequestCmd(ctx context.Context, mgr *session.Manager, client *emporia.Client, requestID uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		err := mgr.Do(ctx, func(ctx context.Context, token string) error {
			return client.AcceptFriendRequest(ctx, token, requestID)
		})
		return actionMsg{action: "accept-request", err: err}
	}
}

func declineFriendRequestCmd(ctx context.Context, mgr *session.Manager, client *emporia.Client, requestID uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		err := mgr.Do(ctx, func(ctx context.Context, token string) error {
			return client.DeclineFriendRequest(ctx, token, requestID)
		})
		return actionMsg{action: "decline-request", err: err}
	}
}

func cancelFriendRequestCmd(ctx context.Context, mgr *session.Manager, client *emporia.Client, requestID uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		err := mgr.Do(ctx, func(ctx context.Context, token string) error {
			return client.CancelFriendRequest(ctx, token, requestID)
		})
		return actionMsg{action: "cancel-request", err: err}
	}
}

func removeFriendCmd(ctx context.Context, mgr *session.Manager, client *emporia.Client, userID uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		err := mgr.Do(ctx, func(ctx context.Context, token string) error {
			return client.RemoveFriend(ctx, token, userID)
		})
		return actionMsg{action: "remove-friend", err: err}
	}
}

func gameInfoCmd(ctx context.Context, mgr *session.Manager, client *emporia.Client) tea.Cmd {
	return func() tea.Msg {
		var info *emporia.GameInfo
		err := mgr.Do(ctx, func(ctx context.Context, token string) error {
			var err error
			info, err = client.GameInfo(ctx, token)
			return err
		})
		return gameInfoMsg{info: info, err: err}
	}
}

// errorMessage prefers the server's human-readable title when one exists.
func errorMessage(err error) string {
	var problem *emporia.Problem
	if errors.As(err, &problem) && problem.Title != "" {
		return problem.Title
	}
	return err.Error()
}
