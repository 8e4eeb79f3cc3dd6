package ui

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/emporia-game/peddler/internal/emporia"
	"github.com/emporia-game/peddler/internal/prefs"
)

type screenID int

const (
	screenLogin screenID = iota
	screenRegister
	screenForgot
	screenReset
	screenHome
	screenAccount
)

// accountMode selects which part of the account screen is active.
type accountMode int

const (
	accountMenu accountMode = iota
	accountChangePassword
	accountDeleteAccount
)

var tabOrder = []paneID{paneInventory, paneOffers, paneFriends, paneReceived, paneSent, paneSearch}

var tabTitles = map[paneID]string{
	paneInventory: "Inventory",
	paneOffers:    "Offers",
	paneFriends:   "Friends",
	paneReceived:  "Received",
	paneSent:      "Sent",
	paneSearch:    "Search",
}

// model is the bubbletea root. It owns the screens, the tab strip, and the
// routing of messages to the per-tab views.
type model struct {
	opts   Options
	ctx    context.Context
	notify *notifier
	log    *zap.Logger
	st     Styles
	theme  Theme

	width  int
	height int

	screen screenID
	tab    int

	login    form
	register form
	forgotPw form
	resetPw  form

	accountMode accountMode
	changePw    form
	deleteAcct  form

	inventory   *inventoryView
	offers      *pane[emporia.Offer]
	friends     *pane[emporia.Friend]
	received    *pane[emporia.FriendRequest]
	sent        *pane[emporia.FriendRequest]
	searchUsers *pane[emporia.UserSearchResult]

	// showActiveOffers narrows the market to unsold offers. Read by the
	// offers fetch closure, so it lives behind an atomic.
	showActiveOffers *atomic.Bool

	// notice is a transient success line; banner a sticky error line.
	notice string
	banner string
}

func newModel(opts Options, notify *notifier) *model {
	theme := themeByName(opts.ThemeName)
	d := deps{
		client:   opts.Client,
		session:  opts.Session,
		images:   opts.Images,
		notify:   notify.Notify,
		pageSize: opts.PageSize,
	}
	showActive := &atomic.Bool{}
	showActive.Store(true)

	m := &model{
		opts:   opts,
		ctx:    opts.Context,
		notify: notify,
		log:    opts.Logger,
		theme:  theme,
		st:     theme.Styles(),

		login: newForm("Sign in to Emporia",
			newFormField("username", "Username", "your name", false),
			newFormField("password", "Password", "", true),
		),
		register: newForm("Create an account",
			newFormField("userName", "Username", "3-20 characters", false),
			newFormField("email", "Email", "you@example.com", false),
			newFormField("password", "Password", "", true),
		),
		forgotPw: newForm("Forgot password",
			newFormField("email", "Email", "you@example.com", false),
		),
		resetPw: newForm("Reset password",
			newFormField("email", "Email", "", false),
			newFormField("resetToken", "Reset token", "paste from the email", false),
			newFormField("newPassword", "New password", "", true),
		),
		changePw: newForm("Change password",
			newFormField("currentPassword", "Current password", "", true),
			newFormField("newPassword", "New password", "", true),
		),
		deleteAcct: newForm("Delete account",
			newFormField("password", "Password", "confirm with your password", true),
		),

		inventory:        newInventoryView(d),
		offers:           newOffersPane(d, showActive),
		friends:          newFriendsPane(d),
		received:         newReceivedPane(d),
		sent:             newSentPane(d),
		searchUsers:      newSearchPane(d),
		showActiveOffers: showActive,
	}
	if opts.Session.IsLoggedIn() {
		m.screen = screenHome
	}
	return m
}

// pane returns the type-erased view for a tab, or nil for the inventory tab
// which has its own shape.
func (m *model) pane(id paneID) paneView {
	switch id {
	case paneOffers:
		return m.offers
	case paneFriends:
		return m.friends
	case paneReceived:
		return m.received
	case paneSent:
		return m.sent
	case paneSearch:
		return m.searchUsers
	}
	return nil
}

func (m *model) currentTab() paneID { return tabOrder[m.tab] }

func (m *model) Init() tea.Cmd {
	cmds := []tea.Cmd{tick()}
	if m.screen == screenHome {
		cmds = append(cmds, m.activateTab())
	}
	return tea.Batch(cmds...)
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return tickMsg{} })
}

// activateTab triggers the current tab's first fetch (a no-op once started).
func (m *model) activateTab() tea.Cmd {
	if id := m.currentTab(); id == paneInventory {
		return m.inventory.activate(m.ctx)
	} else if p := m.pane(id); p != nil {
		return p.activate(m.ctx)
	}
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		return m, tick()

	case paneUpdatedMsg:
		var cmds []tea.Cmd
		for _, id := range tabOrder {
			if p := m.pane(id); p != nil {
				if cmd := p.onUpdated(m.ctx); cmd != nil {
					cmds = append(cmds, cmd)
				}
			}
		}
		return m, tea.Batch(cmds...)

	case avatarsMsg:
		if p := m.pane(msg.pane); p != nil {
			p.applyAvatars(msg)
		}
		return m, nil

	case inventoryMsg:
		m.inventory.onLoaded(msg)
		return m, nil

	case gameInfoMsg:
		m.opts.Store.Update(msg.info, msg.err)
		return m, nil

	case sessionMsg:
		return m.handleSession(msg)

	case actionMsg:
		return m.handleAction(msg)
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.screen {
	case screenLogin:
		return m.handleLoginKey(msg)
	case screenRegister:
		return m.handleRegisterKey(msg)
	case screenForgot:
		return m.handleForgotKey(msg)
	case screenReset:
		return m.handleResetKey(msg)
	case screenAccount:
		return m.handleAccountKey(msg)
	default:
		return m.handleHomeKey(msg)
	}
}

func (m *model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+r":
		m.register.reset()
		m.screen = screenRegister
		return m, nil
	case "ctrl+p":
		m.forgotPw.reset()
		m.screen = screenForgot
		return m, nil
	case "esc":
		return m, tea.Quit
	}
	submit, cmd := m.login.update(msg)
	if !submit {
		return m, cmd
	}
	m.login.submitting = true
	return m, loginCmd(m.ctx, m.opts.Session, m.login.value("username"), m.login.value("password"))
}

func (m *model) handleRegisterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.screen = screenLogin
		return m, nil
	}
	submit, cmd := m.register.update(msg)
	if !submit {
		return m, cmd
	}
	m.register.submitting = true
	return m, registerCmd(m.ctx, m.opts.Session,
		m.register.value("userName"), m.register.value("email"), m.register.value("password"))
}

func (m *model) handleForgotKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.screen = screenLogin
		return m, nil
	}
	submit, cmd := m.forgotPw.update(msg)
	if !submit {
		return m, cmd
	}
	m.forgotPw.submitting = true
	return m, forgotPasswordCmd(m.ctx, m.opts.Client, m.forgotPw.value("email"))
}

func (m *model) handleResetKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.screen = screenLogin
		return m, nil
	}
	submit, cmd := m.resetPw.update(msg)
	if !submit {
		return m, cmd
	}
	m.resetPw.submitting = true
	return m, resetPasswordCmd(m.ctx, m.opts.Client,
		m.resetPw.value("email"), m.resetPw.value("resetToken"), m.resetPw.value("newPassword"))
}

func (m *model) handleAccountKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.accountMode == accountMenu {
		switch msg.String() {
		case "esc", "q":
			m.screen = screenHome
			return m, nil
		case "c":
			m.changePw.reset()
			m.accountMode = accountChangePassword
			return m, nil
		case "x":
			m.deleteAcct.reset()
			m.accountMode = accountDeleteAccount
			return m, nil
		case "l":
			return m, logoutCmd(m.ctx, m.opts.Session)
		}
		return m, nil
	}

	if msg.String() == "esc" {
		m.accountMode = accountMenu
		return m, nil
	}
	if m.accountMode == accountChangePassword {
		submit, cmd := m.changePw.update(msg)
		if !submit {
			return m, cmd
		}
		m.changePw.submitting = true
		return m, changePasswordCmd(m.ctx, m.opts.Session, m.opts.Client,
			m.changePw.value("currentPassword"), m.changePw.value("newPassword"))
	}
	submit, cmd := m.deleteAcct.update(msg)
	if !submit {
		return m, cmd
	}
	m.deleteAcct.submitting = true
	return m, deleteAccountCmd(m.ctx, m.opts.Session, m.opts.Client, m.deleteAcct.value("password"))
}

func (m *model) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// When a text input owns the keyboard, only it sees the keys.
	typing := m.inventory.pricing
	if p := m.pane(m.currentTab()); p != nil {
		typing = p.searchFocused()
	}

	if !typing {
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "tab":
			m.tab = (m.tab + 1) % len(tabOrder)
			m.notice = ""
			return m, m.activateTab()
		case "shift+tab":
			m.tab = (m.tab - 1 + len(tabOrder)) % len(tabOrder)
			m.notice = ""
			return m, m.activateTab()
		case "1", "2", "3", "4", "5", "6":
			m.tab = int(msg.String()[0] - '1')
			m.notice = ""
			return m, m.activateTab()
		case "ctrl+a":
			m.accountMode = accountMenu
			m.screen = screenAccount
			return m, nil
		case "ctrl+t":
			return m, m.cycleTheme()
		}
	}

	// Give the active view first refusal, then item-level actions.
	id := m.currentTab()
	if id == paneInventory {
		if consumed, cmd := m.inventory.handleKey(m.ctx, msg); consumed {
			return m, cmd
		}
		return m, nil
	}
	p := m.pane(id)
	if consumed, cmd := p.handleKey(m.ctx, msg); consumed {
		return m, cmd
	}
	return m.handleItemAction(id, msg)
}

// handleItemAction wires the per-tab keys that act on the selected row.
func (m *model) handleItemAction(id paneID, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch id {
	case paneOffers:
		switch key {
		case "enter", "b":
			if offer, ok := m.offers.selected(); ok && offer.BoughtAt == nil {
				return m, purchaseOfferCmd(m.ctx, m.opts.Session, m.opts.Client, offer.ID)
			}
		case "t":
			m.showActiveOffers.Store(!m.showActiveOffers.Load())
			m.offers.refresh(m.ctx)
		}
	case paneFriends:
		if key == "x" {
			if friend, ok := m.friends.selected(); ok {
				return m, removeFriendCmd(m.ctx, m.opts.Session, m.opts.Client, friend.UserID)
			}
		}
	case paneReceived:
		switch key {
		case "a", "enter":
			if req, ok := m.received.selected(); ok {
				return m, acceptFriendRequestCmd(m.ctx, m.opts.Session, m.opts.Client, req.ID)
			}
		case "x":
			if req, ok := m.received.selected(); ok {
				return m, declineFriendRequestCmd(m.ctx, m.opts.Session, m.opts.Client, req.ID)
			}
		}
	case paneSent:
		if key == "x" {
			if req, ok := m.sent.selected(); ok {
				return m, cancelFriendRequestCmd(m.ctx, m.opts.Session, m.opts.Client, req.ID)
			}
		}
	case paneSearch:
		if key == "enter" || key == "f" {
			if user, ok := m.searchUsers.selected(); ok {
				return m, sendFriendRequestCmd(m.ctx, m.opts.Session, m.opts.Client, user.ID)
			}
		}
	}
	return m, nil
}

func (m *model) cycleTheme() tea.Cmd {
	next := "Dusk"
	if m.theme.Name == "Dusk" {
		next = "Parchment"
	}
	m.theme = themeByName(next)
	m.st = m.theme.Styles()
	path := m.opts.PrefsPath
	size := m.opts.PageSize
	return func() tea.Msg {
		err := prefs.Save(path, prefs.Prefs{Theme: next, PageSize: size})
		return actionMsg{action: "save-prefs", err: err}
	}
}

func (m *model) handleSession(msg sessionMsg) (tea.Model, tea.Cmd) {
	switch msg.action {
	case "login":
		if msg.err != nil {
			m.login.applyError(msg.err)
			return m, nil
		}
		m.login.reset()
		m.screen = screenHome
		m.banner = ""
		m.notice = ""
		return m, tea.Batch(
			m.activateTab(),
			gameInfoCmd(m.ctx, m.opts.Session, m.opts.Client),
		)
	case "register":
		if msg.err != nil {
			m.register.applyError(msg.err)
			return m, nil
		}
		m.register.reset()
		m.screen = screenLogin
		m.login.banner = ""
		m.notice = "Account created. Check your email, then sign in."
		return m, nil
	case "logout":
		m.screen = screenLogin
		m.login.reset()
		m.notice = "Signed out."
		return m, nil
	}
	return m, nil
}

func (m *model) handleAction(msg actionMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if msg.action == "change-password" {
			m.changePw.applyError(msg.err)
			return m, nil
		}
		if msg.action == "delete-account" {
			m.deleteAcct.applyError(msg.err)
			return m, nil
		}
		if msg.action == "forgot-password" {
			m.forgotPw.applyError(msg.err)
			return m, nil
		}
		if msg.action == "reset-password" {
			m.resetPw.applyError(msg.err)
			return m, nil
		}
		m.banner = errorMessage(msg.err)
		m.log.Warn("action failed", zap.String("action", msg.action), zap.Error(msg.err))
		return m, nil
	}

	m.banner = ""
	switch msg.action {
	case "purchase":
		m.notice = "Purchase complete."
		m.offers.refresh(m.ctx)
		return m, tea.Batch(
			m.inventory.refresh(m.ctx),
			gameInfoCmd(m.ctx, m.opts.Session, m.opts.Client),
		)
	case "create-offer":
		m.notice = "Offer published."
		m.offers.refresh(m.ctx)
		return m, m.inventory.refresh(m.ctx)
	case "send-request":
		m.notice = "Friend request sent."
		m.sent.refresh(m.ctx)
	case "accept-request":
		m.notice = "Friend request accepted."
		m.received.refresh(m.ctx)
		m.friends.refresh(m.ctx)
	case "decline-request":
		m.notice = "Friend request declined."
		m.received.refresh(m.ctx)
	case "cancel-request":
		m.notice = "Friend request cancelled."
		m.sent.refresh(m.ctx)
	case "remove-friend":
		m.notice = "Friend removed."
		m.friends.refresh(m.ctx)
	case "forgot-password":
		// The email lives on in the reset form; the web client carries it in
		// the reset link instead.
		email := m.forgotPw.value("email")
		m.forgotPw.reset()
		m.resetPw.reset()
		m.resetPw.setValue("email", email)
		m.screen = screenReset
		m.notice = "Reset email sent. Paste the token from the email."
	case "reset-password":
		m.resetPw.reset()
		m.screen = screenLogin
		m.login.reset()
		m.notice = "Password reset. Sign in with your new password."
	case "change-password":
		m.changePw.reset()
		m.accountMode = accountMenu
		m.notice = "Password changed."
	case "delete-account":
		// The account is gone server-side; drop the local session too.
		return m, logoutCmd(m.ctx, m.opts.Session)
	}
	return m, nil
}

func (m *model) View() string {
	switch m.screen {
	case screenLogin:
		out := m.login.view(m.st)
		if m.notice != "" {
			out += m.st.Success.Render(m.notice) + "\n"
		}
		out += "\n" + m.st.Footer.Render("enter submit · ctrl+r register · ctrl+p reset password · esc quit")
		return out
	case screenRegister:
		return m.register.view(m.st) + "\n" +
			m.st.Footer.Render("enter submit · esc back")
	case screenForgot:
		return m.forgotPw.view(m.st) + "\n" +
			m.st.Footer.Render("enter submit · esc back")
	case screenReset:
		out := m.resetPw.view(m.st)
		if m.notice != "" {
			out += m.st.Success.Render(m.notice) + "\n"
		}
		return out + "\n" + m.st.Footer.Render("enter submit · esc back")
	case screenAccount:
		return m.viewAccount()
	default:
		return m.viewHome()
	}
}

func (m *model) viewAccount() string {
	var b strings.Builder
	b.WriteString(m.headerLine() + "\n\n")
	switch m.accountMode {
	case accountChangePassword:
		b.WriteString(m.changePw.view(m.st))
		b.WriteString("\n" + m.st.Footer.Render("enter submit · esc back"))
	case accountDeleteAccount:
		b.WriteString(m.deleteAcct.view(m.st))
		b.WriteString(m.st.Danger.Render("This cannot be undone.") + "\n")
		b.WriteString("\n" + m.st.Footer.Render("enter confirm · esc back"))
	default:
		b.WriteString(m.st.Header.Render("Account") + "\n\n")
		if m.notice != "" {
			b.WriteString(m.st.Success.Render(m.notice) + "\n\n")
		}
		b.WriteString("c  change password\n")
		b.WriteString("x  delete account\n")
		b.WriteString("l  sign out\n")
		b.WriteString("\n" + m.st.Footer.Render("esc back"))
	}
	return b.String()
}

func (m *model) viewHome() string {
	var b strings.Builder
	b.WriteString(m.headerLine() + "\n")

	// Tab strip.
	var tabs []string
	for i, id := range tabOrder {
		title := tabTitles[id]
		if i == m.tab {
			tabs = append(tabs, m.st.TabOn.Render(title))
		} else {
			tabs = append(tabs, m.st.Tab.Render(title))
		}
	}
	b.WriteString(strings.Join(tabs, "") + "\n\n")

	if m.banner != "" {
		b.WriteString(m.st.Banner.Render(m.banner) + "\n")
	} else if m.notice != "" {
		b.WriteString(m.st.Success.Render(m.notice) + "\n")
	}

	id := m.currentTab()
	if id == paneInventory {
		b.WriteString(m.inventory.view(m.st))
	} else if p := m.pane(id); p != nil {
		b.WriteString(p.view(m.st, m.width))
	}

	b.WriteString("\n" + m.st.Footer.Render(m.footerHint(id)))
	return b.String()
}

// headerLine shows the signed-in user, balance, and connection state.
func (m *model) headerLine() string {
	snap := m.opts.Store.Snapshot()
	name := m.opts.Session.UserName()
	if snap.HasInfo {
		name = snap.Info.UserName
	}
	left := m.st.Header.Render("Emporia")
	if name != "" {
		left += m.st.Text.Render("  " + name)
	}
	if snap.HasInfo {
		left += m.st.Accent.Render("  " + coins(snap.Info.Balance))
	}
	if snap.IsOffline() {
		left += m.st.Danger.Render("  offline")
	}
	return left
}

func (m *model) footerHint(id paneID) string {
	common := "tab switch · / search · s sort · d direction · z page size · r reload · ctrl+a account · q quit"
	switch id {
	case paneInventory:
		return "o publish offer · r reload · tab switch · ctrl+a account · q quit"
	case paneOffers:
		return "enter buy · t toggle sold · " + common
	case paneFriends:
		return "x remove · " + common
	case paneReceived:
		return "a accept · x decline · " + common
	case paneSent:
		return "x cancel · " + common
	case paneSearch:
		return "enter add friend · " + common
	}
	return common
}

var _ tea.Model = (*model)(nil)
