package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/emporia-game/peddler/internal/emporia"
	"github.com/emporia-game/peddler/internal/session"
)

// form is a vertical stack of labelled text inputs with per-field validation
// errors, the terminal rendition of the web client's inline form messages.
type form struct {
	title  string
	fields []formField
	focus  int
	// fieldErrors carries lower-camelized Problem field keys.
	fieldErrors map[string]string
	banner      string
	submitting  bool
}

type formField struct {
	key    string
	label  string
	secret bool
	input  textinput.Model
}

func newFormField(key, label, placeholder string, secret bool) formField {
	input := textinput.New()
	input.Placeholder = placeholder
	input.CharLimit = 128
	input.Width = 36
	if secret {
		input.EchoMode = textinput.EchoPassword
	}
	return formField{key: key, label: label, secret: secret, input: input}
}

func newForm(title string, fields ...formField) form {
	f := form{title: title, fields: fields}
	if len(f.fields) > 0 {
		f.fields[0].input.Focus()
	}
	return f
}

func (f *form) value(key string) string {
	for i := range f.fields {
		if f.fields[i].key == key {
			v := f.fields[i].input.Value()
			if f.fields[i].secret {
				// Passwords are sent exactly as typed.
				return v
			}
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func (f *form) setValue(key, v string) {
	for i := range f.fields {
		if f.fields[i].key == key {
			f.fields[i].input.SetValue(v)
		}
	}
}

func (f *form) reset() {
	for i := range f.fields {
		f.fields[i].input.SetValue("")
		f.fields[i].input.Blur()
	}
	f.focus = 0
	if len(f.fields) > 0 {
		f.fields[0].input.Focus()
	}
	f.fieldErrors = nil
	f.banner = ""
	f.submitting = false
}

// applyError routes a failure to inline field messages when field data is
// available, and to the banner otherwise.
func (f *form) applyError(err error) {
	f.submitting = false
	var problem *emporia.Problem
	if errors.As(err, &problem) {
		if fields := problem.FieldErrors(); fields != nil {
			f.fieldErrors = fields
			f.banner = ""
			return
		}
		f.banner = problem.Title
		return
	}
	f.banner = err.Error()
}

// update handles a key. The bool result reports whether the form submitted.
func (f *form) update(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		f.moveFocus(1)
		return false, nil
	case "shift+tab", "up":
		f.moveFocus(-1)
		return false, nil
	case "enter":
		if f.focus == len(f.fields)-1 {
			return true, nil
		}
		f.moveFocus(1)
		return false, nil
	default:
		var cmd tea.Cmd
		f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
		return false, cmd
	}
}

func (f *form) moveFocus(delta int) {
	f.fields[f.focus].input.Blur()
	f.focus = (f.focus + delta + len(f.fields)) % len(f.fields)
	f.fields[f.focus].input.Focus()
}

func (f *form) view(st Styles) string {
	var b strings.Builder
	b.WriteString(st.Header.Render(f.title) + "\n\n")
	if f.banner != "" {
		b.WriteString(st.Banner.Render(f.banner) + "\n\n")
	}
	for i := range f.fields {
		field := &f.fields[i]
		label := field.label
		if i == f.focus {
			label = st.Accent.Render(label)
		} else {
			label = st.Muted.Render(label)
		}
		b.WriteString(label + "\n" + field.input.View() + "\n")
		if msg, ok := f.fieldErrors[field.key]; ok {
			b.WriteString(st.Danger.Render(msg) + "\n")
		}
		b.WriteString("\n")
	}
	if f.submitting {
		b.WriteString(st.Muted.Render("Submitting...") + "\n")
	}
	return b.String()
}

// Session commands.

func loginCmd(ctx context.Context, mgr *session.Manager, username, password string) tea.Cmd {
	return func() tea.Msg {
		err := mgr.Login(ctx, emporia.LoginRequest{Username: username, Password: password})
		return sessionMsg{action: "login", err: err}
	}
}

func registerCmd(ctx context.Context, mgr *session.Manager, userName, email, password string) tea.Cmd {
	return func() tea.Msg {
		err := mgr.Register(ctx, emporia.RegisterRequest{
			UserName: userName,
			Email:    email,
			Password: password,
		})
		return sessionMsg{action: "register", err: err}
	}
}

func logoutCmd(ctx context.Context, mgr *session.Manager) tea.Cmd {
	return func() tea.Msg {
		mgr.Logout(ctx)
		return sessionMsg{action: "logout"}
	}
}

func forgotPasswordCmd(ctx context.Context, client *emporia.Client, email string) tea.Cmd {
	return func() tea.Msg {
		err := client.ForgotPassword(ctx, emporia.ForgotPasswordRequest{Email: email})
		return actionMsg{action: "forgot-password", err: err}
	}
}

func resetPasswordCmd(ctx context.Context, client *emporia.Client, email, token, newPassword string) tea.Cmd {
	return func() tea.Msg {
		err := client.ResetPassword(ctx, emporia.ResetPasswordRequest{
			Email:       email,
			ResetToken:  token,
			NewPassword: newPassword,
		})
		return actionMsg{action: "reset-password", err: err}
	}
}

func changePasswordCmd(ctx context.Context, mgr *session.Manager, client *emporia.Client, current, next string) tea.Cmd {
	return func() tea.Msg {
		err := mgr.Do(ctx, func(ctx context.Context, token string) error {
			return client.ChangePassword(ctx, token, emporia.ChangePasswordRequest{
				CurrentPassword: current,
				NewPassword:     next,
			})
		})
		return actionMsg{action: "change-password", err: err}
	}
}

func deleteAccountCmd(ctx context.Context, mgr *session.Manager, client *emporia.Client, password string) tea.Cmd {
	return func() tea.Msg {
		err := mgr.Do(ctx, func(ctx context.Context, token string) error {
			return client.DeleteAccount(ctx, token, emporia.DeleteAccountRequest{Password: password})
		})
		return actionMsg{action: "delete-account", err: err}
	}
}
