// Package ui implements the terminal interface using bubbletea.
//
// # Overview
//
// The root model routes between six screens: login, register, the
// forgot-password and reset-password pair, the tabbed home view, and the
// account screen. Home hosts six tabs; five are paged
// lists built on the generic pane type (offers, friends, received and sent
// requests, user search) and one is the unpaged inventory.
//
// # Message Flow
//
// Fetch controllers run on their own goroutines, so their completion is
// bridged into the bubbletea loop by the notifier, which posts a
// paneUpdatedMsg through program.Send. The model then asks each pane whether
// its page changed; a changed page kicks off the avatar fan-out, whose
// result returns as an avatarsMsg tagged with a generation so late batches
// for an abandoned page are dropped.
//
// Mutations (buying, friending, password changes) run as tea.Cmd closures
// that call through the session manager and report back as actionMsg values.
package ui
