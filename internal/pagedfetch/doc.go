// Package pagedfetch coordinates paged list loading for the UI.
//
// A Controller owns one list's query and result. Query changes are debounced
// and stamped with a generation number; only the most recently issued fetch
// may publish its outcome, so a slow page two can never overwrite a fast
// page three. While a refetch is in flight the previous page stays visible,
// and a failed refetch keeps it too, alongside the error message.
//
// The initial load shows nothing for a short grace period before admitting
// to a loading state, which keeps fast responses from flashing a spinner.
package pagedfetch
