// Package session owns the authenticated session: the in-memory access
// token, the signed-in user's name, and the refresh machinery.
//
// Refreshes are collapsed with golang.org/x/sync/singleflight so any number
// of concurrent 401s produce exactly one refresh request. Manager.Do wraps a
// protected API call with the retry contract: on a 401, refresh once and
// replay the call once; a second 401 or a failed refresh surfaces the
// original error and clears the session.
//
// Bootstrap runs once at startup and attempts to mint an access token from
// the refresh cookie held by the client's cookie jar, so a restart does not
// force a fresh login.
package session
