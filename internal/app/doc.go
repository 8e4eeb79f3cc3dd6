// Package app is the composition root for the peddler application.
//
// Run wires the pieces together in dependency order:
//
//  1. config.Load reads ~/.config/peddler/config.toml (flag overrides apply)
//  2. logging.New opens the file-backed zap logger
//  3. emporia.NewClient builds the API client with its cookie jar
//  4. session.NewManager owns the access token and refresh protocol
//  5. imagecache.New and state.Store register their logout hooks
//  6. Manager.Bootstrap performs the once-per-process startup refresh
//  7. StartPoller keeps the account header (balance) current
//  8. ui.Run starts the TUI and blocks
//
// The poller is deliberately tolerant: a failed game-info fetch records the
// error in the state store and keeps the previous snapshot, so the header
// survives transient API outages. Fatal errors are reserved for startup
// (bad config, unparseable API URL, unwritable log file).
package app
