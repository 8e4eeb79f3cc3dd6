package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/emporia-game/peddler/internal/config"
	"github.com/emporia-game/peddler/internal/emporia"
	"github.com/emporia-game/peddler/internal/imagecache"
	"github.com/emporia-game/peddler/internal/logging"
	"github.com/emporia-game/peddler/internal/prefs"
	"github.com/emporia-game/peddler/internal/session"
	"github.com/emporia-game/peddler/internal/state"
	"github.com/emporia-game/peddler/internal/ui"
)

// Options configure the peddler application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/peddler/prefs.toml
	APIURL     string // overrides the configured API origin
	LogPath    string // overrides the configured log file
	PollEvery  int    // seconds; zero uses default
}

// Run boots the peddler TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.APIURL != "" {
		cfg.APIURL = opts.APIURL
	}
	if opts.LogPath != "" {
		cfg.LogPath = opts.LogPath
	}
	if opts.PollEvery > 0 {
		cfg.PollSeconds = opts.PollEvery
	}

	log, err := logging.New(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	userPrefs := prefs.Load(opts.PrefsPath)

	client, err := emporia.NewClient(cfg.APIURL)
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}
	if cfg.RequestTimeout > 0 {
		client.SetTimeout(time.Duration(cfg.RequestTimeout) * time.Second)
	}

	mgr := session.NewManager(client, log)
	images := imagecache.New(nil)
	mgr.OnLogout(images.Clear)

	store := &state.Store{}
	mgr.OnLogout(store.Reset)

	// Mount-time bootstrap: try to recover the session from the refresh
	// cookie before any protected view renders.
	mgr.Bootstrap(ctx)
	log.Info("session bootstrap complete", zap.Bool("logged_in", mgr.IsLoggedIn()))

	interval := time.Duration(cfg.PollSeconds) * time.Second
	StartPoller(ctx, store, client, mgr, interval, log)

	uiOpts := ui.Options{
		Context:   ctx,
		Client:    client,
		Session:   mgr,
		Images:    images,
		Store:     store,
		Logger:    log,
		PageSize:  userPrefs.PageSize,
		ThemeName: userPrefs.Theme,
		PrefsPath: opts.PrefsPath,
	}
	return ui.Run(uiOpts)
}
