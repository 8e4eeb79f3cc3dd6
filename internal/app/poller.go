package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/emporia-game/peddler/internal/emporia"
	"github.com/emporia-game/peddler/internal/session"
	"github.com/emporia-game/peddler/internal/state"
)

const defaultPollInterval = 30 * time.Second

// StartPoller launches a background goroutine that refreshes the account
// snapshot (username, balance) at a fixed cadence. It returns immediately.
// While the session is logged out the poller idles without touching the API.
func StartPoller(ctx context.Context, store *state.Store, client *emporia.Client, mgr *session.Manager, interval time.Duration, log *zap.Logger) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			refreshGameInfo(ctx, store, client, mgr, log)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

func refreshGameInfo(ctx context.Context, store *state.Store, client *emporia.Client, mgr *session.Manager, log *zap.Logger) {
	if !mgr.IsLoggedIn() {
		return
	}

	var info *emporia.GameInfo
	err := mgr.Do(ctx, func(ctx context.Context, token string) error {
		var callErr error
		info, callErr = client.GameInfo(ctx, token)
		return callErr
	})
	if err != nil {
		store.Update(nil, err)
		log.Debug("game info poll failed", zap.Error(err))
		return
	}
	store.Update(info, nil)
}
