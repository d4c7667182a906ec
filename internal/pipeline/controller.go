package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/quake-feed-service/internal/feedview"
	"github.com/couchcryptid/quake-feed-service/internal/loader"
)

// ErrOffline is returned when the connectivity probe fails and no load starts.
var ErrOffline = errors.New("no internet connection")

// ConnectivityChecker reports whether the feed host looks reachable.
type ConnectivityChecker interface {
	Online(ctx context.Context) bool
}

// FeedLoader is the part of the loader the controller drives. Its methods
// are only called on the dispatcher goroutine.
type FeedLoader interface {
	Start(ctx context.Context) error
	Reset() error
	State() loader.State
}

// SettingsStore holds the preferences that shape each load.
type SettingsStore interface {
	All() map[string]string
	SetAll(values map[string]string) error
}

// Controller sequences loader commands on the dispatcher and keeps the view
// in step with them.
type Controller struct {
	dispatch *loader.Dispatcher
	loader   FeedLoader
	view     *feedview.View
	settings SettingsStore
	checker  ConnectivityChecker
	logger   *slog.Logger
}

// NewController wires a controller. A nil checker treats the network as
// always reachable.
func NewController(dispatch *loader.Dispatcher, l FeedLoader, view *feedview.View, settings SettingsStore, checker ConnectivityChecker, logger *slog.Logger) *Controller {
	return &Controller{
		dispatch: dispatch,
		loader:   l,
		view:     view,
		settings: settings,
		checker:  checker,
		logger:   logger,
	}
}

// Start begins a load. The load outlives ctx's cancellation; only the fetch
// timeouts bound it.
func (c *Controller) Start(ctx context.Context) error {
	online := c.online(ctx)
	return c.call(func() error {
		if !online {
			c.showOfflineLocked()
			return ErrOffline
		}
		return c.startLocked(ctx)
	})
}

// Refresh is Start under the name the API and the periodic refresher use.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.Start(ctx)
}

// UpdateSettings applies new preferences, invalidates the current rows and
// starts a load with the new values.
func (c *Controller) UpdateSettings(ctx context.Context, values map[string]string) error {
	if err := c.settings.SetAll(values); err != nil {
		return err
	}
	c.logger.Info("settings updated", "settings", values)

	online := c.online(ctx)
	return c.call(func() error {
		if err := c.loader.Reset(); err != nil && !errors.Is(err, loader.ErrNotStarted) {
			return err
		}
		if !online {
			c.showOfflineLocked()
			return ErrOffline
		}
		return c.startLocked(ctx)
	})
}

// Settings returns the current preferences.
func (c *Controller) Settings() map[string]string {
	return c.settings.All()
}

// Snapshot returns the current view state.
func (c *Controller) Snapshot() feedview.Snapshot {
	return c.view.Snapshot()
}

// startLocked must run on the dispatcher goroutine.
func (c *Controller) startLocked(ctx context.Context) error {
	if err := c.loader.Start(context.WithoutCancel(ctx)); err != nil {
		return err
	}
	c.view.SetLoading(true)
	return nil
}

// showOfflineLocked must run on the dispatcher goroutine. A load already in
// flight keeps its loading state; its delivery replaces the rows.
func (c *Controller) showOfflineLocked() {
	if c.loader.State() == loader.Loading {
		return
	}
	c.view.ShowOffline()
}

func (c *Controller) online(ctx context.Context) bool {
	if c.checker == nil || c.checker.Online(ctx) {
		return true
	}
	c.logger.Warn("feed host unreachable, load skipped")
	return false
}

func (c *Controller) call(fn func() error) error {
	var err error
	if callErr := c.dispatch.Call(func() { err = fn() }); callErr != nil {
		return fmt.Errorf("dispatch: %w", callErr)
	}
	return err
}
