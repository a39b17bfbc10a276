package backend

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/config"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/db/controller/backendserver"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/db/controller/setting"
)

type engine struct {
	client    atomic.Pointer[Client]
	reachable atomic.Bool
}

// Engine holds the process wide backend client. It is swapped by Open when settings change.
var Engine engine //nolint:gochecknoglobals

// Client returns the current client, nil before Open.
func (e *engine) Client() *Client {
	return e.client.Load()
}

// Set replaces the client, used by Open and tests.
func (e *engine) Set(c *Client) {
	e.client.Store(c)
}

// Reachable reports the result of the last Test.
func (e *engine) Reachable() bool {
	return e.reachable.Load()
}

// Test pings the backend health endpoint and records the result.
func (e *engine) Test(ctx context.Context) error {
	c := e.Client()

	err := c.Health(ctx)

	was := e.reachable.Swap(err == nil)

	switch {
	case err == nil:
		up.Set(1)

		if !was {
			log.Info().Str("url", c.BaseURL()).Msg("backend is reachable")
		}
	default:
		up.Set(0)

		if was {
			log.Warn().Err(err).Bool("timeout", isTimeout(err)).Str("url", c.BaseURL()).Msg("backend became unreachable")
		}
	}

	return err
}

// Open builds the client from the backend_server setting, the [Backend] config section is the default.
func Open(db *gorm.DB, cfg *config.Backend) error {
	settings := backendserver.FromConfig(cfg)

	stored := backendserver.Settings{}

	err := stored.Load(db)

	switch {
	case err == nil:
		settings = stored
	case errors.Is(err, setting.ErrSettingNotFound):
		log.Debug().Msg("no backend_server setting stored, using config file")
	default:
		return err
	}

	if settings.URL == "" {
		Engine.Set(nil)

		return ErrClientNotInitialized
	}

	c, err := New(settings.URL,
		WithAPIKey(settings.APIKey),
		WithTimeout(settings.Timeout()),
		WithAssertion(settings.AssertionSecret, "go-livechat-admin"),
	)
	if err != nil {
		return err
	}

	Engine.Set(c)

	return nil
}
