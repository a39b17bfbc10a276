// Package backendserver is the JSON API for the remote backend connection settings.
package backendserver

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/auth"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/backend"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/config"
	controller "github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/db/controller/backendserver"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/db/controller/setting"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/resource"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/web/handler"
)

const (
	// Path is the path of the backend settings endpoint.
	Path = handler.APIPath + "/admin/settings/backend"

	name = "backend-settings"
)

// Service is the backend settings handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB

	// reopen swaps backend.Engine to the saved settings, it runs in its own goroutine.
	reopen func()
}

// Handler is the backend settings handler.
var Handler = Service{}

// Init initializes the backend settings handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	if app == nil || cfg == nil || db == nil || authService == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.db = db
	s.cfg = cfg

	if s.reopen == nil {
		s.reopen = s.reopenEngine
	}

	app.Route(Path, func(router fiber.Router) {
		router.Use(auth.RequirePermission(authService, auth.PermAdminBackend))
		router.Get("", s.Get)
		router.Post("", s.Post)
	})

	return nil
}

// Get returns the effective settings with secrets masked.
func (s *Service) Get(c *fiber.Ctx) error {
	settings, stored, err := s.load()
	if err != nil {
		return resource.Fail(c, name, "get", err)
	}

	return c.JSON(fiber.Map{
		"settings":  settings.Masked(),
		"stored":    stored,
		"reachable": backend.Engine.Reachable(),
	})
}

// Post validates and stores the settings, then reconnects in the background.
func (s *Service) Post(c *fiber.Ctx) error {
	in := controller.Settings{}
	if err := c.BodyParser(&in); err != nil {
		return resource.Fail(c, name, "save", resource.ErrMalformedBody)
	}

	old, _, err := s.load()
	if err != nil {
		return resource.Fail(c, name, "save", err)
	}

	in.KeepSecrets(old)

	if err = resource.Validate(&in); err != nil {
		return resource.Fail(c, name, "save", err)
	}

	if err = in.Save(s.db); err != nil {
		return resource.Fail(c, name, "save", err)
	}

	log.Info().Str("url", in.URL).Uint64("by", auth.UserID(c)).Msg("backend settings saved")

	go s.reopen()

	return c.JSON(fiber.Map{
		"message":  "Backend settings saved",
		"settings": in.Masked(),
	})
}

// load returns the stored settings, or the config file values when nothing is stored.
func (s *Service) load() (controller.Settings, bool, error) {
	stored := controller.Settings{}

	err := stored.Load(s.db)

	switch {
	case err == nil:
		return stored, true, nil
	case errors.Is(err, setting.ErrSettingNotFound):
		return controller.FromConfig(&s.cfg.Backend), false, nil
	default:
		return controller.Settings{}, false, err
	}
}

func (s *Service) reopenEngine() {
	if err := backend.Open(s.db, &s.cfg.Backend); err != nil {
		log.Error().Err(err).Msg("failed to open backend with the new settings")

		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Backend.Timeout)
	defer cancel()

	if err := backend.Engine.Test(ctx); err != nil {
		log.Warn().Err(err).Msg("backend test with the new settings failed")
	}
}
