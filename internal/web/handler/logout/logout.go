// Package logout ends operator sessions.
package logout

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/auth"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/config"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/web/handler"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/web/handler/login"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/web/session"
)

const (
	// Path is the browser logout route.
	Path = handler.RootPath + "logout"

	// APIPath is the JSON logout endpoint.
	APIPath = handler.APIPath + "/auth/logout"
)

// Service is the logout handler service.
type Service struct {
	handler.Service
	cfg *config.Config
}

// Handler is the logout handler.
var Handler = Service{}

// Init initializes the logout handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, _ *gorm.DB, _ *auth.Service) error {
	if app == nil || cfg == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg

	// outside the auth middleware protection
	app.Get(Path, s.Logout)
	app.Post(Path, s.Logout)
	app.Post(APIPath, s.LogoutJSON)

	return nil
}

// Logout clears the session and redirects to the login page.
func (s *Service) Logout(c *fiber.Ctx) error {
	s.end(c)

	return c.Redirect(login.Path)
}

// LogoutJSON clears the session for API clients.
func (s *Service) LogoutJSON(c *fiber.Ctx) error {
	s.end(c)

	return c.JSON(fiber.Map{"message": "logged out"})
}

func (s *Service) end(c *fiber.Ctx) {
	if err := session.Destroy(c.Cookies(session.CookieName)); err != nil {
		log.Error().Err(err).Msg("failed to delete session")
	}

	handler.ClearSessionCookie(c, session.CookieName, s.cfg.DevMode)
}
