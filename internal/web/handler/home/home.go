// Package home renders the start page of signed in operators.
package home

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/auth"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/config"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/web/handler"
	authmiddleware "github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/web/middleware/auth"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/web/navigation"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/web/session"
)

// TemplateName is the start page template.
const TemplateName = "index"

// Service is the home handler service.
type Service struct {
	handler.Service
	cfg *config.Config

	// Resources lists the proxied resource names for the menu.
	Resources []string
}

// Handler is the home handler.
var Handler = Service{}

// Init initializes the home handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, _ *gorm.DB, _ *auth.Service) error {
	if app == nil || cfg == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg

	app.Get(handler.RootPath, authmiddleware.RequireLogin, s.Get)

	return nil
}

// Get lists the API areas the operator may use.
func (s *Service) Get(c *fiber.Ctx) error {
	nav := navigation.NewContext("Home", "", "").AddBreadcrumb("Home", handler.RootPath, true)

	username := ""
	if data, ok := c.Locals(authmiddleware.LocalsCurrentUser).(session.Data); ok {
		username = data.Username
	}

	return c.Render(TemplateName, fiber.Map{
		"title":      s.cfg.Title,
		"Navigation": nav,
		"Username":   username,
		"Menu":       navigation.Menu(auth.Permissions(c), s.Resources),
	}, handler.BaseLayout)
}
