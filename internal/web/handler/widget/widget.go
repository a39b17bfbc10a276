// Package widget serves the chat widget appearance API and its HTML preview.
package widget

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/auth"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/config"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/resource"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/web/handler"
	authmiddleware "github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/web/middleware/auth"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/web/navigation"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/widget"
)

const (
	// APIPath is the appearance endpoint, :websiteId selects the website.
	APIPath = handler.APIPath + "/widget/:websiteId/appearance"

	// PreviewPath is the HTML preview page.
	PreviewPath = handler.RootPath + "widget/:websiteId/preview"

	// TemplatePreview is the preview page template.
	TemplatePreview = "widget/preview"

	name = "widget"
)

// Service is the widget handler service.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
}

// Handler is the widget handler.
var Handler = Service{}

// Init initializes the widget handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	if app == nil || cfg == nil || db == nil || authService == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.db = db
	s.authService = authService

	read := auth.RequirePermission(authService, auth.PermWidgetRead)
	write := auth.RequirePermission(authService, auth.PermWidgetWrite)

	app.Get(APIPath, read, s.Get)
	app.Put(APIPath, write, s.Put)
	app.Delete(APIPath, write, s.Delete)

	app.Get(PreviewPath, authmiddleware.RequireLogin, s.Preview)

	return nil
}

// Get returns the stored or default appearance.
func (s *Service) Get(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "websiteId")
	if !ok {
		return resource.Fail(c, name, "get", resource.ErrInvalidID)
	}

	a, stored, err := widget.Load(s.db, id)
	if err != nil {
		return resource.Fail(c, name, "get", err)
	}

	return c.JSON(fiber.Map{"websiteId": id, "stored": stored, "appearance": a})
}

// Put decodes the body over the current appearance, validates and saves it.
func (s *Service) Put(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "websiteId")
	if !ok {
		return resource.Fail(c, name, "save", resource.ErrInvalidID)
	}

	a, _, err := widget.Load(s.db, id)
	if err != nil {
		return resource.Fail(c, name, "save", err)
	}

	if err = json.Unmarshal(c.Body(), &a); err != nil {
		return resource.Fail(c, name, "save", resource.ErrMalformedBody)
	}

	if err = widget.Save(s.db, id, &a); err != nil {
		return resource.Fail(c, name, "save", err)
	}

	log.Info().Uint64("website_id", id).Uint64("by", auth.UserID(c)).Msg("widget appearance saved")

	return c.JSON(fiber.Map{"websiteId": id, "stored": true, "appearance": a})
}

// Delete resets the website to the default appearance.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "websiteId")
	if !ok {
		return resource.Fail(c, name, "reset", resource.ErrInvalidID)
	}

	if err := widget.Reset(s.db, id); err != nil {
		return resource.Fail(c, name, "reset", err)
	}

	return c.JSON(fiber.Map{"websiteId": id, "stored": false, "appearance": widget.Default()})
}

// Preview renders the widget with the stored appearance and the query overrides.
func (s *Service) Preview(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "websiteId")
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString(resource.ErrInvalidID.Error())
	}

	allowed, err := s.authService.HasPermission(auth.UserID(c), auth.PermWidgetRead)
	if err != nil {
		log.Error().Err(err).Msg("failed to check widget permission")

		return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
	}

	if !allowed {
		return c.Status(fiber.StatusForbidden).SendString("Forbidden")
	}

	a, stored, err := widget.Load(s.db, id)
	if err != nil {
		log.Error().Err(err).Uint64("website_id", id).Msg("failed to load widget appearance")

		return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
	}

	a = a.WithOverrides(func(key string) string { return c.Query(key) })

	websiteID := strconv.FormatUint(id, 10)
	nav := navigation.NewContext("Widget preview", navigation.SectionWidget, "preview").
		AddBreadcrumb("Widget", "/api/widget/"+websiteID+"/appearance", false).
		AddBreadcrumb("Website "+websiteID, "", false).
		AddBreadcrumb("Preview", c.OriginalURL(), true)

	return c.Render(TemplatePreview, fiber.Map{
		"title":      s.cfg.Title,
		"Navigation": nav,
		"WebsiteID":  id,
		"Stored":     stored,
		"Appearance": a,
		"Icon":       a.Bubble.IconGlyph(),
	}, handler.BaseLayout)
}
