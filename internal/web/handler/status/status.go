// Package status serves the health endpoints and Prometheus metrics.
package status

import (
	"errors"
	"sync/atomic"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/auth"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/backend"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/config"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/version"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/web/handler"
)

const (
	// CheckAlivePath answers load balancer probes.
	CheckAlivePath = handler.RootPath + "checkalive"

	// APIPath reports the service and backend state.
	APIPath = handler.APIPath + "/status"

	// MetricsPath exposes Prometheus metrics.
	MetricsPath = handler.RootPath + "metrics"
)

// Service is the status handler service.
type Service struct {
	handler.Service
	db *gorm.DB

	// Alive turns false during graceful shutdown, nil means always alive.
	Alive *atomic.Bool
}

// Handler is the status handler.
var Handler = Service{}

// Init registers the routes, all of them are public.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, _ *auth.Service) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.db = db

	app.Get(CheckAlivePath, s.CheckAlive)
	app.Get(APIPath, s.Status)
	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	return nil
}

// CheckAlive returns 200, or 503 once shutdown started.
func (s *Service) CheckAlive(c *fiber.Ctx) error {
	if s.Alive != nil && !s.Alive.Load() {
		return c.Status(fiber.StatusServiceUnavailable).SendString("shutting down")
	}

	return c.SendString("OK")
}

// Status reports the version, the database and the last backend probe.
func (s *Service) Status(c *fiber.Ctx) error {
	dbOK := true

	if sqlDB, err := s.db.DB(); err != nil || sqlDB.PingContext(c.UserContext()) != nil {
		dbOK = false
	}

	client := backend.Engine.Client()

	return c.JSON(fiber.Map{
		"version": version.Version,
		"commit":  version.Commit,
		"database": fiber.Map{
			"ok": dbOK,
		},
		"backend": fiber.Map{
			"configured": client != nil,
			"url":        client.BaseURL(),
			"reachable":  backend.Engine.Reachable(),
		},
	})
}
