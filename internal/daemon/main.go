// Package daemon opens the database, session storage and backend, then runs the web service.
package daemon

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/auth"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/backend"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/config"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/db/dsn"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/db/models"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/resources"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/scheduler"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/web"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/web/session"
)

const sessionTable = "sessions"

// Daemon represents the main application daemon.
type Daemon struct {
	cfg            *config.Config
	db             *gorm.DB
	webService     *web.Service
	scheduler      *scheduler.Scheduler
	sessionStorage fiber.Storage
}

// New opens every dependency. The backend being down is not an error, resources fall back or fail per request.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	db, err := OpenDB(cfg)
	if err != nil {
		return nil, err
	}

	if err = Migrate(db); err != nil {
		return nil, err
	}

	if err = seed(db); err != nil {
		return nil, err
	}

	storage := newSessionStorage(cfg)
	session.Init(storage)

	if err = backend.Open(db, &cfg.Backend); err != nil {
		log.Warn().Err(err).Msg("backend client not opened, resource calls will fail or fall back")
	}

	sched := scheduler.New()
	if err = sched.AddBackendHealth(cfg); err != nil {
		return nil, err
	}

	webService, err := web.New(cfg, db)
	if err != nil {
		return nil, err
	}

	return &Daemon{
		cfg:            cfg,
		db:             db,
		webService:     webService,
		scheduler:      sched,
		sessionStorage: storage,
	}, nil
}

// Start runs the scheduler and the web service until SIGINT or SIGTERM.
func (d *Daemon) Start() error {
	scheduler.ProbeBackend(d.cfg.Backend.Timeout)
	d.scheduler.Start()

	errc := make(chan error, 1)

	go func() {
		errc <- d.webService.Start(":" + strconv.Itoa(d.cfg.Webserver.Port))
	}()

	log.Info().Int("port", d.cfg.Webserver.Port).Str("url", d.cfg.Webserver.URL).Msg("web service started")

	go d.webService.WaitShutdown()

	err := <-errc

	d.scheduler.Stop()
	d.close(d.sessionStorage)

	if sqlDB, errDB := d.db.DB(); errDB == nil {
		d.close(sqlDB)
	}

	return err
}

func (d *Daemon) close(c io.Closer) {
	if c == nil {
		return
	}

	if err := c.Close(); err != nil {
		log.Error().Err(err).Msg("close failed")
	}
}

// OpenDB opens the database of the configured gorm engine.
func OpenDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.DB.GormEngine {
	case config.EnginePostgres:
		dialector = gormpostgres.Open(dsn.Create(cfg))
	case config.EngineSQLite:
		dialector = sqlite.Open(dsn.Create(cfg))
	default:
		dialector = gormmysql.Open(dsn.Create(cfg))
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	return db, nil
}

// Migrate creates or updates the tables and seeds the roles and permissions.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := auth.NewService(db).Seed(resources.Names()); err != nil {
		return fmt.Errorf("failed to seed roles: %w", err)
	}

	return nil
}

// newSessionStorage keeps sessions in the database for mysql and postgres, sqlite keeps them in memory.
func newSessionStorage(cfg *config.Config) fiber.Storage {
	switch cfg.DB.GormEngine {
	case config.EngineMySQL:
		return sessionmysql.New(sessionmysql.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         sessionTable,
		})
	case config.EnginePostgres:
		return sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         sessionTable,
		})
	default:
		log.Info().Msg("sqlite engine: sessions are kept in memory")

		return nil
	}
}
