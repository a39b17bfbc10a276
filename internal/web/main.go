// Package web wires the fiber application: middleware, templates, static files and handlers.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/template/html/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/auth"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/config"
	fiberlog "github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/logger/adapter/fiber"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/resources"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/web/handler"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/web/handler/account"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/web/handler/admin/settings/backendserver"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/web/handler/admin/user"
	oidchandler "github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/web/handler/auth/oidc"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/web/handler/home"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/web/handler/login"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/web/handler/logout"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/web/handler/status"
	widgethandler "github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/web/handler/widget"
	authmiddleware "github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/web/middleware/auth"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
	authService  *auth.Service
}

// Start starts the web service on the given address and blocks until it stops.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan error, 1)

	go func() {
		err := s.App.Listen(addr)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}

		doneFiber <- err
	}()

	// wait for fiber to stop
	return <-doneFiber
}

// WaitShutdown waits for SIGINT or SIGTERM and shuts the server down gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	log.Info().Msg("stopping http server ...")

	if err := s.App.Shutdown(); err != nil {
		log.Error().Err(err).Msg("")
	}

	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates the web service and registers every handler.
func New(cfg *config.Config, db *gorm.DB) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if db == nil {
		return nil, errors.New("db cannot be nil")
	}

	httpFS := http.FS(templateEmbedFS{embeddedTemplates})
	templateEngine := html.NewFileSystem(httpFS, ".gohtml")

	// in debug mode, use local filesystem for templates
	if cfg.DevMode {
		templateEngine = html.New("./internal/web/templates", ".gohtml")
		templateEngine.ShouldReload = true

		log.Warn().Msg("debug mode enabled: using local filesystem for templates")
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        handler.IssuerName,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
			Views:          templateEngine,
		},
	)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New(recover.Config{EnableStackTrace: cfg.DevMode}))
	}

	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(fiberlog.New(fiberlog.Config{
		Config:        cfg.Log,
		CheckAliveURI: status.CheckAlivePath,
		UserIDKey:     auth.LocalsUserID,
	}))

	if len(cfg.Webserver.CORS.AllowOrigins) > 0 {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     strings.Join(cfg.Webserver.CORS.AllowOrigins, ","),
			AllowCredentials: true,
		}))
	}

	if cfg.Webserver.CookieEncryptionKey != "" {
		app.Use(encryptcookie.New(encryptcookie.Config{Key: cfg.Webserver.CookieEncryptionKey}))
	}

	// serve embedded static files
	app.Use("/static",
		filesystem.New(
			filesystem.Config{
				Root:       http.FS(embeddedStaticFiles),
				PathPrefix: "static",
			},
		),
	)

	authService := auth.NewService(db)

	// session lookup, then the permissions of the signed in user
	app.Use(authmiddleware.Middleware)
	app.Use(auth.AddPermissionsToLocals(authService))

	service := &Service{
		cfg:         cfg,
		App:         app,
		db:          db,
		authService: authService,
	}
	service.alive.Store(true)

	names := resources.Register(app.Group(handler.APIPath), authService)

	status.Handler.Alive = &service.alive
	account.Handler.Resources = names
	home.Handler.Resources = names

	// handlers register their own routes with permission checks
	for _, h := range []handler.Service{
		&status.Handler,
		&login.Handler,
		&logout.Handler,
		&oidchandler.Handler,
		&account.Handler,
		&home.Handler,
		&widgethandler.Handler,
		&user.Handler,
		&backendserver.Handler,
	} {
		if err := h.Init(app, cfg, db, authService); err != nil {
			return nil, err
		}
	}

	return service, nil
}
