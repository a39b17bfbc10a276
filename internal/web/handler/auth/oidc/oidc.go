package oidc

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/auth"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/config"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/web/handler"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/web/handler/login"
	authmiddleware "github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/web/middleware/auth"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/web/session"
)

const (
	// LoginPath is the path to initiate OIDC login.
	LoginPath = handler.APIPath + "/auth/oidc/login"

	// CallbackPath is the path for OIDC callback.
	CallbackPath = handler.APIPath + "/auth/oidc/callback"

	// LogoutPath is the path for OIDC logout.
	LogoutPath = handler.APIPath + "/auth/oidc/logout"

	stateTTL = 5 * time.Minute
)

// pending is a started sign in waiting for its callback.
type pending struct {
	expires time.Time
	next    string
}

// Service is the OIDC handler service.
type Service struct {
	handler.Service
	cfg          *config.Config
	oidcProvider *auth.OIDCProvider
	states       *xsync.MapOf[string, pending]
	now          func() time.Time
}

// Handler is the OIDC handler.
var Handler = Service{}

// Init discovers the provider and registers the routes. A provider that can not be
// reached leaves OIDC disabled without failing the start.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, _ *auth.Service) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.cfg = cfg
	s.states = xsync.NewMapOf[string, pending]()

	if s.now == nil {
		s.now = time.Now
	}

	if !cfg.Auth.OIDC.Enabled {
		log.Info().Msg("OIDC authentication is disabled by configuration")

		return nil
	}

	provider, err := auth.NewOIDCProvider(context.Background(), &cfg.Auth, db)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize OIDC provider, OIDC authentication will be disabled")

		return nil
	}

	s.oidcProvider = provider

	log.Info().Str("issuer", cfg.Auth.OIDC.IssuerURL).Msg("OIDC authentication provider initialized")

	app.Get(LoginPath, s.Login)
	app.Get(CallbackPath, s.Callback)
	app.Get(LogoutPath, s.Logout)

	return nil
}

// Login initiates the OIDC login flow.
func (s *Service) Login(c *fiber.Ctx) error {
	state, err := auth.GenerateStateToken()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate state token")

		return handler.JSONError(c, fiber.StatusInternalServerError, "Internal Server Error")
	}

	s.purgeExpired()
	s.states.Store(state, pending{
		expires: s.now().Add(stateTTL),
		next:    authmiddleware.SafeNext(c.Query("next")),
	})

	return c.Redirect(s.oidcProvider.AuthURL(state))
}

// Callback checks the state, exchanges the code and starts a session.
func (s *Service) Callback(c *fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")

	if code == "" || state == "" {
		return handler.JSONError(c, fiber.StatusBadRequest, "invalid callback parameters")
	}

	p, ok := s.states.LoadAndDelete(state)
	if !ok || s.now().After(p.expires) {
		log.Warn().Msg("unknown or expired OIDC state token")

		return handler.JSONError(c, fiber.StatusBadRequest, "invalid state token")
	}

	user, rawIDToken, err := s.oidcProvider.HandleCallback(c.UserContext(), code)
	if err != nil {
		log.Error().Err(err).Msg("OIDC authentication failed")

		if errors.Is(err, auth.ErrUserAccountDisabled) {
			return handler.JSONError(c, fiber.StatusForbidden, err.Error())
		}

		return handler.JSONError(c, fiber.StatusUnauthorized, "authentication failed")
	}

	err = login.StartSession(c, s.cfg, &session.Data{
		UserID:   user.ID,
		Username: user.Username,
		RoleID:   user.RoleID,
		IDToken:  rawIDToken,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to start session")

		return handler.JSONError(c, fiber.StatusInternalServerError, "Internal Server Error")
	}

	log.Info().Str("username", user.Username).Msg("user logged in via OIDC")

	return c.Redirect(p.next)
}

// Logout ends the local session and redirects to the provider end session endpoint when there is one.
func (s *Service) Logout(c *fiber.Ctx) error {
	sessionID := c.Cookies(session.CookieName)

	data := new(session.Data)
	if err := data.Read(sessionID); err != nil && !errors.Is(err, session.ErrNotFound) {
		log.Error().Err(err).Msg("failed to read session")
	}

	if err := session.Destroy(sessionID); err != nil {
		log.Error().Err(err).Msg("failed to delete session")
	}

	handler.ClearSessionCookie(c, session.CookieName, s.cfg.DevMode)

	if data.IDToken != "" {
		if logoutURL := s.oidcProvider.LogoutURL(data.IDToken, s.cfg.Webserver.URL); logoutURL != "" {
			return c.Redirect(logoutURL)
		}
	}

	return c.Redirect(login.Path)
}

func (s *Service) purgeExpired() {
	now := s.now()

	s.states.Range(func(state string, p pending) bool {
		if now.After(p.expires) {
			s.states.Delete(state)
		}

		return true
	})
}
