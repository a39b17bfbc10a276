// Package login signs operators in with local accounts or LDAP, as HTML form and JSON API.
package login

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/auth"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/config"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/db/models"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/web/handler"
	authmiddleware "github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/web/middleware/auth"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/web/session"
)

const (
	// Path is the path to the login page.
	Path = authmiddleware.LoginPath

	// APIPath is the JSON login endpoint.
	APIPath = handler.APIPath + "/auth/login"

	// TemplateName is the login page template.
	TemplateName = "login"

	authTypeLocal = "local"
	authTypeLDAP  = "ldap"
)

// Input is the login form or JSON body.
type Input struct {
	Username string `json:"username" form:"username" validate:"required,max=100"`
	Password string `json:"password" form:"password" validate:"required"`
	Code     string `json:"code"     form:"code"`
	Method   string `json:"method"   form:"method"`
	Next     string `json:"next"     form:"next"`
}

// Service is the login handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
	localAuth *auth.LocalProvider
	ldapAuth  *auth.LDAPProvider
}

// Handler is the login handler.
var Handler = Service{}

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, _ *auth.Service) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.db = db
	s.cfg = cfg
	s.validator = validator.New()
	s.localAuth = auth.NewLocalProvider(db)
	s.ldapAuth = nil

	if cfg.Auth.LDAP.Enabled {
		ldapAuth, err := auth.NewLDAPProvider(&cfg.Auth, db)
		if err != nil {
			log.Warn().Err(err).Msg("LDAP authentication will be disabled")
		} else {
			s.ldapAuth = ldapAuth
		}
	}

	// register routes
	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RootPath, s.Get)
		router.Post(handler.RootPath, s.Post)
	})

	app.Post(APIPath, s.PostJSON)

	return nil
}

// Get handles the login page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	if auth.UserID(c) != 0 {
		return c.Redirect(authmiddleware.SafeNext(c.Query("next")))
	}

	return s.render(c, fiber.Map{"next": c.Query("next")})
}

// Post handles the login form submission.
func (s *Service) Post(c *fiber.Ctx) error {
	in := new(Input)

	if err := c.BodyParser(in); err != nil {
		return s.render(c, fiber.Map{"error": ErrInvalidFormData.Error()})
	}

	user, err := s.login(c, in)
	if err != nil {
		data := fiber.Map{
			"error":    err.Error(),
			"username": in.Username,
			"method":   in.Method,
			"next":     in.Next,
		}

		if errors.Is(err, auth.ErrTOTPRequired) || errors.Is(err, auth.ErrInvalidTOTPCode) {
			data["totp_required"] = true
		}

		return s.render(c, data)
	}

	log.Info().Str("username", user.Username).Msg("user logged in")

	return c.Redirect(authmiddleware.SafeNext(in.Next))
}

// PostJSON is the login endpoint of the dashboard API.
func (s *Service) PostJSON(c *fiber.Ctx) error {
	in := new(Input)

	if err := c.BodyParser(in); err != nil {
		return handler.JSONError(c, fiber.StatusBadRequest, ErrInvalidFormData.Error())
	}

	user, err := s.login(c, in)

	switch {
	case err == nil:
		return c.JSON(fiber.Map{"user": handler.NewUserView(user)})
	case errors.Is(err, auth.ErrTOTPRequired), errors.Is(err, auth.ErrInvalidTOTPCode):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error(), "totpRequired": true})
	case errors.Is(err, ErrInvalidCredentials):
		return handler.JSONError(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, auth.ErrUserAccountDisabled):
		return handler.JSONError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, ErrInternalServerError):
		return handler.JSONError(c, fiber.StatusInternalServerError, err.Error())
	default:
		return handler.JSONError(c, fiber.StatusBadRequest, err.Error())
	}
}

// login validates the input, authenticates and starts the session.
func (s *Service) login(c *fiber.Ctx, in *Input) (*models.User, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, ErrInvalidFormData
	}

	method, err := s.pickAuthType(in.Method)
	if err != nil {
		return nil, err
	}

	user, err := s.authenticate(method, in.Username, in.Password, in.Code)
	if err != nil {
		log.Warn().Err(err).Str("username", in.Username).Str("method", method).Msg("login failed")

		return nil, err
	}

	if err = s.startSession(c, user); err != nil {
		log.Error().Err(err).Msg("failed to start session")

		return nil, ErrInternalServerError
	}

	return user, nil
}

// pickAuthType resolves the requested method against the configuration.
func (s *Service) pickAuthType(requested string) (string, error) {
	switch requested {
	case "":
		if s.cfg.Auth.LocalDB.Enabled {
			return authTypeLocal, nil
		}

		if s.cfg.Auth.LDAP.Enabled {
			return authTypeLDAP, nil
		}

		return "", ErrNoAuthMethod
	case authTypeLocal:
		if !s.cfg.Auth.LocalDB.Enabled {
			return "", ErrLocalAuthDisabled
		}

		return authTypeLocal, nil
	case authTypeLDAP:
		if !s.cfg.Auth.LDAP.Enabled || s.ldapAuth == nil {
			return "", ErrLDAPAuthDisabled
		}

		return authTypeLDAP, nil
	default:
		return "", ErrInvalidAuthMethod
	}
}

// authenticate maps provider errors to what the login form may tell.
func (s *Service) authenticate(method, username, password, code string) (*models.User, error) {
	var (
		user *models.User
		err  error
	)

	switch method {
	case authTypeLocal:
		user, err = s.localAuth.Authenticate(username, password, code)
	case authTypeLDAP:
		if s.ldapAuth == nil {
			return nil, ErrLDAPAuthDisabled
		}

		user, err = s.ldapAuth.Authenticate(username, password)
	default:
		return nil, ErrInvalidAuthMethod
	}

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, auth.ErrTOTPRequired), errors.Is(err, auth.ErrInvalidTOTPCode),
		errors.Is(err, auth.ErrUserAccountDisabled):
		return nil, err
	case errors.Is(err, auth.ErrUserNotFound), errors.Is(err, auth.ErrInvalidPassword),
		errors.Is(err, auth.ErrMultipleUsersFound):
		return nil, ErrInvalidCredentials
	default:
		log.Error().Err(err).Str("method", method).Msg("authentication error")

		return nil, fmt.Errorf("%w: %w", ErrInternalServerError, err)
	}
}

func (s *Service) startSession(c *fiber.Ctx, user *models.User) error {
	return StartSession(c, s.cfg, &session.Data{
		UserID:   user.ID,
		Username: user.Username,
		RoleID:   user.RoleID,
	})
}

// StartSession writes data under a new session id and sets the cookie. Used by every sign in method.
func StartSession(c *fiber.Ctx, cfg *config.Config, data *session.Data) error {
	sessionID, err := session.GenerateSessionID()
	if err != nil {
		return err //nolint:wrapcheck
	}

	if err = data.Write(sessionID, cfg.Webserver.Session.ExpiryTime); err != nil {
		return err //nolint:wrapcheck
	}

	handler.SetSessionCookie(c, session.CookieName, sessionID,
		int(cfg.Webserver.Session.ExpiryTime.Seconds()), cfg.DevMode)

	return nil
}

func (s *Service) render(c *fiber.Ctx, data fiber.Map) error {
	data["title"] = s.cfg.Title
	data["local_db_enabled"] = s.cfg.Auth.LocalDB.Enabled
	data["ldap_enabled"] = s.cfg.Auth.LDAP.Enabled && s.ldapAuth != nil
	data["oidc_enabled"] = s.cfg.Auth.OIDC.Enabled

	return c.Render(TemplateName, data, handler.BaseLayout)
}
