// Package account serves the signed in operator: profile, menu, password and TOTP.
package account

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/auth"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/config"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/web/handler"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/web/navigation"
)

const (
	// Path groups the account routes.
	Path = handler.APIPath + "/auth"
)

// CodeInput carries a TOTP code.
type CodeInput struct {
	Code string `json:"code" validate:"required,numeric,len=6"`
}

// PasswordInput changes the password of a local user.
type PasswordInput struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=128,nefield=OldPassword"`
}

// Service is the account handler service.
type Service struct {
	handler.Service
	authService *auth.Service
	localAuth   *auth.LocalProvider
	validator   *validator.Validate

	// Resources lists the proxied resource names for the menu.
	Resources []string
}

// Handler is the account handler.
var Handler = Service{}

// Init initializes the account handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	if app == nil || cfg == nil || db == nil || authService == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.authService = authService
	s.localAuth = auth.NewLocalProvider(db)
	s.validator = validator.New()

	// login, logout and OIDC share the prefix, so no group middleware here
	signedIn := auth.RequireAuthenticated()

	app.Get(Path+"/me", signedIn, s.Me)
	app.Post(Path+"/password", signedIn, s.ChangePassword)
	app.Post(Path+"/totp/setup", signedIn, s.SetupTOTP)
	app.Post(Path+"/totp/enable", signedIn, s.EnableTOTP)
	app.Post(Path+"/totp/disable", signedIn, s.DisableTOTP)

	return nil
}

// Me returns the signed in user, its permissions and the menu they allow.
func (s *Service) Me(c *fiber.Ctx) error {
	user, err := s.localAuth.GetUserByID(auth.UserID(c))
	if err != nil {
		return s.fail(c, err)
	}

	permissions := auth.Permissions(c)
	if permissions == nil {
		if permissions, err = s.authService.GetUserPermissions(user.ID); err != nil {
			return s.fail(c, err)
		}
	}

	return c.JSON(fiber.Map{
		"user":        handler.NewUserView(user),
		"permissions": permissions,
		"menu":        navigation.Menu(permissions, s.Resources),
	})
}

// ChangePassword changes the password of a local user after checking the old one.
func (s *Service) ChangePassword(c *fiber.Ctx) error {
	in := new(PasswordInput)
	if err := s.parse(c, in); err != nil {
		return handler.JSONError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := s.localAuth.ChangePassword(auth.UserID(c), in.OldPassword, in.NewPassword); err != nil {
		return s.fail(c, err)
	}

	return c.JSON(fiber.Map{"message": "password changed"})
}

// SetupTOTP starts enrolment and returns the secret and otpauth URL.
func (s *Service) SetupTOTP(c *fiber.Ctx) error {
	key, err := s.localAuth.SetupTOTP(auth.UserID(c), handler.IssuerName)
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(fiber.Map{
		"secret": key.Secret(),
		"url":    key.URL(),
	})
}

// EnableTOTP confirms enrolment with the first code.
func (s *Service) EnableTOTP(c *fiber.Ctx) error {
	in := new(CodeInput)
	if err := s.parse(c, in); err != nil {
		return handler.JSONError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := s.localAuth.EnableTOTP(auth.UserID(c), in.Code); err != nil {
		return s.fail(c, err)
	}

	return c.JSON(fiber.Map{"totpEnabled": true})
}

// DisableTOTP turns the second factor off.
func (s *Service) DisableTOTP(c *fiber.Ctx) error {
	in := new(CodeInput)
	if err := s.parse(c, in); err != nil {
		return handler.JSONError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := s.localAuth.DisableTOTP(auth.UserID(c), in.Code); err != nil {
		return s.fail(c, err)
	}

	return c.JSON(fiber.Map{"totpEnabled": false})
}

var errInvalidBody = errors.New("invalid request body")

func (s *Service) parse(c *fiber.Ctx, in any) error {
	if err := c.BodyParser(in); err != nil {
		return errInvalidBody
	}

	if err := s.validator.Struct(in); err != nil {
		return err //nolint:wrapcheck
	}

	return nil
}

func (s *Service) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, auth.ErrUserNotFound):
		return handler.JSONError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, auth.ErrInvalidOldPassword), errors.Is(err, auth.ErrInvalidTOTPCode),
		errors.Is(err, auth.ErrTOTPNotEnrolled), errors.Is(err, auth.ErrTOTPAlreadyEnabled),
		errors.Is(err, auth.ErrLocalUserRequired):
		return handler.JSONError(c, fiber.StatusBadRequest, err.Error())
	default:
		log.Error().Err(err).Uint64("user_id", auth.UserID(c)).Str("path", c.Path()).Msg("account request failed")

		return handler.JSONError(c, fiber.StatusInternalServerError, err.Error())
	}
}
