// Package user is the JSON API for managing dashboard users in the admin area.
package user

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/auth"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/config"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/db/models"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/resource"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/web/handler"
)

const (
	// Path is the base path for user management.
	Path = handler.APIPath + "/admin/users"

	name = "users"
)

var (
	// ErrDeleteAdmin is returned for deleting a user with the admin role.
	ErrDeleteAdmin = errors.New("cannot delete admin users")

	// ErrDeleteSelf is returned when a user tries to delete their own account.
	ErrDeleteSelf = errors.New("you cannot delete your own account")
)

// Input is the create and update body. Password is required on create only.
type Input struct {
	Username  string `json:"username"  validate:"required,min=3,max=100"`
	Email     string `json:"email"     validate:"required,email,max=255"`
	Password  string `json:"password"  validate:"omitempty,min=8,max=128"`
	FirstName string `json:"firstName" validate:"max=100"`
	LastName  string `json:"lastName"  validate:"max=100"`
	Role      string `json:"role"`
	RoleID    uint   `json:"roleId"`
	Active    *bool  `json:"active"`
}

// Service provides CRUD operations for users.
type Service struct {
	handler.Service
	cfg         *config.Config
	db          *gorm.DB
	authService *auth.Service
	localAuth   *auth.LocalProvider
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) error {
	if app == nil || cfg == nil || db == nil || authService == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.db = db
	s.cfg = cfg
	s.authService = authService
	s.localAuth = auth.NewLocalProvider(db)

	app.Route(Path, func(router fiber.Router) {
		router.Use(auth.RequirePermission(authService, auth.PermAdminUsers))
		router.Get("", s.List)
		router.Post("", s.Create)
		router.Get("/:id", s.Get)
		router.Put("/:id", s.Update)
		router.Delete("/:id", s.Delete)
	})

	return nil
}

// List returns one page of users, filtered by search.
func (s *Service) List(c *fiber.Ctx) error {
	page, err := resource.ParsePage(c.Query("page"), c.Query("pageSize"))
	if err != nil {
		return handler.JSONError(c, fiber.StatusBadRequest, err.Error())
	}

	users, total, err := s.localAuth.ListUsers(strings.TrimSpace(c.Query("search")), page.PageSize, page.Offset())
	if err != nil {
		return s.fail(c, "list", err)
	}

	data := make([]handler.UserView, 0, len(users))
	for i := range users {
		data = append(data, handler.NewUserView(&users[i]))
	}

	return c.JSON(fiber.Map{
		"data":     data,
		"total":    total,
		"page":     page.Page,
		"pageSize": page.PageSize,
	})
}

// Get returns one user.
func (s *Service) Get(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.JSONError(c, fiber.StatusBadRequest, resource.ErrInvalidID.Error())
	}

	user, err := s.localAuth.GetUserByID(id)
	if err != nil {
		return s.fail(c, "get", err)
	}

	return c.JSON(handler.NewUserView(user))
}

// Create adds a local user.
func (s *Service) Create(c *fiber.Ctx) error {
	in, err := s.parse(c)
	if err != nil {
		return s.fail(c, "create", err)
	}

	if in.Password == "" {
		return s.fail(c, "create", &resource.ValidationError{
			Fields: []resource.FieldError{{Field: "password", Tag: "required"}},
		})
	}

	ui, err := s.userInput(in, true)
	if err != nil {
		return s.fail(c, "create", err)
	}

	user, err := s.localAuth.CreateUser(ui)
	if err != nil {
		return s.fail(c, "create", err)
	}

	log.Info().Str("username", user.Username).Uint64("by", auth.UserID(c)).Msg("user created")

	user, err = s.localAuth.GetUserByID(user.ID)
	if err != nil {
		return s.fail(c, "create", err)
	}

	return c.Status(fiber.StatusCreated).JSON(handler.NewUserView(user))
}

// Update changes profile, role and state. The password only changes when given.
func (s *Service) Update(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.JSONError(c, fiber.StatusBadRequest, resource.ErrInvalidID.Error())
	}

	current, err := s.localAuth.GetUserByID(id)
	if err != nil {
		return s.fail(c, "update", err)
	}

	in, err := s.parse(c)
	if err != nil {
		return s.fail(c, "update", err)
	}

	if in.Active == nil {
		in.Active = &current.Active
	}

	if in.Role == "" && in.RoleID == 0 {
		in.RoleID = current.RoleID
	}

	ui, err := s.userInput(in, current.Active)
	if err != nil {
		return s.fail(c, "update", err)
	}

	// passwords of directory users live elsewhere
	if current.AuthSource != models.AuthSourceLocal {
		ui.Password = ""
	}

	if err = s.localAuth.UpdateUser(id, ui); err != nil {
		return s.fail(c, "update", err)
	}

	user, err := s.localAuth.GetUserByID(id)
	if err != nil {
		return s.fail(c, "update", err)
	}

	return c.JSON(handler.NewUserView(user))
}

// Delete removes a user. Admins and the signed in user can not be deleted.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return handler.JSONError(c, fiber.StatusBadRequest, resource.ErrInvalidID.Error())
	}

	user, err := s.localAuth.GetUserByID(id)
	if err != nil {
		return s.fail(c, "delete", err)
	}

	if user.Role.Name == auth.RoleAdmin {
		return handler.JSONError(c, fiber.StatusForbidden, ErrDeleteAdmin.Error())
	}

	if user.ID == auth.UserID(c) {
		return handler.JSONError(c, fiber.StatusBadRequest, ErrDeleteSelf.Error())
	}

	if err = s.localAuth.DeleteUser(id); err != nil {
		return s.fail(c, "delete", err)
	}

	log.Info().Str("username", user.Username).Uint64("by", auth.UserID(c)).Msg("user deleted")

	return c.JSON(fiber.Map{"message": "User deleted", "id": id})
}

func (s *Service) parse(c *fiber.Ctx) (*Input, error) {
	in := new(Input)
	if err := c.BodyParser(in); err != nil {
		return nil, resource.ErrMalformedBody
	}

	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if err := resource.Validate(in); err != nil {
		return nil, err //nolint:wrapcheck
	}

	return in, nil
}

// userInput resolves the role by id, by name, or the configured default role.
func (s *Service) userInput(in *Input, active bool) (auth.UserInput, error) {
	roleID := in.RoleID

	if roleID == 0 {
		roleName := in.Role
		if roleName == "" {
			roleName = s.cfg.Auth.DefaultRole
		}

		role, err := s.authService.RoleByName(roleName)
		if err != nil {
			return auth.UserInput{}, err //nolint:wrapcheck
		}

		roleID = role.ID
	}

	if in.Active != nil {
		active = *in.Active
	}

	return auth.UserInput{
		Username:  in.Username,
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		RoleID:    roleID,
		Active:    active,
	}, nil
}

func (s *Service) fail(c *fiber.Ctx, operation string, err error) error {
	switch {
	case errors.Is(err, auth.ErrUserNotFound):
		return handler.JSONError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, auth.ErrUserNameOrEmailExists):
		return handler.JSONError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrRoleNotFound):
		return handler.JSONError(c, fiber.StatusBadRequest, err.Error())
	default:
		return resource.Fail(c, name, operation, err)
	}
}
