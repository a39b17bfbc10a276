package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const (
	// LocalsUserID is the fiber.Locals key of the signed in user id (uint64), set by the session middleware.
	LocalsUserID = "userID"

	// LocalsPermissions holds the []string permissions of the signed in user.
	LocalsPermissions = "permissions"
)

// UserID returns the signed in user id, 0 for anonymous requests.
func UserID(c *fiber.Ctx) uint64 {
	id, _ := c.Locals(LocalsUserID).(uint64) //nolint:errcheck // zero value means anonymous

	return id
}

// RequireAuthenticated answers 401 for anonymous requests.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if UserID(c) == 0 {
			return unauthorized(c)
		}

		return c.Next()
	}
}

// RequirePermission answers 401 for anonymous requests and 403 when the role lacks permission.
func RequirePermission(authService *Service, permission string) fiber.Handler {
	return RequireAnyPermission(authService, permission)
}

// RequireAnyPermission requires at least one of the given permissions.
func RequireAnyPermission(authService *Service, permissions ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := UserID(c)
		if userID == 0 {
			return unauthorized(c)
		}

		hasPermission, err := authService.HasAnyPermission(userID, permissions)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", userID).Strs("permissions", permissions).
				Msg("Failed to check permission")

			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
		}

		if !hasPermission {
			log.Warn().Uint64("user_id", userID).Strs("permissions", permissions).
				Msg("User lacks required permission")

			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":      "Forbidden: you don't have permission to access this resource",
				"permission": permissions[0],
			})
		}

		return c.Next()
	}
}

// AddPermissionsToLocals stores the permissions of the signed in user for templates and /api/auth/me.
func AddPermissionsToLocals(authService *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := UserID(c)
		if userID == 0 {
			return c.Next()
		}

		permissions, err := authService.GetUserPermissions(userID)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", userID).Msg("Failed to get user permissions")

			return c.Next()
		}

		c.Locals(LocalsPermissions, permissions)

		return c.Next()
	}
}

// Permissions returns what AddPermissionsToLocals stored.
func Permissions(c *fiber.Ctx) []string {
	p, _ := c.Locals(LocalsPermissions).([]string) //nolint:errcheck // nil when not set

	return p
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
}
