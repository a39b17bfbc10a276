package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// JSONError writes {"error": msg} with status.
func JSONError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// ParamID reads a positive numeric route parameter.
func ParamID(c *fiber.Ctx, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}

	return id, true
}

// SetSessionCookie stores the session id in the browser.
func SetSessionCookie(c *fiber.Ctx, name, value string, maxAge int, devMode bool) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		MaxAge:   maxAge,
		Secure:   !devMode,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *fiber.Ctx, name string, devMode bool) {
	SetSessionCookie(c, name, "", -1, devMode)
}
