package auth

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	authz "github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/auth"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/backend"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/web/session"
)

const (
	// LoginPath is where RequireLogin sends anonymous browsers.
	LoginPath = "/login"

	// LocalsCurrentUser holds the session.Data of the signed in operator for templates.
	LocalsCurrentUser = "CurrentUser"
)

// Middleware resolves the session cookie into the signed in user. Anonymous requests pass through,
// route guards decide whether they are allowed.
func Middleware(c *fiber.Ctx) error {
	if strings.HasPrefix(c.Path(), "/static") {
		return c.Next()
	}

	sessData := new(session.Data)
	if err := sessData.Read(c.Cookies(session.CookieName)); err != nil || sessData.UserID == 0 {
		return c.Next()
	}

	c.Locals(authz.LocalsUserID, sessData.UserID)
	c.Locals(LocalsCurrentUser, *sessData)

	// outbound backend calls name the acting operator
	c.SetUserContext(backend.WithOperator(c.UserContext(), sessData.UserID))

	return c.Next()
}

// RequireLogin redirects anonymous browsers to the login page and back afterwards.
func RequireLogin(c *fiber.Ctx) error {
	if authz.UserID(c) != 0 {
		return c.Next()
	}

	return c.Redirect(LoginPath + "?next=" + url.QueryEscape(c.OriginalURL()))
}

// SafeNext returns next if it is a local path, "/" otherwise.
func SafeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}

	return next
}
