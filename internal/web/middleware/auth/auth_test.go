package auth_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authz "github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/auth"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/backend"
	authmiddleware "github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/web/middleware/auth"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/web/session"
)

func newApp() *fiber.App {
	app := fiber.New()
	app.Use(authmiddleware.Middleware)

	app.Get("/whoami", func(c *fiber.Ctx) error {
		op, _ := backend.OperatorFrom(c.UserContext())

		return c.JSON(fiber.Map{"userId": authz.UserID(c), "operator": op})
	})
	app.Get("/page", authmiddleware.RequireLogin, func(c *fiber.Ctx) error {
		return c.SendString("page")
	})

	return app
}

func TestMiddleware(t *testing.T) {
	session.Init(nil)

	id, err := session.GenerateSessionID()
	require.NoError(t, err)
	require.NoError(t, (&session.Data{UserID: 5, Username: "alice"}).Write(id, time.Minute))

	app := newApp()

	req := httptest.NewRequest(fiber.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: id})

	resp, err := app.Test(req)
	require.NoError(t, err)

	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"userId":5,"operator":5}`, string(body))

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/whoami", nil))
	require.NoError(t, err)

	body, _ = io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"userId":0,"operator":0}`, string(body))
}

func TestRequireLogin(t *testing.T) {
	session.Init(nil)

	resp, err := newApp().Test(httptest.NewRequest(fiber.MethodGet, "/page?x=1", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?next=%2Fpage%3Fx%3D1", resp.Header.Get("Location"))
}

func TestSafeNext(t *testing.T) {
	assert.Equal(t, "/widget/1/preview", authmiddleware.SafeNext("/widget/1/preview"))
	assert.Equal(t, "/", authmiddleware.SafeNext("https://evil.example"))
	assert.Equal(t, "/", authmiddleware.SafeNext("//evil.example"))
	assert.Equal(t, "/", authmiddleware.SafeNext(""))
}
