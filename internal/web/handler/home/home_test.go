package home

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/auth"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/config"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/web/navigation"
)

type captureViews struct {
	data fiber.Map
}

func (v *captureViews) Load() error { return nil }

func (v *captureViews) Render(w io.Writer, name string, data interface{}, _ ...string) error {
	v.data, _ = data.(fiber.Map)
	_, _ = io.WriteString(w, name)

	return nil
}

func TestHome(t *testing.T) {
	views := &captureViews{}
	app := fiber.New(fiber.Config{Views: views})
	app.Use(func(c *fiber.Ctx) error {
		if c.Get("X-User") != "" {
			c.Locals(auth.LocalsUserID, uint64(1))
			c.Locals(auth.LocalsPermissions, []string{auth.ResourceRead("tags")})
		}

		return c.Next()
	})

	s := &Service{Resources: []string{"tags", "customers"}}
	require.NoError(t, s.Init(app, &config.Config{}, nil, nil))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User", "1")

	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	menu := views.data["Menu"].([]navigation.MenuItem)
	require.Len(t, menu, 1)
	assert.Equal(t, "tags", menu[0].Name)
}
