package widget

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/auth"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/config"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/db/models"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/widget"
)

// captureViews keeps the data of the last render.
type captureViews struct {
	data fiber.Map
}

func (v *captureViews) Load() error { return nil }

func (v *captureViews) Render(w io.Writer, name string, data interface{}, _ ...string) error {
	v.data, _ = data.(fiber.Map)
	_, _ = io.WriteString(w, name)

	return nil
}

type fixture struct {
	app    *fiber.App
	views  *captureViews
	editor *models.User
	viewer *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	authService := auth.NewService(db)
	require.NoError(t, authService.Seed(nil))

	f := &fixture{views: &captureViews{}}

	for _, u := range []struct {
		ptr  **models.User
		name string
		role string
	}{{&f.editor, "editor", auth.RoleEditor}, {&f.viewer, "viewer", auth.RoleViewer}} {
		role, err := authService.RoleByName(u.role)
		require.NoError(t, err)

		*u.ptr, err = auth.NewLocalProvider(db).CreateUser(auth.UserInput{
			Username: u.name, Email: u.name + "@example.com", Password: "password-1", RoleID: role.ID, Active: true,
		})
		require.NoError(t, err)
	}

	f.app = fiber.New(fiber.Config{Views: f.views})
	f.app.Use(func(c *fiber.Ctx) error {
		var id uint64
		if _, err := fmt.Sscan(c.Get("X-User"), &id); err == nil {
			c.Locals(auth.LocalsUserID, id)
		}

		return c.Next()
	})

	s := &Service{}
	require.NoError(t, s.Init(f.app, &config.Config{Title: "Admin"}, db, authService))

	return f
}

func (f *fixture) do(t *testing.T, as *models.User, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	if as != nil {
		req.Header.Set("X-User", fmt.Sprint(as.ID))
	}

	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)

	out := map[string]any{}
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &out)

	return resp, out
}

func TestAppearanceLifecycle(t *testing.T) {
	f := newFixture(t)
	path := "/api/widget/7/appearance"

	resp, body := f.do(t, f.viewer, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["stored"])

	resp, body = f.do(t, f.editor, http.MethodPut, path, `{"bubble":{"color":"#FF0000","position":"left"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	bubble := body["appearance"].(map[string]any)["bubble"].(map[string]any)
	assert.Equal(t, "#ff0000", bubble["color"])
	assert.Equal(t, "left", bubble["position"])
	assert.Equal(t, "chat", bubble["icon"], "unspecified fields keep their value")

	resp, body = f.do(t, f.viewer, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["stored"])

	resp, _ = f.do(t, f.editor, http.MethodDelete, path, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, body = f.do(t, f.viewer, http.MethodGet, path, "")
	assert.Equal(t, false, body["stored"])
}

func TestAppearanceErrors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		as   *models.User
		path string
		body string
		want int
	}{
		{"anonymous", nil, "/api/widget/1/appearance", `{}`, http.StatusUnauthorized},
		{"viewer can not write", f.viewer, "/api/widget/1/appearance", `{}`, http.StatusForbidden},
		{"bad id", f.editor, "/api/widget/x/appearance", `{}`, http.StatusBadRequest},
		{"malformed", f.editor, "/api/widget/1/appearance", `{"bubble":`, http.StatusBadRequest},
		{"invalid size", f.editor, "/api/widget/1/appearance", `{"bubble":{"size":10}}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := f.do(t, tt.as, http.MethodPut, tt.path, tt.body)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestPreview(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(t, nil, http.MethodGet, "/widget/3/preview", "")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?next=%2Fwidget%2F3%2Fpreview", resp.Header.Get("Location"))

	resp, _ = f.do(t, f.viewer, http.MethodGet, "/widget/3/preview?bubbleColor=%2300ff00&position=middle&title=Hello", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	a := f.views.data["Appearance"].(widget.Appearance)
	assert.Equal(t, "#00ff00", a.Bubble.Color)
	assert.Equal(t, "right", a.Bubble.Position, "invalid override is ignored")
	assert.Equal(t, "Hello", a.Window.Title)
	assert.Equal(t, uint64(3), f.views.data["WebsiteID"])
}
