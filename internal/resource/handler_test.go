package resource_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/auth"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/backend"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/db/models"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/resource"
)

type note struct {
	resource.Record
	Title string   `json:"title" validate:"required"`
	Body  string   `json:"body"`
	Tags  []string          `json:"tags"`
	Meta  map[string]string `json:"meta,omitempty"`
}

var clock = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func noteDefinition(fallback bool) resource.Definition[note] {
	return resource.Definition[note]{
		Name:     "notes",
		Label:    "Note",
		Fallback: fallback,
		Prepare: func(n *note) {
			n.Title = strings.TrimSpace(n.Title)
		},
		Match: func(n *note, term string) bool {
			return resource.ContainsFold(term, n.Title, n.Body)
		},
		Preview: func(n *note) (string, error) {
			return "<p>" + n.Body + "</p>", nil
		},
	}
}

// fakeBackend keeps notes in a map and answers like the remote admin backend.
type fakeBackend struct {
	mu     sync.Mutex
	seq    uint64
	notes  map[uint64]json.RawMessage
	status int // forced status for every call when set
}

func newFakeBackend(t *testing.T) (*fakeBackend, *backend.Client) {
	t.Helper()

	fb := &fakeBackend{notes: map[uint64]json.RawMessage{}}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /notes", fb.list)
	mux.HandleFunc("GET /notes/search", fb.list)
	mux.HandleFunc("GET /notes/{id}", fb.get)
	mux.HandleFunc("POST /notes", fb.create)
	mux.HandleFunc("PUT /notes/{id}", fb.update)
	mux.HandleFunc("DELETE /notes/{id}", fb.delete)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fb.mu.Lock()
		status := fb.status
		fb.mu.Unlock()

		if status != 0 {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"message":"backend says no"}`))

			return
		}

		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := backend.New(srv.URL)
	require.NoError(t, err)

	return fb, client
}

func (fb *fakeBackend) list(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	q := strings.ToLower(r.URL.Query().Get("q"))
	items := []json.RawMessage{}

	for id := uint64(1); id <= fb.seq; id++ {
		raw, ok := fb.notes[id]
		if !ok || (q != "" && !strings.Contains(strings.ToLower(string(raw)), q)) {
			continue
		}

		items = append(items, raw)
	}

	_ = json.NewEncoder(w).Encode(map[string]any{"data": items, "total": len(items)})
}

func (fb *fakeBackend) get(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	id, _ := strconv.ParseUint(r.PathValue("id"), 10, 64)

	raw, ok := fb.notes[id]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"note not found"}`))

		return
	}

	_, _ = w.Write(raw)
}

func (fb *fakeBackend) create(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	var rec map[string]any
	_ = json.NewDecoder(r.Body).Decode(&rec)

	fb.seq++
	rec["id"] = fb.seq

	raw, _ := json.Marshal(rec)
	fb.notes[fb.seq] = raw

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": rec})
}

func (fb *fakeBackend) update(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	id, _ := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if _, ok := fb.notes[id]; !ok {
		w.WriteHeader(http.StatusNotFound)

		return
	}

	raw, _ := io.ReadAll(r.Body)
	fb.notes[id] = raw

	_, _ = w.Write(raw)
}

func (fb *fakeBackend) delete(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	id, _ := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if _, ok := fb.notes[id]; !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"note not found"}`))

		return
	}

	delete(fb.notes, id)
	w.WriteHeader(http.StatusNoContent)
}

// newApp serves def with a signed in admin (id returned) or the given role.
func newApp(t *testing.T, def resource.Definition[note], client func() *backend.Client, role string) (*fiber.App, uint64) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	authService := auth.NewService(db)
	require.NoError(t, authService.Seed([]string{"notes"}))

	r, err := authService.RoleByName(role)
	require.NoError(t, err)

	user, err := auth.NewLocalProvider(db).CreateUser(auth.UserInput{
		Username: "op", Email: "op@example.com", Password: "secret-pw", RoleID: r.ID, Active: true,
	})
	require.NoError(t, err)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.LocalsUserID, user.ID)

		return c.Next()
	})

	h := resource.New(def, resource.WithClient(client), resource.WithClock(func() time.Time { return clock }))
	h.Register(app.Group("/api"), authService)

	return app, user.ID
}

func call(t *testing.T, app *fiber.App, method, target, body string) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}

	return resp, out
}

func unreachable() *backend.Client { return nil }

func TestCRUDAgainstBackend(t *testing.T) {
	fb, client := newFakeBackend(t)
	app, userID := newApp(t, noteDefinition(false), func() *backend.Client { return client }, auth.RoleAdmin)

	resp, created := call(t, app, fiber.MethodPost, "/api/notes", `{"title":" hello ","body":"world","tags":["a","b"]}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, resource.SourceBackend, resp.Header.Get(resource.HeaderDataSource))
	assert.EqualValues(t, 1, created["id"])
	assert.EqualValues(t, userID, created["userId"])
	assert.Equal(t, "hello", created["title"])
	assert.Equal(t, clock.Format(time.RFC3339), created["createdAt"])
	assert.Equal(t, clock.Format(time.RFC3339), created["updatedAt"])

	// update preserves unspecified fields
	resp, updated := call(t, app, fiber.MethodPatch, "/api/notes/1", `{"body":"changed"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "hello", updated["title"])
	assert.Equal(t, "changed", updated["body"])
	assert.Equal(t, []any{"a", "b"}, updated["tags"])
	assert.EqualValues(t, 1, updated["id"])

	fb.mu.Lock()
	assert.Contains(t, string(fb.notes[1]), `"title":"hello"`)
	fb.mu.Unlock()

	resp, listed := call(t, app, fiber.MethodGet, "/api/notes?page=1&pageSize=10", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, listed["total"])
	assert.EqualValues(t, 10, listed["pageSize"])
	assert.Equal(t, resource.SourceBackend, listed["source"])

	resp, preview := call(t, app, fiber.MethodGet, "/api/notes/1/preview", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "<p>changed</p>", preview["html"])

	resp, deleted := call(t, app, fiber.MethodDelete, "/api/notes/1", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Note deleted", deleted["message"])
	assert.EqualValues(t, 1, deleted["id"])

	// the backend status and message are kept
	resp, missing := call(t, app, fiber.MethodGet, "/api/notes/1", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "note not found", missing["error"])
}

func TestBackendErrorKeepsStatus(t *testing.T) {
	fb, client := newFakeBackend(t)
	app, _ := newApp(t, noteDefinition(true), func() *backend.Client { return client }, auth.RoleAdmin)

	fb.mu.Lock()
	fb.status = http.StatusConflict
	fb.mu.Unlock()

	resp, body := call(t, app, fiber.MethodPost, "/api/notes", `{"title":"x"}`)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "backend says no", body["error"])
}

func TestCRUDAgainstFallback(t *testing.T) {
	app, _ := newApp(t, noteDefinition(true), unreachable, auth.RoleAdmin)

	resp, created := call(t, app, fiber.MethodPost, "/api/notes", `{"title":"first","body":"alpha"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, resource.SourceFallback, resp.Header.Get(resource.HeaderDataSource))
	assert.EqualValues(t, 1, created["id"])

	_, second := call(t, app, fiber.MethodPost, "/api/notes", `{"title":"second","body":"beta","userId":42}`)
	assert.EqualValues(t, 2, second["id"])
	assert.EqualValues(t, 42, second["userId"])

	resp, updated := call(t, app, fiber.MethodPut, "/api/notes/1", `{"body":"gamma"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "first", updated["title"])
	assert.Equal(t, "gamma", updated["body"])

	_, listed := call(t, app, fiber.MethodGet, "/api/notes", "")
	assert.EqualValues(t, 2, listed["total"])
	assert.EqualValues(t, 25, listed["pageSize"])
	assert.Equal(t, resource.SourceFallback, listed["source"])

	_, byUser := call(t, app, fiber.MethodGet, "/api/notes?userId=42", "")
	assert.EqualValues(t, 1, byUser["total"])

	_, found := call(t, app, fiber.MethodGet, "/api/notes/search?q=GAMMA", "")
	require.Len(t, found["data"], 1)
	assert.Equal(t, "first", found["data"].([]any)[0].(map[string]any)["title"])

	resp, _ = call(t, app, fiber.MethodDelete, "/api/notes/1", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = call(t, app, fiber.MethodGet, "/api/notes/1", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = call(t, app, fiber.MethodDelete, "/api/notes/1", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	_, listed = call(t, app, fiber.MethodGet, "/api/notes", "")
	assert.EqualValues(t, 1, listed["total"])
}

func TestUpdateReplacesNamedFields(t *testing.T) {
	fb, client := newFakeBackend(t)
	app, _ := newApp(t, noteDefinition(false), func() *backend.Client { return client }, auth.RoleAdmin)

	resp, _ := call(t, app, fiber.MethodPost, "/api/notes",
		`{"title":"crm","tags":["x","y"],"meta":{"apiKey":"old","region":"eu"}}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, updated := call(t, app, fiber.MethodPut, "/api/notes/1", `{"meta":{"token":"new"},"tags":["z"]}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]any{"token": "new"}, updated["meta"])
	assert.Equal(t, []any{"z"}, updated["tags"])
	assert.Equal(t, "crm", updated["title"])

	fb.mu.Lock()
	stored := map[string]any{}
	require.NoError(t, json.Unmarshal(fb.notes[1], &stored))
	fb.mu.Unlock()

	assert.Equal(t, map[string]any{"token": "new"}, stored["meta"])

	// keys match case insensitively like the decoder does
	resp, updated = call(t, app, fiber.MethodPatch, "/api/notes/1", `{"Meta":{"region":"us"}}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]any{"region": "us"}, updated["meta"])

	// null clears the map
	resp, updated = call(t, app, fiber.MethodPatch, "/api/notes/1", `{"meta":null}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotContains(t, updated, "meta")
}

func TestUpdateReplacesNamedFieldsInFallback(t *testing.T) {
	app, _ := newApp(t, noteDefinition(true), unreachable, auth.RoleAdmin)

	resp, _ := call(t, app, fiber.MethodPost, "/api/notes", `{"title":"crm","meta":{"apiKey":"old"}}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, _ = call(t, app, fiber.MethodPut, "/api/notes/1", `{"meta":{"token":"new"}}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	_, got := call(t, app, fiber.MethodGet, "/api/notes/1", "")
	assert.Equal(t, map[string]any{"token": "new"}, got["meta"])
}

func TestPlainArrayIsPagedLocally(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[{"id":1,"title":"a"},{"id":2,"title":"b"},{"id":3,"title":"c"}]`)
	}))
	t.Cleanup(srv.Close)

	client, err := backend.New(srv.URL)
	require.NoError(t, err)

	app, _ := newApp(t, noteDefinition(false), func() *backend.Client { return client }, auth.RoleAdmin)

	tests := []struct {
		query  string
		titles []any
	}{
		{"?page=1&pageSize=2", []any{"a", "b"}},
		{"?page=2&pageSize=2", []any{"c"}},
		{"?page=2&pageSize=25", []any{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp, listed := call(t, app, fiber.MethodGet, "/api/notes"+tt.query, "")
			require.Equal(t, fiber.StatusOK, resp.StatusCode)
			assert.EqualValues(t, 3, listed["total"])

			titles := []any{}
			for _, item := range listed["data"].([]any) {
				titles = append(titles, item.(map[string]any)["title"])
			}

			assert.Equal(t, tt.titles, titles)
		})
	}
}

func TestUnreachableWithoutFallback(t *testing.T) {
	app, _ := newApp(t, noteDefinition(false), unreachable, auth.RoleAdmin)

	resp, body := call(t, app, fiber.MethodGet, "/api/notes", "")
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, body["error"], "backend unreachable")
}

func TestBadRequests(t *testing.T) {
	app, _ := newApp(t, noteDefinition(true), unreachable, auth.RoleAdmin)

	tests := []struct {
		name   string
		method string
		target string
		body   string
	}{
		{"missing required field", fiber.MethodPost, "/api/notes", `{"body":"x"}`},
		{"blank required field", fiber.MethodPost, "/api/notes", `{"title":"   "}`},
		{"malformed json", fiber.MethodPost, "/api/notes", `{"title":`},
		{"array body", fiber.MethodPost, "/api/notes", `[]`},
		{"non numeric id", fiber.MethodGet, "/api/notes/abc", ""},
		{"zero id", fiber.MethodDelete, "/api/notes/0", ""},
		{"empty search", fiber.MethodGet, "/api/notes/search?q=", ""},
		{"bad page", fiber.MethodGet, "/api/notes?page=x", ""},
		{"bad user filter", fiber.MethodGet, "/api/notes?userId=me", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := call(t, app, tt.method, tt.target, tt.body)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.NotEmpty(t, body["error"])
		})
	}

	_, body := call(t, app, fiber.MethodPost, "/api/notes", `{"body":"x"}`)
	assert.Equal(t, []any{map[string]any{"field": "title", "tag": "required", "value": ""}}, body["fields"])
}

func TestPermissions(t *testing.T) {
	app, _ := newApp(t, noteDefinition(true), unreachable, auth.RoleViewer)

	resp, _ := call(t, app, fiber.MethodGet, "/api/notes", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = call(t, app, fiber.MethodPost, "/api/notes", `{"title":"x"}`)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		page, size string
		want       resource.Page
		wantErr    bool
	}{
		{"", "", resource.Page{Page: 1, PageSize: 25}, false},
		{"0", "0", resource.Page{Page: 1, PageSize: 1}, false},
		{"3", "500", resource.Page{Page: 3, PageSize: 100}, false},
		{"-2", "10", resource.Page{Page: 1, PageSize: 10}, false},
		{"one", "", resource.Page{}, true},
	}

	for _, tt := range tests {
		got, err := resource.ParsePage(tt.page, tt.size)
		if tt.wantErr {
			assert.ErrorIs(t, err, resource.ErrInvalidPaging)

			continue
		}

		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	assert.Equal(t, []int{3, 4}, resource.Slice([]int{1, 2, 3, 4, 5}, resource.Page{Page: 2, PageSize: 2}))
	assert.Empty(t, resource.Slice([]int{1}, resource.Page{Page: 4, PageSize: 2}))
}

func TestContainsFold(t *testing.T) {
	assert.True(t, resource.ContainsFold("WORLD", "hello", "world"))
	assert.True(t, resource.ContainsFold("  "))
	assert.False(t, resource.ContainsFold("x", "hello"))
}
