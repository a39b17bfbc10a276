package backend_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/backend"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...backend.Option) *backend.Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := backend.New(srv.URL+"/api", opts...)
	require.NoError(t, err)

	return c
}

func TestNewRejectsInvalidURL(t *testing.T) {
	for _, u := range []string{"", "backend:4000", "/api"} {
		_, err := backend.New(u)
		require.ErrorIs(t, err, backend.ErrInvalidBaseURL, u)
	}
}

func TestList(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantLen   int
		wantTotal int
		wantPaged bool
	}{
		{name: "plain array", body: `[{"id":1},{"id":2}]`, wantLen: 2, wantTotal: 2},
		{name: "envelope", body: `{"data":[{"id":1}],"total":42}`, wantLen: 1, wantTotal: 42, wantPaged: true},
		{name: "envelope without total", body: `{"data":[{"id":1},{"id":2},{"id":3}]}`, wantLen: 3, wantTotal: 3},
		{name: "null", body: `null`, wantLen: 0, wantTotal: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/api/tags", r.URL.Path)
				assert.Equal(t, "7", r.URL.Query().Get("userId"))
				_, _ = io.WriteString(w, tt.body)
			})

			res, err := c.Resource("tags").List(context.Background(), url.Values{"userId": {"7"}})
			require.NoError(t, err)
			assert.Len(t, res.Items, tt.wantLen)
			assert.Equal(t, tt.wantTotal, res.Total)
			assert.Equal(t, tt.wantPaged, res.Paged)
		})
	}
}

func TestListInvalidBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `<html>`)
	})

	_, err := c.Resource("tags").List(context.Background(), nil)
	require.ErrorIs(t, err, backend.ErrInvalidResponse)
	assert.False(t, backend.IsUnreachable(err))
}

func TestSearch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/customers/search", r.URL.Path)
		assert.Equal(t, "acme corp", r.URL.Query().Get("q"))
		_, _ = io.WriteString(w, `[{"id":3,"name":"Acme"}]`)
	})

	res, err := c.Resource("customers").Search(context.Background(), "acme corp", nil)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
}

func TestCRUDHeadersAndBodies(t *testing.T) {
	secret := "0123456789abcdef0123"

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key-123456", r.Header.Get("X-API-Key"))

		token, err := jwt.ParseWithClaims(
			r.Header.Get("Authorization")[len("Bearer "):],
			&jwt.RegisteredClaims{},
			func(*jwt.Token) (any, error) { return []byte(secret), nil },
			jwt.WithValidMethods([]string{"HS256"}),
		)
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		claims := token.Claims.(*jwt.RegisteredClaims) //nolint:forcetypeassert
		assert.Equal(t, "42", claims.Subject)
		assert.Equal(t, "admin-test", claims.Issuer)
		assert.WithinDuration(t, time.Now().Add(time.Minute), claims.ExpiresAt.Time, 5*time.Second)

		switch r.Method {
		case http.MethodPost:
			assert.Equal(t, "/api/tags", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			body, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"name":"vip"}`, string(body))

			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"data":{"id":9,"name":"vip"}}`)
		case http.MethodPut:
			assert.Equal(t, "/api/tags/9", r.URL.Path)
			_, _ = io.WriteString(w, `{"id":9,"name":"gold"}`)
		case http.MethodGet:
			assert.Equal(t, "/api/tags/9", r.URL.Path)
			_, _ = io.WriteString(w, `{"id":9,"name":"gold"}`)
		case http.MethodDelete:
			assert.Equal(t, "/api/tags/9", r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		}
	}, backend.WithAPIKey("key-123456"), backend.WithAssertion(secret, "admin-test"))

	ctx := backend.WithOperator(context.Background(), 42)
	tags := c.Resource("tags")

	created, err := tags.Create(ctx, json.RawMessage(`{"name":"vip"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":9,"name":"vip"}`, string(created))

	updated, err := tags.Update(ctx, 9, json.RawMessage(`{"id":9,"name":"gold"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":9,"name":"gold"}`, string(updated))

	got, err := tags.Get(ctx, 9)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":9,"name":"gold"}`, string(got))

	require.NoError(t, tags.Delete(ctx, 9))
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{name: "message field", status: http.StatusConflict, body: `{"message":"tag exists","error":"conflict"}`, message: "tag exists"},
		{name: "error field", status: http.StatusBadRequest, body: `{"error":"name required"}`, message: "name required"},
		{name: "raw body", status: http.StatusBadGateway, body: "upstream down\n", message: "upstream down"},
		{name: "empty body", status: http.StatusNotFound, body: "", message: "Not Found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := c.Resource("tags").Get(context.Background(), 1)
			require.Error(t, err)

			be, ok := backend.AsError(err)
			require.True(t, ok)
			assert.Equal(t, tt.status, be.StatusCode)
			assert.Equal(t, tt.message, be.Message)
			assert.False(t, backend.IsUnreachable(err))
		})
	}
}

func TestUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c, err := backend.New(addr)
	require.NoError(t, err)

	_, err = c.Resource("tags").List(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, backend.IsUnreachable(err))

	_, ok := backend.AsError(err)
	assert.False(t, ok)
}

func TestTimeoutIsUnreachable(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	c := newTestClient(t, func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, backend.WithTimeout(50*time.Millisecond))

	_, err := c.Resource("tags").Get(context.Background(), 1)
	assert.True(t, backend.IsUnreachable(err))
}

func TestNilClient(t *testing.T) {
	var c *backend.Client

	_, err := c.Resource("webhooks").List(context.Background(), nil)
	require.ErrorIs(t, err, backend.ErrUnreachable)
	require.ErrorIs(t, err, backend.ErrClientNotInitialized)
	assert.Empty(t, c.BaseURL())
}
