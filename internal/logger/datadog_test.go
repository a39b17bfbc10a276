package logger_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/logger"
)

func TestDataDogWriter(t *testing.T) {
	var (
		mu       sync.Mutex
		messages []map[string]any
		apiKeys  []string
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)

		var items []map[string]any
		assert.NoError(t, json.Unmarshal(body, &items))

		mu.Lock()
		messages = append(messages, items...)
		apiKeys = append(apiKeys, r.Header.Get("DD-API-KEY"))
		mu.Unlock()

		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("{}"))
	}))
	defer srv.Close()

	w := logger.NewDataDogWriter(logger.DataDog{
		APIKey:  "secret",
		Tags:    []string{"env:test", "team:chat"},
		Servers: datadog.ServerConfigurations{{URL: srv.URL}},
		Timeout: time.Second,
	}, "livechat-admin")

	_, err := w.Write([]byte(`{"level":"info","message":"hello"}` + "\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	mu.Lock()
	defer mu.Unlock()

	require.Len(t, messages, 1)
	assert.Equal(t, `{"level":"info","message":"hello"}`, messages[0]["message"])
	assert.Equal(t, "livechat-admin", messages[0]["service"])
	assert.Equal(t, "go", messages[0]["ddsource"])
	assert.Equal(t, "env:test,team:chat", messages[0]["ddtags"])
	assert.Equal(t, []string{"secret"}, apiKeys)
}

func TestDataDogWriterDropsWhenFull(t *testing.T) {
	block := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-block
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	w := logger.NewDataDogWriter(logger.DataDog{
		BufferSize: 1,
		Servers:    datadog.ServerConfigurations{{URL: srv.URL}},
		Timeout:    time.Second,
	}, "livechat-admin")

	// writes never block, even with a stuck intake
	for range 10 {
		n, err := w.Write([]byte("line"))
		require.NoError(t, err)
		assert.Equal(t, 4, n)
	}

	close(block)
	require.NoError(t, w.Close())
}
