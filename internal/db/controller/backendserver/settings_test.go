package backendserver_test

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/config"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/db/controller/backendserver"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/db/controller/setting"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/db/models"
)

func TestSaveLoad(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Setting{}))

	var empty backendserver.Settings
	require.ErrorIs(t, empty.Load(db), setting.ErrSettingNotFound)

	s := backendserver.Settings{URL: "http://backend:4000/api", APIKey: "abcdefgh12", TimeoutSeconds: 20}
	require.NoError(t, s.Save(db))

	var loaded backendserver.Settings
	require.NoError(t, loaded.Load(db))
	assert.Equal(t, s, loaded)
	assert.Equal(t, 20*time.Second, loaded.Timeout())
}

func TestMaskedAndKeepSecrets(t *testing.T) {
	stored := backendserver.Settings{URL: "http://a", APIKey: "abcdefgh12", AssertionSecret: "0123456789abcdef"}

	masked := stored.Masked()
	assert.Equal(t, "********", masked.APIKey)
	assert.Equal(t, "********", masked.AssertionSecret)
	assert.Equal(t, "abcdefgh12", stored.APIKey, "masking must not touch the original")

	update := masked
	update.URL = "http://b"
	update.KeepSecrets(stored)
	assert.Equal(t, "abcdefgh12", update.APIKey)
	assert.Equal(t, "0123456789abcdef", update.AssertionSecret)

	update.APIKey = "newkey-123"
	update.KeepSecrets(stored)
	assert.Equal(t, "newkey-123", update.APIKey)
}

func TestFromConfig(t *testing.T) {
	s := backendserver.FromConfig(&config.Backend{URL: "http://x", Timeout: 15 * time.Second})
	assert.Equal(t, 15, s.TimeoutSeconds)
	assert.Equal(t, "http://x", s.URL)
}
