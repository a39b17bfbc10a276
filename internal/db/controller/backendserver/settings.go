// Package backendserver stores the connection settings of the remote admin backend.
package backendserver

import (
	"time"

	"gorm.io/gorm"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/config"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/db/controller/setting"
)

const (
	// SettingKey is the key used to store the backend settings in the database.
	SettingKey = "backend_server"

	maskedSecret = "********"
)

// Settings represents the remote backend connection.
type Settings struct {
	URL             string `json:"url"             validate:"required,url"`
	APIKey          string `json:"apiKey"          validate:"omitempty,min=8"`
	AssertionSecret string `json:"assertionSecret" validate:"omitempty,min=16"`
	TimeoutSeconds  int    `json:"timeoutSeconds"  validate:"gte=0,lte=300"`
}

// FromConfig builds settings from the [Backend] config section.
func FromConfig(cfg *config.Backend) Settings {
	return Settings{
		URL:             cfg.URL,
		APIKey:          cfg.APIKey,
		AssertionSecret: cfg.AssertionSecret,
		TimeoutSeconds:  int(cfg.Timeout / time.Second),
	}
}

// Timeout as duration, zero means the client default.
func (s *Settings) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// Load loads the backend settings from the database.
func (s *Settings) Load(db *gorm.DB) error {
	return setting.Load(db, SettingKey, s)
}

// Save saves the backend settings to the database.
func (s *Settings) Save(db *gorm.DB) error {
	return setting.Store(db, SettingKey, s)
}

// Masked returns a copy safe to hand to the dashboard.
func (s Settings) Masked() Settings {
	if s.APIKey != "" {
		s.APIKey = maskedSecret
	}

	if s.AssertionSecret != "" {
		s.AssertionSecret = maskedSecret
	}

	return s
}

// KeepSecrets copies secrets from old when s carries the masked placeholder or nothing.
func (s *Settings) KeepSecrets(old Settings) {
	if s.APIKey == maskedSecret || s.APIKey == "" {
		s.APIKey = old.APIKey
	}

	if s.AssertionSecret == maskedSecret || s.AssertionSecret == "" {
		s.AssertionSecret = old.AssertionSecret
	}
}
