// Package widget holds the appearance of the embeddable chat widget per website.
package widget

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/db/controller/setting"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/resource"
)

// SettingKeyPrefix is followed by the website id.
const SettingKeyPrefix = "widget_appearance_"

// Bubble is the launcher button.
type Bubble struct {
	Color    string `json:"color"    validate:"required,hexcolor"`
	Icon     string `json:"icon"     validate:"required,oneof=chat help message"`
	Position string `json:"position" validate:"required,oneof=left right"`
	Size     int    `json:"size"     validate:"min=40,max=96"`
}

// ChatBar is the collapsed bar shown instead of the bubble.
type ChatBar struct {
	Enabled         bool   `json:"enabled"`
	Text            string `json:"text"            validate:"max=80"`
	BackgroundColor string `json:"backgroundColor" validate:"required,hexcolor"`
	TextColor       string `json:"textColor"       validate:"required,hexcolor"`
}

// Greeting is the proactive message shown after a delay.
type Greeting struct {
	Enabled      bool   `json:"enabled"`
	Message      string `json:"message"      validate:"max=280"`
	DelaySeconds int    `json:"delaySeconds" validate:"min=0,max=120"`
	AvatarURL    string `json:"avatarUrl"    validate:"omitempty,url"`
}

// Window is the opened chat.
type Window struct {
	Title           string `json:"title"       validate:"max=60"`
	HeaderColor     string `json:"headerColor" validate:"required,hexcolor"`
	AccentColor     string `json:"accentColor" validate:"required,hexcolor"`
	Width           int    `json:"width"       validate:"min=280,max=600"`
	Height          int    `json:"height"      validate:"min=360,max=800"`
	ShowAgentAvatar bool   `json:"showAgentAvatar"`
	ShowBranding    bool   `json:"showBranding"`
}

// Appearance is everything the widget renders.
type Appearance struct {
	Bubble   Bubble   `json:"bubble"`
	ChatBar  ChatBar  `json:"chatBar"`
	Greeting Greeting `json:"greeting"`
	Window   Window   `json:"window"`
}

// Default is used for websites without stored appearance.
func Default() Appearance {
	return Appearance{
		Bubble: Bubble{
			Color:    "#2563eb",
			Icon:     "chat",
			Position: "right",
			Size:     60, //nolint:mnd
		},
		ChatBar: ChatBar{
			Enabled:         false,
			Text:            "Chat with us",
			BackgroundColor: "#2563eb",
			TextColor:       "#ffffff",
		},
		Greeting: Greeting{
			Enabled:      true,
			Message:      "Hi there! How can we help you today?",
			DelaySeconds: 5, //nolint:mnd
		},
		Window: Window{
			Title:           "Support",
			HeaderColor:     "#2563eb",
			AccentColor:     "#1d4ed8",
			Width:           360, //nolint:mnd
			Height:          520, //nolint:mnd
			ShowAgentAvatar: true,
			ShowBranding:    true,
		},
	}
}

// Normalize trims text and lower-cases colours and enums.
func (a *Appearance) Normalize() {
	for _, c := range []*string{
		&a.Bubble.Color, &a.Bubble.Icon, &a.Bubble.Position,
		&a.ChatBar.BackgroundColor, &a.ChatBar.TextColor,
		&a.Window.HeaderColor, &a.Window.AccentColor,
	} {
		*c = strings.ToLower(strings.TrimSpace(*c))
	}

	a.ChatBar.Text = strings.TrimSpace(a.ChatBar.Text)
	a.Greeting.Message = strings.TrimSpace(a.Greeting.Message)
	a.Greeting.AvatarURL = strings.TrimSpace(a.Greeting.AvatarURL)
	a.Window.Title = strings.TrimSpace(a.Window.Title)
}

// Validate returns a *resource.ValidationError listing every invalid field.
func (a *Appearance) Validate() error {
	return resource.Validate(a)
}

// SettingKey returns the setting name of a website.
func SettingKey(websiteID uint64) string {
	return SettingKeyPrefix + strconv.FormatUint(websiteID, 10)
}

// Load returns the stored appearance of a website, Default when none is stored.
// stored reports whether the value came from the database.
func Load(db *gorm.DB, websiteID uint64) (a Appearance, stored bool, err error) {
	a = Default()

	err = setting.Load(db, SettingKey(websiteID), &a)

	switch {
	case errors.Is(err, setting.ErrSettingNotFound):
		return Default(), false, nil
	case err != nil:
		return Default(), false, fmt.Errorf("failed to load widget appearance: %w", err)
	}

	return a, true, nil
}

// Save normalises, validates and stores the appearance of a website.
func Save(db *gorm.DB, websiteID uint64, a *Appearance) error {
	a.Normalize()

	if err := a.Validate(); err != nil {
		return err
	}

	if err := setting.Store(db, SettingKey(websiteID), a); err != nil {
		return fmt.Errorf("failed to save widget appearance: %w", err)
	}

	return nil
}

// Reset removes the stored appearance, the website falls back to Default.
func Reset(db *gorm.DB, websiteID uint64) error {
	err := setting.DeleteByName(db, SettingKey(websiteID))
	if err != nil && !errors.Is(err, setting.ErrSettingNotFound) {
		return fmt.Errorf("failed to reset widget appearance: %w", err)
	}

	return nil
}
