package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/config"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/db/models"
)

// ErrOIDCDisabled is returned when OIDC is disabled via configuration.
var ErrOIDCDisabled = errors.New("oidc authentication is disabled")

// OIDCProvider handles OIDC authentication.
type OIDCProvider struct {
	cfg         config.OIDCAuth
	defaultRole string
	provider    *oidc.Provider
	verifier    *oidc.IDTokenVerifier
	oauth2      oauth2.Config
	db          *gorm.DB
	authService *Service
}

// oidcClaims are the id_token claims the user record is built from.
type oidcClaims struct {
	Sub        string `json:"sub"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Username   string `json:"preferred_username"`
}

// NewOIDCProvider discovers the issuer and prepares the oauth2 code flow.
func NewOIDCProvider(ctx context.Context, cfg *config.Auth, db *gorm.DB) (*OIDCProvider, error) {
	if !cfg.OIDC.Enabled {
		return nil, ErrOIDCDisabled
	}

	provider, err := oidc.NewProvider(ctx, cfg.OIDC.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	scopes := cfg.OIDC.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "profile", "email"}
	}

	return &OIDCProvider{
		cfg:         cfg.OIDC,
		defaultRole: cfg.DefaultRole,
		provider:    provider,
		verifier:    provider.Verifier(&oidc.Config{ClientID: cfg.OIDC.ClientID}),
		oauth2: oauth2.Config{
			ClientID:     cfg.OIDC.ClientID,
			ClientSecret: cfg.OIDC.ClientSecret,
			RedirectURL:  cfg.OIDC.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       scopes,
		},
		db:          db,
		authService: NewService(db),
	}, nil
}

// GenerateStateToken generates a random state token for CSRF protection.
func GenerateStateToken() (string, error) {
	b := make([]byte, 32) //nolint:mnd
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}

// AuthURL returns the provider authorization URL carrying state.
func (p *OIDCProvider) AuthURL(state string) string {
	return p.oauth2.AuthCodeURL(state)
}

// HandleCallback exchanges the code, verifies the id_token and upserts the user.
// It returns the raw id_token for a later logout hint.
func (p *OIDCProvider) HandleCallback(ctx context.Context, code string) (*models.User, string, error) {
	oauth2Token, err := p.oauth2.Exchange(ctx, code)
	if err != nil {
		return nil, "", fmt.Errorf("failed to exchange token: %w", err)
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return nil, "", ErrNoIDToken
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, "", fmt.Errorf("failed to verify ID token: %w", err)
	}

	var claims oidcClaims
	if err = idToken.Claims(&claims); err != nil {
		return nil, "", fmt.Errorf("failed to parse claims: %w", err)
	}

	user, err := p.upsertUser(&claims)
	if err != nil {
		return nil, "", err
	}

	return user, rawIDToken, nil
}

func (p *OIDCProvider) upsertUser(claims *oidcClaims) (*models.User, error) {
	var user models.User

	err := p.db.Where("external_id = ? AND auth_source = ?", claims.Sub, models.AuthSourceOIDC).
		First(&user).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		role, errRole := p.authService.RoleByName(p.defaultRole)
		if errRole != nil {
			return nil, errRole
		}

		username := claims.Username
		if username == "" {
			username = claims.Email
		}

		user = models.User{
			Active:     true,
			Username:   username,
			Email:      claims.Email,
			FirstName:  claims.GivenName,
			LastName:   claims.FamilyName,
			AuthSource: models.AuthSourceOIDC,
			ExternalID: claims.Sub,
			RoleID:     role.ID,
		}

		if err = p.db.Omit("Role").Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to query user: %w", err)
	default:
		if !user.Active {
			return nil, ErrUserAccountDisabled
		}

		user.Email = claims.Email
		user.FirstName = claims.GivenName
		user.LastName = claims.FamilyName

		if err = p.db.Omit("Role").Save(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
	}

	return &user, nil
}

// LogoutURL returns the provider end_session_endpoint with hints, or "" if unsupported.
func (p *OIDCProvider) LogoutURL(idToken, postLogoutRedirectURI string) string {
	var claims struct {
		EndSessionEndpoint string `json:"end_session_endpoint"`
	}

	if err := p.provider.Claims(&claims); err != nil || claims.EndSessionEndpoint == "" {
		return ""
	}

	q := url.Values{}
	q.Set("id_token_hint", idToken)
	q.Set("post_logout_redirect_uri", postLogoutRedirectURI)

	return claims.EndSessionEndpoint + "?" + q.Encode()
}
