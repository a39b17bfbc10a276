package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrUnsupportedGormEngine is returned for an unknown db.gormEngine value.
	ErrUnsupportedGormEngine = errors.New("toml config db.gormEngine is not supported")

	// ErrOIDCIncomplete is returned when OIDC is enabled without issuer or client id.
	ErrOIDCIncomplete = errors.New("toml config auth.oidc needs issuerURL and clientID when enabled")

	// ErrLDAPIncomplete is returned when LDAP is enabled without url or base dn.
	ErrLDAPIncomplete = errors.New("toml config auth.ldap needs url and baseDN when enabled")
)
