package config

import (
	"time"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
}

// CORS settings for the dashboard front-end.
type CORS struct {
	AllowOrigins []string
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Backend   Backend
	Auth      Auth
	Scheduler Scheduler
}

// Webserver implement webserver settings.
type Webserver struct {
	DisableRecover      bool    // disable recover middleware
	Port                int     // listening port for the webserver
	ShutDownTime        int     // wait time for shutdown
	URL                 string  // base url for the webserver
	CookieEncryptionKey string  // base64 key for the encryptcookie middleware, empty disables it
	Session             Session // session settings
	CORS                CORS
}

// Backend is the remote admin backend every resource call is proxied to.
// Values stored in the backend_server setting take precedence.
type Backend struct {
	URL             string
	APIKey          string
	AssertionSecret string // HS256 secret for the operator assertion header
	Timeout         time.Duration
}

// Auth groups the operator sign-in methods.
type Auth struct {
	DefaultRole string // role given to users created through OIDC or LDAP
	LocalDB     LocalDBAuth
	OIDC        OIDCAuth
	LDAP        LDAPAuth
}

// LocalDBAuth enables username/password login against the local database.
type LocalDBAuth struct {
	Enabled bool
}

// OIDCAuth configures an OpenID Connect provider.
type OIDCAuth struct {
	Enabled      bool
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// LDAPAuth configures bind-and-search LDAP authentication.
type LDAPAuth struct {
	Enabled            bool
	URL                string
	BindDN             string
	BindPassword       string
	BaseDN             string
	UserFilter         string // e.g. (uid=%s)
	EmailAttribute     string
	FirstNameAttribute string
	LastNameAttribute  string
}

// Scheduler settings for background jobs.
type Scheduler struct {
	HealthCheckInterval time.Duration
}
