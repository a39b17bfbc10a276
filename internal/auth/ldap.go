package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/config"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/db/models"
)

// ErrLDAPDisabled is returned when LDAP authentication is disabled via configuration.
var ErrLDAPDisabled = errors.New("ldap authentication is disabled")

const ldapTimeout = 10 * time.Second

// ldapConn is the part of *ldap.Conn the provider uses.
type ldapConn interface {
	Bind(username, password string) error
	Search(req *ldap.SearchRequest) (*ldap.SearchResult, error)
	Close() error
}

// LDAPProvider authenticates with service bind, user search and user bind.
type LDAPProvider struct {
	cfg         config.LDAPAuth
	defaultRole string
	db          *gorm.DB
	authService *Service
	dial        func(url string) (ldapConn, error)
}

// NewLDAPProvider creates a new LDAP provider.
func NewLDAPProvider(cfg *config.Auth, db *gorm.DB) (*LDAPProvider, error) {
	if !cfg.LDAP.Enabled {
		return nil, ErrLDAPDisabled
	}

	c := cfg.LDAP

	if c.UserFilter == "" {
		c.UserFilter = "(uid=%s)"
	}

	if c.EmailAttribute == "" {
		c.EmailAttribute = "mail"
	}

	if c.FirstNameAttribute == "" {
		c.FirstNameAttribute = "givenName"
	}

	if c.LastNameAttribute == "" {
		c.LastNameAttribute = "sn"
	}

	return &LDAPProvider{
		cfg:         c,
		defaultRole: cfg.DefaultRole,
		db:          db,
		authService: NewService(db),
		dial: func(url string) (ldapConn, error) {
			conn, err := ldap.DialURL(url)
			if err != nil {
				return nil, err
			}

			conn.SetTimeout(ldapTimeout)

			return conn, nil
		},
	}, nil
}

// Authenticate checks the credentials against the directory and upserts the local user.
func (p *LDAPProvider) Authenticate(username, password string) (*models.User, error) {
	// an empty password would be an anonymous bind and always succeed
	if username == "" || password == "" {
		return nil, ErrInvalidPassword
	}

	conn, err := p.dial(p.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to LDAP server: %w", err)
	}

	defer func() {
		if errClose := conn.Close(); errClose != nil {
			log.Warn().Err(errClose).Msg("failed to close LDAP connection")
		}
	}()

	if p.cfg.BindDN != "" {
		if err = conn.Bind(p.cfg.BindDN, p.cfg.BindPassword); err != nil {
			return nil, fmt.Errorf("failed to bind with service account: %w", err)
		}
	}

	entry, err := p.searchUserEntry(conn, username)
	if err != nil {
		return nil, err
	}

	if err = conn.Bind(entry.DN, password); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPassword, err)
	}

	return p.upsertUser(username, entry)
}

func (p *LDAPProvider) userFilter(username string) string {
	return strings.ReplaceAll(p.cfg.UserFilter, "%s", ldap.EscapeFilter(username))
}

func (p *LDAPProvider) searchUserEntry(conn ldapConn, username string) (*ldap.Entry, error) {
	searchRequest := ldap.NewSearchRequest(
		p.cfg.BaseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		2, // more than one is an error anyway
		int(ldapTimeout.Seconds()),
		false,
		p.userFilter(username),
		[]string{p.cfg.EmailAttribute, p.cfg.FirstNameAttribute, p.cfg.LastNameAttribute},
		nil,
	)

	searchResult, err := conn.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to search for user: %w", err)
	}

	switch len(searchResult.Entries) {
	case 0:
		return nil, ErrUserNotFound
	case 1:
		return searchResult.Entries[0], nil
	default:
		return nil, ErrMultipleUsersFound
	}
}

func (p *LDAPProvider) upsertUser(username string, entry *ldap.Entry) (*models.User, error) {
	var user models.User

	err := p.db.Where("external_id = ? AND auth_source = ?", entry.DN, models.AuthSourceLDAP).
		First(&user).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		role, errRole := p.authService.RoleByName(p.defaultRole)
		if errRole != nil {
			return nil, errRole
		}

		user = models.User{
			Active:     true,
			Username:   username,
			AuthSource: models.AuthSourceLDAP,
			ExternalID: entry.DN,
			RoleID:     role.ID,
		}
	case err != nil:
		return nil, fmt.Errorf("failed to query user: %w", err)
	case !user.Active:
		return nil, ErrUserAccountDisabled
	}

	user.Email = entry.GetAttributeValue(p.cfg.EmailAttribute)
	user.FirstName = entry.GetAttributeValue(p.cfg.FirstNameAttribute)
	user.LastName = entry.GetAttributeValue(p.cfg.LastNameAttribute)

	if err = p.db.Omit("Role").Save(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	return &user, nil
}
