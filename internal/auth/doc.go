// Package auth signs dashboard operators in and decides what they may do.
//
// Operators authenticate against one of three sources:
//   - LocalProvider: username and argon2id password from the users table, with optional TOTP
//   - OIDCProvider: authorization code flow against an OpenID Connect issuer
//   - LDAPProvider: service bind, user search and user bind against a directory
//
// OIDC and LDAP users are created on first login with the configured default role.
//
// # Authorization
//
// Every user has exactly one role, roles carry permissions. Service.Seed creates the
// admin, editor and viewer roles with:
//   - resource.<name>.read and resource.<name>.write for every proxied resource
//   - widget.read and widget.write for the chat widget appearance
//   - admin.users and admin.backend for the administration area (admin only)
//
// RequirePermission guards API routes and answers 401 or 403 as JSON.
//
//	app.Get("/api/tags",
//	    auth.RequirePermission(authService, auth.ResourceRead("tags")),
//	    handler,
//	)
package auth
