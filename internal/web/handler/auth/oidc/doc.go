// Package oidc provides handlers for the OpenID Connect sign in flow.
//
// The flow:
//   - GET /api/auth/oidc/login stores a state token and redirects to the provider
//   - GET /api/auth/oidc/callback checks the state, exchanges the code and starts a session
//   - GET /api/auth/oidc/logout ends the session and, if the provider supports it, its session too
//
// Users are created on first sign in with the configured default role.
package oidc
