// Package auth provides the session middleware of the web service.
//
// Middleware reads the session cookie and, for a valid session, stores the user id
// in fiber.Locals and the acting operator in the request user context. It never
// rejects a request: API routes are guarded by auth.RequirePermission (JSON 401/403),
// HTML pages by RequireLogin (redirect to /login).
//
// Usage:
//
//	app.Use(authmiddleware.Middleware)
//	app.Get("/widget/:websiteId/preview", authmiddleware.RequireLogin, handler)
package auth
