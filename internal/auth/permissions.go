package auth

// Fixed permissions. Every proxied resource adds two more, see ResourceRead and ResourceWrite.
const (
	// PermWidgetRead allows viewing widget appearance and its preview.
	PermWidgetRead = "widget.read"
	// PermWidgetWrite allows changing or resetting widget appearance.
	PermWidgetWrite = "widget.write"

	// PermAdminUsers allows managing dashboard user accounts.
	PermAdminUsers = "admin.users"
	// PermAdminBackend allows changing the remote backend connection.
	PermAdminBackend = "admin.backend"

	resourcePrefix = "resource."
	actionRead     = "read"
	actionWrite    = "write"
	actionManage   = "manage"
)

// Seeded role names.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// ResourceRead is the permission to list, search and get records of resource.
func ResourceRead(resource string) string {
	return resourcePrefix + resource + "." + actionRead
}

// ResourceWrite is the permission to create, update and delete records of resource.
func ResourceWrite(resource string) string {
	return resourcePrefix + resource + "." + actionWrite
}
