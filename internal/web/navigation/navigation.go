// Package navigation builds the dashboard menu and page breadcrumbs.
package navigation

import (
	"slices"
	"strings"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/auth"
)

// Menu sections.
const (
	SectionWidget    = "widget"
	SectionResources = "resources"
	SectionAdmin     = "admin"
)

// BreadcrumbItem represents a single breadcrumb link.
type BreadcrumbItem struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Active bool   `json:"active"`
}

// Context represents the navigation context for a page.
type Context struct {
	ActiveSection string
	ActivePage    string
	Breadcrumbs   []BreadcrumbItem
	PageTitle     string
}

// NewContext creates a new navigation context.
func NewContext(pageTitle, activeSection, activePage string) *Context {
	return &Context{
		PageTitle:     pageTitle,
		ActiveSection: activeSection,
		ActivePage:    activePage,
		Breadcrumbs:   make([]BreadcrumbItem, 0),
	}
}

// AddBreadcrumb adds a breadcrumb item to the context.
func (c *Context) AddBreadcrumb(title, url string, active bool) *Context {
	c.Breadcrumbs = append(c.Breadcrumbs, BreadcrumbItem{
		Title:  title,
		URL:    url,
		Active: active,
	})

	return c
}

// IsActive checks if the given section and page match the current context.
func (c *Context) IsActive(section, page string) bool {
	return c.ActiveSection == section && c.ActivePage == page
}

// IsSectionActive checks if the given section is active.
func (c *Context) IsSectionActive(section string) bool {
	return c.ActiveSection == section
}

// MenuItem is one entry of the dashboard menu.
type MenuItem struct {
	Section    string `json:"section"`
	Name       string `json:"name"`
	Title      string `json:"title"`
	Path       string `json:"path"`
	Permission string `json:"-"`
}

// Menu lists the entries the permissions allow, widget first, then the resources, then admin.
func Menu(permissions, resources []string) []MenuItem {
	all := make([]MenuItem, 0, len(resources)+3) //nolint:mnd

	all = append(all, MenuItem{
		Section: SectionWidget, Name: "appearance", Title: "Widget appearance",
		Path: "/api/widget", Permission: auth.PermWidgetRead,
	})

	for _, r := range resources {
		all = append(all, MenuItem{
			Section: SectionResources, Name: r, Title: Title(r),
			Path: "/api/" + r, Permission: auth.ResourceRead(r),
		})
	}

	all = append(all,
		MenuItem{
			Section: SectionAdmin, Name: "users", Title: "Users",
			Path: "/api/admin/users", Permission: auth.PermAdminUsers,
		},
		MenuItem{
			Section: SectionAdmin, Name: "backend", Title: "Backend",
			Path: "/api/admin/settings/backend", Permission: auth.PermAdminBackend,
		},
	)

	menu := make([]MenuItem, 0, len(all))

	for _, item := range all {
		if slices.Contains(permissions, item.Permission) {
			menu = append(menu, item)
		}
	}

	return menu
}

// Title turns a path segment like "ip-addresses" into "Ip addresses".
func Title(name string) string {
	words := strings.Fields(strings.ReplaceAll(name, "-", " "))
	if len(words) == 0 {
		return ""
	}

	words[0] = strings.ToUpper(words[0][:1]) + words[0][1:]

	return strings.Join(words, " ")
}
