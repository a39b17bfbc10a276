// Package resources defines the proxied settings resources of the admin API.
package resources

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/auth"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/resource"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/webhook"
)

// Resource path segments, locally below /api and on the backend.
const (
	Announcements       = "announcements"
	DefaultAvatars      = "default-avatars"
	GlobalNotifications = "global-notifications"
	GlobalWebhooks      = "global-webhooks"
	InactivityTimeouts  = "inactivity-timeouts"
	Integrations        = "integrations"
	IPAddresses         = "ip-addresses"
	KnowledgeBases      = "knowledge-bases"
	MailTemplates       = "mail-templates"
	RolePermissions     = "role-permissions"
	SmartResponses      = "smart-responses"
	Tags                = "tags"
	Templates           = "templates"
	Webhooks            = "webhooks"
	Websites            = "websites"
	Customers           = "customers"
)

// Names lists every resource, used to seed the resource permissions.
func Names() []string {
	return []string{
		Announcements, DefaultAvatars, GlobalNotifications, GlobalWebhooks, InactivityTimeouts,
		Integrations, IPAddresses, KnowledgeBases, MailTemplates, RolePermissions, SmartResponses,
		Tags, Templates, Webhooks, Websites, Customers,
	}
}

type registrar interface {
	Name() string
	Register(router fiber.Router, authService *auth.Service)
}

// Register adds the routes of all resources below router (usually the /api group).
// opts are passed to every resource.Handler.
func Register(router fiber.Router, authService *auth.Service, opts ...resource.Option) []string {
	webhooks := resource.New(webhookDefinition(), opts...)
	globalWebhooks := resource.New(globalWebhookDefinition(), opts...)

	handlers := []registrar{
		resource.New(announcementDefinition(), opts...),
		resource.New(defaultAvatarDefinition(), opts...),
		resource.New(globalNotificationDefinition(), opts...),
		globalWebhooks,
		resource.New(inactivityTimeoutDefinition(), opts...),
		resource.New(integrationDefinition(), opts...),
		resource.New(ipAddressDefinition(), opts...),
		resource.New(knowledgeBaseDefinition(), opts...),
		resource.New(mailTemplateDefinition(), opts...),
		resource.New(rolePermissionDefinition(), opts...),
		resource.New(smartResponseDefinition(), opts...),
		resource.New(tagDefinition(), opts...),
		resource.New(templateDefinition(), opts...),
		webhooks,
		resource.New(websiteDefinition(), opts...),
		resource.New(customerDefinition(), opts...),
	}

	names := make([]string, 0, len(handlers))

	for _, h := range handlers {
		h.Register(router, authService)
		names = append(names, h.Name())
	}

	sender := webhook.NewSender(webhook.DefaultTimeout)

	router.Post("/"+Webhooks+"/:id/test",
		auth.RequirePermission(authService, auth.ResourceWrite(Webhooks)),
		testDelivery(webhooks, sender, func(w *Webhook) (string, string) { return w.URL, w.Secret }))

	router.Post("/"+GlobalWebhooks+"/:id/test",
		auth.RequirePermission(authService, auth.ResourceWrite(GlobalWebhooks)),
		testDelivery(globalWebhooks, sender, func(w *GlobalWebhook) (string, string) { return w.URL, w.Secret }))

	return names
}

// trim trims every given string in place.
func trim(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}

// normalizeList trims and lower-cases items, dropping empty ones and duplicates.
func normalizeList(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))

	for _, it := range items {
		it = strings.ToLower(strings.TrimSpace(it))
		if it == "" || seen[it] {
			continue
		}

		seen[it] = true
		out = append(out, it)
	}

	return out
}
