package resources

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/resource"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/uniuri"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/webhook"
)

const (
	secretPrefix = "whsec_"
	secretLength = 32
)

// Webhook notifies an endpoint about events of one website.
type Webhook struct {
	resource.Record
	URL       string   `json:"url" validate:"required,http_url"`
	Events    []string `json:"events" validate:"required,min=1,dive,required,max=100"`
	WebsiteID uint64   `json:"websiteId,omitempty"`
	Secret    string   `json:"secret"`
	Active    bool     `json:"active"`
}

// GlobalWebhook notifies an endpoint about events of all websites.
type GlobalWebhook struct {
	resource.Record
	URL    string   `json:"url" validate:"required,http_url"`
	Events []string `json:"events" validate:"required,min=1,dive,required,max=100"`
	Secret string   `json:"secret"`
	Active bool     `json:"active"`
}

// NewSecret returns a signing secret for a webhook.
func NewSecret() string {
	return secretPrefix + uniuri.NewLen(secretLength)
}

func prepareHook(url, secret *string, events *[]string) {
	*url = strings.TrimSpace(*url)
	*secret = strings.TrimSpace(*secret)
	*events = normalizeList(*events)

	if *secret == "" {
		*secret = NewSecret()
	}
}

func webhookDefinition() resource.Definition[Webhook] {
	return resource.Definition[Webhook]{
		Name:     Webhooks,
		Label:    "Webhook",
		Fallback: true,
		Prepare: func(w *Webhook) {
			prepareHook(&w.URL, &w.Secret, &w.Events)
		},
		Match: func(w *Webhook, term string) bool {
			return resource.ContainsFold(term, append([]string{w.URL}, w.Events...)...)
		},
	}
}

func globalWebhookDefinition() resource.Definition[GlobalWebhook] {
	return resource.Definition[GlobalWebhook]{
		Name:  GlobalWebhooks,
		Label: "Global webhook",
		Prepare: func(w *GlobalWebhook) {
			prepareHook(&w.URL, &w.Secret, &w.Events)
		},
		Match: func(w *GlobalWebhook, term string) bool {
			return resource.ContainsFold(term, append([]string{w.URL}, w.Events...)...)
		},
	}
}

// testDelivery sends a signed webhook.test event to the stored endpoint of a webhook.
func testDelivery[T any](h *resource.Handler[T], sender *webhook.Sender, target func(*T) (url, secret string)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseUint(c.Params("id"), 10, 64)
		if err != nil || id == 0 {
			return resource.Fail(c, h.Name(), "test", resource.ErrInvalidID)
		}

		ctx := resource.OperatorContext(c)

		v, source, err := h.Find(ctx, id)
		if err != nil {
			return resource.Fail(c, h.Name(), "test", err)
		}

		url, secret := target(&v)

		res := sender.Send(ctx, url, secret, webhook.NewTestEvent(h.Name(), id))

		c.Set(resource.HeaderDataSource, source)

		return c.JSON(res)
	}
}
