package resource

import (
	"strings"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/auth"
)

// Definition describes one proxied resource. T must embed Record.
type Definition[T any] struct {
	// Name is the path segment locally and on the backend, e.g. "ip-addresses".
	Name string
	// Label is used in messages, e.g. "IP address".
	Label string
	// Fallback serves the resource from process memory while the backend is unreachable.
	Fallback bool

	// ReadPermission and WritePermission default to auth.ResourceRead(Name) and auth.ResourceWrite(Name).
	ReadPermission  string
	WritePermission string

	// Prepare normalises a record before validation. Optional.
	Prepare func(*T)
	// Match reports whether a record matches a search term. Used by the fallback store.
	Match func(v *T, term string) bool
	// Preview renders a record as HTML. Routes for it are only registered when set.
	Preview func(*T) (string, error)
}

func (d *Definition[T]) readPermission() string {
	if d.ReadPermission != "" {
		return d.ReadPermission
	}

	return auth.ResourceRead(d.Name)
}

func (d *Definition[T]) writePermission() string {
	if d.WritePermission != "" {
		return d.WritePermission
	}

	return auth.ResourceWrite(d.Name)
}

func (d *Definition[T]) label() string {
	if d.Label != "" {
		return d.Label
	}

	return d.Name
}

// ContainsFold reports whether any of fields contains term, ignoring case.
// It is the building block of most Match functions.
func ContainsFold(term string, fields ...string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}

	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}

	return false
}
