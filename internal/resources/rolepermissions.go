package resources

import (
	"strings"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/resource"
)

// RolePermission lists what an agent role may do inside the chat product.
type RolePermission struct {
	resource.Record
	Role        string   `json:"role" validate:"required,max=50"`
	Permissions []string `json:"permissions" validate:"required,min=1,dive,required,max=100"`
}

func rolePermissionDefinition() resource.Definition[RolePermission] {
	return resource.Definition[RolePermission]{
		Name:     RolePermissions,
		Label:    "Role permission",
		Fallback: true,
		Prepare: func(rp *RolePermission) {
			rp.Role = strings.ToLower(strings.TrimSpace(rp.Role))
			rp.Permissions = normalizeList(rp.Permissions)
		},
		Match: func(rp *RolePermission, term string) bool {
			return resource.ContainsFold(term, append([]string{rp.Role}, rp.Permissions...)...)
		},
	}
}
