package handler

import (
	"time"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/db/models"
)

// UserView is the JSON shape of a dashboard user. It never carries password or TOTP secret.
type UserView struct {
	ID          uint64    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	DisplayName string    `json:"displayName"`
	Active      bool      `json:"active"`
	RoleID      uint      `json:"roleId"`
	Role        string    `json:"role,omitempty"`
	AuthSource  string    `json:"authSource"`
	TOTPEnabled bool      `json:"totpEnabled"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewUserView converts a user row, the role name is set when Role was preloaded.
func NewUserView(u *models.User) UserView {
	return UserView{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		DisplayName: u.DisplayName(),
		Active:      u.Active,
		RoleID:      u.RoleID,
		Role:        u.Role.Name,
		AuthSource:  string(u.AuthSource),
		TOTPEnabled: u.TOTPEnabled,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
