package auth

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/db/models"
)

// Service provides authorization checks against the roles table.
type Service struct {
	db *gorm.DB
}

// NewService creates a new auth service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// HasPermission checks if the active user's role carries permission.
func (s *Service) HasPermission(userID uint64, permission string) (bool, error) {
	var count int64

	err := s.db.Table("permissions").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN users ON users.role_id = role_permissions.role_id").
		Where("users.id = ? AND users.active = ? AND permissions.name = ?", userID, true, permission).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check role permission: %w", err)
	}

	return count > 0, nil
}

// HasAnyPermission checks if a user has at least one of the given permissions.
func (s *Service) HasAnyPermission(userID uint64, permissions []string) (bool, error) {
	for _, perm := range permissions {
		has, err := s.HasPermission(userID, perm)
		if err != nil {
			return false, err
		}

		if has {
			return true, nil
		}
	}

	return false, nil
}

// GetUserPermissions returns the sorted permission names of the user's role.
func (s *Service) GetUserPermissions(userID uint64) ([]string, error) {
	var permissions []string

	err := s.db.Table("permissions").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN users ON users.role_id = role_permissions.role_id").
		Where("users.id = ?", userID).
		Distinct().
		Pluck("permissions.name", &permissions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user permissions: %w", err)
	}

	sort.Strings(permissions)

	return permissions, nil
}

// RoleByName looks up a seeded or custom role.
func (s *Service) RoleByName(name string) (*models.Role, error) {
	var role models.Role

	err := s.db.Where("name = ?", name).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRoleNotFound, name)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query role: %w", err)
	}

	return &role, nil
}

// AssignRoleToUser assigns a role to a user.
func (s *Service) AssignRoleToUser(userID uint64, roleID uint) error {
	return s.db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("role_id", roleID).Error
}

// Seed creates the admin, editor and viewer roles with the permissions of the given resources.
// It only adds missing rows and can run on every start.
func (s *Service) Seed(resources []string) error {
	perms := permissionCatalog(resources)

	return s.db.Transaction(func(tx *gorm.DB) error {
		ids := make(map[string]uint, len(perms))

		for _, p := range perms {
			perm := p
			if err := tx.Where(models.Permission{Name: perm.Name}).FirstOrCreate(&perm).Error; err != nil {
				return fmt.Errorf("failed to seed permission %s: %w", p.Name, err)
			}

			ids[perm.Name] = perm.ID
		}

		for _, r := range seededRoles() {
			role := models.Role{Name: r.name, Description: r.description, IsSystem: true}
			if err := tx.Where(models.Role{Name: r.name}).FirstOrCreate(&role).Error; err != nil {
				return fmt.Errorf("failed to seed role %s: %w", r.name, err)
			}

			for _, p := range perms {
				if !r.grants(p.Name) {
					continue
				}

				rp := models.RolePermission{RoleID: role.ID, PermissionID: ids[p.Name]}
				if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
					Omit(clause.Associations).
					Create(&rp).Error; err != nil {
					return fmt.Errorf("failed to grant %s to %s: %w", p.Name, r.name, err)
				}
			}
		}

		return nil
	})
}

type seedRole struct {
	name        string
	description string
	grants      func(permission string) bool
}

func seededRoles() []seedRole {
	return []seedRole{
		{
			name:        RoleAdmin,
			description: "Full access including users and backend settings",
			grants:      func(string) bool { return true },
		},
		{
			name:        RoleEditor,
			description: "Read and write all resources and widget appearance",
			grants:      func(p string) bool { return !strings.HasPrefix(p, "admin.") },
		},
		{
			name:        RoleViewer,
			description: "Read only access",
			grants:      func(p string) bool { return strings.HasSuffix(p, "."+actionRead) },
		},
	}
}

func permissionCatalog(resources []string) []models.Permission {
	perms := []models.Permission{
		{Name: PermWidgetRead, Resource: "widget", Action: actionRead, Description: "View widget appearance and preview"},
		{Name: PermWidgetWrite, Resource: "widget", Action: actionWrite, Description: "Change widget appearance"},
		{Name: PermAdminUsers, Resource: "admin", Action: actionManage, Description: "Manage dashboard users"},
		{Name: PermAdminBackend, Resource: "admin", Action: actionManage, Description: "Manage backend connection"},
	}

	for _, r := range resources {
		perms = append(perms,
			models.Permission{
				Name: ResourceRead(r), Resource: resourcePrefix + r, Action: actionRead,
				Description: "List and view " + r,
			},
			models.Permission{
				Name: ResourceWrite(r), Resource: resourcePrefix + r, Action: actionWrite,
				Description: "Create, update and delete " + r,
			},
		)
	}

	return perms
}
