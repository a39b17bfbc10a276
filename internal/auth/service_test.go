package auth

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/db/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	return db
}

// seededUser creates an active local user with the given role and password "secret-pw".
func seededUser(t *testing.T, db *gorm.DB, username, role string) *models.User {
	t.Helper()

	r, err := NewService(db).RoleByName(role)
	require.NoError(t, err)

	u, err := NewLocalProvider(db).CreateUser(UserInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret-pw",
		RoleID:   r.ID,
		Active:   true,
	})
	require.NoError(t, err)

	return u
}

func TestSeedIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	s := NewService(db)

	require.NoError(t, s.Seed([]string{"tags", "webhooks"}))
	require.NoError(t, s.Seed([]string{"tags", "webhooks"}))

	var roles, perms int64
	require.NoError(t, db.Model(&models.Role{}).Count(&roles).Error)
	require.NoError(t, db.Model(&models.Permission{}).Count(&perms).Error)

	assert.EqualValues(t, 3, roles)
	assert.EqualValues(t, 8, perms)

	// a resource added later gets its permissions on the next start
	require.NoError(t, s.Seed([]string{"tags", "webhooks", "customers"}))
	require.NoError(t, db.Model(&models.Permission{}).Count(&perms).Error)
	assert.EqualValues(t, 10, perms)
}

func TestRolePermissions(t *testing.T) {
	db := setupTestDB(t)
	s := NewService(db)
	require.NoError(t, s.Seed([]string{"tags"}))

	admin := seededUser(t, db, "root", RoleAdmin)
	editor := seededUser(t, db, "ed", RoleEditor)
	viewer := seededUser(t, db, "vi", RoleViewer)

	tests := []struct {
		user       *models.User
		permission string
		want       bool
	}{
		{admin, PermAdminUsers, true},
		{admin, ResourceWrite("tags"), true},
		{editor, ResourceWrite("tags"), true},
		{editor, PermWidgetWrite, true},
		{editor, PermAdminBackend, false},
		{viewer, ResourceRead("tags"), true},
		{viewer, PermWidgetRead, true},
		{viewer, ResourceWrite("tags"), false},
		{viewer, PermAdminUsers, false},
	}

	for _, tt := range tests {
		t.Run(tt.user.Username+"/"+tt.permission, func(t *testing.T) {
			got, err := s.HasPermission(tt.user.ID, tt.permission)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	perms, err := s.GetUserPermissions(viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"resource.tags.read", "widget.read"}, perms)
}

func TestInactiveUserHasNoPermission(t *testing.T) {
	db := setupTestDB(t)
	s := NewService(db)
	require.NoError(t, s.Seed(nil))

	u := seededUser(t, db, "gone", RoleAdmin)
	require.NoError(t, db.Model(u).Update("active", false).Error)

	has, err := s.HasPermission(u.ID, PermAdminUsers)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestRoleByNameUnknown(t *testing.T) {
	_, err := NewService(setupTestDB(t)).RoleByName("nobody")
	require.ErrorIs(t, err, ErrRoleNotFound)
}
