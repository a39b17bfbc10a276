package daemon

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/auth"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/db/models"
	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/uniuri"
)

const (
	// EnvAdminPassword sets the password of the first admin user.
	EnvAdminPassword = "GO_LIVECHAT_ADMIN_PASSWORD"

	adminUsername = "admin"
	adminEmail    = "admin@localhost"

	generatedPasswordLen = 20
)

// seed creates the first admin user when the users table is empty.
func seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}

	if count > 0 {
		return nil
	}

	role, err := auth.NewService(db).RoleByName(auth.RoleAdmin)
	if err != nil {
		return err //nolint:wrapcheck
	}

	password := os.Getenv(EnvAdminPassword)
	generated := password == ""

	if generated {
		password = uniuri.NewLen(generatedPasswordLen)
	}

	if _, err = auth.NewLocalProvider(db).CreateUser(auth.UserInput{
		Username: adminUsername,
		Email:    adminEmail,
		Password: password,
		RoleID:   role.ID,
		Active:   true,
	}); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	if generated {
		log.Warn().Str("username", adminUsername).Str("password", password).
			Msg("created the first admin user, change the password after signing in")
	} else {
		log.Info().Str("username", adminUsername).Msg("created the first admin user")
	}

	return nil
}
