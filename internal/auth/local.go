package auth

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/db/models"
)

// LocalProvider handles local database authentication and user management.
type LocalProvider struct {
	db *gorm.DB
}

const (
	whereIDAndAuthSource = "id = ? AND auth_source = ?"

	whereID = "id = ?"
)

// NewLocalProvider creates a new local authentication provider.
func NewLocalProvider(db *gorm.DB) *LocalProvider {
	return &LocalProvider{
		db: db,
	}
}

// Authenticate checks username and password, and the TOTP code when the user enabled it.
func (p *LocalProvider) Authenticate(username, password, code string) (*models.User, error) {
	var user models.User

	err := p.db.Where("username = ? AND auth_source = ?", username, models.AuthSourceLocal).
		First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if !user.Active {
		return nil, ErrUserAccountDisabled
	}

	if !user.VerifyPassword(password) {
		return nil, ErrInvalidPassword
	}

	if user.TOTPEnabled {
		if code == "" {
			return nil, ErrTOTPRequired
		}

		if !ValidateTOTP(user.TOTPSecret, code) {
			return nil, ErrInvalidTOTPCode
		}
	}

	return &user, nil
}

// UserInput carries the editable fields of a local user.
type UserInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	RoleID    uint
	Active    bool
}

// CreateUser creates a new local user.
func (p *LocalProvider) CreateUser(in UserInput) (*models.User, error) {
	var existingUser models.User

	err := p.db.Where("username = ? OR email = ?", in.Username, in.Email).First(&existingUser).Error
	if err == nil {
		return nil, ErrUserNameOrEmailExists
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hashedPassword, err := models.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Active:     in.Active,
		Username:   in.Username,
		Email:      in.Email,
		Password:   hashedPassword,
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		RoleID:     in.RoleID,
		AuthSource: models.AuthSourceLocal,
	}

	if err := p.db.Omit("Role").Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// UpdateUser updates profile, role and state of any user. The password changes only when set.
func (p *LocalProvider) UpdateUser(userID uint64, in UserInput) error {
	updates := map[string]interface{}{
		"email":      in.Email,
		"first_name": in.FirstName,
		"last_name":  in.LastName,
		"role_id":    in.RoleID,
		"active":     in.Active,
		"updated_at": time.Now(),
	}

	if in.Password != "" {
		hashedPassword, err := models.HashPassword(in.Password)
		if err != nil {
			return err
		}

		updates["password"] = hashedPassword
	}

	result := p.db.Model(&models.User{}).Where(whereID, userID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update user: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// ChangePassword changes a local user's password.
func (p *LocalProvider) ChangePassword(userID uint64, oldPassword, newPassword string) error {
	var user models.User
	if err := p.db.Where(whereIDAndAuthSource, userID, models.AuthSourceLocal).
		First(&user).Error; err != nil {
		return fmt.Errorf("%w: %w", ErrUserNotFound, err)
	}

	if !user.VerifyPassword(oldPassword) {
		return ErrInvalidOldPassword
	}

	hashedPassword, err := models.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return p.db.Model(&models.User{}).
		Where(whereID, userID).
		Update("password", hashedPassword).Error
}

// DeleteUser removes a user.
func (p *LocalProvider) DeleteUser(userID uint64) error {
	result := p.db.Delete(&models.User{}, userID)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// GetUserByID retrieves a user with its role.
func (p *LocalProvider) GetUserByID(userID uint64) (*models.User, error) {
	var user models.User

	err := p.db.Preload("Role").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, err
	}

	return &user, nil
}

// ListUsers returns one page of users matching search, ordered by username.
func (p *LocalProvider) ListUsers(search string, limit, offset int) ([]models.User, int64, error) {
	var (
		users []models.User
		total int64
	)

	query := p.db.Model(&models.User{})

	if search != "" {
		like := "%" + search + "%"
		query = query.Where(
			"username LIKE ? OR email LIKE ? OR first_name LIKE ? OR last_name LIKE ?",
			like, like, like, like,
		)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Preload("Role").Order("username").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}
