package auth

import (
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/GoLiveChat-Admin/GoLiveChat-Admin/internal/db/models"
)

// ValidateTOTP checks code against secret, allowing one period of clock skew.
func ValidateTOTP(secret, code string) bool {
	ok, err := totp.ValidateCustom(code, secret, time.Now().UTC(), totp.ValidateOpts{
		Period:    30, //nolint:mnd
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})

	return err == nil && ok
}

// SetupTOTP generates and stores a new secret. It stays inactive until EnableTOTP confirms a code.
func (p *LocalProvider) SetupTOTP(userID uint64, issuer string) (*otp.Key, error) {
	user, err := p.localUser(userID)
	if err != nil {
		return nil, err
	}

	if user.TOTPEnabled {
		return nil, ErrTOTPAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: user.Username,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate totp key: %w", err)
	}

	if err = p.db.Model(&models.User{}).Where(whereID, userID).
		Update("totp_secret", key.Secret()).Error; err != nil {
		return nil, fmt.Errorf("failed to store totp secret: %w", err)
	}

	return key, nil
}

// EnableTOTP activates the second factor after the first valid code.
func (p *LocalProvider) EnableTOTP(userID uint64, code string) error {
	user, err := p.localUser(userID)
	if err != nil {
		return err
	}

	if user.TOTPSecret == "" {
		return ErrTOTPNotEnrolled
	}

	if !ValidateTOTP(user.TOTPSecret, code) {
		return ErrInvalidTOTPCode
	}

	return p.db.Model(&models.User{}).Where(whereID, userID).Update("totp_enabled", true).Error
}

// DisableTOTP turns the second factor off, a valid code is required.
func (p *LocalProvider) DisableTOTP(userID uint64, code string) error {
	user, err := p.localUser(userID)
	if err != nil {
		return err
	}

	if !user.TOTPEnabled || !ValidateTOTP(user.TOTPSecret, code) {
		return ErrInvalidTOTPCode
	}

	return p.db.Model(&models.User{}).Where(whereID, userID).Updates(map[string]interface{}{
		"totp_enabled": false,
		"totp_secret":  "",
	}).Error
}

func (p *LocalProvider) localUser(userID uint64) (*models.User, error) {
	user, err := p.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	if user.AuthSource != models.AuthSourceLocal {
		return nil, ErrLocalUserRequired
	}

	return user, nil
}
