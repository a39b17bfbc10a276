package auth

import "errors"

var (
	// ErrNoIDToken is returned when the OAuth2 token response doesn't contain an ID token.
	ErrNoIDToken = errors.New("no id_token in token response")

	// ErrInvalidOldPassword is returned when the provided old password does not match the user's current password.
	ErrInvalidOldPassword = errors.New("invalid old password")

	// ErrUserNameOrEmailExists is returned when attempting to create a user with a username or email that already exists.
	ErrUserNameOrEmailExists = errors.New("user with username or email already exists")

	// ErrUserAccountDisabled is returned when attempting to authenticate a disabled user account.
	ErrUserAccountDisabled = errors.New("user account is disabled")

	// ErrInvalidPassword is returned when the provided password is incorrect during authentication.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrUserNotFound is returned when a user cannot be found in the database or directory.
	ErrUserNotFound = errors.New("user not found")

	// ErrMultipleUsersFound is returned when an LDAP search matched more than one entry.
	ErrMultipleUsersFound = errors.New("multiple users found")

	// ErrRoleNotFound is returned for unknown role names.
	ErrRoleNotFound = errors.New("role not found")

	// ErrTOTPRequired is returned by a login without code for a user with TOTP enabled.
	ErrTOTPRequired = errors.New("totp code required")

	// ErrInvalidTOTPCode is returned when a TOTP code does not validate.
	ErrInvalidTOTPCode = errors.New("invalid totp code")

	// ErrTOTPNotEnrolled is returned when enabling TOTP before setup.
	ErrTOTPNotEnrolled = errors.New("totp setup was not started")

	// ErrTOTPAlreadyEnabled is returned when setup is called for a user with TOTP enabled.
	ErrTOTPAlreadyEnabled = errors.New("totp is already enabled")

	// ErrLocalUserRequired is returned for password and TOTP operations on OIDC or LDAP users.
	ErrLocalUserRequired = errors.New("operation only allowed for local users")
)
