package credentials

import "input-portal/internal/common"

// MinPasswordLength is counted in characters, not bytes.
const MinPasswordLength = 8

var (
	ErrUserNotFound       = common.Reason(common.ErrAuth, "user not found")
	ErrPasswordUnset      = common.Reason(common.ErrAuth, "password not set")
	ErrInvalidCredentials = common.Reason(common.ErrAuth, "invalid credentials")

	ErrWeakPassword      = common.Reason(common.ErrValidation, "password must be at least 8 characters")
	ErrPasswordTooLong   = common.Reason(common.ErrValidation, "password exceeds 72 bytes")
	ErrPasswordMismatch  = common.Reason(common.ErrValidation, "passwords do not match")
	ErrMissingField      = common.Reason(common.ErrValidation, "company and username are required")
	ErrDuplicateUsername = common.Reason(common.ErrValidation, "username already exists")
)
