package errors

import "fmt"

var (
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity rules")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrInvalidToken       = fmt.Errorf("invalid or expired token")
	ErrMissingCredentials = fmt.Errorf("missing token or group id")
	ErrGroupNotFound      = fmt.Errorf("group not found")
	ErrGroupNameRequired  = fmt.Errorf("group name required")
	ErrGroupCodeRequired  = fmt.Errorf("group code required")
	ErrNotAMember         = fmt.Errorf("user is not a member of the group")
	ErrDuplicateHandle    = fmt.Errorf("connection handle already registered")
	ErrEmptyContent       = fmt.Errorf("empty message content")
	ErrContentTooLong     = fmt.Errorf("message content exceeds maximum length")
	ErrWorkerPanic        = fmt.Errorf("worker panic")
)
