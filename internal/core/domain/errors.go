package domain

import "errors"

var (
	ErrPatientNotFound    = errors.New("patient not found")
	ErrEmptyDraft         = errors.New("draft contains no fields")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrForbidden          = errors.New("access forbidden")
	ErrTokenRevoked       = errors.New("token revoked")
)
