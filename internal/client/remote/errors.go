package remote

import "errors"

// Error taxonomy for remote calls. Callers branch on these with errors.Is:
// Unauthorized means the credential or cached role is no longer trustworthy
// and the local session should be invalidated; the others are recoverable.
var (
	ErrUnauthorized       = errors.New("request rejected: unauthorized")
	ErrNotFound           = errors.New("record not found")
	ErrValidation         = errors.New("record validation failed")
	ErrUnreachable        = errors.New("record store unreachable")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateAccount   = errors.New("account already exists")
)
