package ports

import (
	"context"
	"time"

	"github.com/neuroguard/patient-registry/internal/core/domain"
)

// AuthService covers registration, login, and server-side token revocation.
type AuthService interface {
	Register(ctx context.Context, username, email, password, role string) (string, *domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
}

// TokenRevoker tracks revoked token IDs until their natural expiry.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
