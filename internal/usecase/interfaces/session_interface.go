package interfaces

import (
	"context"
	"time"

	"clinic_api/internal/domain/entities"
)

//go:generate mockgen -source=session_interface.go -destination=mocks/session_interface_mock.go -package=mock_interfaces

// ITokenService issues and verifies signed, time-limited admin session tokens.
type ITokenService interface {
	Issue(username string) (token string, principal entities.Principal, err error)
	Verify(token string) (entities.Principal, error)
}

// ITokenRevocationStore remembers logged-out token ids until they would have expired anyway.
type ITokenRevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
