package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"clinic_api/internal/domain/entities"
	"clinic_api/internal/usecase/interfaces"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

//go:generate mockgen -source=auth_usecase.go -destination=../adapter/http/handlers/mocks/auth_usecase_mock.go -package=mocks

var ErrInvalidCredentials = errors.New("invalid credentials")

// IAuthUseCase is the admin access guard: it issues, verifies and revokes session tokens.
type IAuthUseCase interface {
	Login(ctx context.Context, username, password string) (entities.Session, error)
	Authenticate(ctx context.Context, token string) (entities.Principal, error)
	Logout(ctx context.Context, token string) error
}

// AdminCredentials holds the single administrator account.
// PasswordHash (bcrypt) takes precedence over Password when both are set.
type AdminCredentials struct {
	Username     string
	Password     string
	PasswordHash string
}

type AuthUseCase struct {
	creds   AdminCredentials
	tokens  interfaces.ITokenService
	revoked interfaces.ITokenRevocationStore
	now     func() time.Time
}

var _ IAuthUseCase = (*AuthUseCase)(nil)

func NewAuthUseCase(creds AdminCredentials, tokens interfaces.ITokenService, revoked interfaces.ITokenRevocationStore) *AuthUseCase {
	return &AuthUseCase{creds: creds, tokens: tokens, revoked: revoked, now: time.Now}
}

func (u *AuthUseCase) Login(ctx context.Context, username, password string) (entities.Session, error) {
	username = strings.TrimSpace(username)
	if !u.checkCredentials(username, password) {
		log.Warn().Str("username", username).Msg("[auth][usecase] login rejected")
		return entities.Session{}, ErrInvalidCredentials
	}

	token, principal, err := u.tokens.Issue(username)
	if err != nil {
		log.Error().Err(err).Msg("[auth][usecase] token issue failed")
		return entities.Session{}, err
	}
	log.Info().Str("username", username).Time("expires_at", principal.ExpiresAt).Msg("[auth][usecase] login success")
	return entities.Session{Token: token, Principal: principal}, nil
}

func (u *AuthUseCase) checkCredentials(username, password string) bool {
	if u.creds.Username == "" || username == "" || password == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(u.creds.Username)) == 1

	var passOK bool
	switch {
	case u.creds.PasswordHash != "":
		passOK = bcrypt.CompareHashAndPassword([]byte(u.creds.PasswordHash), []byte(password)) == nil
	case u.creds.Password != "":
		passOK = subtle.ConstantTimeCompare([]byte(password), []byte(u.creds.Password)) == 1
	}
	return userOK && passOK
}

// Authenticate returns the principal of a valid, unexpired and not revoked token.
func (u *AuthUseCase) Authenticate(ctx context.Context, token string) (entities.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return entities.Principal{}, ErrUnauthenticated
	}
	p, err := u.tokens.Verify(token)
	if err != nil {
		return entities.Principal{}, ErrUnauthenticated
	}
	if u.revoked != nil && p.TokenID != "" {
		revoked, err := u.revoked.IsRevoked(ctx, p.TokenID)
		if err != nil {
			log.Error().Err(err).Msg("[auth][usecase] revocation lookup failed")
			return entities.Principal{}, ErrDependencyUnavailable
		}
		if revoked {
			return entities.Principal{}, ErrUnauthenticated
		}
	}
	return p, nil
}

// Logout revokes the token for the rest of its lifetime. Invalid tokens are ignored.
func (u *AuthUseCase) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" || u.revoked == nil {
		return nil
	}
	p, err := u.tokens.Verify(token)
	if err != nil || p.TokenID == "" {
		return nil
	}
	ttl := p.ExpiresAt.Sub(u.now())
	if ttl <= 0 {
		return nil
	}
	if err := u.revoked.Revoke(ctx, p.TokenID, ttl); err != nil {
		log.Error().Err(err).Msg("[auth][usecase] revoke failed")
		return ErrDependencyUnavailable
	}
	log.Info().Str("username", p.Username).Msg("[auth][usecase] logout")
	return nil
}
