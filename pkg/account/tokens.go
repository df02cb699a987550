package account

import (
	"context"
	"errors"
	"time"

	"github.com/unkani/unkani/pkg/model"
	"github.com/unkani/unkani/pkg/security"
	"github.com/unkani/unkani/pkg/server/store"
)

// Authenticate checks a username or email and password
func (s *Service) Authenticate(ctx context.Context, login, password string) (*model.User, error) {
	if login == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.users.FindByLogin(ctx, login)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !u.VerifyPassword(password) {
		return nil, ErrInvalidCredentials
	}
	if !u.Active {
		return nil, ErrInactive
	}
	return u, nil
}

// IssueToken mints a new API token for u, replacing any previous one.
// Only the token hash is stored, so the token is returned exactly once.
func (s *Service) IssueToken(ctx context.Context, u *model.User) (string, time.Time, error) {
	token, err := security.GenerateAPIToken()
	if err != nil {
		return "", time.Time{}, err
	}

	hash := security.HashAPIToken(token)
	expiration := s.now().Add(s.tokenTTL).UTC()
	u.TokenHash = &hash
	u.TokenExpiration = &expiration

	if err := s.users.UpdateToken(ctx, u); err != nil {
		return "", time.Time{}, err
	}
	return token, expiration, nil
}

// RevokeToken expires the API token of u
func (s *Service) RevokeToken(ctx context.Context, u *model.User) error {
	expiration := s.now().Add(-time.Second).UTC()
	u.TokenExpiration = &expiration
	return s.users.UpdateToken(ctx, u)
}

// VerifyToken returns the active user owning an unexpired API token
func (s *Service) VerifyToken(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	u, err := s.users.FindByTokenHash(ctx, security.HashAPIToken(token))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}

	if !u.TokenValid(s.now()) {
		return nil, ErrInvalidToken
	}
	if !u.Active {
		return nil, ErrInactive
	}

	if err := s.users.Touch(ctx, u); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", u.ID).Msg("Failed to record last seen")
	}
	return u, nil
}
