package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Purpose scopes a signed token to a single account flow
type Purpose string

const (
	PurposeConfirm     Purpose = "confirm"
	PurposeReset       Purpose = "reset"
	PurposeChangeEmail Purpose = "change_email"
)

// DefaultExpiration is used when a token is generated with a zero expiration
const DefaultExpiration = time.Hour

var (
	// ErrInvalidToken is returned for malformed, forged or expired tokens
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrWrongPurpose is returned when a token issued for one flow is redeemed in another
	ErrWrongPurpose = errors.New("token issued for a different purpose")

	// ErrMissingKey is returned when a Signer is created without a secret key
	ErrMissingKey = errors.New("secret key is required")
)

// Claims are the JWT claims carried by account flow tokens.
// The subject is the decimal user id.
type Claims struct {
	Purpose  Purpose `json:"purpose"`
	NewEmail string  `json:"new_email,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the user id encoded in the subject claim
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid subject %q: %w", c.Subject, err)
	}
	return uint(id), nil
}

// Signer issues and verifies HS256 tokens bound to a user id
type Signer struct {
	key []byte
	now func() time.Time
}

// NewSigner creates a Signer using the given secret key
func NewSigner(secretKey string) (*Signer, error) {
	if secretKey == "" {
		return nil, ErrMissingKey
	}
	return &Signer{key: []byte(secretKey), now: time.Now}, nil
}

// WithClock replaces the time source used for issuing and validating tokens
func (s *Signer) WithClock(now func() time.Time) *Signer {
	s.now = now
	return s
}

// Generate signs a token for userID scoped to purpose
func (s *Signer) Generate(purpose Purpose, userID uint, expiration time.Duration) (string, error) {
	return s.GenerateWithEmail(purpose, userID, "", expiration)
}

// GenerateWithEmail signs a token that also carries an email address
func (s *Signer) GenerateWithEmail(purpose Purpose, userID uint, email string, expiration time.Duration) (string, error) {
	if expiration <= 0 {
		expiration = DefaultExpiration
	}
	now := s.now()
	// NumericDate keeps whole seconds; round up so a token never lives shorter than expiration
	expiresAt := now.Add(expiration)
	if expiresAt.Truncate(time.Second).Before(expiresAt) {
		expiresAt = expiresAt.Truncate(time.Second).Add(time.Second)
	}
	claims := Claims{
		Purpose:  purpose,
		NewEmail: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

// Verify checks signature, expiry and purpose of token and returns its claims
func (s *Signer) Verify(purpose Purpose, token string) (*Claims, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Purpose != purpose {
		return nil, ErrWrongPurpose
	}
	return claims, nil
}

// VerifyFor verifies token and checks that it was issued for userID
func (s *Signer) VerifyFor(purpose Purpose, token string, userID uint) (*Claims, bool) {
	claims, err := s.Verify(purpose, token)
	if err != nil {
		return nil, false
	}
	id, err := claims.UserID()
	if err != nil || id != userID {
		return nil, false
	}
	return claims, true
}
