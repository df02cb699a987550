// Package account implements the user lifecycle on top of the stores.
//
// Service creates users with default role and app group fallback, issues
// and verifies API tokens, and runs the confirmation, password reset and
// email change flows. Emails are handed to a Mailer; the server uses the
// asynq backed mailer from pkg/jobs.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/unkani/unkani/pkg/model"
	"github.com/unkani/unkani/pkg/security"
	"github.com/unkani/unkani/pkg/server/store"
)

var (
	// ErrInvalidCredentials is returned when a login or password doesn't match
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken is returned for unknown, expired or misdirected tokens
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrInactive is returned when the account is disabled
	ErrInactive = errors.New("account is not active")
	// ErrPasswordReuse is returned when a new password matches the current or previous one
	ErrPasswordReuse = errors.New("new password must differ from the current and previous password")
	// ErrEmailInUse is returned when another account already uses the address
	ErrEmailInUse = errors.New("email address already in use")
	// ErrAlreadyConfirmed is returned when confirming a confirmed account again
	ErrAlreadyConfirmed = errors.New("account already confirmed")
	// ErrInvalidUser wraps validation failures of NewUser
	ErrInvalidUser = errors.New("invalid user")
)

const (
	DefaultTokenTTL        = time.Hour
	DefaultConfirmationTTL = security.DefaultExpiration
)

var validate = validator.New()

// Mailer delivers account emails
type Mailer interface {
	SendConfirmation(ctx context.Context, user *model.User, token string) error
	SendPasswordReset(ctx context.Context, user *model.User, token string) error
	SendEmailChange(ctx context.Context, user *model.User, newEmail, token string) error
}

// Options tunes a Service
type Options struct {
	TokenTTL        time.Duration
	ConfirmationTTL time.Duration
	Logger          zerolog.Logger
}

// Service runs account operations
type Service struct {
	users     store.UsersStore
	roles     store.RolesStore
	appGroups store.AppGroupsStore
	signer    *security.Signer
	mailer    Mailer

	tokenTTL   time.Duration
	confirmTTL time.Duration
	logger     zerolog.Logger
	now        func() time.Time
}

// NewService creates a Service. Zero TTLs fall back to one hour.
func NewService(
	users store.UsersStore,
	roles store.RolesStore,
	appGroups store.AppGroupsStore,
	signer *security.Signer,
	mailer Mailer,
	opts Options,
) *Service {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = DefaultTokenTTL
	}
	if opts.ConfirmationTTL <= 0 {
		opts.ConfirmationTTL = DefaultConfirmationTTL
	}
	return &Service{
		users:      users,
		roles:      roles,
		appGroups:  appGroups,
		signer:     signer,
		mailer:     mailer,
		tokenTTL:   opts.TokenTTL,
		confirmTTL: opts.ConfirmationTTL,
		logger:     opts.Logger,
		now:        time.Now,
	}
}

// WithClock replaces the clock used for API token expiry
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// NewUser holds the fields of a user to create
type NewUser struct {
	Username  string         `json:"username" validate:"required,max=64"`
	Password  string         `json:"password" validate:"required"`
	FirstName string         `json:"first_name" validate:"max=64"`
	LastName  string         `json:"last_name" validate:"max=64"`
	Email     string         `json:"email" validate:"omitempty,max=128,email"`
	Phone     string         `json:"phone" validate:"max=32"`
	DOB       *time.Time     `json:"dob,omitempty"`
	Address   *model.Address `json:"-" validate:"-"`
	Confirmed bool           `json:"-"`
	Role      RoleRef        `json:"-" validate:"-"`
	AppGroup  AppGroupRef    `json:"-" validate:"-"`
}

// CreateUser persists a new active user.
// The email becomes the primary address and the phone the primary MOBILE number.
func (s *Service) CreateUser(ctx context.Context, nu NewUser) (*model.User, error) {
	nu.Username = strings.TrimSpace(nu.Username)
	nu.Email = strings.TrimSpace(nu.Email)
	if err := validate.Struct(nu); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidUser, err)
	}

	role, err := s.ResolveRole(ctx, nu.Role)
	if err != nil {
		return nil, err
	}
	group, err := s.ResolveAppGroup(ctx, nu.AppGroup)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Username:  nu.Username,
		FirstName: nu.FirstName,
		LastName:  nu.LastName,
		DOB:       nu.DOB,
		Confirmed: nu.Confirmed,
		Active:    true,
		RoleID:    role.ID,
		Role:      role,
		AppGroups: []model.AppGroup{*group},
	}
	if err := u.SetPassword(nu.Password); err != nil {
		return nil, err
	}
	if nu.Email != "" {
		u.SetEmail(nu.Email)
	}
	if nu.Phone != "" {
		u.SetPhoneNumber(nu.Phone, model.PhoneTypeMobile)
	}
	if nu.Address != nil {
		addr := *nu.Address
		addr.Primary, addr.Active = true, true
		u.Addresses = append(u.Addresses, addr)
	}

	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// LoadUser returns the user with id
func (s *Service) LoadUser(ctx context.Context, id uint) (*model.User, error) {
	return s.users.FindByID(ctx, id)
}

// InitializeRoles creates or updates the built-in roles
func (s *Service) InitializeRoles(ctx context.Context) error {
	return s.roles.Upsert(ctx, model.DefaultRoles())
}

// InitializeAppGroups creates or updates the built-in app groups
func (s *Service) InitializeAppGroups(ctx context.Context) error {
	return s.appGroups.Upsert(ctx, model.DefaultAppGroups())
}
