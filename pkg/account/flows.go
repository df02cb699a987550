package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/unkani/unkani/pkg/model"
	"github.com/unkani/unkani/pkg/security"
	"github.com/unkani/unkani/pkg/server/store"
)

// Register creates an unconfirmed user and mails a confirmation link.
// A failed mail is logged; the user can ask for it again with ResendConfirmation.
func (s *Service) Register(ctx context.Context, nu NewUser) (*model.User, error) {
	if strings.TrimSpace(nu.Email) == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidUser)
	}
	inUse, err := s.users.EmailInUse(ctx, strings.TrimSpace(nu.Email))
	if err != nil {
		return nil, err
	}
	if inUse {
		return nil, ErrEmailInUse
	}

	nu.Confirmed = false
	nu.Role = RoleRef{}
	nu.AppGroup = AppGroupRef{}
	u, err := s.CreateUser(ctx, nu)
	if err != nil {
		return nil, err
	}

	if err := s.sendConfirmation(ctx, u); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", u.ID).Msg("Failed to send confirmation email")
	}
	return u, nil
}

// Confirm redeems a confirmation token for u
func (s *Service) Confirm(ctx context.Context, u *model.User, token string) error {
	if u.Confirmed {
		return nil
	}
	if !u.Confirm(s.signer, token) {
		return ErrInvalidToken
	}
	return s.users.Update(ctx, u)
}

// ResendConfirmation mails a new confirmation link to u
func (s *Service) ResendConfirmation(ctx context.Context, u *model.User) error {
	if u.Confirmed {
		return ErrAlreadyConfirmed
	}
	return s.sendConfirmation(ctx, u)
}

func (s *Service) sendConfirmation(ctx context.Context, u *model.User) error {
	token, err := u.GenerateConfirmationToken(s.signer, s.confirmTTL)
	if err != nil {
		return err
	}
	return s.mailer.SendConfirmation(ctx, u, token)
}

// RequestPasswordReset mails a reset link if email belongs to a user.
// Unknown addresses are not reported.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, store.ErrNotFound) {
		s.logger.Debug().Msg("Password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	token, err := u.GenerateResetToken(s.signer, s.confirmTTL)
	if err != nil {
		return err
	}
	return s.mailer.SendPasswordReset(ctx, u, token)
}

// ResetPassword sets a new password for the user owning email if token was issued to them
func (s *Service) ResetPassword(ctx context.Context, email, token, password string) (*model.User, error) {
	if password == "" {
		return nil, security.ErrEmptyPassword
	}

	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}

	if !u.ResetPassword(s.signer, token, password) {
		return u, ErrInvalidToken
	}
	return u, s.users.Update(ctx, u)
}

// ChangePassword replaces the password of u after checking the old one.
// The new password must differ from the current and the previous password.
func (s *Service) ChangePassword(ctx context.Context, u *model.User, oldPassword, newPassword string) error {
	if newPassword == "" {
		return security.ErrEmptyPassword
	}
	if !u.VerifyPassword(oldPassword) {
		return ErrInvalidCredentials
	}
	if newPassword == oldPassword || u.VerifyLastPassword(newPassword) {
		return ErrPasswordReuse
	}
	if err := u.SetPassword(newPassword); err != nil {
		return err
	}
	return s.users.Update(ctx, u)
}

// RequestEmailChange mails a link to newEmail that moves u to that address
func (s *Service) RequestEmailChange(ctx context.Context, u *model.User, newEmail, password string) error {
	newEmail = strings.TrimSpace(newEmail)
	if err := validate.Var(newEmail, "required,email"); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidUser, err)
	}
	if !u.VerifyPassword(password) {
		return ErrInvalidCredentials
	}

	inUse, err := s.users.EmailInUse(ctx, newEmail)
	if err != nil {
		return err
	}
	if inUse {
		return ErrEmailInUse
	}

	token, err := u.GenerateEmailChangeToken(s.signer, newEmail, s.confirmTTL)
	if err != nil {
		return err
	}
	return s.mailer.SendEmailChange(ctx, u, newEmail, token)
}

// ChangeEmail redeems an email change token for u
func (s *Service) ChangeEmail(ctx context.Context, u *model.User, token string) error {
	if !u.ChangeEmail(s.signer, token) {
		return ErrInvalidToken
	}
	return s.users.Update(ctx, u)
}
