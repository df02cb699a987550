package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/unkani/unkani/pkg/security"
)

// User is an account holder
type User struct {
	ID               uint       `gorm:"column:id;primaryKey"`
	Username         string     `gorm:"column:username;uniqueIndex"`
	PasswordHash     string     `gorm:"column:password_hash"`
	LastPasswordHash string     `gorm:"column:last_password_hash"`
	Confirmed        bool       `gorm:"column:confirmed"`
	Active           bool       `gorm:"column:active"`
	FirstName        string     `gorm:"column:first_name"`
	LastName         string     `gorm:"column:last_name"`
	DOB              *time.Time `gorm:"column:dob;type:date"`
	TokenHash        *string    `gorm:"column:token_hash;uniqueIndex"`
	TokenExpiration  *time.Time `gorm:"column:token_expiration"`
	LastSeen         *time.Time `gorm:"column:last_seen"`
	MemberSince      time.Time  `gorm:"column:member_since;autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime"`

	RoleID uint  `gorm:"column:role_id"`
	Role   *Role `gorm:"foreignKey:RoleID"`

	AppGroups      []AppGroup     `gorm:"many2many:user_app_groups"`
	EmailAddresses []EmailAddress `gorm:"foreignKey:UserID"`
	PhoneNumbers   []PhoneNumber  `gorm:"foreignKey:UserID"`
	Addresses      []Address      `gorm:"foreignKey:UserID"`
}

func (User) TableName() string {
	return "users"
}

// SetPassword hashes password and keeps the previous hash for VerifyLastPassword
func (u *User) SetPassword(password string) error {
	hash, err := security.HashPassword(password)
	if err != nil {
		return err
	}
	u.LastPasswordHash = u.PasswordHash
	u.PasswordHash = hash
	return nil
}

// VerifyPassword reports whether password matches the current password
func (u *User) VerifyPassword(password string) bool {
	return security.CheckPassword(u.PasswordHash, password)
}

// VerifyLastPassword reports whether password matches the password in use before the last change
func (u *User) VerifyLastPassword(password string) bool {
	return security.CheckPassword(u.LastPasswordHash, password)
}

// GenerateConfirmationToken signs a token that confirms this user's account
func (u *User) GenerateConfirmationToken(signer *security.Signer, expiration time.Duration) (string, error) {
	return signer.Generate(security.PurposeConfirm, u.ID, expiration)
}

// Confirm marks the user confirmed if token was issued for this user and has not expired
func (u *User) Confirm(signer *security.Signer, token string) bool {
	if _, ok := signer.VerifyFor(security.PurposeConfirm, token, u.ID); !ok {
		return false
	}
	u.Confirmed = true
	return true
}

// GenerateResetToken signs a password reset token for this user
func (u *User) GenerateResetToken(signer *security.Signer, expiration time.Duration) (string, error) {
	return signer.Generate(security.PurposeReset, u.ID, expiration)
}

// ResetPassword sets a new password if token was issued for this user and has not expired
func (u *User) ResetPassword(signer *security.Signer, token, newPassword string) bool {
	if _, ok := signer.VerifyFor(security.PurposeReset, token, u.ID); !ok {
		return false
	}
	return u.SetPassword(newPassword) == nil
}

// GenerateEmailChangeToken signs a token that moves this user to newEmail
func (u *User) GenerateEmailChangeToken(signer *security.Signer, newEmail string, expiration time.Duration) (string, error) {
	return signer.GenerateWithEmail(security.PurposeChangeEmail, u.ID, newEmail, expiration)
}

// ChangeEmail makes the address carried by token the primary email
func (u *User) ChangeEmail(signer *security.Signer, token string) bool {
	claims, ok := signer.VerifyFor(security.PurposeChangeEmail, token, u.ID)
	if !ok || claims.NewEmail == "" {
		return false
	}
	u.SetEmail(claims.NewEmail)
	return true
}

// Email returns the active primary email address, or nil
func (u *User) Email() *EmailAddress {
	for i := range u.EmailAddresses {
		if u.EmailAddresses[i].Primary && u.EmailAddresses[i].Active {
			return &u.EmailAddresses[i]
		}
	}
	return nil
}

// SetEmail makes email the active primary address.
// The previous primary address is kept but deactivated.
func (u *User) SetEmail(email string) {
	email = strings.TrimSpace(email)
	for i := range u.EmailAddresses {
		e := &u.EmailAddresses[i]
		if strings.EqualFold(e.Email, email) {
			e.Primary, e.Active = true, true
			continue
		}
		if e.Primary {
			e.Primary, e.Active = false, false
		}
	}
	if cur := u.Email(); cur != nil && strings.EqualFold(cur.Email, email) {
		return
	}
	u.EmailAddresses = append(u.EmailAddresses, EmailAddress{Email: email, Primary: true, Active: true})
}

// PhoneNumber returns the active primary phone number, or nil
func (u *User) PhoneNumber() *PhoneNumber {
	for i := range u.PhoneNumbers {
		if u.PhoneNumbers[i].Primary && u.PhoneNumbers[i].Active {
			return &u.PhoneNumbers[i]
		}
	}
	return nil
}

// SetPhoneNumber makes number the active primary phone number
func (u *User) SetPhoneNumber(number string, kind PhoneType) {
	for i := range u.PhoneNumbers {
		u.PhoneNumbers[i].Primary = false
	}
	u.PhoneNumbers = append(u.PhoneNumbers, PhoneNumber{Number: number, Type: kind, Primary: true, Active: true})
}

// Address returns the active primary address, or nil
func (u *User) Address() *Address {
	for i := range u.Addresses {
		if u.Addresses[i].Primary && u.Addresses[i].Active {
			return &u.Addresses[i]
		}
	}
	return nil
}

// URL returns the API resource URL of the user
func (u *User) URL(baseURL string) string {
	return fmt.Sprintf("%s/api/v1/users/%d", strings.TrimRight(baseURL, "/"), u.ID)
}

// Can reports whether the user's role grants perm
func (u *User) Can(perm Permission) bool {
	return u.Role.Has(perm)
}

// IsAdministrator reports whether the user holds the administrator permission
func (u *User) IsAdministrator() bool {
	return u.Can(PermissionAdministrator)
}

// FullName joins first and last name
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// TokenValid reports whether the stored API token is still valid at now
func (u *User) TokenValid(now time.Time) bool {
	return u.TokenHash != nil && u.TokenExpiration != nil && u.TokenExpiration.After(now)
}

// AppGroupNames returns the names of the user's app groups
func (u *User) AppGroupNames() []string {
	names := make([]string, 0, len(u.AppGroups))
	for _, g := range u.AppGroups {
		names = append(names, g.Name)
	}
	return names
}
