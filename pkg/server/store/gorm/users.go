package gorm

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/unkani/unkani/pkg/model"
	"github.com/unkani/unkani/pkg/server/store"
)

// Ensure UsersStore implements store.UsersStore
var _ store.UsersStore = (*UsersStore)(nil)

// UsersStore implements store.UsersStore using GORM
type UsersStore struct {
	db *gorm.DB
}

// NewUsersStore creates a new UsersStore
func NewUsersStore(db *gorm.DB) *UsersStore {
	return &UsersStore{db: db}
}

func (s *UsersStore) withRelations(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Role").
		Preload("AppGroups").
		Preload("EmailAddresses", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("PhoneNumbers", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Addresses", func(db *gorm.DB) *gorm.DB { return db.Order("id") })
}

func (s *UsersStore) first(ctx context.Context, query interface{}, args ...interface{}) (*model.User, error) {
	var user model.User
	if err := s.withRelations(ctx).Where(query, args...).First(&user).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// Create persists a new user with its contact details and app groups.
func (s *UsersStore) Create(ctx context.Context, user *model.User) error {
	return translateError(s.db.WithContext(ctx).Omit("Role").Create(user).Error)
}

// FindByID returns the user with the given id
func (s *UsersStore) FindByID(ctx context.Context, id uint) (*model.User, error) {
	return s.first(ctx, "users.id = ?", id)
}

// FindByLogin looks a user up by username or primary email address
func (s *UsersStore) FindByLogin(ctx context.Context, login string) (*model.User, error) {
	login = strings.TrimSpace(login)
	return s.first(ctx,
		"users.username = ? OR users.id IN (SELECT user_id FROM email_addresses WHERE lower(email) = lower(?) AND is_primary AND active)",
		login, login)
}

// FindByEmail looks a user up by an active email address
func (s *UsersStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.first(ctx,
		"users.id IN (SELECT user_id FROM email_addresses WHERE lower(email) = lower(?) AND active)",
		strings.TrimSpace(email))
}

// FindByTokenHash looks a user up by the hash of their API token
func (s *UsersStore) FindByTokenHash(ctx context.Context, hash string) (*model.User, error) {
	return s.first(ctx, "users.token_hash = ?", hash)
}

// EmailInUse reports whether any user has email as an active address
func (s *UsersStore) EmailInUse(ctx context.Context, email string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.EmailAddress{}).
		Where("lower(email) = lower(?) AND active", strings.TrimSpace(email)).
		Count(&count).Error
	return count > 0, err
}

// Update saves the user and its contact details.
// The API token and last seen columns belong to UpdateToken and Touch.
func (s *UsersStore) Update(ctx context.Context, user *model.User) error {
	return translateError(s.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Omit("Role", "AppGroups", "TokenHash", "TokenExpiration", "LastSeen").
		Save(user).Error)
}

// UpdateToken stores a new API token hash and expiration
func (s *UsersStore) UpdateToken(ctx context.Context, user *model.User) error {
	return translateError(s.db.WithContext(ctx).Model(user).Updates(map[string]interface{}{
		"token_hash":       user.TokenHash,
		"token_expiration": user.TokenExpiration,
	}).Error)
}

// Touch records the time the user was last seen
func (s *UsersStore) Touch(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.LastSeen = &now
	return s.db.WithContext(ctx).Model(user).UpdateColumn("last_seen", now).Error
}
