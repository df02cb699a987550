package store

import (
	"context"

	"github.com/unkani/unkani/pkg/model"
)

// UsersStore abstracts user storage operations.
// Users are returned with their role, app groups and contact details loaded.
type UsersStore interface {
	// Create persists a new user with its contact details and app groups.
	// Returns ErrConflict if the username is taken.
	Create(ctx context.Context, user *model.User) error

	// FindByID returns ErrNotFound if no user has the id
	FindByID(ctx context.Context, id uint) (*model.User, error)

	// FindByLogin looks a user up by username or primary email address
	FindByLogin(ctx context.Context, login string) (*model.User, error)

	// FindByEmail looks a user up by an active email address
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByTokenHash looks a user up by the hash of their API token
	FindByTokenHash(ctx context.Context, hash string) (*model.User, error)

	// EmailInUse reports whether any user has email as an active address
	EmailInUse(ctx context.Context, email string) (bool, error)

	// Update saves the user and its contact details
	Update(ctx context.Context, user *model.User) error

	// UpdateToken stores a new API token hash and expiration
	UpdateToken(ctx context.Context, user *model.User) error

	// Touch records the time the user was last seen
	Touch(ctx context.Context, user *model.User) error
}
