package store

import (
	"context"

	"github.com/unkani/unkani/pkg/model"
)

// RolesStore abstracts role storage operations
type RolesStore interface {
	// FindByID returns ErrNotFound if no role has the id
	FindByID(ctx context.Context, id uint) (*model.Role, error)

	// FindByName returns ErrNotFound if no role has the name
	FindByName(ctx context.Context, name string) (*model.Role, error)

	// Default returns the role flagged default
	Default(ctx context.Context) (*model.Role, error)

	// List returns all roles ordered by id
	List(ctx context.Context) ([]model.Role, error)

	// Upsert creates or updates roles by name.
	// Only the roles flagged default remain default afterwards.
	Upsert(ctx context.Context, roles []model.Role) error
}

// AppGroupsStore abstracts app group storage operations
type AppGroupsStore interface {
	// FindByID returns ErrNotFound if no app group has the id
	FindByID(ctx context.Context, id uint) (*model.AppGroup, error)

	// FindByName returns ErrNotFound if no app group has the name
	FindByName(ctx context.Context, name string) (*model.AppGroup, error)

	// Default returns the app group flagged default
	Default(ctx context.Context) (*model.AppGroup, error)

	// List returns all app groups ordered by id
	List(ctx context.Context) ([]model.AppGroup, error)

	// Upsert creates or updates app groups by name
	Upsert(ctx context.Context, groups []model.AppGroup) error
}
