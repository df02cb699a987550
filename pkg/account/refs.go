package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/unkani/unkani/pkg/model"
	"github.com/unkani/unkani/pkg/server/store"
)

// RoleRef refers to a role by a loaded record, by id, or not at all.
// The zero value refers to the default role.
type RoleRef struct {
	ID   uint
	Role *model.Role
}

// RoleByID refers to the role with id
func RoleByID(id uint) RoleRef {
	return RoleRef{ID: id}
}

// RoleOf refers to a loaded role
func RoleOf(r *model.Role) RoleRef {
	return RoleRef{Role: r}
}

// AppGroupRef refers to an app group the same way RoleRef refers to a role
type AppGroupRef struct {
	ID       uint
	AppGroup *model.AppGroup
}

// AppGroupByID refers to the app group with id
func AppGroupByID(id uint) AppGroupRef {
	return AppGroupRef{ID: id}
}

// AppGroupOf refers to a loaded app group
func AppGroupOf(g *model.AppGroup) AppGroupRef {
	return AppGroupRef{AppGroup: g}
}

// ResolveRole returns the referenced role.
// An id with no matching role resolves to the default role.
func (s *Service) ResolveRole(ctx context.Context, ref RoleRef) (*model.Role, error) {
	if ref.Role != nil {
		return ref.Role, nil
	}
	if ref.ID != 0 {
		role, err := s.roles.FindByID(ctx, ref.ID)
		if err == nil {
			return role, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		s.logger.Debug().Uint("role_id", ref.ID).Msg("Unknown role, using default")
	}

	role, err := s.roles.Default(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load default role: %w", err)
	}
	return role, nil
}

// ResolveAppGroup returns the referenced app group.
// An id with no matching app group resolves to the default app group.
func (s *Service) ResolveAppGroup(ctx context.Context, ref AppGroupRef) (*model.AppGroup, error) {
	if ref.AppGroup != nil {
		return ref.AppGroup, nil
	}
	if ref.ID != 0 {
		group, err := s.appGroups.FindByID(ctx, ref.ID)
		if err == nil {
			return group, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		s.logger.Debug().Uint("app_group_id", ref.ID).Msg("Unknown app group, using default")
	}

	group, err := s.appGroups.Default(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load default app group: %w", err)
	}
	return group, nil
}
