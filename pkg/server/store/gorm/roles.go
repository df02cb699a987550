package gorm

import (
	"context"

	"gorm.io/gorm"

	"github.com/unkani/unkani/pkg/model"
	"github.com/unkani/unkani/pkg/server/store"
)

// Ensure RolesStore implements store.RolesStore
var _ store.RolesStore = (*RolesStore)(nil)

// RolesStore implements store.RolesStore using GORM
type RolesStore struct {
	db *gorm.DB
}

// NewRolesStore creates a new RolesStore
func NewRolesStore(db *gorm.DB) *RolesStore {
	return &RolesStore{db: db}
}

func (s *RolesStore) first(ctx context.Context, query interface{}, args ...interface{}) (*model.Role, error) {
	var role model.Role
	if err := s.db.WithContext(ctx).Where(query, args...).First(&role).Error; err != nil {
		return nil, translateError(err)
	}
	return &role, nil
}

// FindByID returns the role with the given id
func (s *RolesStore) FindByID(ctx context.Context, id uint) (*model.Role, error) {
	return s.first(ctx, "id = ?", id)
}

// FindByName returns the role with the given name
func (s *RolesStore) FindByName(ctx context.Context, name string) (*model.Role, error) {
	return s.first(ctx, "name = ?", name)
}

// Default returns the role flagged default
func (s *RolesStore) Default(ctx context.Context) (*model.Role, error) {
	return s.first(ctx, "default_role = ?", true)
}

// List returns all roles ordered by id
func (s *RolesStore) List(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	err := s.db.WithContext(ctx).Order("id").Find(&roles).Error
	return roles, err
}

// Upsert creates or updates roles by name
func (s *RolesStore) Upsert(ctx context.Context, roles []model.Role) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, r := range roles {
			if r.Default {
				if err := tx.Model(&model.Role{}).
					Where("default_role = ? AND name <> ?", true, r.Name).
					Update("default_role", false).Error; err != nil {
					return err
				}
			}
		}
		for i := range roles {
			var role model.Role
			err := tx.Where(model.Role{Name: roles[i].Name}).
				Assign(map[string]interface{}{
					"default_role": roles[i].Default,
					"permissions":  roles[i].Permissions,
				}).
				FirstOrCreate(&role).Error
			if err != nil {
				return translateError(err)
			}
			roles[i] = role
		}
		return nil
	})
}

// Ensure AppGroupsStore implements store.AppGroupsStore
var _ store.AppGroupsStore = (*AppGroupsStore)(nil)

// AppGroupsStore implements store.AppGroupsStore using GORM
type AppGroupsStore struct {
	db *gorm.DB
}

// NewAppGroupsStore creates a new AppGroupsStore
func NewAppGroupsStore(db *gorm.DB) *AppGroupsStore {
	return &AppGroupsStore{db: db}
}

func (s *AppGroupsStore) first(ctx context.Context, query interface{}, args ...interface{}) (*model.AppGroup, error) {
	var group model.AppGroup
	if err := s.db.WithContext(ctx).Where(query, args...).First(&group).Error; err != nil {
		return nil, translateError(err)
	}
	return &group, nil
}

// FindByID returns the app group with the given id
func (s *AppGroupsStore) FindByID(ctx context.Context, id uint) (*model.AppGroup, error) {
	return s.first(ctx, "id = ?", id)
}

// FindByName returns the app group with the given name
func (s *AppGroupsStore) FindByName(ctx context.Context, name string) (*model.AppGroup, error) {
	return s.first(ctx, "name = ?", name)
}

// Default returns the app group flagged default
func (s *AppGroupsStore) Default(ctx context.Context) (*model.AppGroup, error) {
	return s.first(ctx, "default_group = ?", true)
}

// List returns all app groups ordered by id
func (s *AppGroupsStore) List(ctx context.Context) ([]model.AppGroup, error) {
	var groups []model.AppGroup
	err := s.db.WithContext(ctx).Order("id").Find(&groups).Error
	return groups, err
}

// Upsert creates or updates app groups by name
func (s *AppGroupsStore) Upsert(ctx context.Context, groups []model.AppGroup) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, g := range groups {
			if g.Default {
				if err := tx.Model(&model.AppGroup{}).
					Where("default_group = ? AND name <> ?", true, g.Name).
					Update("default_group", false).Error; err != nil {
					return err
				}
			}
		}
		for i := range groups {
			var group model.AppGroup
			err := tx.Where(model.AppGroup{Name: groups[i].Name}).
				Assign(map[string]interface{}{"default_group": groups[i].Default}).
				FirstOrCreate(&group).Error
			if err != nil {
				return translateError(err)
			}
			groups[i] = group
		}
		return nil
	})
}
