package endpoints

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/unkani/unkani/pkg/model"
)

// MockUsersStore implements store.UsersStore for testing using testify/mock
type MockUsersStore struct {
	mock.Mock
}

func (m *MockUsersStore) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil && user.ID == 0 {
		user.ID = 100
	}
	return args.Error(0)
}

func (m *MockUsersStore) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUsersStore) FindByLogin(ctx context.Context, login string) (*model.User, error) {
	args := m.Called(ctx, login)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUsersStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUsersStore) FindByTokenHash(ctx context.Context, hash string) (*model.User, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUsersStore) EmailInUse(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUsersStore) Update(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUsersStore) UpdateToken(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUsersStore) Touch(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

// MockRolesStore implements store.RolesStore for testing using testify/mock
type MockRolesStore struct {
	mock.Mock
}

func (m *MockRolesStore) FindByID(ctx context.Context, id uint) (*model.Role, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Role), args.Error(1)
}

func (m *MockRolesStore) FindByName(ctx context.Context, name string) (*model.Role, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Role), args.Error(1)
}

func (m *MockRolesStore) Default(ctx context.Context) (*model.Role, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Role), args.Error(1)
}

func (m *MockRolesStore) List(ctx context.Context) ([]model.Role, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Role), args.Error(1)
}

func (m *MockRolesStore) Upsert(ctx context.Context, roles []model.Role) error {
	return m.Called(ctx, roles).Error(0)
}

// MockAppGroupsStore implements store.AppGroupsStore for testing using testify/mock
type MockAppGroupsStore struct {
	mock.Mock
}

func (m *MockAppGroupsStore) FindByID(ctx context.Context, id uint) (*model.AppGroup, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AppGroup), args.Error(1)
}

func (m *MockAppGroupsStore) FindByName(ctx context.Context, name string) (*model.AppGroup, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AppGroup), args.Error(1)
}

func (m *MockAppGroupsStore) Default(ctx context.Context) (*model.AppGroup, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AppGroup), args.Error(1)
}

func (m *MockAppGroupsStore) List(ctx context.Context) ([]model.AppGroup, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.AppGroup), args.Error(1)
}

func (m *MockAppGroupsStore) Upsert(ctx context.Context, groups []model.AppGroup) error {
	return m.Called(ctx, groups).Error(0)
}

// MockValueSetsStore implements store.ValueSetsStore for testing using testify/mock
type MockValueSetsStore struct {
	mock.Mock
}

func (m *MockValueSetsStore) FindByResourceID(ctx context.Context, resourceID string) (*model.ValueSet, error) {
	args := m.Called(ctx, resourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ValueSet), args.Error(1)
}

func (m *MockValueSetsStore) List(ctx context.Context, limit, offset int) ([]model.ValueSet, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]model.ValueSet), args.Error(1)
}

func (m *MockValueSetsStore) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockValueSetsStore) Upsert(ctx context.Context, vs *model.ValueSet) error {
	return m.Called(ctx, vs).Error(0)
}

// MockHealthStore implements store.HealthStore for testing using testify/mock
type MockHealthStore struct {
	mock.Mock
}

func (m *MockHealthStore) CheckConnectivity(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockMailer implements account.Mailer for testing using testify/mock
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendConfirmation(ctx context.Context, user *model.User, token string) error {
	return m.Called(ctx, user, token).Error(0)
}

func (m *MockMailer) SendPasswordReset(ctx context.Context, user *model.User, token string) error {
	return m.Called(ctx, user, token).Error(0)
}

func (m *MockMailer) SendEmailChange(ctx context.Context, user *model.User, newEmail, token string) error {
	return m.Called(ctx, user, newEmail, token).Error(0)
}
