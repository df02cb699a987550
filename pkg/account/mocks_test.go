package account

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/unkani/unkani/pkg/model"
)

type MockUsersStore struct {
	mock.Mock
}

func (m *MockUsersStore) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil && user.ID == 0 {
		user.ID = 1
	}
	return args.Error(0)
}

func (m *MockUsersStore) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUsersStore) FindByLogin(ctx context.Context, login string) (*model.User, error) {
	args := m.Called(ctx, login)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUsersStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUsersStore) FindByTokenHash(ctx context.Context, hash string) (*model.User, error) {
	args := m.Called(ctx, hash)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
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

type MockRolesStore struct {
	mock.Mock
}

func (m *MockRolesStore) FindByID(ctx context.Context, id uint) (*model.Role, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*model.Role)
	return r, args.Error(1)
}

func (m *MockRolesStore) FindByName(ctx context.Context, name string) (*model.Role, error) {
	args := m.Called(ctx, name)
	r, _ := args.Get(0).(*model.Role)
	return r, args.Error(1)
}

func (m *MockRolesStore) Default(ctx context.Context) (*model.Role, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).(*model.Role)
	return r, args.Error(1)
}

func (m *MockRolesStore) List(ctx context.Context) ([]model.Role, error) {
	args := m.Called(ctx)
	r, _ := args.Get(0).([]model.Role)
	return r, args.Error(1)
}

func (m *MockRolesStore) Upsert(ctx context.Context, roles []model.Role) error {
	return m.Called(ctx, roles).Error(0)
}

type MockAppGroupsStore struct {
	mock.Mock
}

func (m *MockAppGroupsStore) FindByID(ctx context.Context, id uint) (*model.AppGroup, error) {
	args := m.Called(ctx, id)
	g, _ := args.Get(0).(*model.AppGroup)
	return g, args.Error(1)
}

func (m *MockAppGroupsStore) FindByName(ctx context.Context, name string) (*model.AppGroup, error) {
	args := m.Called(ctx, name)
	g, _ := args.Get(0).(*model.AppGroup)
	return g, args.Error(1)
}

func (m *MockAppGroupsStore) Default(ctx context.Context) (*model.AppGroup, error) {
	args := m.Called(ctx)
	g, _ := args.Get(0).(*model.AppGroup)
	return g, args.Error(1)
}

func (m *MockAppGroupsStore) List(ctx context.Context) ([]model.AppGroup, error) {
	args := m.Called(ctx)
	g, _ := args.Get(0).([]model.AppGroup)
	return g, args.Error(1)
}

func (m *MockAppGroupsStore) Upsert(ctx context.Context, groups []model.AppGroup) error {
	return m.Called(ctx, groups).Error(0)
}

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
