package gorm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/unkani/unkani/pkg/model"
	"github.com/unkani/unkani/pkg/server/store"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{
			Conn:                 db,
			PreferSimpleProtocol: true,
		}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		},
	)
	require.NoError(t, err)
	return gormDB, mock
}

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))
	assert.ErrorIs(t, translateError(gorm.ErrRecordNotFound), store.ErrNotFound)
	assert.ErrorIs(t, translateError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}), store.ErrConflict)

	other := errors.New("boom")
	assert.Equal(t, other, translateError(other))
	assert.Equal(t, error(&pgconn.PgError{Code: "23503"}), translateError(&pgconn.PgError{Code: "23503"}))
}

func TestRolesStore_FindByID(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewRolesStore(db)

	mock.ExpectQuery(`SELECT \* FROM "roles" WHERE id = \$1`).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "default_role", "permissions"}).
			AddRow(2, "Admin", false, 15))

	role, err := s.FindByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Admin", role.Name)
	assert.Equal(t, model.Permission(15), role.Permissions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRolesStore_FindByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewRolesStore(db)

	mock.ExpectQuery(`SELECT \* FROM "roles" WHERE id = \$1`).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	_, err := s.FindByID(context.Background(), 99)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRolesStore_Default(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewRolesStore(db)

	mock.ExpectQuery(`SELECT \* FROM "roles" WHERE default_role = \$1`).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "default_role", "permissions"}).
			AddRow(1, "User", true, 1))

	role, err := s.Default(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "User", role.Name)
	assert.True(t, role.Default)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppGroupsStore_Default(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewAppGroupsStore(db)

	mock.ExpectQuery(`SELECT \* FROM "app_groups" WHERE default_group = \$1`).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "default_group"}).
			AddRow(1, "Unkani", true))

	group, err := s.Default(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Unkani", group.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppGroupsStore_List(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewAppGroupsStore(db)

	mock.ExpectQuery(`SELECT \* FROM "app_groups" ORDER BY id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "default_group"}).
			AddRow(1, "Unkani", true).
			AddRow(2, "Demo", false))

	groups, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, groups, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsersStore_CreateConflict(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewUsersStore(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})
	mock.ExpectRollback()

	err := s.Create(context.Background(), &model.User{Username: "alice", RoleID: 1})
	assert.ErrorIs(t, err, store.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsersStore_UpdateLeavesTokenColumns(t *testing.T) {
	var statements []string
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherFunc(func(expected, actual string) error {
		statements = append(statements, actual)
		return sqlmock.QueryMatcherRegexp.Match(expected, actual)
	})))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(
		postgres.New(postgres.Config{Conn: sqlDB, PreferSimpleProtocol: true}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	require.NoError(t, err)
	s := NewUsersStore(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	hash := "stale"
	exp := time.Now().Add(-time.Hour)
	u := &model.User{ID: 3, Username: "alice", RoleID: 1, TokenHash: &hash, TokenExpiration: &exp, LastSeen: &exp}
	require.NoError(t, s.Update(context.Background(), u))
	assert.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, statements, 1)
	assert.Contains(t, statements[0], `"password_hash"`)
	assert.NotContains(t, statements[0], "token_hash")
	assert.NotContains(t, statements[0], "token_expiration")
	assert.NotContains(t, statements[0], "last_seen")
}

func TestUsersStore_FindByTokenHashNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewUsersStore(db)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE users.token_hash = \$1`).
		WithArgs("abc").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.FindByTokenHash(context.Background(), "abc")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsersStore_EmailInUse(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewUsersStore(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "email_addresses" WHERE lower\(email\) = lower\(\$1\) AND active`).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	inUse, err := s.EmailInUse(context.Background(), " alice@example.com ")
	require.NoError(t, err)
	assert.True(t, inUse)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValueSetsStore_FindByResourceID(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewValueSetsStore(db)

	updated := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(`SELECT \* FROM "value_sets" WHERE resource_id = \$1`).
		WithArgs("administrative-gender").
		WillReturnRows(sqlmock.NewRows([]string{"id", "resource_id", "status", "updated_at"}).
			AddRow(4, "administrative-gender", "active", updated))
	mock.ExpectQuery(`SELECT \* FROM "value_set_concepts" WHERE "value_set_concepts"."value_set_id" = \$1 ORDER BY position`).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"id", "value_set_id", "system", "code", "display", "position"}).
			AddRow(1, 4, "http://hl7.org/fhir/administrative-gender", "male", "Male", 0).
			AddRow(2, 4, "http://hl7.org/fhir/administrative-gender", "female", "Female", 1))

	vs, err := s.FindByResourceID(context.Background(), "administrative-gender")
	require.NoError(t, err)
	assert.Equal(t, "active", vs.Status)
	require.Len(t, vs.Concepts, 2)
	assert.Equal(t, "female", vs.Concepts[1].Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValueSetsStore_FindByResourceIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewValueSetsStore(db)

	mock.ExpectQuery(`SELECT \* FROM "value_sets" WHERE resource_id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.FindByResourceID(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValueSetsStore_Count(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewValueSetsStore(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "value_sets"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthStore_CheckConnectivity(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewHealthStore(db)

	mock.ExpectExec(`SELECT 1`).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.NoError(t, s.CheckConnectivity(context.Background()))

	mock.ExpectExec(`SELECT 1`).WillReturnError(errors.New("connection refused"))
	assert.Error(t, s.CheckConnectivity(context.Background()))

	assert.NoError(t, mock.ExpectationsWereMet())
}
