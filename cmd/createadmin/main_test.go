// cmd/createadmin/main_test.go
package main

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return gormDB, mock
}

func TestEnsureAdmin_CreatesNewAccount(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "customers" WHERE LOWER\(email\) = \$1`).
		WithArgs("admin@charmaway.es", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "customers"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	created, err := ensureAdmin(db, " Admin@Charmaway.es ", "Secreto123", "Admin", bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureAdmin_PromotesExistingCustomer(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "customers" WHERE LOWER\(email\) = \$1`).
		WithArgs("lucia@example.com", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "is_admin"}).AddRow(3, "lucia@example.com", false))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "customers" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	created, err := ensureAdmin(db, "lucia@example.com", "", "", bcrypt.MinCost)
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureAdmin_NewAccountNeedsPassword(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "customers"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := ensureAdmin(db, "new@charmaway.es", "", "Admin", bcrypt.MinCost)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password is required")
}

func TestEnsureAdmin_RejectsWeakPassword(t *testing.T) {
	db, mock := setupMockDB(t)

	_, err := ensureAdmin(db, "admin@charmaway.es", "short", "Admin", bcrypt.MinCost)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
