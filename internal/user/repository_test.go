package user

import (
	"context"
	"regexp"
	"testing"
	"time"

	"slotbook/internal/auth"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() {
		sqlxDB.Close()
	}

	return repo, mock, closer
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "email", "full_name", "password_hash", "role", "created_at"})
}

func TestCreateUser(t *testing.T) {
	repo, mock, closeDB := setupMock(t)
	defer closeDB()

	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (email, full_name, password_hash, role)")).
		WithArgs("a@example.com", "A", "hash", auth.RoleUser).
		WillReturnRows(userRows().AddRow(1, "a@example.com", "A", "hash", "USER", now))

	u, err := repo.Create(context.Background(), "a@example.com", "A", "hash", auth.RoleUser)
	require.NoError(t, err)
	require.Equal(t, 1, u.ID)
	require.Equal(t, auth.RoleUser, u.Role)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByEmail(t *testing.T) {
	repo, mock, closeDB := setupMock(t)
	defer closeDB()

	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE email = $1")).
		WithArgs("a@example.com").
		WillReturnRows(userRows().AddRow(1, "a@example.com", "A", "hash", "ADMIN", now))

	u, err := repo.FindByEmail(context.Background(), "a@example.com")
	require.NoError(t, err)
	require.Equal(t, auth.RoleAdmin, u.Role)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUserNotFound(t *testing.T) {
	repo, mock, closeDB := setupMock(t)
	defer closeDB()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
		WithArgs(404).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 404)
	require.ErrorIs(t, err, ErrUserNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEmailExists(t *testing.T) {
	repo, mock, closeDB := setupMock(t)
	defer closeDB()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)")).
		WithArgs("a@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.EmailExists(context.Background(), "a@example.com")
	require.NoError(t, err)
	require.True(t, exists)

	require.NoError(t, mock.ExpectationsWereMet())
}
