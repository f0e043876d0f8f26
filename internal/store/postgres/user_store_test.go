package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/wartahukum/newsroom/internal/news"
)

func newUserStoreMock(t *testing.T) (*UserStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewUserStore(mock, stubIDs{id: "user-new"}, stubClock{now: testNow}), mock
}

var userRowColumns = []string{
	"id", "username", "email", "password_hash", "role", "created_at", "updated_at",
}

func TestUserCreateDefaultsRole(t *testing.T) {
	t.Parallel()

	store, mock := newUserStoreMock(t)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("user-new", "budi", "budi@example.com", "hash", news.RoleUser, testNow).
		WillReturnRows(pgxmock.NewRows(userRowColumns).
			AddRow("user-new", "budi", "budi@example.com", "hash", news.RoleUser, testNow, testNow))

	u, err := store.Create(context.Background(), news.User{
		Username:     "budi",
		Email:        "budi@example.com",
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	require.Equal(t, news.RoleUser, u.Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	t.Parallel()

	store, mock := newUserStoreMock(t)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("user-new", "budi", "budi@example.com", "hash", news.RoleUser, testNow).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := store.Create(context.Background(), news.User{
		Username:     "budi",
		Email:        "budi@example.com",
		PasswordHash: "hash",
		Role:         news.RoleUser,
	})
	require.ErrorIs(t, err, news.ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserFindFirstByRole(t *testing.T) {
	t.Parallel()

	store, mock := newUserStoreMock(t)

	mock.ExpectQuery("SELECT id, username, email, password_hash, role, created_at, updated_at FROM users WHERE role").
		WithArgs(news.RoleAdmin).
		WillReturnRows(pgxmock.NewRows(userRowColumns).
			AddRow("user-1", "admin", "admin@example.com", "hash", news.RoleAdmin, testNow, testNow))

	u, err := store.FindFirstByRole(context.Background(), news.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, news.RoleAdmin, u.Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserFindFirstByRoleNotFound(t *testing.T) {
	t.Parallel()

	store, mock := newUserStoreMock(t)

	mock.ExpectQuery("SELECT id, username, email, password_hash, role, created_at, updated_at FROM users WHERE role").
		WithArgs(news.RoleAdmin).
		WillReturnError(pgx.ErrNoRows)

	_, err := store.FindFirstByRole(context.Background(), news.RoleAdmin)
	require.ErrorIs(t, err, news.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
