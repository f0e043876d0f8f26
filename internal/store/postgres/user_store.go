package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/wartahukum/newsroom/internal/news"
)

// UserStore persists accounts in Postgres.
type UserStore struct {
	db    DB
	ids   news.IDGenerator
	clock news.Clock
}

// NewUserStore builds a UserStore on the shared pool.
func NewUserStore(db DB, ids news.IDGenerator, clock news.Clock) *UserStore {
	return &UserStore{db: db, ids: ids, clock: clock}
}

const userColumns = "id, username, email, password_hash, role, created_at, updated_at"

func scanUser(row pgx.Row) (news.User, error) {
	var u news.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Create inserts a new account. Email is unique; a collision returns
// ErrDuplicate.
func (s *UserStore) Create(ctx context.Context, u news.User) (news.User, error) {
	id, err := s.ids.NewID()
	if err != nil {
		return news.User{}, fmt.Errorf("generate user id: %w", err)
	}
	now := s.clock.Now()
	if u.Role == "" {
		u.Role = news.RoleUser
	}

	created, err := scanUser(s.db.QueryRow(ctx, `
INSERT INTO users (id, username, email, password_hash, role, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $6)
RETURNING `+userColumns,
		id, u.Username, u.Email, u.PasswordHash, u.Role, now))
	if err != nil {
		if isPgError(err, codeUniqueViolation) {
			return news.User{}, news.ErrDuplicate
		}
		return news.User{}, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

// GetByEmail returns the user owning the email, or ErrNotFound.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (news.User, error) {
	u, err := scanUser(s.db.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = $1", email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return news.User{}, news.ErrNotFound
		}
		return news.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// FindFirstByRole returns any one user holding the role. The ingestion
// pipeline only cares that such a user exists.
func (s *UserStore) FindFirstByRole(ctx context.Context, role string) (news.User, error) {
	u, err := scanUser(s.db.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE role = $1 ORDER BY created_at ASC LIMIT 1", role))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return news.User{}, news.ErrNotFound
		}
		return news.User{}, fmt.Errorf("find user by role: %w", err)
	}
	return u, nil
}
