package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/messagely/messagely-go/internal/model"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already exists")
)

// UserRepository handles user persistence operations.
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user. The primary key on username turns a concurrent
// duplicate registration into ErrDuplicateUsername.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (username, password_hash, first_name, last_name, phone, joined_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		user.Username, user.PasswordHash, user.FirstName, user.LastName, user.Phone, user.JoinedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

// GetByUsername retrieves a user, including the password hash.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT username, password_hash, first_name, last_name, phone, joined_at, last_login_at
		FROM users WHERE username = ?`

	user := &model.User{}
	var lastLogin sql.NullTime
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&user.Username, &user.PasswordHash, &user.FirstName, &user.LastName,
		&user.Phone, &user.JoinedAt, &lastLogin,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	user.LastLoginAt = nullTimePtr(lastLogin)

	return user, nil
}

// Exists reports whether a user with the given username is registered.
func (r *UserRepository) Exists(ctx context.Context, username string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// UpdateLastLogin sets last_login_at for the user.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, username string, at time.Time) error {
	query := `UPDATE users SET last_login_at = ? WHERE username = ?`

	result, err := r.db.ExecContext(ctx, query, at, username)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	// MySQL reports zero affected rows when the value is unchanged, so a miss
	// needs an existence check before it means "no such user".
	exists, err := r.Exists(ctx, username)
	if err != nil {
		return err
	}
	if !exists {
		return ErrUserNotFound
	}
	return nil
}

// List returns basic info on all users ordered by username.
func (r *UserRepository) List(ctx context.Context) ([]model.UserSummary, error) {
	query := `SELECT username, first_name, last_name FROM users ORDER BY username`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	users := []model.UserSummary{}
	for rows.Next() {
		var u model.UserSummary
		if err := rows.Scan(&u.Username, &u.FirstName, &u.LastName); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
