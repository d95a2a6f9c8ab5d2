package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ctoon/ctoon-api/internal/model"
	"github.com/go-sql-driver/mysql"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

const userColumns = `id, name, email, password_hash, created_at, updated_at`

// UserRepository is the MySQL credential store. The unique index on
// users.email is the authoritative uniqueness guarantee; callers doing a
// count-then-insert pre-check must still handle ErrDuplicateEmail from
// Create, since two concurrent registrations can both pass the pre-check.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user and an empty profile row for it in a single
// transaction, setting the generated ID on the user struct. The caller
// supplies CreatedAt/UpdatedAt, which are bound into both inserts so the
// record it holds matches what was persisted. A profile insert failure
// rolls back the user row, so no orphaned credential record can be left
// behind.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		user.Name, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrDuplicateEmail
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO profiles (user_id, created_at, updated_at) VALUES (?, ?, ?)`,
		id, user.CreatedAt, user.UpdatedAt,
	); err != nil {
		return fmt.Errorf("creating profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	user.ID = id
	return nil
}

// CountByEmail returns how many users exist with the given email. With
// the unique index in place the answer is 0 or 1; this is the fast-path
// conflict check during registration.
func (r *UserRepository) CountByEmail(ctx context.Context, email string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE email = ?`, email,
	).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// GetByEmail retrieves a user by email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return r.getOne(ctx, query, email)
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return r.getOne(ctx, query, id)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// isDuplicateEntryError reports whether err is a MySQL duplicate entry
// error (code 1062), raised when the unique email index rejects an insert.
func isDuplicateEntryError(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
