package auth

import (
	"context"
	"database/sql"
	"time"

	"github.com/bitswalk/bazaar/src/common/errors"
)

// AccountStore is the lookup the resolver needs from persistence
type AccountStore interface {
	// GetActiveByEmail returns errors.ErrUserNotFound when no active account has email
	GetActiveByEmail(ctx context.Context, email string) (*Account, error)
}

// AccountRepository persists accounts in the users table
type AccountRepository struct {
	db *sql.DB
}

// NewAccountRepository creates a repository over db
func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, email, hashed_password, role, is_active, created_at, updated_at`

func scanAccount(row interface{ Scan(...any) error }) (*Account, error) {
	a := &Account{}
	var role string
	if err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &role, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Role = Role(role)
	return a, nil
}

// Create inserts a and sets its ID. The email check and the insert share a
// transaction; ErrEmailAlreadyExists is returned for a taken email.
func (r *AccountRepository) Create(ctx context.Context, a *Account) error {
	if !a.Role.IsValid() {
		return errors.ErrInvalidRole
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.ErrDatabaseTransaction.WithCause(err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE email = ?", a.Email).Scan(&count); err != nil {
		return errors.ErrDatabaseQuery.WithCause(err)
	}
	if count > 0 {
		return errors.ErrEmailAlreadyExists
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO users (email, hashed_password, role, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, a.Email, a.PasswordHash, string(a.Role), a.IsActive, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return errors.ErrDatabaseQuery.WithCause(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return errors.ErrDatabaseQuery.WithCause(err)
	}

	if err := tx.Commit(); err != nil {
		return errors.ErrDatabaseTransaction.WithCause(err)
	}

	a.ID = id
	return nil
}

// GetActiveByEmail retrieves the active account registered with email
func (r *AccountRepository) GetActiveByEmail(ctx context.Context, email string) (*Account, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM users WHERE email = ? AND is_active = 1", email)
	return r.found(scanAccount(row))
}

// GetByID retrieves an account by ID whether or not it is active
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*Account, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM users WHERE id = ?", id)
	return r.found(scanAccount(row))
}

// GetActiveByID retrieves an active account by ID
func (r *AccountRepository) GetActiveByID(ctx context.Context, id int64) (*Account, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM users WHERE id = ? AND is_active = 1", id)
	return r.found(scanAccount(row))
}

// UpdateRole sets the role of an active account and returns the updated account
func (r *AccountRepository) UpdateRole(ctx context.Context, id int64, role Role) (*Account, error) {
	if !role.IsValid() {
		return nil, errors.ErrInvalidRole
	}
	if err := r.updateActive(ctx, id, "UPDATE users SET role = ?, updated_at = ? WHERE id = ? AND is_active = 1",
		string(role), time.Now().UTC(), id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Deactivate marks an active account inactive. Its outstanding tokens stop
// resolving immediately.
func (r *AccountRepository) Deactivate(ctx context.Context, id int64) error {
	return r.updateActive(ctx, id, "UPDATE users SET is_active = 0, updated_at = ? WHERE id = ? AND is_active = 1",
		time.Now().UTC(), id)
}

// CountByRole returns the number of active accounts holding role
func (r *AccountRepository) CountByRole(ctx context.Context, role Role) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE role = ? AND is_active = 1", string(role)).Scan(&count)
	if err != nil {
		return 0, errors.ErrDatabaseQuery.WithCause(err)
	}
	return count, nil
}

func (r *AccountRepository) updateActive(ctx context.Context, id int64, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.ErrDatabaseQuery.WithCause(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.ErrDatabaseQuery.WithCause(err)
	}
	if n == 0 {
		return errors.ErrUserNotFound.WithMessagef("User with id %d not found or inactive", id)
	}
	return nil
}

func (r *AccountRepository) found(a *Account, err error) (*Account, error) {
	if err == sql.ErrNoRows {
		return nil, errors.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.ErrDatabaseQuery.WithCause(err)
	}
	return a, nil
}
