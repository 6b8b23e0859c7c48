package db

import (
	"context"
	"database/sql"

	"github.com/bitswalk/bazaar/src/common/errors"
)

// CategoryRepository handles category database operations
type CategoryRepository struct {
	db *Database
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(db *Database) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func scanCategory(row rowScanner) (*Category, error) {
	var c Category
	var parent sql.NullInt64
	if err := row.Scan(&c.ID, &c.Name, &parent, &c.IsActive); err != nil {
		return nil, err
	}
	c.ParentID = int64Ptr(parent)
	return &c, nil
}

// ListActive returns active categories ordered by ID
func (r *CategoryRepository) ListActive(ctx context.Context) ([]Category, error) {
	rows, err := r.db.DB().QueryContext(ctx,
		"SELECT id, name, parent_id, is_active FROM categories WHERE is_active = 1 ORDER BY id")
	if err != nil {
		return nil, errors.ErrDatabaseQuery.WithCause(err)
	}
	defer rows.Close()

	categories := []Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, errors.ErrDatabaseQuery.WithCause(err)
		}
		categories = append(categories, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.ErrDatabaseQuery.WithCause(err)
	}
	return categories, nil
}

// GetActive returns the active category id or ErrCategoryNotFound
func (r *CategoryRepository) GetActive(ctx context.Context, id int64) (*Category, error) {
	return getActiveCategory(ctx, r.db.DB(), id)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getActiveCategory(ctx context.Context, q queryRower, id int64) (*Category, error) {
	c, err := scanCategory(q.QueryRowContext(ctx,
		"SELECT id, name, parent_id, is_active FROM categories WHERE id = ? AND is_active = 1", id))
	if err == sql.ErrNoRows {
		return nil, errors.ErrCategoryNotFound.WithMessagef("Category with id %d not found or inactive", id)
	}
	if err != nil {
		return nil, errors.ErrDatabaseQuery.WithCause(err)
	}
	return c, nil
}

// checkParent verifies that parentID, when set, names an active category
func checkParent(ctx context.Context, tx *sql.Tx, parentID *int64) error {
	if parentID == nil {
		return nil
	}
	if _, err := getActiveCategory(ctx, tx, *parentID); err != nil {
		if errors.Is(err, errors.ErrCategoryNotFound) {
			return errors.ErrParentCategoryNotFound
		}
		return err
	}
	return nil
}

// Create inserts c as an active category and sets its ID
func (r *CategoryRepository) Create(ctx context.Context, c *Category) error {
	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return errors.ErrDatabaseTransaction.WithCause(err)
	}
	defer tx.Rollback()

	if err := checkParent(ctx, tx, c.ParentID); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO categories (name, parent_id, is_active) VALUES (?, ?, 1)", c.Name, nullInt64(c.ParentID))
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

	c.ID = id
	c.IsActive = true
	return nil
}

// Update replaces the name and parent of an active category
func (r *CategoryRepository) Update(ctx context.Context, id int64, name string, parentID *int64) (*Category, error) {
	if parentID != nil && *parentID == id {
		return nil, errors.ErrCategorySelfParent
	}

	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.ErrDatabaseTransaction.WithCause(err)
	}
	defer tx.Rollback()

	if _, err := getActiveCategory(ctx, tx, id); err != nil {
		return nil, err
	}
	if err := checkParent(ctx, tx, parentID); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE categories SET name = ?, parent_id = ? WHERE id = ?", name, nullInt64(parentID), id); err != nil {
		return nil, errors.ErrDatabaseQuery.WithCause(err)
	}

	updated, err := getActiveCategory(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, errors.ErrDatabaseTransaction.WithCause(err)
	}
	return updated, nil
}

// Deactivate marks an active category inactive. Its products stay active but
// are hidden from category views.
func (r *CategoryRepository) Deactivate(ctx context.Context, id int64) error {
	res, err := r.db.DB().ExecContext(ctx,
		"UPDATE categories SET is_active = 0 WHERE id = ? AND is_active = 1", id)
	if err != nil {
		return errors.ErrDatabaseQuery.WithCause(err)
	}
	return requireAffected(res, errors.ErrCategoryNotFound.WithMessagef("Category with id %d not found or inactive", id))
}
