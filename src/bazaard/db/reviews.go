package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/bitswalk/bazaar/src/common/errors"
)

// ReviewRepository handles review database operations. Every mutation
// recomputes the product's rating in the same transaction.
type ReviewRepository struct {
	db *Database
}

// NewReviewRepository creates a new ReviewRepository
func NewReviewRepository(db *Database) *ReviewRepository {
	return &ReviewRepository{db: db}
}

const reviewColumns = `id, user_id, product_id, comment, comment_time, change_time, grade, is_active`

func scanReview(row rowScanner) (*Review, error) {
	var rv Review
	if err := row.Scan(&rv.ID, &rv.UserID, &rv.ProductID, &rv.Comment, &rv.CommentTime, &rv.ChangeTime,
		&rv.Grade, &rv.IsActive); err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *ReviewRepository) list(ctx context.Context, query string, args ...any) ([]Review, error) {
	rows, err := r.db.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.ErrDatabaseQuery.WithCause(err)
	}
	defer rows.Close()

	reviews := []Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, errors.ErrDatabaseQuery.WithCause(err)
		}
		reviews = append(reviews, *rv)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.ErrDatabaseQuery.WithCause(err)
	}
	return reviews, nil
}

// ListActive returns every active review
func (r *ReviewRepository) ListActive(ctx context.Context) ([]Review, error) {
	return r.list(ctx, "SELECT "+reviewColumns+" FROM reviews WHERE is_active = 1 ORDER BY id")
}

// ListByProduct returns the active reviews of a product. An unknown product
// has no reviews.
func (r *ReviewRepository) ListByProduct(ctx context.Context, productID int64) ([]Review, error) {
	return r.list(ctx,
		"SELECT "+reviewColumns+" FROM reviews WHERE product_id = ? AND is_active = 1 ORDER BY id", productID)
}

// GetActive returns an active review or ErrReviewNotFound
func (r *ReviewRepository) GetActive(ctx context.Context, id int64) (*Review, error) {
	return getActiveReview(ctx, r.db.DB(), id)
}

func getActiveReview(ctx context.Context, q queryRower, id int64) (*Review, error) {
	rv, err := scanReview(q.QueryRowContext(ctx,
		"SELECT "+reviewColumns+" FROM reviews WHERE id = ? AND is_active = 1", id))
	if err == sql.ErrNoRows {
		return nil, errors.ErrReviewNotFound.WithMessagef("Review with id %d not found or inactive", id)
	}
	if err != nil {
		return nil, errors.ErrDatabaseQuery.WithCause(err)
	}
	return rv, nil
}

// Create inserts rv for an active product. A buyer holds at most one active
// review per product; a second one is ErrReviewExists.
func (r *ReviewRepository) Create(ctx context.Context, rv *Review) error {
	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return errors.ErrDatabaseTransaction.WithCause(err)
	}
	defer tx.Rollback()

	if _, err := getActiveProduct(ctx, tx, rv.ProductID); err != nil {
		return err
	}

	var count int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reviews WHERE user_id = ? AND product_id = ? AND is_active = 1",
		rv.UserID, rv.ProductID).Scan(&count); err != nil {
		return errors.ErrDatabaseQuery.WithCause(err)
	}
	if count > 0 {
		return errors.ErrReviewExists.WithMessagef("You already left a review for product %d", rv.ProductID)
	}

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, `
		INSERT INTO reviews (user_id, product_id, comment, comment_time, change_time, grade, is_active)
		VALUES (?, ?, ?, ?, ?, ?, 1)
	`, rv.UserID, rv.ProductID, rv.Comment, now, now, rv.Grade)
	if err != nil {
		return errors.ErrDatabaseQuery.WithCause(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return errors.ErrDatabaseQuery.WithCause(err)
	}

	if err := recomputeRating(ctx, tx, rv.ProductID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.ErrDatabaseTransaction.WithCause(err)
	}

	rv.ID = id
	rv.CommentTime = now
	rv.ChangeTime = now
	rv.IsActive = true
	return nil
}

// Update changes the comment and grade of an active review and stamps change_time
func (r *ReviewRepository) Update(ctx context.Context, id int64, comment string, grade int) (*Review, error) {
	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.ErrDatabaseTransaction.WithCause(err)
	}
	defer tx.Rollback()

	current, err := getActiveReview(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE reviews SET comment = ?, grade = ?, change_time = ? WHERE id = ?",
		comment, grade, time.Now().UTC(), id); err != nil {
		return nil, errors.ErrDatabaseQuery.WithCause(err)
	}
	if err := recomputeRating(ctx, tx, current.ProductID); err != nil {
		return nil, err
	}

	updated, err := getActiveReview(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, errors.ErrDatabaseTransaction.WithCause(err)
	}
	return updated, nil
}

// Deactivate marks an active review inactive
func (r *ReviewRepository) Deactivate(ctx context.Context, id int64) error {
	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return errors.ErrDatabaseTransaction.WithCause(err)
	}
	defer tx.Rollback()

	current, err := getActiveReview(ctx, tx, id)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "UPDATE reviews SET is_active = 0 WHERE id = ?", id); err != nil {
		return errors.ErrDatabaseQuery.WithCause(err)
	}
	if err := recomputeRating(ctx, tx, current.ProductID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.ErrDatabaseTransaction.WithCause(err)
	}
	return nil
}

// recomputeRating sets the product rating to the mean grade of its active reviews, 0 when none
func recomputeRating(ctx context.Context, tx *sql.Tx, productID int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE products
		SET rating = COALESCE((SELECT AVG(grade) FROM reviews WHERE product_id = ? AND is_active = 1), 0)
		WHERE id = ?
	`, productID, productID)
	if err != nil {
		return errors.ErrDatabaseQuery.WithCause(err)
	}
	return nil
}
