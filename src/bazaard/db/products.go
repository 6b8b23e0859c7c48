package db

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/bitswalk/bazaar/src/common/errors"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ProductFilter narrows a product listing. Nil fields are not applied.
type ProductFilter struct {
	Page       int
	PageSize   int
	CategoryID *int64
	// Search matches every whitespace-separated term against name or description
	Search   string
	MinPrice *float64
	MaxPrice *float64
	// InStock true keeps products with stock, false keeps sold-out products
	InStock     *bool
	SellerID    *int64
	CreatedDate *time.Time
}

// Validate normalises paging and checks the price range
func (f *ProductFilter) Validate() error {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return errors.ErrInvalidPriceRange
	}
	return nil
}

func (f *ProductFilter) searchTerms() []string {
	return strings.Fields(f.Search)
}

// where builds the predicate shared by the count and page queries
func (f *ProductFilter) where() (string, []any) {
	clauses := []string{"is_active = 1"}
	var args []any

	if f.CategoryID != nil {
		clauses = append(clauses, "category_id = ?")
		args = append(args, *f.CategoryID)
	}
	if f.MinPrice != nil {
		clauses = append(clauses, "price >= ?")
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		clauses = append(clauses, "price <= ?")
		args = append(args, *f.MaxPrice)
	}
	if f.InStock != nil {
		if *f.InStock {
			clauses = append(clauses, "stock > 0")
		} else {
			clauses = append(clauses, "stock = 0")
		}
	}
	if f.SellerID != nil {
		clauses = append(clauses, "seller_id = ?")
		args = append(args, *f.SellerID)
	}
	if f.CreatedDate != nil {
		clauses = append(clauses, "date(created_at) = ?")
		args = append(args, f.CreatedDate.Format("2006-01-02"))
	}
	for _, term := range f.searchTerms() {
		clauses = append(clauses, "(name LIKE ? ESCAPE '\\' OR COALESCE(description, '') LIKE ? ESCAPE '\\')")
		pattern := likePattern(term)
		args = append(args, pattern, pattern)
	}

	return strings.Join(clauses, " AND "), args
}

// rank scores name matches above description matches, per term. It is
// empty when there is no search.
func (f *ProductFilter) rank() (string, []any) {
	terms := f.searchTerms()
	if len(terms) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(terms))
	args := make([]any, 0, 2*len(terms))
	for _, term := range terms {
		parts = append(parts, "(CASE WHEN name LIKE ? ESCAPE '\\' THEN 2 ELSE 0 END + CASE WHEN COALESCE(description, '') LIKE ? ESCAPE '\\' THEN 1 ELSE 0 END)")
		pattern := likePattern(term)
		args = append(args, pattern, pattern)
	}
	return strings.Join(parts, " + "), args
}

func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}

// ProductRepository handles product database operations
type ProductRepository struct {
	db *Database
}

// NewProductRepository creates a new ProductRepository
func NewProductRepository(db *Database) *ProductRepository {
	return &ProductRepository{db: db}
}

const productColumns = `id, name, description, price, image_url, stock, rating, is_active,
	category_id, seller_id, created_at, updated_at`

func scanProduct(row rowScanner) (*Product, error) {
	var p Product
	var description, imageURL sql.NullString
	if err := row.Scan(&p.ID, &p.Name, &description, &p.Price, &imageURL, &p.Stock, &p.Rating, &p.IsActive,
		&p.CategoryID, &p.SellerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Description = stringPtr(description)
	p.ImageURL = stringPtr(imageURL)
	return &p, nil
}

func collectProducts(rows *sql.Rows) ([]Product, error) {
	defer rows.Close()
	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, errors.ErrDatabaseQuery.WithCause(err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.ErrDatabaseQuery.WithCause(err)
	}
	return products, nil
}

// List returns one page of active products matching f and the total match count.
// Without a search, products are ordered by ID; with one, by rank then ID.
func (r *ProductRepository) List(ctx context.Context, f ProductFilter) ([]Product, int, error) {
	if err := f.Validate(); err != nil {
		return nil, 0, err
	}

	where, args := f.where()

	var total int
	if err := r.db.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM products WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.ErrDatabaseQuery.WithCause(err)
	}

	order := "id"
	rank, rankArgs := f.rank()
	if rank != "" {
		order = "(" + rank + ") DESC, id"
	}
	query := "SELECT " + productColumns + " FROM products WHERE " + where +
		" ORDER BY " + order + " LIMIT ? OFFSET ?"
	queryArgs := append(append(append([]any{}, args...), rankArgs...), f.PageSize, (f.Page-1)*f.PageSize)

	rows, err := r.db.DB().QueryContext(ctx, query, queryArgs...)
	if err != nil {
		return nil, 0, errors.ErrDatabaseQuery.WithCause(err)
	}
	products, err := collectProducts(rows)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// ListByCategory returns active products of an active category
func (r *ProductRepository) ListByCategory(ctx context.Context, categoryID int64) ([]Product, error) {
	if _, err := getActiveCategory(ctx, r.db.DB(), categoryID); err != nil {
		return nil, err
	}
	rows, err := r.db.DB().QueryContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE category_id = ? AND is_active = 1 ORDER BY id", categoryID)
	if err != nil {
		return nil, errors.ErrDatabaseQuery.WithCause(err)
	}
	return collectProducts(rows)
}

// GetActive returns an active product or ErrProductNotFound
func (r *ProductRepository) GetActive(ctx context.Context, id int64) (*Product, error) {
	return getActiveProduct(ctx, r.db.DB(), id)
}

func getActiveProduct(ctx context.Context, q queryRower, id int64) (*Product, error) {
	p, err := scanProduct(q.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = ? AND is_active = 1", id))
	if err == sql.ErrNoRows {
		return nil, errors.ErrProductNotFound.WithMessagef("Product with id %d not found or inactive", id)
	}
	if err != nil {
		return nil, errors.ErrDatabaseQuery.WithCause(err)
	}
	return p, nil
}

// Create inserts p for its seller. The category must be active.
func (r *ProductRepository) Create(ctx context.Context, p *Product) error {
	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return errors.ErrDatabaseTransaction.WithCause(err)
	}
	defer tx.Rollback()

	if _, err := getActiveCategory(ctx, tx, p.CategoryID); err != nil {
		return err
	}

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, `
		INSERT INTO products (name, description, price, image_url, stock, rating, is_active,
			category_id, seller_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 0, 1, ?, ?, ?, ?)
	`, p.Name, nullString(p.Description), p.Price, nullString(p.ImageURL), p.Stock,
		p.CategoryID, p.SellerID, now, now)
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

	p.ID = id
	p.Rating = 0
	p.IsActive = true
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

// Update replaces the editable fields of an active product. A missing or
// inactive target category is ErrCategoryInactive.
func (r *ProductRepository) Update(ctx context.Context, p *Product) (*Product, error) {
	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.ErrDatabaseTransaction.WithCause(err)
	}
	defer tx.Rollback()

	if _, err := getActiveCategory(ctx, tx, p.CategoryID); err != nil {
		if errors.Is(err, errors.ErrCategoryNotFound) {
			return nil, errors.ErrCategoryInactive.WithMessagef("Category for product %d not found or inactive", p.ID)
		}
		return nil, err
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE products
		SET name = ?, description = ?, price = ?, image_url = ?, stock = ?, category_id = ?, updated_at = ?
		WHERE id = ? AND is_active = 1
	`, p.Name, nullString(p.Description), p.Price, nullString(p.ImageURL), p.Stock, p.CategoryID,
		time.Now().UTC(), p.ID)
	if err != nil {
		return nil, errors.ErrDatabaseQuery.WithCause(err)
	}
	if err := requireAffected(res, errors.ErrProductNotFound.WithMessagef("Product with id %d not found or inactive", p.ID)); err != nil {
		return nil, err
	}

	updated, err := getActiveProduct(ctx, tx, p.ID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, errors.ErrDatabaseTransaction.WithCause(err)
	}
	return updated, nil
}

// SetImageURL records where the product image is served from
func (r *ProductRepository) SetImageURL(ctx context.Context, id int64, url string) error {
	res, err := r.db.DB().ExecContext(ctx,
		"UPDATE products SET image_url = ?, updated_at = ? WHERE id = ? AND is_active = 1", url, time.Now().UTC(), id)
	if err != nil {
		return errors.ErrDatabaseQuery.WithCause(err)
	}
	return requireAffected(res, errors.ErrProductNotFound.WithMessagef("Product with id %d not found or inactive", id))
}

// Deactivate marks an active product inactive
func (r *ProductRepository) Deactivate(ctx context.Context, id int64) error {
	res, err := r.db.DB().ExecContext(ctx,
		"UPDATE products SET is_active = 0, updated_at = ? WHERE id = ? AND is_active = 1", time.Now().UTC(), id)
	if err != nil {
		return errors.ErrDatabaseQuery.WithCause(err)
	}
	return requireAffected(res, errors.ErrProductNotFound.WithMessagef("Product with id %d not found or inactive", id))
}
