package migrations

import "database/sql"

func migration002CatalogIndexes() Migration {
	return Migration{
		Version:     2,
		Description: "Indexes for product filters and one active review per buyer and product",
		Up:          migration002Up,
	}
}

func migration002Up(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE INDEX IF NOT EXISTS idx_categories_parent ON categories(parent_id);
		CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id, is_active);
		CREATE INDEX IF NOT EXISTS idx_products_seller ON products(seller_id, is_active);
		CREATE INDEX IF NOT EXISTS idx_products_price ON products(price);
		CREATE INDEX IF NOT EXISTS idx_reviews_product ON reviews(product_id, is_active);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_reviews_active_author
			ON reviews(user_id, product_id) WHERE is_active = 1;
	`)
	return err
}
