package migrations

import "database/sql"

func migration001InitialSchema() Migration {
	return Migration{
		Version:     1,
		Description: "Initial schema with settings, users, categories, products and reviews",
		Up:          migration001Up,
	}
}

func migration001Up(tx *sql.Tx) error {
	for _, stmt := range []string{
		settingsTableSQL,
		usersTableSQL,
		categoriesTableSQL,
		productsTableSQL,
		reviewsTableSQL,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

const settingsTableSQL = `
CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`

const usersTableSQL = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	email TEXT NOT NULL UNIQUE,
	hashed_password TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'buyer' CHECK (role IN ('buyer', 'seller', 'admin')),
	is_active BOOLEAN NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
)`

const categoriesTableSQL = `
CREATE TABLE IF NOT EXISTS categories (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	parent_id INTEGER REFERENCES categories(id),
	is_active BOOLEAN NOT NULL DEFAULT 1
)`

const productsTableSQL = `
CREATE TABLE IF NOT EXISTS products (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	description TEXT,
	price REAL NOT NULL CHECK (price > 0),
	image_url TEXT,
	stock INTEGER NOT NULL CHECK (stock >= 0),
	rating REAL NOT NULL DEFAULT 0,
	is_active BOOLEAN NOT NULL DEFAULT 1,
	category_id INTEGER NOT NULL REFERENCES categories(id),
	seller_id INTEGER NOT NULL REFERENCES users(id),
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
)`

const reviewsTableSQL = `
CREATE TABLE IF NOT EXISTS reviews (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id),
	product_id INTEGER NOT NULL REFERENCES products(id),
	comment TEXT NOT NULL,
	comment_time DATETIME NOT NULL,
	change_time DATETIME NOT NULL,
	grade INTEGER NOT NULL CHECK (grade >= 1 AND grade <= 5),
	is_active BOOLEAN NOT NULL DEFAULT 1
)`
