// Package db stores marketplace data in an in-memory SQLite database that is
// loaded from disk on start and written back atomically on shutdown.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/bitswalk/bazaar/src/bazaard/db/migrations"
	"github.com/bitswalk/bazaar/src/common/errors"
	"github.com/bitswalk/bazaar/src/common/logs"
	"github.com/bitswalk/bazaar/src/common/paths"
	_ "github.com/mattn/go-sqlite3"
)

var log = logs.New(logs.Config{Output: logs.OutputStdout, Level: "info", Prefix: "db"})

// SetLogger sets the logger for db and its migrations
func SetLogger(l *logs.Logger) {
	if l == nil {
		return
	}
	log = l
	migrations.SetLogger(l)
}

// Database wraps the SQLite connection with persistence
type Database struct {
	db           *sql.DB
	persistPath  string
	mu           sync.Mutex
	shutdownOnce sync.Once
}

// Config holds the database configuration
type Config struct {
	// PersistPath is where the database is saved on shutdown. Empty disables persistence.
	PersistPath string
	LoadOnStart bool
}

// DefaultConfig returns the default database configuration
func DefaultConfig() Config {
	return Config{
		PersistPath: "~/.bazaard/bazaar.db",
		LoadOnStart: true,
	}
}

// persistedTables are copied from disk in foreign key order
var persistedTables = []string{"settings", "users", "categories", "products", "reviews"}

// New opens the in-memory database, applies migrations and loads any
// persisted data.
func New(cfg Config) (*Database, error) {
	persistPath := paths.Expand(cfg.PersistPath)

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	// every pooled connection would otherwise get its own empty :memory: database
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := migrations.NewRunner(db).Run(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	database := &Database{
		db:          db,
		persistPath: persistPath,
	}

	if cfg.LoadOnStart && persistPath != "" && paths.Exists(persistPath) {
		if err := database.LoadFromDisk(); err != nil {
			log.Warn("Failed to load database from disk, starting empty", "path", persistPath, "error", err)
		}
	}

	return database, nil
}

// DB returns the underlying connection pool
func (d *Database) DB() *sql.DB {
	return d.db
}

// Ping checks that the connection is alive
func (d *Database) Ping() error {
	return d.db.Ping()
}

// Shutdown persists the database and closes it. Safe to call more than once.
func (d *Database) Shutdown() error {
	var shutdownErr error

	d.shutdownOnce.Do(func() {
		d.mu.Lock()
		defer d.mu.Unlock()

		if err := d.persistToDisk(); err != nil {
			shutdownErr = fmt.Errorf("failed to persist database: %w", err)
		}
		if err := d.db.Close(); err != nil {
			if shutdownErr != nil {
				shutdownErr = fmt.Errorf("%v; also failed to close database: %w", shutdownErr, err)
			} else {
				shutdownErr = fmt.Errorf("failed to close database: %w", err)
			}
		}
	})

	return shutdownErr
}

// SaveToDisk writes a snapshot without closing the database
func (d *Database) SaveToDisk() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.persistToDisk()
}

// requireAffected returns notFound when res changed no row
func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.ErrDatabaseQuery.WithCause(err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// persistToDisk writes the database with VACUUM INTO a temp file then renames it over the target
func (d *Database) persistToDisk() error {
	if d.persistPath == "" {
		return nil
	}

	if err := paths.EnsureDir(d.persistPath); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	tempPath := d.persistPath + ".tmp"
	os.Remove(tempPath)

	if _, err := d.db.Exec("VACUUM INTO " + quoteLiteral(tempPath)); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to vacuum database to disk: %w", err)
	}
	if err := os.Rename(tempPath, d.persistPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename database file: %w", err)
	}

	log.Debug("Database persisted", "path", d.persistPath)
	return nil
}

// LoadFromDisk copies rows from the persisted file into memory
func (d *Database) LoadFromDisk() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.persistPath == "" {
		return nil
	}

	if _, err := d.db.Exec("ATTACH DATABASE " + quoteLiteral(d.persistPath) + " AS disk_db"); err != nil {
		return fmt.Errorf("failed to attach disk database: %w", err)
	}
	defer d.db.Exec("DETACH DATABASE disk_db")

	for _, table := range persistedTables {
		var count int
		err := d.db.QueryRow(
			"SELECT COUNT(*) FROM disk_db.sqlite_master WHERE type = 'table' AND name = ?", table,
		).Scan(&count)
		if err != nil || count == 0 {
			continue
		}
		if _, err := d.db.Exec(fmt.Sprintf("INSERT OR REPLACE INTO %s SELECT * FROM disk_db.%s", table, table)); err != nil {
			return fmt.Errorf("failed to load table %s: %w", table, err)
		}
	}

	return nil
}

// GetSetting returns the value stored under key, or sql.ErrNoRows
func (d *Database) GetSetting(key string) (string, error) {
	var value string
	err := d.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetSetting stores value under key
func (d *Database) SetSetting(key, value string) error {
	_, err := d.db.Exec(`
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}
