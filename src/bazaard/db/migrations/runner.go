// Package migrations versions the bazaard schema.
package migrations

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/bitswalk/bazaar/src/common/logs"
)

var log *logs.Logger

// SetLogger sets the logger for the migrations package
func SetLogger(l *logs.Logger) {
	log = l
}

// Migration is one schema change applied inside a transaction
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// Runner applies pending migrations
type Runner struct {
	db         *sql.DB
	migrations []Migration
}

// NewRunner creates a runner with every known migration registered
func NewRunner(db *sql.DB) *Runner {
	return newRunner(db,
		migration001InitialSchema(),
		migration002CatalogIndexes(),
	)
}

func newRunner(db *sql.DB, migrations ...Migration) *Runner {
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return &Runner{db: db, migrations: migrations}
}

func (r *Runner) ensureMigrationsTable() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

func (r *Runner) appliedVersions() (map[int]bool, error) {
	rows, err := r.db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

// Run applies every pending migration in version order
func (r *Runner) Run() error {
	if err := r.ensureMigrationsTable(); err != nil {
		return fmt.Errorf("failed to ensure migrations table: %w", err)
	}

	applied, err := r.appliedVersions()
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for _, m := range r.migrations {
		if applied[m.Version] {
			continue
		}
		if err := r.apply(m); err != nil {
			if log != nil {
				log.Error("Migration failed", "version", m.Version, "description", m.Description, "error", err)
			}
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Description, err)
		}
	}
	return nil
}

func (r *Runner) apply(m Migration) error {
	if log != nil {
		log.Debug("Applying migration", "version", m.Version, "description", m.Description)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := m.Up(tx); err != nil {
		return err
	}
	if err := checkForeignKeys(tx); err != nil {
		return err
	}
	if _, err := tx.Exec(
		"INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)",
		m.Version, m.Description, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}
	return tx.Commit()
}

// checkForeignKeys fails when the migration left rows whose parent is missing
func checkForeignKeys(tx *sql.Tx) error {
	rows, err := tx.Query("PRAGMA foreign_key_check")
	if err != nil {
		return fmt.Errorf("failed to check foreign keys: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		var table, parent string
		var rowID sql.NullInt64
		var fkID int
		if err := rows.Scan(&table, &rowID, &parent, &fkID); err != nil {
			return fmt.Errorf("failed to read foreign key violation: %w", err)
		}
		return fmt.Errorf("foreign key violation: %s row %d references missing %s", table, rowID.Int64, parent)
	}
	return rows.Err()
}

// CurrentVersion returns the highest applied version
func (r *Runner) CurrentVersion() (int, error) {
	if err := r.ensureMigrationsTable(); err != nil {
		return 0, err
	}
	var version int
	err := r.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	return version, err
}

// PendingCount returns how many registered migrations are not applied yet
func (r *Runner) PendingCount() (int, error) {
	if err := r.ensureMigrationsTable(); err != nil {
		return 0, err
	}
	applied, err := r.appliedVersions()
	if err != nil {
		return 0, err
	}
	pending := 0
	for _, m := range r.migrations {
		if !applied[m.Version] {
			pending++
		}
	}
	return pending, nil
}
