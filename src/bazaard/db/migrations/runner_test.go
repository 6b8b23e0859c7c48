package migrations

import (
	"database/sql"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func exec(stmts ...string) func(tx *sql.Tx) error {
	return func(tx *sql.Tx) error {
		for _, stmt := range stmts {
			if _, err := tx.Exec(stmt); err != nil {
				return err
			}
		}
		return nil
	}
}

func TestRunnerAppliesInVersionOrder(t *testing.T) {
	db := openMemory(t)
	r := newRunner(db,
		Migration{Version: 2, Description: "add column", Up: exec("ALTER TABLE shelves ADD COLUMN label TEXT")},
		Migration{Version: 1, Description: "create shelves", Up: exec("CREATE TABLE shelves (id INTEGER PRIMARY KEY)")},
	)

	if err := r.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if v, err := r.CurrentVersion(); err != nil || v != 2 {
		t.Fatalf("CurrentVersion = %d, %v; want 2", v, err)
	}
}

func TestRunnerRejectsDanglingForeignKeys(t *testing.T) {
	db := openMemory(t)
	r := newRunner(db,
		Migration{Version: 1, Description: "orphan rows", Up: exec(
			"CREATE TABLE shelves (id INTEGER PRIMARY KEY)",
			"CREATE TABLE items (id INTEGER PRIMARY KEY, shelf_id INTEGER REFERENCES shelves(id))",
			"INSERT INTO items (id, shelf_id) VALUES (1, 42)",
		)},
	)

	err := r.Run()
	if err == nil || !strings.Contains(err.Error(), "foreign key violation: items") {
		t.Fatalf("Run = %v, want a foreign key violation on items", err)
	}
	if pending, err := r.PendingCount(); err != nil || pending != 1 {
		t.Fatalf("PendingCount = %d, %v; the failed migration must stay pending", pending, err)
	}
}
