package database

import (
	"context"
	"path/filepath"
	"testing"
)

func TestDialect_Rebind(t *testing.T) {
	q := `INSERT INTO t (a, b) VALUES (?, ?)`
	if got := SQLite.Rebind(q); got != q {
		t.Errorf("SQLite.Rebind = %q, want unchanged", got)
	}
	want := `INSERT INTO t (a, b) VALUES ($1, $2)`
	if got := Postgres.Rebind(q); got != want {
		t.Errorf("Postgres.Rebind = %q, want %q", got, want)
	}
}

func TestParseDialect(t *testing.T) {
	testCases := map[string]Dialect{
		"postgres": Postgres,
		"pq":       Postgres,
		"SQLite":   SQLite,
		"sqlite3":  SQLite,
	}
	for in, want := range testCases {
		got, err := ParseDialect(in)
		if err != nil || got != want {
			t.Errorf("ParseDialect(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseDialect("mysql"); err == nil {
		t.Error("ParseDialect(mysql) returned no error")
	}
}

func TestOpen_SQLiteMigratesTwice(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")

	db, err := Open(ctx, SQLite, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	if err := Migrate(ctx, db, SQLite); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	var n int
	err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('ledger_states', 'ledger_events')`).Scan(&n)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("found %d tables, want 2", n)
	}
}
