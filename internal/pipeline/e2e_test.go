package pipeline

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"useringest/internal/storage"
	_ "useringest/internal/storage/all"
)

// TestEndToEndSQLite runs the whole pipeline against a real SQLite file
// through the registered backend: generate input, ingest twice, and verify
// the append-only contract with SQL.
func TestEndToEndSQLite(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "ingest.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	_, err = db.Exec(`CREATE TABLE users (
		user_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		signup_date TEXT NOT NULL,
		domain TEXT NOT NULL
	)`)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}

	input := filepath.Join(dir, "users.csv")
	if err := os.WriteFile(input, []byte(mixedCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := storage.Config{Kind: "sqlite", DSN: dbPath, Table: "users"}
	run := func() Summary {
		t.Helper()
		r := &Runner{
			Log:       zap.NewNop(),
			Storage:   cfg,
			Mode:      storage.ModeAppend,
			InputPath: input,
			BatchSize: 2,
		}
		sum, err := r.Run(context.Background())
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		return sum
	}

	sum := run()
	if got, want := sum.Loaded, int64(3); got != want {
		t.Fatalf("Loaded = %d, want %d", got, want)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if got, want := count, 3; got != want {
		t.Fatalf("rows after first run = %d, want %d", got, want)
	}

	var date, domain string
	err = db.QueryRow("SELECT signup_date, domain FROM users WHERE user_id = 1").Scan(&date, &domain)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := date, "2023-11-14"; got != want {
		t.Errorf("signup_date = %q, want %q", got, want)
	}
	if got, want := domain, "example.com"; got != want {
		t.Errorf("domain = %q, want %q", got, want)
	}

	// Second run of the identical input appends duplicates.
	run()
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if got, want := count, 6; got != want {
		t.Fatalf("rows after second run = %d, want %d", got, want)
	}
}
