// Package mysql implements a MySQL storage backend using database/sql and
// go-sql-driver/mysql. Appends run as a prepared per-row INSERT inside a
// single transaction; LOAD DATA would be faster but needs server-side file
// permissions we do not want to require.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	gomysql "github.com/go-sql-driver/mysql"

	"useringest/internal/storage"
	"useringest/pkg/records"
)

// Repository is a MySQL-backed storage.Repository.
type Repository struct {
	db      *sql.DB
	table   string
	timeout time.Duration
}

// NewRepository connects to MySQL using the provided DSN in the
// go-sql-driver format, e.g.
//
//	"app:pass@tcp(db.example.com:3306)/users"
//
// If cfg.User / cfg.Password are set they override any credentials embedded
// in the DSN, so the password can come from a secret file rather than the
// connection string.
func NewRepository(ctx context.Context, cfg storage.Config) (*Repository, error) {
	dsnCfg, err := gomysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("mysql: parse DSN: %w", err)
	}
	if cfg.User != "" {
		dsnCfg.User = cfg.User
	}
	if cfg.Password != "" {
		dsnCfg.Passwd = cfg.Password
	}

	db, err := sql.Open("mysql", dsnCfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("mysql: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql: ping: %w", err)
	}

	return &Repository{db: db, table: cfg.Table, timeout: cfg.Timeout}, nil
}

// Append implements storage.Repository with a transactional prepared INSERT.
func (r *Repository) Append(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("mysql: append: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c)
		placeholders[i] = "?"
	}
	stmtSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(r.table),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mysql: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("mysql: prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, row := range rows {
		if len(row) != len(columns) {
			_ = tx.Rollback()
			return 0, fmt.Errorf("mysql: append: row length %d != columns length %d", len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, bindValues(row)...); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("mysql: insert: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("mysql: commit: %w", err)
	}
	return inserted, nil
}

// Truncate implements storage.Repository.
func (r *Repository) Truncate(ctx context.Context) error {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	if _, err := r.db.ExecContext(ctx, "TRUNCATE TABLE "+quoteIdent(r.table)); err != nil {
		return fmt.Errorf("mysql: truncate: %w", err)
	}
	return nil
}

// Close implements storage.Repository.
func (r *Repository) Close() { _ = r.db.Close() }

// quoteIdent backtick-quotes a MySQL identifier. A dotted name is treated as
// schema.table and each part is quoted separately.
func quoteIdent(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = "`" + strings.ReplaceAll(p, "`", "``") + "`"
	}
	return strings.Join(parts, ".")
}

// bindValues formats calendar dates as DATE-compatible text so the driver
// does not need parseTime configured.
func bindValues(row []any) []any {
	out := make([]any, len(row))
	for i, v := range row {
		if t, ok := v.(time.Time); ok {
			out[i] = t.Format(records.DateLayout)
			continue
		}
		out[i] = v
	}
	return out
}

func init() {
	storage.Register("mysql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return NewRepository(ctx, cfg)
	})
}
