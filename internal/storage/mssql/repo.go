// Package mssql implements a SQL Server storage backend using database/sql
// and microsoft/go-mssqldb. Appends use the driver's bulk copy support
// (mssql.CopyIn), which maps to the TDS bulk insert protocol.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	gomssql "github.com/microsoft/go-mssqldb"

	"useringest/internal/storage"
	"useringest/pkg/records"
)

// Repository is a SQL Server-backed storage.Repository.
type Repository struct {
	db      *sql.DB
	table   string
	timeout time.Duration
}

// NewRepository connects to SQL Server using a URL-style DSN, e.g.
//
//	"sqlserver://db.example.com:1433?database=users"
//
// If cfg.User / cfg.Password are set they replace the DSN's userinfo, so the
// password can come from a secret file rather than the connection string.
func NewRepository(ctx context.Context, cfg storage.Config) (*Repository, error) {
	u, err := url.Parse(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("mssql: parse DSN: %w", err)
	}
	if cfg.User != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	}

	db, err := sql.Open("sqlserver", u.String())
	if err != nil {
		return nil, fmt.Errorf("mssql: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mssql: ping: %w", err)
	}

	return &Repository{db: db, table: cfg.Table, timeout: cfg.Timeout}, nil
}

// Append implements storage.Repository via the driver's bulk copy statement.
func (r *Repository) Append(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("mssql: append: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("mssql: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, gomssql.CopyIn(r.table, gomssql.BulkOptions{}, columns...))
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("mssql: prepare bulk copy: %w", err)
	}

	for _, row := range rows {
		if len(row) != len(columns) {
			_ = stmt.Close()
			_ = tx.Rollback()
			return 0, fmt.Errorf("mssql: append: row length %d != columns length %d", len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, bindValues(row)...); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return 0, fmt.Errorf("mssql: bulk copy row: %w", err)
		}
	}

	// Final Exec with no arguments flushes the bulk copy and reports the
	// server-side row count.
	res, err := stmt.ExecContext(ctx)
	if err != nil {
		_ = stmt.Close()
		_ = tx.Rollback()
		return 0, fmt.Errorf("mssql: bulk copy flush: %w", err)
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("mssql: close bulk copy: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("mssql: commit: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return int64(len(rows)), nil
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
		return fmt.Errorf("mssql: truncate: %w", err)
	}
	return nil
}

// Close implements storage.Repository.
func (r *Repository) Close() { _ = r.db.Close() }

// quoteIdent bracket-quotes a SQL Server identifier, handling dotted
// schema.table names part by part.
func quoteIdent(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = "[" + strings.ReplaceAll(p, "]", "]]") + "]"
	}
	return strings.Join(parts, ".")
}

// bindValues formats calendar dates as DATE-compatible text.
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
	storage.Register("mssql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return NewRepository(ctx, cfg)
	})
}
