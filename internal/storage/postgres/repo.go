// Package postgres implements the Postgres storage backend using pgx v5.
// Appends go through the COPY protocol (pool.CopyFrom), which is the
// fastest bulk path pgx offers and naturally append-only.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"useringest/internal/storage"
)

// Repository is a Postgres-backed storage.Repository.
type Repository struct {
	pool    *pgxpool.Pool
	table   string
	timeout time.Duration
}

// NewRepository connects a pool for cfg and verifies connectivity with a
// ping so authentication failures surface before the pipeline reaches the
// load stage with transformed data in hand.
func NewRepository(ctx context.Context, cfg storage.Config) (*Repository, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse dsn: %w", err)
	}
	if cfg.User != "" {
		pc.ConnConfig.User = cfg.User
	}
	if cfg.Password != "" {
		pc.ConnConfig.Password = cfg.Password
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("postgres: pool: %w", err)
	}

	pingCtx, cancel := withTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	return &Repository{pool: pool, table: cfg.Table, timeout: cfg.Timeout}, nil
}

// Append implements storage.Repository via COPY. Existing rows are never
// examined or modified.
func (r *Repository) Append(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	n, err := r.pool.CopyFrom(ctx, splitFQN(r.table), columns, pgx.CopyFromRows(rows))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Detail != "" {
			return n, fmt.Errorf("postgres: copy: %s (%s)", pgErr.Detail, pgErr.SQLState())
		}
		return n, fmt.Errorf("postgres: copy: %w", err)
	}
	return n, nil
}

// Truncate implements storage.Repository. Only ModeOverwrite reaches it.
func (r *Repository) Truncate(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()
	if _, err := r.pool.Exec(ctx, "TRUNCATE TABLE "+pgFQN(r.table)); err != nil {
		return fmt.Errorf("postgres: truncate: %w", err)
	}
	return nil
}

// Close implements storage.Repository.
func (r *Repository) Close() { r.pool.Close() }

// withTimeout applies d as a deadline when positive.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// pgIdent safely quotes a single identifier segment for Postgres.
func pgIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// pgFQN quotes a possibly schema-qualified name like "public.users" to
// "public"."users". If no dot is present, returns a single quoted ident.
func pgFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = pgIdent(p)
	}
	return strings.Join(parts, ".")
}

// splitFQN converts "schema.table" into a pgx.Identifier {"schema","table"}.
// If no dot is present, returns {"table"}.
func splitFQN(fqn string) pgx.Identifier {
	parts := strings.Split(fqn, ".")
	id := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			id = append(id, p)
		}
	}
	return id
}

// init registers the "postgres" backend with the storage factory so wiring
// layers can stay backend-agnostic.
func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return NewRepository(ctx, cfg)
	})
}
