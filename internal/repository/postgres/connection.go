package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"docuvault/internal/domain/repositories"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryConfig holds the shared pieces repository implementations need.
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Scope  *Scope
	Logger *slog.Logger
}

// TableNames holds environment-prefixed table names so dev/test/prod can
// share a database.
type TableNames struct {
	Folders   string
	Documents string
	Grants    string
}

// NewTableNames creates table names with the given prefix.
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Folders:   fmt.Sprintf("%sfolders", prefix),
		Documents: fmt.Sprintf("%sdocuments", prefix),
		Grants:    fmt.Sprintf("%sfolder_grants", prefix),
	}
}

// CreateConnectionPool creates a pgx connection pool and verifies the
// connection. Pool sizing matches one-session-per-request discipline: the
// pool hands a connection to a request scope and reclaims it on completion,
// on every exit path.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the in-flight transaction when one rides on the
// context, otherwise the pool. Repositories participate in transactions
// automatically.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
