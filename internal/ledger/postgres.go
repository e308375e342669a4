/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the subset of the connection pool used by the repository. It is satisfied by
// *pgxpool.Pool and by the pgxmock pool used in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PgConfig contains the details needed to connect to the ledger database.
type PgConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
}

// url returns the connection URL for the given scheme. The migrations library wants `pgx5` while
// the pool wants `postgres`.
func (c PgConfig) url(scheme string, query url.Values) string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	if query == nil {
		query = url.Values{}
	}
	query.Set("sslmode", sslMode)
	result := url.URL{
		Scheme:   scheme,
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%s", c.Host, c.Port),
		Path:     "/" + c.Database,
		RawQuery: query.Encode(),
	}
	return result.String()
}

// NewPgxPool get a concurrency safe pool of connection
func NewPgxPool(ctx context.Context, logger *slog.Logger, cfg PgConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.url("postgres", nil))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.InfoContext(
		ctx,
		"Database connection pool established",
		slog.String("host", cfg.Host),
		slog.String("database", cfg.Database),
	)
	return pool, nil
}
