/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package ledger

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrations embed.FS

// MigrationsTable table created by migration lib to track state of migration
const MigrationsTable = "etl_schema_migrations"

// StartMigration applies the embedded migrations to the ledger database. Canceling the context
// stops the migration gracefully.
func StartMigration(ctx context.Context, logger *slog.Logger, cfg PgConfig) error {
	h, err := newHandler(logger, cfg)
	if err != nil {
		return fmt.Errorf("failed to create migrations handler: %w", err)
	}
	defer h.close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			logger.Info("Received shutdown signal, stopping migration gracefully")
			h.migrate.GracefulStop <- true
		case <-done:
		}
	}()

	if err := h.runMigrationUp(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.InfoContext(ctx, "Migrations completed successfully")
	return nil
}

// MigrationHandler adapts the migrations library to the ledger logger.
type MigrationHandler struct {
	logger  *slog.Logger
	migrate *migrate.Migrate
}

// Printf is the implementation of migrate lib's logger interface
func (h *MigrationHandler) Printf(format string, v ...any) {
	h.logger.Debug(fmt.Sprintf(format, v...))
}

// Verbose is the implementation of migrate lib's logger interface
func (h *MigrationHandler) Verbose() bool {
	return h.logger.Enabled(context.Background(), slog.LevelDebug)
}

func newHandler(logger *slog.Logger, cfg PgConfig) (*MigrationHandler, error) {
	d, err := iofs.New(migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to create migrations source: %w", err)
	}

	// https://github.com/golang-migrate/migrate/tree/c378583d782e026f472dff657bfd088bf2510038/database/pgx/v5
	connStr := cfg.url("pgx5", url.Values{
		"connect_timeout":    {"10"},
		"x-migrations-table": {MigrationsTable},
	})

	m, err := migrate.NewWithSourceInstance("iofs", d, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	h := &MigrationHandler{
		logger:  logger,
		migrate: m,
	}
	m.Log = h

	return h, nil
}

func (h *MigrationHandler) timer(name string) func() {
	start := time.Now()
	return func() {
		h.logger.Debug(fmt.Sprintf("%s took %s", name, time.Since(start)))
	}
}

func (h *MigrationHandler) runMigrationUp() error {
	defer h.timer("Up")()

	if err := h.migrate.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed up: %w", err)
	}
	return nil
}

func (h *MigrationHandler) close() {
	sourceErr, dbErr := h.migrate.Close()
	if sourceErr != nil || dbErr != nil {
		h.logger.Warn(
			"Failed to close migrations",
			slog.Any("source", sourceErr),
			slog.Any("database", dbErr),
		)
	}
}
