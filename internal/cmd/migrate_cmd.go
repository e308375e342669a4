/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/openshift-kni/songplays-etl/internal"
	"github.com/openshift-kni/songplays-etl/internal/config"
	"github.com/openshift-kni/songplays-etl/internal/exit"
	"github.com/openshift-kni/songplays-etl/internal/ledger"
)

// Migrate creates and returns the `migrate` command.
func Migrate() *cobra.Command {
	c := NewMigrateCommand()
	return &cobra.Command{
		Use:   "migrate",
		Short: "Runs the migrations of the ledger database all the way up",
		Long: "Creates or updates the tables of the ledger database. The connection details " +
			"are taken from the 'ETL_DB_*' environment variables. Needs to be done once " +
			"before running with the '--ledger' flag.",
		Args: cobra.NoArgs,
		RunE: c.run,
	}
}

// MigrateCommand contains the data and logic needed to run the `migrate` command.
type MigrateCommand struct {
}

// NewMigrateCommand creates a new runner that knows how to execute the `migrate` command.
func NewMigrateCommand() *MigrateCommand {
	return &MigrateCommand{}
}

// run executes the `migrate` command.
func (c *MigrateCommand) run(cmd *cobra.Command, argv []string) error {
	ctx := cmd.Context()
	logger := internal.LoggerFromContext(ctx)

	var database config.Database
	err := database.LoadFromEnv()
	if err != nil {
		return err
	}
	err = database.Validate()
	if err != nil {
		return err
	}

	handler, err := exit.NewHandler().
		SetLogger(logger).
		Build()
	if err != nil {
		return err
	}
	ctx, stop := handler.Context(ctx)
	defer stop()

	err = ledger.StartMigration(ctx, logger, database.PgConfig())
	if err != nil {
		logger.ErrorContext(ctx, "Failed to do migration", slog.Any("error", err))
		return exit.Failed
	}
	return nil
}
