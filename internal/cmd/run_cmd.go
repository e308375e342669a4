/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package cmd

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/openshift-kni/songplays-etl/internal"
	"github.com/openshift-kni/songplays-etl/internal/config"
	"github.com/openshift-kni/songplays-etl/internal/exit"
	"github.com/openshift-kni/songplays-etl/internal/ledger"
	"github.com/openshift-kni/songplays-etl/internal/metrics"
	"github.com/openshift-kni/songplays-etl/internal/pipeline"
	"github.com/openshift-kni/songplays-etl/internal/storage"
)

// Name of the job used when pushing metrics:
const metricsJob = "songplays_etl"

// Run creates and returns the `run` command.
func Run() *cobra.Command {
	c := NewRunCommand()
	result := &cobra.Command{
		Use:   "run",
		Short: "Loads the datasets and writes the tables",
		Long: "Reads the 'song_data' and 'log_data' datasets from the input and writes the " +
			"songs, artists, users, time and songplays tables to the output in Parquet format.",
		Args: cobra.NoArgs,
		RunE: c.run,
	}
	config.AddFlags(result.Flags(), &c.config)
	return result
}

// RunCommand contains the data and logic needed to run the `run` command.
type RunCommand struct {
	config config.Run
	fs     afero.Fs
	exit   func(code int)
}

// NewRunCommand creates a new runner that knows how to execute the `run` command.
func NewRunCommand() *RunCommand {
	return &RunCommand{
		fs: afero.NewOsFs(),
	}
}

// run executes the `run` command.
func (c *RunCommand) run(cmd *cobra.Command, argv []string) error {
	ctx := cmd.Context()
	logger := internal.LoggerFromContext(ctx)

	err := c.config.LoadFromEnv()
	if err != nil {
		return err
	}
	err = c.config.Validate()
	if err != nil {
		return err
	}

	settings := storage.Settings{
		Endpoint: c.config.Endpoint,
		Region:   c.config.Region,
		Insecure: c.config.Insecure,
		Fs:       c.fs,
	}
	credentials, err := config.LoadCredentials(c.fs, c.config.Credentials)
	switch {
	case err == nil:
		settings.AccessKey = credentials.AccessKey
		settings.SecretKey = credentials.SecretKey
	case errors.Is(err, config.ErrNoCredentials) && !c.config.NeedsCredentials():
		logger.DebugContext(
			ctx,
			"Credentials file doesn't exist, but it isn't needed",
			slog.String("file", c.config.Credentials),
		)
	default:
		return err
	}

	input, err := storage.Open(logger, c.config.InputLocation, settings)
	if err != nil {
		return err
	}
	output, err := storage.Open(logger, c.config.OutputLocation, settings)
	if err != nil {
		return err
	}

	handlerBuilder := exit.NewHandler().SetLogger(logger)
	if c.exit != nil {
		handlerBuilder.SetExit(c.exit)
	}
	handler, err := handlerBuilder.Build()
	if err != nil {
		return err
	}
	ctx, stop := handler.Context(ctx)
	defer stop()

	registry := prometheus.NewRegistry()
	recorder, err := metrics.NewRecorder().
		SetSubsystem("etl").
		SetRegisterer(registry).
		Build()
	if err != nil {
		return err
	}

	recorderLedger := ledger.Discard
	if c.config.Ledger {
		var closeLedger func()
		recorderLedger, closeLedger, err = c.openLedger(ctx, logger)
		if err != nil {
			return err
		}
		defer closeLedger()
	}

	runID := uuid.New()
	etl, err := pipeline.NewPipeline().
		SetLogger(logger).
		SetInput(input).
		SetOutput(output).
		SetLocations(c.config.InputLocation.String(), c.config.OutputLocation.String()).
		SetRunID(runID).
		SetMode(c.config.WriteMode).
		SetCodec(c.config.Codec).
		SetParallelism(c.config.Parallelism).
		SetLogFilter(c.config.LogFilter).
		SetLogFilterVariables(c.config.LogFilterVars).
		SetMetrics(recorder).
		SetLedger(recorderLedger).
		SetManifest(c.config.Manifest).
		Build()
	if err != nil {
		return err
	}
	runErr := etl.Run(ctx)

	if c.config.PushgatewayURL != "" {
		c.pushMetrics(context.WithoutCancel(ctx), logger, registry, runID)
	}

	if runErr != nil {
		logger.ErrorContext(
			ctx,
			"Run failed",
			slog.String("run_id", runID.String()),
			slog.Any("error", runErr),
		)
		return exit.Failed
	}
	return nil
}

// openLedger connects to the ledger database and creates the repository that records the run.
func (c *RunCommand) openLedger(ctx context.Context, logger *slog.Logger) (result ledger.Recorder,
	closer func(), err error) {
	var database config.Database
	err = database.LoadFromEnv()
	if err != nil {
		return
	}
	err = database.Validate()
	if err != nil {
		return
	}
	pool, err := ledger.NewPgxPool(ctx, logger, database.PgConfig())
	if err != nil {
		return
	}
	repository, err := ledger.NewRepository().
		SetLogger(logger).
		SetDB(pool).
		Build()
	if err != nil {
		pool.Close()
		return
	}
	result = repository
	closer = pool.Close
	return
}

// pushMetrics sends the metrics of the run to the Pushgateway. Failures are written to the log
// but don't change the result of the run.
func (c *RunCommand) pushMetrics(ctx context.Context, logger *slog.Logger,
	gatherer prometheus.Gatherer, runID uuid.UUID) {
	pusher, err := metrics.NewPusher().
		SetLogger(logger).
		SetURL(c.config.PushgatewayURL).
		SetJob(metricsJob).
		SetGatherer(gatherer).
		AddGrouping("run_id", runID.String()).
		Build()
	if err == nil {
		err = pusher.Push(ctx)
	}
	if err != nil {
		logger.WarnContext(
			ctx,
			"Failed to push metrics",
			slog.String("url", c.config.PushgatewayURL),
			slog.Any("error", err),
		)
	}
}
