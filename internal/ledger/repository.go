/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/um"
)

// ErrNotFound is returned when the requested run isn't in the ledger.
var ErrNotFound = errors.New("run not found")

// Recorder is the part of the ledger used by the pipeline.
type Recorder interface {
	// StartRun records that a run has started.
	StartRun(ctx context.Context, run Run) error

	// RecordTable records the outcome of writing one table.
	RecordTable(ctx context.Context, output TableOutput) error

	// FinishRun records the final status of a run. A nil failure means that the run succeeded.
	FinishRun(ctx context.Context, id uuid.UUID, failure error) error
}

// Discard is a recorder that does nothing. It is used when the ledger isn't enabled.
var Discard Recorder = discard{}

type discard struct{}

func (discard) StartRun(context.Context, Run) error { return nil }

func (discard) RecordTable(context.Context, TableOutput) error { return nil }

func (discard) FinishRun(context.Context, uuid.UUID, error) error { return nil }

// RepositoryBuilder contains the data and logic needed to create a repository. Don't create
// instances of this type directly, use the NewRepository function instead.
type RepositoryBuilder struct {
	logger *slog.Logger
	db     DB
	clock  func() time.Time
}

// Repository stores runs and table outputs in the ledger database.
type Repository struct {
	logger *slog.Logger
	db     DB
	clock  func() time.Time
}

// Compile time check for interface implementation
var _ Recorder = (*Repository)(nil)

// NewRepository creates a builder that can then be used to configure and create a repository.
func NewRepository() *RepositoryBuilder {
	return &RepositoryBuilder{
		clock: time.Now,
	}
}

// SetLogger sets the logger that the repository will use to write to the log. This is mandatory.
func (b *RepositoryBuilder) SetLogger(value *slog.Logger) *RepositoryBuilder {
	b.logger = value
	return b
}

// SetDB sets the database connection. This is mandatory.
func (b *RepositoryBuilder) SetDB(value DB) *RepositoryBuilder {
	b.db = value
	return b
}

// SetClock sets the function used to get the current time. The default is time.Now.
func (b *RepositoryBuilder) SetClock(value func() time.Time) *RepositoryBuilder {
	b.clock = value
	return b
}

// Build uses the data stored in the builder to create a new repository.
func (b *RepositoryBuilder) Build() (result *Repository, err error) {
	if b.logger == nil {
		err = errors.New("logger is mandatory")
		return
	}
	if b.db == nil {
		err = errors.New("database is mandatory")
		return
	}
	if b.clock == nil {
		err = errors.New("clock is mandatory")
		return
	}
	result = &Repository{
		logger: b.logger,
		db:     b.db,
		clock:  b.clock,
	}
	return
}

// StartRun inserts the run with the running status.
func (r *Repository) StartRun(ctx context.Context, run Run) error {
	run.Status = StatusRunning
	run.FinishedAt = nil
	run.Error = nil
	columns := dbColumns(run)
	query := psql.Insert(
		im.Into(run.TableName(), columns...),
		im.Values(psql.Arg(
			run.RunID, run.StartedAt, run.FinishedAt, string(run.Status),
			run.Input, run.Output, run.Mode, run.Codec, run.Error,
		)),
	)
	sql, args, err := query.Build()
	if err != nil {
		return fmt.Errorf("failed to build insert for run '%s': %w", run.RunID, err)
	}
	_, err = r.db.Exec(ctx, sql, args...)
	if err != nil {
		return r.wrap(err, "failed to insert run '%s'", run.RunID)
	}
	r.logger.DebugContext(ctx, "Recorded run start", slog.String("run_id", run.RunID.String()))
	return nil
}

// RecordTable inserts the table output, replacing the counts if the table was already recorded
// for the same run.
func (r *Repository) RecordTable(ctx context.Context, output TableOutput) error {
	output.WrittenAt = r.clock().UTC()
	columns := dbColumns(output)
	query := psql.Insert(
		im.Into(output.TableName(), columns...),
		im.Values(psql.Arg(
			output.RunID, output.Table, output.Rows, output.Partitions, output.Skipped,
			output.WrittenAt,
		)),
		im.OnConflictOnConstraint(output.OnConflict()).DoUpdate(
			im.SetExcluded("rows", "partitions", "skipped", "written_at"),
		),
	)
	sql, args, err := query.Build()
	if err != nil {
		return fmt.Errorf("failed to build insert for table '%s': %w", output.Table, err)
	}
	_, err = r.db.Exec(ctx, sql, args...)
	if err != nil {
		return r.wrap(err, "failed to insert output of table '%s'", output.Table)
	}
	return nil
}

// FinishRun sets the finish time and the final status of the run.
func (r *Repository) FinishRun(ctx context.Context, id uuid.UUID, failure error) error {
	status := StatusSucceeded
	var message *string
	if failure != nil {
		status = StatusFailed
		text := failure.Error()
		message = &text
	}
	var run Run
	query := psql.Update(
		um.Table(run.TableName()),
		um.SetCol("finished_at").ToArg(r.clock().UTC()),
		um.SetCol("status").ToArg(string(status)),
		um.SetCol("error").ToArg(message),
		um.Where(psql.Quote(run.PrimaryKey()).EQ(psql.Arg(id))),
	)
	sql, args, err := query.Build()
	if err != nil {
		return fmt.Errorf("failed to build update for run '%s': %w", id, err)
	}
	result, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return r.wrap(err, "failed to update run '%s'", id)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("failed to update run '%s': %w", id, ErrNotFound)
	}
	r.logger.DebugContext(
		ctx,
		"Recorded run finish",
		slog.String("run_id", id.String()),
		slog.String("status", string(status)),
	)
	return nil
}

// GetRun returns the run with the given identifier, or ErrNotFound.
func (r *Repository) GetRun(ctx context.Context, id uuid.UUID) (result *Run, err error) {
	var run Run
	query := psql.Select(
		sm.Columns(anys(dbColumns(run))...),
		sm.From(run.TableName()),
		sm.Where(psql.Quote(run.PrimaryKey()).EQ(psql.Arg(id))),
	)
	sql, args, err := query.Build()
	if err != nil {
		err = fmt.Errorf("failed to build query: %w", err)
		return
	}
	rows, _ := r.db.Query(ctx, sql, args...) // note: err is passed on to Collect* func so we can ignore this
	run, err = pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Run])
	if errors.Is(err, pgx.ErrNoRows) {
		err = fmt.Errorf("failed to find run '%s': %w", id, ErrNotFound)
		return
	}
	if err != nil {
		err = r.wrap(err, "failed to get run '%s'", id)
		return
	}
	result = &run
	return
}

// GetTableOutputs returns the table outputs recorded for the given run, sorted by table name.
func (r *Repository) GetTableOutputs(ctx context.Context, id uuid.UUID) (results []TableOutput,
	err error) {
	var output TableOutput
	query := psql.Select(
		sm.Columns(anys(dbColumns(output))...),
		sm.From(output.TableName()),
		sm.Where(psql.Quote(output.PrimaryKey()).EQ(psql.Arg(id))),
		sm.OrderBy(psql.Quote("table_name")),
	)
	sql, args, err := query.Build()
	if err != nil {
		err = fmt.Errorf("failed to build query: %w", err)
		return
	}
	rows, _ := r.db.Query(ctx, sql, args...) // note: err is passed on to Collect* func so we can ignore this
	results, err = pgx.CollectRows(rows, pgx.RowToStructByName[TableOutput])
	if err != nil {
		err = r.wrap(err, "failed to get outputs of run '%s'", id)
		return
	}
	return
}

// wrap adds context to a database error. Missing tables usually mean that the migrations haven't
// been applied, so the message says so.
func (r *Repository) wrap(err error, format string, args ...any) error {
	message := fmt.Sprintf(format, args...)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedTable {
		return fmt.Errorf("%s, run the 'migrate' command first: %w", message, err)
	}
	return fmt.Errorf("%s: %w", message, err)
}

// dbColumns returns the values of the `db` tags of the fields of the given model, in field order.
func dbColumns(record Model) []string {
	kind := reflect.TypeOf(record)
	result := make([]string, 0, kind.NumField())
	for i := range kind.NumField() {
		tag := kind.Field(i).Tag.Get("db")
		if tag != "" && tag != "-" {
			result = append(result, tag)
		}
	}
	return result
}

func anys(columns []string) []any {
	result := make([]any, len(columns))
	for i, column := range columns {
		result[i] = column
	}
	return result
}
