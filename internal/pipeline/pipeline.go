/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

// Package pipeline contains the transform that reads the song and listening log datasets and
// writes the songs, artists, users, time and songplays tables.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/openshift-kni/songplays-etl/internal/columnar"
	"github.com/openshift-kni/songplays-etl/internal/data"
	"github.com/openshift-kni/songplays-etl/internal/ingest"
	"github.com/openshift-kni/songplays-etl/internal/jq"
	"github.com/openshift-kni/songplays-etl/internal/ledger"
	"github.com/openshift-kni/songplays-etl/internal/logging"
	"github.com/openshift-kni/songplays-etl/internal/metrics"
	"github.com/openshift-kni/songplays-etl/internal/storage"
	"github.com/openshift-kni/songplays-etl/internal/tables"
)

// DefaultLogFilter selects the log events that are song plays.
const DefaultLogFilter = `.page == "NextSong"`

// Stage names, used in the logs and as metric labels.
const (
	SongStage = "song_data"
	LogStage  = "log_data"
)

// PipelineBuilder contains the data and logic needed to create a pipeline. Don't create instances
// of this type directly, use the NewPipeline function instead.
type PipelineBuilder struct {
	logger      *slog.Logger
	input       storage.Bucket
	output      storage.Bucket
	inputURL    string
	outputURL   string
	runID       uuid.UUID
	mode        columnar.Mode
	codec       columnar.Codec
	parallelism int
	logFilter   string
	filterVars  map[string]string
	metrics     *metrics.Recorder
	ledger      ledger.Recorder
	manifest    bool
}

// Pipeline is the transform. It processes the song dataset first and then the log dataset, as
// the songplays table needs both.
type Pipeline struct {
	logger    *slog.Logger
	input     storage.Bucket
	output    storage.Bucket
	inputURL  string
	outputURL string
	runID     uuid.UUID
	mode      columnar.Mode
	codec     columnar.Codec
	filter    *jq.Query
	variables []jq.Variable
	writer    *columnar.Writer
	metrics   *metrics.Recorder
	ledger    ledger.Recorder
	manifest  bool

	// Accumulated while running, used for the manifest.
	datasets []DatasetSummary
	tables   []columnar.Result
}

// NewPipeline creates a builder that can then be used to configure and create a pipeline.
func NewPipeline() *PipelineBuilder {
	return &PipelineBuilder{
		mode:        columnar.ModeError,
		codec:       columnar.CodecSnappy,
		parallelism: 4,
		logFilter:   DefaultLogFilter,
		ledger:      ledger.Discard,
	}
}

// SetLogger sets the logger that the pipeline will use to write to the log. This is mandatory.
func (b *PipelineBuilder) SetLogger(value *slog.Logger) *PipelineBuilder {
	b.logger = value
	return b
}

// SetInput sets the bucket containing the 'song_data' and 'log_data' datasets. This is
// mandatory.
func (b *PipelineBuilder) SetInput(value storage.Bucket) *PipelineBuilder {
	b.input = value
	return b
}

// SetOutput sets the bucket where the tables will be written. This is mandatory.
func (b *PipelineBuilder) SetOutput(value storage.Bucket) *PipelineBuilder {
	b.output = value
	return b
}

// SetLocations sets the URLs of the input and output, only used for the logs, the ledger and the
// manifest.
func (b *PipelineBuilder) SetLocations(input, output string) *PipelineBuilder {
	b.inputURL = input
	b.outputURL = output
	return b
}

// SetRunID sets the identifier of the run. If not set a random one is generated.
func (b *PipelineBuilder) SetRunID(value uuid.UUID) *PipelineBuilder {
	b.runID = value
	return b
}

// SetMode sets the save mode of the tables. The default is to fail if a table already exists.
func (b *PipelineBuilder) SetMode(value columnar.Mode) *PipelineBuilder {
	b.mode = value
	return b
}

// SetCodec sets the compression codec of the Parquet files. The default is snappy.
func (b *PipelineBuilder) SetCodec(value columnar.Codec) *PipelineBuilder {
	b.codec = value
	return b
}

// SetParallelism sets the maximum number of partition files written at the same time.
func (b *PipelineBuilder) SetParallelism(value int) *PipelineBuilder {
	b.parallelism = value
	return b
}

// SetLogFilter sets the jq expression that selects the song play events from the listening log.
// The default is '.page == "NextSong"'.
func (b *PipelineBuilder) SetLogFilter(value string) *PipelineBuilder {
	b.logFilter = value
	return b
}

// SetLogFilterVariables sets the values of the variables used by the log filter. Names may be given
// with or without the dollar sign.
func (b *PipelineBuilder) SetLogFilterVariables(value map[string]string) *PipelineBuilder {
	b.filterVars = value
	return b
}

// SetMetrics sets the recorder of the metrics. If not set the metrics are registered in a private
// registry that nobody reads.
func (b *PipelineBuilder) SetMetrics(value *metrics.Recorder) *PipelineBuilder {
	b.metrics = value
	return b
}

// SetLedger sets the recorder of the run ledger. The default is to not record anything.
func (b *PipelineBuilder) SetLedger(value ledger.Recorder) *PipelineBuilder {
	if value == nil {
		value = ledger.Discard
	}
	b.ledger = value
	return b
}

// SetManifest enables or disables writing the run manifest. It is disabled by default.
func (b *PipelineBuilder) SetManifest(value bool) *PipelineBuilder {
	b.manifest = value
	return b
}

// Build uses the data stored in the builder to create a new pipeline.
func (b *PipelineBuilder) Build() (result *Pipeline, err error) {
	if b.logger == nil {
		err = errors.New("logger is mandatory")
		return
	}
	if b.input == nil {
		err = errors.New("input bucket is mandatory")
		return
	}
	if b.output == nil {
		err = errors.New("output bucket is mandatory")
		return
	}
	if b.logFilter == "" {
		err = errors.New("log filter is mandatory")
		return
	}

	runID := b.runID
	if runID == uuid.Nil {
		runID = uuid.New()
	}

	tool, err := jq.NewTool().
		SetLogger(b.logger).
		Build()
	if err != nil {
		return
	}
	variables := jq.Strings(b.filterVars)
	filter, err := tool.Compile(b.logFilter, jq.Names(variables)...)
	if err != nil {
		err = fmt.Errorf("failed to compile log filter '%s': %w", b.logFilter, err)
		return
	}

	writer, err := columnar.NewWriter().
		SetLogger(b.logger).
		SetBucket(b.output).
		SetRunID(runID.String()).
		SetMode(b.mode).
		SetCodec(b.codec).
		SetParallelism(b.parallelism).
		Build()
	if err != nil {
		return
	}

	recorder := b.metrics
	if recorder == nil {
		recorder, err = metrics.NewRecorder().
			SetSubsystem("etl").
			SetRegisterer(prometheus.NewRegistry()).
			Build()
		if err != nil {
			return
		}
	}

	result = &Pipeline{
		logger:    b.logger,
		input:     b.input,
		output:    b.output,
		inputURL:  b.inputURL,
		outputURL: b.outputURL,
		runID:     runID,
		mode:      b.mode,
		codec:     b.codec,
		filter:    filter,
		variables: variables,
		writer:    writer,
		metrics:   recorder,
		ledger:    b.ledger,
		manifest:  b.manifest,
	}
	return
}

// RunID returns the identifier of the run.
func (p *Pipeline) RunID() uuid.UUID {
	return p.runID
}

// Run executes the complete transform: the song dataset stage and then the log dataset stage.
// The final status is recorded in the ledger also when the run fails.
func (p *Pipeline) Run(ctx context.Context) (err error) {
	ctx = logging.AppendCtx(ctx, slog.String("run_id", p.runID.String()))
	started := time.Now().UTC()

	err = p.ledger.StartRun(ctx, ledger.Run{
		RunID:     p.runID,
		StartedAt: started,
		Input:     p.inputURL,
		Output:    p.outputURL,
		Mode:      string(p.mode),
		Codec:     string(p.codec),
	})
	if err != nil {
		return
	}
	defer func() {
		ledgerErr := p.ledger.FinishRun(ctx, p.runID, err)
		if ledgerErr != nil {
			p.logger.ErrorContext(
				ctx,
				"Failed to record the end of the run",
				slog.Any("error", ledgerErr),
			)
			if err == nil {
				err = ledgerErr
			}
		}
	}()

	p.logger.InfoContext(
		ctx,
		"Connected",
		slog.String("input", p.inputURL),
		slog.String("output", p.outputURL),
	)

	err = p.ProcessSongData(ctx)
	if err != nil {
		return
	}
	p.logger.InfoContext(ctx, "Song data process complete")

	err = p.ProcessLogData(ctx)
	if err != nil {
		return
	}
	p.logger.InfoContext(ctx, "Log data process complete")

	finished := time.Now().UTC()
	if p.manifest {
		err = p.writeManifest(ctx, started, finished)
		if err != nil {
			return
		}
	}
	p.metrics.RunSucceeded(finished)

	p.logger.InfoContext(ctx, "Complete", slog.Duration("duration", finished.Sub(started)))
	return
}

// read reads a dataset and collects its rows. When a selector is given only the rows that it
// accepts are kept.
func (p *Pipeline) read(ctx context.Context, stage, dataset, pattern string, schema data.Schema,
	selector func(context.Context, data.Row) (bool, error)) (rows []data.Row, err error) {
	reader, err := ingest.NewReader().
		SetLogger(p.logger).
		SetBucket(p.input).
		SetPattern(pattern).
		SetSchema(schema).
		Build()
	if err != nil {
		return
	}
	stream, err := reader.Read(ctx)
	if err != nil {
		err = fmt.Errorf("failed to read dataset '%s': %w", dataset, err)
		return
	}
	if selector != nil {
		stream = data.Select(stream, selector)
	}
	rows, err = data.Collect(ctx, stream)
	if err != nil {
		err = fmt.Errorf("failed to read dataset '%s': %w", dataset, err)
		return
	}
	stats := reader.Stats()
	p.metrics.DatasetRead(dataset, stats.Rows, stats.Coerced, stats.Malformed)
	p.datasets = append(p.datasets, DatasetSummary{
		Name:      dataset,
		Stage:     stage,
		Files:     stats.Files,
		Rows:      stats.Rows,
		Kept:      len(rows),
		Malformed: stats.Malformed,
		Coerced:   stats.Coerced,
	})
	return
}

// write writes a table and records the result in the metrics and in the ledger.
func (p *Pipeline) write(ctx context.Context, table *tables.Definition,
	rows []data.Row) (result columnar.Result, err error) {
	result, err = p.writer.Write(ctx, table, rows)
	if err != nil {
		return
	}
	p.metrics.TableWritten(table.Name, result.Rows, len(result.Partitions))
	p.tables = append(p.tables, result)
	err = p.ledger.RecordTable(ctx, ledger.TableOutput{
		RunID:      p.runID,
		Table:      table.Name,
		Rows:       int64(result.Rows),
		Partitions: len(result.Partitions),
		Skipped:    result.Skipped,
	})
	return
}
