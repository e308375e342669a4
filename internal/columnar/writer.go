/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

// Package columnar writes tables as directories of Parquet files, partitioned by the values of
// some of their columns.
package columnar

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/xitongsys/parquet-go/writer"
	"golang.org/x/sync/errgroup"

	"github.com/openshift-kni/songplays-etl/internal/data"
	"github.com/openshift-kni/songplays-etl/internal/storage"
	"github.com/openshift-kni/songplays-etl/internal/tables"
)

// SuccessMarker is the name of the empty object written in the directory of a table when all its
// files have been written.
const SuccessMarker = "_SUCCESS"

// ErrTableExists is returned when the directory of a table already contains objects and the save
// mode is ModeError.
var ErrTableExists = errors.New("table already exists")

// WriterBuilder contains the data and logic needed to create a table writer. Don't create
// instances of this directly, use the NewWriter function instead.
type WriterBuilder struct {
	logger      *slog.Logger
	bucket      storage.Bucket
	runID       string
	mode        Mode
	codec       Codec
	parallelism int
}

// Writer writes tables to a bucket. Don't create instances of this directly, use the NewWriter
// function instead.
type Writer struct {
	logger      *slog.Logger
	bucket      storage.Bucket
	runID       string
	mode        Mode
	codec       Codec
	parallelism int
}

// Result describes what was written for a table.
type Result struct {
	Table      string
	Rows       int
	Partitions []Partition
	Skipped    bool
	Duration   time.Duration
}

// Partition describes one file written for a table.
type Partition struct {
	// Path is the partition directory relative to the table, for example 'year=2018/month=11'.
	// It is empty for tables that aren't partitioned.
	Path string

	// Key is the key of the file relative to the root of the bucket.
	Key string

	Rows int
	Size int
}

// NewWriter creates a builder that can then be used to configure and create a table writer.
func NewWriter() *WriterBuilder {
	return &WriterBuilder{
		mode:        ModeError,
		codec:       CodecSnappy,
		parallelism: 4,
	}
}

// SetLogger sets the logger that the writer will use to write to the log. This is mandatory.
func (b *WriterBuilder) SetLogger(value *slog.Logger) *WriterBuilder {
	b.logger = value
	return b
}

// SetBucket sets the bucket where tables will be written. Table directories are created in the
// root of the bucket. This is mandatory.
func (b *WriterBuilder) SetBucket(value storage.Bucket) *WriterBuilder {
	b.bucket = value
	return b
}

// SetRunID sets the identifier of the run, used to generate unique file names. This is
// mandatory.
func (b *WriterBuilder) SetRunID(value string) *WriterBuilder {
	b.runID = value
	return b
}

// SetMode sets the save mode. The default is ModeError.
func (b *WriterBuilder) SetMode(value Mode) *WriterBuilder {
	b.mode = value
	return b
}

// SetCodec sets the compression codec. The default is CodecSnappy.
func (b *WriterBuilder) SetCodec(value Codec) *WriterBuilder {
	b.codec = value
	return b
}

// SetParallelism sets the maximum number of partition files that will be encoded and uploaded at
// the same time. The default is four.
func (b *WriterBuilder) SetParallelism(value int) *WriterBuilder {
	b.parallelism = value
	return b
}

// Build uses the data stored in the builder to create a new writer.
func (b *WriterBuilder) Build() (result *Writer, err error) {
	if b.logger == nil {
		err = errors.New("logger is mandatory")
		return
	}
	if b.bucket == nil {
		err = errors.New("bucket is mandatory")
		return
	}
	if b.runID == "" {
		err = errors.New("run identifier is mandatory")
		return
	}
	if b.parallelism < 1 {
		err = fmt.Errorf("parallelism should be greater than zero, but it is %d", b.parallelism)
		return
	}
	if !slices.Contains(Modes(), b.mode) {
		err = fmt.Errorf("save mode '%s' isn't supported", b.mode)
		return
	}
	if !slices.Contains(Codecs(), b.codec) {
		err = fmt.Errorf("compression codec '%s' isn't supported", b.codec)
		return
	}
	result = &Writer{
		logger:      b.logger,
		bucket:      b.bucket,
		runID:       b.runID,
		mode:        b.mode,
		codec:       b.codec,
		parallelism: b.parallelism,
	}
	return
}

// Write writes the rows of a table. The rows are grouped by the values of the partition columns
// and each group is written to its own file. When all the files have been written the success
// marker is added to the directory of the table.
func (w *Writer) Write(ctx context.Context, table *tables.Definition,
	rows []data.Row) (result Result, err error) {
	start := time.Now()
	result.Table = table.Name
	logger := w.logger.With(slog.String("table", table.Name))

	proceed, err := w.prepare(ctx, table)
	if err != nil {
		return
	}
	if !proceed {
		logger.InfoContext(ctx, "Table already exists, skipping it")
		result.Skipped = true
		return
	}

	groups := w.group(table, rows)
	partitions := make([]Partition, len(groups))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(w.parallelism)
	for i, current := range groups {
		group.Go(func() error {
			partition, err := w.writePartition(groupCtx, table, current)
			if err != nil {
				return err
			}
			partitions[i] = partition
			logger.DebugContext(
				groupCtx,
				"Wrote partition",
				slog.String("key", partition.Key),
				slog.Int("rows", partition.Rows),
				slog.Int("size", partition.Size),
			)
			return nil
		})
	}
	err = group.Wait()
	if err != nil {
		err = fmt.Errorf("failed to write table '%s': %w", table.Name, err)
		return
	}

	err = w.bucket.Put(ctx, storage.Join(table.Name, SuccessMarker), nil)
	if err != nil {
		err = fmt.Errorf("failed to write success marker of table '%s': %w", table.Name, err)
		return
	}

	result.Rows = len(rows)
	result.Partitions = partitions
	result.Duration = time.Since(start)
	logger.DebugContext(
		ctx,
		"Wrote table",
		slog.Int("rows", result.Rows),
		slog.Int("partitions", len(partitions)),
		slog.Duration("duration", result.Duration),
	)
	return
}

// prepare applies the save mode to the existing objects of the table. It returns false if the
// table should be skipped.
func (w *Writer) prepare(ctx context.Context, table *tables.Definition) (proceed bool, err error) {
	if w.mode == ModeAppend {
		proceed = true
		return
	}
	existing, err := w.bucket.List(ctx, table.Name+"/")
	if errors.Is(err, fs.ErrNotExist) {
		existing, err = nil, nil
	}
	if err != nil {
		return
	}
	if len(existing) == 0 {
		proceed = true
		return
	}
	switch w.mode {
	case ModeIgnore:
		proceed = false
	case ModeOverwrite:
		for _, object := range existing {
			err = w.bucket.Remove(ctx, object.Key)
			if err != nil {
				return
			}
		}
		w.logger.DebugContext(
			ctx,
			"Removed existing objects",
			slog.String("table", table.Name),
			slog.Int("count", len(existing)),
		)
		proceed = true
	default:
		err = fmt.Errorf(
			"directory '%s' contains %d objects: %w",
			table.Name, len(existing), ErrTableExists,
		)
	}
	return
}

type rowGroup struct {
	path string
	rows []data.Row
}

// group splits the rows by partition directory, sorted by directory. Rows keep their relative
// order inside each group.
func (w *Writer) group(table *tables.Definition, rows []data.Row) []*rowGroup {
	index := map[string]*rowGroup{}
	var groups []*rowGroup
	for _, row := range rows {
		path := PartitionPath(row, table.PartitionBy)
		current, ok := index[path]
		if !ok {
			current = &rowGroup{
				path: path,
			}
			index[path] = current
			groups = append(groups, current)
		}
		current.rows = append(current.rows, row)
	}
	slices.SortFunc(groups, func(a, b *rowGroup) int {
		return strings.Compare(a.path, b.path)
	})
	return groups
}

func (w *Writer) writePartition(ctx context.Context, table *tables.Definition,
	group *rowGroup) (result Partition, err error) {
	content, err := w.encode(table, group.rows)
	if err != nil {
		return
	}
	name := fmt.Sprintf("part-00000-%s.c000%s.parquet", w.runID, w.codec.Extension())
	key := storage.Join(table.Name, group.path, name)
	err = w.bucket.Put(ctx, key, content)
	if err != nil {
		return
	}
	result = Partition{
		Path: group.path,
		Key:  key,
		Rows: len(group.rows),
		Size: len(content),
	}
	return
}

func (w *Writer) encode(table *tables.Definition, rows []data.Row) (result []byte, err error) {
	buffer := &bytes.Buffer{}
	pw, err := writer.NewParquetWriterFromWriter(buffer, table.Prototype, 1)
	if err != nil {
		err = fmt.Errorf("failed to create Parquet writer: %w", err)
		return
	}
	pw.CompressionType = w.codec.parquet()
	for _, row := range rows {
		err = pw.Write(table.Convert(row))
		if err != nil {
			err = fmt.Errorf("failed to encode row: %w", err)
			return
		}
	}
	err = pw.WriteStop()
	if err != nil {
		err = fmt.Errorf("failed to finish Parquet file: %w", err)
		return
	}
	result = buffer.Bytes()
	return
}
