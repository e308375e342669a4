/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

// Package ingest reads the raw datasets. Datasets are sets of objects containing one JSON
// document per line.
package ingest

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	jsoniter "github.com/json-iterator/go"

	"github.com/openshift-kni/songplays-etl/internal/data"
	"github.com/openshift-kni/songplays-etl/internal/storage"
	"github.com/openshift-kni/songplays-etl/internal/streaming"
)

// lineDecoder is the JSON configuration used to decode lines. Numbers are kept as their literal
// text so that integers and millisecond timestamps aren't converted to floating point.
var lineDecoder = jsoniter.Config{
	EscapeHTML:             true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

// ReaderBuilder contains the data and logic needed to create a dataset reader. Don't create
// instances of this directly, use the NewReader function instead.
type ReaderBuilder struct {
	logger  *slog.Logger
	bucket  storage.Bucket
	pattern string
	schema  data.Schema
}

// Reader reads the rows of a dataset. Don't create instances of this directly, use the NewReader
// function instead.
type Reader struct {
	logger  *slog.Logger
	bucket  storage.Bucket
	pattern string
	schema  data.Schema
	stats   Stats
}

// Stats contains counters that describe what the reader did.
type Stats struct {
	// Files is the number of objects that matched the pattern.
	Files int

	// Rows is the number of rows returned, including the rows built from malformed lines.
	Rows int

	// Malformed is the number of lines that couldn't be parsed as JSON objects.
	Malformed int

	// Coerced is the number of values that were present but didn't have the type declared in
	// the schema, and were therefore replaced with null.
	Coerced int
}

// NewReader creates a builder that can then be used to configure and create a dataset reader.
func NewReader() *ReaderBuilder {
	return &ReaderBuilder{}
}

// SetLogger sets the logger that the reader will use to write to the log. This is mandatory.
func (b *ReaderBuilder) SetLogger(value *slog.Logger) *ReaderBuilder {
	b.logger = value
	return b
}

// SetBucket sets the bucket that contains the dataset. This is mandatory.
func (b *ReaderBuilder) SetBucket(value storage.Bucket) *ReaderBuilder {
	b.bucket = value
	return b
}

// SetPattern sets the glob pattern that selects the objects of the dataset, for example
// 'log_data/*/*/*.json'. This is mandatory.
func (b *ReaderBuilder) SetPattern(value string) *ReaderBuilder {
	b.pattern = value
	return b
}

// SetSchema sets the schema of the rows. This is optional. When set, rows contain exactly the
// fields of the schema with the declared types. When not set, rows contain the values as decoded
// from the JSON documents.
func (b *ReaderBuilder) SetSchema(value data.Schema) *ReaderBuilder {
	b.schema = value
	return b
}

// Build uses the data stored in the builder to create a new reader.
func (b *ReaderBuilder) Build() (result *Reader, err error) {
	if b.logger == nil {
		err = errors.New("logger is mandatory")
		return
	}
	if b.bucket == nil {
		err = errors.New("bucket is mandatory")
		return
	}
	if b.pattern == "" {
		err = errors.New("pattern is mandatory")
		return
	}
	result = &Reader{
		logger:  b.logger,
		bucket:  b.bucket,
		pattern: b.pattern,
		schema:  b.schema,
	}
	return
}

// Read finds the objects of the dataset and returns a stream of rows. It fails if no object
// matches the pattern. Objects are read in the
// order of their keys and lines in the order they appear. Objects are opened only when the
// stream is consumed.
func (r *Reader) Read(ctx context.Context) (result data.Stream, err error) {
	keys, err := storage.Glob(ctx, r.bucket, r.pattern)
	if err != nil {
		err = fmt.Errorf("failed to find objects matching '%s': %w", r.pattern, err)
		return
	}
	if len(keys) == 0 {
		err = &storage.Error{
			Op:  storage.OpList,
			Key: r.pattern,
			Err: fs.ErrNotExist,
		}
		return
	}
	r.stats.Files += len(keys)
	r.logger.DebugContext(
		ctx,
		"Found dataset objects",
		slog.String("pattern", r.pattern),
		slog.Int("count", len(keys)),
	)
	result = streaming.FlatMap(streaming.Pour(keys...), r.open)
	return
}

// Stats returns the counters accumulated by the streams returned by the Read method.
func (r *Reader) Stats() Stats {
	return r.stats
}

func (r *Reader) open(ctx context.Context, key string) (result data.Stream, err error) {
	object, err := r.bucket.Open(ctx, key)
	if err != nil {
		return
	}
	result = &lineStream{
		reader: r,
		key:    key,
		object: object,
		buffer: bufio.NewReader(object),
	}
	return
}

// lineStream is the stream of rows of one object.
type lineStream struct {
	reader *Reader
	key    string
	object io.ReadCloser
	buffer *bufio.Reader
	line   int
}

func (s *lineStream) Next(ctx context.Context) (row data.Row, err error) {
	for {
		if s.buffer == nil {
			err = data.ErrEnd
			return
		}
		var text []byte
		text, err = s.buffer.ReadBytes('\n')
		if errors.Is(err, io.EOF) {
			s.buffer = nil
			err = nil
		}
		if err != nil {
			_ = s.Close()
			err = &storage.Error{
				Op:  storage.OpOpen,
				Key: s.key,
				Err: err,
			}
			return
		}
		s.line++
		text = bytes.TrimSpace(text)
		if len(text) == 0 {
			continue
		}
		row = s.parse(ctx, text)
		s.reader.stats.Rows++
		return
	}
}

func (s *lineStream) parse(ctx context.Context, text []byte) data.Row {
	var raw map[string]any
	err := lineDecoder.Unmarshal(text, &raw)
	if err != nil || raw == nil {
		s.reader.stats.Malformed++
		s.reader.logger.DebugContext(
			ctx,
			"Malformed line",
			slog.String("key", s.key),
			slog.Int("line", s.line),
			slog.Any("error", err),
		)
		if s.reader.schema == nil {
			return data.Row{}
		}
		return s.reader.schema.Empty()
	}
	if s.reader.schema == nil {
		return raw
	}
	row, coerced := s.reader.schema.Apply(raw)
	if coerced > 0 {
		s.reader.stats.Coerced += coerced
		s.reader.logger.DebugContext(
			ctx,
			"Replaced values that don't match the schema with null",
			slog.String("key", s.key),
			slog.Int("line", s.line),
			slog.Int("count", coerced),
		)
	}
	return row
}

// Close releases the object. It is called automatically when the stream is exhausted.
func (s *lineStream) Close() error {
	s.buffer = nil
	if s.object == nil {
		return nil
	}
	err := s.object.Close()
	s.object = nil
	return err
}
