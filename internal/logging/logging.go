/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package logging

import (
	"context"
	"log/slog"
	"slices"
)

//
// This module includes utilities to define a slog handler that includes attributes that have been
// added to the context, so that the run identifier and the current stage of the pipeline are
// carried through the execution without explicitly including them in all the messages.
//

type loggingContextKey string

const (
	slogFields loggingContextKey = "slog_fields"
)

// LoggingContextHandler is a slog handler that adds to the records the attributes stored in the
// context with the AppendCtx function.
type LoggingContextHandler struct {
	handler slog.Handler
}

// NewLoggingContextHandler wraps the given handler.
func NewLoggingContextHandler(handler slog.Handler) *LoggingContextHandler {
	return &LoggingContextHandler{
		handler: handler,
	}
}

// Handle adds attributes from the context to the log record
func (h *LoggingContextHandler) Handle(ctx context.Context, record slog.Record) error {
	if attrs, ok := ctx.Value(slogFields).([]slog.Attr); ok {
		record.AddAttrs(attrs...)
	}
	return h.handler.Handle(ctx, record) // nolint: wrapcheck
}

func (h *LoggingContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *LoggingContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	return &LoggingContextHandler{handler: h.handler.WithAttrs(attrs)}
}

func (h *LoggingContextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &LoggingContextHandler{handler: h.handler.WithGroup(name)}
}

// AppendCtx adds an slog attribute to the provided context so that it will be included in any
// record created with such context. Attributes already in the context aren't modified.
func AppendCtx(ctx context.Context, attr slog.Attr) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	attrs, _ := ctx.Value(slogFields).([]slog.Attr)
	attrs = append(slices.Clip(attrs), attr)
	return context.WithValue(ctx, slogFields, attrs)
}
