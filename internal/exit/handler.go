/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package exit

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"
)

// HandlerBuilder contains the data and logic needed to build an exit handler.
type HandlerBuilder struct {
	logger  *slog.Logger
	signals []os.Signal
	exit    func(code int)
}

// Handler cancels the context of a run when an exit signal is received, so that the run can stop
// cleanly. A second signal terminates the process without waiting.
type Handler struct {
	logger  *slog.Logger
	signals []os.Signal
	exit    func(code int)
}

// NewHandler creates a builder that can then be used to configure and create an exit handler.
func NewHandler() *HandlerBuilder {
	return &HandlerBuilder{
		signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		exit:    os.Exit,
	}
}

// SetLogger sets the logger that the handler will use to write to the log. This is mandatory.
func (b *HandlerBuilder) SetLogger(logger *slog.Logger) *HandlerBuilder {
	b.logger = logger
	return b
}

// AddSignals adds exit signals. Signals SIGINT and SIGTERM are included by default.
func (b *HandlerBuilder) AddSignals(values ...os.Signal) *HandlerBuilder {
	b.signals = append(b.signals, values...)
	return b
}

// SetSignals sets the exit signals, discarding any signals that have been previously configured,
// including the defaults.
func (b *HandlerBuilder) SetSignals(values ...os.Signal) *HandlerBuilder {
	b.signals = slices.Clone(values)
	return b
}

// SetExit sets the function called to terminate the process when the second signal is received.
// The default is os.Exit.
func (b *HandlerBuilder) SetExit(value func(code int)) *HandlerBuilder {
	b.exit = value
	return b
}

// Build uses the data stored in the builder to create and configure a new exit handler.
func (b *HandlerBuilder) Build() (result *Handler, err error) {
	if b.logger == nil {
		err = errors.New("logger is mandatory")
		return
	}
	if len(b.signals) == 0 {
		err = errors.New("at least one signal is required")
		return
	}
	if b.exit == nil {
		err = errors.New("exit function is mandatory")
		return
	}

	result = &Handler{
		logger:  b.logger,
		signals: slices.Clone(b.signals),
		exit:    b.exit,
	}
	return
}

// Context returns a context that is cancelled when the first exit signal is received. The
// returned stop function must be called to stop listening for signals.
func (h *Handler) Context(parent context.Context) (ctx context.Context, stop func()) {
	ctx, cancel := context.WithCancel(parent)
	c := make(chan os.Signal, 2)
	signal.Notify(c, h.signals...)
	done := make(chan struct{})
	go func() {
		select {
		case s := <-c:
			h.logger.InfoContext(
				ctx,
				"Received exit signal, stopping run",
				slog.String("signal", s.String()),
			)
			cancel()
		case <-done:
			return
		}

		// If we receive a second signal then we stop immediately, without waiting for the
		// run to finish.
		select {
		case s := <-c:
			h.logger.InfoContext(
				ctx,
				"Received signal while waiting for the run to stop",
				slog.String("signal", s.String()),
			)
			h.exit(int(Interrupted))
		case <-done:
		}
	}()
	stop = func() {
		signal.Stop(c)
		close(done)
		cancel()
	}
	return
}
