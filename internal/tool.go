/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package internal

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/openshift-kni/songplays-etl/internal/logging"
)

// ToolBuilder contains the data and logic needed to create an instance of the command line tool.
// Don't create instances of this directly, use the NewTool function instead.
type ToolBuilder struct {
	logger   *slog.Logger
	args     []string
	in       io.Reader
	out      io.Writer
	err      io.Writer
	commands []func() *cobra.Command
}

// Tool is an instance of the command line tool. Don't create instances of this directly, use the
// NewTool function instead.
type Tool struct {
	logger   *slog.Logger
	args     []string
	in       io.Reader
	out      io.Writer
	err      io.Writer
	commands []func() *cobra.Command
	cmd      *cobra.Command
}

// NewTool creates a builder that can then be used to configure and create an instance of the
// command line tool.
func NewTool() *ToolBuilder {
	return &ToolBuilder{}
}

// SetLogger sets the logger that the tool will use to write messages to the log. This is
// optional, when not set the logger is created from the command line flags.
func (b *ToolBuilder) SetLogger(value *slog.Logger) *ToolBuilder {
	b.logger = value
	return b
}

// AddArgs adds a set of command line arguments. The first one is the name of the binary.
func (b *ToolBuilder) AddArgs(values ...string) *ToolBuilder {
	b.args = append(b.args, values...)
	return b
}

// SetIn sets the standard input stream. This is mandatory.
func (b *ToolBuilder) SetIn(value io.Reader) *ToolBuilder {
	b.in = value
	return b
}

// SetOut sets the standard output stream. This is mandatory.
func (b *ToolBuilder) SetOut(value io.Writer) *ToolBuilder {
	b.out = value
	return b
}

// SetErr sets the standard error output stream. This is mandatory.
func (b *ToolBuilder) SetErr(value io.Writer) *ToolBuilder {
	b.err = value
	return b
}

// AddCommand adds a sub-command.
func (b *ToolBuilder) AddCommand(value func() *cobra.Command) *ToolBuilder {
	b.commands = append(b.commands, value)
	return b
}

// Build uses the data stored in the builder to create a new instance of the command line tool.
func (b *ToolBuilder) Build() (result *Tool, err error) {
	if len(b.args) < 1 {
		err = errors.New(
			"at least one argument containing the name of the binary is required",
		)
		return
	}
	if b.in == nil {
		err = errors.New("standard input stream is mandatory")
		return
	}
	if b.out == nil {
		err = errors.New("standard output stream is mandatory")
		return
	}
	if b.err == nil {
		err = errors.New("standard error stream is mandatory")
		return
	}

	result = &Tool{
		logger:   b.logger,
		args:     slices.Clone(b.args),
		in:       b.in,
		out:      b.out,
		err:      b.err,
		commands: slices.Clone(b.commands),
	}
	return
}

// Run runs the tool.
func (t *Tool) Run(ctx context.Context) error {
	t.createCommand()
	t.cmd.SetArgs(t.args[1:])
	ctx = ToolIntoContext(ctx, t)
	return t.cmd.ExecuteContext(ctx)
}

// In returns the input stream of the tool.
func (t *Tool) In() io.Reader {
	return t.in
}

// Out returns the output stream of the tool.
func (t *Tool) Out() io.Writer {
	return t.out
}

// Err returns the error output stream of the tool.
func (t *Tool) Err() io.Writer {
	return t.err
}

func (t *Tool) createCommand() {
	t.cmd = &cobra.Command{
		Use:               filepath.Base(t.args[0]),
		Long:              "Loads the song and listening log datasets into Parquet tables",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: t.run,
	}
	t.cmd.SetIn(t.in)
	t.cmd.SetOut(t.out)
	t.cmd.SetErr(t.err)

	logging.AddFlags(t.cmd.PersistentFlags())

	for _, command := range t.commands {
		t.cmd.AddCommand(command())
	}
}

// run is executed before any sub-command. It creates the logger, unless one was explicitly given,
// and puts it in the context.
func (t *Tool) run(cmd *cobra.Command, argv []string) error {
	if t.logger == nil {
		logger, err := logging.NewLogger().
			SetFlags(cmd.Flags()).
			SetOut(t.out).
			SetErr(t.err).
			Build()
		if err != nil {
			return err
		}
		t.logger = logger
	}
	ctx := LoggerIntoContext(cmd.Context(), t.logger)
	cmd.SetContext(ctx)
	return nil
}
