/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

// Package jq compiles the jq expressions used to select log events.
package jq

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/itchyny/gojq"

	"github.com/openshift-kni/songplays-etl/internal/logging"
)

// ToolBuilder contains the data needed to build a tool that compiles queries. Don't create
// instances of this directly, use the NewTool function instead.
type ToolBuilder struct {
	logger *slog.Logger
}

// Tool compiles queries and keeps them in a cache indexed by source. Don't create instances of
// this directly, use the NewTool function instead.
type Tool struct {
	logger *slog.Logger
	lock   *sync.Mutex
	cache  map[string]*Query
}

// NewTool creates a builder that can then be used to create a tool.
func NewTool() *ToolBuilder {
	return &ToolBuilder{}
}

// SetLogger sets the logger that the tool will use to write the log. This is mandatory.
func (b *ToolBuilder) SetLogger(value *slog.Logger) *ToolBuilder {
	b.logger = value
	return b
}

// Build uses the information stored in the builder to create a new tool.
func (b *ToolBuilder) Build() (result *Tool, err error) {
	if b.logger == nil {
		err = errors.New("logger is mandatory")
		return
	}
	result = &Tool{
		logger: b.logger,
		lock:   &sync.Mutex{},
		cache:  map[string]*Query{},
	}
	return
}

// Compile compiles the query with the given variable names, including the dollar sign. Compiling
// the same source again returns the cached query, as long as the variable names are the same.
func (t *Tool) Compile(source string, variables ...string) (result *Query, err error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	variables = slices.Sorted(slices.Values(variables))
	cached, ok := t.cache[source]
	if ok {
		if !slices.Equal(variables, cached.variables) {
			err = fmt.Errorf(
				"query '%s' was compiled with variables %s but used with %s",
				source, logging.All(cached.variables), logging.All(variables),
			)
			return
		}
		result = cached
		return
	}
	parsed, err := gojq.Parse(source)
	if err != nil {
		return
	}
	code, err := gojq.Compile(parsed, gojq.WithVariables(variables))
	if err != nil {
		return
	}
	result = &Query{
		logger:    t.logger,
		source:    source,
		variables: variables,
		code:      code,
	}
	t.cache[source] = result
	t.logger.Debug(
		"Compiled query",
		slog.String("source", source),
		slog.Any("variables", variables),
	)
	return
}
