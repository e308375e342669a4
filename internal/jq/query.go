/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package jq

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/itchyny/gojq"
	jsoniter "github.com/json-iterator/go"
)

// Query is a compiled JQ query. Don't create instances of this directly, use the Compile method of
// the tool instead.
type Query struct {
	logger    *slog.Logger
	source    string
	variables []string
	code      *gojq.Code
}

// Source returns the text of the query.
func (q *Query) Source() string {
	return q.source
}

// Matches evaluates the query and checks if the first result is true. A query that doesn't
// produce any result doesn't match.
func (q *Query) Matches(input any, variables ...Variable) (bool, error) {
	names, values := splitVariables(variables)
	err := q.check(names)
	if err != nil {
		return false, err
	}
	return q.matches(input, values)
}

func (q *Query) check(names []string) error {
	if len(names) != len(q.variables) {
		return fmt.Errorf(
			"query was compiled with %d variables but used with %d",
			len(q.variables), len(names),
		)
	}
	for i, name := range names {
		if name != q.variables[i] {
			return fmt.Errorf("query doesn't have a variable named '%s'", name)
		}
	}
	return nil
}

func (q *Query) matches(input any, values []any) (bool, error) {
	results, err := q.run(input, values, 1)
	if err != nil {
		return false, err
	}
	if len(results) == 0 {
		return false, nil
	}
	switch result := results[0].(type) {
	case nil:
		return false, nil
	case bool:
		return result, nil
	default:
		return true, nil
	}
}

// run runs the query and collects the results. When limit is greater than zero the iteration
// stops after that number of results.
func (q *Query) run(input any, values []any, limit int) (results []any, err error) {
	input, err = normalize(input)
	if err != nil {
		return
	}
	for i, value := range values {
		values[i], err = normalize(value)
		if err != nil {
			return
		}
	}
	iter := q.code.Run(input, values...)
	for limit <= 0 || len(results) < limit {
		result, ok := iter.Next()
		if !ok {
			break
		}
		if failure, ok := result.(error); ok {
			err = fmt.Errorf("failed to evaluate query '%s': %w", q.source, failure)
			results = nil
			return
		}
		results = append(results, result)
	}
	return
}

// normalize converts the input into the types that the JQ engine supports. Maps, slices and
// values of basic types are converted directly, anything else is converted serializing it to
// JSON and parsing the result.
func normalize(input any) (result any, err error) {
	switch typed := input.(type) {
	case nil, bool, string, int, float64:
		result = typed
	case int32:
		result = int(typed)
	case int64:
		result = int(typed)
	case float32:
		result = float64(typed)
	case json.Number:
		result, err = normalizeNumber(typed)
	case map[string]any:
		object := make(map[string]any, len(typed))
		for key, value := range typed {
			object[key], err = normalize(value)
			if err != nil {
				return
			}
		}
		result = object
	case []any:
		array := make([]any, len(typed))
		for i, value := range typed {
			array[i], err = normalize(value)
			if err != nil {
				return
			}
		}
		result = array
	default:
		var data []byte
		data, err = jsoniter.Marshal(typed)
		if err != nil {
			err = fmt.Errorf("failed to marshal query input: %w", err)
			return
		}
		err = jsoniter.Unmarshal(data, &result)
		if err != nil {
			err = fmt.Errorf("failed to unmarshal query input: %w", err)
		}
	}
	return
}

func normalizeNumber(number json.Number) (result any, err error) {
	integer, err := number.Int64()
	if err == nil {
		result = int(integer)
		return
	}
	result, err = number.Float64()
	return
}
