/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package jq

import (
	"slices"
	"strings"
)

// Variable is a named value passed to a query. Names include the dollar sign, for example
// '$page'.
type Variable struct {
	name  string
	value any
}

// Name returns the name of the variable, including the dollar sign.
func (v Variable) Name() string {
	return v.name
}

// String creates a variable with a text value. The dollar sign is added to the name if it
// doesn't have it.
func String(name, value string) Variable {
	if !strings.HasPrefix(name, "$") {
		name = "$" + name
	}
	return Variable{
		name:  name,
		value: value,
	}
}

// Strings creates text variables from a map of names and values, sorted by name.
func Strings(values map[string]string) []Variable {
	result := make([]Variable, 0, len(values))
	for name, value := range values {
		result = append(result, String(name, value))
	}
	slices.SortFunc(result, func(a, b Variable) int {
		return strings.Compare(a.name, b.name)
	})
	return result
}

// Names returns the names of the variables.
func Names(variables []Variable) []string {
	result := make([]string, len(variables))
	for i, variable := range variables {
		result[i] = variable.name
	}
	return result
}

func splitVariables(variables []Variable) (names []string, values []any) {
	sorted := slices.SortedFunc(slices.Values(variables), func(a, b Variable) int {
		return strings.Compare(a.name, b.name)
	})
	names = make([]string, len(sorted))
	values = make([]any, len(sorted))
	for i, variable := range sorted {
		names[i] = variable.name
		values[i] = variable.value
	}
	return
}
