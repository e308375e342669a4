/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package data

import (
	"context"

	"k8s.io/utils/ptr"
)

// Column describes a column of a projection: the name of the column in the source row and the
// name that it will have in the result.
type Column struct {
	Name   string
	Source string
}

// Col creates a column that keeps the name it has in the source row.
func Col(source string) Column {
	return Column{
		Name:   source,
		Source: source,
	}
}

// As returns a copy of the column renamed to the given name.
func (c Column) As(name string) Column {
	c.Name = name
	return c
}

// Project creates a stream that contains only the given columns of the rows of the source stream,
// renamed as requested. Columns that don't exist in the source row are null in the result.
func Project(source Stream, columns ...Column) Stream {
	return Map(source, func(_ context.Context, row Row) (Row, error) {
		return ProjectRow(row, columns...), nil
	})
}

// ProjectRow applies the projection to a single row.
func ProjectRow(row Row, columns ...Column) Row {
	result := make(Row, len(columns))
	for _, column := range columns {
		result[column.Name] = row[column.Source]
	}
	return result
}

// GetString returns the value of the column converted to a string, or nil if it is null or can't
// be converted.
func GetString(row Row, name string) *string {
	value, _ := ToString(row[name])
	text, ok := value.(string)
	if !ok {
		return nil
	}
	return ptr.To(text)
}

// GetInt32 returns the value of the column converted to a 32 bits integer, or nil if it is null
// or can't be converted.
func GetInt32(row Row, name string) *int32 {
	value, _ := ToInteger(row[name])
	number, ok := value.(int32)
	if !ok {
		return nil
	}
	return ptr.To(number)
}

// GetFloat64 returns the value of the column converted to a 64 bits floating point number, or nil
// if it is null or can't be converted.
func GetFloat64(row Row, name string) *float64 {
	value, _ := ToDouble(row[name])
	number, ok := value.(float64)
	if !ok {
		return nil
	}
	return ptr.To(number)
}
