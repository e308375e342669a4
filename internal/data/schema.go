/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package data

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// Type is the type of a column declared in a schema.
type Type int

const (
	String Type = iota
	Integer
	Double
)

// String returns the name of the type.
func (t Type) String() string {
	switch t {
	case String:
		return "string"
	case Integer:
		return "integer"
	case Double:
		return "double"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// Field is a named and typed column of a schema. All fields are nullable.
type Field struct {
	Name string
	Type Type
}

// Schema is the ordered list of fields that the rows read from a dataset will have.
type Schema []Field

// Names returns the names of the fields, in the order they were declared.
func (s Schema) Names() []string {
	result := make([]string, len(s))
	for i, field := range s {
		result[i] = field.Name
	}
	return result
}

// Apply builds a row that contains exactly the fields of the schema. Values are taken from the
// given raw object and converted to the declared type. Missing values and values that can't be
// converted are set to nil. The returned count is the number of values that were present but
// couldn't be converted.
func (s Schema) Apply(raw map[string]any) (row Row, coerced int) {
	row = make(Row, len(s))
	for _, field := range s {
		value, ok := convert(field.Type, raw[field.Name])
		if !ok {
			coerced++
		}
		row[field.Name] = value
	}
	return
}

// Empty returns a row where all the fields of the schema are null.
func (s Schema) Empty() Row {
	row := make(Row, len(s))
	for _, field := range s {
		row[field.Name] = nil
	}
	return row
}

func convert(t Type, value any) (result any, ok bool) {
	switch t {
	case String:
		return ToString(value)
	case Integer:
		return ToInteger(value)
	case Double:
		return ToDouble(value)
	default:
		return nil, false
	}
}

// ToString converts a decoded JSON value to a string. Numbers keep their literal text, so that
// the epoch millisecond timestamps of the logs are preserved exactly. Objects and arrays are
// converted to their JSON text. The returned flag is false only when the value was present and
// couldn't be converted.
func ToString(value any) (result any, ok bool) {
	switch typed := value.(type) {
	case nil:
		return nil, true
	case string:
		return typed, true
	case json.Number:
		return typed.String(), true
	case bool:
		return strconv.FormatBool(typed), true
	case int:
		return strconv.Itoa(typed), true
	case int32:
		return strconv.FormatInt(int64(typed), 10), true
	case int64:
		return strconv.FormatInt(typed, 10), true
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64), true
	case map[string]any, []any:
		text, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalToString(typed)
		if err != nil {
			return nil, false
		}
		return text, true
	default:
		return nil, false
	}
}

// ToInteger converts a decoded JSON value to a 32 bits integer. Only integral numbers that fit
// are accepted; strings, booleans and fractional numbers result in nil.
func ToInteger(value any) (result any, ok bool) {
	switch typed := value.(type) {
	case nil:
		return nil, true
	case json.Number:
		text := typed.String()
		if strings.ContainsAny(text, ".eE") {
			return nil, false
		}
		parsed, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			return nil, false
		}
		return int32(parsed), true
	case int32:
		return typed, true
	case int:
		if typed < math.MinInt32 || typed > math.MaxInt32 {
			return nil, false
		}
		return int32(typed), true
	case int64:
		if typed < math.MinInt32 || typed > math.MaxInt32 {
			return nil, false
		}
		return int32(typed), true
	default:
		return nil, false
	}
}

// ToDouble converts a decoded JSON value to a 64 bits floating point number. Strings and
// booleans result in nil.
func ToDouble(value any) (result any, ok bool) {
	switch typed := value.(type) {
	case nil:
		return nil, true
	case json.Number:
		parsed, err := typed.Float64()
		if err != nil {
			return nil, false
		}
		return parsed, true
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case int64:
		return float64(typed), true
	default:
		return nil, false
	}
}
