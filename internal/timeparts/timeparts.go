/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

// Package timeparts decomposes the epoch millisecond timestamps of the listening logs into the
// calendar parts used by the time and songplays tables. All the calculations use UTC.
package timeparts

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Parts contains the values derived from one epoch millisecond timestamp.
type Parts struct {
	// Timestamp is the decimal text of the number of whole seconds since the epoch.
	Timestamp string

	// Datetime is the calendar date and time, for example '2018-11-12 00:36:57.796000'.
	Datetime string

	Year    int32
	Month   int32
	Day     int32
	Hour    int32
	Week    int32
	Weekday string
}

// Error is returned when a timestamp can't be decomposed.
type Error struct {
	Value any
	Err   error
}

// Error is the implementation of the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("failed to derive time parts from timestamp '%v': %v", e.Value, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// FromEpochMillis derives the time parts from a number of milliseconds since the epoch.
func FromEpochMillis(ms int64) Parts {
	seconds := floorDiv(ms, 1000)
	millis := ms - seconds*1000
	moment := time.Unix(seconds, millis*int64(time.Millisecond)).UTC()
	_, week := moment.ISOWeek()
	return Parts{
		Timestamp: strconv.FormatInt(seconds, 10),
		Datetime:  formatDatetime(moment),
		Year:      int32(moment.Year()),
		Month:     int32(moment.Month()),
		Day:       int32(moment.Day()),
		Hour:      int32(moment.Hour()),
		Week:      int32(week),
		Weekday:   isoWeekday(moment.Weekday()),
	}
}

// FromText derives the time parts from the decimal text of a number of milliseconds since the
// epoch, which is how the listening logs carry the 'ts' field once read as a string.
func FromText(text string) (result Parts, err error) {
	text = strings.TrimSpace(text)
	ms, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		err = &Error{
			Value: text,
			Err:   err,
		}
		return
	}
	result = FromEpochMillis(ms)
	return
}

// FromValue derives the time parts from a column value. Null values and values that aren't base
// ten integers result in an error.
func FromValue(value any) (result Parts, err error) {
	switch typed := value.(type) {
	case nil:
		err = &Error{
			Value: nil,
			Err:   fmt.Errorf("timestamp is null"),
		}
	case string:
		result, err = FromText(typed)
	case fmt.Stringer:
		result, err = FromText(typed.String())
	case int64:
		result = FromEpochMillis(typed)
	case int:
		result = FromEpochMillis(int64(typed))
	default:
		err = &Error{
			Value: value,
			Err:   fmt.Errorf("unsupported type %T", value),
		}
	}
	return
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// formatDatetime formats the time with a microseconds fraction, omitting it when it is zero.
func formatDatetime(moment time.Time) string {
	if moment.Nanosecond() == 0 {
		return moment.Format(time.DateTime)
	}
	return moment.Format("2006-01-02 15:04:05.000000")
}

// isoWeekday returns the ISO day of the week as a digit, from '1' for Monday to '7' for Sunday.
func isoWeekday(day time.Weekday) string {
	if day == time.Sunday {
		return "7"
	}
	return strconv.Itoa(int(day))
}
