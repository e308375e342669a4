/*
Copyright (c) 2023 Red Hat, Inc.

Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in
compliance with the License. You may obtain a copy of the License at

  http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software distributed under the License is
distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
implied. See the License for the specific language governing permissions and limitations under the
License.
*/

package data

import (
	"github.com/openshift-kni/songplays-etl/internal/streaming"
)

// Row represents a record containing a set of named columns, each with a value. A nil value
// represents a null column.
type Row = map[string]any

// Stream is a stream of rows.
type Stream = streaming.Stream[Row]

// StreamFunc creates a stream using the given function.
type StreamFunc = streaming.StreamFunc[Row]

// ErrEnd is the error returned by a stream when there are no more rows.
var ErrEnd = streaming.ErrEnd

// Null is an empty stream of rows.
var Null = streaming.Null[Row]

// Pour creates a stream that contains the rows in the given slice.
var Pour = streaming.Pour[Row]

// Select creates a new stream that only contains the rows of the source stream that return true
// for the given selector. Note that the actual calls to the select will not happen when this
// function is called, they will happen only when the stream is eventually consumed.
var Select = streaming.Select[Row]

// Map creates a stream that contains the result of transforming the rows of the given stream
// with a mapper. Note that the actual calls to the mapper will not happen when this function is
// called, they will happen only when the stream is eventually consumed.
var Map = streaming.Map[Row, Row]

// Collect collects all the rows in the given stream and returns an slice containing them.
var Collect = streaming.Collect[Row]

// Count consumes the stream and returns the number of rows.
var Count = streaming.Count[Row]
