/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package columnar

import (
	"fmt"
	"slices"
	"strings"

	"github.com/xitongsys/parquet-go/parquet"

	"github.com/openshift-kni/songplays-etl/internal/logging"
)

// Codec is the compression codec used for the Parquet files.
type Codec string

const (
	CodecSnappy Codec = "snappy"
	CodecGzip   Codec = "gzip"
	CodecZstd   Codec = "zstd"
	CodecNone   Codec = "none"
)

// Codecs returns the supported compression codecs.
func Codecs() []Codec {
	return []Codec{CodecSnappy, CodecGzip, CodecZstd, CodecNone}
}

// ParseCodec parses the name of a compression codec.
func ParseCodec(text string) (result Codec, err error) {
	result = Codec(strings.ToLower(strings.TrimSpace(text)))
	if result == "uncompressed" {
		result = CodecNone
	}
	if !slices.Contains(Codecs(), result) {
		err = fmt.Errorf(
			"compression codec '%s' isn't supported, valid values are %s",
			text, logging.Any(Codecs()),
		)
	}
	return
}

// Extension returns the text added to the name of the files before the '.parquet' suffix, for
// example '.snappy'. It is empty for uncompressed files.
func (c Codec) Extension() string {
	switch c {
	case CodecNone:
		return ""
	case CodecGzip:
		return ".gz"
	default:
		return "." + string(c)
	}
}

func (c Codec) parquet() parquet.CompressionCodec {
	switch c {
	case CodecGzip:
		return parquet.CompressionCodec_GZIP
	case CodecZstd:
		return parquet.CompressionCodec_ZSTD
	case CodecNone:
		return parquet.CompressionCodec_UNCOMPRESSED
	default:
		return parquet.CompressionCodec_SNAPPY
	}
}

// Mode is the behaviour of the writer when the directory of a table already contains objects.
type Mode string

const (
	// ModeError fails the write.
	ModeError Mode = "error"

	// ModeOverwrite removes the existing objects before writing.
	ModeOverwrite Mode = "overwrite"

	// ModeAppend adds the new files next to the existing ones.
	ModeAppend Mode = "append"

	// ModeIgnore skips the table, leaving the existing objects untouched.
	ModeIgnore Mode = "ignore"
)

// Modes returns the supported save modes.
func Modes() []Mode {
	return []Mode{ModeError, ModeOverwrite, ModeAppend, ModeIgnore}
}

// ParseMode parses the name of a save mode.
func ParseMode(text string) (result Mode, err error) {
	result = Mode(strings.ToLower(strings.TrimSpace(text)))
	if result == "errorifexists" {
		result = ModeError
	}
	if !slices.Contains(Modes(), result) {
		err = fmt.Errorf(
			"save mode '%s' isn't supported, valid values are %s",
			text, logging.Any(Modes()),
		)
	}
	return
}
