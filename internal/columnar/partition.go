/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package columnar

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/openshift-kni/songplays-etl/internal/data"
)

// DefaultPartition is the directory name value used for null and empty partition values.
const DefaultPartition = "__HIVE_DEFAULT_PARTITION__"

// PartitionValue converts a column value to the text used in a partition directory name. The
// result isn't escaped.
func PartitionValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case int32:
		return strconv.FormatInt(int64(typed), 10)
	case int64:
		return strconv.FormatInt(typed, 10)
	default:
		text, _ := data.ToString(value)
		result, _ := text.(string)
		return result
	}
}

// PartitionPath calculates the relative directory of a row for the given partition columns, for
// example 'year=2018/month=11'. The result is empty when there are no partition columns.
func PartitionPath(row data.Row, columns []string) string {
	segments := make([]string, len(columns))
	for i, column := range columns {
		segments[i] = PartitionSegment(column, row[column])
	}
	return strings.Join(segments, "/")
}

// PartitionSegment calculates the directory name for one partition column, escaping the name and
// the value.
func PartitionSegment(column string, value any) string {
	text := PartitionValue(value)
	if text == "" {
		text = DefaultPartition
	} else {
		text = EscapePathName(text)
	}
	return EscapePathName(column) + "=" + text
}

// EscapePathName replaces the characters that aren't allowed in partition directory names with a
// percent sign followed by the two hexadecimal digits of the character.
func EscapePathName(text string) string {
	var buffer strings.Builder
	for _, char := range text {
		if needsEscape(char) {
			fmt.Fprintf(&buffer, "%%%02X", char)
		} else {
			buffer.WriteRune(char)
		}
	}
	return buffer.String()
}

// UnescapePathName reverses the escaping done by EscapePathName.
func UnescapePathName(text string) string {
	var buffer strings.Builder
	for i := 0; i < len(text); i++ {
		if text[i] == '%' && i+2 < len(text) {
			code, err := strconv.ParseUint(text[i+1:i+3], 16, 8)
			if err == nil {
				buffer.WriteByte(byte(code))
				i += 2
				continue
			}
		}
		buffer.WriteByte(text[i])
	}
	return buffer.String()
}

func needsEscape(char rune) bool {
	if char < 0x20 || char == 0x7f {
		return true
	}
	return strings.ContainsRune("\"#%'*/:=?\\{[]^", char)
}
