/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package logging

import (
	"fmt"
	"strings"
)

// All generates a human friendly representation of a list of items, like 'a', 'b' and 'c'.
func All[T any](items []T) string {
	return join(items, "and")
}

// Any generates a human friendly representation of a list of alternatives, like 'a', 'b' or 'c'.
func Any[T any](items []T) string {
	return join(items, "or")
}

func join[T any](items []T, conjunction string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = fmt.Sprintf("'%v'", item)
	}
	switch len(quoted) {
	case 0:
		return ""
	case 1:
		return quoted[0]
	default:
		head := strings.Join(quoted[:len(quoted)-1], ", ")
		return fmt.Sprintf("%s %s %s", head, conjunction, quoted[len(quoted)-1])
	}
}
