/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Glob returns the keys of the objects of the bucket that match the given pattern, sorted. The
// pattern uses the usual shell syntax, where '*' doesn't match the slash. Only the objects under
// the literal prefix of the pattern are listed.
func Glob(ctx context.Context, bucket Bucket, pattern string) (result []string, err error) {
	if !doublestar.ValidatePattern(pattern) {
		err = fmt.Errorf("pattern '%s' isn't valid", pattern)
		return
	}
	objects, err := bucket.List(ctx, literalPrefix(pattern))
	if err != nil {
		return
	}
	for _, object := range objects {
		var matched bool
		matched, err = doublestar.Match(pattern, object.Key)
		if err != nil {
			return
		}
		if matched {
			result = append(result, object.Key)
		}
	}
	return
}

// literalPrefix returns the directory part of the pattern that doesn't contain any special
// character, including the trailing slash.
func literalPrefix(pattern string) string {
	special := strings.IndexAny(pattern, `*?[{\`)
	if special == -1 {
		return pattern
	}
	slash := strings.LastIndex(pattern[:special], "/")
	if slash == -1 {
		return ""
	}
	return pattern[:slash+1]
}
