/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
)

//go:generate mockgen -source=bucket.go -package=storage -destination=bucket_mock.go

// Object describes an object stored in a bucket.
type Object struct {
	// Key is the name of the object, relative to the root of the bucket. Keys always use the
	// slash as separator.
	Key string

	// Size is the size of the object in bytes.
	Size int64
}

// Bucket is the byte level interface to the object storage used for the input datasets and the
// output tables.
type Bucket interface {
	// List returns the objects whose keys start with the given prefix, sorted by key.
	List(ctx context.Context, prefix string) ([]Object, error)

	// Open returns a reader for the content of the object. The caller is responsible for closing
	// it.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Put creates or replaces the object with the given content.
	Put(ctx context.Context, key string, data []byte) error

	// Remove deletes the object. Removing an object that doesn't exist isn't an error.
	Remove(ctx context.Context, key string) error
}

// Error is the error returned when an operation on the object storage fails.
type Error struct {
	Op  string
	Key string
	Err error
}

// Error is the implementation of the error interface.
func (e *Error) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s of '%s' failed: %v", e.Op, e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Names of the operations reported in errors:
const (
	OpList   = "list"
	OpOpen   = "open"
	OpPut    = "put"
	OpRemove = "remove"
)

// Sub returns a bucket that adds the given prefix to all the keys, so that the objects under
// that prefix look like the root of a bucket.
func Sub(bucket Bucket, prefix string) Bucket {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return bucket
	}
	return &subBucket{
		parent: bucket,
		prefix: prefix + "/",
	}
}

type subBucket struct {
	parent Bucket
	prefix string
}

func (b *subBucket) List(ctx context.Context, prefix string) (result []Object, err error) {
	objects, err := b.parent.List(ctx, b.prefix+prefix)
	if err != nil {
		return
	}
	result = make([]Object, 0, len(objects))
	for _, object := range objects {
		key, ok := strings.CutPrefix(object.Key, b.prefix)
		if !ok {
			continue
		}
		result = append(result, Object{
			Key:  key,
			Size: object.Size,
		})
	}
	return
}

func (b *subBucket) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return b.parent.Open(ctx, b.prefix+key)
}

func (b *subBucket) Put(ctx context.Context, key string, data []byte) error {
	return b.parent.Put(ctx, b.prefix+key, data)
}

func (b *subBucket) Remove(ctx context.Context, key string) error {
	return b.parent.Remove(ctx, b.prefix+key)
}

// Join joins key segments with slashes, ignoring empty segments.
func Join(segments ...string) string {
	return strings.TrimPrefix(path.Join(segments...), "/")
}
