/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package testing

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/afero"
	"github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/reader"

	. "github.com/onsi/gomega"

	"github.com/openshift-kni/songplays-etl/internal/storage"
)

// MakeMemoryBucket creates a bucket backed by an in memory file system.
func MakeMemoryBucket(logger *slog.Logger) storage.Bucket {
	memory := afero.NewMemMapFs()
	err := memory.MkdirAll("/bucket", 0o755)
	ExpectWithOffset(1, err).ToNot(HaveOccurred())
	bucket, err := storage.NewFileSystem().
		SetLogger(logger).
		SetFs(memory).
		SetRoot("/bucket").
		Build()
	ExpectWithOffset(1, err).ToNot(HaveOccurred())
	return bucket
}

// PutLines writes an object containing the given lines, separated by new line characters.
func PutLines(bucket storage.Bucket, key string, lines ...string) {
	content := strings.Join(lines, "\n") + "\n"
	err := bucket.Put(context.Background(), key, []byte(content))
	ExpectWithOffset(1, err).ToNot(HaveOccurred())
}

// Keys returns the keys of the objects of the bucket that start with the given prefix.
func Keys(bucket storage.Bucket, prefix string) []string {
	objects, err := bucket.List(context.Background(), prefix)
	ExpectWithOffset(1, err).ToNot(HaveOccurred())
	keys := make([]string, len(objects))
	for i, object := range objects {
		keys[i] = object.Key
	}
	return keys
}

// ReadParquet reads all the rows of a Parquet file stored in the bucket.
func ReadParquet[T any](bucket storage.Bucket, key string) []T {
	object, err := bucket.Open(context.Background(), key)
	ExpectWithOffset(1, err).ToNot(HaveOccurred())
	defer object.Close()
	content, err := io.ReadAll(object)
	ExpectWithOffset(1, err).ToNot(HaveOccurred())
	file := buffer.NewBufferFileFromBytes(content)
	pr, err := reader.NewParquetReader(file, new(T), 1)
	ExpectWithOffset(1, err).ToNot(HaveOccurred())
	defer pr.ReadStop()
	rows := make([]T, pr.GetNumRows())
	err = pr.Read(&rows)
	ExpectWithOffset(1, err).ToNot(HaveOccurred())
	return rows
}
