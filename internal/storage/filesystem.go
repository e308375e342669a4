/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// FileSystemBuilder contains the data and logic needed to create a bucket backed by a directory
// of a file system. Don't create instances of this directly, use the NewFileSystem function
// instead.
type FileSystemBuilder struct {
	logger *slog.Logger
	fs     afero.Fs
	root   string
}

// FileSystem is a bucket that stores objects as files inside a directory. Keys are converted to
// relative paths of that directory.
type FileSystem struct {
	logger *slog.Logger
	fs     afero.Fs
	root   string
}

// NewFileSystem creates a builder that can then be used to configure and create a file system
// bucket.
func NewFileSystem() *FileSystemBuilder {
	return &FileSystemBuilder{}
}

// SetLogger sets the logger that the bucket will use to write to the log. This is mandatory.
func (b *FileSystemBuilder) SetLogger(value *slog.Logger) *FileSystemBuilder {
	b.logger = value
	return b
}

// SetFs sets the file system. This is optional, by default the file system of the operating system
// is used. Tests use an in memory file system.
func (b *FileSystemBuilder) SetFs(value afero.Fs) *FileSystemBuilder {
	b.fs = value
	return b
}

// SetRoot sets the directory that contains the objects. This is mandatory.
func (b *FileSystemBuilder) SetRoot(value string) *FileSystemBuilder {
	b.root = value
	return b
}

// Build uses the data stored in the builder to create a new file system bucket.
func (b *FileSystemBuilder) Build() (result *FileSystem, err error) {
	if b.logger == nil {
		err = errors.New("logger is mandatory")
		return
	}
	if b.root == "" {
		err = errors.New("root directory is mandatory")
		return
	}
	fs := b.fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	result = &FileSystem{
		logger: b.logger,
		fs:     fs,
		root:   filepath.Clean(b.root),
	}
	return
}

// List is part of the implementation of the Bucket interface.
func (s *FileSystem) List(ctx context.Context, prefix string) (result []Object, err error) {
	_, err = s.fs.Stat(s.root)
	if err != nil {
		err = &Error{
			Op:  OpList,
			Key: prefix,
			Err: err,
		}
		return
	}
	start := s.root
	dir, _ := splitPrefix(prefix)
	if dir != "" {
		start = s.path(dir)
	}
	var objects []Object
	err = afero.Walk(s.fs, start, func(file string, info fs.FileInfo, err error) error {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, file)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		objects = append(objects, Object{
			Key:  key,
			Size: info.Size(),
		})
		return nil
	})
	if err != nil {
		err = &Error{
			Op:  OpList,
			Key: prefix,
			Err: err,
		}
		return
	}
	sort.Slice(objects, func(i, j int) bool {
		return objects[i].Key < objects[j].Key
	})
	result = objects
	return
}

// Open is part of the implementation of the Bucket interface.
func (s *FileSystem) Open(ctx context.Context, key string) (result io.ReadCloser, err error) {
	file, err := s.fs.Open(s.path(key))
	if err != nil {
		err = &Error{
			Op:  OpOpen,
			Key: key,
			Err: err,
		}
		return
	}
	result = file
	return
}

// Put is part of the implementation of the Bucket interface.
func (s *FileSystem) Put(ctx context.Context, key string, data []byte) error {
	file := s.path(key)
	err := s.fs.MkdirAll(filepath.Dir(file), 0o755)
	if err == nil {
		err = afero.WriteFile(s.fs, file, data, 0o644)
	}
	if err != nil {
		return &Error{
			Op:  OpPut,
			Key: key,
			Err: err,
		}
	}
	s.logger.DebugContext(
		ctx,
		"Wrote file",
		slog.String("file", file),
		slog.Int("size", len(data)),
	)
	return nil
}

// Remove is part of the implementation of the Bucket interface.
func (s *FileSystem) Remove(ctx context.Context, key string) error {
	err := s.fs.Remove(s.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &Error{
			Op:  OpRemove,
			Key: key,
			Err: err,
		}
	}
	return nil
}

func (s *FileSystem) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

// splitPrefix splits a key prefix into the directory part, without the trailing slash, and the
// rest.
func splitPrefix(prefix string) (dir, rest string) {
	slash := strings.LastIndex(prefix, "/")
	if slash == -1 {
		return "", prefix
	}
	return prefix[:slash], prefix[slash+1:]
}
