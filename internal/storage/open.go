/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package storage

import (
	"fmt"
	"log/slog"

	"github.com/spf13/afero"
)

// Settings contains the connection details needed to open the buckets of locations.
type Settings struct {
	// Endpoint, Region and Insecure are used only for object storage locations.
	Endpoint string
	Region   string
	Insecure bool

	// AccessKey and SecretKey are mandatory for object storage locations.
	AccessKey string
	SecretKey string

	// Fs is the file system used for file locations. The default is the file system of the
	// operating system.
	Fs afero.Fs
}

// Open creates the bucket for the given location. The keys of the returned bucket are relative to
// the path of the location.
func Open(logger *slog.Logger, location Location, settings Settings) (result Bucket, err error) {
	switch location.Scheme {
	case SchemeS3:
		var bucket *S3
		bucket, err = NewS3().
			SetLogger(logger).
			SetEndpoint(settings.Endpoint).
			SetRegion(settings.Region).
			SetInsecure(settings.Insecure).
			SetBucket(location.Bucket).
			SetCredentials(settings.AccessKey, settings.SecretKey).
			Build()
		if err != nil {
			err = fmt.Errorf("failed to create object storage client for '%s': %w", location, err)
			return
		}
		result = Sub(bucket, location.Path)
	case SchemeFile:
		result, err = NewFileSystem().
			SetLogger(logger).
			SetFs(settings.Fs).
			SetRoot(location.Path).
			Build()
	default:
		err = fmt.Errorf("unsupported storage scheme '%s'", location.Scheme)
	}
	return
}
