/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package storage

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Scheme identifies the kind of storage that a location refers to.
type Scheme string

const (
	SchemeS3   Scheme = "s3"
	SchemeFile Scheme = "file"
)

// Location is the parsed form of the root URL of a dataset or of the output tables.
type Location struct {
	// Scheme is the kind of storage.
	Scheme Scheme

	// Bucket is the name of the bucket, only for object storage locations.
	Bucket string

	// Path is the prefix of the keys inside the bucket for object storage locations, and the
	// directory for file system locations.
	Path string
}

// ParseLocation parses a location URL. The supported forms are 's3://bucket/prefix',
// 's3a://bucket/prefix', 'file:///directory' and plain directory names.
func ParseLocation(text string) (result Location, err error) {
	if text == "" {
		err = fmt.Errorf("location is empty")
		return
	}
	if !strings.Contains(text, "://") {
		result = Location{
			Scheme: SchemeFile,
			Path:   filepath.Clean(text),
		}
		return
	}
	parsed, err := url.Parse(text)
	if err != nil {
		err = fmt.Errorf("failed to parse location '%s': %w", text, err)
		return
	}
	switch strings.ToLower(parsed.Scheme) {
	case "s3", "s3a", "s3n":
		if parsed.Host == "" {
			err = fmt.Errorf("location '%s' doesn't contain a bucket name", text)
			return
		}
		result = Location{
			Scheme: SchemeS3,
			Bucket: parsed.Host,
			Path:   strings.Trim(parsed.Path, "/"),
		}
	case "file":
		if parsed.Host != "" && parsed.Host != "localhost" {
			err = fmt.Errorf("location '%s' refers to a remote host", text)
			return
		}
		if parsed.Path == "" {
			err = fmt.Errorf("location '%s' doesn't contain a directory", text)
			return
		}
		result = Location{
			Scheme: SchemeFile,
			Path:   filepath.Clean(parsed.Path),
		}
	default:
		err = fmt.Errorf(
			"location '%s' has unsupported scheme '%s', supported schemes are 's3', "+
				"'s3a' and 'file'",
			text, parsed.Scheme,
		)
	}
	return
}

// String generates the URL of the location.
func (l Location) String() string {
	switch l.Scheme {
	case SchemeS3:
		if l.Path == "" {
			return fmt.Sprintf("s3://%s", l.Bucket)
		}
		return fmt.Sprintf("s3://%s/%s", l.Bucket, l.Path)
	default:
		if !filepath.IsAbs(l.Path) {
			return l.Path
		}
		return fmt.Sprintf("file://%s", filepath.ToSlash(l.Path))
	}
}

// SameBucket checks if two locations are stored in the same bucket, so that they can share a
// client.
func (l Location) SameBucket(other Location) bool {
	return l.Scheme == other.Scheme && l.Bucket == other.Bucket
}
