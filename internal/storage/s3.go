/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// DefaultEndpoint is the endpoint of the object storage used when no other is configured.
const DefaultEndpoint = "s3.amazonaws.com"

// S3Builder contains the data and logic needed to create a bucket backed by an S3 compatible
// object storage service. Don't create instances of this directly, use the NewS3 function instead.
type S3Builder struct {
	logger    *slog.Logger
	endpoint  string
	region    string
	bucket    string
	accessKey string
	secretKey string
	insecure  bool
}

// S3 is a bucket backed by an S3 compatible object storage service.
type S3 struct {
	logger *slog.Logger
	client *minio.Client
	bucket string
}

// NewS3 creates a builder that can then be used to configure and create an S3 bucket.
func NewS3() *S3Builder {
	return &S3Builder{
		endpoint: DefaultEndpoint,
	}
}

// SetLogger sets the logger that the bucket will use to write to the log. This is mandatory.
func (b *S3Builder) SetLogger(value *slog.Logger) *S3Builder {
	b.logger = value
	return b
}

// SetEndpoint sets the host name, and optionally the port, of the object storage service. This
// is optional, the default is to use AWS.
func (b *S3Builder) SetEndpoint(value string) *S3Builder {
	if value != "" {
		b.endpoint = value
	}
	return b
}

// SetRegion sets the region. This is optional.
func (b *S3Builder) SetRegion(value string) *S3Builder {
	b.region = value
	return b
}

// SetBucket sets the name of the bucket. This is mandatory.
func (b *S3Builder) SetBucket(value string) *S3Builder {
	b.bucket = value
	return b
}

// SetCredentials sets the access key identifier and the secret access key used to authenticate.
// These are mandatory.
func (b *S3Builder) SetCredentials(accessKey, secretKey string) *S3Builder {
	b.accessKey = accessKey
	b.secretKey = secretKey
	return b
}

// SetInsecure sets the flag that indicates that the connection to the service should use plain
// HTTP instead of TLS. This is intended for tests with local servers.
func (b *S3Builder) SetInsecure(value bool) *S3Builder {
	b.insecure = value
	return b
}

// Build uses the data stored in the builder to create a new S3 bucket.
func (b *S3Builder) Build() (result *S3, err error) {
	if b.logger == nil {
		err = errors.New("logger is mandatory")
		return
	}
	if b.bucket == "" {
		err = errors.New("bucket is mandatory")
		return
	}
	if b.accessKey == "" || b.secretKey == "" {
		err = errors.New("credentials are mandatory")
		return
	}
	client, err := minio.New(b.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(b.accessKey, b.secretKey, ""),
		Secure: !b.insecure,
		Region: b.region,
	})
	if err != nil {
		return
	}
	b.logger.Debug(
		"Created object storage client",
		slog.String("endpoint", b.endpoint),
		slog.String("region", b.region),
		slog.String("bucket", b.bucket),
		slog.String("access_key", b.accessKey),
		slog.String("!secret_key", b.secretKey),
	)
	result = &S3{
		logger: b.logger,
		client: client,
		bucket: b.bucket,
	}
	return
}

// List is part of the implementation of the Bucket interface.
func (s *S3) List(ctx context.Context, prefix string) (result []Object, err error) {
	options := minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}
	var objects []Object
	for info := range s.client.ListObjects(ctx, s.bucket, options) {
		if info.Err != nil {
			err = &Error{
				Op:  OpList,
				Key: prefix,
				Err: info.Err,
			}
			return
		}
		objects = append(objects, Object{
			Key:  info.Key,
			Size: info.Size,
		})
	}
	sort.Slice(objects, func(i, j int) bool {
		return objects[i].Key < objects[j].Key
	})
	result = objects
	return
}

// Open is part of the implementation of the Bucket interface.
func (s *S3) Open(ctx context.Context, key string) (result io.ReadCloser, err error) {
	object, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err == nil {
		_, err = object.Stat()
		if err != nil {
			_ = object.Close()
		}
	}
	if err != nil {
		err = &Error{
			Op:  OpOpen,
			Key: key,
			Err: err,
		}
		return
	}
	result = object
	return
}

// Put is part of the implementation of the Bucket interface.
func (s *S3) Put(ctx context.Context, key string, data []byte) error {
	info, err := s.client.PutObject(
		ctx, s.bucket, key,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{
			ContentType: "application/octet-stream",
		},
	)
	if err != nil {
		return &Error{
			Op:  OpPut,
			Key: key,
			Err: err,
		}
	}
	s.logger.DebugContext(
		ctx,
		"Uploaded object",
		slog.String("bucket", s.bucket),
		slog.String("key", key),
		slog.Int64("size", info.Size),
		slog.String("etag", info.ETag),
	)
	return nil
}

// Error code returned by object storage when an object doesn't exist.
const noSuchKeyCode = "NoSuchKey"

// Remove is part of the implementation of the Bucket interface.
func (s *S3) Remove(ctx context.Context, key string) error {
	err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != noSuchKeyCode {
		return &Error{
			Op:  OpRemove,
			Key: key,
			Err: err,
		}
	}
	return nil
}
