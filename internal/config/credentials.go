/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/afero"
	"gopkg.in/ini.v1"
)

const (
	CredentialsSection = "AWS"
	AccessKeyIDKey     = "AWS_ACCESS_KEY_ID"
	SecretAccessKeyKey = "AWS_SECRET_ACCESS_KEY" // nolint: gosec
)

// ErrNoCredentials is returned when the credentials file doesn't exist.
var ErrNoCredentials = errors.New("credentials file doesn't exist")

// Credentials is the key pair used to access object storage.
type Credentials struct {
	AccessKey string
	SecretKey string
}

// LoadCredentials reads the key pair from the 'AWS' section of the given INI file. If the file
// doesn't exist the returned error wraps ErrNoCredentials, so that callers that don't need
// object storage can ignore it.
func LoadCredentials(fsys afero.Fs, path string) (result Credentials, err error) {
	content, err := afero.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		err = fmt.Errorf("failed to load credentials from '%s': %w", path, ErrNoCredentials)
		return
	}
	if err != nil {
		err = fmt.Errorf("failed to load credentials from '%s': %w", path, err)
		return
	}
	file, err := ini.Load(content)
	if err != nil {
		err = fmt.Errorf("failed to parse credentials file '%s': %w", path, err)
		return
	}
	section, err := file.GetSection(CredentialsSection)
	if err != nil {
		err = fmt.Errorf(
			"credentials file '%s' doesn't contain the '%s' section",
			path, CredentialsSection,
		)
		return
	}
	for _, name := range []string{AccessKeyIDKey, SecretAccessKeyKey} {
		if !section.HasKey(name) || section.Key(name).String() == "" {
			err = fmt.Errorf(
				"credentials file '%s' doesn't contain the '%s' key in the '%s' section",
				path, name, CredentialsSection,
			)
			return
		}
	}
	result = Credentials{
		AccessKey: section.Key(AccessKeyIDKey).String(),
		SecretKey: section.Key(SecretAccessKeyKey).String(),
	}
	return
}
