/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	"errors"
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"github.com/openshift-kni/songplays-etl/internal/ledger"
)

// Database contains the connection details of the ledger database. It is populated only from the
// 'ETL_DB_*' environment variables.
type Database struct {
	Host     string `default:"localhost"`
	Port     string `default:"5432"`
	User     string `default:"etl"`
	Password string
	Name     string `default:"etl"`
	SSLMode  string `envconfig:"SSLMODE" default:"disable"`
}

// LoadFromEnv loads config values from the environment
func (d *Database) LoadFromEnv() error {
	err := envconfig.Process(EnvPrefix+"_DB", d)
	if err != nil {
		return fmt.Errorf("failed to process environment variables: %w", err)
	}
	return nil
}

// Validate checks the configuration attribute to ensure they are semantically correct
func (d *Database) Validate() error {
	if d.Host == "" {
		return errors.New("database host is required")
	}
	if d.Port == "" {
		return errors.New("database port is required")
	}
	if d.User == "" {
		return errors.New("database user is required")
	}
	if d.Name == "" {
		return errors.New("database name is required")
	}
	return nil
}

// PgConfig converts the settings into the form used by the ledger.
func (d *Database) PgConfig() ledger.PgConfig {
	return ledger.PgConfig{
		Host:     d.Host,
		Port:     d.Port,
		User:     d.User,
		Password: d.Password,
		Database: d.Name,
		SSLMode:  d.SSLMode,
	}
}
