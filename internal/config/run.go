/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/pflag"

	"github.com/openshift-kni/songplays-etl/internal/columnar"
	"github.com/openshift-kni/songplays-etl/internal/logging"
	"github.com/openshift-kni/songplays-etl/internal/storage"
)

// EnvPrefix is the prefix of the environment variables that override the command line flags.
const EnvPrefix = "ETL"

const (
	InputFlagName          = "input"
	OutputFlagName         = "output"
	ModeFlagName           = "mode"
	CompressionFlagName    = "compression"
	ParallelismFlagName    = "parallelism"
	LogFilterFlagName      = "log-filter"
	LogFilterVarFlagName   = "log-filter-var"
	CredentialsFlagName    = "credentials"
	EndpointFlagName       = "endpoint"
	RegionFlagName         = "region"
	InsecureFlagName       = "insecure"
	LedgerFlagName         = "ledger"
	PushgatewayURLFlagName = "pushgateway-url"
	ManifestFlagName       = "manifest"
)

const (
	DefaultInput       = "s3a://udacity-dend/"
	DefaultOutput      = "output"
	DefaultCredentials = "dl.cfg"
	DefaultLogFilter   = `.page == "NextSong"`
	DefaultParallelism = 4
)

// Run contains the configuration of the ETL run.
type Run struct {
	// Input is the root of the song_data and log_data datasets.
	Input string

	// Output is the root where the tables are written.
	Output string

	// Mode is the save mode applied to each table: error, overwrite, append or ignore.
	Mode string

	// Compression is the Parquet compression codec.
	Compression string

	// Parallelism is the maximum number of partition files written at the same time.
	Parallelism int

	// LogFilter is the jq expression that selects the log events used for the users, time and
	// songplays tables.
	LogFilter string `split_words:"true"`

	// LogFilterVars are the values of the variables used in the log filter, for example
	// 'level=paid' for a filter containing '$level'.
	LogFilterVars map[string]string `split_words:"true"`

	// Credentials is the path of the INI file containing the object storage keys.
	Credentials string

	Endpoint string
	Region   string
	Insecure bool

	// Ledger enables recording the run in the ledger database.
	Ledger bool

	// PushgatewayURL is the URL of the Prometheus Pushgateway. Metrics aren't pushed when empty.
	PushgatewayURL string `envconfig:"PUSHGATEWAY_URL"`

	// Manifest enables writing the run manifest to the output.
	Manifest bool

	// The following fields are calculated by the Validate method.
	InputLocation  storage.Location `ignored:"true"`
	OutputLocation storage.Location `ignored:"true"`
	WriteMode      columnar.Mode    `ignored:"true"`
	Codec          columnar.Codec   `ignored:"true"`
}

// AddFlags adds the flags that populate the run configuration.
func AddFlags(flags *pflag.FlagSet, config *Run) {
	flags.StringVar(
		&config.Input,
		InputFlagName,
		DefaultInput,
		"Root of the 'song_data' and 'log_data' datasets. Can be 's3://bucket/prefix', "+
			"'s3a://bucket/prefix', 'file:///directory' or a directory name.",
	)
	flags.StringVar(
		&config.Output,
		OutputFlagName,
		DefaultOutput,
		"Root where the tables will be written. Supports the same forms than the input.",
	)
	flags.StringVar(
		&config.Mode,
		ModeFlagName,
		string(columnar.ModeError),
		fmt.Sprintf(
			"Save mode used when a table already exists. Valid values are %s.",
			logging.Any(columnar.Modes()),
		),
	)
	flags.StringVar(
		&config.Compression,
		CompressionFlagName,
		string(columnar.CodecSnappy),
		fmt.Sprintf(
			"Compression codec of the Parquet files. Valid values are %s.",
			logging.Any(columnar.Codecs()),
		),
	)
	flags.IntVar(
		&config.Parallelism,
		ParallelismFlagName,
		DefaultParallelism,
		"Maximum number of partition files written at the same time.",
	)
	flags.StringVar(
		&config.LogFilter,
		LogFilterFlagName,
		DefaultLogFilter,
		"jq expression that selects the log events that are song plays.",
	)
	flags.StringToStringVar(
		&config.LogFilterVars,
		LogFilterVarFlagName,
		nil,
		"Value of a variable used in the log filter, in the form 'name=value'. Can be "+
			"repeated.",
	)
	flags.StringVar(
		&config.Credentials,
		CredentialsFlagName,
		DefaultCredentials,
		"INI file containing the 'AWS_ACCESS_KEY_ID' and 'AWS_SECRET_ACCESS_KEY' keys of "+
			"the 'AWS' section.",
	)
	flags.StringVar(
		&config.Endpoint,
		EndpointFlagName,
		storage.DefaultEndpoint,
		"Object storage endpoint.",
	)
	flags.StringVar(
		&config.Region,
		RegionFlagName,
		"",
		"Object storage region. When empty it is discovered from the bucket.",
	)
	flags.BoolVar(
		&config.Insecure,
		InsecureFlagName,
		false,
		"Use plain HTTP to connect to the object storage endpoint.",
	)
	flags.BoolVar(
		&config.Ledger,
		LedgerFlagName,
		false,
		"Record the run in the ledger database. The connection details are taken from the "+
			"'ETL_DB_*' environment variables.",
	)
	flags.StringVar(
		&config.PushgatewayURL,
		PushgatewayURLFlagName,
		"",
		"URL of the Prometheus Pushgateway where the metrics of the run are pushed.",
	)
	flags.BoolVar(
		&config.Manifest,
		ManifestFlagName,
		true,
		"Write a summary of the run to '_runs/<run id>.yaml' inside the output.",
	)
}

// LoadFromEnv loads config values from the environment. Variables that aren't set don't change
// the values taken from the flags.
func (c *Run) LoadFromEnv() error {
	err := envconfig.Process(EnvPrefix, c)
	if err != nil {
		return fmt.Errorf("failed to process environment variables: %w", err)
	}
	return nil
}

// Validate checks the configuration attribute to ensure they are semantically correct, and
// calculates the parsed locations, mode and codec.
func (c *Run) Validate() (err error) {
	c.InputLocation, err = storage.ParseLocation(c.Input)
	if err != nil {
		return fmt.Errorf("input is invalid: %w", err)
	}
	c.OutputLocation, err = storage.ParseLocation(c.Output)
	if err != nil {
		return fmt.Errorf("output is invalid: %w", err)
	}
	c.WriteMode, err = columnar.ParseMode(c.Mode)
	if err != nil {
		return err
	}
	c.Codec, err = columnar.ParseCodec(c.Compression)
	if err != nil {
		return err
	}
	if c.Parallelism < 1 {
		return fmt.Errorf("parallelism should be at least 1, but it is %d", c.Parallelism)
	}
	if strings.TrimSpace(c.LogFilter) == "" {
		return errors.New("log filter is required")
	}
	for name := range c.LogFilterVars {
		if strings.TrimPrefix(name, "$") == "" {
			return errors.New("log filter variable names can't be empty")
		}
	}
	if c.PushgatewayURL != "" {
		parsed, err := url.Parse(c.PushgatewayURL)
		if err != nil {
			return fmt.Errorf("pushgateway URL '%s' is invalid: %w", c.PushgatewayURL, err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf(
				"pushgateway URL '%s' should use the 'http' or 'https' scheme",
				c.PushgatewayURL,
			)
		}
	}
	return nil
}

// NeedsCredentials returns true if the input or the output are in object storage.
func (c *Run) NeedsCredentials() bool {
	return c.InputLocation.Scheme == storage.SchemeS3 ||
		c.OutputLocation.Scheme == storage.SchemeS3
}
