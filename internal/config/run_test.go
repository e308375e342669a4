/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package config

import (
	. "github.com/onsi/ginkgo/v2/dsl/core"
	. "github.com/onsi/ginkgo/v2/dsl/table"
	. "github.com/onsi/gomega"
	"github.com/spf13/pflag"

	"github.com/openshift-kni/songplays-etl/internal/columnar"
	"github.com/openshift-kni/songplays-etl/internal/storage"
)

var _ = Describe("Run configuration", func() {
	var (
		flags  *pflag.FlagSet
		config *Run
	)

	BeforeEach(func() {
		config = &Run{}
		flags = pflag.NewFlagSet("", pflag.ContinueOnError)
		AddFlags(flags, config)
	})

	It("Has the defaults of the original job", func() {
		Expect(flags.Parse(nil)).To(Succeed())
		Expect(config.Validate()).To(Succeed())
		Expect(config.InputLocation).To(Equal(storage.Location{
			Scheme: storage.SchemeS3,
			Bucket: "udacity-dend",
		}))
		Expect(config.OutputLocation.Scheme).To(Equal(storage.SchemeFile))
		Expect(config.WriteMode).To(Equal(columnar.ModeError))
		Expect(config.Codec).To(Equal(columnar.CodecSnappy))
		Expect(config.Parallelism).To(Equal(4))
		Expect(config.LogFilter).To(Equal(`.page == "NextSong"`))
		Expect(config.Credentials).To(Equal("dl.cfg"))
		Expect(config.Manifest).To(BeTrue())
		Expect(config.Ledger).To(BeFalse())
		Expect(config.NeedsCredentials()).To(BeTrue())
	})

	It("Takes values from the flags", func() {
		err := flags.Parse([]string{
			"--input", "file:///data",
			"--output", "/tmp/out",
			"--mode", "overwrite",
			"--compression", "uncompressed",
			"--parallelism", "8",
			"--manifest=false",
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(config.Validate()).To(Succeed())
		Expect(config.InputLocation.Path).To(Equal("/data"))
		Expect(config.OutputLocation.Path).To(Equal("/tmp/out"))
		Expect(config.WriteMode).To(Equal(columnar.ModeOverwrite))
		Expect(config.Codec).To(Equal(columnar.CodecNone))
		Expect(config.Parallelism).To(Equal(8))
		Expect(config.Manifest).To(BeFalse())
		Expect(config.NeedsCredentials()).To(BeFalse())
	})

	It("Takes the log filter variables from the flags", func() {
		err := flags.Parse([]string{
			"--log-filter", `.page == $page and .level == $level`,
			"--log-filter-var", "page=NextSong",
			"--log-filter-var", "$level=paid",
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(config.Validate()).To(Succeed())
		Expect(config.LogFilterVars).To(Equal(map[string]string{
			"page":   "NextSong",
			"$level": "paid",
		}))
	})

	It("Takes the log filter variables from the environment", func() {
		setenv("ETL_LOG_FILTER_VARS", "level:free")
		Expect(flags.Parse(nil)).To(Succeed())
		Expect(config.LoadFromEnv()).To(Succeed())
		Expect(config.LogFilterVars).To(Equal(map[string]string{
			"level": "free",
		}))
	})

	It("Environment variables override the flags", func() {
		setenv("ETL_OUTPUT", "s3a://lake/songplays")
		setenv("ETL_LOG_FILTER", `.page == "Home"`)
		setenv("ETL_PUSHGATEWAY_URL", "http://pushgateway:9091")
		setenv("ETL_LEDGER", "true")

		Expect(flags.Parse([]string{"--output", "/tmp/out"})).To(Succeed())
		Expect(config.LoadFromEnv()).To(Succeed())
		Expect(config.Validate()).To(Succeed())
		Expect(config.OutputLocation).To(Equal(storage.Location{
			Scheme: storage.SchemeS3,
			Bucket: "lake",
			Path:   "songplays",
		}))
		Expect(config.LogFilter).To(Equal(`.page == "Home"`))
		Expect(config.PushgatewayURL).To(Equal("http://pushgateway:9091"))
		Expect(config.Ledger).To(BeTrue())
		Expect(config.Input).To(Equal(DefaultInput))
	})

	It("Rejects malformed environment variables", func() {
		setenv("ETL_PARALLELISM", "many")
		Expect(flags.Parse(nil)).To(Succeed())
		err := config.LoadFromEnv()
		Expect(err).To(MatchError(ContainSubstring("failed to process environment variables")))
	})

	DescribeTable(
		"Rejects invalid values",
		func(args []string, message string) {
			Expect(flags.Parse(args)).To(Succeed())
			err := config.Validate()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring(message))
		},
		Entry("Empty input", []string{"--input", ""}, "input is invalid"),
		Entry("Unknown scheme", []string{"--output", "hdfs://nn/out"}, "unsupported scheme"),
		Entry("Unknown mode", []string{"--mode", "merge"}, "merge"),
		Entry("Unknown codec", []string{"--compression", "lz4"}, "lz4"),
		Entry("No parallelism", []string{"--parallelism", "0"}, "parallelism"),
		Entry("Blank filter", []string{"--log-filter", " "}, "log filter is required"),
		Entry(
			"Unnamed filter variable",
			[]string{"--log-filter-var", "$=paid"},
			"variable names can't be empty",
		),
		Entry(
			"Pushgateway without HTTP",
			[]string{"--pushgateway-url", "pushgateway:9091"},
			"pushgateway URL",
		),
	)
})

var _ = Describe("Database configuration", func() {
	It("Has defaults", func() {
		var database Database
		Expect(database.LoadFromEnv()).To(Succeed())
		Expect(database.Validate()).To(Succeed())
		Expect(database.Host).To(Equal("localhost"))
		Expect(database.Port).To(Equal("5432"))
		Expect(database.SSLMode).To(Equal("disable"))
	})

	It("Takes values from the environment", func() {
		setenv("ETL_DB_HOST", "postgres")
		setenv("ETL_DB_PASSWORD", "secret")
		setenv("ETL_DB_NAME", "ledger")
		setenv("ETL_DB_SSLMODE", "require")

		var database Database
		Expect(database.LoadFromEnv()).To(Succeed())
		Expect(database.Validate()).To(Succeed())
		cfg := database.PgConfig()
		Expect(cfg.Host).To(Equal("postgres"))
		Expect(cfg.Password).To(Equal("secret"))
		Expect(cfg.Database).To(Equal("ledger"))
		Expect(cfg.SSLMode).To(Equal("require"))
	})
})
