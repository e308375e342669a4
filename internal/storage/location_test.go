/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package storage

import (
	. "github.com/onsi/ginkgo/v2/dsl/core"
	. "github.com/onsi/ginkgo/v2/dsl/table"
	. "github.com/onsi/gomega"
)

var _ = Describe("Location", func() {
	DescribeTable(
		"Parses valid locations",
		func(text string, expected Location) {
			actual, err := ParseLocation(text)
			Expect(err).ToNot(HaveOccurred())
			Expect(actual).To(Equal(expected))
		},
		Entry(
			"S3 with prefix",
			"s3://udacity-dend/song_data",
			Location{Scheme: SchemeS3, Bucket: "udacity-dend", Path: "song_data"},
		),
		Entry(
			"S3A without prefix",
			"s3a://udacity-dend/",
			Location{Scheme: SchemeS3, Bucket: "udacity-dend"},
		),
		Entry(
			"File URL",
			"file:///var/lib/etl/output/",
			Location{Scheme: SchemeFile, Path: "/var/lib/etl/output"},
		),
		Entry(
			"Plain directory",
			"data/",
			Location{Scheme: SchemeFile, Path: "data"},
		),
	)

	DescribeTable(
		"Rejects invalid locations",
		func(text string) {
			_, err := ParseLocation(text)
			Expect(err).To(HaveOccurred())
		},
		Entry("Empty", ""),
		Entry("Unsupported scheme", "gs://bucket/data"),
		Entry("Missing bucket", "s3:///data"),
		Entry("Remote file", "file://server/data"),
	)

	It("Generates the URL", func() {
		Expect(Location{Scheme: SchemeS3, Bucket: "b", Path: "p/q"}.String()).To(Equal("s3://b/p/q"))
		Expect(Location{Scheme: SchemeFile, Path: "/tmp/out"}.String()).To(Equal("file:///tmp/out"))
	})
})
