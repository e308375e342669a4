/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package columnar

import (
	. "github.com/onsi/ginkgo/v2/dsl/core"
	. "github.com/onsi/ginkgo/v2/dsl/table"
	. "github.com/onsi/gomega"

	"github.com/openshift-kni/songplays-etl/internal/data"
)

var _ = Describe("Partitions", func() {
	DescribeTable(
		"Directory segments",
		func(column string, value any, expected string) {
			Expect(PartitionSegment(column, value)).To(Equal(expected))
		},
		Entry("Integer", "year", int32(2018), "year=2018"),
		Entry("Text", "artist_id", "ARJIE2Y1187B994AB7", "artist_id=ARJIE2Y1187B994AB7"),
		Entry("Null", "year", nil, "year="+DefaultPartition),
		Entry("Empty text", "artist_id", "", "artist_id="+DefaultPartition),
		Entry("Slash", "artist_id", "AC/DC", "artist_id=AC%2FDC"),
		Entry("Equals and colon", "artist_id", "a=b:c", "artist_id=a%3Db%3Ac"),
		Entry("Percent", "artist_id", "100%", "artist_id=100%25"),
		Entry("Spaces are kept", "artist_id", "Line Renaud", "artist_id=Line Renaud"),
		Entry("Non ASCII is kept", "artist_id", "Björk", "artist_id=Björk"),
	)

	It("Joins the segments of all the partition columns", func() {
		row := data.Row{
			"year":      int32(2018),
			"month":     int32(11),
			"artist_id": "x",
		}
		Expect(PartitionPath(row, []string{"year", "month"})).To(Equal("year=2018/month=11"))
		Expect(PartitionPath(row, nil)).To(BeEmpty())
	})

	It("Reverses the escaping", func() {
		for _, text := range []string{"AC/DC", "a=b:c", "100%", "plain", "[x]"} {
			Expect(UnescapePathName(EscapePathName(text))).To(Equal(text))
		}
	})
})

var _ = Describe("Options", func() {
	DescribeTable(
		"Parses codecs",
		func(text string, expected Codec, extension string) {
			codec, err := ParseCodec(text)
			Expect(err).ToNot(HaveOccurred())
			Expect(codec).To(Equal(expected))
			Expect(codec.Extension()).To(Equal(extension))
		},
		Entry("Snappy", "snappy", CodecSnappy, ".snappy"),
		Entry("Upper case", "GZIP", CodecGzip, ".gz"),
		Entry("Zstandard", "zstd", CodecZstd, ".zstd"),
		Entry("Uncompressed", "uncompressed", CodecNone, ""),
	)

	It("Rejects unknown codecs", func() {
		_, err := ParseCodec("brotli")
		Expect(err).To(MatchError(ContainSubstring("'snappy', 'gzip', 'zstd' or 'none'")))
	})

	DescribeTable(
		"Parses modes",
		func(text string, expected Mode) {
			mode, err := ParseMode(text)
			Expect(err).ToNot(HaveOccurred())
			Expect(mode).To(Equal(expected))
		},
		Entry("Error", "error", ModeError),
		Entry("Error if exists", "errorifexists", ModeError),
		Entry("Overwrite", "Overwrite", ModeOverwrite),
		Entry("Append", "append", ModeAppend),
		Entry("Ignore", "ignore", ModeIgnore),
	)

	It("Rejects unknown modes", func() {
		_, err := ParseMode("merge")
		Expect(err).To(HaveOccurred())
	})
})
