/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package metrics

import (
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2/dsl/core"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

var _ = Describe("Recorder", func() {
	var registry *prometheus.Registry

	BeforeEach(func() {
		registry = prometheus.NewPedanticRegistry()
	})

	It("Can't be created without a subsystem", func() {
		recorder, err := NewRecorder().
			SetRegisterer(registry).
			Build()
		Expect(err).To(MatchError("subsystem is mandatory"))
		Expect(recorder).To(BeNil())
	})

	It("Records dataset and table metrics", func() {
		recorder, err := NewRecorder().
			SetSubsystem("etl").
			SetRegisterer(registry).
			Build()
		Expect(err).ToNot(HaveOccurred())

		recorder.DatasetRead("log_data", 8056, 3, 1)
		recorder.TableWritten("time_table", 6820, 1)
		recorder.TableWritten("time_table", 10, 2)

		Expect(testutil.ToFloat64(recorder.rowsRead.WithLabelValues("log_data"))).
			To(BeNumerically("==", 8056))
		Expect(testutil.ToFloat64(recorder.coercedFields.WithLabelValues("log_data"))).
			To(BeNumerically("==", 3))
		Expect(testutil.ToFloat64(recorder.rowsWritten.WithLabelValues("time_table"))).
			To(BeNumerically("==", 6830))

		expected := `
# HELP etl_partitions_written_total Number of partition files written to each table.
# TYPE etl_partitions_written_total counter
etl_partitions_written_total{table="time_table"} 3
`
		err = testutil.GatherAndCompare(
			registry,
			strings.NewReader(expected),
			"etl_partitions_written_total",
		)
		Expect(err).ToNot(HaveOccurred())
	})

	It("Records stage durations and last success", func() {
		recorder, err := NewRecorder().
			SetSubsystem("etl").
			SetRegisterer(registry).
			Build()
		Expect(err).ToNot(HaveOccurred())

		recorder.StageFinished("song_data", 2*time.Second)
		recorder.RunSucceeded(time.Unix(1700000000, 0))

		count, err := testutil.GatherAndCount(registry, "etl_stage_duration_seconds")
		Expect(err).ToNot(HaveOccurred())
		Expect(count).To(Equal(1))
		Expect(testutil.ToFloat64(recorder.lastSuccess)).To(BeNumerically("==", 1700000000))
	})

	It("Reuses metrics already registered", func() {
		first, err := NewRecorder().
			SetSubsystem("etl").
			SetRegisterer(registry).
			Build()
		Expect(err).ToNot(HaveOccurred())
		second, err := NewRecorder().
			SetSubsystem("etl").
			SetRegisterer(registry).
			Build()
		Expect(err).ToNot(HaveOccurred())
		first.TableWritten("users_table", 1, 1)
		second.TableWritten("users_table", 1, 1)
		Expect(testutil.ToFloat64(second.rowsWritten.WithLabelValues("users_table"))).
			To(BeNumerically("==", 2))
	})
})
