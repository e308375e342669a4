/*
Copyright 2024 Red Hat Inc.

Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in
compliance with the License. You may obtain a copy of the License at

  http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software distributed under the License is
distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
implied. See the License for the specific language governing permissions and limitations under the
License.
*/

// This file contains the implementation of the recorder that generates the Prometheus metrics of
// a run of the pipeline.

package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RecorderBuilder contains the data and logic needed to build a recorder that generates the
// following Prometheus metrics:
//
//	<subsystem>_rows_read_total - Number of rows read from each input dataset.
//	<subsystem>_coerced_fields_total - Number of values replaced with null because they didn't
//	  match the schema of the dataset.
//	<subsystem>_malformed_lines_total - Number of lines that weren't valid JSON objects.
//	<subsystem>_rows_written_total - Number of rows written to each table.
//	<subsystem>_partitions_written_total - Number of partition files written to each table.
//	<subsystem>_stage_duration_seconds - Time spent in each stage of the pipeline.
//	<subsystem>_last_success_timestamp_seconds - Time when the last successful run finished.
//
// The metrics are meant to be pushed to a Prometheus Pushgateway at the end of the run, see the
// Pusher type.
//
// Don't create objects of this type directly; use the NewRecorder function instead.
type RecorderBuilder struct {
	subsystem  string
	registerer prometheus.Registerer
}

// Recorder updates the metrics of a run. Don't create instances of this directly, use the
// NewRecorder function instead.
type Recorder struct {
	rowsRead          *prometheus.CounterVec
	coercedFields     *prometheus.CounterVec
	malformedLines    *prometheus.CounterVec
	rowsWritten       *prometheus.CounterVec
	partitionsWritten *prometheus.CounterVec
	stageDuration     *prometheus.HistogramVec
	lastSuccess       prometheus.Gauge
}

// NewRecorder creates a new builder that can then be used to configure and create a recorder.
func NewRecorder() *RecorderBuilder {
	return &RecorderBuilder{
		registerer: prometheus.DefaultRegisterer,
	}
}

// SetSubsystem sets the name of the subsystem that will be used to register the metrics with
// Prometheus. For example, if the value is `etl` then the metrics will be named like
// `etl_rows_read_total`. This is mandatory.
func (b *RecorderBuilder) SetSubsystem(value string) *RecorderBuilder {
	b.subsystem = value
	return b
}

// SetRegisterer sets the Prometheus registerer that will be used to register the metrics. The
// default is to use the default Prometheus registerer. The run command uses a private registry
// so that only the metrics of the pipeline are pushed.
func (b *RecorderBuilder) SetRegisterer(value prometheus.Registerer) *RecorderBuilder {
	if value == nil {
		value = prometheus.DefaultRegisterer
	}
	b.registerer = value
	return b
}

// Build uses the information stored in the builder to create a new recorder.
func (b *RecorderBuilder) Build() (result *Recorder, err error) {
	if b.subsystem == "" {
		err = errors.New("subsystem is mandatory")
		return
	}

	rowsRead, err := register(b.registerer, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: b.subsystem,
			Name:      "rows_read_total",
			Help:      "Number of rows read from each input dataset.",
		},
		datasetLabelNames,
	))
	if err != nil {
		return
	}
	coercedFields, err := register(b.registerer, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: b.subsystem,
			Name:      "coerced_fields_total",
			Help:      "Number of values replaced with null because they didn't match the schema.",
		},
		datasetLabelNames,
	))
	if err != nil {
		return
	}
	malformedLines, err := register(b.registerer, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: b.subsystem,
			Name:      "malformed_lines_total",
			Help:      "Number of lines that weren't valid JSON objects.",
		},
		datasetLabelNames,
	))
	if err != nil {
		return
	}
	rowsWritten, err := register(b.registerer, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: b.subsystem,
			Name:      "rows_written_total",
			Help:      "Number of rows written to each table.",
		},
		tableLabelNames,
	))
	if err != nil {
		return
	}
	partitionsWritten, err := register(b.registerer, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: b.subsystem,
			Name:      "partitions_written_total",
			Help:      "Number of partition files written to each table.",
		},
		tableLabelNames,
	))
	if err != nil {
		return
	}
	stageDuration, err := register(b.registerer, prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Subsystem: b.subsystem,
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each stage of the pipeline, in seconds.",
			Buckets: []float64{
				1.0,
				10.0,
				60.0,
				300.0,
				1800.0,
			},
		},
		stageLabelNames,
	))
	if err != nil {
		return
	}
	lastSuccess, err := register(b.registerer, prometheus.NewGauge(
		prometheus.GaugeOpts{
			Subsystem: b.subsystem,
			Name:      "last_success_timestamp_seconds",
			Help:      "Time when the last successful run finished, in seconds since the epoch.",
		},
	))
	if err != nil {
		return
	}

	result = &Recorder{
		rowsRead:          rowsRead,
		coercedFields:     coercedFields,
		malformedLines:    malformedLines,
		rowsWritten:       rowsWritten,
		partitionsWritten: partitionsWritten,
		stageDuration:     stageDuration,
		lastSuccess:       lastSuccess,
	}
	return
}

// register registers the collector. If an equivalent collector was already registered it
// returns that one instead.
func register[C prometheus.Collector](registerer prometheus.Registerer, collector C) (result C,
	err error) {
	err = registerer.Register(collector)
	if err != nil {
		var alreadyRegisteredError prometheus.AlreadyRegisteredError
		if errors.As(err, &alreadyRegisteredError) {
			existing, ok := alreadyRegisteredError.ExistingCollector.(C)
			if ok {
				result = existing
				err = nil
			}
		}
		return
	}
	result = collector
	return
}

// DatasetRead updates the metrics of an input dataset.
func (r *Recorder) DatasetRead(dataset string, rows, coerced, malformed int) {
	r.rowsRead.WithLabelValues(dataset).Add(float64(rows))
	r.coercedFields.WithLabelValues(dataset).Add(float64(coerced))
	r.malformedLines.WithLabelValues(dataset).Add(float64(malformed))
}

// TableWritten updates the metrics of an output table.
func (r *Recorder) TableWritten(table string, rows, partitions int) {
	r.rowsWritten.WithLabelValues(table).Add(float64(rows))
	r.partitionsWritten.WithLabelValues(table).Add(float64(partitions))
}

// StageFinished records the duration of a stage.
func (r *Recorder) StageFinished(stage string, duration time.Duration) {
	r.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RunSucceeded records the time when the run finished successfully.
func (r *Recorder) RunSucceeded(at time.Time) {
	r.lastSuccess.Set(float64(at.Unix()))
}
