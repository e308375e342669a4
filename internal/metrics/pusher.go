/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// PusherBuilder contains the data and logic needed to create a pusher that sends the metrics of
// a run to a Prometheus Pushgateway. Don't create instances of this directly, use the NewPusher
// function instead.
type PusherBuilder struct {
	logger   *slog.Logger
	url      string
	job      string
	gatherer prometheus.Gatherer
	grouping map[string]string
}

// Pusher sends metrics to a Prometheus Pushgateway. Don't create instances of this directly, use
// the NewPusher function instead.
type Pusher struct {
	logger *slog.Logger
	pusher *push.Pusher
	url    string
	job    string
}

// NewPusher creates a builder that can then be used to configure and create a pusher.
func NewPusher() *PusherBuilder {
	return &PusherBuilder{}
}

// SetLogger sets the logger that the pusher will use to write to the log. This is mandatory.
func (b *PusherBuilder) SetLogger(value *slog.Logger) *PusherBuilder {
	b.logger = value
	return b
}

// SetURL sets the URL of the Pushgateway, for example 'http://pushgateway:9091'. This is
// mandatory.
func (b *PusherBuilder) SetURL(value string) *PusherBuilder {
	b.url = strings.TrimSpace(value)
	return b
}

// SetJob sets the name of the job used to group the metrics. This is mandatory.
func (b *PusherBuilder) SetJob(value string) *PusherBuilder {
	b.job = strings.TrimSpace(value)
	return b
}

// SetGatherer sets the source of the metrics. This is mandatory.
func (b *PusherBuilder) SetGatherer(value prometheus.Gatherer) *PusherBuilder {
	b.gatherer = value
	return b
}

// AddGrouping adds a label that will be used, together with the job, to group the metrics.
// Empty names or values are ignored.
func (b *PusherBuilder) AddGrouping(name, value string) *PusherBuilder {
	name = strings.TrimSpace(name)
	value = strings.TrimSpace(value)
	if name == "" || value == "" {
		return b
	}
	if b.grouping == nil {
		b.grouping = map[string]string{}
	}
	b.grouping[name] = value
	return b
}

// Build uses the data stored in the builder to create a new pusher.
func (b *PusherBuilder) Build() (result *Pusher, err error) {
	if b.logger == nil {
		err = errors.New("logger is mandatory")
		return
	}
	if b.url == "" {
		err = errors.New("pushgateway URL is mandatory")
		return
	}
	if b.job == "" {
		err = errors.New("job is mandatory")
		return
	}
	if b.gatherer == nil {
		err = errors.New("gatherer is mandatory")
		return
	}
	pusher := push.New(b.url, b.job).Gatherer(b.gatherer)
	for _, name := range slices.Sorted(maps.Keys(b.grouping)) {
		pusher = pusher.Grouping(name, b.grouping[name])
	}
	result = &Pusher{
		logger: b.logger,
		pusher: pusher,
		url:    b.url,
		job:    b.job,
	}
	return
}

// Push sends the metrics, replacing the ones previously pushed with the same grouping.
func (p *Pusher) Push(ctx context.Context) error {
	err := p.pusher.PushContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to push metrics to '%s': %w", p.url, err)
	}
	p.logger.DebugContext(
		ctx,
		"Pushed metrics",
		slog.String("url", p.url),
		slog.String("job", p.job),
	)
	return nil
}
