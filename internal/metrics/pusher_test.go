/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package metrics

import (
	"context"
	"net/http"

	. "github.com/onsi/ginkgo/v2/dsl/core"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
	"github.com/prometheus/client_golang/prometheus"

	. "github.com/openshift-kni/songplays-etl/internal/testing"
)

var _ = Describe("Pusher", func() {
	var (
		ctx      context.Context
		server   *ghttp.Server
		registry *prometheus.Registry
	)

	BeforeEach(func() {
		ctx = context.Background()
		server = MakeTCPServer()
		DeferCleanup(server.Close)
		registry = prometheus.NewRegistry()
		recorder, err := NewRecorder().
			SetSubsystem("etl").
			SetRegisterer(registry).
			Build()
		Expect(err).ToNot(HaveOccurred())
		recorder.TableWritten("songplays_table", 319, 1)
	})

	It("Can't be created without a URL", func() {
		_, err := NewPusher().
			SetLogger(logger).
			SetJob("songplays-etl").
			SetGatherer(registry).
			Build()
		Expect(err).To(MatchError(ContainSubstring("URL")))
	})

	It("Pushes the metrics grouped by job and run", func() {
		server.AppendHandlers(ghttp.CombineHandlers(
			ghttp.VerifyRequest(http.MethodPut, "/metrics/job/songplays-etl/run_id/123"),
			ghttp.RespondWith(http.StatusOK, nil),
		))
		pusher, err := NewPusher().
			SetLogger(logger).
			SetURL(server.URL()).
			SetJob("songplays-etl").
			SetGatherer(registry).
			AddGrouping("run_id", "123").
			AddGrouping("ignored", "").
			Build()
		Expect(err).ToNot(HaveOccurred())
		Expect(pusher.Push(ctx)).To(Succeed())
		Expect(server.ReceivedRequests()).To(HaveLen(1))
	})

	It("Reports errors returned by the gateway", func() {
		server.AppendHandlers(RespondWithContent(
			http.StatusInternalServerError, "text/plain", "overloaded",
		))
		pusher, err := NewPusher().
			SetLogger(logger).
			SetURL(server.URL()).
			SetJob("songplays-etl").
			SetGatherer(registry).
			Build()
		Expect(err).ToNot(HaveOccurred())
		err = pusher.Push(ctx)
		Expect(err).To(MatchError(ContainSubstring(server.URL())))
	})
})
