/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package exit

import (
	"context"
	"errors"
	"os"
	"syscall"

	. "github.com/onsi/ginkgo/v2/dsl/core"
	. "github.com/onsi/gomega"
)

var _ = Describe("Handler", func() {
	It("Can't be created without a logger", func() {
		handler, err := NewHandler().Build()
		Expect(err).To(MatchError("logger is mandatory"))
		Expect(handler).To(BeNil())
	})

	It("Can't be created without signals", func() {
		handler, err := NewHandler().
			SetLogger(logger).
			SetSignals().
			Build()
		Expect(err).To(MatchError("at least one signal is required"))
		Expect(handler).To(BeNil())
	})

	It("Cancels the context on the first signal and exits on the second", func() {
		codes := make(chan int, 1)
		handler, err := NewHandler().
			SetLogger(logger).
			SetSignals(syscall.SIGUSR1).
			SetExit(func(code int) {
				codes <- code
			}).
			Build()
		Expect(err).ToNot(HaveOccurred())

		ctx, stop := handler.Context(context.Background())
		defer stop()
		Expect(ctx.Err()).ToNot(HaveOccurred())

		Expect(syscall.Kill(os.Getpid(), syscall.SIGUSR1)).To(Succeed())
		Eventually(ctx.Done()).Should(BeClosed())
		Expect(errors.Is(ctx.Err(), context.Canceled)).To(BeTrue())
		Consistently(codes).ShouldNot(Receive())

		Expect(syscall.Kill(os.Getpid(), syscall.SIGUSR1)).To(Succeed())
		Eventually(codes).Should(Receive(Equal(130)))
	})

	It("Cancels the context when stopped", func() {
		handler, err := NewHandler().
			SetLogger(logger).
			SetSignals(syscall.SIGUSR2).
			Build()
		Expect(err).ToNot(HaveOccurred())

		ctx, stop := handler.Context(context.Background())
		stop()
		Expect(ctx.Err()).To(MatchError(context.Canceled))
	})
})

var _ = Describe("Error", func() {
	It("Carries the exit code", func() {
		var err error = Interrupted
		var exitErr Error
		Expect(errors.As(err, &exitErr)).To(BeTrue())
		Expect(exitErr.Code()).To(Equal(130))
		Expect(Failed.Error()).To(Equal("1"))
	})
})
