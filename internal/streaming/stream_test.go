/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package streaming

import (
	"context"
	"errors"
	"strconv"

	. "github.com/onsi/ginkgo/v2/dsl/core"
	. "github.com/onsi/gomega"
)

// closable records if it has been closed.
type closable struct {
	Stream[int]
	closed int
}

func (c *closable) Close() error {
	c.closed++
	return nil
}

var _ = Describe("Stream", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("Collects the items poured into it", func() {
		items, err := Collect(ctx, Pour(1, 2, 3))
		Expect(err).ToNot(HaveOccurred())
		Expect(items).To(Equal([]int{1, 2, 3}))
	})

	It("Returns nil for an empty stream", func() {
		items, err := Collect(ctx, Null[int]())
		Expect(err).ToNot(HaveOccurred())
		Expect(items).To(BeEmpty())
	})

	It("Maps items lazily", func() {
		calls := 0
		stream := Map(Pour(1, 2), func(_ context.Context, i int) (string, error) {
			calls++
			return strconv.Itoa(i * 10), nil
		})
		Expect(calls).To(BeZero())
		items, err := Collect(ctx, stream)
		Expect(err).ToNot(HaveOccurred())
		Expect(items).To(Equal([]string{"10", "20"}))
		Expect(calls).To(Equal(2))
	})

	It("Selects the items accepted by the selector", func() {
		stream := Select(Pour(1, 2, 3, 4), func(_ context.Context, i int) (bool, error) {
			return i%2 == 0, nil
		})
		items, err := Collect(ctx, stream)
		Expect(err).ToNot(HaveOccurred())
		Expect(items).To(Equal([]int{2, 4}))
	})

	It("Flattens the expanded streams preserving order", func() {
		stream := FlatMap(Pour(1, 0, 2), func(_ context.Context, n int) (Stream[int], error) {
			items := make([]int, n)
			for i := range items {
				items[i] = n
			}
			return Pour(items...), nil
		})
		items, err := Collect(ctx, stream)
		Expect(err).ToNot(HaveOccurred())
		Expect(items).To(Equal([]int{1, 2, 2}))
	})

	It("Concatenates streams", func() {
		items, err := Collect(ctx, Concat(Pour("a"), Null[string](), Pour("b", "c")))
		Expect(err).ToNot(HaveOccurred())
		Expect(items).To(Equal([]string{"a", "b", "c"}))
	})

	It("Counts the items", func() {
		count, err := Count(ctx, Pour(1, 2, 3))
		Expect(err).ToNot(HaveOccurred())
		Expect(count).To(Equal(3))
	})

	It("Stops at the first mapper error", func() {
		failure := errors.New("boom")
		stream := Map(Pour(1, 2), func(_ context.Context, i int) (int, error) {
			return 0, failure
		})
		_, err := Collect(ctx, stream)
		Expect(err).To(MatchError(failure))
	})

	It("Stops when the context is canceled", func() {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := Collect(canceled, Pour(1, 2))
		Expect(err).To(MatchError(context.Canceled))
	})

	It("Closes the expanded streams when they are exhausted", func() {
		first := &closable{Stream: Pour(1, 2)}
		second := &closable{Stream: Pour(3)}
		stream := Concat[int](first, second)
		items, err := Collect(ctx, stream)
		Expect(err).ToNot(HaveOccurred())
		Expect(items).To(Equal([]int{1, 2, 3}))
		Expect(first.closed).To(Equal(1))
		Expect(second.closed).To(Equal(1))
	})

	It("Closes the expanded stream when it fails", func() {
		failure := errors.New("connection reset")
		calls := 0
		current := &closable{Stream: StreamFunc[int](func(context.Context) (int, error) {
			calls++
			if calls > 1 {
				return 0, failure
			}
			return 1, nil
		})}
		stream := FlatMap(Pour(0), func(context.Context, int) (Stream[int], error) {
			return current, nil
		})
		_, err := Collect(ctx, stream)
		Expect(err).To(MatchError(failure))
		Expect(current.closed).To(Equal(1))
	})

	It("Closes the expanded stream when a downstream selector fails", func() {
		failure := errors.New("bad filter")
		current := &closable{Stream: Pour(1, 2, 3)}
		stream := Select(
			FlatMap(Pour(0), func(context.Context, int) (Stream[int], error) {
				return current, nil
			}),
			func(_ context.Context, i int) (bool, error) {
				return false, failure
			},
		)
		_, err := Collect(ctx, stream)
		Expect(err).To(MatchError(failure))
		Expect(current.closed).To(Equal(1))
	})

	It("Closes the expanded stream when the context is canceled", func() {
		canceled, cancel := context.WithCancel(ctx)
		current := &closable{Stream: Pour(1, 2, 3)}
		stream := FlatMap(Pour(0), func(context.Context, int) (Stream[int], error) {
			return current, nil
		})
		err := ForEach(canceled, stream, func(context.Context, int) error {
			cancel()
			return nil
		})
		Expect(err).To(MatchError(context.Canceled))
		Expect(current.closed).To(Equal(1))
	})
})
