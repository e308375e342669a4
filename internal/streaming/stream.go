/*
Copyright (c) 2023 Red Hat, Inc.

Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in
compliance with the License. You may obtain a copy of the License at

  http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software distributed under the License is
distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
implied. See the License for the specific language governing permissions and limitations under the
License.
*/

package streaming

import (
	"context"
	"errors"
)

// Stream represents a stream of items.
type Stream[I any] interface {
	// Next resturns the next item from the stream. Returns the ErrEnd error if there are no more
	// items. Other errors may also be returned. For example, if the stream is backed by an object
	// in a storage bucket the connection may fail and generate an error.
	Next(ctx context.Context) (item I, err error)
}

// Sizer is an interface that can optionally be implemented by streams that know what is their
// size. Some functions, for example the Collect function that builds an slice from a stream, can
// take advantage of this to allocate the required space in advance.
type Sizer interface {
	// Returns the number of items still available in the stream.
	Size(ctx context.Context) (size int, err error)
}

// ErrEnd is the error returned by by the Next method of streams when there are no more items
// in the stream.
var ErrEnd = errors.New("end")

// StreamFunc creates an implementation of the Stream interface using the given function.
type StreamFunc[I any] func(context.Context) (I, error)

func (f StreamFunc[I]) Next(ctx context.Context) (item I, err error) {
	return f(ctx)
}

// Pour creates a stream that contains the items in the given slice.
func Pour[I any](slice ...I) Stream[I] {
	return &pourStream[I]{
		slice: slice,
	}
}

// pourStream is the implementation of the streams returned by the Pour function.
type pourStream[I any] struct {
	slice []I
}

func (s *pourStream[I]) Next(ctx context.Context) (item I, err error) {
	if len(s.slice) > 0 {
		item = s.slice[0]
		s.slice = s.slice[1:]
	} else {
		s.slice = nil
		err = ErrEnd
	}
	return
}

func (s *pourStream[I]) Size(ctx context.Context) (size int, err error) {
	size = len(s.slice)
	return
}

// Collect collects all the items in the given stream and returns an slice containing them.
func Collect[I any](ctx context.Context, stream Stream[I]) (slice []I, err error) {
	// If we know the size of the stream we can create the slice with the reuquired capacity
	// in advance and avoid the reallocations that will otherwise be done as items are added.
	var buffer []I
	sizer, ok := stream.(Sizer)
	if ok {
		var size int
		size, err = sizer.Size(ctx)
		if err != nil {
			return
		}
		if size > 0 {
			buffer = make([]I, 0, size)
		}
	}

	// Collect the items of the stream remembering to stop if the context is canceled:
	err = ForEach(ctx, stream, func(ctx context.Context, item I) error {
		buffer = append(buffer, item)
		return nil
	})
	if err != nil {
		return
	}
	slice = buffer
	return
}

// ForEach calls the given function for each item of the stream, stopping at the first error. The
// context is checked before each item, so a canceled context stops the iteration. The stream is
// closed when this returns.
func ForEach[I any](ctx context.Context, stream Stream[I], fn func(context.Context, I) error) error {
	defer closeStream(stream)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		item, err := stream.Next(ctx)
		if errors.Is(err, ErrEnd) {
			return nil
		}
		if err != nil {
			return err
		}
		err = fn(ctx, item)
		if err != nil {
			return err
		}
	}
}

// Count consumes the stream and returns the number of items it contained.
func Count[I any](ctx context.Context, stream Stream[I]) (count int, err error) {
	err = ForEach(ctx, stream, func(context.Context, I) error {
		count++
		return nil
	})
	return
}

// Mapper is a function that transofms one object into another.
type Mapper[F, T any] func(context.Context, F) (T, error)

// Map creates a stream that contains the result of transforming the objects of the given stream
// with a mapper. Note that the actual calls to the mapper will not happen when this function is
// called, they will happen only when the stream is eventually consumed.
func Map[F, T any](source Stream[F], mapper Mapper[F, T]) Stream[T] {
	return &mapStream[F, T]{
		source: source,
		mapper: mapper,
	}
}

// mapStream is the implementation of the streams returned by the Map function.
type mapStream[F, T any] struct {
	source Stream[F]
	mapper Mapper[F, T]
}

func (s *mapStream[F, T]) Next(ctx context.Context) (item T, err error) {
	tmp, err := s.source.Next(ctx)
	if err != nil {
		return
	}
	item, err = s.mapper(ctx, tmp)
	return
}

func (s *mapStream[F, T]) Close() error {
	closeStream(s.source)
	return nil
}

func (s *mapStream[F, T]) Size(ctx context.Context) (size int, err error) {
	sizer, ok := s.source.(Sizer)
	if !ok {
		return
	}
	return sizer.Size(ctx)
}

// Expander is a function that transforms one object into a stream of objects.
type Expander[F, T any] func(context.Context, F) (Stream[T], error)

// FlatMap creates a stream that contains the concatenation of the streams generated by the
// expander for each item of the source. This is what the readers use to turn a stream of file
// names into a stream of records.
func FlatMap[F, T any](source Stream[F], expander Expander[F, T]) Stream[T] {
	return &flatMapStream[F, T]{
		source:   source,
		expander: expander,
	}
}

// flatMapStream is the implementation of the streams returned by the FlatMap function.
type flatMapStream[F, T any] struct {
	source   Stream[F]
	expander Expander[F, T]
	current  Stream[T]
}

func (s *flatMapStream[F, T]) Next(ctx context.Context) (item T, err error) {
	for {
		if s.current == nil {
			var tmp F
			tmp, err = s.source.Next(ctx)
			if err != nil {
				return
			}
			s.current, err = s.expander(ctx, tmp)
			if err != nil {
				return
			}
		}
		item, err = s.current.Next(ctx)
		if errors.Is(err, ErrEnd) {
			closeStream(s.current)
			s.current = nil
			continue
		}
		if err != nil {
			closeStream(s.current)
			s.current = nil
		}
		return
	}
}

// Close closes the expanded stream that is currently being consumed, if any, and the source.
func (s *flatMapStream[F, T]) Close() error {
	if s.current != nil {
		closeStream(s.current)
		s.current = nil
	}
	closeStream(s.source)
	return nil
}

// Concat creates a stream that returns the items of the given streams one after the other.
func Concat[I any](streams ...Stream[I]) Stream[I] {
	return FlatMap(
		Pour(streams...),
		func(_ context.Context, stream Stream[I]) (Stream[I], error) {
			return stream, nil
		},
	)
}

// Selector is a function that filters element of a stream.
type Selector[I any] func(context.Context, I) (bool, error)

// Select creates a new stream that only contains the items of the source stream that return true
// for the given selector. Note that the actual calls to the select will not happen when this
// function is called, they will happen only when the stream is eventually consumed.
func Select[I any](source Stream[I], selector Selector[I]) Stream[I] {
	return &selectStream[I]{
		source:   source,
		selector: selector,
	}
}

// selectStream is the implementation of streams returned by the Select function.
type selectStream[I any] struct {
	source   Stream[I]
	selector Selector[I]
}

func (s *selectStream[I]) Next(ctx context.Context) (item I, err error) {
	for {
		var tmp I
		tmp, err = s.source.Next(ctx)
		if err != nil {
			return
		}
		var ok bool
		ok, err = s.selector(ctx, tmp)
		if err != nil {
			return
		}
		if ok {
			item = tmp
			return
		}
	}
}

func (s *selectStream[I]) Close() error {
	closeStream(s.source)
	return nil
}

// Null creates a new stream that is empty.
func Null[I any]() Stream[I] {
	return &nullStream[I]{}
}

// nullStream is the implementation of streams returned by the Null function.
type nullStream[I any] struct {
}

func (s *nullStream[I]) Next(ctx context.Context) (item I, err error) {
	err = ErrEnd
	return
}

func (s *nullStream[I]) Size(ctx context.Context) (size int, err error) {
	return
}

// closeStream closes the stream if it implements the io.Closer contract. Streams backed by
// objects in storage use this to release the underlying reader as soon as they are exhausted.
func closeStream(stream any) {
	closer, ok := stream.(interface{ Close() error })
	if ok {
		_ = closer.Close()
	}
}
