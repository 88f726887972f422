// Package asyncop standardizes the loading/error/data triple and
// cancellation for a single logical operation slot. Each Operation is
// single-flight: starting a new Execute supersedes and cancels a still
// pending previous call, so a stale result can never overwrite fresher
// state. Cancellation is cooperative through the context handed to the
// operation function and is never reported as an application error.
package asyncop

import (
	"context"
	"errors"
	"sync"
)

// Operation wraps one logical async operation slot. The zero value is
// not usable; create instances with New.
type Operation[T any] struct {
	mu        sync.Mutex
	loading   bool
	data      T
	err       error
	cancel    context.CancelFunc
	gen       uint64
	done      chan struct{}
	onSuccess func(T)
	onError   func(error)
}

// New creates an idle operation slot
func New[T any]() *Operation[T] {
	return &Operation[T]{}
}

// OnSuccess registers a callback fired when a call settles with data.
// Must be set before Execute.
func (o *Operation[T]) OnSuccess(fn func(T)) *Operation[T] {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onSuccess = fn
	return o
}

// OnError registers a callback fired when a call settles with a
// non-cancellation error. Must be set before Execute.
func (o *Operation[T]) OnError(fn func(error)) *Operation[T] {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onError = fn
	return o
}

// Execute starts fn in a new goroutine, cancelling any still pending call
// from this slot first. Loading stays true for the whole span between
// Execute and the call's terminal settle. A call that was superseded or
// cancelled does not touch state and fires no callbacks.
func (o *Operation[T]) Execute(ctx context.Context, fn func(ctx context.Context) (T, error)) {
	o.mu.Lock()
	if o.cancel != nil {
		o.cancel()
		o.settleLocked()
	}
	callCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.gen++
	gen := o.gen
	o.loading = true
	o.err = nil
	o.done = make(chan struct{})
	onSuccess, onError := o.onSuccess, o.onError
	o.mu.Unlock()

	go func() {
		data, err := fn(callCtx)
		cancel()

		o.mu.Lock()
		if o.gen != gen {
			// superseded or cancelled; the slot belongs to a newer call
			o.mu.Unlock()
			return
		}
		o.settleLocked()
		if err != nil {
			if isCancellation(err) {
				// swallowed silently, never surfaced to the user
				o.mu.Unlock()
				return
			}
			o.err = err
			o.mu.Unlock()
			if onError != nil {
				onError(err)
			}
			return
		}
		o.data = data
		o.mu.Unlock()
		if onSuccess != nil {
			onSuccess(data)
		}
	}()
}

// Cancel signals cancellation to the in-flight call, if any. Whatever the
// original call later resolves or rejects with no longer affects this
// slot's state.
func (o *Operation[T]) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel == nil {
		return
	}
	o.cancel()
	o.gen++ // orphan the in-flight call
	o.settleLocked()
}

// Reset clears loading, error and data back to initial values without
// affecting any in-flight call.
func (o *Operation[T]) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	var zero T
	o.loading = false
	o.err = nil
	o.data = zero
}

// Wait blocks until the current call settles. It returns immediately when
// nothing is in flight.
func (o *Operation[T]) Wait() {
	o.mu.Lock()
	done := o.done
	o.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Loading reports whether a call is in flight
func (o *Operation[T]) Loading() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.loading
}

// Data returns the last successful result
func (o *Operation[T]) Data() T {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.data
}

// Err returns the last non-cancellation error
func (o *Operation[T]) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}

// settleLocked marks the current call terminal. Callers must hold mu.
func (o *Operation[T]) settleLocked() {
	o.loading = false
	o.cancel = nil
	if o.done != nil {
		close(o.done)
		o.done = nil
	}
}

// isCancellation matches only explicit cancellation; deadline expiry is a
// timeout and still surfaces as an error.
func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}
