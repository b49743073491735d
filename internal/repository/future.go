package repository

import (
	"context"
)

// Future is the pending result of an operation started with Go. Await
// always yields either a value or an error.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Go runs fn in its own goroutine. The operation keeps running when the
// awaiting side gives up; only ctx passed here can stop it.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.value, f.err = fn(ctx)
	}()
	return f
}

func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}
