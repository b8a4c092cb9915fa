package session

import "context"

// Pending is an operation that completes in the background.
type Pending[T any] struct {
	done   chan struct{}
	cancel context.CancelFunc
	val    T
	err    error
}

func run[T any](parent context.Context, fn func(ctx context.Context) (T, error)) *Pending[T] {
	ctx, cancel := context.WithCancel(parent)
	p := &Pending[T]{done: make(chan struct{}), cancel: cancel}
	go func() {
		defer close(p.done)
		defer cancel()
		p.val, p.err = fn(ctx)
	}()
	return p
}

func resolved[T any](val T, err error) *Pending[T] {
	p := &Pending[T]{done: make(chan struct{}), cancel: func() {}, val: val, err: err}
	close(p.done)
	return p
}

func (p *Pending[T]) Done() <-chan struct{} { return p.done }

// Cancel aborts the operation if it has not committed yet.
func (p *Pending[T]) Cancel() { p.cancel() }

// Wait blocks until the operation finishes or ctx is done. Giving up on the wait
// does not cancel the operation.
func (p *Pending[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.val, p.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
