package xcontext

import (
	"context"
	"time"
)

type (
	responseKey struct{}
	errorKey    struct{}
)

func WithError(ctx context.Context, err error) context.Context {
	return context.WithValue(ctx, errorKey{}, err)
}

func Error(ctx context.Context) error {
	err, _ := ctx.Value(errorKey{}).(error)
	return err
}

func WithResponse(ctx context.Context, resp any) context.Context {
	return context.WithValue(ctx, responseKey{}, resp)
}

func Response(ctx context.Context) any {
	return ctx.Value(responseKey{})
}

type withoutCancel struct {
	context.Context
}

func (withoutCancel) Deadline() (time.Time, bool) { return time.Time{}, false }
func (withoutCancel) Done() <-chan struct{}       { return nil }
func (withoutCancel) Err() error                  { return nil }

// WithoutCancel keeps every value of ctx but is never canceled with it.
func WithoutCancel(ctx context.Context) context.Context {
	return withoutCancel{ctx}
}
