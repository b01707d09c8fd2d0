package queue

import (
	"context"
	"errors"
)

// ErrHandlerFailed wraps the error of a Drain handler; the batch it was
// given was requeued.
var ErrHandlerFailed = errors.New("queue: handler failed, messages requeued")

// Producer publishes seed URLs.
type Producer interface {
	Publish(ctx context.Context, rawURL string) error
}

// Consumer takes every queued URL and hands them to handle as one batch,
// which is empty when nothing is queued.
//
// The messages stay unacknowledged while handle runs. They are acknowledged
// once it returns nil and requeued when it fails, so work that dies part way
// is delivered again. Malformed messages are rejected without requeueing and
// counted.
type Consumer interface {
	Drain(ctx context.Context, handle func(urls []string) error) (DrainStats, error)
}

// DrainStats summarizes one Drain call.
type DrainStats struct {
	// Delivered counts messages handed to the handler and acknowledged.
	Delivered int

	// Redelivered counts delivered messages the broker had delivered before.
	Redelivered int

	// Malformed counts rejected payloads.
	Malformed int
}
