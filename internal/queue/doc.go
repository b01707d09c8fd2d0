// Package queue carries seed URLs between producers and crawl workers.
//
// Messages are JSON objects of the form {"url": "<absolute http(s) URL>"}.
// Decode validates them strictly; anything else is malformed and is
// rejected without requeueing, so a bad payload cannot loop forever.
//
// Delivery is at-least-once. Drain takes the queued URLs as one batch and
// acks them only after the handler, which runs the crawl, returns nil. A
// crawl that fails or is interrupted puts the batch back, and a redelivered
// URL simply becomes a duplicate that the frontier's visited set absorbs.
//
// Two implementations exist: AMQP, backed by RabbitMQ through
// github.com/rabbitmq/amqp091-go, and Memory, used by tests and by
// single-process runs.
package queue
