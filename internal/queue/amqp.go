package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// channel is the subset of *amqp.Channel used here.
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Get(queue string, autoAck bool) (amqp.Delivery, bool, error)
	Close() error
}

// AMQP is a durable RabbitMQ queue.
type AMQP struct {
	conn   *amqp.Connection
	ch     channel
	queue  string
	logger *slog.Logger
}

// AMQPOption configures an AMQP queue.
type AMQPOption func(*AMQP)

// WithAMQPLogger sets the logger.
func WithAMQPLogger(logger *slog.Logger) AMQPOption {
	return func(q *AMQP) {
		q.logger = logger
	}
}

// DialAMQP connects to the broker at url and declares a durable queue.
func DialAMQP(url, queueName string, opts ...AMQPOption) (*AMQP, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	q, err := newAMQP(ch, queueName, opts...)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	q.conn = conn
	return q, nil
}

// newAMQP declares the queue on an open channel.
func newAMQP(ch channel, queueName string, opts ...AMQPOption) (*AMQP, error) {
	q := &AMQP{
		ch:     ch,
		queue:  queueName,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(q)
	}

	// durable, not auto-deleted, shared between workers
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to declare queue %q: %w", queueName, err)
	}

	return q, nil
}

// Publish implements Producer with persistent delivery.
func (q *AMQP) Publish(ctx context.Context, rawURL string) error {
	body, err := Encode(rawURL)
	if err != nil {
		return err
	}

	err = q.ch.PublishWithContext(ctx, "", q.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish: %w", err)
	}
	return nil
}

// Drain implements Consumer by polling with basic.get until the queue is
// empty. Taken messages are held unacknowledged until handle returns.
func (q *AMQP) Drain(ctx context.Context, handle func(urls []string) error) (DrainStats, error) {
	var (
		stats DrainStats
		held  []amqp.Delivery
		batch []string
	)

	for {
		if err := ctx.Err(); err != nil {
			return stats, errors.Join(err, requeue(held))
		}

		d, ok, err := q.ch.Get(q.queue, false)
		if err != nil {
			return stats, errors.Join(fmt.Errorf("failed to get message: %w", err), requeue(held))
		}
		if !ok {
			break
		}

		msg, err := Decode(d.Body)
		if err != nil {
			stats.Malformed++
			q.logger.Warn("rejecting malformed message", "delivery_tag", d.DeliveryTag, "error", err)
			if rerr := d.Reject(false); rerr != nil {
				return stats, errors.Join(fmt.Errorf("failed to reject message: %w", rerr), requeue(held))
			}
			continue
		}

		held = append(held, d)
		batch = append(batch, msg.URL)
	}

	if herr := handle(batch); herr != nil {
		return stats, errors.Join(ErrHandlerFailed, herr, requeue(held))
	}

	for _, d := range held {
		if err := d.Ack(false); err != nil {
			return stats, fmt.Errorf("failed to ack message: %w", err)
		}
		stats.Delivered++
		if d.Redelivered {
			stats.Redelivered++
		}
	}
	return stats, nil
}

// requeue hands held messages back to the broker.
func requeue(held []amqp.Delivery) error {
	var errs []error
	for _, d := range held {
		if err := d.Nack(false, true); err != nil {
			errs = append(errs, fmt.Errorf("failed to requeue message: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Close closes the channel and the connection.
func (q *AMQP) Close() error {
	var errs []error
	if q.ch != nil {
		errs = append(errs, q.ch.Close())
	}
	if q.conn != nil {
		errs = append(errs, q.conn.Close())
	}
	return errors.Join(errs...)
}
