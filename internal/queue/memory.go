package queue

import (
	"context"
	"errors"
	"sync"
)

// Memory is an in-process queue with the same delivery semantics as AMQP.
type Memory struct {
	mu       sync.Mutex
	messages []memoryMessage
}

type memoryMessage struct {
	body        []byte
	redelivered bool
}

// NewMemory returns an empty queue.
func NewMemory() *Memory {
	return &Memory{}
}

// Publish implements Producer.
func (m *Memory) Publish(_ context.Context, rawURL string) error {
	body, err := Encode(rawURL)
	if err != nil {
		return err
	}
	m.PublishRaw(body)
	return nil
}

// PublishRaw enqueues an arbitrary payload, valid or not.
func (m *Memory) PublishRaw(body []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, memoryMessage{body: body})
}

// Len returns the number of queued messages.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

// Drain implements Consumer.
func (m *Memory) Drain(ctx context.Context, handle func(urls []string) error) (DrainStats, error) {
	var (
		stats DrainStats
		held  []memoryMessage
		batch []string
	)

	for {
		if err := ctx.Err(); err != nil {
			m.requeue(held)
			return stats, err
		}

		msg, ok := m.pop()
		if !ok {
			break
		}

		decoded, err := Decode(msg.body)
		if err != nil {
			stats.Malformed++
			continue
		}

		held = append(held, msg)
		batch = append(batch, decoded.URL)
	}

	if err := handle(batch); err != nil {
		m.requeue(held)
		return stats, errors.Join(ErrHandlerFailed, err)
	}

	for _, msg := range held {
		stats.Delivered++
		if msg.redelivered {
			stats.Redelivered++
		}
	}
	return stats, nil
}

func (m *Memory) pop() (memoryMessage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.messages) == 0 {
		return memoryMessage{}, false
	}
	msg := m.messages[0]
	m.messages = m.messages[1:]
	return msg, true
}

// requeue puts held messages back at the head in their original order,
// flagged as redelivered.
func (m *Memory) requeue(held []memoryMessage) {
	if len(held) == 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	back := make([]memoryMessage, 0, len(held)+len(m.messages))
	for _, msg := range held {
		msg.redelivered = true
		back = append(back, msg)
	}
	m.messages = append(back, m.messages...)
}
