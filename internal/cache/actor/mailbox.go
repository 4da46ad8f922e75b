package actor

import "sync"

// mailbox is an unbounded FIFO queue with a single consumer. Producers never
// block, so casts stay fire-and-forget even while the owner is busy.
type mailbox[T any] struct {
	mu     sync.Mutex
	queue  []T
	closed bool
	notify chan struct{}
}

func newMailbox[T any]() *mailbox[T] {
	return &mailbox[T]{
		notify: make(chan struct{}, 1),
	}
}

// push appends msg and wakes the consumer. It returns false once the mailbox is closed.
func (m *mailbox[T]) push(msg T) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.queue = append(m.queue, msg)
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
	return true
}

// drain moves every queued message into buf, in arrival order.
func (m *mailbox[T]) drain(buf []T) []T {
	m.mu.Lock()
	buf = append(buf, m.queue...)
	clear(m.queue)
	m.queue = m.queue[:0]
	m.mu.Unlock()
	return buf
}

// close rejects further pushes and returns whatever was still queued.
func (m *mailbox[T]) close() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	rest := m.queue
	m.queue = nil
	return rest
}

func (m *mailbox[T]) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}
