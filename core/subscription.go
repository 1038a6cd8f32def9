package core

import (
	"sync"
)

// EventBatch is the IBC events of a block
type EventBatch struct {
	ChainID string
	Height  uint64
	Events  []IBCEventWithHeight
}

// Subscription receives the event batches of a chain until it is closed
type Subscription struct {
	mu     sync.Mutex
	ch     chan EventBatch
	closed bool
	cancel func()
}

// NewSubscription returns a subscription buffered with size batches.
// cancel is called once when the subscription is closed.
func NewSubscription(size int, cancel func()) *Subscription {
	return &Subscription{ch: make(chan EventBatch, size), cancel: cancel}
}

// Events returns the channel of event batches. It is closed by Close.
func (s *Subscription) Events() <-chan EventBatch {
	return s.ch
}

// Send delivers a batch without blocking. It returns false if the buffer is full
// or the subscription is closed.
func (s *Subscription) Send(batch EventBatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.ch <- batch:
		return true
	default:
		return false
	}
}

func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.ch)
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
}
