package events

import (
	"sync"
)

// ChannelSink delivers events over a channel without ever blocking the
// emitter. Events are held in an unbounded FIFO queue and forwarded by a
// single goroutine, so consumers see them in emission order.
type ChannelSink struct {
	out     chan Event
	mutex   sync.Mutex
	cond    *sync.Cond
	pending []Event
	closed  bool
	done    chan struct{}
}

// NewChannelSink creates a sink and starts its forwarding goroutine.
// buffer sizes the output channel; the internal queue is unbounded.
func NewChannelSink(buffer int) *ChannelSink {
	s := &ChannelSink{
		out:  make(chan Event, buffer),
		done: make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.mutex)
	go s.forward()
	return s
}

// Events returns the channel events are delivered on. It is closed after
// Close once every queued event has been delivered.
func (s *ChannelSink) Events() <-chan Event {
	return s.out
}

// Emit queues e. Emitting after Close is a no-op.
func (s *ChannelSink) Emit(e Event) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return
	}
	s.pending = append(s.pending, e)
	s.cond.Signal()
}

// Close stops accepting events. Queued events are still delivered.
func (s *ChannelSink) Close() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.cond.Signal()
}

// Wait blocks until every queued event has been delivered and the output
// channel is closed.
func (s *ChannelSink) Wait() {
	<-s.done
}

func (s *ChannelSink) forward() {
	defer close(s.done)
	defer close(s.out)

	for {
		s.mutex.Lock()
		for len(s.pending) == 0 && !s.closed {
			s.cond.Wait()
		}
		if len(s.pending) == 0 && s.closed {
			s.mutex.Unlock()
			return
		}
		batch := s.pending
		s.pending = nil
		s.mutex.Unlock()

		for _, e := range batch {
			s.out <- e
		}
	}
}
