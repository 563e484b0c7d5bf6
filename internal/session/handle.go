package session

import "sync"

// HandleID identifies a subscriber, e.g. one SSH connection.
type HandleID string

// Handle receives the events of the channels it is subscribed to.
type Handle interface {
	ID() HandleID

	// Send delivers an event. It must not block.
	Send(evt Event)

	// Done closes when the subscriber goes away.
	Done() <-chan struct{}
}

// ChannelHandle is a Handle backed by a buffered Go channel. The TUI reads
// Events() from a tea.Cmd.
type ChannelHandle struct {
	id       HandleID
	events   chan Event
	done     chan struct{}
	doneOnce sync.Once
}

// NewChannelHandle creates a handle buffering up to size events.
func NewChannelHandle(id HandleID, size int) *ChannelHandle {
	if size < 1 {
		size = 32
	}
	return &ChannelHandle{
		id:     id,
		events: make(chan Event, size),
		done:   make(chan struct{}),
	}
}

// ID returns the handle identifier.
func (h *ChannelHandle) ID() HandleID {
	return h.id
}

// Send queues an event. When the buffer is full the oldest event is dropped.
func (h *ChannelHandle) Send(evt Event) {
	select {
	case <-h.done:
		return
	default:
	}

	select {
	case h.events <- evt:
	default:
		select {
		case <-h.events:
		default:
		}
		select {
		case h.events <- evt:
		default:
		}
	}
}

// Events returns the receive side of the buffer.
func (h *ChannelHandle) Events() <-chan Event {
	return h.events
}

// Done returns a channel closed by Close.
func (h *ChannelHandle) Done() <-chan struct{} {
	return h.done
}

// Close marks the handle finished. Safe to call more than once.
func (h *ChannelHandle) Close() {
	h.doneOnce.Do(func() {
		close(h.done)
	})
}
