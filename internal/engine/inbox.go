package engine

import "sync"

// inbox buffers events between producers and the Run loop.
//
// push never blocks: pointer callbacks arrive on the host's UI thread.
// Arrival order is preserved. With coalescing enabled, a pointer_move
// overwrites a pointer_move still waiting at the tail when both are valid
// and target the same page. A drag keeps only its latest in-page end
// point, so the session ends in the same state either way.
type inbox struct {
	mu        sync.Mutex
	pending   []Event
	head      int
	coalesce  bool
	coalesced int
	closed    bool
	ready     chan struct{} // capacity 1; closed with the inbox
}

func newInbox(coalesce bool) *inbox {
	return &inbox{
		pending:  make([]Event, 0, 64),
		coalesce: coalesce,
		ready:    make(chan struct{}, 1),
	}
}

// push appends ev. Returns false once the inbox is closed.
func (b *inbox) push(ev Event) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return false
	}

	if b.coalesce && b.supersedesTail(ev) {
		b.pending[len(b.pending)-1] = ev
		b.coalesced++
	} else {
		b.pending = append(b.pending, ev)
	}

	select {
	case b.ready <- struct{}{}:
	default:
	}
	return true
}

// supersedesTail reports whether ev can replace the last waiting event.
// Caller holds mu.
func (b *inbox) supersedesTail(ev Event) bool {
	if b.head == len(b.pending) || !validMove(ev) {
		return false
	}
	tail := b.pending[len(b.pending)-1]
	return validMove(tail) && tail.Pointer.Page == ev.Pointer.Page
}

func validMove(ev Event) bool {
	if ev.Type != EventPointerMove || ev.Pointer == nil {
		return false
	}
	_, err := ev.Pointer.Point()
	return err == nil
}

// pop removes the oldest event without blocking.
func (b *inbox) pop() (Event, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.head == len(b.pending) {
		return Event{}, false
	}
	ev := b.pending[b.head]
	b.pending[b.head] = Event{}
	b.head++
	if b.head == len(b.pending) {
		b.pending = b.pending[:0]
		b.head = 0
	}
	return ev, true
}

// wake fires when events may be waiting, and stays ready once closed.
func (b *inbox) wake() <-chan struct{} {
	return b.ready
}

func (b *inbox) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending) - b.head
}

func (b *inbox) close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	close(b.ready)
}

func (b *inbox) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

func (b *inbox) coalescedCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.coalesced
}
