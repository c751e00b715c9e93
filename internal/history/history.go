// Package history keeps the undo/redo stacks of measurement snapshots.
//
// Every entry is a full, immutable measure.Snapshot. A new committed action
// records the pre-action snapshot with PushUndo, which also invalidates redo.
// Undo and Redo exchange the caller's current snapshot for a stored one;
// they never clear the opposite stack.
package history

import (
	"github.com/roach88/takeoff/internal/measure"
)

// RedoOrder selects which queued redo snapshot Redo restores.
type RedoOrder int

const (
	// RedoFIFO restores redo snapshots in the order the undos queued them
	// (oldest first).
	RedoFIFO RedoOrder = iota

	// RedoLIFO restores the most recently undone state first. n undos
	// followed by n redos always return to the starting state.
	RedoLIFO
)

func (o RedoOrder) String() string {
	if o == RedoLIFO {
		return "lifo"
	}
	return "fifo"
}

// Option configures a Manager.
type Option func(*Manager)

// WithRedoOrder sets the redo order. Default: RedoFIFO.
func WithRedoOrder(o RedoOrder) Option {
	return func(h *Manager) {
		h.order = o
	}
}

// WithLimit caps the undo stack at n entries, dropping the oldest when
// exceeded. n <= 0 means unbounded (the default).
func WithLimit(n int) Option {
	return func(h *Manager) {
		h.limit = n
	}
}

// Manager holds the two stacks. Not safe for concurrent use.
type Manager struct {
	undo  []measure.Snapshot
	redo  []measure.Snapshot
	order RedoOrder
	limit int
}

// New returns a Manager with empty stacks.
func New(opts ...Option) *Manager {
	h := &Manager{}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// PushUndo records the snapshot taken before a new committed action and
// clears the redo stack.
func (h *Manager) PushUndo(before measure.Snapshot) {
	h.pushUndo(before)
	h.redo = nil
}

// Undo pops the most recent undo snapshot, queues current for redo, and
// returns the popped snapshot for the caller to install. With an empty undo
// stack it does nothing and returns false.
func (h *Manager) Undo(current measure.Snapshot) (measure.Snapshot, bool) {
	if len(h.undo) == 0 {
		return measure.Snapshot{}, false
	}
	last := len(h.undo) - 1
	snap := h.undo[last]
	h.undo[last] = measure.Snapshot{}
	h.undo = h.undo[:last]

	h.redo = append(h.redo, current)
	return snap, true
}

// Redo pops a redo snapshot (per the configured order), pushes current onto
// the undo stack, and returns the popped snapshot. With an empty redo stack
// it does nothing and returns false.
func (h *Manager) Redo(current measure.Snapshot) (measure.Snapshot, bool) {
	if len(h.redo) == 0 {
		return measure.Snapshot{}, false
	}

	var snap measure.Snapshot
	if h.order == RedoLIFO {
		last := len(h.redo) - 1
		snap = h.redo[last]
		h.redo[last] = measure.Snapshot{}
		h.redo = h.redo[:last]
	} else {
		snap = h.redo[0]
		h.redo[0] = measure.Snapshot{}
		h.redo = h.redo[1:]
	}

	h.pushUndo(current)
	return snap, true
}

// Reset clears both stacks.
func (h *Manager) Reset() {
	h.undo = nil
	h.redo = nil
}

// CanUndo reports whether Undo would do anything.
func (h *Manager) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether Redo would do anything.
func (h *Manager) CanRedo() bool { return len(h.redo) > 0 }

// UndoDepth is the number of undo entries.
func (h *Manager) UndoDepth() int { return len(h.undo) }

// RedoDepth is the number of redo entries.
func (h *Manager) RedoDepth() int { return len(h.redo) }

// Order returns the configured redo order.
func (h *Manager) Order() RedoOrder { return h.order }

func (h *Manager) pushUndo(s measure.Snapshot) {
	h.undo = append(h.undo, s)
	if h.limit > 0 && len(h.undo) > h.limit {
		drop := len(h.undo) - h.limit
		h.undo = append(h.undo[:0:0], h.undo[drop:]...)
	}
}
