// Package drag implements the measurement gesture state machine.
//
// A gesture moves Idle -> Dragging on Begin, stays in Dragging across
// Updates, and returns to Idle through either End (which may commit) or
// Abort. The machine is independent of any event loop or UI binding so it
// can be driven by synthetic events in tests.
//
// Policies for cases the pointer host does not rule out:
//   - Begin while Dragging abandons the running gesture and starts a new one.
//   - Update from a different page than the gesture started on is ignored;
//     the end point stays at the last in-page position.
//   - A zero-length gesture is discarded unless AllowZeroLength is set.
package drag

import (
	"github.com/roach88/takeoff/internal/geom"
)

// State is a named machine state.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// ZeroLengthPolicy decides whether a gesture whose end equals its start
// commits a zero-distance measurement.
type ZeroLengthPolicy int

const (
	// RejectZeroLength discards zero-length gestures (default).
	RejectZeroLength ZeroLengthPolicy = iota
	// AllowZeroLength commits them with distance 0.
	AllowZeroLength
)

// OutcomeKind tells whether End produced a measurement.
type OutcomeKind int

const (
	Aborted OutcomeKind = iota
	Committed
)

func (k OutcomeKind) String() string {
	if k == Committed {
		return "committed"
	}
	return "aborted"
}

// Reasons reported with an aborted Outcome.
const (
	ReasonNotDragging = "not_dragging"
	ReasonNoMovement  = "no_movement"
	ReasonZeroLength  = "zero_length"
)

// Outcome is the result of End.
type Outcome struct {
	Kind     OutcomeKind
	Start    geom.Point
	End      geom.Point
	Distance float64
	Reason   string // set when Kind == Aborted
}

// Session is a read-only view of the gesture for renderers.
// Start and End are nil until set.
type Session struct {
	Start  *geom.Point `json:"start,omitempty"`
	End    *geom.Point `json:"end,omitempty"`
	Page   int         `json:"page,omitempty"`
	Active bool        `json:"active"`
}

// Machine tracks at most one gesture at a time. It is not safe for
// concurrent use; the owning session serializes access.
type Machine struct {
	state  State
	start  geom.Point
	end    geom.Point
	hasEnd bool
	policy ZeroLengthPolicy
}

// NewMachine returns an idle machine with the given zero-length policy.
func NewMachine(policy ZeroLengthPolicy) *Machine {
	return &Machine{policy: policy}
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// Policy returns the zero-length policy.
func (m *Machine) Policy() ZeroLengthPolicy {
	return m.policy
}

// Begin starts a gesture at p. If a gesture was already running it is
// abandoned without committing and Begin returns true.
func (m *Machine) Begin(p geom.Point) (superseded bool) {
	superseded = m.state == Dragging
	m.state = Dragging
	m.start = p
	m.end = geom.Point{}
	m.hasEnd = false
	return superseded
}

// Update moves the gesture's end to p. It returns false, leaving the
// gesture unchanged, when the machine is idle or p lies on another page.
func (m *Machine) Update(p geom.Point) bool {
	if m.state != Dragging {
		return false
	}
	if !p.SamePage(m.start) {
		return false
	}
	m.end = p
	m.hasEnd = true
	return true
}

// End finishes the gesture and returns the machine to Idle.
func (m *Machine) End() Outcome {
	if m.state != Dragging {
		return Outcome{Kind: Aborted, Reason: ReasonNotDragging}
	}

	start, end, hasEnd := m.start, m.end, m.hasEnd
	m.reset()

	if !hasEnd {
		return Outcome{Kind: Aborted, Start: start, Reason: ReasonNoMovement}
	}

	dist := geom.Distance(start, end)
	if dist == 0 && m.policy == RejectZeroLength {
		return Outcome{Kind: Aborted, Start: start, End: end, Reason: ReasonZeroLength}
	}

	return Outcome{Kind: Committed, Start: start, End: end, Distance: dist}
}

// Abort discards the running gesture. Returns false if the machine was
// already idle.
func (m *Machine) Abort() bool {
	if m.state != Dragging {
		return false
	}
	m.reset()
	return true
}

// Session returns a copy of the gesture state.
func (m *Machine) Session() Session {
	if m.state != Dragging {
		return Session{}
	}
	start := m.start
	s := Session{Start: &start, Page: start.Page, Active: true}
	if m.hasEnd {
		end := m.end
		s.End = &end
	}
	return s
}

func (m *Machine) reset() {
	m.state = Idle
	m.start = geom.Point{}
	m.end = geom.Point{}
	m.hasEnd = false
}
