package engine

import (
	"github.com/roach88/takeoff/internal/calibration"
)

// ReplayResult is the outcome of re-driving a recorded event sequence.
type ReplayResult struct {
	Session  *Session
	Applied  int
	Rejected int
	Digest   string
}

// Replay applies events, in order, to a fresh Session and digests the
// final state.
//
// Replay is not a special mode: it calls Session.Apply exactly as the live
// engine does. Determinism comes from the recorded pointer_up events, which
// pin the measurement ids the original run generated. Events the session
// refuses are counted and skipped, as they were in the live run. A
// committing pointer_up recorded without an id falls back to the session's
// IDGenerator.
func Replay(registry *calibration.Registry, events []Event, opts ...Option) (*ReplayResult, error) {
	s := NewSession(registry, opts...)
	res := &ReplayResult{Session: s}

	for _, ev := range events {
		if _, err := s.Apply(ev); err != nil {
			if IsInvalidEvent(err) {
				return nil, err
			}
			res.Rejected++
			s.logger.Debug("replayed event rejected", "event_type", ev.Type, "error", err)
			continue
		}
		res.Applied++
	}

	digest, err := s.State().Digest()
	if err != nil {
		return nil, err
	}
	res.Digest = digest
	return res, nil
}
