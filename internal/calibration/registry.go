package calibration

import (
	"cmp"
	_ "embed"
	"fmt"
	"math"
	"slices"
	"strconv"
	"sync"
)

//go:embed scales.cue
var defaultScalesCUE []byte

// UnknownScaleError is returned when a scale identifier is not registered.
// The caller keeps its previous calibration.
type UnknownScaleError struct {
	ID string
}

func (e *UnknownScaleError) Error() string {
	return fmt.Sprintf("unknown scale %q", e.ID)
}

// Registry is the table of selectable scales.
//
// It is read-only in normal operation but safe for concurrent use, so a host
// may Register additional scales at runtime.
type Registry struct {
	mu     sync.RWMutex
	scales map[string]Scale
}

// NewRegistry builds a registry from the given scales.
// Returns an error if any scale is invalid or an ID is repeated.
func NewRegistry(scales ...Scale) (*Registry, error) {
	r := &Registry{scales: make(map[string]Scale, len(scales))}
	for _, s := range scales {
		if _, dup := r.scales[s.ID]; dup {
			return nil, fmt.Errorf("duplicate scale %q", s.ID)
		}
		if err := r.Register(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Default returns a registry seeded from the embedded scales.cue.
//
// Panics if the embedded table does not compile; that is a build defect,
// not a runtime condition.
func Default() *Registry {
	r, err := Parse("scales.cue", defaultScalesCUE)
	if err != nil {
		panic(fmt.Sprintf("calibration: embedded scales.cue: %v", err))
	}
	return r
}

// Register adds or replaces a scale. The factor must be finite and > 0.
// An empty unit defaults to metres.
func (r *Registry) Register(s Scale) error {
	if s.ID == "" {
		return fmt.Errorf("scale id is required")
	}
	if !(s.Factor > 0) || math.IsInf(s.Factor, 1) {
		return fmt.Errorf("scale %q: factor %g must be > 0", s.ID, s.Factor)
	}
	if s.Unit == "" {
		s.Unit = DefaultUnit
	}
	if s.Label == "" {
		s.Label = "1:" + s.ID
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.scales[s.ID] = s
	return nil
}

// Resolve returns the scale registered under id, or *UnknownScaleError.
func (r *Registry) Resolve(id string) (Scale, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.scales[id]
	if !ok {
		return Scale{}, &UnknownScaleError{ID: id}
	}
	return s, nil
}

// Len returns the number of registered scales.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.scales)
}

// Scales returns every registered scale ordered by factor, then ID.
func (r *Registry) Scales() []Scale {
	r.mu.RLock()
	out := make([]Scale, 0, len(r.scales))
	for _, s := range r.scales {
		out = append(out, s)
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b Scale) int {
		if c := cmp.Compare(a.Factor, b.Factor); c != 0 {
			return c
		}
		return compareIDs(a.ID, b.ID)
	})
	return out
}

// IDs returns the registered identifiers in the same order as Scales.
func (r *Registry) IDs() []string {
	scales := r.Scales()
	ids := make([]string, len(scales))
	for i, s := range scales {
		ids[i] = s.ID
	}
	return ids
}

// compareIDs orders numeric identifiers numerically and everything else
// lexically after them.
func compareIDs(a, b string) int {
	na, errA := strconv.ParseFloat(a, 64)
	nb, errB := strconv.ParseFloat(b, 64)
	switch {
	case errA == nil && errB == nil:
		return cmp.Compare(na, nb)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return cmp.Compare(a, b)
}
