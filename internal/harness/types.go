package harness

import (
	"github.com/roach88/takeoff/internal/engine"
)

// TraceEntry records what one step did.
type TraceEntry struct {
	Step   int    `json:"step"`
	Action string `json:"action"`
	Seq    int64  `json:"seq"`
	ID     string `json:"id,omitempty"`    // committed measurement id
	Error  string `json:"error,omitempty"` // RuntimeError code, when refused
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step behaved as expected and every
	// assertion held.
	Pass bool `json:"pass"`

	// Trace has one entry per step.
	Trace []TraceEntry `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the session state after the last step.
	Final engine.StateView `json:"final"`

	// Digest is the canonical hash of Final.
	Digest string `json:"digest"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEntry{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
