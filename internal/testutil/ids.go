package testutil

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// SequenceIDGenerator yields "<prefix>-1", "<prefix>-2", ... and never runs
// out, unlike engine.FixedGenerator. It satisfies engine.IDGenerator.
type SequenceIDGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceIDGenerator returns a generator using prefix ("m" when empty).
func NewSequenceIDGenerator(prefix string) *SequenceIDGenerator {
	if prefix == "" {
		prefix = "m"
	}
	return &SequenceIDGenerator{prefix: prefix}
}

// Generate returns the next id.
func (g *SequenceIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

// DiscardLogger returns a logger that drops everything, for tests that
// exercise code paths which log.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
