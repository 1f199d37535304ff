// Package ordernumber mints human-readable order identifiers in the form
// ORD-<unixMillis>-<sequence>. The sequence comes from an injected Sequencer
// whose implementations guarantee an atomic increment, so two concurrent
// placements can never receive the same number even within one millisecond.
package ordernumber

import (
	"fmt"
	"time"
)

// Sequencer hands out a strictly increasing sequence. Implementations must
// make the increment atomic with respect to concurrent callers.
type Sequencer interface {
	NextOrderSequence() (int64, error)
}

// Generator formats order numbers over a Sequencer.
type Generator struct {
	seq Sequencer
	now func() time.Time
}

// New creates a Generator backed by the given Sequencer.
func New(seq Sequencer) *Generator {
	return &Generator{
		seq: seq,
		now: time.Now,
	}
}

// Next returns the next order number. No number is ever reissued; a sequence
// consumed by a placement that later fails simply leaves a gap.
func (g *Generator) Next() (string, error) {
	n, err := g.seq.NextOrderSequence()
	if err != nil {
		return "", fmt.Errorf("failed to acquire order sequence: %w", err)
	}
	return fmt.Sprintf("ORD-%d-%d", g.now().UnixMilli(), n), nil
}
