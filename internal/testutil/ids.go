package testutil

import (
	"fmt"
	"sync/atomic"
)

// FixedIDGenerator returns the same run id every time.
//
// This keeps recorded runs and golden output byte-identical across test runs.
//
// Thread-safety: FixedIDGenerator is stateless and safe for concurrent use.
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator creates a generator returning id.
// If id is empty, Generate() returns "test-run-default".
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedIDGenerator{id: id}
}

// Generate returns the fixed id.
func (g *FixedIDGenerator) Generate() string {
	return g.id
}

// SequenceIDGenerator returns "<prefix>-1", "<prefix>-2", ... in call order.
//
// Thread-safety: Generate is safe for concurrent use; ids stay unique.
type SequenceIDGenerator struct {
	prefix string
	next   atomic.Int64
}

// NewSequenceIDGenerator creates a generator numbering from 1.
func NewSequenceIDGenerator(prefix string) *SequenceIDGenerator {
	return &SequenceIDGenerator{prefix: prefix}
}

// Generate returns the next id in the sequence.
func (g *SequenceIDGenerator) Generate() string {
	return fmt.Sprintf("%s-%d", g.prefix, g.next.Add(1))
}
