// Package idgen provides process-unique numeric identifier generation.
package idgen

import "sync/atomic"

// Generator issues unique uint64 identifiers using atomic operations.
// The zero value is ready to use; the first call to NextID returns 1.
type Generator struct {
	counter uint64
}

// New creates a Generator whose first NextID call returns 1.
func New() *Generator {
	return &Generator{}
}

// NewFrom creates a Generator that resumes after last: the first NextID call
// returns last+1. Used when the store already holds identifiers issued by an
// earlier process.
func NewFrom(last uint64) *Generator {
	return &Generator{counter: last}
}

// NextID returns the next identifier in the sequence 1, 2, 3, ...
// It is safe for concurrent use.
func (g *Generator) NextID() uint64 {
	return atomic.AddUint64(&g.counter, 1)
}
