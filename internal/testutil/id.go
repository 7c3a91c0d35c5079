package testutil

import (
	"fmt"
	"sync"
)

// SeqIDGen returns "<prefix>-1", "<prefix>-2", ...
type SeqIDGen struct {
	prefix string

	mu sync.Mutex
	n  int
}

// NewSeqIDGen returns a sequential generator with the given prefix.
func NewSeqIDGen(prefix string) *SeqIDGen {
	return &SeqIDGen{prefix: prefix}
}

// New implements domain.IDGenerator.
func (g *SeqIDGen) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

// Last returns the most recently generated id, or "" before the first call.
func (g *SeqIDGen) Last() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.n == 0 {
		return ""
	}
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
