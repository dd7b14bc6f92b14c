package testfixtures

import (
	"fmt"
	"sync"
)

// Sequence produces deterministic identifiers such as refresh cycle ids.
type Sequence struct {
	mu      sync.Mutex
	prefix  string
	counter uint64
}

// NewSequence yields "<prefix>-1", "<prefix>-2", ... When prefix is empty,
// "cycle" is used.
func NewSequence(prefix string) *Sequence {
	if prefix == "" {
		prefix = "cycle"
	}
	return &Sequence{prefix: prefix}
}

// Next returns the next identifier.
func (s *Sequence) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter++
	return fmt.Sprintf("%s-%d", s.prefix, s.counter)
}

// Issued reports how many identifiers have been handed out.
func (s *Sequence) Issued() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counter
}
