package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/wordsession/internal/dependencies/ids"
)

// MockIDs issues predictable sequential ids: "<prefix>-1", "<prefix>-2", ...
type MockIDs struct {
	mu     sync.Mutex
	prefix string
	next   int
}

var _ ids.Generator = (*MockIDs)(nil)

// NewMockIDs creates a MockIDs with the given prefix
func NewMockIDs(prefix string) *MockIDs {
	return &MockIDs{prefix: prefix}
}

// NewID returns the next id in sequence
func (g *MockIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("%s-%d", g.prefix, g.next)
}

// Issued returns how many ids have been handed out
func (g *MockIDs) Issued() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.next
}
