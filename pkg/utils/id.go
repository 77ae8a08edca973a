package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"
)

// IDAllocator hands out process-wide unique, monotonically increasing
// scenario identifiers. Callers must not assume ids start at any particular
// value or that the ids a single strategy receives are contiguous.
type IDAllocator struct {
	next atomic.Int64
}

// NewIDAllocator creates an allocator whose first id is 0.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{}
}

// Next allocates the next id.
func (a *IDAllocator) Next() int {
	return int(a.next.Add(1) - 1)
}

// Peek returns the id the next call to Next will hand out.
func (a *IDAllocator) Peek() int {
	return int(a.next.Load())
}

// Reset restarts numbering at zero. Only call this at plugin boundaries,
// when no strategy still holds ids from the previous numbering.
func (a *IDAllocator) Reset() {
	a.next.Store(0)
}

// ScenarioIDs is the process-wide allocator used when a host does not
// inject its own.
var ScenarioIDs = NewIDAllocator()

var sessionCounter uint64

// GenerateSessionID generates a session ID with a timestamp prefix
func GenerateSessionID() string {
	timestamp := time.Now().Format("20060102-150405")
	b := make([]byte, 4)
	_, err := rand.Read(b)
	if err != nil {
		count := atomic.AddUint64(&sessionCounter, 1)
		return fmt.Sprintf("session-%s-%x", timestamp, count)
	}
	return fmt.Sprintf("session-%s-%s", timestamp, hex.EncodeToString(b))
}
