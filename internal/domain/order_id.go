package domain

import (
	"strconv"
	"sync"
	"time"
)

const orderIDPrefix = "ORD-"

// IDGenerator issues ORD-<unix millis> ids. Two calls within the same
// millisecond get consecutive numbers, so ids never repeat within a process.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewIDGenerator(now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{now: now}
}

func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := g.now().UnixMilli()
	if n <= g.last {
		n = g.last + 1
	}
	g.last = n

	return orderIDPrefix + strconv.FormatInt(n, 10)
}
