package core

import (
	"errors"
	"fmt"
	"sync"
)

// ErrCallLimit is returned when a session exceeds its model call budget.
var ErrCallLimit = errors.New("model call limit exceeded")

// ModelLimiter enforces a maximum number of model calls per session.
type ModelLimiter struct {
	max   int
	count int
	mu    sync.Mutex
}

// NewModelLimiter creates a limiter. A max of zero allows unlimited calls.
func NewModelLimiter(max int) *ModelLimiter {
	return &ModelLimiter{max: max}
}

// Acquire reserves one call and fails once the budget is spent.
func (ml *ModelLimiter) Acquire() error {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	if ml.max > 0 && ml.count >= ml.max {
		return fmt.Errorf("%w: %d", ErrCallLimit, ml.max)
	}
	ml.count++

	return nil
}

// Count returns the number of calls made.
func (ml *ModelLimiter) Count() int {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	return ml.count
}

// Remaining returns how many calls are left, or -1 when unlimited.
func (ml *ModelLimiter) Remaining() int {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	if ml.max == 0 {
		return -1
	}

	return ml.max - ml.count
}
