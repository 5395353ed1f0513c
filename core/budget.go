package core

import (
	"fmt"
	"sync"
)

// CallBudget enforces the agent calls declared by a run's static plan: a
// total cap plus optional caps per run state (e.g. one synthesizer call).
// It is safe for concurrent use so fan-out branches may share it.
type CallBudget struct {
	mu     sync.Mutex
	max    int
	total  int
	limits map[State]int
	used   map[State]int
}

// NewCallBudget creates a budget allowing at most max calls in total
// (0 = unlimited).
func NewCallBudget(max int) *CallBudget {
	return &CallBudget{max: max, limits: map[State]int{}, used: map[State]int{}}
}

// Limit caps the calls charged while the run is in state.
func (b *CallBudget) Limit(state State, n int) *CallBudget {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.limits[state] = n
	return b
}

// Charge records one call made in state. A call over either cap is refused
// with ErrPlanExceeded and not counted.
func (b *CallBudget) Charge(state State) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.max > 0 && b.total >= b.max {
		return fmt.Errorf("%w: max %d calls", ErrPlanExceeded, b.max)
	}

	if n, ok := b.limits[state]; ok && b.used[state] >= n {
		return fmt.Errorf("%w: max %d calls in state %s", ErrPlanExceeded, n, state)
	}

	b.total++
	b.used[state]++

	return nil
}

// Count returns the number of calls charged so far.
func (b *CallBudget) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.total
}

// CountIn returns the number of calls charged in state.
func (b *CallBudget) CountIn(state State) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.used[state]
}

// Remaining returns how many calls are left in total, or -1 when unlimited.
func (b *CallBudget) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.max == 0 {
		return -1
	}
	return b.max - b.total
}
