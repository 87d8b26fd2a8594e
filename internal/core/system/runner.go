package system

import (
	"fmt"
	"time"
)

// Runner drives one simulation tick: every phase in order, and within a
// phase the systems in the order they were registered.
type Runner struct {
	phases [numPhases][]System
	ticks  uint64
}

func NewRunner() *Runner {
	return &Runner{}
}

// Register adds s to the bucket of its phase. Systems reporting an unknown
// phase are rejected.
func (r *Runner) Register(s System) error {
	p := s.Phase()
	if !p.Valid() {
		return fmt.Errorf("register %T: unknown phase %d", s, p)
	}
	r.phases[p] = append(r.phases[p], s)
	return nil
}

// Tick runs every phase once and counts the tick.
func (r *Runner) Tick(dt time.Duration) {
	for p := range r.phases {
		r.run(Phase(p), dt)
	}
	r.ticks++
}

// TickPhase runs only the systems of one phase. It does not count as a tick.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	if phase.Valid() {
		r.run(phase, dt)
	}
}

// Ticks is the number of completed full ticks.
func (r *Runner) Ticks() uint64 { return r.ticks }

// Len is the number of registered systems.
func (r *Runner) Len() int {
	n := 0
	for _, b := range r.phases {
		n += len(b)
	}
	return n
}

func (r *Runner) run(p Phase, dt time.Duration) {
	for _, s := range r.phases[p] {
		s.Update(dt)
	}
}
