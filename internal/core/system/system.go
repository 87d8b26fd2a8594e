package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: drain click queue
	PhasePreUpdate               // 1: deliver last tick's events
	PhaseUpdate                  // 2: movement controllers
	PhasePostUpdate              // 3: physics step
	PhaseCleanup                 // 4: destroy queued entities

	numPhases
)

// Valid reports whether p is one of the phases above.
func (p Phase) Valid() bool { return p >= PhaseInput && p < numPhases }

// System is the interface every ECS system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
