package system

import (
	"time"

	coresys "github.com/gridwalk/gridwalk/internal/core/system"
	"github.com/gridwalk/gridwalk/internal/physics"
)

// PhysicsSystem integrates body velocities. Phase 3 (PostUpdate).
type PhysicsSystem struct {
	space *physics.Space
}

func NewPhysicsSystem(space *physics.Space) *PhysicsSystem {
	return &PhysicsSystem{space: space}
}

func (s *PhysicsSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *PhysicsSystem) Update(dt time.Duration) {
	s.space.Step(float32(dt.Seconds()))
}
