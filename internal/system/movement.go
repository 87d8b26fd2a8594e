package system

import (
	"time"

	"github.com/gridwalk/gridwalk/internal/core/ecs"
	coresys "github.com/gridwalk/gridwalk/internal/core/system"
	"github.com/gridwalk/gridwalk/internal/movement"
	"github.com/gridwalk/gridwalk/internal/physics"
)

// MovementSystem ticks every agent's controller and hands the resulting
// velocity to its physics body. Phase 2 (Update).
type MovementSystem struct {
	controllers *ecs.Store[movement.Controller]
	bodies      *ecs.Store[physics.Body]
}

func NewMovementSystem(controllers *ecs.Store[movement.Controller], bodies *ecs.Store[physics.Body]) *MovementSystem {
	return &MovementSystem{controllers: controllers, bodies: bodies}
}

func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *MovementSystem) Update(dt time.Duration) {
	secs := float32(dt.Seconds())
	ecs.Each2(s.controllers, s.bodies, func(_ ecs.EntityID, c *movement.Controller, b *physics.Body) {
		b.SetVelocity(c.Tick(secs))
	})
}
