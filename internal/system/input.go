package system

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/gridwalk/gridwalk/internal/core/ecs"
	coresys "github.com/gridwalk/gridwalk/internal/core/system"
	"github.com/gridwalk/gridwalk/internal/handler"
	"github.com/gridwalk/gridwalk/internal/movement"
)

// Click is a pointer hit in world space aimed at one agent.
type Click struct {
	Agent ecs.EntityID
	Hit   mgl32.Vec3
}

// InputSystem drains queued clicks and dispatches them through the click
// handler. Phase 0 (Input).
type InputSystem struct {
	deps       *handler.Deps
	queue      []Click
	maxPerTick int
	results    func(Click, movement.Result)
}

// NewInputSystem creates the input system. maxPerTick <= 0 means no limit;
// clicks over the limit wait for the next tick.
func NewInputSystem(deps *handler.Deps, maxPerTick int) *InputSystem {
	return &InputSystem{
		deps:       deps,
		queue:      make([]Click, 0, 8),
		maxPerTick: maxPerTick,
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

// Push queues a click for the next Input phase.
func (s *InputSystem) Push(c Click) {
	s.queue = append(s.queue, c)
}

// Pending returns the number of queued clicks.
func (s *InputSystem) Pending() int { return len(s.queue) }

// OnResult registers a callback invoked with every handled click.
func (s *InputSystem) OnResult(fn func(Click, movement.Result)) {
	s.results = fn
}

func (s *InputSystem) Update(_ time.Duration) {
	n := len(s.queue)
	if s.maxPerTick > 0 && n > s.maxPerTick {
		n = s.maxPerTick
		s.deps.Log.Debug("click backlog", zap.Int("deferred", len(s.queue)-n))
	}
	for _, c := range s.queue[:n] {
		res := handler.HandleClick(s.deps, c.Agent, c.Hit)
		if s.results != nil {
			s.results(c, res)
		}
	}
	s.queue = append(s.queue[:0], s.queue[n:]...)
}
