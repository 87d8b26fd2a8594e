package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/gridwalk/gridwalk/internal/core/ecs"
	coresys "github.com/gridwalk/gridwalk/internal/core/system"
)

// CleanupSystem destroys the entities marked during the tick, running the
// world's destroy hooks first. Phase 4 (Cleanup).
type CleanupSystem struct {
	world     *ecs.World
	log       *zap.Logger
	destroyed int
}

func NewCleanupSystem(world *ecs.World, log *zap.Logger) *CleanupSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &CleanupSystem{world: world, log: log}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

// Destroyed is the running total of entities this system has flushed.
func (s *CleanupSystem) Destroyed() int { return s.destroyed }

func (s *CleanupSystem) Update(_ time.Duration) {
	ids := s.world.FlushDestroyQueue()
	if len(ids) == 0 {
		return
	}
	s.destroyed += len(ids)
	s.log.Debug("entities destroyed",
		zap.Stringers("ids", ids),
		zap.Int("total", s.destroyed))
}
