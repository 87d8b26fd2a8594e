package handler

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/gridwalk/gridwalk/internal/core/ecs"
	"github.com/gridwalk/gridwalk/internal/movement"
)

// HandleClick turns a pointer hit in world space into a move request for
// one agent. The first click on a tile previews, the second confirms.
func HandleClick(deps *Deps, agentID ecs.EntityID, hit mgl32.Vec3) movement.Result {
	ctrl, ok := deps.Agents.Controller(agentID)
	if !ok {
		deps.Log.Warn("click for unknown agent", zap.Stringer("agent", agentID))
		return movement.ResultInvalid
	}
	target := deps.Engine.Grid().WorldToGrid(hit)
	res := ctrl.RequestMove(target)

	deps.Log.Debug("click",
		zap.String("agent", ctrl.Agent().Name),
		zap.Stringer("target", target),
		zap.Stringer("result", res),
		zap.Stringer("state", ctrl.State()),
	)
	return res
}
