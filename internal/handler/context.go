package handler

import (
	"go.uber.org/zap"

	"github.com/gridwalk/gridwalk/internal/core/ecs"
	"github.com/gridwalk/gridwalk/internal/core/event"
	"github.com/gridwalk/gridwalk/internal/movement"
	"github.com/gridwalk/gridwalk/internal/pathfind"
	"github.com/gridwalk/gridwalk/internal/scripting"
	"github.com/gridwalk/gridwalk/internal/world"
)

// Agents resolves per-agent state owned by the session.
type Agents interface {
	Controller(id ecs.EntityID) (*movement.Controller, bool)
	Inventory(id ecs.EntityID) *Inventory
}

// Deps holds shared dependencies injected into input and interaction handlers.
type Deps struct {
	Engine    *pathfind.Engine
	Scripting *scripting.Engine // nil disables entity scripts
	Agents    Agents
	IDs       *world.IDAllocator
	Bus       *event.Bus
	Log       *zap.Logger
}
