package handler

import (
	"go.uber.org/zap"

	"github.com/gridwalk/gridwalk/internal/core/event"
	"github.com/gridwalk/gridwalk/internal/movement"
	"github.com/gridwalk/gridwalk/internal/scripting"
	"github.com/gridwalk/gridwalk/internal/world"
)

// Interaction is the movement.Interactor of a session. It runs when an agent
// stops next to an occupied tile.
type Interaction struct {
	deps *Deps
}

func NewInteraction(deps *Deps) *Interaction {
	return &Interaction{deps: deps}
}

var _ movement.Interactor = (*Interaction)(nil)

func (h *Interaction) OnTileInteraction(pos world.GridPos, occ world.Occupant, agent *movement.Agent) {
	switch occ.Kind {
	case world.OccupantEmpty:
		return
	case world.OccupantPickable:
		h.pickUp(pos, occ.Item, agent)
	case world.OccupantInteractable:
		h.interact(pos, occ.Entity, agent)
	default:
		h.deps.Log.Warn("unknown occupant kind", zap.Stringer("kind", occ.Kind), zap.Stringer("pos", pos))
	}
}

func (h *Interaction) pickUp(pos world.GridPos, item world.ItemRef, agent *movement.Agent) {
	if _, err := h.deps.Engine.ClearOccupant(pos); err != nil {
		h.deps.Log.Error("pick up failed", zap.String("item", item.Name), zap.Stringer("pos", pos), zap.Error(err))
		return
	}
	h.deps.Agents.Inventory(agent.ID).Add(item)
	if item.SpeedMultiplier > 0 {
		agent.Speed *= item.SpeedMultiplier
	}

	h.deps.Log.Info("item picked up",
		zap.String("agent", agent.Name),
		zap.String("item", item.Name),
		zap.Int32("amount", item.Amount),
		zap.Float32("speed", agent.Speed),
	)
	if h.deps.Bus != nil {
		event.Emit(h.deps.Bus, event.ItemCollected{Agent: agent.ID, Pos: pos, Item: item})
	}
}

func (h *Interaction) interact(pos world.GridPos, entity world.EntityRef, agent *movement.Agent) {
	var res scripting.InteractResult
	if h.deps.Scripting != nil && entity.Script != "" {
		res = h.deps.Scripting.Interact(entity.Script, scripting.InteractContext{
			EntityID:   entity.ID,
			EntityName: entity.Name,
			AgentID:    uint64(agent.ID),
			AgentName:  agent.Name,
			X:          pos.X,
			Z:          pos.Z,
		})
	}

	inv := h.deps.Agents.Inventory(agent.ID)
	for _, g := range res.Give {
		inv.Add(world.ItemRef{
			ID:     h.deps.IDs.NextItemID(),
			Name:   g.Name,
			Kind:   world.ItemResource,
			Amount: g.Amount,
		})
	}
	if res.Remove {
		if _, err := h.deps.Engine.ClearOccupant(pos); err != nil {
			h.deps.Log.Error("remove entity failed", zap.String("entity", entity.Name), zap.Error(err))
			res.Remove = false
		}
	}

	h.deps.Log.Info("entity interaction",
		zap.String("agent", agent.Name),
		zap.String("entity", entity.Name),
		zap.String("message", res.Message),
		zap.Bool("removed", res.Remove),
	)
	if h.deps.Bus != nil {
		event.Emit(h.deps.Bus, event.EntityInteracted{
			Agent:   agent.ID,
			Pos:     pos,
			Entity:  entity,
			Message: res.Message,
			Removed: res.Remove,
		})
	}
}
