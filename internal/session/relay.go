package session

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gridwalk/gridwalk/internal/core/event"
)

// Renderer event names for relayed bus events.
const (
	EventPathPreviewed     = "path_previewed"
	EventMovementStarted   = "movement_started"
	EventWaypointReached   = "waypoint_reached"
	EventMovementStopped   = "movement_stopped"
	EventMoveInterrupted   = "move_interrupted"
	EventTargetUnreachable = "target_unreachable"
	EventTileInteraction   = "tile_interaction"
	EventItemCollected     = "item_collected"
	EventEntityInteracted  = "entity_interacted"
)

// relayEvents forwards bus events to the log and, when a hub is attached,
// to connected renderers.
func (s *Session) relayEvents() {
	relay(s, EventPathPreviewed, zapcore.DebugLevel, func(e event.PathPreviewed) []zap.Field {
		return []zap.Field{zap.Stringer("agent", e.Agent), zap.Stringer("target", e.Target), zap.Int("len", len(e.Path))}
	})
	relay(s, EventMovementStarted, zapcore.InfoLevel, func(e event.MovementStarted) []zap.Field {
		return []zap.Field{zap.Stringer("agent", e.Agent), zap.Stringer("target", e.Target), zap.Int("steps", e.Steps)}
	})
	relay(s, EventWaypointReached, zapcore.DebugLevel, func(e event.WaypointReached) []zap.Field {
		return []zap.Field{zap.Stringer("agent", e.Agent), zap.Stringer("pos", e.Pos), zap.Int("index", e.Index)}
	})
	relay(s, EventMovementStopped, zapcore.InfoLevel, func(e event.MovementStopped) []zap.Field {
		return []zap.Field{zap.Stringer("agent", e.Agent), zap.Stringer("pos", e.Pos), zap.Stringer("reason", e.Reason)}
	})
	relay(s, EventMoveInterrupted, zapcore.InfoLevel, func(e event.MoveInterrupted) []zap.Field {
		return []zap.Field{zap.Stringer("agent", e.Agent)}
	})
	relay(s, EventTargetUnreachable, zapcore.InfoLevel, func(e event.TargetUnreachable) []zap.Field {
		return []zap.Field{zap.Stringer("agent", e.Agent), zap.Stringer("target", e.Target)}
	})
	relay(s, EventTileInteraction, zapcore.DebugLevel, func(e event.TileInteraction) []zap.Field {
		return []zap.Field{zap.Stringer("agent", e.Agent), zap.Stringer("pos", e.Pos), zap.Stringer("occupant", e.Occupant)}
	})
	relay(s, EventItemCollected, zapcore.InfoLevel, func(e event.ItemCollected) []zap.Field {
		return []zap.Field{zap.Stringer("agent", e.Agent), zap.String("item", e.Item.Name), zap.Int32("amount", e.Item.Amount)}
	})
	relay(s, EventEntityInteracted, zapcore.InfoLevel, func(e event.EntityInteracted) []zap.Field {
		return []zap.Field{zap.Stringer("agent", e.Agent), zap.String("entity", e.Entity.Name), zap.String("message", e.Message), zap.Bool("removed", e.Removed)}
	})
}

func relay[T any](s *Session, name string, lvl zapcore.Level, fields func(T) []zap.Field) {
	event.Subscribe(s.bus, func(e T) {
		if ce := s.log.Check(lvl, name); ce != nil {
			ce.Write(fields(e)...)
		}
		if s.hub != nil {
			s.hub.Publish(name, e)
		}
	})
}
