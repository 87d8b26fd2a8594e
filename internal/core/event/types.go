package event

import (
	"github.com/gridwalk/gridwalk/internal/core/ecs"
	"github.com/gridwalk/gridwalk/internal/world"
)

// Movement events. Emitted by movement controllers, relayed to the
// visualizer and the log by the session.

type PathPreviewed struct {
	Agent  ecs.EntityID
	Target world.GridPos
	Path   []world.GridPos
}

type MovementStarted struct {
	Agent  ecs.EntityID
	Target world.GridPos
	Steps  int
}

type WaypointReached struct {
	Agent ecs.EntityID
	Pos   world.GridPos
	Index int
}

// StopReason says why an agent went back to Idle.
type StopReason uint8

const (
	StopArrived     StopReason = iota // final waypoint reached
	StopInterrupted                   // stop-after-next was armed
	StopBlocked                       // next waypoint occupied
	StopObstructed                    // next waypoint no longer passable
)

func (r StopReason) String() string {
	switch r {
	case StopArrived:
		return "arrived"
	case StopInterrupted:
		return "interrupted"
	case StopBlocked:
		return "blocked"
	case StopObstructed:
		return "obstructed"
	}
	return "unknown"
}

type MovementStopped struct {
	Agent  ecs.EntityID
	Pos    world.GridPos
	Reason StopReason
}

type MoveInterrupted struct {
	Agent ecs.EntityID
}

type TargetUnreachable struct {
	Agent  ecs.EntityID
	Target world.GridPos
}

type TileInteraction struct {
	Agent    ecs.EntityID
	Pos      world.GridPos
	Occupant world.Occupant
}

// Interaction outcomes, emitted by the interaction handler.

type ItemCollected struct {
	Agent ecs.EntityID
	Pos   world.GridPos
	Item  world.ItemRef
}

type EntityInteracted struct {
	Agent   ecs.EntityID
	Pos     world.GridPos
	Entity  world.EntityRef
	Message string
	Removed bool
}
