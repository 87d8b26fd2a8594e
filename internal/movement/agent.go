package movement

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gridwalk/gridwalk/internal/core/ecs"
	"github.com/gridwalk/gridwalk/internal/pathfind"
	"github.com/gridwalk/gridwalk/internal/world"
)

// UnlimitedBudget disables the per-agent step cap.
const UnlimitedBudget = -1

// Agent is the movable actor a controller drives.
type Agent struct {
	ID           ecs.EntityID
	Name         string
	GridPosition world.GridPos
	Speed        float32 // world units per second
	// MovementBudget caps the number of steps the agent may still take.
	// Each waypoint reached past the starting tile costs one.
	MovementBudget int
}

// State is the movement state of one agent.
type State uint8

const (
	StateIdle State = iota
	StatePreviewing
	StateMoving
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePreviewing:
		return "previewing"
	case StateMoving:
		return "moving"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// Result tells the input layer what a RequestMove did.
type Result uint8

const (
	ResultInvalid     Result = iota // target out of bounds or impassable
	ResultUnreachable               // no path, or path longer than the budget
	ResultPreviewed                 // path computed and shown, not moving
	ResultStarted                   // preview confirmed, now moving
	ResultInterrupted               // already moving, will stop at the next waypoint
)

func (r Result) String() string {
	switch r {
	case ResultInvalid:
		return "invalid"
	case ResultUnreachable:
		return "unreachable"
	case ResultPreviewed:
		return "previewed"
	case ResultStarted:
		return "started"
	case ResultInterrupted:
		return "interrupted"
	}
	return fmt.Sprintf("result(%d)", uint8(r))
}

// Body is the agent's physical presence. The controller reads its position
// and snaps it onto waypoints; integrating velocity is the owner's job.
type Body interface {
	Position() mgl32.Vec3
	SetPosition(mgl32.Vec3)
}

type PathFinder interface {
	FindPath(start, end world.GridPos) pathfind.Path
}

// TileReader is the read side of the tile grid.
type TileReader interface {
	At(pos world.GridPos) (world.Tile, error)
	WorldToGrid(pos mgl32.Vec3) world.GridPos
	GridToWorld(pos world.GridPos, y float32) mgl32.Vec3
}

// Visualizer draws path markers. upTo in ClearMarkers is the index of the
// waypoint just reached; markers at or before it go away.
type Visualizer interface {
	ShowPath(agent *Agent, points []mgl32.Vec3)
	ClearMarkers(agent *Agent, upTo int)
	ClearPath(agent *Agent)
}

// Interactor is called when movement halts next to an occupied tile.
type Interactor interface {
	OnTileInteraction(pos world.GridPos, occ world.Occupant, agent *Agent)
}

type NopVisualizer struct{}

func (NopVisualizer) ShowPath(*Agent, []mgl32.Vec3) {}
func (NopVisualizer) ClearMarkers(*Agent, int)      {}
func (NopVisualizer) ClearPath(*Agent)              {}

type NopInteractor struct{}

func (NopInteractor) OnTileInteraction(world.GridPos, world.Occupant, *Agent) {}
