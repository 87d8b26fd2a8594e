package movement

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/gridwalk/gridwalk/internal/core/event"
	"github.com/gridwalk/gridwalk/internal/pathfind"
	"github.com/gridwalk/gridwalk/internal/world"
)

// DefaultArriveEpsilon is the distance in world units under which an agent
// counts as standing on its waypoint.
const DefaultArriveEpsilon float32 = 0.1

// Deps are a controller's collaborators. Finder and Tiles are required;
// the rest fall back to no-ops.
type Deps struct {
	Finder        PathFinder
	Tiles         TileReader
	Visualizer    Visualizer
	Interactor    Interactor
	Bus           *event.Bus
	Log           *zap.Logger
	ArriveEpsilon float32
}

// Controller is the movement state machine of one agent: the first click on
// a target previews a path, a second click on the same target walks it.
// Clicking while moving only arms a stop at the next waypoint.
type Controller struct {
	agent    *Agent
	body     Body
	finder   PathFinder
	tiles    TileReader
	vis      Visualizer
	interact Interactor
	bus      *event.Bus
	log      *zap.Logger
	epsilon  float32

	state         State
	path          pathfind.Path
	index         int
	target        world.GridPos
	stopAfterNext bool
	retreating    bool // heading back to path[index] after the way ahead closed
}

func NewController(agent *Agent, body Body, deps Deps) *Controller {
	c := &Controller{
		agent:    agent,
		body:     body,
		finder:   deps.Finder,
		tiles:    deps.Tiles,
		vis:      deps.Visualizer,
		interact: deps.Interactor,
		bus:      deps.Bus,
		log:      deps.Log,
		epsilon:  deps.ArriveEpsilon,
	}
	if c.vis == nil {
		c.vis = NopVisualizer{}
	}
	if c.interact == nil {
		c.interact = NopInteractor{}
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if c.epsilon <= 0 {
		c.epsilon = DefaultArriveEpsilon
	}
	return c
}

func (c *Controller) Agent() *Agent { return c.agent }
func (c *Controller) Body() Body    { return c.body }
func (c *Controller) State() State  { return c.state }

// Path returns a copy of the previewed or walked path; nil when idle.
func (c *Controller) Path() pathfind.Path {
	if c.path == nil {
		return nil
	}
	return append(pathfind.Path(nil), c.path...)
}

// Index is the waypoint currently being approached while moving.
func (c *Controller) Index() int { return c.index }

// Target is the destination of the current preview or walk.
func (c *Controller) Target() world.GridPos { return c.target }

func (c *Controller) StopAfterNext() bool { return c.stopAfterNext }

// RequestMove handles a click on target.
func (c *Controller) RequestMove(target world.GridPos) Result {
	if c.state == StateMoving {
		if !c.stopAfterNext {
			c.stopAfterNext = true
			emit(c, event.MoveInterrupted{Agent: c.agent.ID})
		}
		c.log.Debug("move interrupted, stopping at next waypoint",
			zap.String("agent", c.agent.Name), zap.Stringer("ignored_target", target))
		return ResultInterrupted
	}

	tile, err := c.tiles.At(target)
	if err != nil || !tile.Passable {
		c.log.Debug("invalid move target",
			zap.String("agent", c.agent.Name), zap.Stringer("target", target), zap.Error(err))
		return ResultInvalid
	}

	start := c.tiles.WorldToGrid(c.body.Position())
	path := c.finder.FindPath(start, target)
	if path.Empty() || !c.affordable(path) {
		c.log.Debug("target unreachable",
			zap.String("agent", c.agent.Name),
			zap.Stringer("from", start),
			zap.Stringer("target", target),
			zap.Int("path_len", len(path)),
			zap.Int("budget", c.agent.MovementBudget))
		emit(c, event.TargetUnreachable{Agent: c.agent.ID, Target: target})
		return ResultUnreachable
	}

	if c.state == StatePreviewing && c.target == target {
		changed := !slices.Equal(path, c.path)
		c.state = StateMoving
		c.path = path
		c.index = 0
		c.stopAfterNext = false
		if changed {
			c.vis.ClearPath(c.agent)
			c.vis.ShowPath(c.agent, c.points())
		}
		emit(c, event.MovementStarted{Agent: c.agent.ID, Target: target, Steps: len(path) - 1})
		c.log.Debug("movement started",
			zap.String("agent", c.agent.Name), zap.Stringer("target", target), zap.Int("steps", len(path)-1))
		return ResultStarted
	}

	c.state = StatePreviewing
	c.path = path
	c.index = 0
	c.target = target
	c.vis.ClearPath(c.agent)
	c.vis.ShowPath(c.agent, c.points())
	emit(c, event.PathPreviewed{Agent: c.agent.ID, Target: target, Path: c.Path()})
	return ResultPreviewed
}

// Cancel drops a preview. It reports false if there was nothing to cancel;
// a walk in progress is never cancelled here.
func (c *Controller) Cancel() bool {
	if c.state != StatePreviewing {
		return false
	}
	c.reset()
	return true
}

// affordable reports whether the walk fits the agent's budget. The agent
// stops one tile short of an occupied destination, so that tile is free.
func (c *Controller) affordable(path pathfind.Path) bool {
	if c.agent.MovementBudget == UnlimitedBudget {
		return true
	}
	steps := len(path) - 1
	if tile, err := c.tiles.At(path.Last()); err == nil && !tile.Occupant.IsEmpty() {
		steps--
	}
	return steps <= c.agent.MovementBudget
}

// Tick advances the walk by dt seconds and returns the horizontal velocity
// to apply to the body. It is zero whenever the agent is not moving.
func (c *Controller) Tick(dt float32) mgl32.Vec3 {
	if c.state != StateMoving {
		return mgl32.Vec3{}
	}
	if c.index >= len(c.path) {
		c.stop(event.StopArrived)
		return mgl32.Vec3{}
	}

	wp := c.path[c.index]
	if c.index > 0 && !c.retreating && !c.enterable(wp) {
		// The tile ahead closed while we were on our way; go back to the
		// waypoint we came from and stop there.
		c.log.Debug("waypoint closed, turning back",
			zap.String("agent", c.agent.Name), zap.Stringer("pos", wp))
		c.index--
		c.retreating = true
		wp = c.path[c.index]
	}
	pos := c.body.Position()
	goal := c.tiles.GridToWorld(wp, pos.Y())
	if horizontalDist(pos, goal) > c.epsilon {
		return c.velocityToward(pos, goal, dt)
	}
	return c.reach(wp, goal, dt)
}

// reach snaps onto waypoint wp and decides what comes next.
func (c *Controller) reach(wp world.GridPos, goal mgl32.Vec3, dt float32) mgl32.Vec3 {
	c.body.SetPosition(goal)
	c.agent.GridPosition = wp
	if c.retreating {
		c.stop(event.StopObstructed)
		return mgl32.Vec3{}
	}
	if c.index > 0 && c.agent.MovementBudget != UnlimitedBudget {
		c.agent.MovementBudget--
	}
	c.vis.ClearMarkers(c.agent, c.index)
	emit(c, event.WaypointReached{Agent: c.agent.ID, Pos: wp, Index: c.index})

	if c.index == len(c.path)-1 {
		c.stop(event.StopArrived)
		return mgl32.Vec3{}
	}
	if c.stopAfterNext {
		c.stop(event.StopInterrupted)
		return mgl32.Vec3{}
	}

	next := c.path[c.index+1]
	tile, err := c.tiles.At(next)
	if err == nil && !tile.Occupant.IsEmpty() {
		c.stop(event.StopBlocked)
		c.log.Debug("stopped before occupied tile",
			zap.String("agent", c.agent.Name), zap.Stringer("pos", next), zap.Stringer("occupant", tile.Occupant))
		emit(c, event.TileInteraction{Agent: c.agent.ID, Pos: next, Occupant: tile.Occupant})
		c.interact.OnTileInteraction(next, tile.Occupant, c.agent)
		return mgl32.Vec3{}
	}
	if err != nil || !tile.Passable {
		c.stop(event.StopObstructed)
		return mgl32.Vec3{}
	}

	c.index++
	return c.velocityToward(goal, c.tiles.GridToWorld(next, goal.Y()), dt)
}

// enterable reports whether an agent may still step onto pos.
func (c *Controller) enterable(pos world.GridPos) bool {
	tile, err := c.tiles.At(pos)
	return err == nil && tile.Traversable()
}

// velocityToward returns speed along the horizontal direction from pos to
// goal, shortened so that one tick of length dt never passes the goal.
func (c *Controller) velocityToward(pos, goal mgl32.Vec3, dt float32) mgl32.Vec3 {
	delta := mgl32.Vec3{goal.X() - pos.X(), 0, goal.Z() - pos.Z()}
	dist := delta.Len()
	if dist == 0 {
		return mgl32.Vec3{}
	}
	speed := c.agent.Speed
	if dt > 0 && speed*dt > dist {
		speed = dist / dt
	}
	return delta.Mul(speed / dist)
}

func (c *Controller) stop(reason event.StopReason) {
	c.log.Debug("movement stopped",
		zap.String("agent", c.agent.Name),
		zap.Stringer("pos", c.agent.GridPosition),
		zap.Stringer("reason", reason))
	c.reset()
	emit(c, event.MovementStopped{Agent: c.agent.ID, Pos: c.agent.GridPosition, Reason: reason})
}

func (c *Controller) reset() {
	c.state = StateIdle
	c.path = nil
	c.index = 0
	c.stopAfterNext = false
	c.retreating = false
	c.vis.ClearPath(c.agent)
}

func (c *Controller) points() []mgl32.Vec3 {
	y := c.body.Position().Y()
	out := make([]mgl32.Vec3, len(c.path))
	for i, p := range c.path {
		out[i] = c.tiles.GridToWorld(p, y)
	}
	return out
}

func emit[T any](c *Controller, ev T) {
	if c.bus != nil {
		event.Emit(c.bus, ev)
	}
}

func horizontalDist(a, b mgl32.Vec3) float32 {
	return mgl32.Vec2{a.X() - b.X(), a.Z() - b.Z()}.Len()
}
