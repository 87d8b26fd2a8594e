package session

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/gridwalk/gridwalk/internal/config"
	"github.com/gridwalk/gridwalk/internal/core/ecs"
	"github.com/gridwalk/gridwalk/internal/core/event"
	coresys "github.com/gridwalk/gridwalk/internal/core/system"
	"github.com/gridwalk/gridwalk/internal/data"
	"github.com/gridwalk/gridwalk/internal/handler"
	"github.com/gridwalk/gridwalk/internal/movement"
	"github.com/gridwalk/gridwalk/internal/pathfind"
	"github.com/gridwalk/gridwalk/internal/physics"
	"github.com/gridwalk/gridwalk/internal/scripting"
	"github.com/gridwalk/gridwalk/internal/system"
	"github.com/gridwalk/gridwalk/internal/visual"
	"github.com/gridwalk/gridwalk/internal/world"
)

// Session is one loaded level: its grid and path graph, its agents, and the
// systems that advance them. A Session is not safe for concurrent use; the
// simulation goroutine owns it.
type Session struct {
	name   string
	cfg    *config.Config
	engine *pathfind.Engine
	ids    *world.IDAllocator
	bus    *event.Bus
	ecs    *ecs.World
	space  *physics.Space
	runner *coresys.Runner
	input  *system.InputSystem
	hub    *visual.Hub
	vis    movement.Visualizer
	deps   *handler.Deps
	log    *zap.Logger

	controllers *ecs.Store[movement.Controller]
	bodies      *ecs.Store[physics.Body]
	inventories *ecs.Store[handler.Inventory]

	stats Stats
}

// Stats summarizes what New loaded.
type Stats struct {
	Tiles        int
	Nodes        int
	Edges        int
	BlockedKnown int
	Items        int
	Entities     int
	Agents       int
	Skipped      int
}

// New builds a session from a level. scripts and hub may be nil; without a
// hub no renderer messages are sent.
func New(level *data.Level, cfg *config.Config, scripts *scripting.Engine, hub *visual.Hub, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg == nil {
		cfg = config.Default()
	}
	grid, err := level.BuildGrid()
	if err != nil {
		return nil, fmt.Errorf("build grid for level %q: %w", level.Name, err)
	}

	s := &Session{
		name:        level.Name,
		cfg:         cfg,
		engine:      pathfind.NewEngine(log),
		ids:         world.NewIDAllocator(),
		bus:         event.NewBus(),
		ecs:         ecs.NewWorld(),
		space:       physics.NewSpace(),
		runner:      coresys.NewRunner(),
		hub:         hub,
		vis:         movement.NopVisualizer{},
		log:         log.With(zap.String("level", level.Name)),
		controllers: ecs.NewStore[movement.Controller](),
		bodies:      ecs.NewStore[physics.Body](),
		inventories: ecs.NewStore[handler.Inventory](),
	}
	if hub != nil {
		s.vis = visual.NewVisualizer(hub)
	}
	s.ecs.Register(s.controllers, s.bodies, s.inventories)
	s.ecs.OnDestroy(s.releaseAgent)

	if err := s.engine.Initialize(grid); err != nil {
		return nil, fmt.Errorf("initialize pathfinding: %w", err)
	}

	s.deps = &handler.Deps{
		Engine:    s.engine,
		Scripting: scripts,
		Agents:    s,
		IDs:       s.ids,
		Bus:       s.bus,
		Log:       s.log,
	}

	s.stats = s.populate(level)
	stats := s.stats

	s.input = system.NewInputSystem(s.deps, 0)
	for _, sys := range []coresys.System{
		s.input,
		system.NewEventDispatchSystem(s.bus),
		system.NewMovementSystem(s.controllers, s.bodies),
		system.NewPhysicsSystem(s.space),
		system.NewCleanupSystem(s.ecs, s.log),
	} {
		if err := s.runner.Register(sys); err != nil {
			return nil, fmt.Errorf("build runner: %w", err)
		}
	}
	s.relayEvents()

	s.log.Info("level loaded",
		zap.Int("width", grid.Width()),
		zap.Int("height", grid.Height()),
		zap.Int("nodes", stats.Nodes),
		zap.Int("edges", stats.Edges),
		zap.Int("items", stats.Items),
		zap.Int("entities", stats.Entities),
		zap.Int("agents", stats.Agents),
		zap.Int("skipped", stats.Skipped),
	)
	return s, nil
}

// populate applies decorations, places level objects and spawns agents.
// Objects that fall outside the grid or onto a taken tile are skipped.
func (s *Session) populate(level *data.Level) Stats {
	var st Stats
	for _, d := range level.Decorations {
		blocked, err := s.engine.BlockFootprint(d.CenterVec(), d.SizeVec())
		if err != nil {
			s.log.Warn("decoration skipped", zap.String("name", d.Name), zap.Error(err))
			st.Skipped++
			continue
		}
		s.log.Debug("decoration placed", zap.String("name", d.Name), zap.Int("tiles", len(blocked)))
	}

	for _, it := range level.Items {
		ref := it.ItemRef(s.ids.NextItemID())
		if s.place(it.Pos(), world.Pickable(ref)) {
			st.Items++
		} else {
			st.Skipped++
		}
	}
	for _, e := range level.Entities {
		ref := e.EntityRef(s.ids.NextEntityID())
		if s.place(e.Pos(), world.Interactable(ref)) {
			st.Entities++
		} else {
			st.Skipped++
		}
	}

	for _, a := range level.Agents {
		speed := a.Speed
		if speed <= 0 {
			speed = s.cfg.Movement.Speed
		}
		budget := s.cfg.Movement.MovementBudget
		if a.Budget != nil {
			budget = *a.Budget
		}
		if _, err := s.SpawnAgent(a.Name, a.Pos(), speed, budget); err != nil {
			s.log.Warn("agent skipped", zap.String("name", a.Name), zap.Error(err))
			st.Skipped++
			continue
		}
		st.Agents++
	}

	st.Tiles = s.engine.Grid().Len()
	st.Nodes = s.engine.Graph().NodeCount()
	st.Edges = s.engine.Graph().EdgeCount()
	st.BlockedKnown = s.engine.Graph().BlockedKnownCount()
	return st
}

func (s *Session) place(pos world.GridPos, occ world.Occupant) bool {
	if err := s.engine.PlaceOccupant(pos, occ); err != nil {
		s.log.Warn("level object skipped", zap.Stringer("occupant", occ), zap.Stringer("pos", pos), zap.Error(err))
		return false
	}
	return true
}

// SpawnAgent creates an agent standing on pos.
func (s *Session) SpawnAgent(name string, pos world.GridPos, speed float32, budget int) (ecs.EntityID, error) {
	tile, err := s.engine.Grid().At(pos)
	if err != nil {
		return 0, err
	}
	if !tile.Traversable() {
		return 0, fmt.Errorf("spawn %s on %s: tile not walkable", name, pos)
	}

	id := s.ecs.CreateEntity()
	agent := &movement.Agent{
		ID:             id,
		Name:           name,
		GridPosition:   pos,
		Speed:          speed,
		MovementBudget: budget,
	}
	body := s.space.NewBody(s.engine.Grid().GridToWorld(pos, 0))
	ctrl := movement.NewController(agent, body, movement.Deps{
		Finder:        s.engine,
		Tiles:         s.engine.Grid(),
		Visualizer:    s.vis,
		Interactor:    handler.NewInteraction(s.deps),
		Bus:           s.bus,
		Log:           s.log,
		ArriveEpsilon: s.cfg.Movement.ArriveEpsilon,
	})
	s.controllers.Set(id, ctrl)
	s.bodies.Set(id, body)
	s.inventories.Set(id, handler.NewInventory())

	s.log.Debug("agent spawned", zap.String("name", name), zap.Stringer("id", id), zap.Stringer("pos", pos))
	return id, nil
}

// RemoveAgent takes an agent out of the simulation. Its body leaves the
// space at once; the rest goes at the end of the current tick.
func (s *Session) RemoveAgent(id ecs.EntityID) bool {
	if !s.controllers.Has(id) || !s.ecs.MarkForDestruction(id) {
		return false
	}
	if body, ok := s.bodies.Get(id); ok {
		s.space.Remove(body)
		s.bodies.Remove(id)
	}
	return true
}

// releaseAgent runs as a destroy hook while the agent's components still exist.
func (s *Session) releaseAgent(id ecs.EntityID) {
	ctrl, ok := s.controllers.Get(id)
	if !ok {
		return
	}
	agent := ctrl.Agent()
	s.vis.ClearPath(agent)
	s.log.Debug("agent removed", zap.String("name", agent.Name), zap.Stringer("id", id), zap.Stringer("pos", agent.GridPosition))
}

// Click queues a pointer hit for agent. It is handled in the next tick's
// input phase.
func (s *Session) Click(agent ecs.EntityID, hit mgl32.Vec3) {
	s.input.Push(system.Click{Agent: agent, Hit: hit})
}

// ClickTile queues a click on the centre of a grid cell.
func (s *Session) ClickTile(agent ecs.EntityID, pos world.GridPos) {
	s.Click(agent, s.engine.Grid().GridToWorld(pos, 0))
}

// OnClickResult registers a callback that sees every handled click.
func (s *Session) OnClickResult(fn func(system.Click, movement.Result)) {
	s.input.OnResult(fn)
}

// Tick runs one simulation step.
func (s *Session) Tick(dt time.Duration) {
	if s.hub != nil {
		s.hub.SetTick(s.runner.Ticks() + 1)
	}
	s.runner.Tick(dt)
}

// Ticks returns the number of steps run so far.
func (s *Session) Ticks() uint64 { return s.runner.Ticks() }

// PlaceItem puts a resource item named name on pos.
func (s *Session) PlaceItem(pos world.GridPos, name string) (world.ItemRef, error) {
	ref := world.ItemRef{ID: s.ids.NextItemID(), Name: name, Kind: world.ItemResource, Amount: 1}
	if err := s.engine.PlaceOccupant(pos, world.Pickable(ref)); err != nil {
		return world.ItemRef{}, err
	}
	return ref, nil
}

// ClearTile removes whatever occupies pos.
func (s *Session) ClearTile(pos world.GridPos) (world.Occupant, error) {
	return s.engine.ClearOccupant(pos)
}

// SetPassable changes a tile's runtime passability and resyncs the graph.
func (s *Session) SetPassable(pos world.GridPos, passable bool) error {
	return s.engine.UpdateTileState(pos, passable)
}

func (s *Session) Stats() Stats                    { return s.stats }
func (s *Session) Name() string                    { return s.name }
func (s *Session) Engine() *pathfind.Engine        { return s.engine }
func (s *Session) Grid() *world.TileGrid           { return s.engine.Grid() }
func (s *Session) Bus() *event.Bus                 { return s.bus }
func (s *Session) Space() *physics.Space           { return s.space }
func (s *Session) IDs() *world.IDAllocator         { return s.ids }
func (s *Session) Deps() *handler.Deps             { return s.deps }
func (s *Session) Agents() []ecs.EntityID          { return s.controllers.IDs() }
func (s *Session) Config() *config.Config          { return s.cfg }
func (s *Session) Visualizer() movement.Visualizer { return s.vis }

// Agent returns the agent with the given id.
func (s *Session) Agent(id ecs.EntityID) (*movement.Agent, bool) {
	c, ok := s.controllers.Get(id)
	if !ok {
		return nil, false
	}
	return c.Agent(), true
}

// AgentByName returns the first agent called name.
func (s *Session) AgentByName(name string) (ecs.EntityID, bool) {
	var found ecs.EntityID
	s.controllers.Each(func(id ecs.EntityID, c *movement.Controller) {
		if found == 0 && c.Agent().Name == name {
			found = id
		}
	})
	return found, found != 0
}

func (s *Session) Controller(id ecs.EntityID) (*movement.Controller, bool) {
	return s.controllers.Get(id)
}

// Inventory returns an agent's inventory, creating one if needed.
func (s *Session) Inventory(id ecs.EntityID) *handler.Inventory {
	if inv, ok := s.inventories.Get(id); ok {
		return inv
	}
	inv := handler.NewInventory()
	s.inventories.Set(id, inv)
	return inv
}

func (s *Session) Body(id ecs.EntityID) (*physics.Body, bool) {
	return s.bodies.Get(id)
}

var _ handler.Agents = (*Session)(nil)
