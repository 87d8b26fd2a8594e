package pathfind

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/gridwalk/gridwalk/internal/world"
)

var (
	// ErrNotInitialized is returned (or panicked with, from FindPath) when the
	// engine is used before Initialize.
	ErrNotInitialized = errors.New("pathfinding engine not initialized")
	ErrTileTaken      = errors.New("tile already taken")
	ErrNilGrid        = errors.New("nil tile grid")
)

// Engine keeps a navigation graph in sync with one TileGrid and answers path
// queries over it. One Engine per level; it is not safe for concurrent use.
type Engine struct {
	grid  *world.TileGrid
	graph *Graph
	log   *zap.Logger
}

func NewEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{log: log}
}

// Initialize builds the graph from scratch. Every traversable tile becomes a
// node linked to its neighbours; occupied passable tiles are remembered as
// blocked-but-known destinations.
func (e *Engine) Initialize(grid *world.TileGrid) error {
	if grid == nil {
		return ErrNilGrid
	}
	g := newGraph(grid.Width(), grid.Height())
	grid.Each(func(pos world.GridPos, t world.Tile) {
		switch {
		case t.Traversable():
			g.addNode(pos, t.MovementCost)
		case t.Interactable():
			g.blocked.Put(g.id(pos))
		}
	})
	for _, n := range g.nodes {
		g.relink(n.pos)
	}
	e.grid = grid
	e.graph = g
	e.log.Debug("path graph built",
		zap.Int("width", grid.Width()),
		zap.Int("height", grid.Height()),
		zap.Int("nodes", g.NodeCount()),
		zap.Int("edges", g.EdgeCount()),
		zap.Int("blocked", g.BlockedKnownCount()))
	return nil
}

// Grid returns the grid the engine was initialized with, or nil.
func (e *Engine) Grid() *world.TileGrid { return e.grid }

// Graph exposes the navigation graph for inspection.
func (e *Engine) Graph() *Graph { return e.graph }

func (e *Engine) ready() error {
	if e.graph == nil {
		return ErrNotInitialized
	}
	return nil
}

// UpdateTileState is called whenever passability at pos changes. For an
// empty tile the grid's passable flag is set to passableNow. For an occupied
// tile the occupant wins: the tile never becomes a node, and it stays a
// blocked-but-known destination while its terrain is passable. Repeated calls
// with the same value leave the graph unchanged.
func (e *Engine) UpdateTileState(pos world.GridPos, passableNow bool) error {
	if err := e.ready(); err != nil {
		return fmt.Errorf("update tile %s: %w", pos, err)
	}
	t, err := e.grid.At(pos)
	if err != nil {
		return fmt.Errorf("update tile: %w", err)
	}
	if t.Occupant.IsEmpty() && t.Passable != passableNow {
		if err := e.grid.SetPassable(pos.X, pos.Z, passableNow); err != nil {
			return fmt.Errorf("update tile: %w", err)
		}
	} else if !t.Occupant.IsEmpty() && passableNow {
		e.log.Debug("tile still occupied, keeping it out of the graph",
			zap.Stringer("pos", pos), zap.Stringer("occupant", t.Occupant))
	}
	e.sync(pos)
	return nil
}

// sync makes the graph agree with the tile at pos.
func (e *Engine) sync(pos world.GridPos) {
	t, err := e.grid.At(pos)
	if err != nil {
		return
	}
	g := e.graph
	id := g.id(pos)
	if t.Interactable() {
		g.blocked.Put(id)
	} else {
		g.blocked.Remove(id)
	}

	if t.Traversable() {
		if g.addNode(pos, t.MovementCost) {
			g.relinkAround(pos)
			e.log.Debug("node added", zap.Stringer("pos", pos))
		}
		return
	}
	if g.removeNode(pos) {
		g.relinkAround(pos)
		e.log.Debug("node removed", zap.Stringer("pos", pos))
	}
}

// FindPath returns the cheapest path from start to end, both inclusive. An
// empty Path means unreachable: out of bounds, no node at start, or an end
// that is neither a node nor blocked-but-known. A blocked-but-known end is
// joined to the graph for the duration of the search only.
//
// FindPath panics if called before Initialize.
func (e *Engine) FindPath(start, end world.GridPos) Path {
	if err := e.ready(); err != nil {
		panic(fmt.Errorf("find path %s->%s: %w", start, end, err))
	}
	g := e.graph
	if !g.inBounds(start) || !g.inBounds(end) || !g.has(start) {
		return nil
	}
	if !g.has(end) {
		if !g.IsBlockedKnown(end) {
			return nil
		}
		t, err := e.grid.At(end)
		if err != nil {
			return nil
		}
		// Only the edges touching end are created, so end never serves as a
		// diagonal corner for its neighbours and removal restores them exactly.
		g.addNode(end, t.MovementCost)
		g.relink(end)
		defer g.removeNode(end)
	}

	path := g.search(start, end)
	e.log.Debug("path query",
		zap.Stringer("from", start),
		zap.Stringer("to", end),
		zap.Int("length", len(path)))
	return path
}

// PlaceOccupant puts occ on the tile at pos and updates the graph.
func (e *Engine) PlaceOccupant(pos world.GridPos, occ world.Occupant) error {
	if err := e.ready(); err != nil {
		return fmt.Errorf("place %s: %w", occ, err)
	}
	t, err := e.grid.At(pos)
	if err != nil {
		return fmt.Errorf("place %s: %w", occ, err)
	}
	if !t.Occupant.IsEmpty() {
		return fmt.Errorf("place %s at %s: %w by %s", occ, pos, ErrTileTaken, t.Occupant)
	}
	if err := e.grid.SetOccupant(pos.X, pos.Z, occ); err != nil {
		return fmt.Errorf("place %s: %w", occ, err)
	}
	return e.UpdateTileState(pos, false)
}

// ClearOccupant removes whatever sits on pos, returns it and restores the
// tile's node if the terrain is passable.
func (e *Engine) ClearOccupant(pos world.GridPos) (world.Occupant, error) {
	if err := e.ready(); err != nil {
		return world.Empty, fmt.Errorf("clear %s: %w", pos, err)
	}
	t, err := e.grid.At(pos)
	if err != nil {
		return world.Empty, fmt.Errorf("clear occupant: %w", err)
	}
	if err := e.grid.SetOccupant(pos.X, pos.Z, world.Empty); err != nil {
		return world.Empty, fmt.Errorf("clear occupant: %w", err)
	}
	if err := e.UpdateTileState(pos, t.Passable); err != nil {
		return world.Empty, err
	}
	return t.Occupant, nil
}

// BlockFootprint marks the tiles under a decoration of the given world size
// impassable and drops their nodes. It returns the tiles that changed.
func (e *Engine) BlockFootprint(center, size mgl32.Vec3) ([]world.GridPos, error) {
	if err := e.ready(); err != nil {
		return nil, fmt.Errorf("block footprint: %w", err)
	}
	changed := e.grid.MarkFootprint(center, size)
	for _, pos := range changed {
		e.sync(pos)
	}
	return changed, nil
}

// SetTileType changes terrain at pos, resetting its passability and cost.
func (e *Engine) SetTileType(pos world.GridPos, t world.TileType) error {
	if err := e.ready(); err != nil {
		return fmt.Errorf("set tile type: %w", err)
	}
	if err := e.grid.SetType(pos.X, pos.Z, t); err != nil {
		return fmt.Errorf("set tile type: %w", err)
	}
	// A cost change on an existing node does not alter the edge set.
	e.sync(pos)
	return nil
}
