package pathfind

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gridwalk/gridwalk/internal/world"
)

func pos(x, z int) world.GridPos { return world.GridPos{X: x, Z: z} }

func newGrassEngine(t *testing.T, w, h int) *Engine {
	t.Helper()
	grid, err := world.NewTileGrid(w, h, 1, world.TileGrass, nil)
	require.NoError(t, err)
	e := NewEngine(zap.NewNop())
	require.NoError(t, e.Initialize(grid))
	return e
}

// requireValidPath checks adjacency, the corner rule and passability of
// every step. The last tile may be occupied when allowOccupiedEnd is set.
func requireValidPath(t *testing.T, grid *world.TileGrid, p Path, allowOccupiedEnd bool) {
	t.Helper()
	for i, q := range p {
		tile, err := grid.At(q)
		require.NoError(t, err)
		if i == len(p)-1 && allowOccupiedEnd {
			require.True(t, tile.Passable, "end %s impassable", q)
		} else {
			require.True(t, tile.Traversable(), "step %d %s not traversable", i, q)
		}
		if i == 0 {
			continue
		}
		prev := p[i-1]
		dx, dz := q.X-prev.X, q.Z-prev.Z
		require.True(t, dx >= -1 && dx <= 1 && dz >= -1 && dz <= 1 && (dx != 0 || dz != 0),
			"step %s->%s not adjacent", prev, q)
		if dx != 0 && dz != 0 {
			a, _ := grid.At(prev.Offset(dx, 0))
			b, _ := grid.At(prev.Offset(0, dz))
			require.True(t, a.Traversable() && b.Traversable(), "diagonal %s->%s cuts a corner", prev, q)
		}
	}
}

func TestFindPathAroundBlockedCenter(t *testing.T) {
	e := newGrassEngine(t, 5, 5)
	require.NoError(t, e.UpdateTileState(pos(2, 2), false))

	p := e.FindPath(pos(0, 0), pos(4, 4))
	require.NotEmpty(t, p)
	assert.Equal(t, pos(0, 0), p[0])
	assert.Equal(t, pos(4, 4), p.Last())
	assert.False(t, p.Contains(pos(2, 2)))
	requireValidPath(t, e.Grid(), p, false)
}

func TestFindPathNoDiagonalPastBlockedCorner(t *testing.T) {
	e := newGrassEngine(t, 3, 3)
	require.NoError(t, e.UpdateTileState(pos(1, 1), false))

	p := e.FindPath(pos(0, 0), pos(2, 2))
	require.NotEmpty(t, p)
	assert.False(t, p.Contains(pos(1, 1)))
	requireValidPath(t, e.Grid(), p, false)

	// Every diagonal in the ring touches (1,1) as a corner, so only the
	// orthogonal detour remains.
	assert.Len(t, p, 5)
	g := e.Graph()
	assert.False(t, g.HasEdge(pos(0, 0), pos(1, 1)))
	assert.False(t, g.HasEdge(pos(0, 1), pos(1, 2)))
	assert.False(t, g.HasEdge(pos(1, 0), pos(2, 1)))
	assert.True(t, g.HasEdge(pos(0, 1), pos(0, 2)))
}

func TestFindPathDiagonalsCostTheSame(t *testing.T) {
	e := newGrassEngine(t, 5, 5)
	p := e.FindPath(pos(0, 0), pos(4, 4))
	assert.Equal(t, Path{pos(0, 0), pos(1, 1), pos(2, 2), pos(3, 3), pos(4, 4)}, p)
}

func TestFindPathPrefersCheaperTerrain(t *testing.T) {
	props := world.DefaultTileProps()
	props[world.TileForest] = world.TileProps{Passable: true, MovementCost: 3}
	grid, err := world.NewTileGrid(3, 2, 1, world.TileGrass, props)
	require.NoError(t, err)
	require.NoError(t, grid.SetType(1, 0, world.TileForest))
	e := NewEngine(zap.NewNop())
	require.NoError(t, e.Initialize(grid))

	// Straight through the forest is shorter but dearer than the dogleg.
	assert.Equal(t, Path{pos(0, 0), pos(1, 1), pos(2, 0)}, e.FindPath(pos(0, 0), pos(2, 0)))
}

func TestFindPathDeterministic(t *testing.T) {
	e := newGrassEngine(t, 8, 8)
	require.NoError(t, e.UpdateTileState(pos(3, 3), false))
	require.NoError(t, e.UpdateTileState(pos(4, 3), false))

	first := e.FindPath(pos(0, 0), pos(7, 7))
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, e.FindPath(pos(0, 0), pos(7, 7)))
	}
}

func TestFindPathSameTile(t *testing.T) {
	e := newGrassEngine(t, 3, 3)
	assert.Equal(t, Path{pos(1, 1)}, e.FindPath(pos(1, 1), pos(1, 1)))
}

func TestFindPathUnreachable(t *testing.T) {
	e := newGrassEngine(t, 5, 5)
	// Wall off column 2.
	for z := 0; z < 5; z++ {
		require.NoError(t, e.UpdateTileState(pos(2, z), false))
	}

	tests := []struct {
		name       string
		start, end world.GridPos
	}{
		{"start out of bounds", pos(-1, 0), pos(1, 1)},
		{"end out of bounds", pos(0, 0), pos(5, 0)},
		{"start impassable", pos(2, 2), pos(0, 0)},
		{"end impassable", pos(0, 0), pos(2, 2)},
		{"no route", pos(0, 0), pos(4, 4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, e.FindPath(tt.start, tt.end))
		})
	}
}

func TestFindPathSymmetric(t *testing.T) {
	e := newGrassEngine(t, 6, 6)
	for _, q := range []world.GridPos{pos(1, 1), pos(2, 1), pos(3, 1), pos(3, 2), pos(3, 3), pos(5, 0)} {
		require.NoError(t, e.UpdateTileState(q, false))
	}

	for x1 := 0; x1 < 6; x1++ {
		for z1 := 0; z1 < 6; z1++ {
			for x2 := 0; x2 < 6; x2++ {
				for z2 := 0; z2 < 6; z2++ {
					a, b := pos(x1, z1), pos(x2, z2)
					ab, ba := e.FindPath(a, b), e.FindPath(b, a)
					assert.Equal(t, ab.Empty(), ba.Empty(), "%s<->%s", a, b)
				}
			}
		}
	}
}

func TestFindPathToOccupiedTile(t *testing.T) {
	e := newGrassEngine(t, 5, 5)
	chest := world.Interactable(world.EntityRef{ID: 1, Name: "chest", Script: "open_chest"})
	require.NoError(t, e.PlaceOccupant(pos(3, 3), chest))

	g := e.Graph()
	nodes, edges := g.NodeCount(), g.EdgeCount()
	require.False(t, g.HasNode(pos(3, 3)))
	require.True(t, g.IsBlockedKnown(pos(3, 3)))

	p := e.FindPath(pos(0, 0), pos(3, 3))
	require.NotEmpty(t, p)
	assert.Equal(t, pos(3, 3), p.Last())
	requireValidPath(t, e.Grid(), p, true)

	assert.False(t, g.HasNode(pos(3, 3)))
	assert.True(t, g.IsBlockedKnown(pos(3, 3)))
	assert.Equal(t, nodes, g.NodeCount())
	assert.Equal(t, edges, g.EdgeCount())
	assertMatchesRebuild(t, e)
}

func TestFindPathOccupiedTileIsNotACorridor(t *testing.T) {
	e := newGrassEngine(t, 3, 1)
	rock := world.Interactable(world.EntityRef{ID: 1, Name: "signpost"})
	require.NoError(t, e.PlaceOccupant(pos(1, 0), rock))

	assert.Empty(t, e.FindPath(pos(0, 0), pos(2, 0)))
	assert.Equal(t, Path{pos(0, 0), pos(1, 0)}, e.FindPath(pos(0, 0), pos(1, 0)))
}

func TestFindPathBeforeInitializePanics(t *testing.T) {
	e := NewEngine(zap.NewNop())
	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.True(t, errors.Is(err, ErrNotInitialized))
	}()
	e.FindPath(pos(0, 0), pos(1, 1))
}

func TestEngineErrors(t *testing.T) {
	e := NewEngine(zap.NewNop())
	assert.ErrorIs(t, e.UpdateTileState(pos(0, 0), true), ErrNotInitialized)
	assert.ErrorIs(t, e.PlaceOccupant(pos(0, 0), world.Empty), ErrNotInitialized)
	assert.ErrorIs(t, e.Initialize(nil), ErrNilGrid)

	e = newGrassEngine(t, 2, 2)
	assert.ErrorIs(t, e.UpdateTileState(pos(2, 0), true), world.ErrOutOfBounds)

	item := world.Pickable(world.ItemRef{ID: 7, Name: "gold", Kind: world.ItemResource, Amount: 5})
	require.NoError(t, e.PlaceOccupant(pos(1, 1), item))
	assert.ErrorIs(t, e.PlaceOccupant(pos(1, 1), item), ErrTileTaken)
}

func TestUpdateTileStateIdempotent(t *testing.T) {
	for _, passable := range []bool{true, false} {
		e := newGrassEngine(t, 4, 4)
		require.NoError(t, e.UpdateTileState(pos(1, 2), passable))
		once := snapshot(e.Graph())
		require.NoError(t, e.UpdateTileState(pos(1, 2), passable))
		assert.Equal(t, once, snapshot(e.Graph()), "passable=%v", passable)
	}
}

func TestClearOccupantRestoresNode(t *testing.T) {
	e := newGrassEngine(t, 3, 3)
	before := snapshot(e.Graph())
	item := world.Pickable(world.ItemRef{ID: 1, Name: "boots", Kind: world.ItemArtifact, SpeedMultiplier: 1.5})

	require.NoError(t, e.PlaceOccupant(pos(1, 1), item))
	assert.False(t, e.Graph().HasNode(pos(1, 1)))
	assert.False(t, e.Graph().HasEdge(pos(1, 0), pos(1, 1)))
	assert.False(t, e.Graph().HasEdge(pos(0, 1), pos(1, 0)))

	got, err := e.ClearOccupant(pos(1, 1))
	require.NoError(t, err)
	assert.Equal(t, item, got)
	assert.False(t, e.Graph().IsBlockedKnown(pos(1, 1)))
	assert.Equal(t, before, snapshot(e.Graph()))
}

func TestBlockFootprint(t *testing.T) {
	e := newGrassEngine(t, 6, 6)
	changed, err := e.BlockFootprint(mgl32.Vec3{2, 0, 2}, mgl32.Vec3{3, 1, 3})
	require.NoError(t, err)
	assert.Len(t, changed, 9)
	for _, q := range changed {
		assert.False(t, e.Graph().HasNode(q))
	}
	assertMatchesRebuild(t, e)

	again, err := e.BlockFootprint(mgl32.Vec3{2, 0, 2}, mgl32.Vec3{3, 1, 3})
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestGraphMatchesRebuildUnderChurn(t *testing.T) {
	e := newGrassEngine(t, 7, 6)
	rng := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 300; i++ {
		q := pos(rng.IntN(7), rng.IntN(6))
		switch rng.IntN(5) {
		case 0, 1:
			require.NoError(t, e.UpdateTileState(q, rng.IntN(2) == 0))
		case 2:
			_ = e.PlaceOccupant(q, world.Interactable(world.EntityRef{ID: int32(i), Name: "crate"}))
		case 3:
			_, err := e.ClearOccupant(q)
			require.NoError(t, err)
		case 4:
			p := e.FindPath(pos(rng.IntN(7), rng.IntN(6)), q)
			if !p.Empty() {
				assert.Equal(t, q, p.Last())
				requireValidPath(t, e.Grid(), p, true)
			}
		}
		assertMatchesRebuild(t, e)
	}
}

func TestEdgeColumnTogglesMatchRebuild(t *testing.T) {
	const w, h = 5, 5
	e := newGrassEngine(t, w, h)
	for _, x := range []int{0, w - 1} {
		for z := 0; z < h; z++ {
			require.NoError(t, e.UpdateTileState(pos(x, z), false))
			assertMatchesRebuild(t, e)
			require.NoError(t, e.UpdateTileState(pos(x, z), true))
			assertMatchesRebuild(t, e)
		}
	}
}

func snapshot(g *Graph) map[NodeID]node {
	out := make(map[NodeID]node, len(g.nodes))
	for id, n := range g.nodes {
		out[id] = *n
	}
	return out
}

func blockedIDs(g *Graph) map[NodeID]bool {
	out := map[NodeID]bool{}
	g.blocked.Each(func(id NodeID) { out[id] = true })
	return out
}

// assertMatchesRebuild compares the incrementally maintained graph with one
// built from scratch over the same grid, and checks node presence against
// every tile.
func assertMatchesRebuild(t *testing.T, e *Engine) {
	t.Helper()
	fresh := NewEngine(zap.NewNop())
	require.NoError(t, fresh.Initialize(e.Grid()))
	require.Equal(t, snapshot(fresh.Graph()), snapshot(e.Graph()))
	require.Equal(t, blockedIDs(fresh.Graph()), blockedIDs(e.Graph()))

	e.Grid().Each(func(q world.GridPos, tile world.Tile) {
		require.Equal(t, tile.Traversable(), e.Graph().HasNode(q), "node presence at %s", q)
	})
}
