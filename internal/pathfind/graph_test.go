package pathfind

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gridwalk/gridwalk/internal/world"
)

func TestNodeIDRoundTrip(t *testing.T) {
	g := newGraph(7, 4)
	for x := 0; x < 7; x++ {
		for z := 0; z < 4; z++ {
			p := pos(x, z)
			assert.Equal(t, p, g.pos(g.id(p)))
		}
	}
	assert.Equal(t, NodeID(2*7+3), g.id(pos(3, 2)))
}

func TestOpenGridEdges(t *testing.T) {
	e := newGrassEngine(t, 3, 3)
	g := e.Graph()
	assert.Equal(t, 9, g.NodeCount())
	// 12 orthogonal plus 2 diagonals in each of the four 2x2 blocks.
	assert.Equal(t, 20, g.EdgeCount())

	assert.True(t, g.HasEdge(pos(0, 0), pos(1, 1)))
	assert.True(t, g.HasEdge(pos(1, 1), pos(0, 0)))
	assert.False(t, g.HasEdge(pos(0, 0), pos(2, 2)))
	assert.False(t, g.HasEdge(pos(0, 0), pos(-1, 0)))
}

func TestLinksAreSymmetric(t *testing.T) {
	e := newGrassEngine(t, 4, 4)
	for _, q := range []struct{ x, z int }{{1, 1}, {2, 3}, {0, 2}} {
		assert.NoError(t, e.UpdateTileState(pos(q.x, q.z), false))
	}
	g := e.Graph()
	for _, n := range g.nodes {
		for d := dir(0); d < numDirs; d++ {
			if n.links&(1<<d) == 0 {
				continue
			}
			m, ok := g.nodes[g.id(n.pos.Offset(dirDX[d], dirDZ[d]))]
			if assert.True(t, ok, "%s links to a missing node", n.pos) {
				assert.NotZero(t, m.links&(1<<dirOpposite[d]), "%s -> %s one-way", n.pos, m.pos)
			}
		}
	}
}

func TestRemoveNodeDropsCornerDiagonals(t *testing.T) {
	e := newGrassEngine(t, 2, 2)
	g := e.Graph()
	assert.Equal(t, 6, g.EdgeCount())

	assert.NoError(t, e.UpdateTileState(pos(1, 0), false))
	// (0,0)-(1,1) lost its corner; only (0,0)-(0,1) and (0,1)-(1,1) remain.
	assert.Equal(t, 2, g.EdgeCount())
	assert.False(t, g.HasEdge(pos(0, 0), pos(1, 1)))
	assert.False(t, g.HasEdge(pos(0, 1), pos(1, 0)))

	assert.NoError(t, e.UpdateTileState(pos(1, 0), true))
	assert.Equal(t, 6, g.EdgeCount())
}

func TestEdgeColumnChangeLeavesFarColumnAlone(t *testing.T) {
	e := newGrassEngine(t, 5, 5)
	g := e.Graph()
	before := snapshot(g)

	assert.NoError(t, e.UpdateTileState(pos(0, 2), false))
	for _, q := range []world.GridPos{pos(4, 0), pos(4, 1), pos(4, 2), pos(4, 3)} {
		assert.Equal(t, before[g.id(q)].links, g.nodes[g.id(q)].links, "links of %s", q)
	}

	assert.NoError(t, e.UpdateTileState(pos(0, 2), true))
	assert.Equal(t, before, snapshot(g))
}
