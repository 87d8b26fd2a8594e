package pathfind

import (
	"math/bits"

	"github.com/gridwalk/gridwalk/internal/world"
	"github.com/zyedidia/generic/mapset"
)

// NodeID encodes a grid position as z*stride + x.
type NodeID int64

// dir indexes the 8 neighbour directions. The order is the visitation order
// of the search: W, N, E, S, NW, NE, SW, SE (N is z-1).
type dir uint8

const (
	dirW dir = iota
	dirN
	dirE
	dirS
	dirNW
	dirNE
	dirSW
	dirSE
	numDirs
)

var dirDX = [numDirs]int{-1, 0, 1, 0, -1, 1, -1, 1}
var dirDZ = [numDirs]int{0, -1, 0, 1, -1, -1, 1, 1}
var dirOpposite = [numDirs]dir{dirE, dirS, dirW, dirN, dirSE, dirSW, dirNE, dirNW}

func (d dir) diagonal() bool { return d >= dirNW }

// node is one traversable tile. links has bit d set when the edge toward
// direction d exists; the neighbour always carries the opposite bit.
type node struct {
	pos   world.GridPos
	cost  float32 // price of entering this tile
	links uint8
}

// Graph is the sparse navigation graph over a TileGrid.
type Graph struct {
	width   int
	height  int
	stride  int
	nodes   map[NodeID]*node
	blocked mapset.Set[NodeID] // occupied but interactable tiles
}

func newGraph(width, height int) *Graph {
	return &Graph{
		width:   width,
		height:  height,
		stride:  width,
		nodes:   make(map[NodeID]*node, width*height),
		blocked: mapset.New[NodeID](),
	}
}

func (g *Graph) id(p world.GridPos) NodeID {
	return NodeID(p.Z*g.stride + p.X)
}

func (g *Graph) pos(id NodeID) world.GridPos {
	return world.GridPos{X: int(id) % g.stride, Z: int(id) / g.stride}
}

func (g *Graph) inBounds(p world.GridPos) bool {
	return p.X >= 0 && p.X < g.width && p.Z >= 0 && p.Z < g.height
}

func (g *Graph) has(p world.GridPos) bool {
	if !g.inBounds(p) {
		return false
	}
	_, ok := g.nodes[g.id(p)]
	return ok
}

// addNode inserts an unlinked node. Reports false if it already existed,
// in which case only its cost is refreshed.
func (g *Graph) addNode(p world.GridPos, cost float32) bool {
	id := g.id(p)
	if n, ok := g.nodes[id]; ok {
		n.cost = cost
		return false
	}
	g.nodes[id] = &node{pos: p, cost: cost}
	return true
}

// removeNode drops the node and every edge touching it.
func (g *Graph) removeNode(p world.GridPos) bool {
	id := g.id(p)
	n, ok := g.nodes[id]
	if !ok {
		return false
	}
	for d := dir(0); d < numDirs; d++ {
		if n.links&(1<<d) == 0 {
			continue
		}
		if m, ok := g.nodes[g.id(p.Offset(dirDX[d], dirDZ[d]))]; ok {
			m.links &^= 1 << dirOpposite[d]
		}
	}
	delete(g.nodes, id)
	return true
}

// linkable reports whether an edge from p toward d may exist: the neighbour
// is a node and, for diagonals, both corner tiles are nodes too.
func (g *Graph) linkable(p world.GridPos, d dir) bool {
	dx, dz := dirDX[d], dirDZ[d]
	if !g.has(p.Offset(dx, dz)) {
		return false
	}
	if d.diagonal() {
		return g.has(p.Offset(dx, 0)) && g.has(p.Offset(0, dz))
	}
	return true
}

// relink recomputes every edge of the node at p from current node presence.
// Positions off the grid are ignored; their ids would alias real nodes.
func (g *Graph) relink(p world.GridPos) {
	if !g.inBounds(p) {
		return
	}
	n, ok := g.nodes[g.id(p)]
	if !ok {
		return
	}
	for d := dir(0); d < numDirs; d++ {
		q := p.Offset(dirDX[d], dirDZ[d])
		if g.linkable(p, d) {
			n.links |= 1 << d
			g.nodes[g.id(q)].links |= 1 << dirOpposite[d]
			continue
		}
		n.links &^= 1 << d
		if m, ok := g.nodes[g.id(q)]; ok && g.inBounds(q) {
			m.links &^= 1 << dirOpposite[d]
		}
	}
}

// relinkAround relinks p and its 8 neighbours. A change at p can only affect
// edges that touch p or use p as a diagonal corner, and all of those have
// both endpoints inside this 3x3 block.
func (g *Graph) relinkAround(p world.GridPos) {
	for dx := -1; dx <= 1; dx++ {
		for dz := -1; dz <= 1; dz++ {
			g.relink(p.Offset(dx, dz))
		}
	}
}

// NodeCount returns the number of live nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of undirected edges.
func (g *Graph) EdgeCount() int {
	total := 0
	for _, n := range g.nodes {
		total += bits.OnesCount8(n.links)
	}
	return total / 2
}

// HasNode reports whether p is a live node.
func (g *Graph) HasNode(p world.GridPos) bool { return g.has(p) }

// HasEdge reports whether a and b are adjacent and linked.
func (g *Graph) HasEdge(a, b world.GridPos) bool {
	n, ok := g.nodes[g.id(a)]
	if !ok || !g.inBounds(a) {
		return false
	}
	for d := dir(0); d < numDirs; d++ {
		if a.Offset(dirDX[d], dirDZ[d]) == b {
			return n.links&(1<<d) != 0
		}
	}
	return false
}

// IsBlockedKnown reports whether p is an occupied tile that can still be
// targeted as an interaction destination.
func (g *Graph) IsBlockedKnown(p world.GridPos) bool {
	return g.inBounds(p) && g.blocked.Has(g.id(p))
}

// BlockedKnownCount returns the size of the blocked-but-known set.
func (g *Graph) BlockedKnownCount() int { return g.blocked.Size() }
