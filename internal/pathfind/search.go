package pathfind

import (
	"math"

	"github.com/gridwalk/gridwalk/internal/world"
	"github.com/zyedidia/generic/heap"
)

// Path is an ordered list of grid positions, start and end inclusive.
// An empty Path means unreachable.
type Path []world.GridPos

func (p Path) Empty() bool { return len(p) == 0 }

// Last returns the destination. Only valid on a non-empty path.
func (p Path) Last() world.GridPos { return p[len(p)-1] }

// Contains reports whether pos appears anywhere on the path.
func (p Path) Contains(pos world.GridPos) bool {
	for _, q := range p {
		if q == pos {
			return true
		}
	}
	return false
}

type openItem struct {
	id  NodeID
	f   float32
	seq uint64 // discovery order, breaks f ties first-come first-served
}

type searchRecord struct {
	g      float32
	parent NodeID
	closed bool
}

func heuristic(a, b world.GridPos) float32 {
	return float32(math.Hypot(float64(a.X-b.X), float64(a.Z-b.Z)))
}

// search runs A* between two live nodes. Entering a node costs that node's
// tile cost, diagonals included. Returns nil when goal is unreachable.
func (g *Graph) search(start, goal world.GridPos) Path {
	if start == goal {
		return Path{start}
	}
	startID, goalID := g.id(start), g.id(goal)

	open := heap.New(func(a, b openItem) bool {
		if a.f != b.f {
			return a.f < b.f
		}
		return a.seq < b.seq
	})
	records := make(map[NodeID]*searchRecord, 64)
	records[startID] = &searchRecord{parent: -1}

	var seq uint64
	open.Push(openItem{id: startID, f: heuristic(start, goal), seq: seq})

	for open.Size() > 0 {
		cur, _ := open.Pop()
		rec := records[cur.id]
		if rec.closed {
			continue // stale entry superseded by a cheaper one
		}
		rec.closed = true
		if cur.id == goalID {
			return g.reconstruct(records, goalID)
		}

		n := g.nodes[cur.id]
		for d := dir(0); d < numDirs; d++ {
			if n.links&(1<<d) == 0 {
				continue
			}
			next := n.pos.Offset(dirDX[d], dirDZ[d])
			nextID := g.id(next)
			tentative := rec.g + g.nodes[nextID].cost

			nrec, seen := records[nextID]
			if seen && (nrec.closed || tentative >= nrec.g) {
				continue
			}
			if !seen {
				nrec = &searchRecord{}
				records[nextID] = nrec
			}
			nrec.g = tentative
			nrec.parent = cur.id
			seq++
			open.Push(openItem{id: nextID, f: tentative + heuristic(next, goal), seq: seq})
		}
	}
	return nil
}

func (g *Graph) reconstruct(records map[NodeID]*searchRecord, goal NodeID) Path {
	var path Path
	for id := goal; id != -1; id = records[id].parent {
		path = append(path, g.pos(id))
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
