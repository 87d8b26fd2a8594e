package world

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrInvalidDimensions = errors.New("invalid grid dimensions")
	ErrOutOfBounds       = errors.New("grid position out of bounds")
)

// GridPos is an integer tile coordinate.
type GridPos struct {
	X int `json:"x" yaml:"x"`
	Z int `json:"z" yaml:"z"`
}

func (p GridPos) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Z) }

// Offset returns p shifted by (dx, dz).
func (p GridPos) Offset(dx, dz int) GridPos { return GridPos{X: p.X + dx, Z: p.Z + dz} }

// TileGrid owns the tiles of one level for its whole lifetime.
// Accessed only from the simulation goroutine, so there are no locks.
type TileGrid struct {
	width    int
	height   int
	cellSize float32
	tiles    []Tile // flat array [x * height + z]
	props    map[TileType]TileProps
}

// NewTileGrid allocates width*height tiles of type fill. props overrides the
// default passability/cost table when non-nil.
func NewTileGrid(width, height int, cellSize float32, fill TileType, props map[TileType]TileProps) (*TileGrid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if !(cellSize > 0) {
		return nil, fmt.Errorf("%w: cell size %v", ErrInvalidDimensions, cellSize)
	}
	if props == nil {
		props = DefaultTileProps()
	}
	g := &TileGrid{
		width:    width,
		height:   height,
		cellSize: cellSize,
		tiles:    make([]Tile, width*height),
		props:    props,
	}
	base := g.newTile(fill)
	for i := range g.tiles {
		g.tiles[i] = base
	}
	return g, nil
}

func (g *TileGrid) newTile(t TileType) Tile {
	p, ok := g.props[t]
	if !ok {
		p = TileProps{Passable: false, MovementCost: 1.0}
	}
	return Tile{Type: t, Passable: p.Passable, MovementCost: p.MovementCost}
}

func (g *TileGrid) Width() int        { return g.width }
func (g *TileGrid) Height() int       { return g.height }
func (g *TileGrid) CellSize() float32 { return g.cellSize }
func (g *TileGrid) Len() int          { return len(g.tiles) }

// InBounds reports whether pos addresses a tile.
func (g *TileGrid) InBounds(pos GridPos) bool {
	return pos.X >= 0 && pos.X < g.width && pos.Z >= 0 && pos.Z < g.height
}

func (g *TileGrid) index(x, z int) (int, error) {
	if x < 0 || x >= g.width || z < 0 || z >= g.height {
		return 0, fmt.Errorf("%w: (%d,%d) not in %dx%d", ErrOutOfBounds, x, z, g.width, g.height)
	}
	return x*g.height + z, nil
}

// Get returns a copy of the tile at (x,z).
func (g *TileGrid) Get(x, z int) (Tile, error) {
	i, err := g.index(x, z)
	if err != nil {
		return Tile{}, err
	}
	return g.tiles[i], nil
}

// At is Get for a GridPos.
func (g *TileGrid) At(pos GridPos) (Tile, error) {
	return g.Get(pos.X, pos.Z)
}

// SetOccupant places occ on the tile; Empty clears it.
func (g *TileGrid) SetOccupant(x, z int, occ Occupant) error {
	i, err := g.index(x, z)
	if err != nil {
		return err
	}
	g.tiles[i].Occupant = occ
	return nil
}

func (g *TileGrid) SetPassable(x, z int, passable bool) error {
	i, err := g.index(x, z)
	if err != nil {
		return err
	}
	g.tiles[i].Passable = passable
	return nil
}

// SetType changes the terrain and resets passability and cost from the
// properties table. The occupant is kept.
func (g *TileGrid) SetType(x, z int, t TileType) error {
	i, err := g.index(x, z)
	if err != nil {
		return err
	}
	occ := g.tiles[i].Occupant
	g.tiles[i] = g.newTile(t)
	g.tiles[i].Occupant = occ
	return nil
}

// WorldToGrid rounds x/cellSize and z/cellSize half away from zero.
func (g *TileGrid) WorldToGrid(pos mgl32.Vec3) GridPos {
	return GridPos{
		X: int(math.Round(float64(pos.X() / g.cellSize))),
		Z: int(math.Round(float64(pos.Z() / g.cellSize))),
	}
}

// GridToWorld returns the world position of a tile center at height y.
func (g *TileGrid) GridToWorld(pos GridPos, y float32) mgl32.Vec3 {
	return mgl32.Vec3{float32(pos.X) * g.cellSize, y, float32(pos.Z) * g.cellSize}
}

// MarkFootprint marks every tile covered by an object of the given world
// size centered at center as impassable. The covered range is clipped to the
// grid. It returns the tiles whose passability actually changed.
func (g *TileGrid) MarkFootprint(center, size mgl32.Vec3) []GridPos {
	c := g.WorldToGrid(center)
	halfX := int(math.Floor(float64(size.X() / 2 / g.cellSize)))
	halfZ := int(math.Floor(float64(size.Z() / 2 / g.cellSize)))

	minX, maxX := max(0, c.X-halfX), min(g.width-1, c.X+halfX)
	minZ, maxZ := max(0, c.Z-halfZ), min(g.height-1, c.Z+halfZ)

	var changed []GridPos
	for x := minX; x <= maxX; x++ {
		for z := minZ; z <= maxZ; z++ {
			t := &g.tiles[x*g.height+z]
			if t.Passable {
				t.Passable = false
				changed = append(changed, GridPos{X: x, Z: z})
			}
		}
	}
	return changed
}

// Each visits every tile in x-major order.
func (g *TileGrid) Each(fn func(pos GridPos, t Tile)) {
	for x := 0; x < g.width; x++ {
		for z := 0; z < g.height; z++ {
			fn(GridPos{X: x, Z: z}, g.tiles[x*g.height+z])
		}
	}
}
