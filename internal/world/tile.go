package world

import "fmt"

// TileType identifies the terrain of a tile.
type TileType uint8

const (
	TileNotDefined TileType = iota
	TileGrass
	TileWater
	TileMountain
	TileForest
	TileTown
	TileRoad
)

var tileTypeNames = [...]string{
	TileNotDefined: "not_defined",
	TileGrass:      "grass",
	TileWater:      "water",
	TileMountain:   "mountain",
	TileForest:     "forest",
	TileTown:       "town",
	TileRoad:       "road",
}

func (t TileType) String() string {
	if int(t) < len(tileTypeNames) {
		return tileTypeNames[t]
	}
	return fmt.Sprintf("tile(%d)", uint8(t))
}

// ParseTileType maps a level-file name ("grass", "road", ...) to a TileType.
func ParseTileType(name string) (TileType, error) {
	for i, n := range tileTypeNames {
		if n == name {
			return TileType(i), nil
		}
	}
	return TileNotDefined, fmt.Errorf("unknown tile type %q", name)
}

// TileProps holds the per-type defaults applied when a tile gets its type.
type TileProps struct {
	Passable     bool
	MovementCost float32
}

// DefaultTileProps returns the built-in passability/cost table.
// Unknown types are impassable with cost 1.
func DefaultTileProps() map[TileType]TileProps {
	return map[TileType]TileProps{
		TileNotDefined: {Passable: false, MovementCost: 1.0},
		TileGrass:      {Passable: true, MovementCost: 1.0},
		TileWater:      {Passable: false, MovementCost: 1.0},
		TileMountain:   {Passable: false, MovementCost: 1.0},
		TileForest:     {Passable: true, MovementCost: 1.25},
		TileTown:       {Passable: true, MovementCost: 1.0},
		TileRoad:       {Passable: true, MovementCost: 0.75},
	}
}

// Tile is one grid cell. Passable reflects terrain and decorations; an
// occupant makes a passable tile non-traversable without changing Passable.
type Tile struct {
	Type         TileType
	Passable     bool
	MovementCost float32
	Occupant     Occupant
}

// Traversable reports whether an agent may stand on the tile.
func (t Tile) Traversable() bool {
	return t.Passable && t.Occupant.IsEmpty()
}

// Interactable reports whether the tile is a valid "walk up and interact"
// destination: walkable terrain holding something.
func (t Tile) Interactable() bool {
	return t.Passable && !t.Occupant.IsEmpty()
}
