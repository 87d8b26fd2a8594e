package world

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTileGridRejectsBadDimensions(t *testing.T) {
	tests := []struct {
		name     string
		w, h     int
		cellSize float32
	}{
		{"zero width", 0, 3, 1},
		{"negative height", 3, -1, 1},
		{"zero cell size", 3, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTileGrid(tt.w, tt.h, tt.cellSize, TileGrass, nil)
			assert.ErrorIs(t, err, ErrInvalidDimensions)
		})
	}
}

func TestTileGridDefaults(t *testing.T) {
	g, err := NewTileGrid(4, 3, 2, TileRoad, nil)
	require.NoError(t, err)
	assert.Equal(t, 12, g.Len())

	count := 0
	g.Each(func(pos GridPos, tile Tile) {
		count++
		assert.Equal(t, TileRoad, tile.Type)
		assert.True(t, tile.Traversable())
		assert.Equal(t, float32(0.75), tile.MovementCost)
	})
	assert.Equal(t, 12, count)
}

func TestTileGridBounds(t *testing.T) {
	g, err := NewTileGrid(3, 2, 1, TileGrass, nil)
	require.NoError(t, err)

	for _, p := range []GridPos{{-1, 0}, {3, 0}, {0, 2}, {0, -1}} {
		_, err := g.At(p)
		assert.ErrorIs(t, err, ErrOutOfBounds, "%s", p)
		assert.ErrorIs(t, g.SetPassable(p.X, p.Z, false), ErrOutOfBounds)
		assert.ErrorIs(t, g.SetOccupant(p.X, p.Z, Empty), ErrOutOfBounds)
		assert.False(t, g.InBounds(p))
	}
	_, err = g.Get(2, 1)
	assert.NoError(t, err)
}

func TestSetTypeKeepsOccupant(t *testing.T) {
	g, err := NewTileGrid(2, 2, 1, TileGrass, nil)
	require.NoError(t, err)
	item := Pickable(ItemRef{ID: 1, Name: "wood", Kind: ItemResource, Amount: 3})
	require.NoError(t, g.SetOccupant(1, 1, item))
	require.NoError(t, g.SetType(1, 1, TileWater))

	tile, err := g.Get(1, 1)
	require.NoError(t, err)
	assert.Equal(t, TileWater, tile.Type)
	assert.False(t, tile.Passable)
	assert.Equal(t, item, tile.Occupant)
	assert.False(t, tile.Interactable())
}

func TestWorldGridConversion(t *testing.T) {
	g, err := NewTileGrid(10, 10, 2, TileGrass, nil)
	require.NoError(t, err)

	tests := []struct {
		world mgl32.Vec3
		want  GridPos
	}{
		{mgl32.Vec3{0, 0, 0}, GridPos{0, 0}},
		{mgl32.Vec3{0.9, 5, 1.1}, GridPos{0, 1}},
		{mgl32.Vec3{1, 0, 3}, GridPos{1, 2}}, // halves round away from zero
		{mgl32.Vec3{-1, 0, 0}, GridPos{-1, 0}},
		{mgl32.Vec3{7.9, 0, 18.2}, GridPos{4, 9}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, g.WorldToGrid(tt.world), "%v", tt.world)
	}

	p := GridPos{X: 3, Z: 4}
	w := g.GridToWorld(p, 1.5)
	assert.Equal(t, mgl32.Vec3{6, 1.5, 8}, w)
	assert.Equal(t, p, g.WorldToGrid(w))
}

func TestMarkFootprint(t *testing.T) {
	g, err := NewTileGrid(5, 5, 1, TileGrass, nil)
	require.NoError(t, err)
	require.NoError(t, g.SetPassable(0, 0, false))

	// Clipped at the corner; (0,0) was already blocked.
	changed := g.MarkFootprint(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{3, 1, 3})
	assert.ElementsMatch(t, []GridPos{{0, 1}, {1, 0}, {1, 1}}, changed)

	// A 1x1 decoration covers only its own tile.
	changed = g.MarkFootprint(mgl32.Vec3{3, 0, 3}, mgl32.Vec3{1, 1, 1})
	assert.Equal(t, []GridPos{{3, 3}}, changed)
}

func TestOccupantVariants(t *testing.T) {
	assert.True(t, Empty.IsEmpty())
	assert.Equal(t, "empty", Empty.String())

	boots := Pickable(ItemRef{ID: 1, Name: "boots of speed", Kind: ItemArtifact, SpeedMultiplier: 1.5})
	assert.Equal(t, OccupantPickable, boots.Kind)
	assert.Equal(t, "pickable:boots of speed", boots.String())

	well := Interactable(EntityRef{ID: 2, Name: "well", Script: "draw_water"})
	assert.Equal(t, "well", well.Name())
}

func TestIDAllocator(t *testing.T) {
	a := NewIDAllocator()
	first := a.NextItemID()
	assert.Equal(t, first+1, a.NextItemID())
	assert.NotEqual(t, first, a.NextEntityID())
}
