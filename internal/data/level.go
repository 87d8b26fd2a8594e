package data

import (
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/gridwalk/gridwalk/internal/world"
)

// Level is one playable map as described by a level YAML file. Layout rows
// run along z: row i holds the tiles with z = i, column j the tile x = j.
type Level struct {
	Name        string                   `yaml:"name"`
	CellSize    float32                  `yaml:"cell_size"`
	Width       int                      `yaml:"width"`  // only used without a layout
	Height      int                      `yaml:"height"` // only used without a layout
	DefaultTile string                   `yaml:"default_tile"`
	TileProps   map[string]TilePropsSpec `yaml:"tile_props"`
	Legend      map[string]string        `yaml:"legend"`
	Layout      []string                 `yaml:"layout"`
	Tiles       []TileOverride           `yaml:"tiles"`
	Decorations []Decoration             `yaml:"decorations"`
	Items       []ItemSpawn              `yaml:"items"`
	Entities    []EntitySpawn            `yaml:"entities"`
	Agents      []AgentSpawn             `yaml:"agents"`

	defaultType world.TileType
	legend      map[rune]world.TileType
	props       map[world.TileType]world.TileProps
}

type TilePropsSpec struct {
	Passable     bool    `yaml:"passable"`
	MovementCost float32 `yaml:"movement_cost"`
}

type TileOverride struct {
	X    int    `yaml:"x"`
	Z    int    `yaml:"z"`
	Type string `yaml:"type"`
}

// Decoration is a static prop that blocks every tile under its footprint.
type Decoration struct {
	Name   string     `yaml:"name"`
	Center [3]float32 `yaml:"center"`
	Size   [3]float32 `yaml:"size"`
}

func (d Decoration) CenterVec() mgl32.Vec3 { return mgl32.Vec3(d.Center) }
func (d Decoration) SizeVec() mgl32.Vec3   { return mgl32.Vec3(d.Size) }

type ItemSpawn struct {
	Name            string  `yaml:"name"`
	Kind            string  `yaml:"kind"` // artifact | resource
	X               int     `yaml:"x"`
	Z               int     `yaml:"z"`
	Amount          int32   `yaml:"amount"`
	SpeedMultiplier float32 `yaml:"speed_multiplier"`
}

type EntitySpawn struct {
	Name   string `yaml:"name"`
	X      int    `yaml:"x"`
	Z      int    `yaml:"z"`
	Script string `yaml:"script"`
}

// AgentSpawn places a controllable agent. Zero Speed and a nil Budget fall
// back to the configured movement defaults.
type AgentSpawn struct {
	Name   string  `yaml:"name"`
	X      int     `yaml:"x"`
	Z      int     `yaml:"z"`
	Speed  float32 `yaml:"speed"`
	Budget *int    `yaml:"budget"`
}

func (a AgentSpawn) Pos() world.GridPos { return world.GridPos{X: a.X, Z: a.Z} }

// LoadLevel reads and validates a level file.
func LoadLevel(path string) (*Level, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read level %s: %w", path, err)
	}
	lvl, err := ParseLevel(raw)
	if err != nil {
		return nil, fmt.Errorf("level %s: %w", path, err)
	}
	return lvl, nil
}

// ParseLevel decodes and validates level YAML.
func ParseLevel(raw []byte) (*Level, error) {
	var lvl Level
	if err := yaml.Unmarshal(raw, &lvl); err != nil {
		return nil, fmt.Errorf("parse level: %w", err)
	}
	if err := lvl.resolve(); err != nil {
		return nil, err
	}
	return &lvl, nil
}

func (l *Level) resolve() error {
	if l.CellSize == 0 {
		l.CellSize = 1
	}
	if l.CellSize < 0 {
		return fmt.Errorf("cell_size must be positive, got %v", l.CellSize)
	}
	if l.DefaultTile == "" {
		l.DefaultTile = world.TileGrass.String()
	}
	t, err := world.ParseTileType(l.DefaultTile)
	if err != nil {
		return fmt.Errorf("default_tile: %w", err)
	}
	l.defaultType = t

	l.props = world.DefaultTileProps()
	for name, spec := range l.TileProps {
		t, err := world.ParseTileType(name)
		if err != nil {
			return fmt.Errorf("tile_props: %w", err)
		}
		if spec.MovementCost < 0 {
			return fmt.Errorf("tile_props %s: negative movement cost", name)
		}
		l.props[t] = world.TileProps{Passable: spec.Passable, MovementCost: spec.MovementCost}
	}

	l.legend = make(map[rune]world.TileType, len(l.Legend))
	for sym, name := range l.Legend {
		if utf8.RuneCountInString(sym) != 1 {
			return fmt.Errorf("legend key %q must be a single character", sym)
		}
		t, err := world.ParseTileType(name)
		if err != nil {
			return fmt.Errorf("legend %q: %w", sym, err)
		}
		r, _ := utf8.DecodeRuneInString(sym)
		l.legend[r] = t
	}

	if len(l.Layout) > 0 {
		l.Height = len(l.Layout)
		l.Width = utf8.RuneCountInString(l.Layout[0])
		for z, row := range l.Layout {
			if n := utf8.RuneCountInString(row); n != l.Width {
				return fmt.Errorf("layout row %d has %d tiles, want %d", z, n, l.Width)
			}
			for _, r := range row {
				if _, ok := l.legend[r]; !ok {
					return fmt.Errorf("layout row %d: symbol %q not in legend", z, r)
				}
			}
		}
	}
	if l.Width <= 0 || l.Height <= 0 {
		return fmt.Errorf("level needs a layout or positive width and height")
	}

	for i, o := range l.Tiles {
		if _, err := world.ParseTileType(o.Type); err != nil {
			return fmt.Errorf("tiles[%d]: %w", i, err)
		}
	}
	for i, it := range l.Items {
		if _, err := parseItemKind(it.Kind); err != nil {
			return fmt.Errorf("items[%d] %s: %w", i, it.Name, err)
		}
	}
	for i, a := range l.Agents {
		if a.Name == "" {
			return fmt.Errorf("agents[%d]: missing name", i)
		}
	}
	return nil
}

func parseItemKind(s string) (world.ItemKind, error) {
	switch s {
	case "artifact", "":
		return world.ItemArtifact, nil
	case "resource":
		return world.ItemResource, nil
	}
	return 0, fmt.Errorf("unknown item kind %q", s)
}

// Props returns the tile property table with the level's overrides applied.
func (l *Level) Props() map[world.TileType]world.TileProps { return l.props }

// BuildGrid creates the terrain of the level: layout, then tile overrides.
// Decorations and occupants are applied by the caller through the
// pathfinding engine so the graph sees them.
func (l *Level) BuildGrid() (*world.TileGrid, error) {
	grid, err := world.NewTileGrid(l.Width, l.Height, l.CellSize, l.defaultType, l.props)
	if err != nil {
		return nil, fmt.Errorf("build grid: %w", err)
	}
	for z, row := range l.Layout {
		x := 0
		for _, r := range row {
			if t := l.legend[r]; t != l.defaultType {
				if err := grid.SetType(x, z, t); err != nil {
					return nil, fmt.Errorf("build grid: %w", err)
				}
			}
			x++
		}
	}
	for i, o := range l.Tiles {
		t, _ := world.ParseTileType(o.Type)
		if err := grid.SetType(o.X, o.Z, t); err != nil {
			return nil, fmt.Errorf("tiles[%d]: %w", i, err)
		}
	}
	return grid, nil
}

// ItemRef converts a spawn entry into the occupant reference placed on the
// grid, using id as the item's runtime ID.
func (it ItemSpawn) ItemRef(id int32) world.ItemRef {
	kind, _ := parseItemKind(it.Kind)
	amount := it.Amount
	if amount <= 0 {
		amount = 1
	}
	return world.ItemRef{ID: id, Name: it.Name, Kind: kind, Amount: amount, SpeedMultiplier: it.SpeedMultiplier}
}

func (it ItemSpawn) Pos() world.GridPos { return world.GridPos{X: it.X, Z: it.Z} }

func (e EntitySpawn) EntityRef(id int32) world.EntityRef {
	return world.EntityRef{ID: id, Name: e.Name, Script: e.Script}
}

func (e EntitySpawn) Pos() world.GridPos { return world.GridPos{X: e.X, Z: e.Z} }
