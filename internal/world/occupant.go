package world

import "fmt"

// OccupantKind tags the Occupant variant.
type OccupantKind uint8

const (
	OccupantEmpty OccupantKind = iota
	OccupantPickable
	OccupantInteractable
)

func (k OccupantKind) String() string {
	switch k {
	case OccupantEmpty:
		return "empty"
	case OccupantPickable:
		return "pickable"
	case OccupantInteractable:
		return "interactable"
	}
	return fmt.Sprintf("occupant(%d)", uint8(k))
}

// ItemKind mirrors the level-file object categories.
type ItemKind uint8

const (
	ItemArtifact ItemKind = iota + 1
	ItemResource
)

// ItemRef describes an object lying on a tile that an agent can pick up.
type ItemRef struct {
	ID              int32
	Name            string
	Kind            ItemKind
	Amount          int32
	SpeedMultiplier float32 // 0 = no effect
}

// EntityRef describes something an agent interacts with in place.
// Script names the Lua function run on interaction.
type EntityRef struct {
	ID     int32
	Name   string
	Script string
}

// Occupant is Empty | Pickable(ItemRef) | Interactable(EntityRef).
// Only the field matching Kind is meaningful.
type Occupant struct {
	Kind   OccupantKind
	Item   ItemRef
	Entity EntityRef
}

// Empty is the zero occupant.
var Empty = Occupant{}

func Pickable(item ItemRef) Occupant {
	return Occupant{Kind: OccupantPickable, Item: item}
}

func Interactable(entity EntityRef) Occupant {
	return Occupant{Kind: OccupantInteractable, Entity: entity}
}

func (o Occupant) IsEmpty() bool { return o.Kind == OccupantEmpty }

// Name returns the display name of whatever occupies the tile.
func (o Occupant) Name() string {
	switch o.Kind {
	case OccupantPickable:
		return o.Item.Name
	case OccupantInteractable:
		return o.Entity.Name
	}
	return ""
}

func (o Occupant) String() string {
	if o.IsEmpty() {
		return "empty"
	}
	return o.Kind.String() + ":" + o.Name()
}
