package world

import "sync/atomic"

// ID ranges for occupant references. Items start at 700_000_000 and
// entities at 100_000_000 so the two never collide in logs or events.
const (
	itemIDStart   int32 = 700_000_000
	entityIDStart int32 = 100_000_000
)

// IDAllocator hands out occupant IDs for one session.
type IDAllocator struct {
	items    atomic.Int32
	entities atomic.Int32
}

func NewIDAllocator() *IDAllocator {
	a := &IDAllocator{}
	a.items.Store(itemIDStart)
	a.entities.Store(entityIDStart)
	return a
}

// NextItemID returns a unique ID for a pickable item.
func (a *IDAllocator) NextItemID() int32 {
	return a.items.Add(1)
}

// NextEntityID returns a unique ID for an interactable entity.
func (a *IDAllocator) NextEntityID() int32 {
	return a.entities.Add(1)
}
