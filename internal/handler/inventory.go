package handler

import (
	"github.com/gridwalk/gridwalk/internal/world"
)

// Inventory holds what one agent has picked up. Resources with the same
// name stack; artifacts are kept individually.
type Inventory struct {
	items []world.ItemRef
}

func NewInventory() *Inventory {
	return &Inventory{items: make([]world.ItemRef, 0, 8)}
}

func (inv *Inventory) Add(item world.ItemRef) {
	if item.Kind == world.ItemResource {
		for i := range inv.items {
			if inv.items[i].Kind == world.ItemResource && inv.items[i].Name == item.Name {
				inv.items[i].Amount += item.Amount
				return
			}
		}
	}
	inv.items = append(inv.items, item)
}

// Remove takes amount of the named item. It reports false, changing
// nothing, when there is not enough.
func (inv *Inventory) Remove(name string, amount int32) bool {
	if inv.Count(name) < amount {
		return false
	}
	kept := inv.items[:0]
	for _, it := range inv.items {
		if amount > 0 && it.Name == name {
			take := min(it.Amount, amount)
			it.Amount -= take
			amount -= take
			if it.Amount == 0 {
				continue
			}
		}
		kept = append(kept, it)
	}
	inv.items = kept
	return true
}

// Count returns the total amount held under name.
func (inv *Inventory) Count(name string) int32 {
	var n int32
	for _, it := range inv.items {
		if it.Name == name {
			n += it.Amount
		}
	}
	return n
}

// Items returns a copy of the inventory contents in pickup order.
func (inv *Inventory) Items() []world.ItemRef {
	return append([]world.ItemRef(nil), inv.items...)
}

func (inv *Inventory) Len() int { return len(inv.items) }
