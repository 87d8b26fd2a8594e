package ecs

import "github.com/zyedidia/generic/mapset"

// DestroyHook runs for each entity being destroyed, before its components
// are dropped, so it can still read them.
type DestroyHook func(id EntityID)

// World owns entity ids and the component stores that hang off them.
// Destruction is deferred: MarkForDestruction only queues, and the cleanup
// system flushes the queue at the end of the tick.
type World struct {
	pool    *EntityPool
	stores  []Removable
	hooks   []DestroyHook
	queue   []EntityID
	pending mapset.Set[EntityID]
}

func NewWorld() *World {
	return &World{
		pool:    NewEntityPool(),
		pending: mapset.New[EntityID](),
	}
}

// Register attaches stores whose entries are dropped along with their entity.
func (w *World) Register(stores ...Removable) {
	w.stores = append(w.stores, stores...)
}

// OnDestroy adds a hook run by FlushDestroyQueue. Hooks run in the order
// they were added.
func (w *World) OnDestroy(h DestroyHook) {
	w.hooks = append(w.hooks, h)
}

func (w *World) CreateEntity() EntityID { return w.pool.Create() }
func (w *World) Alive(id EntityID) bool { return w.pool.Alive(id) }

// MarkForDestruction queues id for the next flush. It reports false for a
// dead id or one already queued.
func (w *World) MarkForDestruction(id EntityID) bool {
	if !w.pool.Alive(id) || w.pending.Has(id) {
		return false
	}
	w.pending.Put(id)
	w.queue = append(w.queue, id)
	return true
}

// Pending reports how many entities wait for the next flush.
func (w *World) Pending() int { return len(w.queue) }

// FlushDestroyQueue destroys every queued entity in queue order and returns
// their ids. Entities a hook marks are left for the next flush.
func (w *World) FlushDestroyQueue() []EntityID {
	done := w.queue
	w.queue = nil
	for _, id := range done {
		for _, h := range w.hooks {
			h(id)
		}
		for _, s := range w.stores {
			s.Remove(id)
		}
		w.pool.Destroy(id)
		w.pending.Remove(id)
	}
	return done
}
