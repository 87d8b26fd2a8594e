package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityPoolReuse(t *testing.T) {
	p := NewEntityPool()
	a := p.Create()
	require.False(t, a.IsZero())
	assert.True(t, p.Alive(a))
	assert.False(t, p.Alive(0))

	p.Destroy(a)
	assert.False(t, p.Alive(a))

	b := p.Create()
	assert.Equal(t, a.Index(), b.Index())
	assert.Equal(t, a.Generation()+1, b.Generation())
	assert.True(t, p.Alive(b))
	assert.False(t, p.Alive(a))
}

func TestStoreIteratesInIDOrder(t *testing.T) {
	s := NewStore[string]()
	for _, id := range []EntityID{5, 2, 9, 1} {
		v := id.String()
		s.Set(id, &v)
	}
	s.Remove(9)
	s.Remove(42)

	var seen []EntityID
	s.Each(func(id EntityID, _ *string) { seen = append(seen, id) })
	assert.Equal(t, []EntityID{1, 2, 5}, seen)
	assert.Equal(t, seen, s.IDs())
	assert.Equal(t, 3, s.Len())
}

func TestEach2(t *testing.T) {
	names := NewStore[string]()
	speeds := NewStore[float32]()
	n1, n2 := "a", "b"
	names.Set(2, &n2)
	names.Set(1, &n1)
	sp := float32(3)
	speeds.Set(2, &sp)

	var got []string
	Each2(names, speeds, func(_ EntityID, n *string, s *float32) {
		got = append(got, *n)
		assert.Equal(t, float32(3), *s)
	})
	assert.Equal(t, []string{"b"}, got)
}

func TestWorldDeferredDestroy(t *testing.T) {
	w := NewWorld()
	ints := NewStore[int]()
	names := NewStore[string]()
	w.Register(ints, names)

	id := w.CreateEntity()
	v, n := 1, "crate"
	ints.Set(id, &v)
	names.Set(id, &n)

	assert.True(t, w.MarkForDestruction(id))
	assert.False(t, w.MarkForDestruction(id), "already queued")
	assert.Equal(t, 1, w.Pending())
	assert.True(t, w.Alive(id), "destruction waits for the flush")

	assert.Equal(t, []EntityID{id}, w.FlushDestroyQueue())
	assert.False(t, w.Alive(id))
	assert.False(t, ints.Has(id))
	assert.False(t, names.Has(id))
	assert.Zero(t, w.Pending())
	assert.Empty(t, w.FlushDestroyQueue())
	assert.False(t, w.MarkForDestruction(id), "dead ids are ignored")
}

func TestDestroyHooksSeeComponents(t *testing.T) {
	w := NewWorld()
	names := NewStore[string]()
	w.Register(names)

	var seen []string
	var follow EntityID
	w.OnDestroy(func(id EntityID) {
		n, ok := names.Get(id)
		require.True(t, ok, "components are still present")
		seen = append(seen, *n)
		if follow != 0 && id != follow {
			w.MarkForDestruction(follow)
		}
	})

	a, b := w.CreateEntity(), w.CreateEntity()
	na, nb := "a", "b"
	names.Set(a, &na)
	names.Set(b, &nb)
	follow = b

	w.MarkForDestruction(a)
	assert.Equal(t, []EntityID{a}, w.FlushDestroyQueue())
	assert.True(t, w.Alive(b), "marked by a hook, destroyed next flush")
	assert.Equal(t, []EntityID{b}, w.FlushDestroyQueue())
	assert.Equal(t, []string{"a", "b"}, seen)
}
