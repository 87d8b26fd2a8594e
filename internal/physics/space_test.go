package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestBodyPositionRoundTrip(t *testing.T) {
	s := NewSpace()
	want := mgl32.Vec3{3.7, 0.5, -1.1}
	b := s.NewBody(want)
	assert.Equal(t, want, b.Position())

	b.SetPosition(mgl32.Vec3{2, 1, 4})
	assert.Equal(t, mgl32.Vec3{2, 1, 4}, b.Position())
}

func TestStepIntegratesVelocity(t *testing.T) {
	s := NewSpace()
	b := s.NewBody(mgl32.Vec3{0, 0.5, 0})
	b.SetVelocity(mgl32.Vec3{2, 9, -1})
	assert.Equal(t, mgl32.Vec3{2, 0, -1}, b.Velocity())

	for i := 0; i < 10; i++ {
		s.Step(0.1)
	}
	p := b.Position()
	assert.InDelta(t, 2, p.X(), 1e-4)
	assert.Equal(t, float32(0.5), p.Y(), "height is not integrated")
	assert.InDelta(t, -1, p.Z(), 1e-4)
}

func TestRemove(t *testing.T) {
	s := NewSpace()
	a := s.NewBody(mgl32.Vec3{})
	b := s.NewBody(mgl32.Vec3{1, 0, 1})
	s.Remove(a)
	s.Remove(a)
	assert.Equal(t, 1, s.Len())
	s.Step(0.1)
	assert.Equal(t, mgl32.Vec3{1, 0, 1}, b.Position())
}
