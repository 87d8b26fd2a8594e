package physics

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/jakecoffman/cp"
)

// Space integrates agent bodies. The grid plane maps onto the 2D physics
// plane as world X -> X and world Z -> Y; height is carried alongside.
type Space struct {
	space  *cp.Space
	bodies []*Body
}

func NewSpace() *Space {
	s := cp.NewSpace()
	s.SetGravity(cp.Vector{})
	return &Space{space: s}
}

// NewBody adds a kinematic body at pos. Kinematic bodies move only by the
// velocity they are given and are not pushed by anything.
func (s *Space) NewBody(pos mgl32.Vec3) *Body {
	b := &Body{body: s.space.AddBody(cp.NewKinematicBody())}
	b.SetPosition(pos)
	s.bodies = append(s.bodies, b)
	return b
}

// Remove takes a body out of the simulation.
func (s *Space) Remove(b *Body) {
	for i, x := range s.bodies {
		if x == b {
			s.space.RemoveBody(b.body)
			s.bodies = append(s.bodies[:i], s.bodies[i+1:]...)
			return
		}
	}
}

func (s *Space) Len() int { return len(s.bodies) }

// Step advances every body by dt seconds.
func (s *Space) Step(dt float32) {
	if dt <= 0 {
		return
	}
	s.space.Step(float64(dt))
}

// Body is one agent's physical presence. It satisfies movement.Body.
type Body struct {
	body *cp.Body
	y    float32
}

func (b *Body) Position() mgl32.Vec3 {
	p := b.body.Position()
	return mgl32.Vec3{float32(p.X), b.y, float32(p.Y)}
}

// SetPosition teleports the body. Every float32 is exactly representable as
// float64, so Position returns exactly what was set.
func (b *Body) SetPosition(p mgl32.Vec3) {
	b.body.SetPosition(cp.Vector{X: float64(p.X()), Y: float64(p.Z())})
	b.y = p.Y()
}

// SetVelocity sets the horizontal velocity; the Y component is ignored.
func (b *Body) SetVelocity(v mgl32.Vec3) {
	b.body.SetVelocityVector(cp.Vector{X: float64(v.X()), Y: float64(v.Z())})
}

func (b *Body) Velocity() mgl32.Vec3 {
	v := b.body.Velocity()
	return mgl32.Vec3{float32(v.X), 0, float32(v.Y)}
}
