package flock

import (
	"testing"

	"github.com/lao-tseu-is-alive/go-instance-flock/pkg/geometry"
)

func onlyParams(sep, align, coh float64, radius float64) Params {
	p := DefaultParams()
	p.SeparationWeight = sep
	p.AlignmentWeight = align
	p.CohesionWeight = coh
	p.NeighborRadius = radius
	return p
}

func TestSteer_Separation(t *testing.T) {
	// Me is at 0,0. Friend is at 1,0 (very close), should be pushed away (negative X).
	me := mustBoid(t, "me", 1, 10, geometry.Zero, geometry.Zero)
	friend := mustBoid(t, "friend", 1, 10, geometry.Vector2D{X: 1}, geometry.Zero)

	_, vel := Steer(me, []*Boid{me, friend}, onlyParams(1, 0, 0, 10))

	if vel.X >= 0 {
		t.Errorf("Expected negative vx (separation), got %f", vel.X)
	}
	if vel.Y != 0 {
		t.Errorf("Expected 0 vy, got %f", vel.Y)
	}
}

func TestSteer_SeparationCloserIsStronger(t *testing.T) {
	me := mustBoid(t, "me", 100, 10, geometry.Zero, geometry.Zero)
	near := mustBoid(t, "near", 1, 10, geometry.Vector2D{X: 1}, geometry.Zero)
	far := mustBoid(t, "far", 1, 10, geometry.Vector2D{X: 5}, geometry.Zero)
	p := onlyParams(1, 0, 0, 10)

	_, velNear := Steer(me, []*Boid{me, near}, p)
	_, velFar := Steer(me, []*Boid{me, far}, p)

	if velNear.Len() <= velFar.Len() {
		t.Errorf("Expected closer neighbor to repel more: near %v far %v", velNear, velFar)
	}
}

func TestSteer_Cohesion(t *testing.T) {
	// Friend is at 10,0 (outside separation but visible), should pull towards positive X.
	me := mustBoid(t, "me", 1, 1, geometry.Zero, geometry.Zero)
	friend := mustBoid(t, "friend", 1, 1, geometry.Vector2D{X: 10}, geometry.Zero)

	_, vel := Steer(me, []*Boid{me, friend}, onlyParams(0, 0, 1, 20))

	if vel.X <= 0 {
		t.Errorf("Expected positive vx (cohesion), got %f", vel.X)
	}
	if vel.Len() > DefaultParams().MaxForce+geometry.Epsilon {
		t.Errorf("Expected cohesion capped by max force, got %f", vel.Len())
	}
}

func TestSteer_Alignment(t *testing.T) {
	// Me is still, friend is moving 1,0: should accelerate along X by max force.
	me := mustBoid(t, "me", 1, 1, geometry.Zero, geometry.Zero)
	friend := mustBoid(t, "friend", 1, 1, geometry.Vector2D{X: 5}, geometry.Vector2D{X: 1})

	_, vel := Steer(me, []*Boid{me, friend}, onlyParams(0, 1, 0, 20))

	want := geometry.Vector2D{X: DefaultParams().MaxForce}
	if !vel.Eq(want) {
		t.Errorf("Expected alignment velocity %v, got %v", want, vel)
	}
}

func TestSteer_IdenticalVelocityNoAlignment(t *testing.T) {
	v := geometry.Vector2D{X: 0.5, Y: 0.5}
	me := mustBoid(t, "me", 1, 1, geometry.Zero, v)
	friend := mustBoid(t, "friend", 1, 1, geometry.Vector2D{X: 5}, v)

	_, vel := Steer(me, []*Boid{me, friend}, onlyParams(0, 1, 0, 20))

	if !vel.Eq(v) {
		t.Errorf("Expected unchanged velocity %v, got %v", v, vel)
	}
}

func TestSteer_FarNeighborDoesNotBrake(t *testing.T) {
	// Me moving at 1,0. Friend far away (beyond every radius): no force at all.
	me := mustBoid(t, "me", 1, 10, geometry.Zero, geometry.Vector2D{X: 1})
	friend := mustBoid(t, "friend", 1, 10, geometry.Vector2D{X: 100}, geometry.Zero)

	pos, vel := Steer(me, []*Boid{me, friend}, DefaultParams())

	if !vel.Eq(geometry.Vector2D{X: 1}) {
		t.Errorf("Expected velocity (1, 0), got %v. This indicates a braking bug.", vel)
	}
	if !pos.Eq(geometry.Vector2D{X: 1}) {
		t.Errorf("Expected position (1, 0), got %v", pos)
	}
}

func TestSteer_Alone(t *testing.T) {
	v := geometry.Vector2D{X: 0.3, Y: -0.4}
	me := mustBoid(t, "me", 1, 10, geometry.Vector2D{X: 2, Y: 2}, v)

	for _, population := range [][]*Boid{{me}, {}, nil} {
		pos, vel := Steer(me, population, DefaultParams())
		if !vel.Eq(v) {
			t.Errorf("Expected inertial velocity %v, got %v", v, vel)
		}
		if !pos.Eq(geometry.Vector2D{X: 2.3, Y: 1.6}) {
			t.Errorf("Expected position (2.3, 1.6), got %v", pos)
		}
	}
}

func TestSteer_CoincidentNeighbors(t *testing.T) {
	me := mustBoid(t, "me", 1, 10, geometry.Vector2D{X: 3, Y: 3}, geometry.Zero)
	twin := mustBoid(t, "twin", 1, 10, geometry.Vector2D{X: 3, Y: 3}, geometry.Zero)
	near := mustBoid(t, "near", 1, 10, geometry.Vector2D{X: 3.001, Y: 3}, geometry.Zero)

	pos, vel := Steer(me, []*Boid{me, twin, near}, DefaultParams())

	if !pos.IsFinite() || !vel.IsFinite() {
		t.Fatalf("Expected finite result, got pos %v vel %v", pos, vel)
	}
	if vel.Len() > me.MaxSpeed()+geometry.Epsilon {
		t.Errorf("Velocity %v exceeds max speed", vel)
	}
	if vel.X >= 0 {
		t.Errorf("Expected repulsion from the close neighbor, got %v", vel)
	}
}

func TestSteer_CoincidentTwinsSplit(t *testing.T) {
	v := geometry.Vector2D{X: 0.5}
	a := mustBoid(t, "a", 1, 10, geometry.Vector2D{X: 3, Y: 3}, v)
	b := mustBoid(t, "b", 1, 10, geometry.Vector2D{X: 3, Y: 3}, v)

	_, velA := Steer(a, []*Boid{a, b}, DefaultParams())
	_, velB := Steer(b, []*Boid{a, b}, DefaultParams())
	if velA.X >= 0 || velB.X <= 0 {
		t.Fatalf("Expected twins to push opposite ways, got a %v b %v", velA, velB)
	}

	f := mustFlock(t, []*Boid{a, b}, DefaultParams())
	for i := 0; i < 10; i++ {
		f.Tick()
	}
	if d := a.Position().DistanceTo(b.Position()); d < 1 {
		t.Errorf("Expected twins to drift apart, distance after 10 ticks = %v", d)
	}
}

func TestSteer_DoesNotMutate(t *testing.T) {
	me := mustBoid(t, "me", 1, 10, geometry.Zero, geometry.Vector2D{X: 0.2})
	friend := mustBoid(t, "friend", 1, 10, geometry.Vector2D{X: 1}, geometry.Vector2D{Y: 0.2})

	Steer(me, []*Boid{me, friend}, DefaultParams())

	if !me.Position().Eq(geometry.Zero) || !me.Velocity().Eq(geometry.Vector2D{X: 0.2}) {
		t.Errorf("Steer mutated self: %v", me)
	}
	if !friend.Position().Eq(geometry.Vector2D{X: 1}) || !friend.Velocity().Eq(geometry.Vector2D{Y: 0.2}) {
		t.Errorf("Steer mutated neighbor: %v", friend)
	}
}

func TestParams_Validate(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Errorf("DefaultParams().Validate() unexpected error: %v", err)
	}

	bad := []func(*Params){
		func(p *Params) { p.NeighborRadius = -1 },
		func(p *Params) { p.SeparationWeight = -2 },
		func(p *Params) { p.MaxForce = -0.1 },
		func(p *Params) { p.ArrivalRadius = 0 },
		func(p *Params) { p.MinDistance = 0 },
	}
	for i, mutate := range bad {
		p := DefaultParams()
		mutate(&p)
		if err := p.Validate(); err == nil {
			t.Errorf("case %d: expected validation error for %+v", i, p)
		}
	}
}
