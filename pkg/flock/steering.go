package flock

import (
	"fmt"
	"math"

	"github.com/lao-tseu-is-alive/go-instance-flock/pkg/geometry"
)

// Params controls the steering constants shared by the whole flock.
// Passing this into Steer allows the rules to change at runtime.
type Params struct {
	// NeighborRadius bounds alignment and cohesion. Separation uses each boid's own DesiredSeparation.
	NeighborRadius float64 `json:"neighborRadius"`

	SeparationWeight float64 `json:"separationWeight"`
	AlignmentWeight  float64 `json:"alignmentWeight"`
	CohesionWeight   float64 `json:"cohesionWeight"`

	// MaxForce caps the alignment and cohesion steering before weighting.
	MaxForce float64 `json:"maxForce"`
	// ArrivalRadius is the distance below which cohesion slows down when nearing the centroid.
	ArrivalRadius float64 `json:"arrivalRadius"`
	// MinDistance is the floor used in place of the distance to a coincident neighbor.
	MinDistance float64 `json:"minDistance"`
}

// DefaultParams returns the weights of the reference d3 boid: separation counts twice
// as much as alignment and cohesion.
func DefaultParams() Params {
	return Params{
		NeighborRadius:   50,
		SeparationWeight: 2,
		AlignmentWeight:  1,
		CohesionWeight:   1,
		MaxForce:         0.1,
		ArrivalRadius:    100,
		MinDistance:      0.01,
	}
}

// Validate rejects parameters that would make steering non total.
func (p Params) Validate() error {
	checks := []struct {
		name     string
		v        float64
		positive bool
	}{
		{"neighborRadius", p.NeighborRadius, false},
		{"separationWeight", p.SeparationWeight, false},
		{"alignmentWeight", p.AlignmentWeight, false},
		{"cohesionWeight", p.CohesionWeight, false},
		{"maxForce", p.MaxForce, false},
		{"arrivalRadius", p.ArrivalRadius, true},
		{"minDistance", p.MinDistance, true},
	}
	for _, c := range checks {
		if math.IsNaN(c.v) || math.IsInf(c.v, 0) || c.v < 0 || (c.positive && c.v == 0) {
			return fmt.Errorf("invalid steering parameter %s: %v", c.name, c.v)
		}
	}
	return nil
}

// Steer computes one tick for self against population (which may contain self).
// It returns the new position and velocity without mutating anything, so the
// caller decides when to commit. Population entries are read as they are now.
func Steer(self *Boid, population []*Boid, p Params) (geometry.Vector2D, geometry.Vector2D) {
	var (
		separation, velSum, posSum geometry.Vector2D
		sepCount, neighbors        int
	)
	radiusSq := p.NeighborRadius * p.NeighborRadius
	sepSq := self.desiredSeparation * self.desiredSeparation

	for _, other := range population {
		if other == self {
			continue
		}
		offset := self.position.Sub(other.position)
		distSq := offset.LenSqr()

		// 1. Separation, weighted by inverse distance
		if distSq < sepSq {
			d := math.Max(math.Sqrt(distSq), p.MinDistance)
			dir := offset.Normalize()
			if dir.Eq(geometry.Zero) {
				dir = splitDirection(self, other)
			}
			separation = separation.Add(dir.Mul(1 / d))
			sepCount++
		}

		// Neighborhood for Alignment and Cohesion
		if distSq < radiusSq {
			velSum = velSum.Add(other.velocity)
			posSum = posSum.Add(other.position)
			neighbors++
		}
	}

	var alignment, cohesion geometry.Vector2D
	if sepCount > 0 {
		separation = separation.Mul(1 / float64(sepCount))
	}
	if neighbors > 0 {
		n := 1 / float64(neighbors)
		// 2. Alignment
		alignment = velSum.Mul(n).Sub(self.velocity).Limit(p.MaxForce)
		// 3. Cohesion
		cohesion = steerTo(self, posSum.Mul(n), p)
	}

	force := separation.Mul(p.SeparationWeight).
		Add(alignment.Mul(p.AlignmentWeight)).
		Add(cohesion.Mul(p.CohesionWeight))

	vel := self.velocity.Add(force).Limit(self.maxSpeed)
	if !vel.IsFinite() {
		vel = self.velocity
	}
	return self.position.Add(vel), vel
}

// splitDirection pushes two coincident boids apart along the X axis, the lower id
// to the left. Boids sharing an id (never the case inside a Flock) get no push.
func splitDirection(self, other *Boid) geometry.Vector2D {
	switch {
	case self.id < other.id:
		return geometry.Vector2D{X: -1}
	case self.id > other.id:
		return geometry.Vector2D{X: 1}
	default:
		return geometry.Zero
	}
}

// steerTo returns the steering that turns self towards target, slowing down inside ArrivalRadius.
func steerTo(self *Boid, target geometry.Vector2D, p Params) geometry.Vector2D {
	desired := target.Sub(self.position)
	d := desired.Len()
	if d < geometry.Epsilon {
		return geometry.Zero
	}
	speed := self.maxSpeed
	if d < p.ArrivalRadius {
		speed *= d / p.ArrivalRadius
	}
	return desired.Normalize().Mul(speed).Sub(self.velocity).Limit(p.MaxForce)
}
