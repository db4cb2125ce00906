package flock

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/lao-tseu-is-alive/go-instance-flock/pkg/geometry"
	"github.com/paulmach/orb"
)

var (
	ErrInvalidMaxSpeed   = errors.New("max speed must be positive and finite")
	ErrInvalidSeparation = errors.New("desired separation must be positive and finite")
	ErrInvalidState      = errors.New("position and velocity must be finite")
	ErrNilPayload        = errors.New("boid payload is nil")
	ErrInvalidCanvas     = errors.New("canvas bound must have a positive width and height")
)

// Payload is the external record a boid is bound to.
// The flock only reads the two derived metrics and the identifiers; everything
// else in the record belongs to whoever renders it.
type Payload interface {
	ID() string
	GroupID() string
	MaxSpeed() float64
	DesiredSeparation() float64
}

// Boid represents a single entity in the flock.
// Boids is an artificial life program, developed by Craig Reynolds in 1986,
// which simulates the flocking behaviour of birds, and related group motion.
// https://en.wikipedia.org/wiki/Boids
//
// Position and velocity change only through Flock.Tick, the paused flag only
// through SetPaused. Everything else is fixed at construction.
type Boid struct {
	id                string
	position          geometry.Vector2D
	velocity          geometry.Vector2D
	maxSpeed          float64
	desiredSeparation float64
	state             RunState
	payload           Payload
}

// NewBoid binds a boid to payload. maxSpeed and desiredSeparation are read from the payload once
// and must be positive and finite. The initial velocity is clamped to maxSpeed.
// If the payload has no id a random one is generated.
func NewBoid(payload Payload, position, velocity geometry.Vector2D) (*Boid, error) {
	if payload == nil {
		return nil, ErrNilPayload
	}
	id := payload.ID()
	if id == "" {
		id = uuid.NewString()
	}
	maxSpeed := payload.MaxSpeed()
	if !positiveFinite(maxSpeed) {
		return nil, fmt.Errorf("boid %s: %w (got %v)", id, ErrInvalidMaxSpeed, maxSpeed)
	}
	sep := payload.DesiredSeparation()
	if !positiveFinite(sep) {
		return nil, fmt.Errorf("boid %s: %w (got %v)", id, ErrInvalidSeparation, sep)
	}
	if !position.IsFinite() || !velocity.IsFinite() {
		return nil, fmt.Errorf("boid %s: %w", id, ErrInvalidState)
	}
	return &Boid{
		id:                id,
		position:          position,
		velocity:          velocity.Limit(maxSpeed),
		maxSpeed:          maxSpeed,
		desiredSeparation: sep,
		state:             Running,
		payload:           payload,
	}, nil
}

// Spawn creates one boid per payload at a random position inside canvas, with
// velocity components drawn uniformly from [-1, 1].
func Spawn(payloads []Payload, canvas orb.Bound, rng *rand.Rand) ([]*Boid, error) {
	if !(canvas.Right() > canvas.Left()) || !(canvas.Top() > canvas.Bottom()) {
		return nil, ErrInvalidCanvas
	}
	w := canvas.Right() - canvas.Left()
	h := canvas.Top() - canvas.Bottom()
	boids := make([]*Boid, 0, len(payloads))
	for _, p := range payloads {
		pos := geometry.Vector2D{
			X: canvas.Left() + rng.Float64()*w,
			Y: canvas.Bottom() + rng.Float64()*h,
		}
		vel := geometry.Vector2D{
			X: rng.Float64()*2 - 1,
			Y: rng.Float64()*2 - 1,
		}
		b, err := NewBoid(p, pos, vel)
		if err != nil {
			return nil, err
		}
		boids = append(boids, b)
	}
	return boids, nil
}

func (b *Boid) ID() string                  { return b.id }
func (b *Boid) Position() geometry.Vector2D { return b.position }
func (b *Boid) Velocity() geometry.Vector2D { return b.velocity }
func (b *Boid) MaxSpeed() float64           { return b.maxSpeed }
func (b *Boid) DesiredSeparation() float64  { return b.desiredSeparation }
func (b *Boid) Payload() Payload            { return b.payload }
func (b *Boid) State() RunState             { return b.state }
func (b *Boid) Paused() bool                { return b.state == Paused }

// String is used by the debug logs.
func (b *Boid) String() string {
	return fmt.Sprintf("%s[%s] pos:%s vel:%s", b.id, b.state, b.position, b.velocity)
}

func positiveFinite(f float64) bool {
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}
