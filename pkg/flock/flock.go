package flock

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/lao-tseu-is-alive/go-instance-flock/pkg/geometry"
	"github.com/paulmach/orb"
)

var (
	ErrEmptyFlock  = errors.New("flock needs at least one boid")
	ErrUnknownBoid = errors.New("unknown boid")
	ErrDuplicateID = errors.New("duplicate boid id")
)

// BoidState is the read only view of one boid handed to renderers.
type BoidState struct {
	ID                string            `json:"id"`
	Group             string            `json:"group"`
	Position          geometry.Vector2D `json:"position"`
	Velocity          geometry.Vector2D `json:"velocity"`
	DesiredSeparation float64           `json:"desiredSeparation"`
	Paused            bool              `json:"paused"`
	Payload           Payload           `json:"-"`
}

// Frame is the outcome of one tick. Positions[i] and Boids[i] belong to the i-th boid
// of the population the flock was created with.
type Frame struct {
	Seq       uint64              `json:"seq"`
	Positions []geometry.Vector2D `json:"positions"`
	Boids     []BoidState         `json:"boids"`
}

// Flock is the frame driver. It owns the population and advances it once per Tick.
// All methods are safe for concurrent use: a tick and a gate call never interleave.
type Flock struct {
	mu     sync.Mutex
	boids  []*Boid
	index  map[string]int
	params Params
	wrap   *orb.Bound
	seq    uint64

	// scratch buffers reused between ticks
	nextPos []geometry.Vector2D
	nextVel []geometry.Vector2D
}

// Option configures a Flock.
type Option func(*Flock)

// WithWrap makes boids leaving canvas re-enter from the opposite edge.
func WithWrap(canvas orb.Bound) Option {
	return func(f *Flock) {
		c := canvas
		f.wrap = &c
	}
}

// New creates a frame driver over boids. The slice order is kept for the life of the flock.
func New(boids []*Boid, params Params, opts ...Option) (*Flock, error) {
	if len(boids) == 0 {
		return nil, ErrEmptyFlock
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	f := &Flock{
		boids:   make([]*Boid, len(boids)),
		index:   make(map[string]int, len(boids)),
		params:  params,
		nextPos: make([]geometry.Vector2D, len(boids)),
		nextVel: make([]geometry.Vector2D, len(boids)),
	}
	copy(f.boids, boids)
	for i, b := range f.boids {
		if _, ok := f.index[b.id]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, b.id)
		}
		f.index[b.id] = i
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.wrap != nil && (!(f.wrap.Right() > f.wrap.Left()) || !(f.wrap.Top() > f.wrap.Bottom())) {
		return nil, ErrInvalidCanvas
	}
	return f, nil
}

// Tick advances every running boid by one step and returns the resulting frame.
// Every boid steers against the state of the population as it was when the tick
// started; new states are committed together once all of them are computed.
// Paused boids keep their position and velocity but are still seen as neighbors.
func (f *Flock) Tick() Frame {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, b := range f.boids {
		if b.state == Paused {
			f.nextPos[i], f.nextVel[i] = b.position, b.velocity
			continue
		}
		f.nextPos[i], f.nextVel[i] = Steer(b, f.boids, f.params)
	}
	for i, b := range f.boids {
		if b.state == Paused {
			continue
		}
		b.velocity = f.nextVel[i]
		b.position = f.wrapped(f.nextPos[i])
	}
	f.seq++
	return f.frame()
}

// Snapshot returns the current frame without advancing the simulation.
func (f *Flock) Snapshot() Frame {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frame()
}

// Pause freezes the boid with the given id. It reports whether the state changed.
func (f *Flock) Pause(id string) (bool, error) {
	return f.SetPaused(id, true)
}

// Resume lets the boid with the given id move again. It reports whether the state changed.
func (f *Flock) Resume(id string) (bool, error) {
	return f.SetPaused(id, false)
}

// SetPaused applies the interaction gate to one boid atomically with respect to Tick.
func (f *Flock) SetPaused(id string, paused bool) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.index[id]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownBoid, id)
	}
	return SetPaused(f.boids[i], paused), nil
}

// Params returns the steering parameters in use.
func (f *Flock) Params() Params {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.params
}

// SetParams replaces the steering parameters from the next tick on.
func (f *Flock) SetParams(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	f.mu.Lock()
	f.params = p
	f.mu.Unlock()
	return nil
}

// Len returns the population size.
func (f *Flock) Len() int {
	return len(f.boids)
}

func (f *Flock) frame() Frame {
	fr := Frame{
		Seq:       f.seq,
		Positions: make([]geometry.Vector2D, len(f.boids)),
		Boids:     make([]BoidState, len(f.boids)),
	}
	for i, b := range f.boids {
		fr.Positions[i] = b.position
		fr.Boids[i] = BoidState{
			ID:                b.id,
			Group:             b.payload.GroupID(),
			Position:          b.position,
			Velocity:          b.velocity,
			DesiredSeparation: b.desiredSeparation,
			Paused:            b.state == Paused,
			Payload:           b.payload,
		}
	}
	return fr
}

// wrapped maps p back onto the canvas when wrapping is enabled.
func (f *Flock) wrapped(p geometry.Vector2D) geometry.Vector2D {
	if f.wrap == nil {
		return p
	}
	return geometry.Vector2D{
		X: wrapAxis(p.X, f.wrap.Left(), f.wrap.Right()),
		Y: wrapAxis(p.Y, f.wrap.Bottom(), f.wrap.Top()),
	}
}

func wrapAxis(v, lo, hi float64) float64 {
	span := hi - lo
	if v >= lo && v < hi {
		return v
	}
	r := math.Mod(v-lo, span)
	if r < 0 {
		r += span
	}
	return lo + r
}
