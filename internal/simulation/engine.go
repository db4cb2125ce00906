package simulation

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/lao-tseu-is-alive/go-instance-flock/pkg/flock"
	"github.com/lao-tseu-is-alive/go-instance-flock/pkg/instance"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/structpb"
)

const askTimeout = 2 * time.Second

// NewFlock places one boid per instance at random inside the configured canvas.
func NewFlock(cfg *Config, list []instance.Instance) (*flock.Flock, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	boids, err := flock.Spawn(instance.Payloads(list), cfg.Canvas(), rng)
	if err != nil {
		return nil, err
	}
	var opts []flock.Option
	if cfg.Wrap {
		opts = append(opts, flock.WithWrap(cfg.Canvas()))
	}
	return flock.New(boids, cfg.Params, opts...)
}

// Engine runs a flock inside an actor system and exposes it to viewers.
type Engine struct {
	System   actor.ActorSystem
	pid      *actor.PID
	flock    *flock.Flock
	frames   chan flock.Frame
	lastTick atomic.Int64
}

// Start boots the actor system and spawns the flock actor.
func Start(ctx context.Context, f *flock.Flock, logger log.Logger) (*Engine, error) {
	system, err := actor.NewActorSystem("InstanceFlock",
		actor.WithLogger(logger),
		actor.WithActorInitMaxRetries(3))
	if err != nil {
		return nil, fmt.Errorf("failed to create actor system: %w", err)
	}
	if err := system.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start actor system: %w", err)
	}

	// Buffer to avoid blocking
	frames := make(chan flock.Frame, 10)
	pid, err := system.Spawn(ctx, "flock", NewFlockActor(f, frames))
	if err != nil {
		_ = system.Stop(ctx)
		return nil, fmt.Errorf("failed to spawn flock: %w", err)
	}

	e := &Engine{System: system, pid: pid, flock: f, frames: frames}
	e.lastTick.Store(time.Now().UnixNano())
	return e, nil
}

// Tick asks the actor for one simulation step. The resulting frame shows up on Frames.
func (e *Engine) Tick(ctx context.Context) error {
	now := time.Now().UnixNano()
	elapsed := time.Duration(now - e.lastTick.Swap(now))
	return actor.Tell(ctx, e.pid, NewTick(elapsed))
}

// Run ticks every interval until ctx is done.
func (e *Engine) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := e.Tick(ctx); err != nil {
				return err
			}
		}
	}
}

func (e *Engine) Pause(ctx context.Context, id string) (bool, error) {
	return e.ask(ctx, NewPauseCommand(id))
}

func (e *Engine) Resume(ctx context.Context, id string) (bool, error) {
	return e.ask(ctx, NewResumeCommand(id))
}

func (e *Engine) UpdateParams(ctx context.Context, p flock.Params) error {
	_, err := e.ask(ctx, NewParamsCommand(p))
	return err
}

func (e *Engine) ask(ctx context.Context, cmd *structpb.Struct) (bool, error) {
	resp, err := actor.Ask(ctx, e.pid, cmd, askTimeout)
	if err != nil {
		return false, fmt.Errorf("flock actor did not answer: %w", err)
	}
	res, ok := resp.(*structpb.Struct)
	if !ok {
		return false, fmt.Errorf("unexpected answer %T", resp)
	}
	return resultError(res)
}

// Frames delivers the frame produced by each tick. Frames are dropped when nobody reads.
func (e *Engine) Frames() <-chan flock.Frame {
	return e.frames
}

// Snapshot returns the current frame without ticking.
func (e *Engine) Snapshot() flock.Frame {
	return e.flock.Snapshot()
}

func (e *Engine) Params() flock.Params {
	return e.flock.Params()
}

func (e *Engine) Stop(ctx context.Context) error {
	return e.System.Stop(ctx)
}
