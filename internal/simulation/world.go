package simulation

import (
	"time"

	"github.com/lao-tseu-is-alive/go-instance-flock/pkg/flock"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/structpb"
)

// FlockActor owns the authoritative flock. Ticks and gate commands reach it through its
// mailbox, so they are applied one at a time and in arrival order.
type FlockActor struct {
	flock *flock.Flock
	// Communication with the viewers
	frames chan<- flock.Frame

	// --- Benchmark Stats ---
	tickCount   int
	cmdCount    int
	maxGap      time.Duration
	lastLogTime time.Time
}

var _ actor.Actor = (*FlockActor)(nil)

func NewFlockActor(f *flock.Flock, frames chan<- flock.Frame) *FlockActor {
	return &FlockActor{
		flock:       f,
		frames:      frames,
		lastLogTime: time.Now(),
	}
}

func (a *FlockActor) PreStart(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Infof("Flock actor %s starting with %d boids", ctx.ActorName(), a.flock.Len())
	return nil
}

func (a *FlockActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *goaktpb.PostStart:
		ctx.Logger().Info("Flock started")
		// viewers get the initial positions before the first tick
		a.pushFrame(a.flock.Snapshot())

	case *durationpb.Duration:
		a.logBenchmarks(ctx.Logger())
		a.observeTick(msg.AsDuration())
		a.pushFrame(a.flock.Tick())

	// Commands are expected through Ask
	case *structpb.Struct:
		a.cmdCount++
		ctx.Response(a.apply(ctx.Logger(), msg))

	default:
		ctx.Unhandled()
	}
}

// apply runs one command against the flock and builds its result.
func (a *FlockActor) apply(logger log.Logger, msg *structpb.Struct) *structpb.Struct {
	cmd, err := parseCommand(msg)
	if err != nil {
		logger.Warnf("rejected command: %v", err)
		return newResult(false, err)
	}

	switch cmd.kind {
	case cmdPause, cmdResume:
		changed, err := a.flock.SetPaused(cmd.id, cmd.kind == cmdPause)
		if err != nil {
			logger.Warnf("%s %s: %v", cmd.kind, cmd.id, err)
			return newResult(false, err)
		}
		if changed {
			logger.Debugf("boid %s: %s", cmd.id, cmd.kind)
		}
		return newResult(changed, nil)
	default:
		if err := a.flock.SetParams(cmd.params); err != nil {
			logger.Warnf("rejected params: %v", err)
			return newResult(false, err)
		}
		logger.Infof("steering params updated: %+v", cmd.params)
		return newResult(true, nil)
	}
}

func (a *FlockActor) logBenchmarks(logger log.Logger) {
	if time.Since(a.lastLogTime) >= time.Second {
		paused := 0
		for _, b := range a.flock.Snapshot().Boids {
			if b.Paused {
				paused++
			}
		}
		logger.Infof("📊 TICK RATE: %d/sec | Max gap: %s | Commands: %d | Boids: %d (paused: %d)",
			a.tickCount, a.maxGap, a.cmdCount, a.flock.Len(), paused)
		a.tickCount = 0
		a.cmdCount = 0
		a.maxGap = 0
		a.lastLogTime = time.Now()
	}
}

// observeTick counts a tick and keeps the longest gap between two ticks.
func (a *FlockActor) observeTick(gap time.Duration) {
	a.tickCount++
	if gap > a.maxGap {
		a.maxGap = gap
	}
}

func (a *FlockActor) pushFrame(fr flock.Frame) {
	select {
	case a.frames <- fr:
	default:
		// viewer busy, skip frame
	}
}

func (a *FlockActor) PostStop(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Info("Flock actor is shutdown...")
	return nil
}
