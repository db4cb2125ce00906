package flock

// RunState is the per boid pause state machine: Running <-> Paused.
// There is no terminal state, a boid can be toggled for the whole life of the flock.
type RunState int

const (
	Running RunState = iota
	Paused
)

func (s RunState) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

// SetPaused moves b to Paused (paused=true) or Running (paused=false).
// Only the flag is touched, position and velocity are left as they are, so a
// resumed boid continues from exactly where it stopped.
// It reports whether the state changed; asking for the current state is a no-op.
func SetPaused(b *Boid, paused bool) bool {
	next := Running
	if paused {
		next = Paused
	}
	if b.state == next {
		return false
	}
	b.state = next
	return true
}
