package simulation

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/lao-tseu-is-alive/go-instance-flock/pkg/flock"
	"github.com/tochemey/goakt/v3/log"
)

func TestParamsWatcher(t *testing.T) {
	path := writeFile(t, "flock.json", `{"params": {"cohesionWeight": 1}}`)

	got := make(chan flock.Params, 4)
	w := NewParamsWatcher(path, log.DiscardLogger, func(_ context.Context, p flock.Params) error {
		got <- p
		return nil
	})
	w.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// give the watcher time to register
	time.Sleep(100 * time.Millisecond)

	// an invalid file is ignored
	if err := os.WriteFile(path, []byte(`{"params": {"cohesionWeight": -1}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte(`{"params": {"cohesionWeight": 0.3}}`), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case p := <-got:
		if p.CohesionWeight != 0.3 {
			t.Errorf("CohesionWeight = %v; want 0.3", p.CohesionWeight)
		}
		if p.SeparationWeight != flock.DefaultParams().SeparationWeight {
			t.Errorf("Reloaded params not merged with defaults: %+v", p)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not reload the params")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run() did not stop after cancel")
	}
}
