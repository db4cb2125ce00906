package simulation

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/lao-tseu-is-alive/go-instance-flock/pkg/flock"
	"github.com/tochemey/goakt/v3/log"
)

const defaultDebounce = 300 * time.Millisecond

// ParamsWatcher reloads the steering params whenever the config file changes on disk.
// Only the params section is hot reloaded; the other keys need a restart.
type ParamsWatcher struct {
	path     string
	debounce time.Duration
	logger   log.Logger
	apply    func(context.Context, flock.Params) error
}

func NewParamsWatcher(path string, logger log.Logger, apply func(context.Context, flock.Params) error) *ParamsWatcher {
	return &ParamsWatcher{
		path:     path,
		debounce: defaultDebounce,
		logger:   logger,
		apply:    apply,
	}
}

// Run blocks until ctx is done. The directory is watched rather than the file so that
// editors replacing the file on save are still seen.
func (w *ParamsWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	w.logger.Infof("watching %s for steering params (debounce: %v)", w.path, w.debounce)

	target := filepath.Clean(w.path)
	reload := make(chan struct{}, 1)
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			w.reload(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Errorf("config watcher: %v", err)
		}
	}
}

func (w *ParamsWatcher) reload(ctx context.Context) {
	b, err := os.ReadFile(w.path)
	if err != nil {
		w.logger.Warnf("config reload: %v", err)
		return
	}
	cfg := DefaultConfig()
	if err := decodeConfig(b, cfg); err != nil {
		w.logger.Warnf("config reload: %v", err)
		return
	}
	if err := w.apply(ctx, cfg.Params); err != nil {
		w.logger.Warnf("config reload: %v", err)
		return
	}
	w.logger.Infof("steering params reloaded from %s", w.path)
}
