package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/lao-tseu-is-alive/go-instance-flock/internal/feed"
	"github.com/lao-tseu-is-alive/go-instance-flock/internal/render"
	"github.com/lao-tseu-is-alive/go-instance-flock/internal/simulation"
	golog "github.com/tochemey/goakt/v3/log"
)

func main() {
	configFile := flag.String("config", "", "JSON config file, watched for steering params changes")
	envFile := flag.String("env", ".env", "optional env file with FLOCK_* variables")
	demo := flag.Bool("demo", false, "use the embedded sample instances")
	debug := flag.Bool("debug", false, "debug logging")
	flag.Parse()

	level := golog.InfoLevel
	if *debug {
		level = golog.DebugLevel
	}
	logger := golog.New(level, os.Stdout)

	cfg, err := simulation.LoadConfig(*configFile)
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.ApplyEnv(*envFile); err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src, err := feed.Select(*demo, cfg.FeedFile, cfg.FeedURL, cfg.FeedToken, logger)
	if err != nil {
		log.Fatal(err)
	}
	list, err := src.Instances(ctx)
	if err != nil {
		log.Fatal(err)
	}
	f, err := simulation.NewFlock(cfg, list)
	if err != nil {
		log.Fatal(err)
	}

	engine, err := simulation.Start(ctx, f, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer engine.Stop(ctx)

	if *configFile != "" {
		w := simulation.NewParamsWatcher(*configFile, logger, engine.UpdateParams)
		go func() {
			if err := w.Run(ctx); err != nil {
				logger.Errorf("config watcher stopped: %v", err)
			}
		}()
	}

	ebiten.SetWindowSize(int(cfg.CanvasWidth), int(cfg.CanvasHeight))
	ebiten.SetWindowTitle("Instance flock")
	ebiten.SetTPS(max(1, 1000/cfg.TickMs))

	if err := ebiten.RunGame(render.NewGame(ctx, engine, cfg, logger)); err != nil {
		log.Fatal(err)
	}
}
