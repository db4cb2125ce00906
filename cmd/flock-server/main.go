package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lao-tseu-is-alive/go-instance-flock/internal/feed"
	"github.com/lao-tseu-is-alive/go-instance-flock/internal/server"
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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
	defer engine.Stop(context.Background())

	if *configFile != "" {
		w := simulation.NewParamsWatcher(*configFile, logger, engine.UpdateParams)
		go func() {
			if err := w.Run(ctx); err != nil {
				logger.Errorf("config watcher stopped: %v", err)
			}
		}()
	}

	srv := server.NewFlockServer(engine, server.Canvas{Width: cfg.CanvasWidth, Height: cfg.CanvasHeight}, logger)
	go srv.Run(ctx, cfg.TickInterval())

	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Infof("flock of %d instances listening on %s", f.Len(), cfg.Listen)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
