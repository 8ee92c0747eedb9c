// Command skirmish runs one headless two-player match and prints its
// course: useful for watching the engine without a client.
package main

import (
	"flag"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/maroulf/gridlords/internal/config"
	"github.com/maroulf/gridlords/internal/event"
	"github.com/maroulf/gridlords/internal/game"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	duration := flag.Duration("duration", 60*time.Second, "match length before it is aborted")
	seed := flag.Int64("seed", 0, "rng seed (0 = from clock)")
	attackAfter := flag.Duration("attack", 15*time.Second, "when red switches its probes to attack")
	flag.Parse()

	cfg := config.FromEnv()
	cfg.Seed = *seed

	var events atomic.Int64
	sink := func(e event.Event) {
		events.Add(1)
		switch e.Name {
		case event.BuildProbe:
			built := e.Payload.(event.ProbeBuilt)
			slog.Info("probe built", "player", built.Player, "money", built.Money)
		case event.TurretFire:
			shot := e.Payload.(event.TurretShot)
			slog.Info("turret fired", "owner", shot.Player, "probe", shot.Probe.ID)
		}
	}

	done := make(chan event.Result, 1)
	onEnd := func(r event.Result, aborted bool) { done <- r }

	profiles := []event.Profile{
		{ID: "red", Name: "Red"},
		{ID: "blue", Name: "Blue"},
	}
	g, err := game.New(profiles, cfg, sink, onEnd)
	if err != nil {
		slog.Error("create game", "error", err)
		os.Exit(1)
	}
	g.Start()
	defer g.Stop()

	// after a grace period, send every red probe on the offensive
	go func() {
		time.Sleep(*attackAfter)
		snap, err := g.Snapshot()
		if err != nil {
			return
		}
		for _, p := range snap.Players {
			if p.ID != "red" {
				continue
			}
			ids := make([]string, 0, len(p.Probes))
			for _, probe := range p.Probes {
				ids = append(ids, probe.ID)
			}
			if _, err := g.ProbesAttack("red", ids); err != nil {
				slog.Warn("attack order rejected", "error", err)
				return
			}
			slog.Info("red probes attacking", "probes", len(ids))
		}
	}()

	timeout := time.After(*duration)
	select {
	case result := <-done:
		printResult(result, events.Load())
	case <-timeout:
		slog.Info("time up, aborting")
		if err := g.Abort(); err != nil {
			slog.Error("abort", "error", err)
			os.Exit(1)
		}
		printResult(<-done, events.Load())
	}
}

func printResult(r event.Result, events int64) {
	for i, p := range r.Ranking {
		slog.Info("final ranking", "place", i+1, "player", p.Name)
	}
	for _, s := range r.Stats {
		last := len(s.Money) - 1
		if last < 0 {
			continue
		}
		slog.Info("final stats",
			"player", s.Player,
			"money", s.Money[last],
			"occupation", s.Occupation[last],
			"probes", s.Probes[last],
		)
	}
	slog.Info("match over", "aborted", r.Aborted, "events", events)
}
