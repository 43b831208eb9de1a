package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/talgya/planet-ai/internal/ai"
	"github.com/talgya/planet-ai/internal/api"
	"github.com/talgya/planet-ai/internal/cosmos"
	"github.com/talgya/planet-ai/internal/engine"
	"github.com/talgya/planet-ai/internal/entropy"
	"github.com/talgya/planet-ai/internal/eventlog"
	"github.com/talgya/planet-ai/internal/persistence"
	"github.com/talgya/planet-ai/internal/planet"
	"github.com/talgya/planet-ai/internal/protocol"
	"github.com/talgya/planet-ai/internal/resource"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one simulated planet until it is destroyed or the scenario ends",
	Args:  cobra.NoArgs,
	RunE:  runPlanet,
}

func runPlanet(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ── Journal ───────────────────────────────────────────────────────
	events := eventlog.New(slog.Default())
	var journal *persistence.DB
	var runID string
	if cfg.Journal.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Journal.Path), 0o755); err != nil {
			return fmt.Errorf("create journal dir: %w", err)
		}
		db, err := persistence.Open(cfg.Journal.Path)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer db.Close()
		journal = db

		runID, err = journal.BeginRun(cfg.Planet.ID, cfg)
		if err != nil {
			return err
		}
		events.AddSink(journal)
	}

	// ── Planet ────────────────────────────────────────────────────────
	gen, err := resource.NewGenerator(resource.AllBasic...)
	if err != nil {
		return err
	}
	comb, err := resource.NewCombinator(resource.AllComplex...)
	if err != nil {
		return err
	}
	opts := []planet.Option{planet.WithCells(cfg.Planet.Cells)}
	if !cfg.Planet.Rockets {
		opts = append(opts, planet.WithoutRockets())
	}
	st := planet.NewState(planet.ID(cfg.Planet.ID), opts...)
	brain := ai.New(cfg.AIConfig(), ai.WithLogger(events))

	toPlanet := make(chan protocol.OrchestratorMessage)
	fromPlanet := make(chan protocol.PlanetToOrchestrator, 1)
	explorers := make(chan protocol.ExplorerMessage)

	p, err := engine.New(st, brain, gen, comb, engine.Channels{
		FromOrchestrator: toPlanet,
		ToOrchestrator:   fromPlanet,
		FromExplorers:    explorers,
	}, engine.WithLogger(events))
	if err != nil {
		return fmt.Errorf("build planet: %w", err)
	}

	// ── Galaxy ────────────────────────────────────────────────────────
	var rng entropy.Source
	if seed := cfg.Sim.Weather.Seed; seed != 0 {
		rng = entropy.NewSeeded(seed)
	}
	driver := cosmos.NewDriver(cfg.Driver(), cosmos.NewWeather(cfg.Weather()), rng, cosmos.Links{
		ToPlanet:   toPlanet,
		FromPlanet: fromPlanet,
		Explorer:   explorers,
	})

	slog.Info("planet starting",
		"planet", cfg.Planet.ID,
		"run", runID,
		"random_mode", cfg.AI.RandomMode,
		"half_life", cfg.AI.HalfLife,
		"max_steps", cfg.Sim.MaxSteps,
	)

	g, gctx := errgroup.WithContext(ctx)
	simCtx, endSim := context.WithCancel(gctx)
	defer endSim()

	var report cosmos.Report
	g.Go(func() error {
		err := p.Run(simCtx)
		if errors.Is(err, engine.ErrDestroyed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		defer endSim()
		rep, err := driver.Run(simCtx)
		report = rep
		return err
	})
	if cfg.API.Addr != "" {
		srv := &api.Server{
			Planet:        p,
			RunID:         runID,
			Addr:          cfg.API.Addr,
			RatePerSecond: cfg.API.RatePerSecond,
			RateBurst:     cfg.API.RateBurst,
		}
		if journal != nil {
			srv.Journal = journal
		}
		g.Go(func() error { return srv.Run(simCtx) })
	}

	runErr := g.Wait()

	outcome := outcomeOf(ctx, report, runErr)
	if journal != nil {
		if err := journal.EndRun(outcome); err != nil {
			slog.Warn("journal end run", "error", err)
		}
	}
	printReport(cmd.OutOrStdout(), outcome, report, p.Status())
	return runErr
}

func outcomeOf(ctx context.Context, rep cosmos.Report, err error) string {
	switch {
	case rep.Destroyed:
		return "destroyed"
	case err != nil:
		return "failed"
	case ctx.Err() != nil:
		return "interrupted"
	default:
		return "survived"
	}
}

func printReport(w io.Writer, outcome string, rep cosmos.Report, st engine.Status) {
	fmt.Fprintf(w, "\nPlanet %d %s after %s steps\n", st.PlanetID, outcome, humanize.Comma(int64(rep.Steps)))
	fmt.Fprintf(w, "  sunrays             %s\n", humanize.Comma(int64(rep.Sunrays)))
	fmt.Fprintf(w, "  asteroids deflected %s\n", humanize.Comma(int64(rep.AsteroidsDeflected)))
	fmt.Fprintf(w, "  requests granted    %s\n", humanize.Comma(int64(rep.Accepted)))
	fmt.Fprintf(w, "  requests refused    %s\n", humanize.Comma(int64(rep.Refused)))
	if rep.Unanswered > 0 {
		fmt.Fprintf(w, "  requests unanswered %s\n", humanize.Comma(int64(rep.Unanswered)))
	}
	fmt.Fprintf(w, "  acceptance rate     %.1f%%\n", 100*rep.AcceptanceRate())
	fmt.Fprintf(w, "  final sunray chance %.3f\n", rep.FinalSunrayChance)
	fmt.Fprintf(w, "  rockets built       %s\n", humanize.Comma(int64(st.State.RocketsBuilt)))
	if !st.StartedAt.IsZero() {
		fmt.Fprintf(w, "  started             %s\n", humanize.Time(st.StartedAt))
	}
}
