// Command fieldwave runs a persona receiver headless: the persona field drives
// the wavetable synth model, listens to its richness every frame, and reacts
// to burst and silence signals from stdin or a frame script.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/talgya/fieldwave/internal/config"
	"github.com/talgya/fieldwave/internal/engine"
	"github.com/talgya/fieldwave/internal/entropy"
	"github.com/talgya/fieldwave/internal/field"
	"github.com/talgya/fieldwave/internal/persistence"
	"github.com/talgya/fieldwave/internal/query"
	"github.com/talgya/fieldwave/internal/receiver"
	"github.com/talgya/fieldwave/internal/visual"
	"github.com/talgya/fieldwave/internal/wave"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	// ── Persisted persona ─────────────────────────────────────────────
	var overrides field.Patch
	if cfg.State != "" {
		patch, err := query.Decode(cfg.State)
		if err != nil {
			slog.Warn("ignoring FIELDWAVE_STATE", "state", cfg.State, "error", err)
		} else {
			overrides.Persona = patch
		}
	}

	script, err := engine.ParseScript(cfg.Script)
	if err != nil {
		slog.Error("failed to parse script", "error", err)
		os.Exit(1)
	}

	// ── Journal ───────────────────────────────────────────────────────
	db, err := persistence.Open()
	if err != nil {
		slog.Error("failed to open journal", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	session, err := db.StartSession(cfg.Name, cfg.Seed)
	if err != nil {
		slog.Error("failed to start session", "error", err)
		os.Exit(1)
	}

	// ── Receiver ──────────────────────────────────────────────────────
	synth := wave.NewSynth()
	synth.SetRootHz(cfg.RootHz)
	synth.SetWavetablePos(cfg.Morph)
	scope := visual.New(cfg.Seed, cfg.RenderWidth)

	rcv := receiver.New(receiver.Options{
		Seed:       cfg.Seed,
		Name:       cfg.Name,
		Overrides:  overrides,
		Synth:      synth,
		Visualizer: scope,
		Rand:       entropy.NewSource(cfg.Seed).Float,
		Logger:     logger,
	})

	start := rcv.Field().Persona
	slog.Info("receiver ready",
		"session", session,
		"phase", start.Phase,
		"energy", fmt.Sprintf("%.2f", start.Energy),
		"plasticity", fmt.Sprintf("%.2f", start.Plasticity),
		"cues", len(script),
	)

	ctx := context.Background()
	if err := rcv.Start(ctx); err != nil {
		slog.Error("failed to start receiver", "error", err)
		os.Exit(1)
	}

	// ── Live signals ──────────────────────────────────────────────────
	eng := engine.NewEngine(cfg.FPS)
	eng.Speed = cfg.Speed
	eng.MaxFrames = cfg.Frames

	live := make(chan field.Signal, 16)
	if cfg.Stdin {
		go readSignals(os.Stdin, live, eng.Stop)
	}

	apply := func(frame uint64, sig field.Signal) {
		before := rcv.Field()
		rcv.ApplySignal(sig)
		if err := db.RecordSignal(session, frame, sig, before, rcv.Field()); err != nil {
			slog.Warn("journal signal failed", "error", err)
		}
	}

	eng.OnFrame = func(frame uint64, dt float64) {
		for _, sig := range script.Due(frame) {
			apply(frame, sig)
		}
	drain:
		for {
			select {
			case sig := <-live:
				apply(frame, sig)
			default:
				break drain
			}
		}

		snap := rcv.Step(dt)

		if frame%cfg.SampleEvery == 0 {
			if err := db.RecordFrame(session, persistence.NewFrameRow(frame, snap)); err != nil {
				slog.Warn("journal frame failed", "error", err)
			}
		}
		if cfg.Render {
			fmt.Println(scope.Render(dt))
		}
	}
	eng.OnSecond = func(frame uint64) {
		snap := rcv.Snapshot()
		p := snap.Field.Persona
		attrs := []any{
			"time", engine.Elapsed(frame, eng.FPS()),
			"phase", p.Phase,
			"band", snap.Mode.Band,
			"energy", fmt.Sprintf("%.3f", p.Energy),
			"plasticity", fmt.Sprintf("%.3f", p.Plasticity),
		}
		if snap.Wave != nil {
			attrs = append(attrs,
				"value", fmt.Sprintf("%.3f", snap.Wave.Value),
				"richness", fmt.Sprintf("%.3f", snap.Wave.RichnessNorm),
				"dominant", snap.Wave.Dominant.ID,
			)
		}
		slog.Info("field", attrs...)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	eng.Run()

	if err := rcv.Stop(ctx); err != nil {
		slog.Warn("receiver stop failed", "error", err)
	}

	// ── Summary ───────────────────────────────────────────────────────
	sum, err := db.Summary(session)
	if err != nil {
		slog.Error("failed to summarize session", "error", err)
		os.Exit(1)
	}

	final := rcv.Field().Persona
	fmt.Printf("\n%s frames (%s), %s sampled; %d bursts, %d silences, %d phase changes.\n",
		humanize.Comma(int64(rcv.Frames())),
		engine.Elapsed(rcv.Frames(), eng.FPS()),
		humanize.Comma(sum.Frames),
		sum.Signals[string(field.SignalBurst)],
		sum.Signals[string(field.SignalSilence)],
		sum.Transitions,
	)
	fmt.Printf("Mean entropy %.3f, mean energy %.3f. Final phase: %s.\n",
		sum.MeanEntropy, sum.MeanEnergy, final.Phase)
	fmt.Printf("Resume with: FIELDWAVE_STATE=%q\n", query.Encode(final))
}

// readSignals forwards burst/silence lines to out. "quit" stops the engine.
// Anything else is logged and dropped.
func readSignals(in *os.File, out chan<- field.Signal, stop func()) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "q" {
			stop()
			return
		}
		sig, ok := field.ParseSignal(line)
		if !ok {
			slog.Warn("unknown signal", "input", line)
			continue
		}
		out <- sig
	}
}
