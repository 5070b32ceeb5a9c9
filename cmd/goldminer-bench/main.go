package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/plus3/goldminer/goldminer"
)

func main() {
	configPath := flag.String("config", "", "YAML match config. Defaults are used when empty.")
	matches := flag.Int("matches", 8, "Number of matches to run.")
	frames := flag.Int("frames", 3600, "Maximum frames per match.")
	seed := flag.Int64("seed", 1, "Seed of the first match. Match i uses seed+i.")
	parallel := flag.Int("parallel", runtime.GOMAXPROCS(0), "Matches run at the same time.")
	logLevel := flag.String("log-level", "warn", "Log level.")
	logFormat := flag.String("log-format", "console", "Log format: json or console.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	logger, err := goldminer.NewLogger(*logLevel, *logFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	cfg := goldminer.DefaultConfig()
	if *configPath != "" {
		cfg, err = goldminer.LoadConfigFile(*configPath)
		if err != nil {
			log.Fatalf("config: %v", err)
		}
	}

	report := &Report{
		Matches:        *matches,
		Frames:         *frames,
		Parallel:       *parallel,
		Seed:           *seed,
		GCPauseMetrics: *gcPauseMetrics,
		Results:        make([]MatchResult, *matches),
	}
	runtime.ReadMemStats(&report.MemStatsStart)

	logger.Info("bench starting", zap.Int("matches", *matches), zap.Int("frames", *frames))
	start := time.Now()

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(*parallel)
	for i := range *matches {
		matchCfg := cfg
		matchCfg.Match.Seed = *seed + int64(i)
		g.Go(func() error {
			result, err := runMatch(ctx, matchCfg, *frames, logger)
			if err != nil {
				return fmt.Errorf("match %d: %w", i, err)
			}
			report.Results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("bench: %v", err)
	}

	report.TotalTime = time.Since(start)
	runtime.ReadMemStats(&report.MemStatsEnd)
	report.Finalize()

	if err := report.Generate(os.Stdout); err != nil {
		log.Fatalf("Failed to generate report: %v", err)
	}
}

// runMatch plays one match with a scripted player: each player sends its
// rope at seeded random intervals.
func runMatch(ctx context.Context, cfg goldminer.Config, frames int, logger *zap.Logger) (MatchResult, error) {
	sim, err := goldminer.NewSimulation(cfg, nil, logger)
	if err != nil {
		return MatchResult{}, err
	}
	defer sim.Close()

	rng := rand.New(rand.NewPCG(uint64(cfg.Match.Seed), 0x9e3779b97f4a7c15))
	next := make(map[int]int, len(cfg.Players))
	for _, p := range cfg.Players {
		next[p.ID] = 30 + rng.IntN(90)
	}

	result := MatchResult{
		ID:        sim.MatchID.String(),
		Seed:      cfg.Match.Seed,
		FrameTime: Stats{Samples: make([]time.Duration, 0, frames)},
	}

	for frame := 0; frame < frames && !sim.Over(); frame++ {
		if frame%60 == 0 && ctx.Err() != nil {
			return MatchResult{}, ctx.Err()
		}
		for _, p := range cfg.Players {
			if frame >= next[p.ID] {
				sim.SendRope(p.ID)
				next[p.ID] = frame + 60 + rng.IntN(120)
			}
		}

		t := time.Now()
		sim.Step()
		result.FrameTime.Samples = append(result.FrameTime.Samples, time.Since(t))
	}

	result.FrameTime.Finalize()
	state := sim.State()
	result.Frames = sim.Frame()
	result.Over = state.Over
	result.Winner = state.Winner
	result.Collected = state.Collected
	result.Hash = sim.Hash()
	for _, p := range cfg.Players {
		result.Scores = append(result.Scores, PlayerScore{Player: p.ID, Points: sim.Score(p.ID)})
	}
	result.Systems = sim.Scheduler().GetStats().Systems
	return result, nil
}
