package fitness

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"swypesim/internal/inputmodel"
	"swypesim/internal/keyboard"
	"swypesim/internal/model"
	"swypesim/internal/stats"
	"swypesim/internal/vocab"
)

// ModelFactory returns an input model owned by one worker.
type ModelFactory func(seed int64) (inputmodel.InputModel, error)

// Reseeding hands every worker a reseeded copy of base.
func Reseeding(base inputmodel.InputModel) ModelFactory {
	return func(seed int64) (inputmodel.InputModel, error) {
		return base.Reseed(seed), nil
	}
}

type Config struct {
	Keyboard   keyboard.Keyboard
	Words      *vocab.List
	NewModel   ModelFactory
	Iterations int
	Workers    int
	Seed       int64
	Logger     *slog.Logger
}

// Evaluator splits a Monte Carlo evaluation across workers. Every worker owns
// its model and word sampler; the keyboard and word list are shared
// read-only. Worker results are merged with FitnessResult.Combine.
type Evaluator struct {
	cfg Config
}

func NewEvaluator(cfg Config) (*Evaluator, error) {
	if cfg.Keyboard == nil {
		return nil, fmt.Errorf("%w: keyboard is required", model.ErrInvalidInput)
	}
	if cfg.Words == nil || cfg.Words.Words() == 0 {
		return nil, fmt.Errorf("%w: empty vocabulary", model.ErrInvalidInput)
	}
	if cfg.NewModel == nil {
		return nil, fmt.Errorf("%w: model factory is required", model.ErrInvalidInput)
	}
	if cfg.Iterations <= 0 {
		return nil, fmt.Errorf("%w: iterations must be positive, got %d", model.ErrInvalidInput, cfg.Iterations)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Workers > cfg.Iterations {
		cfg.Workers = cfg.Iterations
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Evaluator{cfg: cfg}, nil
}

// Run evaluates and returns the merged result. The first worker error cancels
// the others and is returned.
func (e *Evaluator) Run(ctx context.Context) (model.FitnessResult, error) {
	cfg := e.cfg
	start := time.Now()

	seeds := rand.New(rand.NewSource(cfg.Seed))
	type job struct {
		iterations  int
		modelSeed   int64
		samplerSeed int64
	}
	jobs := make([]job, cfg.Workers)
	base, extra := cfg.Iterations/cfg.Workers, cfg.Iterations%cfg.Workers
	for w := range jobs {
		jobs[w].iterations = base
		if w < extra {
			jobs[w].iterations++
		}
		jobs[w].modelSeed = seeds.Int63()
		jobs[w].samplerSeed = seeds.Int63()
	}

	results := make([]model.FitnessResult, cfg.Workers)
	g, gctx := errgroup.WithContext(ctx)
	for w, j := range jobs {
		g.Go(func() error {
			m, err := cfg.NewModel(j.modelSeed)
			if err != nil {
				return fmt.Errorf("worker %d model: %w", w, err)
			}
			cfg.Logger.Debug("fitness worker started", "worker", w, "iterations", j.iterations)
			res, err := monteCarlo(gctx, cfg.Keyboard, m, cfg.Words.Sampler(j.samplerSeed), j.iterations)
			if err != nil {
				return fmt.Errorf("worker %d: %w", w, err)
			}
			results[w] = res
			cfg.Logger.Debug("fitness worker finished", "worker", w, "fitness", res.Fitness, "error", res.Error)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.FitnessResult{}, err
	}

	merged := model.CombineAll(results...)
	workerMean, workerStd, err := stats.FitnessSpread(results)
	if err != nil {
		return model.FitnessResult{}, err
	}
	elapsed := time.Since(start)
	evaluationDuration.Observe(elapsed.Seconds())
	lastFitness.Set(merged.Fitness)
	cfg.Logger.Info("fitness evaluation complete",
		"iterations", merged.Iterations,
		"workers", cfg.Workers,
		"words", cfg.Words.Words(),
		"fitness", merged.Fitness,
		"error", merged.Error,
		"worker_fitness_mean", workerMean,
		"worker_fitness_std", workerStd,
		"elapsed", elapsed,
	)
	return merged, nil
}
