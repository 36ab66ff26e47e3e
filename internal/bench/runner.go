package bench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xwavl/lib/infra"
	"github.com/benz9527/xwavl/lib/tree"
	"github.com/benz9527/xwavl/lib/xlog"
)

type Kind string

const (
	WAVLBench  Kind = "wavl"
	DHeapBench Kind = "dheap"
)

var (
	ErrUnknownBench = errors.New("[bench] unknown bench kind")
	ErrTaskPanicked = errors.New("[bench] experiment panicked")
)

// Every experiment owns its tree or heap and its rng. Only the result
// slots are shared, one per task.
type Runner struct {
	cfg     *Config
	pool    *ants.Pool
	logger  xlog.XLogger
	metrics *Metrics
	out     io.Writer
}

func (r *Runner) seed() uint64 {
	if r.cfg.Seed != 0 {
		return r.cfg.Seed
	}
	return uint64(time.Now().UnixNano())
}

func taskRand(seed uint64, task int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(task)))
}

// submit runs the tasks on the pool and waits for all of them. A task
// panic is recovered here and reported as ErrTaskPanicked, its result
// slot stays unfilled.
func (r *Runner) submit(ctx context.Context, tasks []func(ctx context.Context) error) (err error) {
	var (
		wg   sync.WaitGroup
		lock sync.Mutex
	)
	collect := func(taskErr error) {
		if taskErr == nil {
			return
		}
		lock.Lock()
		err = multierr.Append(err, taskErr)
		lock.Unlock()
	}
	for _, task := range tasks {
		wg.Add(1)
		if submitErr := r.pool.Submit(func() {
			defer wg.Done()
			defer func() {
				if p := recover(); p != nil {
					panicErr := infra.WrapErrorStackWithMessage(ErrTaskPanicked, fmt.Sprint(p))
					r.logger.ErrorStackContext(ctx, panicErr, "experiment panicked")
					collect(panicErr)
				}
			}()
			collect(task(ctx))
		}); submitErr != nil {
			wg.Done()
			collect(infra.WrapErrorStack(submitErr))
		}
	}
	wg.Wait()
	return err
}

func (r *Runner) RunWAVL(ctx context.Context) ([]WAVLResult, error) {
	seed := r.seed()
	r.logger.InfoContext(ctx, "wavl bench started",
		zap.Ints("sizes", r.cfg.Sizes),
		zap.Int("repeats", r.cfg.Repeats),
		zap.String("keyMode", string(r.cfg.KeyMode)),
		zap.Uint64("seed", seed),
	)

	results := make([]WAVLResult, len(r.cfg.Sizes)*r.cfg.Repeats)
	tasks := make([]func(ctx context.Context) error, 0, len(results))
	for i, n := range r.cfg.Sizes {
		for round := 0; round < r.cfg.Repeats; round++ {
			slot := i*r.cfg.Repeats + round
			tasks = append(tasks, func(ctx context.Context) error {
				var opts []tree.WAVLTreeOpt[int, int]
				if r.metrics.Enabled() {
					opts = append(opts, tree.WithWAVLTreeStats[int, int](fmt.Sprintf("n%d", n)))
				}
				res, err := RunWAVLExperiment(ctx, n, r.cfg.KeyMode, taskRand(seed, slot), opts...)
				if err != nil {
					r.logger.ErrorStackContext(ctx, err, "wavl experiment failed",
						zap.Int("size", n),
						zap.Int("round", round),
					)
					return err
				}
				res.Round = round
				results[slot] = res
				r.logger.DebugContext(ctx, "wavl experiment done",
					zap.Int("size", n),
					zap.Int("round", round),
					zap.Int("height", res.Height),
					zap.Float64("avgInsertSteps", res.AvgInsertSteps()),
					zap.Float64("avgRemoveSteps", res.AvgRemoveSteps()),
					zap.Duration("elapsed", res.Elapsed),
				)
				return nil
			})
		}
	}
	if err := r.submit(ctx, tasks); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Runner) RunDHeap(ctx context.Context) ([]DHeapResult, error) {
	seed := r.seed()
	r.logger.InfoContext(ctx, "d-ary heap bench started",
		zap.Ints("sizes", r.cfg.Sizes),
		zap.Ints("arities", r.cfg.Arities),
		zap.Int("repeats", r.cfg.Repeats),
		zap.Uint64("seed", seed),
	)

	perSize := len(r.cfg.Arities) * r.cfg.Repeats
	results := make([]DHeapResult, len(r.cfg.Sizes)*perSize)
	tasks := make([]func(ctx context.Context) error, 0, len(results))
	for i, n := range r.cfg.Sizes {
		for j, d := range r.cfg.Arities {
			for round := 0; round < r.cfg.Repeats; round++ {
				slot := i*perSize + j*r.cfg.Repeats + round
				// The arities of one size and round share the priorities.
				rngTask := i*r.cfg.Repeats + round
				tasks = append(tasks, func(ctx context.Context) error {
					res, err := RunDHeapExperiment(ctx, n, d, taskRand(seed, rngTask))
					if err != nil {
						r.logger.ErrorStackContext(ctx, err, "d-ary heap experiment failed",
							zap.Int("size", n),
							zap.Int("arity", d),
							zap.Int("round", round),
						)
						return err
					}
					res.Round = round
					results[slot] = res
					r.logger.DebugContext(ctx, "d-ary heap experiment done",
						zap.Int("size", n),
						zap.Int("arity", d),
						zap.Int("round", round),
						zap.Int("sortComparisons", res.SortComparisons),
						zap.Duration("elapsed", res.Elapsed),
					)
					return nil
				})
			}
		}
	}
	if err := r.submit(ctx, tasks); err != nil {
		return nil, err
	}
	return results, nil
}

// Run executes the bench of kind and renders its report.
func (r *Runner) Run(ctx context.Context, kind Kind) error {
	switch kind {
	case WAVLBench:
		results, err := r.RunWAVL(ctx)
		if err != nil {
			return err
		}
		RenderWAVLReport(r.out, results)
	case DHeapBench:
		results, err := r.RunDHeap(ctx)
		if err != nil {
			return err
		}
		RenderDHeapReport(r.out, results)
	default:
		return infra.WrapErrorStackWithMessage(ErrUnknownBench, string(kind))
	}
	return nil
}

func NewRunner(cfg *Config, pool *ants.Pool, logger xlog.XLogger, metrics *Metrics, out Output) *Runner {
	return &Runner{
		cfg:     cfg,
		pool:    pool,
		logger:  logger,
		metrics: metrics,
		out:     out.Writer,
	}
}
