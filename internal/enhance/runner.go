package enhance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/time/rate"
)

// Options tunes a Runner.
type Options struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// ChunkTimeout bounds all attempts for one chunk. 0 means no bound.
	ChunkTimeout time.Duration
	// RateLimit is requests per second across all chunks. 0 means unlimited.
	RateLimit float64
	// Concurrency is the number of chunks in flight.
	Concurrency int
	// RetryDelay is the base backoff delay.
	RetryDelay time.Duration
}

// DefaultOptions returns conservative settings for hosted APIs.
func DefaultOptions() Options {
	return Options{
		MaxRetries:   3,
		ChunkTimeout: 60 * time.Second,
		Concurrency:  4,
		RetryDelay:   500 * time.Millisecond,
	}
}

// Runner fans chunks out to a provider.
type Runner struct {
	provider Provider
	cache    Cache
	limiter  *rate.Limiter
	opts     Options
	logger   *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithCache reuses validated answers across runs.
func WithCache(c Cache) RunnerOption {
	return func(r *Runner) { r.cache = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = l }
}

// NewRunner creates a Runner for p.
func NewRunner(p Provider, opts Options, ropts ...RunnerOption) *Runner {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Millisecond
	}
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	r := &Runner{
		provider: p,
		limiter:  rate.NewLimiter(limit, 1),
		opts:     opts,
		logger:   slog.Default(),
	}
	for _, o := range ropts {
		o(r)
	}
	return r
}

// Run enhances every chunk and returns one outcome per chunk, in chunk
// order. Failed chunks carry their error; Run itself does not fail.
func (r *Runner) Run(ctx context.Context, chunks []Chunk) []Outcome {
	out := make([]Outcome, len(chunks))
	sem := make(chan struct{}, r.opts.Concurrency)
	var wg sync.WaitGroup

	for i, c := range chunks {
		wg.Add(1)
		go func(i int, c Chunk) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				out[i] = Outcome{Chunk: c, Err: ctx.Err()}
				return
			}
			out[i] = r.runChunk(ctx, c)
			if err := out[i].Err; err != nil {
				r.logger.Warn("chunk enhancement failed",
					"provider", r.provider.Name(), "chunk", c.Index, "kind", c.Kind, "error", err)
			}
		}(i, c)
	}
	wg.Wait()
	return out
}

func (r *Runner) runChunk(ctx context.Context, c Chunk) Outcome {
	key := r.provider.Name() + ":" + c.Hash()
	if r.cache != nil {
		data, ok, err := r.cache.Get(ctx, key)
		if err != nil {
			r.logger.Warn("enhancement cache read failed", "error", err)
		} else if ok {
			if res, _, err := DecodeResult(string(data)); err == nil {
				r.logger.Debug("enhancement cache hit", "chunk", c.Index, "kind", c.Kind)
				return Outcome{Chunk: c, Result: res, Cached: true}
			}
		}
	}

	if r.opts.ChunkTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.ChunkTimeout)
		defer cancel()
	}

	var (
		res *Result
		raw []byte
	)
	err := retry.Do(
		func() error {
			if err := r.limiter.Wait(ctx); err != nil {
				return retry.Unrecoverable(fmt.Errorf("rate limiter: %w", err))
			}
			data, err := r.provider.Enhance(ctx, c, ResultSchema)
			if err != nil {
				if errors.Is(err, ErrNoAPIKey) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			res, raw, err = DecodeResult(string(data))
			return err
		},
		retry.Context(ctx),
		retry.Attempts(uint(r.opts.MaxRetries+1)),
		retry.Delay(r.opts.RetryDelay),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.MaxJitter(r.opts.RetryDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			r.logger.Debug("retrying chunk", "chunk", c.Index, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return Outcome{Chunk: c, Err: fmt.Errorf("%s chunk %d: %w", c.Kind, c.Index, err)}
	}

	if r.cache != nil {
		if err := r.cache.Put(ctx, key, r.provider.Name(), raw); err != nil {
			r.logger.Warn("enhancement cache write failed", "error", err)
		}
	}
	return Outcome{Chunk: c, Result: res}
}
