// Package scrape runs fetch-and-extract work for many symbols at once and
// implements the site queries on top of it.
package scrape

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/fwojciec/coinscrape"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Orchestrator fans fetch-and-extract tasks out over two pools: static
// fetches run fully in parallel, rendered fetches go through a single
// worker so the shared session never loads two pages at once.
type Orchestrator struct {
	Cache       coinscrape.PageCache
	Static      coinscrape.Fetcher
	Rendered    coinscrape.Fetcher
	RateLimiter coinscrape.DomainLimiter

	// Concurrency bounds parallel static tasks and rendered extractions.
	// Zero means unbounded.
	Concurrency int

	// Timeout is the deadline of a single task. Zero disables it.
	Timeout time.Duration

	// RetryDelays are the waits between static fetch attempts. Nil means
	// DefaultRetryDelays.
	RetryDelays []time.Duration

	Logger   *slog.Logger
	Progress coinscrape.ProgressFunc
}

// Query describes one kind of per-symbol work.
type Query[T any] struct {
	Mode coinscrape.FetchMode

	// URL maps a symbol to the page to fetch.
	URL func(symbol string) string

	// Reload asks the cache for a page younger than its staleness window.
	Reload bool

	// Extract turns page content into the result for symbol.
	Extract func(symbol, content string) (T, error)
}

// Run executes q for every symbol and returns exactly one outcome per
// symbol, in input order. Task failures are recorded in their outcome and
// never abort the batch.
//
// A renderer failure is fatal: the rendered worker stops, every task not
// yet fetched fails with the same error, and Run returns the complete
// result together with that error.
func Run[T any](ctx context.Context, o *Orchestrator, symbols []string, q Query[T]) (*coinscrape.BatchResult[T], error) {
	if err := q.Mode.Validate(); err != nil {
		return nil, err
	}
	if q.URL == nil || q.Extract == nil {
		return nil, coinscrape.Errorf(coinscrape.EINVALID, "query requires URL and Extract functions")
	}

	logger := o.logger()
	result := &coinscrape.BatchResult[T]{
		ID:       uuid.NewString(),
		Outcomes: make([]coinscrape.Outcome[T], len(symbols)),
	}
	logger = logger.With("batch", result.ID)

	tasks := make([]coinscrape.FetchTask, len(symbols))
	for i, symbol := range symbols {
		tasks[i] = coinscrape.FetchTask{
			ID:       uuid.NewString(),
			Position: i,
			Symbol:   symbol,
			URL:      q.URL(symbol),
			Mode:     q.Mode,
			Status:   coinscrape.TaskPending,
		}
	}

	begin := time.Now()
	logger.Info("batch started", "mode", string(q.Mode), "tasks", len(tasks))

	resultCh := make(chan coinscrape.Outcome[T], len(tasks))
	var fatal error
	if q.Mode == coinscrape.FetchRendered {
		go func() {
			fatal = runRendered(ctx, o, tasks, q, resultCh)
			close(resultCh)
		}()
	} else {
		go func() {
			runStatic(ctx, o, tasks, q, resultCh)
			close(resultCh)
		}()
	}

	var completed, failed int
	for outcome := range resultCh {
		completed++
		result.Outcomes[outcome.Task.Position] = outcome
		if outcome.Err != nil {
			failed++
			logger.Warn("task failed",
				"symbol", outcome.Task.Symbol,
				"url", outcome.Task.URL,
				"code", coinscrape.ErrorCode(outcome.Err),
				"err", outcome.Err,
			)
		}
		if o.Progress != nil {
			o.Progress(coinscrape.Progress{
				Symbol:    outcome.Task.Symbol,
				Completed: completed,
				Total:     len(tasks),
				Error:     outcome.Err,
			})
		}
	}

	logger.Info("batch finished",
		"tasks", len(tasks),
		"failed", failed,
		"duration", time.Since(begin),
	)

	return result, fatal
}

func runStatic[T any](ctx context.Context, o *Orchestrator, tasks []coinscrape.FetchTask, q Query[T], resultCh chan<- coinscrape.Outcome[T]) {
	g := o.pool()
	for _, task := range tasks {
		g.Go(func() error {
			taskCtx, cancel := o.taskContext(ctx)
			defer cancel()

			content, err := o.getOrFetch(taskCtx, task.URL, o.staticFetch, q.Reload)
			if err != nil {
				resultCh <- failure[T](task, taskError(taskCtx, err))
				return nil
			}
			resultCh <- extract(task, q, content)
			return nil
		})
	}
	_ = g.Wait()
}

// runRendered is the only goroutine that touches the rendered fetcher.
// Extraction is handed to the pool so the next navigation can start.
func runRendered[T any](ctx context.Context, o *Orchestrator, tasks []coinscrape.FetchTask, q Query[T], resultCh chan<- coinscrape.Outcome[T]) error {
	var fatal error
	if o.Rendered == nil {
		fatal = coinscrape.Errorf(coinscrape.ERENDERER, "no renderer configured")
	}

	g := o.pool()
	for _, task := range tasks {
		if fatal != nil {
			resultCh <- failure[T](task, fatal)
			continue
		}

		taskCtx, cancel := o.taskContext(ctx)
		content, err := o.getOrFetch(taskCtx, task.URL, o.Rendered.Fetch, q.Reload)
		if err != nil {
			err = taskError(taskCtx, err)
			cancel()
			if coinscrape.IsFatal(err) {
				fatal = err
			}
			resultCh <- failure[T](task, err)
			continue
		}
		cancel()

		g.Go(func() error {
			resultCh <- extract(task, q, content)
			return nil
		})
	}
	_ = g.Wait()
	return fatal
}

func extract[T any](task coinscrape.FetchTask, q Query[T], content string) coinscrape.Outcome[T] {
	value, err := q.Extract(task.Symbol, content)
	if err != nil {
		return failure[T](task, err)
	}
	task.Status = coinscrape.TaskSucceeded
	return coinscrape.Outcome[T]{Task: task, Value: value}
}

func failure[T any](task coinscrape.FetchTask, err error) coinscrape.Outcome[T] {
	task.Status = coinscrape.TaskFailed
	return coinscrape.Outcome[T]{Task: task, Err: err}
}

// staticFetch applies the domain limiter and retry delays around the
// static fetcher.
func (o *Orchestrator) staticFetch(ctx context.Context, u string) (string, error) {
	if o.Static == nil {
		return "", coinscrape.Errorf(coinscrape.EINVALID, "no static fetcher configured")
	}

	fetch := o.Static.Fetch
	if o.RateLimiter != nil {
		host := u
		if parsed, err := url.Parse(u); err == nil {
			host = parsed.Host
		}
		fetch = func(ctx context.Context, u string) (string, error) {
			if err := o.RateLimiter.Wait(ctx, host); err != nil {
				return "", err
			}
			return o.Static.Fetch(ctx, u)
		}
	}

	delays := o.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	return FetchWithRetryDelays(ctx, u, fetch, o.logger().Debug, delays)
}

func (o *Orchestrator) getOrFetch(ctx context.Context, u string, fetch coinscrape.FetchFunc, reload bool) (string, error) {
	if o.Cache == nil {
		return fetch(ctx, u)
	}
	return o.Cache.GetOrFetch(ctx, u, fetch, reload)
}

func (o *Orchestrator) pool() *errgroup.Group {
	g := new(errgroup.Group)
	if o.Concurrency > 0 {
		g.SetLimit(o.Concurrency)
	}
	return g
}

func (o *Orchestrator) taskContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.Timeout > 0 {
		return context.WithTimeout(ctx, o.Timeout)
	}
	return context.WithCancel(ctx)
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// taskError gives context failures an application code.
func taskError(ctx context.Context, err error) error {
	switch code := coinscrape.ErrorCode(err); {
	case code == coinscrape.ETIMEOUT || code == coinscrape.ERENDERER:
		return err
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return coinscrape.WrapError(coinscrape.ETIMEOUT, err, "task deadline exceeded")
	case errors.Is(ctx.Err(), context.Canceled):
		return coinscrape.WrapError(coinscrape.EFETCH, err, "task canceled")
	}
	return err
}
