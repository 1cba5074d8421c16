package collector

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/haruq/dailybrief/app/digest"
	"github.com/haruq/dailybrief/app/summarize"
)

// Runner drives one collection run: every adapter is collected, summarized
// where the adapter asks for it, rendered, and persisted. Sources run in
// parallel up to the worker limit; a source failing never cancels its
// siblings. The run contract is best-effort: partial results are always
// written.
type Runner struct {
	adapters []Adapter
	gateway  *summarize.Gateway
	renderer *digest.Renderer
	store    *digest.Store
	location *time.Location
	workers  int

	// One limiter for the generative backend shared by all sources.
	summaryLimiter *rate.Limiter
}

func NewRunner(adapters []Adapter, gateway *summarize.Gateway, store *digest.Store,
	location *time.Location, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		adapters:       adapters,
		gateway:        gateway,
		renderer:       digest.NewRenderer(),
		store:          store,
		location:       location,
		workers:        workers,
		summaryLimiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// Run executes one collection pass. The date key is fixed once at the start
// of the run so a run crossing midnight writes a single day's files.
func (r *Runner) Run(ctx context.Context) {
	dateKey := time.Now().In(r.location).Format("2006-01-02")
	started := time.Now()

	slog.Info("Collection run started", "date", dateKey, "sources", len(r.adapters))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.workers)

	for _, adapter := range r.adapters {
		group.Go(func() error {
			r.runSource(groupCtx, adapter, dateKey)
			return nil
		})
	}

	// Errors never propagate out of runSource, so Wait only observes
	// context cancellation.
	_ = group.Wait()

	slog.Info("Collection run finished", "date", dateKey, "duration", time.Since(started))
}

func (r *Runner) runSource(ctx context.Context, adapter Adapter, dateKey string) {
	items, err := adapter.Collect(ctx)
	if err != nil {
		slog.Error("Collection failed", "source", adapter.Key(), "error", err)
		if len(items) == 0 {
			return
		}
		// Partial results are still rendered and persisted.
	}

	if len(items) == 0 {
		slog.Warn("No items collected", "source", adapter.Key())
		return
	}

	if builder, ok := adapter.(PromptBuilder); ok {
		for i := range items {
			if err := r.summaryLimiter.Wait(ctx); err != nil {
				slog.Warn("Summarization cancelled", "source", adapter.Key(), "error", err)
				return
			}
			content, instructions := builder.BuildPrompt(items[i])
			items[i].Summary = r.gateway.Summarize(ctx, content, instructions)
		}
	}

	rendered := r.renderer.Run(adapter.Kind(), items)

	if err := r.store.Persist(adapter.Key(), dateKey, rendered); err != nil {
		// Fatal for this source's run only; siblings keep going.
		slog.Error("Digest persistence failed", "source", adapter.Key(), "error", err)
		return
	}

	slog.Info("Source collected", "source", adapter.Key(), "items", len(items))
}
