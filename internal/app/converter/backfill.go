// Package converter starts pipelines for media that was uploaded before the trigger was
// listening.
package converter

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
	apperrors "voice-relay/internal/app/errors"
	"voice-relay/internal/app/locator"
	"voice-relay/internal/app/model"
	"voice-relay/internal/app/storage"
	"voice-relay/internal/app/trigger"
)

// Starter starts one pipeline execution.
type Starter interface {
	Start(ctx context.Context, bucket, key string) (trigger.Execution, error)
}

// Lister lists the objects of a bucket.
type Lister interface {
	List(ctx context.Context, bucket, prefix string) ([]storage.Object, error)
}

// RunLister returns the recorded runs.
type RunLister interface {
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)
}

// BackfillOptions selects the objects to process.
type BackfillOptions struct {
	Bucket string
	Prefix string
	// Limit caps the number of pipelines started; zero means no cap.
	Limit    int
	Parallel int
	// Force restarts objects that already have a recorded run.
	Force bool
}

// BackfillSummary counts what a backfill did.
type BackfillSummary struct {
	Started    int
	Skipped    int
	Failed     int
	Executions []trigger.Execution
}

type Backfiller struct {
	starter  Starter
	lister   Lister
	runs     RunLister
	progress ProgressConfig
	logger   *zap.Logger
}

// NewBackfiller creates a backfiller. runs may be nil, in which case no object is skipped
// as already processed.
func NewBackfiller(starter Starter, lister Lister, runs RunLister, progress ProgressConfig, logger *zap.Logger) *Backfiller {
	return &Backfiller{
		starter:  starter,
		lister:   lister,
		runs:     runs,
		progress: progress,
		logger:   logger,
	}
}

// Run starts a pipeline for every media object under the prefix, oldest first. Failed
// starts are counted and logged; the returned error joins them.
func (b *Backfiller) Run(ctx context.Context, opts BackfillOptions) (BackfillSummary, error) {
	if opts.Bucket == "" {
		return BackfillSummary{}, apperrors.RequiredField("bucket")
	}
	parallel := opts.Parallel
	if parallel < 1 {
		parallel = 1
	}

	objects, err := b.lister.List(ctx, opts.Bucket, opts.Prefix)
	if err != nil {
		return BackfillSummary{}, err
	}
	toProcess, skipped, err := b.filterUnprocessed(ctx, objects, opts)
	if err != nil {
		return BackfillSummary{}, err
	}
	summary := BackfillSummary{Skipped: skipped}
	if len(toProcess) == 0 {
		b.logger.Info("Nothing to backfill", zap.String("bucket", opts.Bucket), zap.String("prefix", opts.Prefix))
		return summary, nil
	}

	bar := newStartProgress(b.progress, opts.Bucket, len(toProcess))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	sem := make(chan struct{}, parallel)

	// acquired before spawning so starts follow the oldest-first order
	for _, obj := range toProcess {
		sem <- struct{}{}
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				bar.done(false)
				mu.Lock()
				summary.Failed++
				errs = append(errs, err)
				mu.Unlock()
				return
			}

			execution, err := b.starter.Start(ctx, opts.Bucket, key)
			bar.done(err == nil)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				b.logger.Warn("Backfill start failed", zap.String("key", key), zap.Error(err))
				summary.Failed++
				errs = append(errs, apperrors.Wrapf(err, "%s", key))
				return
			}
			summary.Started++
			summary.Executions = append(summary.Executions, execution)
		}(obj.Key)
	}
	wg.Wait()
	bar.finish(ctx.Err() != nil)

	sort.Slice(summary.Executions, func(i, j int) bool {
		return summary.Executions[i].ID < summary.Executions[j].ID
	})
	b.logger.Info("Backfill finished",
		zap.Int("started", summary.Started),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed))
	return summary, apperrors.Join(errs...)
}

// filterUnprocessed drops pipeline outputs and objects with a recorded run, and applies
// the limit.
func (b *Backfiller) filterUnprocessed(ctx context.Context, objects []storage.Object, opts BackfillOptions) ([]storage.Object, int, error) {
	processed := map[string]struct{}{}
	if b.runs != nil && !opts.Force {
		runs, err := b.runs.ListRuns(ctx, 0)
		if err != nil {
			return nil, 0, err
		}
		for _, r := range runs {
			if r.Bucket == opts.Bucket {
				processed[r.SourceKey] = struct{}{}
			}
		}
	}

	sorted := make([]storage.Object, len(objects))
	copy(sorted, objects)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LastModified.Before(sorted[j].LastModified)
	})

	var (
		out     []storage.Object
		skipped int
	)
	for _, obj := range sorted {
		if locator.IsOutputKey(obj.Key) {
			continue
		}
		if _, ok := processed[obj.Key]; ok {
			b.logger.Debug("Already processed, skipping", zap.String("key", obj.Key))
			skipped++
			continue
		}
		out = append(out, obj)
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
	}
	return out, skipped, nil
}
