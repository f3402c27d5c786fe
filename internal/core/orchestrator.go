package core

import (
	"context"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// ProgressFunc is invoked once per completed email, in completion order.
// completed counts from 1 to the batch size.
type ProgressFunc func(completed, total int, email *Email)

// BatchProcessor fans a batch of emails out over independent pipeline
// runs and fans the per-email results back into a single collection.
type BatchProcessor struct {
	pipeline   *Pipeline
	logger     *zap.Logger
	maxWorkers int
	progress   ProgressFunc
}

// NewBatchProcessor creates a new batch processor. maxWorkers bounds the
// number of concurrently running pipelines; progress may be nil.
func NewBatchProcessor(pipeline *Pipeline, logger *zap.Logger, maxWorkers int, progress ProgressFunc) *BatchProcessor {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &BatchProcessor{
		pipeline:   pipeline,
		logger:     logger,
		maxWorkers: maxWorkers,
		progress:   progress,
	}
}

// Process classifies every email in the batch and returns exactly one
// analysis per input, indexed by dispatch position. A classification
// failure is isolated to its own email: the failed email is kept as a
// degraded analysis with zero scores rather than dropped, so the batch
// always completes with len(emails) results.
func (b *BatchProcessor) Process(ctx context.Context, emails []*Email) []*EmailAnalysis {
	results := make([]*EmailAnalysis, len(emails))
	completed := make(chan *EmailAnalysis)

	// Single collector drains completions, so the merge into the shared
	// result set needs no locking. Completion order is irrelevant: each
	// analysis lands at its dispatch position.
	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		n := 0
		for analysis := range completed {
			results[analysis.Position] = analysis
			n++
			if b.progress != nil {
				b.progress(n, len(emails), analysis.Email)
			}
		}
	}()

	workers := pool.New().WithMaxGoroutines(b.maxWorkers)
	for i, email := range emails {
		workers.Go(func() {
			analysis, err := b.pipeline.Analyze(ctx, email, i)
			if err != nil {
				b.logger.Warn("Email classification failed, keeping degraded result",
					zap.String("message_id", email.ID),
					zap.String("subject", email.Subject),
					zap.Error(err))
				analysis = b.degraded(email, i)
			}
			completed <- analysis
		})
	}
	workers.Wait()
	close(completed)
	<-collectorDone

	return results
}

// degraded is the per-email failure policy: zero scores, no summary,
// Other category. Keeping the email preserves the one-result-per-input
// invariant and the report's denominator.
func (b *BatchProcessor) degraded(email *Email, position int) *EmailAnalysis {
	return &EmailAnalysis{
		Email:    email,
		Position: position,
		Category: CategoryOther,
		Degraded: true,
	}
}
