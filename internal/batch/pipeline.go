package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"marquee/internal/classify"
	"marquee/internal/config"
	"marquee/internal/library"
	"marquee/internal/logging"
	"marquee/internal/metadata/omdb"
	"marquee/internal/notifications"
	"marquee/internal/services"
)

// Policy bounds pipeline retry and pacing behavior.
type Policy struct {
	// RetryLimit is the number of additional lookup attempts after a
	// transient failure.
	RetryLimit int
	// RetryDelay is the pause between lookup attempts.
	RetryDelay time.Duration
	// ItemDelay is the pause between consecutive items.
	ItemDelay time.Duration
	// MaxStorageFailures is the number of consecutive storage failures
	// after which the remaining batch is aborted.
	MaxStorageFailures int
}

// PolicyFromConfig translates batch configuration into a Policy.
func PolicyFromConfig(cfg *config.Config) Policy {
	return Policy{
		RetryLimit:         cfg.Batch.RetryLimit,
		RetryDelay:         time.Duration(cfg.Batch.RetryDelayMS) * time.Millisecond,
		ItemDelay:          time.Duration(cfg.Batch.ItemDelayMS) * time.Millisecond,
		MaxStorageFailures: cfg.Batch.MaxStorageFailures,
	}
}

// Pipeline processes title lists sequentially: each item runs the full
// lookup -> classify -> store chain before the next begins.
type Pipeline struct {
	searcher omdb.Searcher
	store    *library.Store
	notifier notifications.Service
	logger   *slog.Logger
	policy   Policy
}

// New constructs a Pipeline. A nil notifier or logger is replaced with a
// no-op implementation.
func New(searcher omdb.Searcher, store *library.Store, notifier notifications.Service, logger *slog.Logger, policy Policy) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notifications.NewService(&config.Config{})
	}
	if policy.MaxStorageFailures <= 0 {
		policy.MaxStorageFailures = 3
	}
	return &Pipeline{
		searcher: searcher,
		store:    store,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "batch"),
		policy:   policy,
	}
}

// Run processes titles in input order and aggregates per-item outcomes.
// Partial success is the normal case: the returned error is non-nil only
// when the whole run aborted (storage unavailable or context canceled), and
// even then the Result reports everything processed up to that point.
func (p *Pipeline) Run(ctx context.Context, titles []string) (*Result, error) {
	result := &Result{
		RunID:          uuid.NewString(),
		TotalRequested: len(titles),
		StartedAt:      time.Now().UTC(),
	}
	logger := p.logger.With(logging.String("run_id", result.RunID))
	logger.Info("batch started", logging.Int("titles", len(titles)))

	if err := p.notifier.NotifyBatchStarted(ctx, len(titles)); err != nil {
		logger.Warn("batch start notification failed", logging.Error(err))
	}

	consecutiveStorageFailures := 0
	for i, title := range titles {
		if err := ctx.Err(); err != nil {
			return p.abort(ctx, logger, result, err)
		}
		if i > 0 && p.policy.ItemDelay > 0 {
			if err := sleepCtx(ctx, p.policy.ItemDelay); err != nil {
				return p.abort(ctx, logger, result, err)
			}
		}

		outcome := p.processItem(ctx, logger, title)
		if outcome.err == nil {
			result.Succeeded = append(result.Succeeded, Entry{Title: title, Record: outcome.record})
			consecutiveStorageFailures = 0
			continue
		}

		reason := services.FailureReason(outcome.err)
		result.Failed = append(result.Failed, Failure{
			Title:  title,
			Reason: reason,
			Detail: outcome.err.Error(),
		})
		logger.Warn("item failed",
			logging.String("title", title),
			logging.String("reason", string(reason)),
			logging.Error(outcome.err),
		)

		if reason == services.ReasonStorage {
			consecutiveStorageFailures++
			if consecutiveStorageFailures >= p.policy.MaxStorageFailures {
				err := services.Wrap(services.ErrStorage, "batch", "run",
					fmt.Sprintf("aborting after %d consecutive storage failures", consecutiveStorageFailures), nil)
				return p.abort(ctx, logger, result, err)
			}
		} else {
			consecutiveStorageFailures = 0
		}
	}

	result.Duration = time.Since(result.StartedAt)
	logger.Info("batch completed",
		logging.Int("succeeded", len(result.Succeeded)),
		logging.Int("failed", len(result.Failed)),
		logging.Duration("duration", result.Duration),
	)
	if err := p.notifier.NotifyBatchCompleted(ctx, len(result.Succeeded), len(result.Failed), result.Duration); err != nil {
		logger.Warn("batch completion notification failed", logging.Error(err))
	}
	return result, nil
}

type itemOutcome struct {
	record *library.Record
	err    error
}

// processItem runs one title through the full chain. The item state machine
// is Pending -> LookedUp -> Classified -> Stored, with Failed(reason)
// reachable from any stage.
func (p *Pipeline) processItem(ctx context.Context, logger *slog.Logger, title string) itemOutcome {
	movie, err := p.lookupWithRetry(ctx, logger, title)
	if err != nil {
		return itemOutcome{err: err}
	}

	labels := classify.Classify(movie.Genres, movie.Rating, movie.Year)

	record, err := p.store.Upsert(ctx, movie, labels)
	if err != nil {
		return itemOutcome{err: err}
	}

	logger.Debug("item stored",
		logging.String("title", record.Movie.Title),
		logging.String("external_id", record.Movie.ExternalID),
		logging.String("genre_bucket", record.Labels.GenreBucket),
	)
	return itemOutcome{record: record}
}

// lookupWithRetry retries transient provider failures up to the policy
// bound. InvalidInput and NotFound are terminal on the first attempt.
func (p *Pipeline) lookupWithRetry(ctx context.Context, logger *slog.Logger, title string) (*library.Movie, error) {
	var lastErr error
	attempts := p.policy.RetryLimit + 1
	for attempt := 1; attempt <= attempts; attempt++ {
		movie, err := p.searcher.Lookup(ctx, title)
		if err == nil {
			return movie, nil
		}
		lastErr = err
		if !services.IsRetryable(err) || attempt == attempts {
			break
		}
		logger.Debug("retrying lookup",
			logging.String("title", title),
			logging.Int("attempt", attempt),
			logging.Error(err),
		)
		if p.policy.RetryDelay > 0 {
			if sleepErr := sleepCtx(ctx, p.policy.RetryDelay); sleepErr != nil {
				return nil, sleepErr
			}
		}
	}
	return nil, lastErr
}

// abort finalizes a run that cannot continue. TotalRequested is reduced to
// the attempted item count so the result arithmetic still holds; the error
// describes why the rest of the batch was skipped.
func (p *Pipeline) abort(ctx context.Context, logger *slog.Logger, result *Result, cause error) (*Result, error) {
	result.TotalRequested = len(result.Succeeded) + len(result.Failed)
	result.Duration = time.Since(result.StartedAt)
	logger.Error("batch aborted",
		logging.Int("attempted", result.TotalRequested),
		logging.Error(cause),
	)
	if err := p.notifier.NotifyError(ctx, cause, "batch aborted"); err != nil {
		logger.Warn("abort notification failed", logging.Error(err))
	}
	return result, cause
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
