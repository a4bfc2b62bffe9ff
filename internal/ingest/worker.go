// Package ingest runs the background worker that normalizes batches of raw
// provider records queued by the API.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/unwindhq/unwind/internal/content"
	"github.com/unwindhq/unwind/internal/storage"
)

// JobType is the queue type this worker claims.
const JobType = "normalize_batch"

// BatchPayload is the JSON body of a normalize_batch job.
type BatchPayload struct {
	Provider string              `json:"provider"`
	Records  []content.RawRecord `json:"records"`
}

// JobStore abstracts the job queue and item persistence.
// Implemented by storage.Store.
type JobStore interface {
	ClaimNextJob(types []string) (*storage.Job, error)
	CompleteJob(id string) error
	FailJob(id string, errMsg string) error
	SaveItem(item content.Item) error
}

// Worker processes normalize_batch jobs from the SQLite job queue.
type Worker struct {
	store      JobStore
	normalizer *content.Normalizer
	poll       time.Duration
	logger     *slog.Logger
}

// NewWorker creates a Worker. If pollInterval is <= 0, it defaults to 500ms.
func NewWorker(store JobStore, normalizer *content.Normalizer, pollInterval time.Duration) *Worker {
	if pollInterval <= 0 {
		pollInterval = 500 * time.Millisecond
	}
	return &Worker{
		store:      store,
		normalizer: normalizer,
		poll:       pollInterval,
		logger:     slog.Default(),
	}
}

// Run polls for jobs until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		done, err := w.RunOnce(ctx)
		if err != nil {
			w.logger.Error("worker iteration failed", "error", err)
		}
		if done {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.poll):
		}
	}
}

// RunOnce claims and processes a single normalize_batch job.
// Returns true if a job was processed (regardless of success/failure).
func (w *Worker) RunOnce(ctx context.Context) (bool, error) {
	job, err := w.store.ClaimNextJob([]string{JobType})
	if err != nil {
		return false, fmt.Errorf("claiming job: %w", err)
	}
	if job == nil {
		return false, nil
	}

	if err := w.process(ctx, job); err != nil {
		if failErr := w.store.FailJob(job.ID, err.Error()); failErr != nil {
			w.logger.Error("failed to mark job as failed", "job_id", job.ID, "error", failErr)
		}
		return true, fmt.Errorf("processing job %s: %w", job.ID, err)
	}

	if err := w.store.CompleteJob(job.ID); err != nil {
		return true, fmt.Errorf("completing job %s: %w", job.ID, err)
	}
	return true, nil
}

// process normalizes every record in the batch. Records without identifiers
// are skipped with a warning rather than failing the whole batch; any other
// error fails the job so the queue retries it.
func (w *Worker) process(ctx context.Context, job *storage.Job) error {
	var payload BatchPayload
	if err := json.Unmarshal([]byte(job.PayloadJSON), &payload); err != nil {
		return fmt.Errorf("decoding payload: %w", err)
	}
	if payload.Provider == "" {
		return fmt.Errorf("payload has no provider")
	}

	provider := content.Provider(payload.Provider)
	saved, skipped := 0, 0
	for _, raw := range payload.Records {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		item, err := w.normalizer.Normalize(raw, provider)
		if errors.Is(err, content.ErrMissingIdentifier) {
			w.logger.Warn("skipping record without identifier", "provider", provider, "title", raw.Title)
			skipped++
			continue
		}
		if err != nil {
			return fmt.Errorf("normalizing record: %w", err)
		}

		if err := w.store.SaveItem(item); err != nil {
			return fmt.Errorf("saving item %s: %w", item.ID, err)
		}
		saved++
	}

	w.logger.Info("batch normalized", "job_id", job.ID, "provider", provider, "saved", saved, "skipped", skipped)
	return nil
}
