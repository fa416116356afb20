package usecase

import (
	"context"
	"sync/atomic"

	"findar-backend/internal/core/domain"
	"findar-backend/internal/core/port"

	"golang.org/x/sync/errgroup"
)

const DefaultFanoutLimit = 8

// enqueueAll hands every job to the queue with at most limit enqueues in flight.
// A failed enqueue is counted and logged; it never stops the remaining jobs.
func enqueueAll(ctx context.Context, queue port.PushJobQueuePort, jobs []domain.PushJob, limit int, logger port.LoggerPort) (enqueued, failed int) {
	if limit <= 0 {
		limit = DefaultFanoutLimit
	}

	var ok, bad atomic.Int64
	var g errgroup.Group
	g.SetLimit(limit)

	for _, job := range jobs {
		g.Go(func() error {
			if err := queue.Enqueue(ctx, job); err != nil {
				bad.Add(1)
				logger.Warn("Failed to enqueue push job", port.Fields{
					"kind":      string(job.Kind),
					"recipient": job.Recipient.String(),
					"error":     err.Error(),
				})
				return nil
			}
			ok.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	return int(ok.Load()), int(bad.Load())
}
