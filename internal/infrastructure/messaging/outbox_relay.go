package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/opengrc/grc/pkg/events"
)

// OutboxRelay polls the outbox and forwards unpublished entries to the
// broker. Entries are marked published only after the broker accepted them,
// so delivery is at least once.
type OutboxRelay struct {
	repo      events.OutboxRepository
	publisher events.EventPublisher
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

// NewOutboxRelay creates a new OutboxRelay.
func NewOutboxRelay(
	repo events.OutboxRepository,
	publisher events.EventPublisher,
	interval time.Duration,
	batchSize int,
	logger *slog.Logger,
) *OutboxRelay {
	return &OutboxRelay{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		interval:  interval,
		batchSize: batchSize,
	}
}

// Run relays until ctx is cancelled.
func (r *OutboxRelay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("outbox relay started", slog.Duration("interval", r.interval))

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay stopped")
			return
		case <-ticker.C:
			if _, err := r.Drain(ctx); err != nil && ctx.Err() == nil {
				r.logger.ErrorContext(ctx, "outbox relay failed", slog.String("error", err.Error()))
			}
		}
	}
}

// Drain publishes batches until the outbox is empty and returns the number
// of entries published.
func (r *OutboxRelay) Drain(ctx context.Context) (int, error) {
	total := 0
	for {
		n, err := r.RelayOnce(ctx)
		total += n
		if err != nil {
			return total, err
		}
		if n < r.batchSize {
			return total, nil
		}
	}
}

// RelayOnce publishes a single batch.
func (r *OutboxRelay) RelayOnce(ctx context.Context) (int, error) {
	entries, err := r.repo.FetchUnpublished(ctx, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch outbox entries: %w", err)
	}
	if len(entries) == 0 {
		return 0, nil
	}

	if err := r.publisher.Publish(ctx, entries...); err != nil {
		return 0, fmt.Errorf("failed to publish outbox entries: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	if err := r.repo.MarkPublished(ctx, ids); err != nil {
		return 0, fmt.Errorf("failed to mark outbox entries published: %w", err)
	}

	r.logger.DebugContext(ctx, "relayed outbox entries", slog.Int("count", len(entries)))
	return len(entries), nil
}
