package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/opengrc/grc/internal/domain/port"
	"github.com/opengrc/grc/internal/domain/valueobject"
)

const thresholdsKey = "risk:settings:thresholds"

type cachedThresholds struct {
	VeryLow    int  `json:"very_low"`
	Low        int  `json:"low"`
	Medium     int  `json:"medium"`
	High       int  `json:"high"`
	Configured bool `json:"configured"`
}

// ThresholdsCache is a read-through Redis cache in front of a
// port.ThresholdsRepository. The absence of stored thresholds is cached too.
// Redis failures are logged and the call falls through to the repository.
type ThresholdsCache struct {
	next   port.ThresholdsRepository
	client redis.UniversalClient
	logger *slog.Logger
	ttl    time.Duration
}

// NewThresholdsCache wraps next with a Redis cache.
func NewThresholdsCache(next port.ThresholdsRepository, client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *ThresholdsCache {
	return &ThresholdsCache{next: next, client: client, ttl: ttl, logger: logger}
}

// Get returns the cached thresholds, loading them from the repository on a miss.
func (c *ThresholdsCache) Get(ctx context.Context) (valueobject.RiskThresholds, error) {
	data, err := c.client.Get(ctx, thresholdsKey).Bytes()
	switch {
	case err == nil:
		if th, configured, decodeErr := decodeThresholds(data); decodeErr == nil {
			if !configured {
				return valueobject.RiskThresholds{}, fmt.Errorf("risk settings: %w", port.ErrNotFound)
			}
			return th, nil
		}
		c.logger.WarnContext(ctx, "discarding malformed thresholds cache entry")
	case !errors.Is(err, redis.Nil):
		c.logger.WarnContext(ctx, "thresholds cache read failed", slog.String("error", err.Error()))
	}

	th, err := c.next.Get(ctx)
	configured := true
	if errors.Is(err, port.ErrNotFound) {
		configured = false
	} else if err != nil {
		return valueobject.RiskThresholds{}, err
	}

	c.store(ctx, th, configured)
	if !configured {
		return valueobject.RiskThresholds{}, err
	}
	return th, nil
}

// Save writes through to the repository and invalidates the cache entry.
func (c *ThresholdsCache) Save(ctx context.Context, thresholds valueobject.RiskThresholds, updatedBy uuid.UUID) error {
	if err := c.next.Save(ctx, thresholds, updatedBy); err != nil {
		return err
	}
	if err := c.client.Del(ctx, thresholdsKey).Err(); err != nil {
		c.logger.WarnContext(ctx, "thresholds cache invalidation failed", slog.String("error", err.Error()))
	}
	return nil
}

func (c *ThresholdsCache) store(ctx context.Context, th valueobject.RiskThresholds, configured bool) {
	data, err := encodeThresholds(th, configured)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, thresholdsKey, data, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "thresholds cache write failed", slog.String("error", err.Error()))
	}
}

func encodeThresholds(th valueobject.RiskThresholds, configured bool) ([]byte, error) {
	return json.Marshal(cachedThresholds{
		VeryLow:    th.VeryLow(),
		Low:        th.Low(),
		Medium:     th.Medium(),
		High:       th.High(),
		Configured: configured,
	})
}

func decodeThresholds(data []byte) (valueobject.RiskThresholds, bool, error) {
	var c cachedThresholds
	if err := json.Unmarshal(data, &c); err != nil {
		return valueobject.RiskThresholds{}, false, err
	}
	return valueobject.ReconstructRiskThresholds(c.VeryLow, c.Low, c.Medium, c.High), c.Configured, nil
}
