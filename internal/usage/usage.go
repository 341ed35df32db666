// internal/usage/usage.go
package usage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"copyflow/internal/common/logger"
)

const retention = 48 * time.Hour

// Tracker keeps per-client daily usage counters in Redis. Counters are best
// effort: a write failure is logged and ignored so the request path never
// depends on Redis being up.
type Tracker struct {
	client *redis.Client
	now    func() time.Time
	logger logger.Logger
}

// Usage is one client's counters for a single day.
type Usage struct {
	Requests  int64 `json:"requests"`
	Generated int64 `json:"generated"`
}

func NewTracker(client *redis.Client, log logger.Logger) *Tracker {
	return &Tracker{
		client: client,
		now:    time.Now,
		logger: log.With(map[string]interface{}{"component": "usage"}),
	}
}

func (t *Tracker) key(identifier string) string {
	return fmt.Sprintf("usage:%s:%s", identifier, t.now().UTC().Format("2006-01-02"))
}

// RecordRequest counts one incoming generation request.
func (t *Tracker) RecordRequest(ctx context.Context, identifier string) {
	t.incr(ctx, identifier, "requests", 1)
}

// RecordGenerated counts successfully generated product descriptions.
func (t *Tracker) RecordGenerated(ctx context.Context, identifier string, products int64) {
	t.incr(ctx, identifier, "generated", products)
}

func (t *Tracker) incr(ctx context.Context, identifier, field string, delta int64) {
	key := t.key(identifier)

	pipe := t.client.TxPipeline()
	pipe.HIncrBy(ctx, key, field, delta)
	pipe.Expire(ctx, key, retention)
	if _, err := pipe.Exec(ctx); err != nil {
		t.logger.Warn("Failed to record usage", map[string]interface{}{
			"identifier": identifier,
			"field":      field,
			"error":      err.Error(),
		})
	}
}

// Snapshot returns the identifier's counters for today.
func (t *Tracker) Snapshot(ctx context.Context, identifier string) (Usage, error) {
	fields, err := t.client.HGetAll(ctx, t.key(identifier)).Result()
	if err != nil {
		return Usage{}, err
	}

	var u Usage
	if v, ok := fields["requests"]; ok {
		u.Requests, _ = strconv.ParseInt(v, 10, 64)
	}
	if v, ok := fields["generated"]; ok {
		u.Generated, _ = strconv.ParseInt(v, 10, 64)
	}
	return u, nil
}
