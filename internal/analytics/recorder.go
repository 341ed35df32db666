// internal/analytics/recorder.go
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"copyflow/internal/common/logger"
)

// Event captures the outcome of one generation request. One event is
// recorded per request regardless of which tier produced the result.
type Event struct {
	RequestID      string    `json:"requestId"`
	Category       string    `json:"category"`
	Style          string    `json:"style"`
	Method         string    `json:"method"`
	Tier           string    `json:"tier"`
	AssistantID    string    `json:"assistantId,omitempty"`
	Success        bool      `json:"success"`
	DurationMillis int64     `json:"durationMs"`
	Timestamp      time.Time `json:"timestamp"`
}

// Recorder receives generation events. Implementations must not block the
// request path on delivery failures; recording is best effort.
type Recorder interface {
	Record(ctx context.Context, event Event)
}

// NopRecorder drops every event. Used when analytics is disabled.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Event) {}

// ESRecorder indexes events into Elasticsearch.
type ESRecorder struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewESRecorder(client *elasticsearch.Client, index string, log logger.Logger) *ESRecorder {
	return &ESRecorder{
		client: client,
		index:  index,
		logger: log.With(map[string]interface{}{"component": "analytics"}),
	}
}

func (r *ESRecorder) Record(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	body, err := json.Marshal(event)
	if err != nil {
		r.logger.Warn("Failed to encode analytics event", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	res, err := r.client.Index(r.index, bytes.NewReader(body), r.client.Index.WithContext(ctx))
	if err != nil {
		r.logger.Warn("Failed to index analytics event", map[string]interface{}{
			"error": err.Error(),
			"index": r.index,
		})
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		r.logger.Warn("Analytics index request rejected", map[string]interface{}{
			"status": res.StatusCode,
			"index":  r.index,
		})
	}
}
