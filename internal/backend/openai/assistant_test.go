// internal/backend/openai/assistant_test.go
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copyflow/internal/common/logger"
)

// fakeAssistantAPI simulates the threads/runs surface: a create call, a
// configurable number of in_progress polls, then a terminal status.
type fakeAssistantAPI struct {
	pollsUntilDone int32
	finalStatus    string
	messageText    string

	polls   atomic.Int32
	creates atomic.Int32
}

func (f *fakeAssistantAPI) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/threads/runs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		f.creates.Add(1)
		if r.Header.Get("OpenAI-Beta") != "assistants=v2" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"id": "run_1", "thread_id": "thread_1", "status": "queued",
		})
	})

	mux.HandleFunc("/v1/threads/thread_1/runs/run_1", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		n := f.polls.Add(1)
		status := "in_progress"
		if n >= f.pollsUntilDone {
			status = f.finalStatus
		}
		json.NewEncoder(w).Encode(map[string]string{
			"id": "run_1", "thread_id": "thread_1", "status": status,
		})
	})

	mux.HandleFunc("/v1/threads/thread_1/messages", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		fmt.Fprintf(w, `{"data":[{"role":"assistant","content":[{"type":"text","text":{"value":%q}}]}]}`, f.messageText)
	})

	return mux
}

func newTestClient(t *testing.T, api *fakeAssistantAPI) (*AssistantClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	client := NewAssistantClient(AssistantConfig{
		APIKey:       "sk-test",
		BaseURL:      srv.URL,
		PollInterval: 5 * time.Millisecond,
	}, logger.NewTestLogger(t))

	return client, srv
}

func TestAssistantClient_Run(t *testing.T) {
	t.Run("returns message after run completes", func(t *testing.T) {
		api := &fakeAssistantAPI{
			pollsUntilDone: 3,
			finalStatus:    "completed",
			messageText:    `{"productTitle":"Test"}`,
		}
		client, _ := newTestClient(t, api)

		out, err := client.Run(context.Background(), "asst_abc", "describe the product")

		require.NoError(t, err)
		assert.Equal(t, `{"productTitle":"Test"}`, out)
		assert.Equal(t, int32(1), api.creates.Load())
		assert.GreaterOrEqual(t, api.polls.Load(), int32(3))
	})

	t.Run("terminal failure status surfaces as error", func(t *testing.T) {
		api := &fakeAssistantAPI{pollsUntilDone: 1, finalStatus: "failed"}
		client, _ := newTestClient(t, api)

		_, err := client.Run(context.Background(), "asst_abc", "prompt")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Assistant run failed")
	})

	t.Run("context deadline aborts polling", func(t *testing.T) {
		api := &fakeAssistantAPI{pollsUntilDone: 1 << 30, finalStatus: "completed"}
		client, _ := newTestClient(t, api)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()

		_, err := client.Run(ctx, "asst_abc", "prompt")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "timeout")
	})

	t.Run("non-200 on run creation fails fast", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := NewAssistantClient(AssistantConfig{
			APIKey:       "sk-test",
			BaseURL:      srv.URL,
			PollInterval: 5 * time.Millisecond,
		}, logger.NewTestLogger(t))

		_, err := client.Run(context.Background(), "asst_abc", "prompt")
		require.Error(t, err)
	})
}
