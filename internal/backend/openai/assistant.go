// internal/backend/openai/assistant.go
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"copyflow/internal/common/errors"
	"copyflow/internal/common/logger"
)

// AssistantConfig carries the provider settings for the assistant tier.
type AssistantConfig struct {
	APIKey       string
	BaseURL      string
	PollInterval time.Duration
}

// AssistantClient drives the OpenAI Assistants run lifecycle: start a run
// with the prompt, poll its status until completion, then read the final
// message. The caller bounds the whole attempt with a context deadline; at
// the default one-second poll interval a 30s budget allows 30 status polls.
type AssistantClient struct {
	config AssistantConfig
	client *http.Client
	logger logger.Logger
}

func NewAssistantClient(config AssistantConfig, log logger.Logger) *AssistantClient {
	if config.PollInterval <= 0 {
		config.PollInterval = time.Second
	}
	return &AssistantClient{
		config: config,
		client: &http.Client{
			// No client-level timeout: the per-attempt context is the single
			// cancellation primitive.
		},
		logger: log.With(map[string]interface{}{
			"backend": "assistant",
		}),
	}
}

type runState struct {
	ID       string `json:"id"`
	ThreadID string `json:"thread_id"`
	Status   string `json:"status"`
}

// Run executes one assistant attempt and returns the raw text of the
// assistant's reply.
func (c *AssistantClient) Run(ctx context.Context, assistantID, prompt string) (string, error) {
	run, err := c.createRun(ctx, assistantID, prompt)
	if err != nil {
		return "", err
	}

	run, err = c.waitForRun(ctx, assistantID, run)
	if err != nil {
		return "", err
	}

	return c.latestMessage(ctx, run.ThreadID)
}

func (c *AssistantClient) createRun(ctx context.Context, assistantID, prompt string) (*runState, error) {
	payload := map[string]interface{}{
		"assistant_id": assistantID,
		"thread": map[string]interface{}{
			"messages": []map[string]interface{}{
				{"role": "user", "content": prompt},
			},
		},
	}

	var run runState
	if err := c.do(ctx, http.MethodPost, "/v1/threads/runs", payload, &run); err != nil {
		return nil, errors.NewAssistantRunFailedError(assistantID, err)
	}
	if run.ID == "" || run.ThreadID == "" {
		return nil, errors.NewAssistantRunFailedError(assistantID, fmt.Errorf("run response missing identifiers"))
	}
	return &run, nil
}

// waitForRun polls the run status until it reaches a terminal state or the
// attempt context expires.
func (c *AssistantClient) waitForRun(ctx context.Context, assistantID string, run *runState) (*runState, error) {
	ticker := time.NewTicker(c.config.PollInterval)
	defer ticker.Stop()

	for {
		switch run.Status {
		case "completed":
			return run, nil
		case "failed", "cancelled", "expired", "incomplete":
			return nil, errors.NewAssistantRunFailedError(assistantID, fmt.Errorf("run ended with status %q", run.Status))
		}

		select {
		case <-ctx.Done():
			return nil, errors.NewAssistantTimeoutError(assistantID)
		case <-ticker.C:
		}

		path := fmt.Sprintf("/v1/threads/%s/runs/%s", run.ThreadID, run.ID)
		var next runState
		if err := c.do(ctx, http.MethodGet, path, nil, &next); err != nil {
			if ctx.Err() != nil {
				return nil, errors.NewAssistantTimeoutError(assistantID)
			}
			return nil, errors.NewAssistantRunFailedError(assistantID, err)
		}
		next.ThreadID = run.ThreadID
		run = &next
	}
}

type messageList struct {
	Data []struct {
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text struct {
				Value string `json:"value"`
			} `json:"text"`
		} `json:"content"`
	} `json:"data"`
}

func (c *AssistantClient) latestMessage(ctx context.Context, threadID string) (string, error) {
	path := fmt.Sprintf("/v1/threads/%s/messages?order=desc&limit=1", threadID)

	var list messageList
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return "", errors.NewAssistantRunFailedError("", err)
	}

	for _, msg := range list.Data {
		if msg.Role != "assistant" {
			continue
		}
		for _, content := range msg.Content {
			if content.Type == "text" && content.Text.Value != "" {
				return content.Text.Value, nil
			}
		}
	}

	return "", errors.NewAssistantRunFailedError("", fmt.Errorf("thread %s has no assistant message", threadID))
}

func (c *AssistantClient) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewBuffer(data)
	} else {
		body = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("OpenAI-Beta", "assistants=v2")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d from %s", resp.StatusCode, path)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
