// internal/generation/orchestrator/orchestrator.go
package orchestrator

import (
	"context"
	"time"

	"copyflow/internal/analytics"
	"copyflow/internal/common/errors"
	"copyflow/internal/common/logger"
	"copyflow/internal/common/metrics"
	"copyflow/internal/generation"
	"copyflow/internal/generation/normalize"
	"copyflow/internal/generation/router"
)

// AssistantBackend runs a prompt against one named assistant and returns its
// raw reply text.
type AssistantBackend interface {
	Run(ctx context.Context, assistantID, prompt string) (string, error)
}

// ChatBackend runs a prompt as a plain chat completion.
type ChatBackend interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Orchestrator walks the two-tier fallback: each assistant in the routing
// chain is tried once in order, first success wins; only after the whole
// chain is exhausted does the chat tier run, exactly once. A failed attempt
// is never retried against the same identifier.
type Orchestrator struct {
	selector  *router.Selector
	assistant AssistantBackend
	chat      ChatBackend
	recorder  analytics.Recorder
	config    Config
	logger    logger.Logger
}

func New(selector *router.Selector, assistant AssistantBackend, chat ChatBackend, recorder analytics.Recorder, config Config, log logger.Logger) *Orchestrator {
	config.applyDefaults()
	if recorder == nil {
		recorder = analytics.NopRecorder{}
	}
	return &Orchestrator{
		selector:  selector,
		assistant: assistant,
		chat:      chat,
		recorder:  recorder,
		config:    config,
		logger:    log.With(map[string]interface{}{"component": "orchestrator"}),
	}
}

// Generate runs the full pipeline for one request. The returned outcome is
// always non-nil; on success its Data is fully shaped.
func (o *Orchestrator) Generate(ctx context.Context, req *generation.Request) *generation.Outcome {
	start := time.Now()

	req.Normalize()
	if !req.Valid() {
		appErr := errors.NewValidationFailedError("productName, category and style are required")
		metrics.GenerationFailures.WithLabelValues(req.Category, string(appErr.Code)).Inc()
		o.finish(ctx, req, generation.MethodError, "none", "", start, false)
		return &generation.Outcome{
			Success: false,
			Error:   appErr.Message,
			Method:  generation.MethodError,
		}
	}

	selection := o.selector.Select(req.Category)
	prompt := generation.BuildPrompt(req)

	o.logger.Info("Starting generation", map[string]interface{}{
		"category":    req.Category,
		"style":       req.Style,
		"chainLength": len(selection.FallbackChain),
	})

	for _, assistantID := range selection.FallbackChain {
		data, ok := o.tryAssistant(ctx, assistantID, prompt, req.ProductName)
		if !ok {
			continue
		}

		tier := "universal"
		if assistantID == selection.Specialized && assistantID != selection.Universal {
			tier = "specialized"
		}
		o.finish(ctx, req, generation.MethodAssistant, tier, assistantID, start, true)

		return &generation.Outcome{
			Success: true,
			Data:    data,
			Method:  generation.MethodAssistant,
		}
	}

	if data, ok := o.tryChat(ctx, prompt, req.ProductName); ok {
		o.finish(ctx, req, generation.MethodChat, "chat", "", start, true)
		return &generation.Outcome{
			Success: true,
			Data:    data,
			Method:  generation.MethodChat,
		}
	}

	appErr := errors.NewGenerationFailedError()
	metrics.GenerationFailures.WithLabelValues(req.Category, string(appErr.Code)).Inc()
	o.finish(ctx, req, generation.MethodError, "none", "", start, false)

	return &generation.Outcome{
		Success: false,
		Error:   appErr.Message,
		Method:  generation.MethodError,
	}
}

// tryAssistant runs one bounded attempt against a single assistant. Any
// failure, transport, terminal run status, timeout or unparseable reply,
// counts as a miss and the caller moves down the chain.
func (o *Orchestrator) tryAssistant(ctx context.Context, assistantID, prompt, productName string) (*generation.Response, bool) {
	attemptCtx, cancel := context.WithTimeout(ctx, o.config.AttemptTimeout)
	defer cancel()

	body, err := o.assistant.Run(attemptCtx, assistantID, prompt)
	if err != nil {
		metrics.BackendAttempts.WithLabelValues("assistant", "error").Inc()
		o.logger.Warn("Assistant attempt failed", map[string]interface{}{
			"assistantId": assistantID,
			"error":       err.Error(),
		})
		return nil, false
	}

	raw, err := normalize.Parse(body)
	if err != nil {
		metrics.BackendAttempts.WithLabelValues("assistant", "parse_error").Inc()
		o.logger.Warn("Assistant reply was not parseable JSON", map[string]interface{}{
			"assistantId": assistantID,
			"error":       err.Error(),
		})
		return nil, false
	}

	metrics.BackendAttempts.WithLabelValues("assistant", "success").Inc()
	return normalize.Normalize(raw, productName), true
}

func (o *Orchestrator) tryChat(ctx context.Context, prompt, productName string) (*generation.Response, bool) {
	attemptCtx, cancel := context.WithTimeout(ctx, o.config.AttemptTimeout)
	defer cancel()

	body, err := o.chat.Complete(attemptCtx, prompt)
	if err != nil {
		metrics.BackendAttempts.WithLabelValues("chat", "error").Inc()
		o.logger.Warn("Chat completion attempt failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, false
	}

	raw, err := normalize.Parse(body)
	if err != nil {
		metrics.BackendAttempts.WithLabelValues("chat", "parse_error").Inc()
		o.logger.Warn("Chat reply was not parseable JSON", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, false
	}

	metrics.BackendAttempts.WithLabelValues("chat", "success").Inc()
	return normalize.Normalize(raw, productName), true
}

// finish emits the per-request log line, metrics and analytics event.
func (o *Orchestrator) finish(ctx context.Context, req *generation.Request, method generation.Method, tier, assistantID string, start time.Time, success bool) {
	elapsed := time.Since(start)

	metrics.GenerationsTotal.WithLabelValues(req.Category, string(method)).Inc()
	metrics.GenerationDuration.WithLabelValues(req.Category, string(method)).Observe(elapsed.Seconds())

	fields := map[string]interface{}{
		"category":   req.Category,
		"method":     string(method),
		"tier":       tier,
		"success":    success,
		"durationMs": elapsed.Milliseconds(),
	}
	if assistantID != "" {
		fields["assistantId"] = assistantID
	}
	if success {
		o.logger.Info("Generation completed", fields)
	} else {
		o.logger.Error("Generation failed", fields)
	}

	o.recorder.Record(ctx, analytics.Event{
		Category:       req.Category,
		Style:          req.Style,
		Method:         string(method),
		Tier:           tier,
		AssistantID:    assistantID,
		Success:        success,
		DurationMillis: elapsed.Milliseconds(),
		Timestamp:      time.Now().UTC(),
	})
}
