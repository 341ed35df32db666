// internal/generation/orchestrator/orchestrator_test.go
package orchestrator

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copyflow/internal/analytics"
	"copyflow/internal/common/logger"
	"copyflow/internal/generation"
	"copyflow/internal/generation/router"
)

type fakeAssistant struct {
	calls   []string
	replies map[string]string
	errs    map[string]error
}

func (f *fakeAssistant) Run(_ context.Context, assistantID, _ string) (string, error) {
	f.calls = append(f.calls, assistantID)
	if err, ok := f.errs[assistantID]; ok {
		return "", err
	}
	if reply, ok := f.replies[assistantID]; ok {
		return reply, nil
	}
	return "", fmt.Errorf("no reply configured for %s", assistantID)
}

type fakeChat struct {
	calls int
	reply string
	err   error
}

func (f *fakeChat) Complete(context.Context, string) (string, error) {
	f.calls++
	return f.reply, f.err
}

type captureRecorder struct {
	events []analytics.Event
}

func (c *captureRecorder) Record(_ context.Context, e analytics.Event) {
	c.events = append(c.events, e)
}

const validBody = `{"productTitle":"Wireless Earbuds Pro","callToAction":"Order Today"}`

func newOrchestrator(t *testing.T, assistant *fakeAssistant, chat *fakeChat, recorder analytics.Recorder) *Orchestrator {
	t.Helper()
	selector := router.NewSelector(router.NewRegistry(map[string]string{
		"electronics": "asst_electronics",
		"other":       "asst_universal",
	}, "asst_universal"))
	return New(selector, assistant, chat, recorder, Config{AttemptTimeout: 100 * time.Millisecond}, logger.NewTestLogger(t))
}

func validRequest() *generation.Request {
	return &generation.Request{
		ProductName: "Wireless Earbuds Pro",
		Category:    "Electronics",
		Style:       "professional",
	}
}

func TestGenerate_FirstSuccessWins(t *testing.T) {
	assistant := &fakeAssistant{replies: map[string]string{"asst_electronics": validBody}}
	chat := &fakeChat{}
	recorder := &captureRecorder{}

	outcome := newOrchestrator(t, assistant, chat, recorder).Generate(context.Background(), validRequest())

	require.True(t, outcome.Success)
	assert.Equal(t, generation.MethodAssistant, outcome.Method)
	assert.Equal(t, "Wireless Earbuds Pro", outcome.Data.ProductTitle)
	assert.Equal(t, "Order Today", outcome.Data.CallToAction)

	// The universal assistant and the chat tier must never run.
	assert.Equal(t, []string{"asst_electronics"}, assistant.calls)
	assert.Zero(t, chat.calls)

	require.Len(t, recorder.events, 1)
	assert.Equal(t, "specialized", recorder.events[0].Tier)
	assert.Equal(t, "asst_electronics", recorder.events[0].AssistantID)
}

func TestGenerate_SpecializedFailsUniversalSucceeds(t *testing.T) {
	assistant := &fakeAssistant{
		errs:    map[string]error{"asst_electronics": fmt.Errorf("run failed")},
		replies: map[string]string{"asst_universal": validBody},
	}
	chat := &fakeChat{}
	recorder := &captureRecorder{}

	outcome := newOrchestrator(t, assistant, chat, recorder).Generate(context.Background(), validRequest())

	require.True(t, outcome.Success)
	assert.Equal(t, generation.MethodAssistant, outcome.Method)
	assert.Equal(t, []string{"asst_electronics", "asst_universal"}, assistant.calls)
	assert.Zero(t, chat.calls)

	require.Len(t, recorder.events, 1)
	assert.Equal(t, "universal", recorder.events[0].Tier)
}

func TestGenerate_ChainExhaustedFallsBackToChat(t *testing.T) {
	assistant := &fakeAssistant{errs: map[string]error{
		"asst_electronics": fmt.Errorf("run failed"),
		"asst_universal":   fmt.Errorf("run failed"),
	}}
	chat := &fakeChat{reply: validBody}
	recorder := &captureRecorder{}

	outcome := newOrchestrator(t, assistant, chat, recorder).Generate(context.Background(), validRequest())

	require.True(t, outcome.Success)
	assert.Equal(t, generation.MethodChat, outcome.Method)
	assert.Equal(t, 1, chat.calls)
	// Each assistant was tried exactly once, never retried.
	assert.Equal(t, []string{"asst_electronics", "asst_universal"}, assistant.calls)

	require.Len(t, recorder.events, 1)
	assert.Equal(t, "chat", recorder.events[0].Tier)
}

func TestGenerate_UnparseableAssistantReplyMovesDownChain(t *testing.T) {
	assistant := &fakeAssistant{replies: map[string]string{
		"asst_electronics": "I'm sorry, I can't produce JSON right now.",
		"asst_universal":   validBody,
	}}
	chat := &fakeChat{}

	outcome := newOrchestrator(t, assistant, chat, nil).Generate(context.Background(), validRequest())

	require.True(t, outcome.Success)
	assert.Equal(t, generation.MethodAssistant, outcome.Method)
	assert.Equal(t, []string{"asst_electronics", "asst_universal"}, assistant.calls)
}

func TestGenerate_EveryTierFails(t *testing.T) {
	assistant := &fakeAssistant{errs: map[string]error{
		"asst_electronics": fmt.Errorf("run failed"),
		"asst_universal":   fmt.Errorf("run failed"),
	}}
	chat := &fakeChat{err: fmt.Errorf("completion failed")}
	recorder := &captureRecorder{}

	outcome := newOrchestrator(t, assistant, chat, recorder).Generate(context.Background(), validRequest())

	require.False(t, outcome.Success)
	assert.Equal(t, generation.MethodError, outcome.Method)
	assert.Equal(t, "generation failed", outcome.Error)
	assert.Nil(t, outcome.Data)
	assert.Equal(t, 1, chat.calls)

	require.Len(t, recorder.events, 1)
	assert.False(t, recorder.events[0].Success)
}

func TestGenerate_EmptyChainGoesStraightToChat(t *testing.T) {
	selector := router.NewSelector(router.NewRegistry(nil, ""))
	assistant := &fakeAssistant{}
	chat := &fakeChat{reply: validBody}

	orch := New(selector, assistant, chat, nil, Config{}, logger.NewTestLogger(t))
	outcome := orch.Generate(context.Background(), validRequest())

	require.True(t, outcome.Success)
	assert.Equal(t, generation.MethodChat, outcome.Method)
	assert.Empty(t, assistant.calls)
	assert.Equal(t, 1, chat.calls)
}

func TestGenerate_InvalidRequestNeverReachesBackends(t *testing.T) {
	tests := []struct {
		name string
		req  *generation.Request
	}{
		{"missing product name", &generation.Request{Category: "electronics", Style: "casual"}},
		{"missing category", &generation.Request{ProductName: "Earbuds", Style: "casual"}},
		{"missing style", &generation.Request{ProductName: "Earbuds", Category: "electronics"}},
		{"whitespace only", &generation.Request{ProductName: "  ", Category: "electronics", Style: "casual"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assistant := &fakeAssistant{}
			chat := &fakeChat{}

			outcome := newOrchestrator(t, assistant, chat, nil).Generate(context.Background(), tt.req)

			require.False(t, outcome.Success)
			assert.Equal(t, generation.MethodError, outcome.Method)
			assert.Equal(t, "Missing required fields", outcome.Error)
			assert.Empty(t, assistant.calls)
			assert.Zero(t, chat.calls)
		})
	}
}

func TestGenerate_UnknownCategoryRoutesToUniversal(t *testing.T) {
	assistant := &fakeAssistant{replies: map[string]string{"asst_universal": validBody}}
	chat := &fakeChat{}
	recorder := &captureRecorder{}

	req := validRequest()
	req.Category = "spaceships"

	outcome := newOrchestrator(t, assistant, chat, recorder).Generate(context.Background(), req)

	require.True(t, outcome.Success)
	assert.Equal(t, []string{"asst_universal"}, assistant.calls)
	assert.Equal(t, "universal", recorder.events[0].Tier)
}

func TestGenerate_SuccessDataIsFullyShaped(t *testing.T) {
	// Even a minimal upstream reply yields the complete response contract.
	assistant := &fakeAssistant{replies: map[string]string{"asst_electronics": `{}`}}

	outcome := newOrchestrator(t, assistant, &fakeChat{}, nil).Generate(context.Background(), validRequest())

	require.True(t, outcome.Success)
	assert.NotEmpty(t, outcome.Data.ProductTitle)
	assert.NotEmpty(t, outcome.Data.CallToAction)
	assert.NotEmpty(t, outcome.Data.BulletPoints)
	assert.NotNil(t, outcome.Data.ViralContent.TikTokHooks)
	assert.NotNil(t, outcome.Data.TargetAudience.PainPoints)
}
