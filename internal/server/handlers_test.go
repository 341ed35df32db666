// internal/server/handlers_test.go
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copyflow/internal/common/config"
	"copyflow/internal/common/logger"
	"copyflow/internal/generation"
	"copyflow/internal/ratelimit"
)

type stubGenerator struct {
	requests []*generation.Request
	outcome  func(req *generation.Request) *generation.Outcome
}

func (s *stubGenerator) Generate(_ context.Context, req *generation.Request) *generation.Outcome {
	s.requests = append(s.requests, req)
	if s.outcome != nil {
		return s.outcome(req)
	}
	return &generation.Outcome{
		Success: true,
		Data:    &generation.Response{ProductTitle: req.ProductName, CallToAction: "Buy Now"},
		Method:  generation.MethodAssistant,
	}
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "copyflow", Version: "test"},
		OpenAI: config.OpenAIConfig{
			APIKey: "sk-test",
		},
		Generation: config.GenerationConfig{
			DefaultLanguage:       "en",
			DefaultMarket:         "US",
			DefaultEmojiIntensity: 2,
		},
	}
}

func newTestServer(t *testing.T, cfg *config.Config, gen *stubGenerator, opts Options) *Server {
	t.Helper()
	return New(cfg, gen, opts, logger.NewTestLogger(t))
}

func postJSON(handler http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleGenerate_Success(t *testing.T) {
	gen := &stubGenerator{}
	srv := newTestServer(t, testConfig(), gen, Options{})

	rec := postJSON(srv.Handler(), "/generate", `{
		"productName": "Wireless Headphones",
		"category": "electronics",
		"style": "professional"
	}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Wireless Headphones", resp["productTitle"])
	assert.Equal(t, "assistant", resp["generationMethod"])
	assert.Equal(t, "Buy Now", resp["callToAction"])
}

func TestHandleGenerate_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty object", `{}`},
		{"missing style", `{"productName": "X", "category": "electronics"}`},
		{"missing category", `{"productName": "X", "style": "casual"}`},
		{"empty product name", `{"productName": "", "category": "electronics", "style": "casual"}`},
		{"not json", `this is not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{}
			srv := newTestServer(t, testConfig(), gen, Options{})

			rec := postJSON(srv.Handler(), "/generate", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "Missing required fields", resp["error"])

			// The pipeline must never run for a rejected request.
			assert.Empty(t, gen.requests)
		})
	}
}

func TestHandleGenerate_MissingAPIKey(t *testing.T) {
	cfg := testConfig()
	cfg.OpenAI.APIKey = ""
	gen := &stubGenerator{}
	srv := newTestServer(t, cfg, gen, Options{})

	rec := postJSON(srv.Handler(), "/generate", `{
		"productName": "X", "category": "electronics", "style": "casual"
	}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "OpenAI API key not configured")
	assert.Empty(t, gen.requests)
}

func TestHandleGenerate_PipelineFailure(t *testing.T) {
	gen := &stubGenerator{outcome: func(*generation.Request) *generation.Outcome {
		return &generation.Outcome{Success: false, Error: "generation failed", Method: generation.MethodError}
	}}
	srv := newTestServer(t, testConfig(), gen, Options{})

	rec := postJSON(srv.Handler(), "/generate", `{
		"productName": "X", "category": "electronics", "style": "casual"
	}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "generation failed", resp["error"])
}

func TestHandleGenerate_AppliesDefaults(t *testing.T) {
	gen := &stubGenerator{}
	srv := newTestServer(t, testConfig(), gen, Options{})

	postJSON(srv.Handler(), "/generate", `{
		"productName": "X", "category": "electronics", "style": "casual"
	}`)

	require.Len(t, gen.requests, 1)
	req := gen.requests[0]
	assert.Equal(t, "en", req.Language)
	assert.Equal(t, "US", req.Market)
	assert.True(t, req.UseEmojis)
	assert.Equal(t, 2, req.EmojiIntensity)
}

func TestHandleGenerate_ExplicitEmojiOptOutSurvives(t *testing.T) {
	gen := &stubGenerator{}
	srv := newTestServer(t, testConfig(), gen, Options{})

	postJSON(srv.Handler(), "/generate", `{
		"productName": "X", "category": "electronics", "style": "casual",
		"useEmojis": false, "emojiIntensity": 3, "language": "de", "market": "DE"
	}`)

	require.Len(t, gen.requests, 1)
	req := gen.requests[0]
	assert.False(t, req.UseEmojis)
	assert.Equal(t, 3, req.EmojiIntensity)
	assert.Equal(t, "de", req.Language)
	assert.Equal(t, "DE", req.Market)
}

func TestHandleGenerate_APIPrefixAlias(t *testing.T) {
	gen := &stubGenerator{}
	srv := newTestServer(t, testConfig(), gen, Options{})

	rec := postJSON(srv.Handler(), "/api/generate", `{
		"productName": "X", "category": "electronics", "style": "casual"
	}`)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPreflight(t *testing.T) {
	srv := newTestServer(t, testConfig(), &stubGenerator{}, Options{})

	req := httptest.NewRequest(http.MethodOptions, "/generate", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Methods"))
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Headers"))
}

func TestHandleGenerateBatch_CollectsSuccesses(t *testing.T) {
	gen := &stubGenerator{outcome: func(req *generation.Request) *generation.Outcome {
		if req.ProductName == "Broken Product" {
			return &generation.Outcome{Success: false, Error: "generation failed", Method: generation.MethodError}
		}
		return &generation.Outcome{
			Success: true,
			Data:    &generation.Response{ProductTitle: req.ProductName},
			Method:  generation.MethodChat,
		}
	}}
	srv := newTestServer(t, testConfig(), gen, Options{})

	rec := postJSON(srv.Handler(), "/generate/batch", `{
		"style": "casual",
		"category": "sports",
		"products": [
			{"productName": "Yoga Mat"},
			{"productName": "Broken Product"},
			{"productName": "Foam Roller", "category": "health"}
		]
	}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Results   []map[string]interface{} `json:"results"`
		Requested int                      `json:"requested"`
		Generated int                      `json:"generated"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Requested)
	assert.Equal(t, 2, resp.Generated)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "Yoga Mat", resp.Results[0]["productTitle"])

	// Per-product category overrides the batch-level one.
	require.Len(t, gen.requests, 3)
	assert.Equal(t, "sports", gen.requests[0].Category)
	assert.Equal(t, "health", gen.requests[2].Category)
}

func TestHandleGenerateBatch_AllFail(t *testing.T) {
	gen := &stubGenerator{outcome: func(*generation.Request) *generation.Outcome {
		return &generation.Outcome{Success: false, Error: "generation failed", Method: generation.MethodError}
	}}
	srv := newTestServer(t, testConfig(), gen, Options{})

	rec := postJSON(srv.Handler(), "/generate/batch", `{
		"style": "casual",
		"products": [{"productName": "Yoga Mat", "category": "sports"}]
	}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "generation failed")
}

func TestHandleGenerateBatch_MissingProducts(t *testing.T) {
	gen := &stubGenerator{}
	srv := newTestServer(t, testConfig(), gen, Options{})

	rec := postJSON(srv.Handler(), "/generate/batch", `{"style": "casual", "products": []}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, gen.requests)
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), 2, time.Minute, logger.NewTestLogger(t))
	srv := newTestServer(t, testConfig(), &stubGenerator{}, Options{Limiter: limiter})

	body := `{"productName": "X", "category": "electronics", "style": "casual"}`

	for i := 0; i < 2; i++ {
		rec := postJSON(srv.Handler(), "/generate", body)
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec := postJSON(srv.Handler(), "/generate", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "Too many requests")
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, testConfig(), &stubGenerator{}, Options{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}
