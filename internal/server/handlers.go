// internal/server/handlers.go
package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"copyflow/internal/common/errors"
	"copyflow/internal/generation"
	"copyflow/internal/history"
)

const maxBodyBytes = 1 << 20

// generateRequest is the wire form of a single generation request. Optional
// emoji fields are pointers so an explicit false survives defaulting.
type generateRequest struct {
	ProductName          string `json:"productName"`
	Category             string `json:"category"`
	Style                string `json:"style"`
	Description          string `json:"description"`
	TargetAudience       string `json:"targetAudience"`
	UniqueFeatures       string `json:"uniqueFeatures"`
	PricePoint           string `json:"pricePoint"`
	EmotionalTone        string `json:"emotionalTone"`
	PsychologicalTrigger string `json:"psychologicalTrigger"`
	Language             string `json:"language"`
	Market               string `json:"market"`
	UseEmojis            *bool  `json:"useEmojis"`
	EmojiIntensity       *int   `json:"emojiIntensity"`
}

func (g *generateRequest) pipelineRequest(s *Server) *generation.Request {
	defaults := s.config.Generation

	req := &generation.Request{
		ProductName:          g.ProductName,
		Category:             g.Category,
		Style:                g.Style,
		Description:          g.Description,
		TargetAudience:       g.TargetAudience,
		UniqueFeatures:       g.UniqueFeatures,
		PricePoint:           g.PricePoint,
		EmotionalTone:        g.EmotionalTone,
		PsychologicalTrigger: g.PsychologicalTrigger,
		Language:             g.Language,
		Market:               g.Market,
		UseEmojis:            true,
		EmojiIntensity:       defaults.DefaultEmojiIntensity,
	}
	if req.Language == "" {
		req.Language = defaults.DefaultLanguage
	}
	if req.Market == "" {
		req.Market = defaults.DefaultMarket
	}
	if g.UseEmojis != nil {
		req.UseEmojis = *g.UseEmojis
	}
	if g.EmojiIntensity != nil {
		req.EmojiIntensity = *g.EmojiIntensity
	}
	return req
}

// generateResponse is the 200 body: the flat normalized fields plus which
// tier produced them.
type generateResponse struct {
	*generation.Response
	GenerationMethod string `json:"generationMethod"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if s.config.OpenAI.APIKey == "" {
		s.errors.WriteError(w, errors.NewOpenAIKeyMissingError())
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.errors.WriteError(w, errors.NewValidationFailedError("unreadable request body"))
		return
	}
	if !validateBody(generateSchema, body) {
		s.errors.WriteError(w, errors.NewValidationFailedError("productName, category and style are required"))
		return
	}

	var dto generateRequest
	if err := json.Unmarshal(body, &dto); err != nil {
		s.errors.WriteError(w, errors.NewValidationFailedError("malformed request body"))
		return
	}

	identifier := clientIP(r)
	if s.usage != nil {
		s.usage.RecordRequest(r.Context(), identifier)
	}

	req := dto.pipelineRequest(s)
	start := time.Now()
	outcome := s.generator.Generate(r.Context(), req)

	if !outcome.Success {
		if outcome.Error == "Missing required fields" {
			s.errors.WriteError(w, errors.NewValidationFailedError("rejected by pipeline validation"))
			return
		}
		s.recordHistory(r, req, outcome, start)
		s.errors.WriteError(w, errors.NewGenerationFailedError())
		return
	}

	if s.usage != nil {
		s.usage.RecordGenerated(r.Context(), identifier, 1)
	}
	s.recordHistory(r, req, outcome, start)

	s.writeJSON(w, http.StatusOK, generateResponse{
		Response:         outcome.Data,
		GenerationMethod: string(outcome.Method),
	})
}

type batchProduct struct {
	ProductName    string `json:"productName"`
	Category       string `json:"category"`
	Description    string `json:"description"`
	TargetAudience string `json:"targetAudience"`
	UniqueFeatures string `json:"uniqueFeatures"`
	PricePoint     string `json:"pricePoint"`
}

type batchRequest struct {
	Products            []batchProduct `json:"products"`
	Style               string         `json:"style"`
	Category            string         `json:"category"`
	Language            string         `json:"language"`
	Market              string         `json:"market"`
	CompetitorAnalysis  bool           `json:"competitorAnalysis"`
	IncludeViralContent bool           `json:"includeViralContent"`
	UseEmojis           *bool          `json:"useEmojis"`
	EmojiIntensity      *int           `json:"emojiIntensity"`
}

func (s *Server) handleGenerateBatch(w http.ResponseWriter, r *http.Request) {
	if s.config.OpenAI.APIKey == "" {
		s.errors.WriteError(w, errors.NewOpenAIKeyMissingError())
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.errors.WriteError(w, errors.NewValidationFailedError("unreadable request body"))
		return
	}
	if !validateBody(batchSchema, body) {
		s.errors.WriteError(w, errors.NewValidationFailedError("products and style are required"))
		return
	}

	var dto batchRequest
	if err := json.Unmarshal(body, &dto); err != nil {
		s.errors.WriteError(w, errors.NewValidationFailedError("malformed request body"))
		return
	}

	identifier := clientIP(r)
	if s.usage != nil {
		s.usage.RecordRequest(r.Context(), identifier)
	}

	results := make([]generateResponse, 0, len(dto.Products))
	for _, product := range dto.Products {
		category := product.Category
		if category == "" {
			category = dto.Category
		}
		if category == "" {
			category = "other"
		}

		single := generateRequest{
			ProductName:    product.ProductName,
			Category:       category,
			Style:          dto.Style,
			Description:    product.Description,
			TargetAudience: product.TargetAudience,
			UniqueFeatures: product.UniqueFeatures,
			PricePoint:     product.PricePoint,
			Language:       dto.Language,
			Market:         dto.Market,
			UseEmojis:      dto.UseEmojis,
			EmojiIntensity: dto.EmojiIntensity,
		}
		req := single.pipelineRequest(s)
		req.CompetitorAnalysis = dto.CompetitorAnalysis
		req.IncludeViralContent = dto.IncludeViralContent

		start := time.Now()
		outcome := s.generator.Generate(r.Context(), req)
		s.recordHistory(r, req, outcome, start)
		if !outcome.Success {
			continue
		}
		results = append(results, generateResponse{
			Response:         outcome.Data,
			GenerationMethod: string(outcome.Method),
		})
	}

	if len(results) == 0 {
		s.errors.WriteError(w, errors.NewGenerationFailedError())
		return
	}

	if s.usage != nil {
		s.usage.RecordGenerated(r.Context(), identifier, int64(len(results)))
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"results":   results,
		"requested": len(dto.Products),
		"generated": len(results),
	})
}

// recordHistory persists the outcome when history is enabled. Failures are
// swallowed inside the store.
func (s *Server) recordHistory(r *http.Request, req *generation.Request, outcome *generation.Outcome, start time.Time) {
	if s.history == nil {
		return
	}

	entry := history.Entry{
		ProductName:    req.ProductName,
		Category:       req.Category,
		Style:          req.Style,
		Method:         string(outcome.Method),
		Success:        outcome.Success,
		DurationMillis: time.Since(start).Milliseconds(),
	}
	if outcome.Data != nil {
		entry.Response = outcome.Data
	}
	_ = s.history.Insert(r.Context(), entry)
}
