// internal/generation/prompt.go
package generation

import (
	"fmt"
	"strings"

	"copyflow/internal/generation/emoji"
)

// SystemPrompt frames the chat-completion tier; specialized assistants carry
// their own instructions server-side.
const SystemPrompt = "You are an expert e-commerce copywriter. " +
	"Return ONLY a single JSON object matching the requested schema, with no surrounding prose."

// BuildPrompt renders the shared prompt body for every backend tier. It is
// built once per request, before the fallback loop starts.
func BuildPrompt(req *Request) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("Generate a complete product listing for: %s", req.ProductName))
	parts = append(parts, fmt.Sprintf("Category: %s", req.Category))
	parts = append(parts, fmt.Sprintf("Writing style: %s", req.Style))

	if req.Language != "" {
		parts = append(parts, fmt.Sprintf("Language: %s", req.Language))
	}
	if req.Market != "" {
		parts = append(parts, fmt.Sprintf("Target market: %s", req.Market))
	}

	if req.Description != "" {
		parts = append(parts, fmt.Sprintf("\nProduct details: %s", req.Description))
	}
	if req.TargetAudience != "" {
		parts = append(parts, fmt.Sprintf("Target audience: %s", req.TargetAudience))
	}
	if req.UniqueFeatures != "" {
		parts = append(parts, fmt.Sprintf("Unique features: %s", req.UniqueFeatures))
	}
	if req.PricePoint != "" {
		parts = append(parts, fmt.Sprintf("Price point: %s", req.PricePoint))
	}
	if req.EmotionalTone != "" {
		parts = append(parts, fmt.Sprintf("Emotional tone: %s", req.EmotionalTone))
	}
	if req.PsychologicalTrigger != "" {
		parts = append(parts, fmt.Sprintf("Psychological trigger to lean on: %s", req.PsychologicalTrigger))
	}

	if req.CompetitorAnalysis {
		parts = append(parts, "Include concrete advantages over typical competitor listings.")
	}
	if req.IncludeViralContent {
		parts = append(parts, "Include short-form viral content: TikTok hooks and Instagram captions.")
	}

	parts = append(parts, "\nEmoji policy:")
	parts = append(parts, emoji.BuildInstruction(req.UseEmojis, req.EmojiIntensity, req.Category))

	parts = append(parts, "\nRespond with a JSON object containing exactly these fields:")
	parts = append(parts, responseSchemaHint)

	return strings.Join(parts, "\n")
}

const responseSchemaHint = `{
  "productTitle": string,
  "seoTitle": string,
  "metaDescription": string,
  "bulletPoints": [string],
  "keyFeatures": [string],
  "callToAction": string,
  "productDescription": string,
  "emotionalHooks": [string],
  "conversionTriggers": [string],
  "competitorAdvantages": [string],
  "priceAnchor": string,
  "trustSignals": [string],
  "urgencyElements": [string],
  "socialProof": [string],
  "amazonBackendKeywords": string,
  "tags": [string],
  "viralContent": {"tiktokHooks": [string], "instagramCaptions": [string]},
  "targetAudience": {"primary": string, "painPoints": [string], "desires": [string]}
}`
