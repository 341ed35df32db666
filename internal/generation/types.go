// internal/generation/types.go
package generation

import "strings"

// Method identifies which tier of the pipeline produced a result.
type Method string

const (
	MethodAssistant Method = "assistant"
	MethodChat      Method = "chat"
	MethodError     Method = "error"
)

// Request is the input to the generation pipeline.
type Request struct {
	ProductName          string `json:"productName"`
	Category             string `json:"category"`
	Style                string `json:"style"`
	Description          string `json:"description,omitempty"`
	TargetAudience       string `json:"targetAudience,omitempty"`
	UniqueFeatures       string `json:"uniqueFeatures,omitempty"`
	PricePoint           string `json:"pricePoint,omitempty"`
	EmotionalTone        string `json:"emotionalTone,omitempty"`
	PsychologicalTrigger string `json:"psychologicalTrigger,omitempty"`
	Language             string `json:"language,omitempty"`
	Market               string `json:"market,omitempty"`
	UseEmojis            bool   `json:"useEmojis"`
	EmojiIntensity       int    `json:"emojiIntensity"`

	// Batch-only pass-through flags.
	CompetitorAnalysis  bool `json:"competitorAnalysis,omitempty"`
	IncludeViralContent bool `json:"includeViralContent,omitempty"`
}

// Normalize lower-cases the category for routing lookups and clamps the
// emoji intensity into its valid range.
func (r *Request) Normalize() {
	r.Category = strings.ToLower(strings.TrimSpace(r.Category))
	if r.EmojiIntensity < 1 || r.EmojiIntensity > 3 {
		r.EmojiIntensity = 2
	}
}

// Valid reports whether the required fields are present. Requests failing
// this are rejected before any backend is contacted.
func (r *Request) Valid() bool {
	return strings.TrimSpace(r.ProductName) != "" &&
		strings.TrimSpace(r.Category) != "" &&
		strings.TrimSpace(r.Style) != ""
}

// ViralContent holds short-form social content.
type ViralContent struct {
	TikTokHooks       []string `json:"tiktokHooks"`
	InstagramCaptions []string `json:"instagramCaptions"`
}

// AudienceProfile describes the buyer the copy is aimed at.
type AudienceProfile struct {
	Primary    string   `json:"primary"`
	PainPoints []string `json:"painPoints"`
	Desires    []string `json:"desires"`
}

// Response is the output contract. After normalization every field is
// guaranteed present and of the declared shape; list fields are never nil.
type Response struct {
	ProductTitle          string   `json:"productTitle"`
	SeoTitle              string   `json:"seoTitle"`
	MetaDescription       string   `json:"metaDescription"`
	BulletPoints          []string `json:"bulletPoints"`
	KeyFeatures           []string `json:"keyFeatures"`
	CallToAction          string   `json:"callToAction"`
	ProductDescription    string   `json:"productDescription"`
	EmotionalHooks        []string `json:"emotionalHooks"`
	ConversionTriggers    []string `json:"conversionTriggers"`
	CompetitorAdvantages  []string `json:"competitorAdvantages"`
	PriceAnchor           string   `json:"priceAnchor"`
	TrustSignals          []string `json:"trustSignals"`
	UrgencyElements       []string `json:"urgencyElements"`
	SocialProof           []string `json:"socialProof"`
	AmazonBackendKeywords string   `json:"amazonBackendKeywords"`
	Tags                  []string `json:"tags"`

	ViralContent   ViralContent    `json:"viralContent"`
	TargetAudience AudienceProfile `json:"targetAudience"`
}

// Outcome is the pipeline's final result passed back to the adapter.
type Outcome struct {
	Success bool      `json:"success"`
	Data    *Response `json:"data,omitempty"`
	Error   string    `json:"error,omitempty"`
	Method  Method    `json:"method"`
}
