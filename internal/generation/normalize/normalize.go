// internal/generation/normalize/normalize.go
package normalize

import (
	"fmt"
	"strings"

	"copyflow/internal/generation"
)

// Normalize fills every required field of the output contract. For each
// field the upstream value is used when it has the declared shape; otherwise
// a deterministic default built around the product name is substituted.
// Total function: any input, including nil, yields a fully-shaped response.
func Normalize(raw map[string]interface{}, productName string) *generation.Response {
	if raw == nil {
		raw = map[string]interface{}{}
	}

	resp := &generation.Response{
		ProductTitle:       stringField(raw, "productTitle", fmt.Sprintf("%s - Premium Quality", productName)),
		SeoTitle:           stringField(raw, "seoTitle", fmt.Sprintf("Buy %s Online | Best Price", productName)),
		MetaDescription:    stringField(raw, "metaDescription", fmt.Sprintf("Discover %s. Premium quality, fast shipping and a money-back guarantee.", productName)),
		CallToAction:       stringField(raw, "callToAction", "Buy Now"),
		ProductDescription: stringField(raw, "productDescription", fmt.Sprintf("%s is a premium product designed to deliver outstanding value and quality.", productName)),
		PriceAnchor:        stringField(raw, "priceAnchor", "Exceptional value for the price"),
		AmazonBackendKeywords: stringField(raw, "amazonBackendKeywords",
			strings.ToLower(productName)+", premium, quality, best, top rated"),

		BulletPoints: listField(raw, "bulletPoints", []string{
			"Premium quality materials",
			"Fast and reliable shipping",
			"Easy returns within 30 days",
		}),
		KeyFeatures: listField(raw, "keyFeatures", []string{
			"High quality",
			"Great value",
			"Customer favorite",
		}),
		EmotionalHooks: listField(raw, "emotionalHooks", []string{
			"Feel the difference from day one",
		}),
		ConversionTriggers: listField(raw, "conversionTriggers", []string{
			"Limited stock available",
		}),
		CompetitorAdvantages: listField(raw, "competitorAdvantages", []string{
			"Better value than comparable products",
		}),
		TrustSignals: listField(raw, "trustSignals", []string{
			"30-day money-back guarantee",
			"Secure checkout",
			"Thousands of happy customers",
		}),
		UrgencyElements: listField(raw, "urgencyElements", []string{
			"Order today",
		}),
		SocialProof: listField(raw, "socialProof", []string{
			"Rated 4.8/5 by verified buyers",
		}),
		Tags: listField(raw, "tags", []string{
			"premium", "quality", "bestseller",
		}),
	}

	viral := objectField(raw, "viralContent")
	resp.ViralContent = generation.ViralContent{
		TikTokHooks: listField(viral, "tiktokHooks", []string{
			"POV: you finally found the one worth buying",
		}),
		InstagramCaptions: listField(viral, "instagramCaptions", []string{
			"Upgrade your everyday ✨",
		}),
	}

	audience := objectField(raw, "targetAudience")
	resp.TargetAudience = generation.AudienceProfile{
		Primary: stringField(audience, "primary", "Shoppers looking for quality and value"),
		PainPoints: listField(audience, "painPoints", []string{
			"Overpaying for underwhelming products",
		}),
		Desires: listField(audience, "desires", []string{
			"Reliable quality at a fair price",
		}),
	}

	return resp
}

// stringField returns the upstream string when present and non-empty.
func stringField(raw map[string]interface{}, key, def string) string {
	if raw == nil {
		return def
	}
	if val, ok := raw[key].(string); ok && strings.TrimSpace(val) != "" {
		return val
	}
	return def
}

// listField coerces the upstream value to a string slice. A non-array value
// yields the default; an array keeps its string elements and drops the rest.
func listField(raw map[string]interface{}, key string, def []string) []string {
	if raw == nil {
		return def
	}
	arr, ok := raw[key].([]interface{})
	if !ok {
		return def
	}

	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func objectField(raw map[string]interface{}, key string) map[string]interface{} {
	if raw == nil {
		return nil
	}
	if obj, ok := raw[key].(map[string]interface{}); ok {
		return obj
	}
	return nil
}
