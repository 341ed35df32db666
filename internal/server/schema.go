// internal/server/schema.go
package server

import "github.com/xeipuuv/gojsonschema"

// Request schemas for the two generation endpoints. Required string fields
// carry minLength so empty strings fail the same way absent ones do.
var (
	generateSchema = gojsonschema.NewStringLoader(`{
		"type": "object",
		"required": ["productName", "category", "style"],
		"properties": {
			"productName":          {"type": "string", "minLength": 1},
			"category":             {"type": "string", "minLength": 1},
			"style":                {"type": "string", "minLength": 1},
			"description":          {"type": "string"},
			"targetAudience":       {"type": "string"},
			"uniqueFeatures":       {"type": "string"},
			"pricePoint":           {"type": "string"},
			"language":             {"type": "string"},
			"market":               {"type": "string"},
			"emotionalTone":        {"type": "string"},
			"psychologicalTrigger": {"type": "string"},
			"useEmojis":            {"type": "boolean"},
			"emojiIntensity":       {"type": "integer"}
		}
	}`)

	batchSchema = gojsonschema.NewStringLoader(`{
		"type": "object",
		"required": ["products", "style"],
		"properties": {
			"products": {
				"type": "array",
				"minItems": 1,
				"items": {
					"type": "object",
					"required": ["productName"],
					"properties": {
						"productName":    {"type": "string", "minLength": 1},
						"category":       {"type": "string"},
						"description":    {"type": "string"},
						"targetAudience": {"type": "string"},
						"uniqueFeatures": {"type": "string"},
						"pricePoint":     {"type": "string"}
					}
				}
			},
			"style":               {"type": "string", "minLength": 1},
			"category":            {"type": "string"},
			"language":            {"type": "string"},
			"market":              {"type": "string"},
			"competitorAnalysis":  {"type": "boolean"},
			"includeViralContent": {"type": "boolean"},
			"useEmojis":           {"type": "boolean"},
			"emojiIntensity":      {"type": "integer"}
		}
	}`)
)

func validateBody(schema gojsonschema.JSONLoader, body []byte) bool {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return false
	}
	return result.Valid()
}
