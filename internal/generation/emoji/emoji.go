// internal/generation/emoji/emoji.go
package emoji

import (
	"fmt"
	"strings"
)

const fallbackCategory = "other"

// maxPromptEmojis caps how many category symbols are embedded in the
// instruction text; the full catalog stays available for previews.
const maxPromptEmojis = 8

// catalog maps each supported category to its twelve symbols.
var catalog = map[string][]string{
	"electronics": {"📱", "💻", "🔋", "⚡", "🎧", "📸", "🖥️", "⌚", "🔌", "💾", "🎮", "📡"},
	"clothing":    {"👗", "👕", "👖", "🧥", "👠", "🧣", "👜", "🕶️", "🧢", "👟", "💃", "🧵"},
	"beauty":      {"💄", "💅", "✨", "🌸", "🧴", "💆", "🪞", "🌺", "🫧", "🌿", "💖", "🧖"},
	"home":        {"🏠", "🛋️", "🕯️", "🛏️", "🪴", "🖼️", "🧺", "🍽️", "🪟", "🚿", "🔑", "🧹"},
	"sports":      {"⚽", "🏀", "🏋️", "🚴", "🏃", "🎾", "⛷️", "🥊", "🏊", "🧘", "🥇", "💪"},
	"food":        {"🍎", "🥑", "🍫", "🍯", "☕", "🥗", "🍓", "🧀", "🍞", "🌶️", "🍳", "🥤"},
	"toys":        {"🧸", "🎲", "🪁", "🎨", "🚂", "🧩", "🪀", "🎪", "🤖", "🎠", "🦄", "🎁"},
	"books":       {"📚", "📖", "✏️", "🔖", "🖋️", "📝", "🧠", "💡", "🎓", "📕", "📜", "🔍"},
	"jewelry":     {"💎", "💍", "📿", "⌚", "✨", "👑", "🥇", "🎁", "💝", "🌟", "🔶", "💫"},
	"health":      {"💊", "🩺", "🧘", "💪", "🌿", "❤️", "🫀", "🏥", "🧬", "💉", "😌", "🛌"},
	"automotive":  {"🚗", "🔧", "🛞", "🏁", "⛽", "🚙", "💨", "🛣️", "🔑", "🚘", "🧰", "⚙️"},
	"garden":      {"🌱", "🌻", "🪴", "🌷", "🍅", "🐝", "🦋", "🌳", "💧", "☀️", "🧤", "✂️"},
	"pet":         {"🐶", "🐱", "🐾", "🦴", "🐹", "🐦", "🐠", "🥎", "🛁", "❤️", "🏠", "🦮"},
	"office":      {"🖊️", "📎", "📋", "🗂️", "💼", "🖨️", "📊", "📌", "🗓️", "☕", "💻", "📁"},
	"music":       {"🎵", "🎸", "🎹", "🎧", "🥁", "🎤", "🎻", "🎺", "🎼", "🔊", "🎶", "📻"},
	"baby":        {"👶", "🍼", "🧸", "🚼", "🎀", "🛁", "😴", "🌙", "💕", "🦆", "🧷", "👣"},
	"other":       {"✨", "🎁", "🛍️", "💯", "🔥", "⭐", "💝", "🎉", "👍", "💪", "🏆", "✅"},
}

type tier struct {
	countRange string
	placement  string
}

// tiers maps each intensity level to its target count and placement pattern.
var tiers = map[int]tier{
	1: {
		countRange: "3-5",
		placement:  "Use them sparingly: one emoji to open the description and one on the single strongest benefit.",
	},
	2: {
		countRange: "8-12",
		placement:  "Place one emoji at the start of each bullet point and at the beginning of key sections.",
	},
	3: {
		countRange: "15-20+",
		placement:  "Use emojis generously: section headers, every bullet point, and emphasis clusters around the offer.",
	},
}

// CategoryEmojis returns the symbol set for a category, falling back to the
// "other" set when the category is unrecognized.
func CategoryEmojis(category string) []string {
	if symbols, ok := catalog[strings.ToLower(strings.TrimSpace(category))]; ok {
		return symbols
	}
	return catalog[fallbackCategory]
}

func clampIntensity(intensity int) int {
	if intensity < 1 || intensity > 3 {
		return 2
	}
	return intensity
}

// BuildInstruction produces the natural-language emoji directive embedded in
// the generation prompt. Pure function: deterministic given its inputs.
func BuildInstruction(useEmojis bool, intensity int, category string) string {
	if !useEmojis {
		return "Do not use any emoji symbols. Write persuasive plain text only."
	}

	t := tiers[clampIntensity(intensity)]
	symbols := CategoryEmojis(category)
	if len(symbols) > maxPromptEmojis {
		symbols = symbols[:maxPromptEmojis]
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("Use %s emojis across the generated content.", t.countRange))
	parts = append(parts, t.placement)
	parts = append(parts, "Follow the standard semantic patterns: ✅ for benefits, 💰 for price and savings, 🚚 for delivery, ⭐ for quality, 🔥 for urgency, 🛡️ for trust.")
	parts = append(parts, fmt.Sprintf("Prefer these category emojis: %s", strings.Join(symbols, " ")))

	return strings.Join(parts, " ")
}

// Preview returns a short human-readable summary of the policy for UI use.
func Preview(useEmojis bool, intensity int, category string) string {
	if !useEmojis {
		return "No emojis"
	}

	t := tiers[clampIntensity(intensity)]
	symbols := CategoryEmojis(category)
	return fmt.Sprintf("%s emojis · %s", t.countRange, strings.Join(symbols[:4], " "))
}
