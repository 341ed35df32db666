// internal/generation/router/router.go
package router

import "strings"

// Registry holds the category→assistant table built once at startup from
// configuration. Entries may be empty; the selector tolerates any gaps.
type Registry struct {
	// Assistants maps a lower-case category to its specialized assistant ID.
	Assistants map[string]string
	// Universal is the generic fallback assistant ID, usually the "other"
	// slot.
	Universal string
}

// NewRegistry copies the configured table with lower-cased keys and empty
// entries dropped.
func NewRegistry(assistants map[string]string, universal string) *Registry {
	table := make(map[string]string, len(assistants))
	for category, id := range assistants {
		if id == "" {
			continue
		}
		table[strings.ToLower(category)] = id
	}
	return &Registry{
		Assistants: table,
		Universal:  universal,
	}
}

// Selection is the routing decision derived from a category.
type Selection struct {
	// Specialized is the assistant mapped to this specific category, empty
	// when unconfigured.
	Specialized string
	// Universal is the generic fallback assistant, empty when unconfigured.
	Universal string
	// FallbackChain is the deduplicated attempt order: specialized first
	// (when distinct from universal), then universal.
	FallbackChain []string
}

// Selector routes categories onto assistant fallback chains. It is a pure
// function of the injected registry and never errors: absent configuration
// simply yields an empty or shorter chain.
type Selector struct {
	registry *Registry
}

func NewSelector(registry *Registry) *Selector {
	return &Selector{registry: registry}
}

// Select builds the ordered, deduplicated fallback chain for a category.
func (s *Selector) Select(category string) Selection {
	specialized := s.registry.Assistants[strings.ToLower(strings.TrimSpace(category))]
	universal := s.registry.Universal

	sel := Selection{
		Specialized: specialized,
		Universal:   universal,
	}

	if specialized != "" && specialized != universal {
		sel.FallbackChain = append(sel.FallbackChain, specialized)
	}
	if universal != "" {
		sel.FallbackChain = append(sel.FallbackChain, universal)
	}

	return sel
}

// Primary returns the first assistant in the fallback chain, or "" when the
// chain is empty.
func (s *Selector) Primary(category string) string {
	chain := s.Select(category).FallbackChain
	if len(chain) == 0 {
		return ""
	}
	return chain[0]
}

// HasSpecialized reports whether the category has a dedicated assistant that
// differs from the universal one.
func (s *Selector) HasSpecialized(category string) bool {
	sel := s.Select(category)
	return sel.Specialized != "" && sel.Specialized != sel.Universal
}
