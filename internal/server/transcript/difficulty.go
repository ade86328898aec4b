package transcript

import (
	"context"
	"log"
	"strings"

	"chess/internal/server/core"
)

var difficultyWords = map[string]core.Difficulty{
	"easy":     core.DifficultyEasy,
	"beginner": core.DifficultyEasy,
	"medium":   core.DifficultyMedium,
	"hard":     core.DifficultyHard,
	"advanced": core.DifficultyHard,
}

// Resolver looks up phrases the built-in vocabulary does not know, for example
// a synonym store or an intent service
type Resolver interface {
	Resolve(ctx context.Context, phrase string) (core.Difficulty, bool, error)
}

// DifficultyParser maps difficulty phrases, consulting an optional Resolver
type DifficultyParser struct {
	resolver Resolver
}

func NewDifficultyParser(resolver Resolver) *DifficultyParser {
	return &DifficultyParser{resolver: resolver}
}

// Parse blocks until the phrase is resolved or ctx is done. Resolver failures
// are logged and reported as not found.
func (p *DifficultyParser) Parse(ctx context.Context, text string) (core.Difficulty, bool) {
	tokens := Tokens(text)
	if len(tokens) == 0 {
		return 0, false
	}

	for _, tok := range tokens {
		if d, ok := difficultyWords[tok]; ok {
			return d, true
		}
	}

	if p == nil || p.resolver == nil {
		return 0, false
	}

	// Whole phrase first, then single words
	phrases := append([]string{strings.Join(tokens, " ")}, tokens...)
	if len(tokens) == 1 {
		phrases = tokens
	}
	for _, phrase := range phrases {
		if ctx.Err() != nil {
			return 0, false
		}
		d, ok, err := p.resolver.Resolve(ctx, phrase)
		if err != nil {
			log.Printf("difficulty resolver failed for %q: %v", phrase, err)
			return 0, false
		}
		if ok {
			return d, true
		}
	}
	return 0, false
}

// ParseDifficulty uses only the built-in vocabulary
func ParseDifficulty(ctx context.Context, text string) (core.Difficulty, bool) {
	return (*DifficultyParser)(nil).Parse(ctx, text)
}

// IsBuiltin reports whether a normalized word is part of the fixed vocabulary
func IsBuiltin(word string) bool {
	_, ok := difficultyWords[word]
	return ok
}
