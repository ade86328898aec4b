package transcript

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Normalize folds case, width and diacritics so speech-to-text output such as
// "Ｅ４" or "Whíte" compares equal to the plain vocabulary
func Normalize(text string) string {
	// Transformers and casers carry state, build them per call
	t := transform.Chain(width.Fold, norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, text)
	if err != nil {
		out = text
	}
	return cases.Fold().String(out)
}

// Tokens splits a normalized transcript into words, dropping punctuation
func Tokens(text string) []string {
	return strings.FieldsFunc(Normalize(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
