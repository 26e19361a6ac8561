package service

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Keyword heuristic for contact intent. Matching a contact noun alone is
// not enough; the message must also carry an intent verb. This keeps the
// language model out of intent classification entirely.
var (
	contactKeywords = []string{
		"contactar",
		"contacto",
		"cita",
		"reunion",
		"agendar",
		"llamar",
		"correo",
		"telefono",
		"celular",
		"whatsapp",
	}

	intentVerbs = []string{
		"quiero",
		"gustaria",
		"deseo",
		"quisiera",
		"puedes",
		"interesa",
		"necesito",
	}
)

// DetectContactIntent reports whether the message expresses an intent to
// get in touch. Text is lowercased and stripped of diacritics before
// matching, so "reunión" matches "reunion".
func DetectContactIntent(question string) bool {
	normalized := normalizeText(question)

	return containsAny(normalized, contactKeywords) && containsAny(normalized, intentVerbs)
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

// normalizeText lowercases the input and removes combining marks after
// NFD decomposition, the same transform the keyword lists assume.
func normalizeText(text string) string {
	decomposed := norm.NFD.String(strings.ToLower(text))

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
