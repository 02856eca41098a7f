package util

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// CleanText collapses whitespace runs (including NBSP) to single spaces and trims.
// Text is NFC-normalized so composed and decomposed accents compare equal.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = norm.NFC.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// FoldText is CleanText plus Unicode lower-casing.
func FoldText(s string) string {
	// cases.Caser is stateful, so build one per call.
	return cases.Lower(language.Und).String(CleanText(s))
}

var placeholders = map[string]bool{
	"":               true,
	"-":              true,
	"n/a":            true,
	"not found":      true,
	"unknown":        true,
	"não encontrado": true,
	"não informado":  true,
	"nao encontrado": true,
	"nao informado":  true,
}

// IsPlaceholder reports whether s is empty or one of the filler values scrapers
// emit when a field is missing from the card.
func IsPlaceholder(s string) bool {
	return placeholders[FoldText(s)]
}

func LooksLikeJunkTitle(t string) bool {
	l := strings.ToLower(t)
	return l == "ver vaga" || l == "candidatar-se" || strings.HasPrefix(l, "apply")
}
