package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var accentStripper = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// RemoveAccents remove os diacríticos de uma string (MAÇÃ → MACA)
func RemoveAccents(s string) string {
	out, _, err := transform.String(accentStripper, s)
	if err != nil {
		return s
	}
	return out
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converte um nome de produto em um identificador de arquivo seguro
// ("Abacaxi Havaí (unid.)" → "abacaxi-havai-unid")
func Slugify(s string) string {
	s = strings.ToLower(RemoveAccents(s))
	s = nonSlugChars.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
