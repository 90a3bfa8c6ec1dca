package utils

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// vietnameseAccents maps each base letter to the lower-case accented forms folded into it.
var vietnameseAccents = map[string]string{
	"a": "àáạảãâầấậẩẫăằắặẳẵ",
	"e": "èéẹẻẽêềếệểễ",
	"i": "ìíịỉĩ",
	"o": "òóọỏõôồốộổỗơờớợởỡ",
	"u": "ùúụủũưừứựửữ",
	"y": "ỳýỵỷỹ",
	"d": "đ",
}

var accentReplacer = newAccentReplacer()

func newAccentReplacer() *strings.Replacer {
	var pairs []string
	for base, accented := range vietnameseAccents {
		for _, r := range accented {
			pairs = append(pairs, string(r), base)
		}
	}
	return strings.NewReplacer(pairs...)
}

// RemoveVietnameseAccents lower-cases s, folds Vietnamese diacritics to their
// base Latin letter and collapses whitespace runs. Input is NFC-composed first
// so decomposed text (base letter + combining marks) folds the same way.
func RemoveVietnameseAccents(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ToLower(norm.NFC.String(s))
	s = accentReplacer.Replace(s)

	return strings.Join(strings.Fields(s), " ")
}

// FlexibleMatch reports whether query occurs in text, ignoring case and
// Vietnamese accents. An empty text or query never matches.
func FlexibleMatch(text, query string) bool {
	if text == "" || query == "" {
		return false
	}

	normalizedQuery := RemoveVietnameseAccents(query)
	if normalizedQuery == "" {
		return false
	}

	return strings.Contains(RemoveVietnameseAccents(text), normalizedQuery)
}
