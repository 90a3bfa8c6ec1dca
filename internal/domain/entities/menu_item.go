package entities

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/goccy/go-json"
)

// DefaultLanguage is tried when the requested language has no translation.
const DefaultLanguage = "vi"

// LocalizedText is either a plain string or a language-code → string mapping.
// It marshals back to the shape it was read from.
type LocalizedText struct {
	Plain        string
	Translations map[string]string
}

// Text wraps a plain, untranslated value.
func Text(s string) LocalizedText {
	return LocalizedText{Plain: s}
}

// Translated wraps a per-language mapping.
func Translated(m map[string]string) LocalizedText {
	return LocalizedText{Translations: m}
}

// Resolve returns the text for lang, falling back to Vietnamese, then the first
// available language in code order, then the plain value.
func (t LocalizedText) Resolve(lang string) string {
	if len(t.Translations) == 0 {
		return t.Plain
	}
	if v, ok := t.Translations[lang]; ok && v != "" {
		return v
	}
	if v, ok := t.Translations[DefaultLanguage]; ok && v != "" {
		return v
	}
	for _, code := range t.languages() {
		if v := t.Translations[code]; v != "" {
			return v
		}
	}
	return t.Plain
}

// All returns every variant, used by search to match names in any language.
func (t LocalizedText) All() []string {
	if len(t.Translations) == 0 {
		if t.Plain == "" {
			return nil
		}
		return []string{t.Plain}
	}
	out := make([]string, 0, len(t.Translations))
	for _, code := range t.languages() {
		out = append(out, t.Translations[code])
	}
	return out
}

func (t LocalizedText) languages() []string {
	codes := make([]string, 0, len(t.Translations))
	for code := range t.Translations {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// MarshalJSON implements json.Marshaler
func (t LocalizedText) MarshalJSON() ([]byte, error) {
	if len(t.Translations) > 0 {
		return json.Marshal(t.Translations)
	}
	return json.Marshal(t.Plain)
}

// UnmarshalJSON implements json.Unmarshaler
func (t *LocalizedText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = LocalizedText{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	case '{':
		var m map[string]string
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		*t = Translated(m)
	default:
		return fmt.Errorf("localized text must be a string or an object, got %s", data)
	}
	return nil
}

// MenuItem is immutable reference data; RestaurantID must reference an existing Restaurant.
type MenuItem struct {
	ID           int64         `json:"id"`
	RestaurantID int64         `json:"restaurantId"`
	Name         LocalizedText `json:"name"`
	Category     string        `json:"category"`
	Price        int64         `json:"price"`
	Rating       float64       `json:"rating"`
	Reviews      int           `json:"reviews"`
	Photo        string        `json:"photo"`
}
