package entities

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalizedText_Resolve(t *testing.T) {
	translated := Translated(map[string]string{"vi": "Phở bò", "ja": "牛肉のフォー", "en": "Beef pho"})

	assert.Equal(t, "牛肉のフォー", translated.Resolve("ja"))
	assert.Equal(t, "Phở bò", translated.Resolve("vi"))
	assert.Equal(t, "Phở bò", translated.Resolve("fr"), "falls back to vi")

	noVietnamese := Translated(map[string]string{"ja": "バインミー", "en": "Banh mi"})
	assert.Equal(t, "Banh mi", noVietnamese.Resolve("fr"), "falls back to first language in code order")

	assert.Equal(t, "Cà phê", Text("Cà phê").Resolve("ja"))
}

func TestLocalizedText_JSONAcceptsBothShapes(t *testing.T) {
	var items []MenuItem
	payload := `[
		{"id": 1, "restaurantId": 10, "name": "Bún chả", "category": "Vietnamese", "price": 45000, "rating": 4.6, "reviews": 120},
		{"id": 2, "restaurantId": 10, "name": {"vi": "Nem rán", "ja": "揚げ春巻き"}, "category": "Vietnamese", "price": 30000, "rating": 4.2, "reviews": 40}
	]`
	require.NoError(t, json.Unmarshal([]byte(payload), &items))
	require.Len(t, items, 2)

	assert.Equal(t, "Bún chả", items[0].Name.Resolve("ja"))
	assert.Equal(t, "揚げ春巻き", items[1].Name.Resolve("ja"))
	assert.ElementsMatch(t, []string{"Nem rán", "揚げ春巻き"}, items[1].Name.All())

	out, err := json.Marshal(items[1].Name)
	require.NoError(t, err)
	assert.JSONEq(t, `{"vi": "Nem rán", "ja": "揚げ春巻き"}`, string(out))
}

func TestLocalizedText_RejectsOtherShapes(t *testing.T) {
	var text LocalizedText
	assert.Error(t, json.Unmarshal([]byte(`42`), &text))
}

func TestPreferenceProfile(t *testing.T) {
	p := PreferenceProfile{Prefs: []string{"Vietnamese", "Cafe"}, History: []int64{3, 9}}

	assert.True(t, p.PrefersCategory("Cafe"))
	assert.False(t, p.PrefersCategory("Western"))
	assert.True(t, p.Visited(9))
	assert.False(t, p.Visited(4))
}

func TestAccount_ProfileDefaults(t *testing.T) {
	profile := Account{ID: 1, Username: "lan"}.Profile()

	assert.Equal(t, DefaultProfileImage, profile.ProfileImage)
	assert.NotNil(t, profile.Prefs)
	assert.NotNil(t, profile.History)
}
