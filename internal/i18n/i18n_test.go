package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	assert.Equal(t, "Shopping Cart", Translate("en", "cart.title", nil))
	assert.Equal(t, "Panier d'Achat", Translate("fr", "cart.title", nil))
}

func TestTranslate_Placeholders(t *testing.T) {
	got := Translate("en", "products.showing", map[string]string{"count": "12"})
	assert.Equal(t, "Showing 12 products", got)

	got = Translate("fr", "products.showing", map[string]string{"count": "12"})
	assert.Equal(t, "Affichage de 12 produits", got)
}

func TestTranslate_FallbackChain(t *testing.T) {
	// Unknown language falls back to English.
	assert.Equal(t, "Shopping Cart", Translate("de", "cart.title", nil))

	// Unknown key falls back to the key itself, never an empty string.
	assert.Equal(t, "no.such.key", Translate("en", "no.such.key", nil))
	assert.Equal(t, "no.such.key", Translate("fr", "no.such.key", nil))
}

func TestMatch(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"en", English},
		{"fr", French},
		{"FR", French},
		{"fr-CA", French},
		{"en-GB", English},
		{"de", English},
		{"", English},
		{"not-a-tag!", English},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Match(tt.code), "code %q", tt.code)
	}
}

func TestTables_SameKeys(t *testing.T) {
	// Every English key has a French counterpart and vice versa.
	for key := range tables[English] {
		_, ok := tables[French][key]
		assert.True(t, ok, "missing French translation for %q", key)
	}
	for key := range tables[French] {
		_, ok := tables[English][key]
		assert.True(t, ok, "missing English translation for %q", key)
	}
}
