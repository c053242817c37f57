package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magic-city-guide/poi-cli/internal/model"
)

func TestNameKey_StripsFillerTokens(t *testing.T) {
	assert.Equal(t, NameKey("Silver Coin"), NameKey("Silver Coin Indian Grill"))
	assert.Equal(t, "silvercoin", NameKey("Silver Coin Indian Grill"))
}

func TestNameKey_Variants(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Hot and Hot Fish Club", "hotandhotfishclub"},
		{"punctuation", "Saw's BBQ", "saws"},
		{"diacritics", "Café Dupont", "dupont"},
		{"mixed fillers", "El Barrio Restaurant & Bar", "elbarrio"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NameKey(tt.in))
		})
	}
}

func TestNameKey_FallbackWhenAllFiller(t *testing.T) {
	// Every token is a filler word; the key must fall back to the folded
	// full name rather than going empty.
	assert.Equal(t, "grillrestaurant", NameKey("Grill Restaurant"))
	assert.Equal(t, "thaikitchen", NameKey("Thai Kitchen"))
}

func TestAddressKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"street", "100 North Street", "100nst"},
		{"already abbreviated", "100 N St.", "100nst"},
		{"avenue", "2011 Highland Avenue South", "2011highlandaves"},
		{"highway", "1500 Highway 280 East", "1500hwy280e"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddressKey(tt.in))
		})
	}
}

func TestAddressKey_WholeWordOnly(t *testing.T) {
	// "Westlake" must not be rewritten to "wlake".
	assert.Equal(t, "12westlakedr", AddressKey("12 Westlake Drive"))
	// "Eastern" keeps its prefix too.
	assert.Equal(t, "9easternblvd", AddressKey("9 Eastern Boulevard"))
}

func TestKeyFuncs(t *testing.T) {
	r := model.Record{
		model.FieldName:    "Silver Coin Indian Grill",
		model.FieldAddress: "100 North Street",
	}
	assert.Equal(t, "silvercoin", ByName(r))
	assert.Equal(t, "silvercoin|100nst", ByNameAddress(r))
}
