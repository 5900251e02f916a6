package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tropadobruxobr/Produtos-Tropa-do-Bruxo/internal/domain"
)

func TestMatchVariantByLabel(t *testing.T) {
	variants := domain.VariantList{
		{Label: "38", Price: 100, Stock: 3},
		{Label: "42", Price: 120, Stock: 5},
	}
	v := MatchVariant(variants, domain.OrderLine{Variant: "42"})
	require.NotNil(t, v)
	assert.Equal(t, "42", v.Label)
	assert.Equal(t, 5, v.Stock)
}

func TestMatchVariantByLegacySize(t *testing.T) {
	variants := domain.VariantList{
		{Label: "Nike", Size: "42", Stock: 5},
	}
	v := MatchVariant(variants, domain.OrderLine{Variant: "42"})
	require.NotNil(t, v)
	assert.Equal(t, "Nike", v.Label)
}

func TestMatchVariantByLineSize(t *testing.T) {
	variants := domain.VariantList{
		{Label: "42", Stock: 5},
	}
	v := MatchVariant(variants, domain.OrderLine{Variant: "Nike", Size: "42"})
	require.NotNil(t, v)
	assert.Equal(t, "42", v.Label)
}

// A variant whose primary label equals the line label must win over an
// earlier variant that only matches through its legacy size field.
func TestMatchVariantLabelPreferredOverLegacySize(t *testing.T) {
	variants := domain.VariantList{
		{Label: "A", Size: "B", Stock: 1},
		{Label: "B", Stock: 9},
	}
	v := MatchVariant(variants, domain.OrderLine{Variant: "B"})
	require.NotNil(t, v)
	assert.Equal(t, "B", v.Label)
	assert.Equal(t, 9, v.Stock)
}

func TestMatchVariantEmptyNeverMatches(t *testing.T) {
	variants := domain.VariantList{
		{Label: "", Size: "", Stock: 5},
	}
	assert.Nil(t, MatchVariant(variants, domain.OrderLine{Variant: ""}))
	assert.Nil(t, MatchVariant(variants, domain.OrderLine{Variant: "42"}))
	assert.Nil(t, MatchVariant(variants, domain.OrderLine{Size: "42"}))
}

func TestMatchVariantNoMatch(t *testing.T) {
	variants := domain.VariantList{
		{Label: "38", Stock: 3},
	}
	assert.Nil(t, MatchVariant(variants, domain.OrderLine{Variant: "44"}))
}

// The returned pointer aliases the slice entry so stock mutations land
// on the product's variant list.
func TestMatchVariantReturnsReference(t *testing.T) {
	variants := domain.VariantList{
		{Label: "42", Stock: 5},
	}
	v := MatchVariant(variants, domain.OrderLine{Variant: "42"})
	require.NotNil(t, v)
	v.Stock -= 2
	assert.Equal(t, 3, variants[0].Stock)
}
