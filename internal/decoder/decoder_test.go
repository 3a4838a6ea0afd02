package decoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbuscommerce/catalogsync/internal/core"
)

func TestDecode_Item(t *testing.T) {
	raw := []byte(`{
		"id": "i1", "type": "ITEM", "updated_at": "2024-01-01T00:00:00Z", "version": 3,
		"present_at_all_locations": true,
		"item_data": {"name": "Cold Brew", "tax_ids": ["t1", "t2"]}
	}`)

	d, err := Decode(raw)
	require.NoError(t, err)
	require.NotNil(t, d.Item)
	assert.Equal(t, "i1", d.ID)
	assert.Equal(t, core.KindItem, d.Kind)
	assert.EqualValues(t, 3, d.Version)
	assert.Equal(t, "Cold Brew", d.Item.Name)
	assert.Equal(t, []string{"t1", "t2"}, d.Item.TaxIDs)
	assert.True(t, d.Item.PresentAtAllLocations)
	assert.JSONEq(t, string(raw), d.DataJSON)
}

func TestDecode_UnknownFieldsTolerated(t *testing.T) {
	raw := []byte(`{
		"id": "c1", "type": "CATEGORY", "updated_at": "2024-01-01T00:00:00Z", "version": 1,
		"future_field_nobody_knows_about": {"nested": true},
		"category_data": {"name": "Beverages", "some_future_attr": 42}
	}`)

	d, err := Decode(raw)
	require.NoError(t, err)
	require.NotNil(t, d.Category)
	assert.Equal(t, "Beverages", d.Category.Name)
}

func TestDecode_MissingIDFails(t *testing.T) {
	raw := []byte(`{"type": "ITEM", "updated_at": "2024-01-01T00:00:00Z", "version": 1, "item_data": {"name": "X"}}`)

	_, err := Decode(raw)
	require.Error(t, err)
	se := core.AsSyncError(err)
	require.NotNil(t, se)
	assert.Equal(t, core.ErrTransformation, se.Kind)
}

func TestDecode_MissingVersionFails(t *testing.T) {
	raw := []byte(`{"id": "i1", "type": "ITEM", "updated_at": "2024-01-01T00:00:00Z", "item_data": {"name": "X"}}`)

	_, err := Decode(raw)
	require.Error(t, err)
}

func TestDecode_MissingTypeFails(t *testing.T) {
	raw := []byte(`{"id": "i1", "updated_at": "2024-01-01T00:00:00Z", "version": 1, "item_data": {"name": "X"}}`)

	_, err := Decode(raw)
	require.Error(t, err)
}

func TestDecode_UnrecognizedKindIsObjectProcessingError(t *testing.T) {
	raw := []byte(`{"id": "x1", "type": "GIFT_CARD", "updated_at": "2024-01-01T00:00:00Z", "version": 1}`)

	d, err := Decode(raw)
	require.Error(t, err)
	se := core.AsSyncError(err)
	require.NotNil(t, se)
	assert.Equal(t, core.ErrObjectProcessing, se.Kind)
	assert.Equal(t, "x1", d.ID, "envelope fields are still populated for logging/counting")
}

func TestDecode_VariationPriceAsNumericString(t *testing.T) {
	raw := []byte(`{
		"id": "v1", "type": "ITEM_VARIATION", "updated_at": "2024-01-01T00:00:00Z", "version": 1,
		"item_variation_data": {"item_id": "i1", "sku": "SKU-1", "price_amount": "500"}
	}`)

	d, err := Decode(raw)
	require.NoError(t, err)
	require.NotNil(t, d.Variation)
	require.NotNil(t, d.Variation.PriceAmount)
	assert.EqualValues(t, 500, *d.Variation.PriceAmount)
}

func TestDecode_VariationInvalidPriceEncodingNullsField(t *testing.T) {
	raw := []byte(`{
		"id": "v1", "type": "ITEM_VARIATION", "updated_at": "2024-01-01T00:00:00Z", "version": 1,
		"item_variation_data": {"item_id": "i1", "price_amount": "not-a-number"}
	}`)

	d, err := Decode(raw)
	require.NoError(t, err, "invalid price encoding degrades to a null field, not a decode failure")
	require.NotNil(t, d.Variation)
	assert.Nil(t, d.Variation.PriceAmount)
}

func TestDecode_TombstoneObjectDecodesNormally(t *testing.T) {
	raw := []byte(`{"id": "i1", "type": "ITEM", "updated_at": "2024-01-01T00:00:00Z", "version": 9, "is_deleted": true, "item_data": {"name": "Gone"}}`)

	d, err := Decode(raw)
	require.NoError(t, err)
	assert.True(t, d.IsDeleted)
}

func TestDecode_ModifierList(t *testing.T) {
	raw := []byte(`{
		"id": "ml1", "type": "MODIFIER_LIST", "updated_at": "2024-01-01T00:00:00Z", "version": 1,
		"modifier_list_data": {"name": "Milk Options", "selection_type": "SINGLE", "modifier_ids": ["m1", "m2"]}
	}`)

	d, err := Decode(raw)
	require.NoError(t, err)
	require.NotNil(t, d.ModifierList)
	assert.Equal(t, core.SelectionSingle, d.ModifierList.SelectionType)
	assert.Len(t, d.ModifierList.ModifierIDs, 2)
}
