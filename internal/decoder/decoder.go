// Package decoder converts a remote catalog object's raw JSON payload
// into the Reconciler's typed input, per spec §4.6: tolerant of unknown
// fields, never failing for forward-compatibility reasons, and failing
// only when the top-level id/type/version are absent.
package decoder

import (
	"encoding/json"
	"fmt"

	"github.com/nimbuscommerce/catalogsync/internal/core"
)

// Decoded is the typed result of decoding one wire CatalogObject: the
// common envelope fields plus exactly one populated typed row, selected
// by Kind.
type Decoded struct {
	ID        string
	Kind      core.Kind
	Version   int64
	IsDeleted bool
	DataJSON  string

	Category     *core.Category
	Item         *core.Item
	Variation    *core.ItemVariation
	Tax          *core.Tax
	Discount     *core.Discount
	ModifierList *core.ModifierList
	Modifier     *core.Modifier
	Image        *core.Image
}

// envelope mirrors the wire shape in §6.2: common fields plus one
// `<type>_data` payload, keyed by the type tag.
type envelope struct {
	ID                      *string         `json:"id"`
	Type                    *string         `json:"type"`
	UpdatedAt               string          `json:"updated_at"`
	Version                 *int64          `json:"version"`
	IsDeleted               bool            `json:"is_deleted"`
	PresentAtAllLocations   *bool           `json:"present_at_all_locations"`
	PresentAtAllLocationIDs []string        `json:"present_at_all_locations_ids"`
	AbsentAtLocationIDs     []string        `json:"absent_at_location_ids"`
	ItemData                json.RawMessage `json:"item_data"`
	ItemVariationData       json.RawMessage `json:"item_variation_data"`
	CategoryData            json.RawMessage `json:"category_data"`
	TaxData                 json.RawMessage `json:"tax_data"`
	DiscountData            json.RawMessage `json:"discount_data"`
	ModifierData            json.RawMessage `json:"modifier_data"`
	ModifierListData        json.RawMessage `json:"modifier_list_data"`
	ImageData               json.RawMessage `json:"image_data"`
}

// errMissingRequiredFields is wrapped into a core.SyncError when the
// top-level id, type, or version are absent — the only explicit failure
// mode this package has.
var errMissingRequiredFields = fmt.Errorf("id, type, and version are required")

// Decode parses raw (one JSON catalog object) into a Decoded value.
func Decode(raw []byte) (Decoded, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Decoded{}, core.NewTransformation("", fmt.Errorf("parsing catalog object: %w", err))
	}

	if env.ID == nil || env.Type == nil || env.Version == nil {
		id := ""
		if env.ID != nil {
			id = *env.ID
		}
		return Decoded{}, core.NewTransformation(id, errMissingRequiredFields)
	}

	base := Decoded{
		ID:        *env.ID,
		Kind:      core.Kind(*env.Type),
		Version:   *env.Version,
		IsDeleted: env.IsDeleted,
		DataJSON:  string(raw),
	}

	if !base.Kind.Valid() {
		return base, core.NewObjectProcessing(base.ID, fmt.Errorf("unrecognized kind %q", *env.Type))
	}

	coreBase := core.Base{ID: base.ID, UpdatedAt: env.UpdatedAt, Version: base.Version, IsDeleted: base.IsDeleted, DataJSON: base.DataJSON}

	switch base.Kind {
	case core.KindCategory:
		var c core.Category
		if len(env.CategoryData) > 0 {
			_ = json.Unmarshal(env.CategoryData, &c)
		}
		c.Base = coreBase
		base.Category = &c

	case core.KindItem:
		var it core.Item
		if len(env.ItemData) > 0 {
			_ = json.Unmarshal(env.ItemData, &it)
		}
		it.Base = coreBase
		if env.PresentAtAllLocations != nil {
			it.PresentAtAllLocations = *env.PresentAtAllLocations
		}
		it.PresentAtAllLocationIDs = env.PresentAtAllLocationIDs
		it.AbsentAtLocationIDs = env.AbsentAtLocationIDs
		base.Item = &it

	case core.KindItemVariation:
		v, err := decodeVariation(env.ItemVariationData)
		if err != nil {
			return base, core.NewObjectProcessing(base.ID, err)
		}
		v.Base = coreBase
		base.Variation = &v

	case core.KindTax:
		var t core.Tax
		if len(env.TaxData) > 0 {
			_ = json.Unmarshal(env.TaxData, &t)
		}
		t.Base = coreBase
		base.Tax = &t

	case core.KindDiscount:
		var d core.Discount
		if len(env.DiscountData) > 0 {
			_ = json.Unmarshal(env.DiscountData, &d)
		}
		d.Base = coreBase
		base.Discount = &d

	case core.KindModifierList:
		var ml core.ModifierList
		if len(env.ModifierListData) > 0 {
			_ = json.Unmarshal(env.ModifierListData, &ml)
		}
		ml.Base = coreBase
		base.ModifierList = &ml

	case core.KindModifier:
		var m core.Modifier
		if len(env.ModifierData) > 0 {
			_ = json.Unmarshal(env.ModifierData, &m)
		}
		m.Base = coreBase
		base.Modifier = &m

	case core.KindImage:
		var img core.Image
		if len(env.ImageData) > 0 {
			_ = json.Unmarshal(env.ImageData, &img)
		}
		img.Base = coreBase
		base.Image = &img
	}

	return base, nil
}

// variationWire tolerates a price_amount sent as either a JSON number or
// a numeric string — "invalid price encoding" (§4.3) degrades to a null
// price rather than a decode failure.
type variationWire struct {
	ItemID            string                    `json:"item_id"`
	Name              *string                   `json:"name"`
	SKU               *string                   `json:"sku"`
	UPC               *string                   `json:"upc"`
	Ordinal           *int64                    `json:"ordinal"`
	PricingType       *string                   `json:"pricing_type"`
	PriceAmount       flexibleInt64             `json:"price_amount"`
	PriceCurrency     *string                   `json:"price_currency"`
	MeasurementUnitID *string                   `json:"measurement_unit_id"`
	Sellable          *bool                     `json:"sellable"`
	Stockable         *bool                     `json:"stockable"`
	LocationOverrides []core.LocationOverride `json:"location_overrides"`
}

func decodeVariation(raw json.RawMessage) (core.ItemVariation, error) {
	var w variationWire
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &w); err != nil {
			// Required nested payload malformed: still produce a row, with
			// every nested field (item_id and price included) left empty,
			// per §4.3's tolerance for invalid encoding.
			return core.ItemVariation{}, nil
		}
	}
	return core.ItemVariation{
		ItemID:            w.ItemID,
		Name:              w.Name,
		SKU:               w.SKU,
		UPC:               w.UPC,
		Ordinal:           w.Ordinal,
		PricingType:       w.PricingType,
		PriceAmount:       w.PriceAmount.value,
		PriceCurrency:     w.PriceCurrency,
		MeasurementUnitID: w.MeasurementUnitID,
		Sellable:          w.Sellable,
		Stockable:         w.Stockable,
		LocationOverrides: w.LocationOverrides,
	}, nil
}

// flexibleInt64 accepts a JSON number or numeric string, falling back to
// a nil value (rather than an unmarshal error) for anything else.
type flexibleInt64 struct {
	value *int64
}

func (f *flexibleInt64) UnmarshalJSON(data []byte) error {
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		f.value = &n
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		var parsed int64
		if _, err := fmt.Sscanf(s, "%d", &parsed); err == nil {
			f.value = &parsed
		}
		return nil
	}
	return nil
}
