package core

// Base carries the fields every stored entity shares per the data model:
// opaque remote id, last-known update time (RFC 3339, stored verbatim),
// the remote's monotonically increasing version, the tombstone flag, and
// the raw payload preserved for forward compatibility.
type Base struct {
	ID        string `json:"id" validate:"required"`
	UpdatedAt string `json:"updated_at"`
	Version   int64  `json:"version"`
	IsDeleted bool   `json:"is_deleted"`
	DataJSON  string `json:"-"`
}

type PathSegment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Category struct {
	Base
	Name            string        `json:"name" validate:"required"`
	ImageURL        *string       `json:"image_url,omitempty"`
	ParentCategoryID *string      `json:"parent_category_id,omitempty"`
	IsTopLevel      *bool         `json:"is_top_level,omitempty"`
	PathToRoot      []PathSegment `json:"path_to_root,omitempty"`
}

type Item struct {
	Base
	Name                     string   `json:"name" validate:"required"`
	Description              *string  `json:"description,omitempty"`
	Abbreviation             *string  `json:"abbreviation,omitempty"`
	LabelColor               *string  `json:"label_color,omitempty"`
	CategoryID               *string  `json:"category_id,omitempty"`
	ReportingCategoryID      *string  `json:"reporting_category_id,omitempty"`
	PresentAtAllLocations    bool     `json:"present_at_all_locations"`
	PresentAtAllLocationIDs  []string `json:"present_at_all_locations_ids,omitempty"`
	AbsentAtLocationIDs      []string `json:"absent_at_location_ids,omitempty"`
	AvailableOnline          *bool    `json:"available_online,omitempty"`
	AvailableForPickup       *bool    `json:"available_for_pickup,omitempty"`
	AvailableElectronically  *bool    `json:"available_electronically,omitempty"`
	TaxIDs                   []string `json:"tax_ids,omitempty"`
	ModifierListIDs          []string `json:"modifier_list_ids,omitempty"`
	ImageIDs                 []string `json:"image_ids,omitempty"`
}

type LocationOverride struct {
	LocationID   string  `json:"location_id" validate:"required"`
	PriceAmount  *int64  `json:"price_amount,omitempty"`
	Currency     *string `json:"currency,omitempty"`
}

type ItemVariation struct {
	Base
	ItemID             string             `json:"item_id" validate:"required"`
	Name               *string            `json:"name,omitempty"`
	SKU                *string            `json:"sku,omitempty"`
	UPC                *string            `json:"upc,omitempty"`
	Ordinal            *int64             `json:"ordinal,omitempty"`
	PricingType        *string            `json:"pricing_type,omitempty"`
	PriceAmount        *int64             `json:"price_amount,omitempty"`
	PriceCurrency      *string            `json:"price_currency,omitempty"`
	MeasurementUnitID  *string            `json:"measurement_unit_id,omitempty"`
	Sellable           *bool              `json:"sellable,omitempty"`
	Stockable          *bool              `json:"stockable,omitempty"`
	LocationOverrides  []LocationOverride `json:"location_overrides,omitempty"`
}

type Tax struct {
	Base
	Name                    string  `json:"name" validate:"required"`
	CalculationPhase        *string `json:"calculation_phase,omitempty"`
	InclusionType           *string `json:"inclusion_type,omitempty"`
	Percentage              *string `json:"percentage,omitempty"`
	Enabled                 bool    `json:"enabled"`
	AppliesToCustomAmounts  bool    `json:"applies_to_custom_amounts"`
}

type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type Discount struct {
	Base
	Name         string  `json:"name" validate:"required"`
	DiscountType *string `json:"discount_type,omitempty"`
	Percentage   *string `json:"percentage,omitempty"`
	Amount       *Money  `json:"amount,omitempty"`
}

// SelectionType enumerates ModifierList.selection_type.
type SelectionType string

const (
	SelectionSingle   SelectionType = "SINGLE"
	SelectionMultiple SelectionType = "MULTIPLE"
)

type ModifierList struct {
	Base
	Name          string        `json:"name" validate:"required"`
	SelectionType SelectionType `json:"selection_type" validate:"omitempty,oneof=SINGLE MULTIPLE"`
	Ordinal       *int64        `json:"ordinal,omitempty"`
	ModifierIDs   []string      `json:"modifier_ids,omitempty"`
}

type Modifier struct {
	Base
	ModifierListID string  `json:"modifier_list_id" validate:"required"`
	Name           string  `json:"name" validate:"required"`
	PriceAmount    *int64  `json:"price_amount,omitempty"`
	PriceCurrency  *string `json:"price_currency,omitempty"`
	Ordinal        *int64  `json:"ordinal,omitempty"`
	OnByDefault    bool    `json:"on_by_default"`
}

type Image struct {
	Base
	Name    *string `json:"name,omitempty"`
	URL     *string `json:"url,omitempty"`
	Caption *string `json:"caption,omitempty"`
}

// InventoryState enumerates InventoryCount.state.
type InventoryState string

const (
	InventoryInStock            InventoryState = "IN_STOCK"
	InventorySold                InventoryState = "SOLD"
	InventoryReturnedByCustomer InventoryState = "RETURNED_BY_CUSTOMER"
	InventoryWaste               InventoryState = "WASTE"
	InventoryUnlinkedReturn       InventoryState = "UNLINKED_RETURN"
)

type InventoryCount struct {
	VariationID  string         `json:"variation_id" validate:"required"`
	LocationID   string         `json:"location_id" validate:"required"`
	State        InventoryState `json:"state" validate:"required"`
	Quantity     string         `json:"quantity"`
	CalculatedAt string         `json:"calculated_at"`
	UpdatedAt    string         `json:"updated_at"`
}

// CompositeID returns the deterministic primary key for this row, per the
// data model's `variation_id + "_" + location_id + "_" + state` rule.
func (c InventoryCount) CompositeID() string {
	return c.VariationID + "_" + c.LocationID + "_" + string(c.State)
}

// SyncStatus is the singleton row tracking the engine's progress and
// high-water-mark timestamps across process restarts.
type SyncStatus struct {
	LastFullSyncAt        *string `json:"last_full_sync_at,omitempty"`
	LastIncrementalSyncAt *string `json:"last_incremental_sync_at,omitempty"`
	InFlight              bool    `json:"in_flight"`
	LastCursor            *string `json:"last_cursor,omitempty"`
	AttemptCount          int     `json:"attempt_count"`
	LastError             *string `json:"last_error,omitempty"`
	ProgressCurrent       int     `json:"progress_current"`
	ProgressTotal         int     `json:"progress_total"`
}

// CatalogObject is the wire shape returned by RemoteCatalog, per §6.2: a
// tagged envelope carrying the raw `<type>_data` payload opaque to
// everything except the Decoder.
type CatalogObject struct {
	ID                      string          `json:"id"`
	Type                    Kind            `json:"type"`
	UpdatedAt               string          `json:"updated_at"`
	Version                 int64           `json:"version"`
	IsDeleted               bool            `json:"is_deleted"`
	PresentAtAllLocations   *bool           `json:"present_at_all_locations,omitempty"`
	PresentAtAllLocationIDs []string        `json:"present_at_all_locations_ids,omitempty"`
	AbsentAtLocationIDs     []string        `json:"absent_at_location_ids,omitempty"`
	Raw                     []byte          `json:"-"`
	TypeData                map[string]any  `json:"-"`
}
