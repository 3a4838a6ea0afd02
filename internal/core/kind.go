package core

// Kind identifies the type of a catalog object on the wire and in storage.
type Kind string

const (
	KindItem          Kind = "ITEM"
	KindItemVariation Kind = "ITEM_VARIATION"
	KindCategory      Kind = "CATEGORY"
	KindTax           Kind = "TAX"
	KindDiscount      Kind = "DISCOUNT"
	KindModifier      Kind = "MODIFIER"
	KindModifierList  Kind = "MODIFIER_LIST"
	KindImage         Kind = "IMAGE"
)

// AllKinds is the full set of kinds fetched by a full sync.
var AllKinds = []Kind{
	KindItem, KindItemVariation, KindCategory, KindTax,
	KindDiscount, KindModifier, KindModifierList, KindImage,
}

// Valid reports whether k is one of the known catalog object kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindItem, KindItemVariation, KindCategory, KindTax,
		KindDiscount, KindModifier, KindModifierList, KindImage:
		return true
	default:
		return false
	}
}
