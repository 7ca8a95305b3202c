package constants

// Canonical line-item column roles. Header mapping and item extraction agree on
// these names; anything else found in a table header is ignored.
const (
	FieldSeq       = "seq"
	FieldCode      = "code"
	FieldName      = "name"
	FieldColor     = "color"
	FieldSize      = "size"
	FieldUnit      = "unit"
	FieldQty       = "qty"
	FieldUnitPrice = "unit_price"
	FieldTotal     = "total"
	FieldRemark    = "remark"
	FieldDiscount  = "discount"
)

// FieldOrder is the fixed order fields are tried during header mapping.
// First pattern match wins, so more specific roles come before loose ones.
var FieldOrder = []string{
	FieldSeq,
	FieldCode,
	FieldName,
	FieldColor,
	FieldSize,
	FieldUnit,
	FieldQty,
	FieldUnitPrice,
	FieldTotal,
	FieldRemark,
	FieldDiscount,
}

// NumericFieldOrder is the order leftover columns are offered to unmapped
// numeric fields when a table carries no recognizable header at all.
var NumericFieldOrder = []string{FieldQty, FieldUnitPrice, FieldTotal}
