package llm

import "context"

// InvoiceItem is a single line item as returned by the model.
type InvoiceItem struct {
	Code      string `json:"code,omitempty"`
	Name      string `json:"name"`
	Quantity  string `json:"quantity,omitempty"`   // decimal
	UnitPrice string `json:"unit_price,omitempty"` // decimal
	Total     string `json:"total,omitempty"`      // decimal
	Remark    string `json:"remark,omitempty"`
}

// InvoiceFields is the normalized shape we want from the LLM.
type InvoiceFields struct {
	SupplierName    string        `json:"supplier_name,omitempty"`
	CustomerName    string        `json:"customer_name,omitempty"`
	InvoiceNumber   string        `json:"invoice_number,omitempty"`
	InvoiceDate     string        `json:"invoice_date,omitempty"` // YYYY-MM-DD
	Currency        string        `json:"currency,omitempty"`     // ISO 4217
	DeclaredTotal   string        `json:"declared_total,omitempty"`
	Items           []InvoiceItem `json:"items"`
	ModelConfidence float32       `json:"confidence,omitempty"` // 0..1
}

type ExtractRequest struct {
	Text         string
	FilenameHint string
	// DefaultCurrency is used when the document carries no currency marker.
	DefaultCurrency string
}

// FieldExtractor is the interface the detector registry depends on.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, req ExtractRequest) (InvoiceFields, []byte /*rawJSON*/, error)
}
