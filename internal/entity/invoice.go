package entity

import "math"

// RawFile is an opaque input unit supplied by the caller. Content may be
// pre-loaded; the extraction core never writes to it.
type RawFile struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Extension string `json:"extension"`
	Content   []byte `json:"-"`
}

// Block is one OCR/layout-analysis labeled content unit. Label containing the
// substring "table" marks a table block whose content is HTML.
type Block struct {
	Label   string    `json:"block_label"`
	Content string    `json:"block_content"`
	BBox    []float64 `json:"block_bbox,omitempty"`
}

// HasBBox reports whether the block carries a usable [x0,y0,x1,y1] box.
func (b Block) HasBBox() bool { return len(b.BBox) >= 4 }

// Top returns the vertical position of the block, or 0 without a bbox.
func (b Block) Top() float64 {
	if !b.HasBBox() {
		return 0
	}
	return b.BBox[1]
}

// LineItem is one extracted invoice line.
type LineItem struct {
	Code        string            `json:"code"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Qty         float64           `json:"qty"`
	Unit        string            `json:"unit,omitempty"`
	UnitPrice   float64           `json:"unit_price"`
	Total       float64           `json:"total"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Invoice is the normalized extraction result for one source document.
// DeclaredTotal is a claim from the document text and is nil when no pattern
// matched; CalcTotal is always recomputed from the items.
type Invoice struct {
	SourceFile    string            `json:"source_file"`
	SupplierName  string            `json:"supplier_name"`
	CustomerName  string            `json:"customer_name"`
	InvoiceDate   string            `json:"invoice_date,omitempty"` // YYYY-MM-DD
	InvoiceNumber string            `json:"invoice_number,omitempty"`
	DeclaredTotal *float64          `json:"declared_total,omitempty"`
	CalcTotal     float64           `json:"calc_total"`
	Currency      string            `json:"currency,omitempty"`
	Items         []LineItem        `json:"items"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// RecalcTotal recomputes CalcTotal as the 2-decimal rounded sum of item totals.
// Call after any mutation of Items.
func (inv *Invoice) RecalcTotal() {
	var sum float64
	for _, it := range inv.Items {
		sum += it.Total
	}
	inv.CalcTotal = math.Round(sum*100) / 100
}

// DocHeader carries the non-tabular metadata mined from freeform text.
type DocHeader struct {
	SupplierName  string
	CustomerName  string
	InvoiceDate   string
	InvoiceNumber string
	DeclaredTotal *float64
	Currency      string
}
