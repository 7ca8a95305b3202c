package detect

import (
	"context"

	"github.com/docufield/invoice-extract/constants"
	"github.com/docufield/invoice-extract/internal/entity"
)

// Detector is one parsing strategy. CanParse must be cheap and side-effect
// free; it is called on every input set during selection. Parse is invoked
// only on the selected detector.
type Detector interface {
	ID() string
	Name() string
	Extensions() []string
	CanParse(files []entity.RawFile) float64
	Parse(ctx context.Context, files []entity.RawFile) ([]entity.Invoice, error)
}

// Descriptor is the UI-facing summary of a registered detector.
type Descriptor struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Extensions []string `json:"supported_extensions"`
}

// fileFormat classifies a file by extension into one of the source formats
// in constants.SourceFormats, or "" when the extension is not recognised.
func fileFormat(f entity.RawFile) string {
	return constants.MapExtToFormat(f.Extension)
}

// applyHeader copies mined document metadata onto an invoice, never
// overwriting a value that an earlier strategy already filled.
func applyHeader(inv *entity.Invoice, hdr entity.DocHeader) {
	if inv.SupplierName == "" {
		inv.SupplierName = hdr.SupplierName
	}
	if inv.CustomerName == "" {
		inv.CustomerName = hdr.CustomerName
	}
	if inv.InvoiceDate == "" {
		inv.InvoiceDate = hdr.InvoiceDate
	}
	if inv.InvoiceNumber == "" {
		inv.InvoiceNumber = hdr.InvoiceNumber
	}
	if inv.DeclaredTotal == nil {
		inv.DeclaredTotal = hdr.DeclaredTotal
	}
	if inv.Currency == "" {
		inv.Currency = hdr.Currency
	}
}
