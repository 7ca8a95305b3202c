package detect

import (
	"context"
	"log/slog"

	"github.com/docufield/invoice-extract/constants"
	"github.com/docufield/invoice-extract/internal/entity"
	"github.com/docufield/invoice-extract/internal/ingest"
	"github.com/docufield/invoice-extract/internal/llm"
	"github.com/docufield/invoice-extract/internal/normalize"
)

// llmConfidence is deliberately low: the LLM path is a last resort behind
// every heuristic detector.
const llmConfidence = 0.2

// LLMDetector delegates extraction to a configured language model. Without an
// extractor it scores zero and is never selected.
type LLMDetector struct {
	extractor llm.FieldExtractor
	log       *slog.Logger
}

func NewLLMDetector(extractor llm.FieldExtractor, logger *slog.Logger) *LLMDetector {
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMDetector{extractor: extractor, log: logger}
}

func (d *LLMDetector) ID() string           { return "llmfallback" }
func (d *LLMDetector) Name() string         { return "LLM assisted" }
func (d *LLMDetector) Extensions() []string { return []string{"json", "txt", "md", "markdown"} }

func (d *LLMDetector) CanParse(files []entity.RawFile) float64 {
	if d.extractor == nil {
		return 0
	}
	for _, f := range files {
		if fileFormat(f) != "" && len(f.Content) > 0 {
			return llmConfidence
		}
	}
	return 0
}

func (d *LLMDetector) Parse(ctx context.Context, files []entity.RawFile) ([]entity.Invoice, error) {
	if d.extractor == nil {
		return nil, nil
	}
	invoices := make([]entity.Invoice, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return invoices, err
		}
		if fileFormat(f) == "" || len(f.Content) == 0 {
			continue
		}

		text := string(f.Content)
		if fileFormat(f) == constants.FormatBlockJSON {
			if blocks := ingest.ParseBlocks(f.Content); len(blocks) > 0 {
				text = ingest.TextOfBlocks(blocks)
			}
		}

		fields, _, err := d.extractor.ExtractFields(ctx, llm.ExtractRequest{
			Text:         text,
			FilenameHint: f.Name,
		})
		if err != nil {
			// per-file failure, keep going
			d.log.Warn("detect.llm.extract_failed", "file", f.Name, "error", err)
			continue
		}
		invoices = append(invoices, fieldsToInvoice(f, fields))
	}
	return invoices, nil
}

func fieldsToInvoice(f entity.RawFile, fields llm.InvoiceFields) entity.Invoice {
	inv := entity.Invoice{
		SourceFile:    f.Name,
		SupplierName:  fields.SupplierName,
		CustomerName:  fields.CustomerName,
		InvoiceNumber: fields.InvoiceNumber,
		InvoiceDate:   normalize.NormalizeDate(fields.InvoiceDate),
		Currency:      fields.Currency,
		Items:         make([]entity.LineItem, 0, len(fields.Items)),
	}
	if fields.DeclaredTotal != "" {
		total := normalize.ParseMoney(fields.DeclaredTotal)
		inv.DeclaredTotal = &total
	}
	for _, it := range fields.Items {
		item := entity.LineItem{
			Code:      it.Code,
			Name:      it.Name,
			Qty:       normalize.ParseMoney(it.Quantity),
			UnitPrice: normalize.ParseMoney(it.UnitPrice),
			Total:     normalize.ParseMoney(it.Total),
		}
		if it.Remark != "" {
			item.Metadata = map[string]string{"remark": it.Remark}
		}
		if item.Qty <= 0 {
			item.Qty = 1
		}
		inv.Items = append(inv.Items, item)
	}
	inv.RecalcTotal()
	return inv
}
