// Package validate runs the post-parse pipeline over extracted invoices:
// structural defaults, OCR glyph repair, algebraic completion of missing
// numbers, normalization, range checks and declared-vs-calculated total
// consistency.
package validate

import (
	"fmt"
	"hash/crc32"
	"log/slog"
	"math"
	"strings"

	"github.com/docufield/invoice-extract/internal/common"
	"github.com/docufield/invoice-extract/internal/entity"
	"github.com/docufield/invoice-extract/internal/normalize"
)

// Validator applies the validation passes. Tolerances come from explicit
// configuration, not process-wide settings.
type Validator struct {
	cfg common.ValidatorConfig
	log *slog.Logger
}

func NewValidator(cfg common.ValidatorConfig, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.AbsTolerance <= 0 {
		cfg.AbsTolerance = 0.05
	}
	if cfg.RelTolerance <= 0 {
		cfg.RelTolerance = 0.02
	}
	if cfg.ItemTolerancePct <= 0 {
		cfg.ItemTolerancePct = 0.02
	}
	if cfg.MaxQty <= 0 {
		cfg.MaxQty = 100000
	}
	return &Validator{cfg: cfg, log: logger}
}

// ValidateBatch runs ValidateAndFix over every invoice.
func (v *Validator) ValidateBatch(invoices []entity.Invoice) []entity.ValidationResult {
	out := make([]entity.ValidationResult, 0, len(invoices))
	for i := range invoices {
		out = append(out, v.ValidateAndFix(&invoices[i]))
	}
	return out
}

// ValidateAndFix mutates the invoice in place and reports what happened.
// Idempotent: a second run yields the same calc total and no new fixes.
func (v *Validator) ValidateAndFix(inv *entity.Invoice) entity.ValidationResult {
	res := entity.ValidationResult{
		Invoice:  inv,
		Errors:   []string{},
		Warnings: []string{},
		Fixes:    []string{},
	}

	v.structurePass(inv, &res)
	v.ocrFixPass(inv, &res)
	v.completionPass(inv, &res)
	v.normalizationPass(inv, &res)
	v.rangeCheckPass(inv, &res)
	v.totalConsistencyPass(inv, &res)

	res.Valid = len(res.Errors) == 0
	v.log.Debug("validate.done",
		"source", inv.SourceFile,
		"valid", res.Valid,
		"errors", len(res.Errors),
		"warnings", len(res.Warnings),
		"fixes", len(res.Fixes),
	)
	return res
}

// pass 1: structural defaults
func (v *Validator) structurePass(inv *entity.Invoice, res *entity.ValidationResult) {
	if inv.Items == nil {
		inv.Items = []entity.LineItem{}
		res.Errors = append(res.Errors, "items missing")
	}
	if inv.Metadata == nil {
		inv.Metadata = map[string]string{}
	}
}

// pass 2: OCR confusable repair. Codes get the aggressive variant since they
// are short alphanumeric tokens with low risk of corrupting real words.
func (v *Validator) ocrFixPass(inv *entity.Invoice, res *entity.ValidationResult) {
	if fixed := normalize.FixOCRDigits(inv.SupplierName); fixed != inv.SupplierName {
		inv.SupplierName = fixed
		res.Fixes = append(res.Fixes, "supplier_name: ocr digits repaired")
	}
	if fixed := normalize.FixOCRDigits(inv.CustomerName); fixed != inv.CustomerName {
		inv.CustomerName = fixed
		res.Fixes = append(res.Fixes, "customer_name: ocr digits repaired")
	}
	for i := range inv.Items {
		it := &inv.Items[i]
		if fixed := normalize.FixOCRDigits(it.Name); fixed != it.Name {
			it.Name = fixed
			res.Fixes = append(res.Fixes, fmt.Sprintf("item %d name: ocr digits repaired", i))
		}
		if fixed := normalize.FixCodeGlyphs(it.Code); fixed != it.Code {
			it.Code = fixed
			res.Fixes = append(res.Fixes, fmt.Sprintf("item %d code: glyphs repaired", i))
		}
	}
}

// pass 3: algebraic completion of one missing value among qty/price/total,
// then recompute the calculated total.
func (v *Validator) completionPass(inv *entity.Invoice, res *entity.ValidationResult) {
	for i := range inv.Items {
		it := &inv.Items[i]
		switch {
		case it.Qty <= 0 && it.UnitPrice > 0 && it.Total > 0:
			q := it.Total / it.UnitPrice
			if math.Abs(q-math.Round(q)) < 0.01 {
				q = math.Round(q)
			}
			it.Qty = normalize.Round4(q)
			res.Fixes = append(res.Fixes, fmt.Sprintf("item %d: qty derived from total/unit_price", i))
		case it.UnitPrice <= 0 && it.Qty > 0 && it.Total > 0:
			it.UnitPrice = normalize.Round4(it.Total / it.Qty)
			res.Fixes = append(res.Fixes, fmt.Sprintf("item %d: unit_price derived from total/qty", i))
		case it.Total <= 0 && it.Qty > 0 && it.UnitPrice > 0:
			it.Total = normalize.Round2(it.Qty * it.UnitPrice)
			res.Fixes = append(res.Fixes, fmt.Sprintf("item %d: total derived from qty*unit_price", i))
		}
		if it.Qty <= 0 {
			it.Qty = 1
			res.Fixes = append(res.Fixes, fmt.Sprintf("item %d: qty defaulted to 1", i))
		}
	}
	inv.RecalcTotal()
}

// pass 4: dates/amounts to canonical form, name<->code synthesis, and dropping
// items that stay unidentifiable.
func (v *Validator) normalizationPass(inv *entity.Invoice, res *entity.ValidationResult) {
	if inv.InvoiceDate != "" {
		if norm := normalize.NormalizeDate(inv.InvoiceDate); norm != "" && norm != inv.InvoiceDate {
			inv.InvoiceDate = norm
			res.Fixes = append(res.Fixes, "invoice_date normalized")
		}
	}

	kept := inv.Items[:0]
	dropped := 0
	for i := range inv.Items {
		it := inv.Items[i]
		if r := normalize.Round4(it.Qty); r != it.Qty {
			it.Qty = r
			res.Fixes = append(res.Fixes, fmt.Sprintf("item %d: qty rounded", i))
		}
		if r := normalize.Round4(it.UnitPrice); r != it.UnitPrice {
			it.UnitPrice = r
			res.Fixes = append(res.Fixes, fmt.Sprintf("item %d: unit_price rounded", i))
		}
		if r := normalize.Round2(it.Total); r != it.Total {
			it.Total = r
			res.Fixes = append(res.Fixes, fmt.Sprintf("item %d: total rounded", i))
		}

		name := strings.TrimSpace(it.Name)
		code := strings.TrimSpace(it.Code)
		switch {
		case name == "" && code != "":
			it.Name = code
			res.Fixes = append(res.Fixes, fmt.Sprintf("item %d: name synthesized from code", i))
		case code == "" && name != "":
			it.Code = fallbackCode(name)
			res.Fixes = append(res.Fixes, fmt.Sprintf("item %d: fallback code generated", i))
		case name == "" && code == "":
			dropped++
			continue
		}
		kept = append(kept, it)
	}
	inv.Items = kept
	if dropped > 0 {
		res.Fixes = append(res.Fixes, fmt.Sprintf("%d unidentifiable items dropped", dropped))
	}
	inv.RecalcTotal()
}

// pass 5: non-mutating range checks.
func (v *Validator) rangeCheckPass(inv *entity.Invoice, res *entity.ValidationResult) {
	for i := range inv.Items {
		it := inv.Items[i]
		if n := len([]rune(it.Name)); n < 2 || n > 200 {
			res.Warnings = append(res.Warnings, fmt.Sprintf("item %d: name length %d outside [2,200]", i, n))
		}
		if it.Qty > v.cfg.MaxQty {
			res.Warnings = append(res.Warnings, fmt.Sprintf("item %d: qty %.4f above ceiling %.0f", i, it.Qty, v.cfg.MaxQty))
		}
		if it.Qty < 0 || it.UnitPrice < 0 || it.Total < 0 {
			res.Errors = append(res.Errors, fmt.Sprintf("item %d: negative qty/price/total", i))
		}
		if it.Total > 0 {
			tol := math.Max(0.01, it.Total*v.cfg.ItemTolerancePct)
			if math.Abs(it.Qty*it.UnitPrice-it.Total) > tol {
				res.Warnings = append(res.Warnings, fmt.Sprintf("item %d: qty*unit_price deviates from total beyond tolerance", i))
			}
		}
	}
	if len(inv.Items) > 0 && inv.CalcTotal <= 0 {
		res.Errors = append(res.Errors, "calculated total is not positive despite items present")
	}
}

// pass 6: declared vs calculated total. Declared totals are external claims,
// not ground truth, so a mismatch is a warning and never rejects the invoice.
// The gate requires BOTH the absolute and the relative bound to be exceeded.
func (v *Validator) totalConsistencyPass(inv *entity.Invoice, res *entity.ValidationResult) {
	if inv.DeclaredTotal == nil {
		return
	}
	declared := *inv.DeclaredTotal
	diff := math.Abs(declared - inv.CalcTotal)
	rel := 0.0
	if declared != 0 {
		rel = diff / math.Abs(declared)
	}
	if diff > v.cfg.AbsTolerance && rel > v.cfg.RelTolerance {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"declared total %.2f differs from calculated %.2f (diff %.2f)",
			declared, inv.CalcTotal, diff))
	}
}

// fallbackCode derives a deterministic code from an item name so downstream
// joins have something stable to key on.
func fallbackCode(name string) string {
	return fmt.Sprintf("N%08X", crc32.ChecksumIEEE([]byte(name)))
}
