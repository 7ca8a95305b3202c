package table

import (
	"math"
	"regexp"
	"strings"

	"github.com/docufield/invoice-extract/constants"
	"github.com/docufield/invoice-extract/internal/entity"
	"github.com/docufield/invoice-extract/internal/headermap"
	"github.com/docufield/invoice-extract/internal/normalize"
)

var reSummaryRow = regexp.MustCompile(`(?i)合计|合計|小计|小計|total|subtotal|grand|\bsum\b`)

// ExtractItems converts a scored grid plus a header map into line items.
// When headerMap is nil one is derived from the grid's header row. Summary
// rows and rows with neither name nor code are skipped; any one missing value
// among qty/unit price/total is cross-derived from the other two.
func ExtractItems(g *Grid, headerMap map[string]int) []entity.LineItem {
	if g == nil || len(g.Rows) < 2 {
		return nil
	}
	if headerMap == nil {
		headerMap = headermap.MapHeaderRow(g.Header())
	}

	items := make([]entity.LineItem, 0, len(g.DataRows()))
	for _, row := range g.DataRows() {
		cell := func(field string) string {
			idx, ok := headerMap[field]
			if !ok || idx < 0 || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		code := cell(constants.FieldCode)
		name := cell(constants.FieldName)
		if reSummaryRow.MatchString(code) || reSummaryRow.MatchString(name) {
			continue
		}
		if code == "" && name == "" {
			continue
		}

		qty := normalize.ParseMoney(normalize.FixOCRDigits(cell(constants.FieldQty)))
		price := normalize.ParseMoney(normalize.FixOCRDigits(cell(constants.FieldUnitPrice)))
		total := normalize.ParseMoney(normalize.FixOCRDigits(cell(constants.FieldTotal)))
		qty, price, total = deriveNumbers(qty, price, total)

		item := entity.LineItem{
			Code:      code,
			Name:      composeName(name, cell(constants.FieldColor), cell(constants.FieldSize)),
			Qty:       normalize.Round4(qty),
			Unit:      cell(constants.FieldUnit),
			UnitPrice: normalize.Round4(price),
			Total:     normalize.Round2(total),
		}
		if remark := cell(constants.FieldRemark); remark != "" {
			item.Metadata = map[string]string{"remark": remark}
		}
		items = append(items, item)
	}
	return items
}

// deriveNumbers fills any one missing value among qty, unit price and total
// from the other two. Quantity is always coerced positive (default 1).
func deriveNumbers(qty, price, total float64) (float64, float64, float64) {
	if qty <= 0 && price > 0 && total > 0 {
		qty = total / price
		// OCR quantities are nearly always integral; snap when close
		if math.Abs(qty-math.Round(qty)) < 0.01 {
			qty = math.Round(qty)
		}
	}
	if qty <= 0 {
		qty = 1
	}
	if price <= 0 && total > 0 {
		price = total / qty
	}
	if total <= 0 && price > 0 {
		total = qty * price
	}
	return qty, price, total
}

func composeName(name, color, size string) string {
	if color != "" {
		if name != "" {
			name += " - " + color
		} else {
			name = color
		}
	}
	if size != "" {
		name += " [" + size + "]"
	}
	return strings.TrimSpace(name)
}
