package textblock

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/docufield/invoice-extract/internal/entity"
	"github.com/docufield/invoice-extract/internal/normalize"
)

var (
	reMultiplication = regexp.MustCompile(`(?m)^\s*(.{1,80}?)\s*[xX×]\s*(\d+(?:\.\d+)?)\s*@\s*[¥￥$€£]?\s*(\d[\d,]*(?:\.\d+)?)\s*$`)
	reBullet         = regexp.MustCompile(`(?m)^\s*[-•*]\s+(.+?)\s+[¥￥$€£]?\s*(\d[\d,]*(?:\.\d+)?)\s*$`)
	reNumericToken   = regexp.MustCompile(`[¥￥$€£]?\s*\d[\d,]*(?:\.\d+)?`)
	reSummaryLine    = regexp.MustCompile(`(?i)合计|合計|小计|小計|总计|總計|total|subtotal|grand|应付|應付|发票|發票|日期|date|invoice`)
	reLineHasMul     = regexp.MustCompile(`[xX×]\s*\d`)
)

// ExtractItems merges three independent line-item strategies over freeform
// text: multiplication format ("Name x3 @10"), columnar lines with positional
// numeric tokens, and bulleted lists. Results are deduplicated on
// (lowercased name, qty, total).
func ExtractItems(text string) []entity.LineItem {
	text = normalize.CleanText(text)

	var items []entity.LineItem
	items = append(items, multiplicationItems(text)...)
	items = append(items, lineItems(text)...)
	items = append(items, bulletItems(text)...)
	return dedupItems(items)
}

func multiplicationItems(text string) []entity.LineItem {
	var items []entity.LineItem
	for _, m := range reMultiplication.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(m[1])
		if name == "" || reSummaryLine.MatchString(name) {
			continue
		}
		qty := normalize.ParseMoney(m[2])
		price := normalize.ParseMoney(m[3])
		if qty <= 0 {
			qty = 1
		}
		items = append(items, entity.LineItem{
			Name:      name,
			Qty:       normalize.Round4(qty),
			UnitPrice: normalize.Round4(price),
			Total:     normalize.Round2(qty * price),
		})
	}
	return items
}

// lineItems treats each non-summary line holding numeric tokens as a candidate
// item row. Three tokens read positionally as (qty, unit price, total); two
// tokens are disambiguated by magnitude (the smaller value, when <=100, is
// assumed to be the quantity — best effort, no correctness bound); one token
// is a bare total. A 10% self-consistency gate rejects spurious numeric
// coincidences.
func lineItems(text string) []entity.LineItem {
	var items []entity.LineItem
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || reSummaryLine.MatchString(line) || reLineHasMul.MatchString(line) {
			continue
		}
		if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "•") || strings.HasPrefix(line, "*") {
			continue // bullet strategy owns these
		}
		if item, ok := parseColumnarLine(line); ok {
			items = append(items, item)
		}
	}
	return items
}

// parseColumnarLine interprets one text line as an item row.
func parseColumnarLine(line string) (entity.LineItem, bool) {
	tokens := reNumericToken.FindAllString(line, -1)
	if len(tokens) == 0 {
		return entity.LineItem{}, false
	}
	name := strings.TrimSpace(reNumericToken.ReplaceAllString(line, " "))
	name = strings.Trim(name, " -—:：|,.")
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return entity.LineItem{}, false
	}

	nums := make([]float64, 0, len(tokens))
	for _, t := range tokens {
		nums = append(nums, normalize.ParseMoney(t))
	}

	var qty, price, total float64
	switch {
	case len(nums) >= 3:
		qty, price, total = nums[len(nums)-3], nums[len(nums)-2], nums[len(nums)-1]
		if qty <= 0 || total <= 0 {
			return entity.LineItem{}, false
		}
		if math.Abs(qty*price-total)/total >= 0.1 {
			return entity.LineItem{}, false
		}
	case len(nums) == 2:
		a, b := nums[0], nums[1]
		if a <= 0 || b <= 0 {
			return entity.LineItem{}, false
		}
		qty, total = a, b
		if b < a {
			qty, total = b, a
		}
		if qty > 100 {
			// neither looks like a count; treat the pair as price and total
			return entity.LineItem{}, false
		}
		price = total / qty
	default:
		qty, total = 1, nums[0]
		if total <= 0 {
			return entity.LineItem{}, false
		}
		price = total
	}

	return entity.LineItem{
		Name:      name,
		Qty:       normalize.Round4(qty),
		UnitPrice: normalize.Round4(price),
		Total:     normalize.Round2(total),
	}, true
}

func bulletItems(text string) []entity.LineItem {
	var items []entity.LineItem
	for _, m := range reBullet.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(m[1])
		if name == "" || reSummaryLine.MatchString(name) {
			continue
		}
		total := normalize.ParseMoney(m[2])
		if total <= 0 {
			continue
		}
		items = append(items, entity.LineItem{
			Name:      name,
			Qty:       1,
			UnitPrice: normalize.Round4(total),
			Total:     normalize.Round2(total),
		})
	}
	return items
}

func dedupItems(items []entity.LineItem) []entity.LineItem {
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, it := range items {
		key := fmt.Sprintf("%s|%.4f|%.2f", strings.ToLower(it.Name), it.Qty, it.Total)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, it)
	}
	return out
}
