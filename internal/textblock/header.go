// Package textblock mines freeform OCR text for invoice header metadata and
// line items when a document carries no usable table.
package textblock

import (
	"regexp"
	"strings"

	"github.com/docufield/invoice-extract/internal/entity"
	"github.com/docufield/invoice-extract/internal/normalize"
)

// Ordered pattern lists per header field; first match in list order wins.
// Labeled forms (with a colon) come before bare-token fallbacks so the label
// itself is not swallowed into the value.
var (
	supplierPatterns = []*regexp.Regexp{
		regexp.MustCompile(`供[应應]商[:：]\s*(\S[^\n]*)`),
		regexp.MustCompile(`[卖賣销銷][方售]方?[:：]\s*(\S[^\n]*)`),
		regexp.MustCompile(`(?i)supplier[:：]\s*(\S[^\n]*)`),
		regexp.MustCompile(`(?i)(?:seller|vendor|from)[:：]\s*(\S[^\n]*)`),
		regexp.MustCompile(`(供[应應]商\S+)`),
	}
	customerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`客[户戶][:：]\s*(\S[^\n]*)`),
		regexp.MustCompile(`[买買购購][方货貨]方?[:：]\s*(\S[^\n]*)`),
		regexp.MustCompile(`(?i)customer[:：]\s*(\S[^\n]*)`),
		regexp.MustCompile(`(?i)(?:buyer|bill\s*to|sold\s*to)[:：]\s*(\S[^\n]*)`),
		regexp.MustCompile(`(客[户戶]\S+)`),
	}
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`[开開]?票?日期[:：]\s*(\S+)`),
		regexp.MustCompile(`(?i)(?:invoice\s*)?date[:：]\s*(\S+)`),
		regexp.MustCompile(`(\d{4}年\d{1,2}月\d{1,2}日)`),
		regexp.MustCompile(`(\d{4}[-/.]\d{1,2}[-/.]\d{1,2})`),
		regexp.MustCompile(`(\d{1,2}[-/.]\d{1,2}[-/.]\d{4})`),
	}
	invoiceNoPatterns = []*regexp.Regexp{
		regexp.MustCompile(`[发發]票[号號][码碼]?[:：]?\s*([A-Za-z0-9-]+)`),
		regexp.MustCompile(`[单單][号號][:：]\s*([A-Za-z0-9-]+)`),
		regexp.MustCompile(`(?i)invoice\s*(?:no|number|#)[.:：]?\s*([A-Za-z0-9-]+)`),
		regexp.MustCompile(`(?i)\bno[.:：]\s*([A-Za-z0-9-]{4,})`),
	}
	totalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`合[计計]金[额額][:：]?\s*([¥￥$€£]?\s*-?[\d,]+(?:\.\d+)?)`),
		regexp.MustCompile(`[总總][计計][:：]?\s*([¥￥$€£]?\s*-?[\d,]+(?:\.\d+)?)`),
		regexp.MustCompile(`合[计計][:：]?\s*([¥￥$€£]?\s*-?[\d,]+(?:\.\d+)?)`),
		regexp.MustCompile(`[应應][付收][金额額]*[:：]?\s*([¥￥$€£]?\s*-?[\d,]+(?:\.\d+)?)`),
		regexp.MustCompile(`(?i)grand\s*total[:：]?\s*([¥￥$€£]?\s*-?[\d,]+(?:\.\d+)?)`),
		regexp.MustCompile(`(?i)total\s*(?:amount|due)?[:：]?\s*([¥￥$€£]?\s*-?[\d,]+(?:\.\d+)?)`),
	}
	currencyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(CNY|RMB|USD|EUR|JPY|GBP|HKD)\b`),
		regexp.MustCompile(`([¥￥$€£])`),
	}
)

var currencySymbols = map[string]string{
	"¥": "CNY", "￥": "CNY", "$": "USD", "€": "EUR", "£": "GBP", "RMB": "CNY",
}

// ExtractHeader applies the ordered pattern lists to freeform text and returns
// whatever header metadata matched. The declared total takes the match at the
// highest text offset: trailing totals are more likely the grand total than
// earlier subtotals.
func ExtractHeader(text string) entity.DocHeader {
	text = normalize.CleanText(text)
	h := entity.DocHeader{
		SupplierName:  firstMatch(text, supplierPatterns),
		CustomerName:  firstMatch(text, customerPatterns),
		InvoiceNumber: firstMatch(text, invoiceNoPatterns),
	}
	if raw := firstMatch(text, datePatterns); raw != "" {
		h.InvoiceDate = normalize.NormalizeDate(raw)
	}
	h.DeclaredTotal = extractDeclaredTotal(text)
	if cur := firstMatch(text, currencyPatterns); cur != "" {
		if code, ok := currencySymbols[cur]; ok {
			h.Currency = code
		} else {
			h.Currency = strings.ToUpper(cur)
		}
	}
	return h
}

func firstMatch(text string, patterns []*regexp.Regexp) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// extractDeclaredTotal scans every total-like pattern and keeps the match with
// the highest start offset.
func extractDeclaredTotal(text string) *float64 {
	bestOffset := -1
	var bestRaw string
	for _, re := range totalPatterns {
		for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
			if loc[0] > bestOffset && loc[2] >= 0 {
				bestOffset = loc[0]
				bestRaw = text[loc[2]:loc[3]]
			}
		}
	}
	if bestOffset < 0 {
		return nil
	}
	v := normalize.ParseMoney(bestRaw)
	return &v
}
