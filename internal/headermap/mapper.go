package headermap

import (
	"strings"

	"github.com/docufield/invoice-extract/constants"
)

// MapColumn resolves one header cell to a canonical field name, or "" when
// nothing matches and the column should be ignored. Pattern tables are tried
// first in the fixed field order, then the keyword fallback in the same order.
func MapColumn(header string) string {
	h := strings.TrimSpace(header)
	if h == "" {
		return ""
	}
	for _, f := range constants.FieldOrder {
		if fieldPatterns[f].MatchString(h) {
			return f
		}
	}
	low := strings.ToLower(h)
	for _, f := range constants.FieldOrder {
		for _, kw := range fieldKeywords[f] {
			if strings.Contains(low, kw) {
				return f
			}
		}
	}
	return ""
}

// MapHeaderRow maps a full header row to column indexes. Only the first column
// encountered per field is kept. Tables with no recognizable header at all are
// recovered positionally: the first non-numeric-looking column becomes name,
// and leftover columns are offered to the unassigned numeric fields in order.
// That recovery is wrong for unusual column orders, which is accepted degraded
// behavior rather than an error.
func MapHeaderRow(headers []string) map[string]int {
	m := make(map[string]int, len(headers))
	taken := make(map[int]bool, len(headers))

	for i, h := range headers {
		f := MapColumn(h)
		if f == "" {
			continue
		}
		if _, dup := m[f]; dup {
			continue
		}
		m[f] = i
		taken[i] = true
	}

	_, hasName := m[constants.FieldName]
	_, hasCode := m[constants.FieldCode]
	if !hasName && !hasCode {
		for i, h := range headers {
			if taken[i] {
				continue
			}
			if !reNumericHeader.MatchString(strings.TrimSpace(h)) {
				m[constants.FieldName] = i
				taken[i] = true
				break
			}
		}
	}

	for _, f := range constants.NumericFieldOrder {
		if _, ok := m[f]; ok {
			continue
		}
		for i := range headers {
			if !taken[i] {
				m[f] = i
				taken[i] = true
				break
			}
		}
	}
	return m
}
