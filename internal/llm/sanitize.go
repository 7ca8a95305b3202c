package llm

import (
	"encoding/json"
	"fmt"
	"maps"
	"strings"
)

// SanitizeOptionalFields applies a lenient cleanup to a model response that
// failed strict validation:
//   - renames known synonyms (vendor -> supplier_name, total -> declared_total)
//   - drops null/empty optionals
//   - coerces numeric -> string for money-ish fields
//   - removes unknown keys (additionalProperties = false friendliness)
//
// Returns the cleaned JSON and the list of keys that were touched.
func SanitizeOptionalFields(raw []byte) ([]byte, []string, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	dropped := make([]string, 0, 8)
	rename := func(from, to string) {
		if v, ok := m[from]; ok {
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
			dropped = append(dropped, from+"->"+to)
		}
	}

	// 1) rename synonyms to our schema
	rename("vendor", "supplier_name")
	rename("seller", "supplier_name")
	rename("buyer", "customer_name")
	rename("total", "declared_total")
	rename("grand_total", "declared_total")
	rename("date", "invoice_date")
	rename("line_items", "items")

	// 2) drop null / "" optionals; coerce money fields to strings
	for _, k := range []string{"declared_total"} {
		coerceDecimal(m, k, &dropped)
	}
	for _, k := range []string{"supplier_name", "customer_name", "invoice_number", "invoice_date", "currency"} {
		switch v := m[k].(type) {
		case nil:
			delete(m, k)
			dropped = append(dropped, k+"(null)")
		case string:
			s := strings.TrimSpace(v)
			if s == "" {
				delete(m, k)
				dropped = append(dropped, k+"(empty)")
			} else {
				m[k] = s
			}
		}
	}
	if v, ok := m["currency"].(string); ok {
		m["currency"] = strings.ToUpper(v)
	}

	// 3) clean each line item the same way
	if items, ok := m["items"].([]any); ok {
		for i, it := range items {
			im, ok := it.(map[string]any)
			if !ok {
				continue
			}
			prefix := fmt.Sprintf("items[%d].", i)
			for _, k := range []string{"quantity", "unit_price", "total"} {
				coerceDecimalPrefixed(im, k, prefix, &dropped)
			}
			for k := range maps.Clone(im) {
				if _, ok := allowedItemKeys[k]; !ok {
					delete(im, k)
					dropped = append(dropped, prefix+k+"(unknown)")
				}
			}
		}
	} else if _, present := m["items"]; !present {
		m["items"] = []any{}
		dropped = append(dropped, "items(missing)")
	}

	// 4) remove unknown top-level keys
	for k := range maps.Clone(m) {
		if _, ok := allowedTopKeys[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, nil, fmt.Errorf("sanitize: encode: %w", err)
	}
	return out, dropped, nil
}

var allowedTopKeys = map[string]struct{}{
	"supplier_name": {}, "customer_name": {}, "invoice_number": {},
	"invoice_date": {}, "currency": {}, "declared_total": {},
	"items": {}, "confidence": {},
}

var allowedItemKeys = map[string]struct{}{
	"code": {}, "name": {}, "quantity": {}, "unit_price": {},
	"total": {}, "remark": {},
}

func coerceDecimal(m map[string]any, k string, dropped *[]string) {
	coerceDecimalPrefixed(m, k, "", dropped)
}

func coerceDecimalPrefixed(m map[string]any, k, prefix string, dropped *[]string) {
	v, ok := m[k]
	if !ok {
		return
	}
	switch t := v.(type) {
	case float64:
		if t == float64(int64(t)) {
			m[k] = fmt.Sprintf("%d", int64(t))
		} else {
			m[k] = fmt.Sprintf("%.2f", t)
		}
		*dropped = append(*dropped, prefix+k+"(number)")
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			delete(m, k)
			*dropped = append(*dropped, prefix+k+"(empty)")
		} else {
			m[k] = s
		}
	case nil:
		delete(m, k)
		*dropped = append(*dropped, prefix+k+"(null)")
	default:
		delete(m, k)
		*dropped = append(*dropped, prefix+k+"(type)")
	}
}
