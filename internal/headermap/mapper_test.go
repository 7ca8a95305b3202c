package headermap_test

import (
	"testing"

	"github.com/docufield/invoice-extract/internal/headermap"
)

func TestMapColumn_ChineseSynonyms(t *testing.T) {
	cases := map[string]string{
		"款号":   "code",
		"貨號":   "code",
		"品名":   "name",
		"名稱":   "name",
		"数量":   "qty",
		"數量":   "qty",
		"单价":   "unit_price",
		"單價":   "unit_price",
		"金额":   "total",
		"金額":   "total",
		"颜色":   "color",
		"尺码":   "size",
		"单位":   "unit",
		"备注":   "remark",
		"序号":   "seq",
		"折扣":   "discount",
	}
	for in, want := range cases {
		if got := headermap.MapColumn(in); got != want {
			t.Fatalf("MapColumn(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMapColumn_EnglishSynonyms(t *testing.T) {
	cases := map[string]string{
		"Description": "name",
		"Item":        "name",
		"Item No.":    "code",
		"SKU":         "code",
		"Qty":         "qty",
		"Quantity":    "qty",
		"Unit Price":  "unit_price",
		"Price":       "unit_price",
		"Amount":      "total",
		"Total":       "total",
		"Unit":        "unit",
		"Remark":      "remark",
		"Discount":    "discount",
	}
	for in, want := range cases {
		if got := headermap.MapColumn(in); got != want {
			t.Fatalf("MapColumn(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMapColumn_NoMatch(t *testing.T) {
	if got := headermap.MapColumn("xyzzy"); got != "" {
		t.Fatalf("expected no match, got %q", got)
	}
	if got := headermap.MapColumn("   "); got != "" {
		t.Fatalf("expected no match for blank, got %q", got)
	}
}

func TestMapHeaderRow_RoundTrip(t *testing.T) {
	m := headermap.MapHeaderRow([]string{"款号", "名称", "数量", "单价", "金额"})
	want := map[string]int{"code": 0, "name": 1, "qty": 2, "unit_price": 3, "total": 4}
	for f, idx := range want {
		if m[f] != idx {
			t.Fatalf("field %s mapped to %d, want %d (map=%v)", f, m[f], idx, m)
		}
	}
}

func TestMapHeaderRow_FirstColumnWinsOnDuplicates(t *testing.T) {
	m := headermap.MapHeaderRow([]string{"Qty", "数量", "Total"})
	if m["qty"] != 0 {
		t.Fatalf("expected qty at column 0, got %d", m["qty"])
	}
}

func TestMapHeaderRow_HeaderlessRecovery(t *testing.T) {
	// No synonyms at all: first non-numeric column becomes name, leftovers go
	// to qty, unit_price, total in order.
	m := headermap.MapHeaderRow([]string{"Widget", "3", "10", "30"})
	if m["name"] != 0 {
		t.Fatalf("expected name at 0, got %v", m)
	}
	if m["qty"] != 1 || m["unit_price"] != 2 || m["total"] != 3 {
		t.Fatalf("positional numeric assignment wrong: %v", m)
	}
}
