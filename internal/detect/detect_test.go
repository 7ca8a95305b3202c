package detect_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/docufield/invoice-extract/constants"
	"github.com/docufield/invoice-extract/internal/common"
	"github.com/docufield/invoice-extract/internal/detect"
	"github.com/docufield/invoice-extract/internal/entity"
	"github.com/docufield/invoice-extract/internal/llm"
	"github.com/docufield/invoice-extract/internal/validate"
)

func testConfig() common.ParserConfig {
	return common.ParserConfig{MinConfidence: 0.3, TableThreshold: 0.3}
}

func newTestRegistry(t *testing.T) *detect.Registry {
	t.Helper()
	return detect.NewDefaultRegistry(testConfig(), validate.NewValidator(common.ValidatorConfig{}, nil), nil, nil)
}

const blockDoc = `{
	"parsing_res_list": [
		{"block_label": "text", "block_content": "供應商ABC"},
		{"block_label": "table", "block_content": "<table><tr><th>品名</th><th>數量</th><th>單價</th><th>金額</th></tr><tr><td>鞋</td><td>2</td><td>100</td><td>200</td></tr></table>"}
	]
}`

func TestEndToEndBlockJSON(t *testing.T) {
	r := newTestRegistry(t)
	files := []entity.RawFile{{Name: "doc.json", Extension: "json", Content: []byte(blockDoc)}}

	res, err := r.Parse(context.Background(), files, detect.ParseOptions{Validate: true})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if res.DetectorUsed != "blockjson" {
		t.Fatalf("detector = %s, want blockjson (confidence %.2f)", res.DetectorUsed, res.Confidence)
	}
	if len(res.Invoices) != 1 {
		t.Fatalf("invoices = %d, want 1", len(res.Invoices))
	}
	inv := res.Invoices[0]
	if inv.SupplierName != "供應商ABC" {
		t.Errorf("supplier = %q, want 供應商ABC", inv.SupplierName)
	}
	if inv.CalcTotal != 200.0 {
		t.Errorf("calc_total = %v, want 200", inv.CalcTotal)
	}
	if len(inv.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(inv.Items))
	}
	it := inv.Items[0]
	if it.Name != "鞋" || it.Qty != 2 || it.UnitPrice != 100 || it.Total != 200 {
		t.Errorf("item = %+v", it)
	}
	if len(res.Validation) != 1 {
		t.Fatalf("validation results = %d, want 1", len(res.Validation))
	}
	if !res.Validation[0].Valid {
		t.Errorf("expected valid invoice, errors: %v", res.Validation[0].Errors)
	}
}

func TestMarkdownBeatsTextOnly(t *testing.T) {
	md := strings.Join([]string{
		"| Name | Qty | Price | Total |",
		"|------|-----|-------|-------|",
		"| Widget | 3 | 10 | 30 |",
	}, "\n")
	files := []entity.RawFile{{Name: "inv.md", Extension: "md", Content: []byte(md)}}

	r := newTestRegistry(t)
	best, _, scores := r.Detect(files)
	if best == nil {
		t.Fatal("no detector selected")
	}
	if scores["markdown"] <= scores["textonly"] {
		t.Fatalf("markdown %.2f must beat textonly %.2f", scores["markdown"], scores["textonly"])
	}
	if best.ID() != "markdown" {
		t.Fatalf("best = %s, want markdown", best.ID())
	}

	res, err := r.Parse(context.Background(), files, detect.ParseOptions{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if res.DetectorUsed != "markdown" {
		t.Fatalf("detector = %s, want markdown", res.DetectorUsed)
	}
	if len(res.Invoices) != 1 || len(res.Invoices[0].Items) != 1 {
		t.Fatalf("unexpected result: %+v", res.Invoices)
	}
	it := res.Invoices[0].Items[0]
	if it.Name != "Widget" || it.Qty != 3 || it.Total != 30 {
		t.Errorf("item = %+v", it)
	}
}

func TestMarkdownLongExtension(t *testing.T) {
	md := strings.Join([]string{
		"| Name | Qty | Price | Total |",
		"|------|-----|-------|-------|",
		"| Widget | 3 | 10 | 30 |",
	}, "\n")
	files := []entity.RawFile{{Name: "inv.markdown", Extension: "markdown", Content: []byte(md)}}

	r := newTestRegistry(t)
	res, err := r.Parse(context.Background(), files, detect.ParseOptions{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if res.DetectorUsed != "markdown" {
		t.Fatalf("detector = %s, want markdown", res.DetectorUsed)
	}
	if len(res.Invoices) != 1 || len(res.Invoices[0].Items) != 1 {
		t.Fatalf("unexpected result: %+v", res.Invoices)
	}
}

func TestMapExtToFormat(t *testing.T) {
	cases := map[string]string{
		".json":    constants.FormatBlockJSON,
		"md":       constants.FormatMarkdown,
		"markdown": constants.FormatMarkdown,
		".TXT":     constants.FormatText,
		"docx":     "",
	}
	for ext, want := range cases {
		if got := constants.MapExtToFormat(ext); got != want {
			t.Errorf("MapExtToFormat(%q) = %q, want %q", ext, got, want)
		}
	}
}

func TestNoSuitableParser(t *testing.T) {
	r := newTestRegistry(t)
	files := []entity.RawFile{{Name: "image.bin", Extension: "bin", Content: []byte{0x1, 0x2}}}

	_, err := r.Parse(context.Background(), files, detect.ParseOptions{})
	var nsp *common.NoSuitableParserError
	if !errors.As(err, &nsp) {
		t.Fatalf("err = %v, want NoSuitableParserError", err)
	}
	// the message must enumerate every detector's score
	for _, id := range []string{"blockjson", "markdown", "textonly"} {
		if _, ok := nsp.Scores[id]; !ok {
			t.Errorf("scores missing %s: %v", id, nsp.Scores)
		}
		if !strings.Contains(nsp.Error(), id) {
			t.Errorf("error message missing %s: %s", id, nsp.Error())
		}
	}
}

func TestForcedDetector(t *testing.T) {
	r := newTestRegistry(t)
	files := []entity.RawFile{{Name: "inv.txt", Extension: "txt", Content: []byte("Widget  3  10  30")}}

	res, err := r.Parse(context.Background(), files, detect.ParseOptions{ForcedID: "textonly"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if res.DetectorUsed != "textonly" {
		t.Fatalf("detector = %s, want textonly", res.DetectorUsed)
	}

	if _, err := r.Parse(context.Background(), files, detect.ParseOptions{ForcedID: "nope"}); err == nil {
		t.Fatal("unknown forced id must fail")
	}
}

// failingDetector always scores high and always fails to parse.
type failingDetector struct{}

func (failingDetector) ID() string                             { return "failing" }
func (failingDetector) Name() string                           { return "Failing" }
func (failingDetector) Extensions() []string                   { return []string{"txt"} }
func (failingDetector) CanParse([]entity.RawFile) float64      { return 0.99 }
func (failingDetector) Parse(context.Context, []entity.RawFile) ([]entity.Invoice, error) {
	return nil, errors.New("boom")
}

func TestParseWithFallback(t *testing.T) {
	r := detect.NewRegistry(testConfig(), nil, nil)
	r.Register(failingDetector{})
	r.Register(detect.NewTextOnlyDetector(nil))

	files := []entity.RawFile{{Name: "inv.txt", Extension: "txt", Content: []byte("Widget x3 @10")}}
	res, err := r.ParseWithFallback(context.Background(), files, false)
	if err != nil {
		t.Fatalf("fallback: %v", err)
	}
	if res.DetectorUsed != "textonly" {
		t.Fatalf("detector = %s, want textonly", res.DetectorUsed)
	}
	if len(res.Invoices) != 1 || len(res.Invoices[0].Items) == 0 {
		t.Fatalf("unexpected result: %+v", res.Invoices)
	}
}

func TestParseWithFallbackAllFail(t *testing.T) {
	r := detect.NewRegistry(testConfig(), nil, nil)
	r.Register(failingDetector{})

	files := []entity.RawFile{{Name: "inv.txt", Extension: "txt", Content: []byte("x")}}
	_, err := r.ParseWithFallback(context.Background(), files, false)
	var be *common.BatchError
	if !errors.As(err, &be) {
		t.Fatalf("err = %v, want BatchError", err)
	}
	if be.Failures["failing"] != "boom" {
		t.Errorf("failures = %v", be.Failures)
	}
}

func TestListDetectors(t *testing.T) {
	r := newTestRegistry(t)
	ds := r.ListDetectors()
	if len(ds) != 3 {
		t.Fatalf("detectors = %d, want 3 (llm unregistered without extractor)", len(ds))
	}
	want := []string{"blockjson", "markdown", "textonly"}
	for i, d := range ds {
		if d.ID != want[i] {
			t.Errorf("detector[%d] = %s, want %s", i, d.ID, want[i])
		}
		if d.Name == "" || len(d.Extensions) == 0 {
			t.Errorf("detector %s missing metadata", d.ID)
		}
	}
}

// stubExtractor lets the LLM detector run without network access.
type stubExtractor struct {
	fields llm.InvoiceFields
	err    error
}

func (s stubExtractor) ExtractFields(context.Context, llm.ExtractRequest) (llm.InvoiceFields, []byte, error) {
	return s.fields, nil, s.err
}

func TestLLMDetector(t *testing.T) {
	files := []entity.RawFile{{Name: "inv.txt", Extension: "txt", Content: []byte("some scanned text")}}

	unconfigured := detect.NewLLMDetector(nil, nil)
	if got := unconfigured.CanParse(files); got != 0 {
		t.Fatalf("unconfigured llm detector confidence = %v, want 0", got)
	}

	stub := stubExtractor{fields: llm.InvoiceFields{
		SupplierName:  "Acme Ltd",
		InvoiceDate:   "2025-03-15",
		DeclaredTotal: "30.00",
		Items:         []llm.InvoiceItem{{Name: "Widget", Quantity: "3", UnitPrice: "10", Total: "30"}},
	}}
	d := detect.NewLLMDetector(stub, nil)
	if got := d.CanParse(files); got != 0.2 {
		t.Fatalf("configured llm detector confidence = %v, want 0.2", got)
	}

	invoices, err := d.Parse(context.Background(), files)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(invoices) != 1 {
		t.Fatalf("invoices = %d, want 1", len(invoices))
	}
	inv := invoices[0]
	if inv.SupplierName != "Acme Ltd" || inv.InvoiceDate != "2025-03-15" {
		t.Errorf("header = %+v", inv)
	}
	if inv.DeclaredTotal == nil || *inv.DeclaredTotal != 30 {
		t.Errorf("declared_total = %v", inv.DeclaredTotal)
	}
	if inv.CalcTotal != 30 {
		t.Errorf("calc_total = %v, want 30", inv.CalcTotal)
	}
}

func TestLLMDetectorFailureSkipsFile(t *testing.T) {
	d := detect.NewLLMDetector(stubExtractor{err: errors.New("auth")}, nil)
	files := []entity.RawFile{{Name: "inv.txt", Extension: "txt", Content: []byte("x")}}
	invoices, err := d.Parse(context.Background(), files)
	if err != nil {
		t.Fatalf("per-file failure must not abort: %v", err)
	}
	if len(invoices) != 0 {
		t.Fatalf("invoices = %d, want 0", len(invoices))
	}
}
