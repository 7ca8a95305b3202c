package llm_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/docufield/invoice-extract/internal/llm"
)

func TestInvoiceSchemaValidate(t *testing.T) {
	schema := llm.InvoiceSchema()
	if len(schema.JSON()) == 0 {
		t.Fatal("schema JSON is empty")
	}

	good := []byte(`{
		"supplier_name": "Acme Ltd",
		"invoice_date": "2025-03-15",
		"currency": "CNY",
		"declared_total": "123.45",
		"items": [{"name": "Widget", "quantity": "3", "unit_price": "10", "total": "30"}]
	}`)
	if err := schema.Validate(good); err != nil {
		t.Fatalf("valid payload rejected: %v", err)
	}

	missingItems := []byte(`{"supplier_name": "Acme Ltd"}`)
	if err := schema.Validate(missingItems); err == nil {
		t.Fatalf("payload without items should fail validation")
	}

	badDate := []byte(`{"invoice_date": "15/03/2025", "items": []}`)
	if err := schema.Validate(badDate); err == nil {
		t.Fatalf("non-ISO date should fail validation")
	}

	numericTotal := []byte(`{"declared_total": 123.45, "items": []}`)
	if err := schema.Validate(numericTotal); err == nil {
		t.Fatalf("numeric total should fail validation, decimals are strings")
	}
}

func TestSanitizeOptionalFields(t *testing.T) {
	raw := []byte(`{
		"vendor": "Acme Ltd",
		"total": 123.45,
		"invoice_date": null,
		"currency": "cny",
		"reasoning": "looks like an invoice",
		"items": [{"name": "Widget", "quantity": 3, "sku": "W-1"}]
	}`)

	cleaned, dropped, err := llm.SanitizeOptionalFields(raw)
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	if len(dropped) == 0 {
		t.Fatalf("expected dropped entries, got none")
	}

	var m map[string]any
	if err := json.Unmarshal(cleaned, &m); err != nil {
		t.Fatalf("decode cleaned: %v", err)
	}
	if m["supplier_name"] != "Acme Ltd" {
		t.Errorf("vendor not renamed: %v", m["supplier_name"])
	}
	if m["declared_total"] != "123.45" {
		t.Errorf("total not coerced: %v", m["declared_total"])
	}
	if _, ok := m["invoice_date"]; ok {
		t.Errorf("null invoice_date kept")
	}
	if m["currency"] != "CNY" {
		t.Errorf("currency not uppercased: %v", m["currency"])
	}
	if _, ok := m["reasoning"]; ok {
		t.Errorf("unknown key kept")
	}

	items := m["items"].([]any)
	item := items[0].(map[string]any)
	if item["quantity"] != "3" {
		t.Errorf("quantity not coerced: %v", item["quantity"])
	}
	if _, ok := item["sku"]; ok {
		t.Errorf("unknown item key kept")
	}

	// Cleaned output must now pass strict validation.
	if err := llm.InvoiceSchema().Validate(cleaned); err != nil {
		t.Fatalf("sanitized payload still invalid: %v", err)
	}
}

func TestSanitizeAddsMissingItems(t *testing.T) {
	cleaned, _, err := llm.SanitizeOptionalFields([]byte(`{"supplier_name": "Acme"}`))
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(cleaned, &m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := m["items"].([]any); !ok {
		t.Fatalf("items not defaulted to empty array")
	}
}

func TestBuildPrompts(t *testing.T) {
	sys := llm.BuildSystemPrompt(llm.ExtractRequest{DefaultCurrency: "CNY"})
	if !strings.Contains(sys, "CNY") {
		t.Errorf("system prompt missing default currency hint")
	}
	user := llm.BuildUserPrompt("供應商ABC\nWidget x 3 @ 10", "invoice.txt")
	if !strings.Contains(user, "invoice.txt") || !strings.Contains(user, "供應商ABC") {
		t.Errorf("user prompt missing hint or text: %q", user)
	}
}
