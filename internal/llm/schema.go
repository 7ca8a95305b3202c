package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema bundles the two forms the invoice schema is needed in: the raw JSON
// handed to the model as a structured-output constraint, and the compiled form
// used to check what comes back.
type Schema struct {
	raw      []byte
	compiled *jsonschema.Schema
}

// The schema is assembled from literals below, so compiling once at init is
// safe the same way regexp.MustCompile is.
var invoiceSchema = mustCompileSchema(buildInvoiceSchemaDoc())

// InvoiceSchema returns the shared invoice extraction schema.
func InvoiceSchema() *Schema { return invoiceSchema }

// JSON returns the schema as a JSON document for prompt embedding.
func (s *Schema) JSON() []byte { return s.raw }

// Validate checks a model response against the schema.
func (s *Schema) Validate(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if err := s.compiled.Validate(v); err != nil {
		return fmt.Errorf("response violates invoice schema: %w", err)
	}
	return nil
}

func mustCompileSchema(doc map[string]any) *Schema {
	raw, err := json.Marshal(doc)
	if err != nil {
		panic(fmt.Sprintf("llm: marshal invoice schema: %v", err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("invoice.json", bytes.NewReader(raw)); err != nil {
		panic(fmt.Sprintf("llm: add invoice schema: %v", err))
	}
	compiled, err := compiler.Compile("invoice.json")
	if err != nil {
		panic(fmt.Sprintf("llm: compile invoice schema: %v", err))
	}
	return &Schema{raw: raw, compiled: compiled}
}

// buildInvoiceSchemaDoc assembles the JSON-Schema (draft 2020-12 subset) as a
// generic map. Monetary values and quantities are decimal strings, never
// numbers, so the model cannot smuggle float artifacts in.
func buildInvoiceSchemaDoc() map[string]any {
	itemProps := map[string]any{
		"code":       map[string]any{"type": "string"},
		"name":       map[string]any{"type": "string", "minLength": 1},
		"quantity":   decimalProp(),
		"unit_price": decimalProp(),
		"total":      decimalProp(),
		"remark":     map[string]any{"type": "string"},
	}

	props := map[string]any{
		"supplier_name":  map[string]any{"type": "string"},
		"customer_name":  map[string]any{"type": "string"},
		"invoice_number": map[string]any{"type": "string"},
		"invoice_date":   map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
		"currency":       map[string]any{"type": "string", "minLength": 3, "maxLength": 3},
		"declared_total": decimalProp(),
		"items": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties":           itemProps,
				"required":             []string{"name"},
			},
		},
		"confidence": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             []string{"items"},
	}
}

func decimalProp() map[string]any {
	return map[string]any{
		"type":    "string",
		"pattern": `^-?\d+(\.\d{1,4})?$`, // quantities may carry four decimal places
	}
}
