package llm

import (
	"fmt"
	"strings"
)

// BuildSystemPrompt sets the extraction contract for the model.
func BuildSystemPrompt(req ExtractRequest) string {
	var b strings.Builder
	b.WriteString("You are an invoice field extraction engine. ")
	b.WriteString("You receive noisy OCR text of a purchase invoice, possibly mixing Chinese and English. ")
	b.WriteString("Extract the supplier, customer, invoice number, date, currency, declared total and every line item. ")
	b.WriteString("Dates must be formatted YYYY-MM-DD. Monetary values and quantities must be plain decimal strings without currency symbols or thousands separators. ")
	if req.DefaultCurrency != "" {
		fmt.Fprintf(&b, "If the document carries no currency marker, assume %s. ", req.DefaultCurrency)
	}
	b.WriteString("Never invent values: omit any field you cannot read from the text.")
	return b.String()
}

// BuildUserPrompt wraps the OCR text with light provenance hints.
func BuildUserPrompt(text, filenameHint string) string {
	var b strings.Builder
	if filenameHint != "" {
		fmt.Fprintf(&b, "Filename: %s\n\n", filenameHint)
	}
	b.WriteString("OCR text:\n")
	b.WriteString(text)
	return b.String()
}
