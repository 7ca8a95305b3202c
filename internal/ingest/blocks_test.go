package ingest_test

import (
	"testing"

	"github.com/docufield/invoice-extract/internal/ingest"
)

func TestParseBlocks_RootLevel(t *testing.T) {
	blocks := ingest.ParseBlocks([]byte(`{
		"parsing_res_list": [
			{"block_label": "text", "block_content": "供应商: ABC", "block_bbox": [0, 10, 100, 30]},
			{"block_label": "table", "block_content": "<table><tr><td>x</td></tr></table>"}
		]
	}`))
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if !blocks[0].HasBBox() || blocks[0].Top() != 10 {
		t.Fatalf("bbox decoding wrong: %+v", blocks[0])
	}
	if !ingest.IsTableBlock(blocks[1]) || ingest.IsTableBlock(blocks[0]) {
		t.Fatal("table block detection wrong")
	}
}

func TestParseBlocks_NestedUnderResult(t *testing.T) {
	blocks := ingest.ParseBlocks([]byte(`{"result": {"parsing_res_list": [
		{"block_label": "text", "block_content": "hello"}
	]}}`))
	if len(blocks) != 1 || blocks[0].Content != "hello" {
		t.Fatalf("nested decoding failed: %+v", blocks)
	}
}

func TestParseBlocks_DegradesGracefully(t *testing.T) {
	for _, in := range []string{
		"not json at all",
		`{"something": "else"}`,
		`{"parsing_res_list": "not an array"}`,
		`{"parsing_res_list": []}`,
		`{"parsing_res_list": [{"block_label": "text", "block_content": "   "}]}`,
	} {
		if got := ingest.ParseBlocks([]byte(in)); got != nil {
			t.Fatalf("input %q: expected nil, got %+v", in, got)
		}
	}
}

func TestTextOfBlocks_SkipsTables(t *testing.T) {
	blocks := ingest.ParseBlocks([]byte(`{"parsing_res_list": [
		{"block_label": "text", "block_content": "line one"},
		{"block_label": "table", "block_content": "<table></table>"},
		{"block_label": "paragraph", "block_content": "line two"}
	]}`))
	if got := ingest.TextOfBlocks(blocks); got != "line one\nline two" {
		t.Fatalf("unexpected text: %q", got)
	}
}
