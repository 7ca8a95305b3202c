// Package ingest turns caller-side inputs (directories, files, decoded JSON)
// into the RawFile and Block shapes the extraction core consumes.
package ingest

import (
	"encoding/json"
	"strings"

	"github.com/docufield/invoice-extract/internal/entity"
)

// ParseBlocks decodes the layout-analysis wire shape: a root object carrying a
// parsing_res_list array, optionally nested one level under "result" or
// "data". Any deviation from the shape degrades to an empty block list rather
// than an error.
func ParseBlocks(content []byte) []entity.Block {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(content, &root); err != nil {
		return nil
	}
	raw, ok := root["parsing_res_list"]
	if !ok {
		for _, key := range []string{"result", "data"} {
			nested, exists := root[key]
			if !exists {
				continue
			}
			var inner map[string]json.RawMessage
			if err := json.Unmarshal(nested, &inner); err != nil {
				continue
			}
			if r, found := inner["parsing_res_list"]; found {
				raw, ok = r, true
				break
			}
		}
	}
	if !ok {
		return nil
	}

	var blocks []entity.Block
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return nil
	}
	out := blocks[:0]
	for _, b := range blocks {
		if strings.TrimSpace(b.Content) == "" {
			continue
		}
		out = append(out, b)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// IsTableBlock reports whether a block's label marks a table.
func IsTableBlock(b entity.Block) bool {
	return strings.Contains(strings.ToLower(b.Label), "table")
}

// TextOfBlocks concatenates the content of all non-table blocks in order.
func TextOfBlocks(blocks []entity.Block) string {
	var sb strings.Builder
	for _, b := range blocks {
		if IsTableBlock(b) {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(b.Content)
	}
	return sb.String()
}
