package table

import (
	"regexp"
	"strings"
)

var reMarkdownSep = regexp.MustCompile(`^\s*\|?\s*:?-{2,}[\s:|-]*$`)

// ParseMarkdown decodes the first pipe table (header row, |---| separator,
// data rows) found in a block of text. Returns nil when no table is found or
// the table has fewer than 2 rows.
func ParseMarkdown(text string) *Grid {
	lines := strings.Split(text, "\n")
	g := &Grid{}

	for i := 0; i+1 < len(lines); i++ {
		if !strings.Contains(lines[i], "|") {
			continue
		}
		if !reMarkdownSep.MatchString(lines[i+1]) || !strings.Contains(lines[i+1], "-") {
			continue
		}

		g.Rows = append(g.Rows, splitPipeRow(lines[i]))
		for j := i + 2; j < len(lines); j++ {
			if !strings.Contains(lines[j], "|") {
				break
			}
			row := splitPipeRow(lines[j])
			if rowEmpty(row) {
				continue
			}
			g.Rows = append(g.Rows, row)
		}
		break
	}

	if len(g.Rows) < 2 {
		return nil
	}
	g.normalize()
	return g
}

// splitPipeRow splits on |, trims each cell, and drops the leading/trailing
// empty cells produced by outer pipes.
func splitPipeRow(line string) []string {
	parts := strings.Split(line, "|")
	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		cells = append(cells, strings.TrimSpace(p))
	}
	if len(cells) > 0 && cells[0] == "" {
		cells = cells[1:]
	}
	if len(cells) > 0 && cells[len(cells)-1] == "" {
		cells = cells[:len(cells)-1]
	}
	return cells
}
