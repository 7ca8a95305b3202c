package textblock

import (
	"sort"
	"strings"

	"github.com/docufield/invoice-extract/internal/entity"
)

// rowGroupThreshold is the vertical pixel delta below which consecutive blocks
// are considered one visual row.
const rowGroupThreshold = 50.0

// GroupBlocksByPosition is the fallback used when the regex strategies find
// nothing: blocks are sorted by their vertical bbox coordinate, consecutive
// blocks closer than the threshold form one row, and each row's concatenated
// text runs through the columnar-line heuristic.
func GroupBlocksByPosition(blocks []entity.Block) []entity.LineItem {
	boxed := make([]entity.Block, 0, len(blocks))
	for _, b := range blocks {
		if b.HasBBox() && strings.TrimSpace(b.Content) != "" {
			boxed = append(boxed, b)
		}
	}
	if len(boxed) == 0 {
		return nil
	}
	sort.SliceStable(boxed, func(i, j int) bool { return boxed[i].Top() < boxed[j].Top() })

	var rows []string
	current := []string{boxed[0].Content}
	lastTop := boxed[0].Top()
	for _, b := range boxed[1:] {
		if b.Top()-lastTop < rowGroupThreshold {
			current = append(current, b.Content)
		} else {
			rows = append(rows, strings.Join(current, " "))
			current = []string{b.Content}
		}
		lastTop = b.Top()
	}
	rows = append(rows, strings.Join(current, " "))

	var items []entity.LineItem
	for _, row := range rows {
		row = strings.TrimSpace(row)
		if row == "" || reSummaryLine.MatchString(row) {
			continue
		}
		if item, ok := parseColumnarLine(row); ok {
			items = append(items, item)
		}
	}
	return dedupItems(items)
}
