package table

import (
	"regexp"
	"strings"
)

// keyword tiers for item-table likelihood scoring
var (
	highKeywords = []string{
		"qty", "quantity", "price", "amount", "total",
		"数量", "數量", "单价", "單價", "金额", "金額", "合计", "合計",
	}
	mediumKeywords = []string{
		"item", "product", "description", "code",
		"品名", "名称", "名稱", "款号", "款號", "货号", "貨號",
	}
	lowKeywords = []string{
		"unit", "size", "color", "colour",
		"单位", "單位", "尺码", "尺碼", "颜色", "顏色",
	}
)

var reNumericCell = regexp.MustCompile(`^\s*[¥￥$€£]?\s*-?\d+(,\d{3})*(\.\d+)?\s*$`)

// ScoreAsItemTable rates how likely a grid is the invoice's line-item table.
// Not a probability: purely a ranking signal in [0,1].
func ScoreAsItemTable(g *Grid) float64 {
	if g == nil || len(g.Rows) == 0 {
		return 0
	}
	var score float64

	for _, cell := range g.Header() {
		low := strings.ToLower(strings.TrimSpace(cell))
		if low == "" {
			continue
		}
		switch {
		case containsAny(low, highKeywords):
			score += 0.15
		case containsAny(low, mediumKeywords):
			score += 0.08
		case containsAny(low, lowKeywords):
			score += 0.03
		}
	}

	rows := float64(len(g.DataRows()))
	bonus := rows * 0.02
	if bonus > 0.2 {
		bonus = 0.2
	}
	score += bonus

	if hasNumericCell(g.DataRows()) {
		score += 0.15
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// SelectBest returns the grid with the highest item-table score, or nil when
// no grid clears minScore.
func SelectBest(grids []*Grid, minScore float64) *Grid {
	var best *Grid
	bestScore := -1.0
	for _, g := range grids {
		if g == nil {
			continue
		}
		if s := ScoreAsItemTable(g); s > bestScore {
			best, bestScore = g, s
		}
	}
	if bestScore < minScore {
		return nil
	}
	return best
}

func containsAny(s string, kws []string) bool {
	for _, kw := range kws {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func hasNumericCell(rows [][]string) bool {
	for _, row := range rows {
		for _, c := range row {
			if c != "" && reNumericCell.MatchString(c) {
				return true
			}
		}
	}
	return false
}
