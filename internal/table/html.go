package table

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type activeSpan struct {
	text      string
	remaining int
}

// ParseHTML decodes the first <table> element of an HTML fragment into a Grid.
// colspan cells are expanded by duplicating the cell text into the spanned
// logical columns; rowspan cells inject their text into the same column of the
// following rows. Returns nil when there is no table or no non-empty row.
func ParseHTML(html string) *Grid {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	tbl := doc.Find("table").First()
	if tbl.Length() == 0 {
		return nil
	}

	pending := map[int]*activeSpan{}
	g := &Grid{}

	tbl.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var row []string
		col := 0

		// inject text from rowspans that cover the current column
		inject := func() {
			for {
				sp, ok := pending[col]
				if !ok {
					break
				}
				row = append(row, sp.text)
				sp.remaining--
				if sp.remaining == 0 {
					delete(pending, col)
				}
				col++
			}
		}

		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			inject()
			text := strings.TrimSpace(cell.Text())
			cspan := spanAttr(cell, "colspan")
			rspan := spanAttr(cell, "rowspan")
			for i := 0; i < cspan; i++ {
				row = append(row, text)
				if rspan > 1 {
					pending[col] = &activeSpan{text: text, remaining: rspan - 1}
				}
				col++
			}
		})
		inject()

		if !rowEmpty(row) {
			g.Rows = append(g.Rows, row)
		}
	})

	if len(g.Rows) == 0 {
		return nil
	}
	g.normalize()
	return g
}

func spanAttr(cell *goquery.Selection, name string) int {
	v := cell.AttrOr(name, "1")
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return 1
	}
	// OCR output sometimes carries absurd spans; cap to keep grids sane
	if n > 64 {
		return 64
	}
	return n
}

func rowEmpty(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
