package normalize

import (
	"regexp"
	"strconv"
	"time"

	"golang.org/x/text/width"
)

var (
	reDateCJK = regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日`)
	reDateYMD = regexp.MustCompile(`(\d{4})[-/.](\d{1,2})[-/.](\d{1,2})`)
	reDateDMY = regexp.MustCompile(`(\d{1,2})[-/.](\d{1,2})[-/.](\d{4})`)
)

// NormalizeDate reconciles the date formats OCR output tends to carry and
// returns the ISO form YYYY-MM-DD, or "" when nothing parses. For ambiguous
// two-digit-first forms the rule is: first component >12 means day-first.
// Never guesses a century.
func NormalizeDate(raw string) string {
	if raw == "" {
		return ""
	}
	raw = width.Narrow.String(raw)

	if m := reDateCJK.FindStringSubmatch(raw); m != nil {
		return formatYMD(m[1], m[2], m[3])
	}
	if m := reDateYMD.FindStringSubmatch(raw); m != nil {
		return formatYMD(m[1], m[2], m[3])
	}
	if m := reDateDMY.FindStringSubmatch(raw); m != nil {
		first, _ := strconv.Atoi(m[1])
		if first > 12 {
			return formatYMD(m[3], m[2], m[1]) // day-first
		}
		return formatYMD(m[3], m[1], m[2]) // month-first
	}
	return ""
}

func formatYMD(ys, ms, ds string) string {
	y, _ := strconv.Atoi(ys)
	mo, _ := strconv.Atoi(ms)
	d, _ := strconv.Atoi(ds)
	if y < 1000 || mo < 1 || mo > 12 || d < 1 || d > 31 {
		return ""
	}
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	// reject overflowed days like Feb 30
	if t.Year() != y || int(t.Month()) != mo || t.Day() != d {
		return ""
	}
	return t.Format("2006-01-02")
}
