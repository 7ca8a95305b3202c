package normalize

import (
	"regexp"
	"strings"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiSpace = regexp.MustCompile(` {2,}`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)

	reSandwichO = regexp.MustCompile(`(\d)[Oo](\d)`)
	reSandwichL = regexp.MustCompile(`(\d)[lI](\d)`)

	reAnyDigit = regexp.MustCompile(`\d`)
)

// FixOCRDigits repairs confusable glyphs inside numeric runs. Substitution is
// conservative: a letter is only replaced when sandwiched between digits, so
// real words next to numbers stay intact.
func FixOCRDigits(s string) string {
	for reSandwichO.MatchString(s) {
		s = reSandwichO.ReplaceAllString(s, "${1}0${2}")
	}
	for reSandwichL.MatchString(s) {
		s = reSandwichL.ReplaceAllString(s, "${1}1${2}")
	}
	return s
}

// FixCodeGlyphs applies the aggressive variant used for item codes: codes are
// short alphanumeric tokens, so as long as the token carries at least one real
// digit every confusable letter is swapped.
func FixCodeGlyphs(s string) string {
	if !reAnyDigit.MatchString(s) {
		return s
	}
	r := strings.NewReplacer("O", "0", "o", "0", "l", "1", "I", "1")
	return r.Replace(s)
}

// CleanText collapses noisy whitespace from OCR output. Conservative: keeps
// line breaks, collapses runs of blank lines into a single blank line.
func CleanText(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reTabs.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
