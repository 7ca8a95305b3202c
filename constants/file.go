package constants

import "strings"

// Source formats the detectors understand.
const (
	FormatBlockJSON = "BLOCK_JSON"
	FormatMarkdown  = "MARKDOWN"
	FormatText      = "TEXT"
)

// SourceFormats lists every supported input shape.
var SourceFormats = []string{FormatBlockJSON, FormatMarkdown, FormatText}

// AllowedExtensions holds the default allowed file extensions for ingestion.
var AllowedExtensions = map[string]struct{}{
	"json":     {},
	"md":       {},
	"markdown": {},
	"txt":      {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a file extension to a source format, or "" if unsupported.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "json":
		return FormatBlockJSON
	case "md", "markdown":
		return FormatMarkdown
	case "txt", "text":
		return FormatText
	default:
		return ""
	}
}
