package detect

import (
	"context"
	"log/slog"

	"github.com/docufield/invoice-extract/constants"
	"github.com/docufield/invoice-extract/internal/entity"
	"github.com/docufield/invoice-extract/internal/table"
	"github.com/docufield/invoice-extract/internal/textblock"
)

// MarkdownDetector handles Markdown and plain-text files that carry a
// pipe-table of line items.
type MarkdownDetector struct {
	log *slog.Logger
}

func NewMarkdownDetector(logger *slog.Logger) *MarkdownDetector {
	if logger == nil {
		logger = slog.Default()
	}
	return &MarkdownDetector{log: logger}
}

func (d *MarkdownDetector) ID() string           { return "markdown" }
func (d *MarkdownDetector) Name() string         { return "Markdown table" }
func (d *MarkdownDetector) Extensions() []string { return []string{"md", "markdown", "txt"} }

func (d *MarkdownDetector) CanParse(files []entity.RawFile) float64 {
	best := 0.0
	for _, f := range files {
		if fm := fileFormat(f); fm != constants.FormatMarkdown && fm != constants.FormatText {
			continue
		}
		if len(f.Content) == 0 {
			continue
		}
		g := table.ParseMarkdown(string(f.Content))
		if g == nil {
			continue
		}
		score := 0.4 + 0.4*table.ScoreAsItemTable(g)
		if score > best {
			best = score
		}
	}
	if best > 1.0 {
		best = 1.0
	}
	return best
}

func (d *MarkdownDetector) Parse(ctx context.Context, files []entity.RawFile) ([]entity.Invoice, error) {
	invoices := make([]entity.Invoice, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return invoices, err
		}
		if fm := fileFormat(f); fm != constants.FormatMarkdown && fm != constants.FormatText {
			continue
		}
		if len(f.Content) == 0 {
			continue
		}
		text := string(f.Content)
		inv := entity.Invoice{SourceFile: f.Name, Items: []entity.LineItem{}}

		if g := table.ParseMarkdown(text); g != nil {
			inv.Items = table.ExtractItems(g, nil)
		}
		applyHeader(&inv, textblock.ExtractHeader(text))
		if len(inv.Items) == 0 {
			inv.Items = textblock.ExtractItems(text)
		}
		inv.RecalcTotal()

		d.log.Debug("detect.markdown.parsed", "file", f.Name, "items", len(inv.Items))
		invoices = append(invoices, inv)
	}
	return invoices, nil
}
