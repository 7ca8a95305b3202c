package detect

import (
	"context"
	"log/slog"

	"github.com/docufield/invoice-extract/constants"
	"github.com/docufield/invoice-extract/internal/entity"
	"github.com/docufield/invoice-extract/internal/ingest"
	"github.com/docufield/invoice-extract/internal/textblock"
)

// TextOnlyDetector targets documents that have text blocks but no table
// blocks. It deliberately discounts itself when a table block is present so a
// table-aware detector wins selection.
type TextOnlyDetector struct {
	log *slog.Logger
}

func NewTextOnlyDetector(logger *slog.Logger) *TextOnlyDetector {
	if logger == nil {
		logger = slog.Default()
	}
	return &TextOnlyDetector{log: logger}
}

func (d *TextOnlyDetector) ID() string           { return "textonly" }
func (d *TextOnlyDetector) Name() string         { return "Text blocks" }
func (d *TextOnlyDetector) Extensions() []string { return []string{"json", "txt", "md", "markdown"} }

func (d *TextOnlyDetector) CanParse(files []entity.RawFile) float64 {
	best := 0.0
	for _, f := range files {
		if fileFormat(f) == "" || len(f.Content) == 0 {
			continue
		}
		score := 0.0
		if fileFormat(f) == constants.FormatBlockJSON {
			blocks := ingest.ParseBlocks(f.Content)
			if len(blocks) == 0 {
				continue
			}
			hasTable := false
			for _, b := range blocks {
				if ingest.IsTableBlock(b) {
					hasTable = true
					break
				}
			}
			score = 0.6
			if hasTable {
				score -= 0.2
			}
		} else {
			score = 0.45
		}
		if score > best {
			best = score
		}
	}
	return best
}

func (d *TextOnlyDetector) Parse(ctx context.Context, files []entity.RawFile) ([]entity.Invoice, error) {
	invoices := make([]entity.Invoice, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return invoices, err
		}
		if fileFormat(f) == "" || len(f.Content) == 0 {
			continue
		}

		var blocks []entity.Block
		text := string(f.Content)
		if fileFormat(f) == constants.FormatBlockJSON {
			blocks = ingest.ParseBlocks(f.Content)
			if len(blocks) == 0 {
				d.log.Warn("detect.textonly.no_blocks", "file", f.Name)
				continue
			}
			text = ingest.TextOfBlocks(blocks)
		}

		inv := entity.Invoice{SourceFile: f.Name, Items: []entity.LineItem{}}
		applyHeader(&inv, textblock.ExtractHeader(text))
		inv.Items = textblock.ExtractItems(text)
		if len(inv.Items) == 0 && len(blocks) > 0 {
			inv.Items = textblock.GroupBlocksByPosition(blocks)
		}
		inv.RecalcTotal()

		d.log.Debug("detect.textonly.parsed", "file", f.Name, "items", len(inv.Items))
		invoices = append(invoices, inv)
	}
	return invoices, nil
}
