package detect

import (
	"context"
	"log/slog"

	"github.com/docufield/invoice-extract/constants"
	"github.com/docufield/invoice-extract/internal/common"
	"github.com/docufield/invoice-extract/internal/entity"
	"github.com/docufield/invoice-extract/internal/ingest"
	"github.com/docufield/invoice-extract/internal/table"
	"github.com/docufield/invoice-extract/internal/textblock"
)

// BlockJSONDetector handles structured layout-analysis output: JSON files
// carrying a parsing_res_list of labeled blocks, with HTML tables embedded in
// table-labeled blocks.
type BlockJSONDetector struct {
	cfg common.ParserConfig
	log *slog.Logger
}

func NewBlockJSONDetector(cfg common.ParserConfig, logger *slog.Logger) *BlockJSONDetector {
	if logger == nil {
		logger = slog.Default()
	}
	return &BlockJSONDetector{cfg: cfg, log: logger}
}

func (d *BlockJSONDetector) ID() string           { return "blockjson" }
func (d *BlockJSONDetector) Name() string         { return "Structured block JSON" }
func (d *BlockJSONDetector) Extensions() []string { return []string{"json"} }

func (d *BlockJSONDetector) CanParse(files []entity.RawFile) float64 {
	best := 0.0
	for _, f := range files {
		if fileFormat(f) != constants.FormatBlockJSON || len(f.Content) == 0 {
			continue
		}
		blocks := ingest.ParseBlocks(f.Content)
		if len(blocks) == 0 {
			continue
		}
		score := 0.5
		hasTable, hasText := false, false
		for _, b := range blocks {
			if ingest.IsTableBlock(b) {
				hasTable = true
			} else {
				hasText = true
			}
		}
		if hasTable {
			score += 0.3
		}
		if hasText {
			score += 0.1
		}
		if score > best {
			best = score
		}
	}
	if best > 1.0 {
		best = 1.0
	}
	return best
}

func (d *BlockJSONDetector) Parse(ctx context.Context, files []entity.RawFile) ([]entity.Invoice, error) {
	invoices := make([]entity.Invoice, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return invoices, err
		}
		if fileFormat(f) != constants.FormatBlockJSON {
			continue
		}
		blocks := ingest.ParseBlocks(f.Content)
		if len(blocks) == 0 {
			d.log.Warn("detect.blockjson.no_blocks", "file", f.Name)
			continue
		}
		invoices = append(invoices, d.parseBlocks(f, blocks))
	}
	return invoices, nil
}

func (d *BlockJSONDetector) parseBlocks(f entity.RawFile, blocks []entity.Block) entity.Invoice {
	inv := entity.Invoice{SourceFile: f.Name, Items: []entity.LineItem{}}

	grids := make([]*table.Grid, 0, 2)
	for _, b := range blocks {
		if !ingest.IsTableBlock(b) {
			continue
		}
		if g := table.ParseHTML(b.Content); g != nil {
			grids = append(grids, g)
		}
	}
	if best := table.SelectBest(grids, d.cfg.TableThreshold); best != nil {
		inv.Items = table.ExtractItems(best, nil)
	}

	text := ingest.TextOfBlocks(blocks)
	applyHeader(&inv, textblock.ExtractHeader(text))

	if len(inv.Items) == 0 {
		inv.Items = textblock.ExtractItems(text)
	}
	if len(inv.Items) == 0 {
		inv.Items = textblock.GroupBlocksByPosition(blocks)
	}
	inv.RecalcTotal()

	d.log.Debug("detect.blockjson.parsed",
		"file", f.Name, "blocks", len(blocks), "tables", len(grids), "items", len(inv.Items))
	return inv
}
