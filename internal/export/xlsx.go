package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/docufield/invoice-extract/internal/entity"
)

// InvoicesXLSX renders a batch of extracted invoices as an XLSX workbook: one
// summary sheet with a row per invoice, one sheet with every line item.
func InvoicesXLSX(invoices []entity.Invoice, logger *slog.Logger) ([]byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	f := excelize.NewFile()
	const (
		summarySheet = "Invoices"
		itemsSheet   = "Line Items"
	)
	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(itemsSheet); err != nil {
		return nil, fmt.Errorf("new sheet: %w", err)
	}
	if idx, _ := f.GetSheetIndex(summarySheet); idx != -1 {
		f.SetActiveSheet(idx)
	}

	writeRow := func(sheet string, row int, values []any) {
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	writeRow(summarySheet, 1, []any{
		"Source File", "Supplier", "Customer", "Invoice No.", "Date",
		"Currency", "Declared Total", "Calc Total", "Items",
	})
	itemRow := 2
	writeRow(itemsSheet, 1, []any{
		"Source File", "Code", "Name", "Qty", "Unit", "Unit Price", "Total", "Remark",
	})

	totalItems := 0
	for i, inv := range invoices {
		declared := ""
		if inv.DeclaredTotal != nil {
			declared = fmt.Sprintf("%.2f", *inv.DeclaredTotal)
		}
		writeRow(summarySheet, i+2, []any{
			inv.SourceFile,
			inv.SupplierName,
			inv.CustomerName,
			inv.InvoiceNumber,
			inv.InvoiceDate,
			inv.Currency,
			declared,
			inv.CalcTotal,
			len(inv.Items),
		})

		for _, it := range inv.Items {
			writeRow(itemsSheet, itemRow, []any{
				inv.SourceFile,
				it.Code,
				truncate(it.Name, 140),
				it.Qty,
				it.Unit,
				it.UnitPrice,
				it.Total,
				it.Metadata["remark"],
			})
			itemRow++
			totalItems++
		}
	}

	_ = f.SetColWidth(summarySheet, "A", "A", 32)
	_ = f.SetColWidth(summarySheet, "B", "C", 24)
	_ = f.SetColWidth(summarySheet, "D", "E", 16)
	_ = f.SetColWidth(summarySheet, "F", "I", 12)
	_ = f.SetColWidth(itemsSheet, "A", "A", 32)
	_ = f.SetColWidth(itemsSheet, "B", "C", 28)
	_ = f.SetColWidth(itemsSheet, "D", "H", 12)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	logger.Info("export.xlsx.ok",
		"invoices", len(invoices),
		"items", totalItems,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// truncate caps s at n runes, not bytes, so multi-byte names are never cut
// mid-character.
func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return string(r[:1])
	}
	return string(r[:n-1]) + "…"
}
