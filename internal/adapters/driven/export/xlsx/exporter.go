// Package xlsx renders analysis results to an Excel workbook, one
// summary row per document plus a flat line-item sheet.
package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/orderlens/orderlens/internal/core/domain"
)

const (
	documentsSheet = "Documents"
	itemsSheet     = "Line Items"
)

// Exporter writes analyses to XLSX workbooks.
type Exporter struct{}

// New creates a new XLSX exporter.
func New() *Exporter {
	return &Exporter{}
}

// Export returns an XLSX workbook as bytes containing all analyses.
func (e *Exporter) Export(analyses []domain.Analysis) ([]byte, error) {
	f := excelize.NewFile()

	if err := e.writeDocumentsSheet(f, analyses); err != nil {
		return nil, err
	}
	if err := e.writeItemsSheet(f, analyses); err != nil {
		return nil, err
	}

	// Drop the default sheet excelize creates.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}
	if index, err := f.GetSheetIndex(documentsSheet); err == nil {
		f.SetActiveSheet(index)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *Exporter) writeDocumentsSheet(f *excelize.File, analyses []domain.Analysis) error {
	if _, err := f.NewSheet(documentsSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	headers := []string{
		"Analyzed At",
		"Type",
		"Subject",
		"From",
		"Items",
		"Total",
		"Currency",
		"Source",
	}
	if err := writeRow(f, documentsSheet, 1, headers); err != nil {
		return err
	}

	for i, a := range analyses {
		row := []any{
			a.AnalyzedAt.Format("2006-01-02 15:04:05"),
			string(a.Tag),
			a.Subject,
			a.From,
			len(a.Items),
			a.Totals.Amount,
			a.Totals.Currency,
			a.URI,
		}
		if err := writeRow(f, documentsSheet, i+2, row); err != nil {
			return err
		}
	}

	_ = f.SetColWidth(documentsSheet, "A", "A", 20)
	_ = f.SetColWidth(documentsSheet, "B", "B", 10)
	_ = f.SetColWidth(documentsSheet, "C", "C", 40)
	_ = f.SetColWidth(documentsSheet, "D", "D", 28)
	_ = f.SetColWidth(documentsSheet, "F", "G", 12)
	_ = f.SetColWidth(documentsSheet, "H", "H", 48)

	return nil
}

func (e *Exporter) writeItemsSheet(f *excelize.File, analyses []domain.Analysis) error {
	if _, err := f.NewSheet(itemsSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	headers := []string{
		"Subject",
		"Type",
		"Product",
		"Quantity",
		"Unit Price",
		"Total",
	}
	if err := writeRow(f, itemsSheet, 1, headers); err != nil {
		return err
	}

	row := 2
	for _, a := range analyses {
		for _, item := range a.Items {
			values := []any{
				a.Subject,
				string(a.Tag),
				item.Name,
				item.Quantity,
				item.UnitPrice,
				item.Total,
			}
			if err := writeRow(f, itemsSheet, row, values); err != nil {
				return err
			}
			row++
		}
	}

	_ = f.SetColWidth(itemsSheet, "A", "A", 40)
	_ = f.SetColWidth(itemsSheet, "C", "C", 36)
	_ = f.SetColWidth(itemsSheet, "D", "F", 12)

	return nil
}

// writeRow writes one row of values starting at column A.
func writeRow[T any](f *excelize.File, sheet string, row int, values []T) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set cell %s: %w", cell, err)
		}
	}
	return nil
}
