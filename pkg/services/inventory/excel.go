package inventory

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ft-tools/forest-atlas/pkg/models/domain"
)

// ReadXLSX reads a strict inventory from the first sheet of an XLSX
// workbook. The sheet follows the same column layout as the CSV format.
func ReadXLSX(r io.Reader, name string) (*domain.ForestInventory, error) {
	rows, issues, err := ParseXLSXLenient(r)
	if err != nil {
		return nil, err
	}
	if len(issues) > 0 {
		first := issues[0]
		return nil, fmt.Errorf("row %d (plot %d, tree %d): %s: %s",
			first.RowIndex, first.PlotID, first.TreeID, first.Field, first.Message)
	}
	return RowsToInventory(name, rows), nil
}

// ParseXLSXLenient parses the first sheet of an XLSX workbook,
// collecting every validation issue. Workbook format errors are fatal.
func ParseXLSXLenient(r io.Reader) ([]EditableRow, []domain.ValidationIssue, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}

	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(cells) == 0 {
		return nil, nil, fmt.Errorf("sheet %q has no header row", sheets[0])
	}

	cols, err := mapColumns(cells[0])
	if err != nil {
		return nil, nil, err
	}
	return parseRecords(cols, cells[1:])
}

// WriteXLSX writes the inventory's tree records to a single-sheet
// XLSX workbook.
func WriteXLSX(inv *domain.ForestInventory, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := make([]interface{}, len(csvColumns))
	for i, name := range csvColumns {
		header[i] = name
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for i, row := range InventoryToRows(inv) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{
			row.PlotID,
			row.TreeID,
			row.SpeciesCode,
			row.SpeciesName,
			row.DBH,
			optionalCell(row.Height),
			optionalCell(row.CrownRatio),
			row.Status,
			row.ExpansionFactor,
			optionalIntCell(row.Age),
			optionalCell(row.Defect),
			optionalCell(row.PlotSizeAcres),
			optionalCell(row.SlopePercent),
			optionalCell(row.AspectDegrees),
			optionalCell(row.ElevationFt),
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func optionalCell(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func optionalIntCell(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
