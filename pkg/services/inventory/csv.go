package inventory

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ft-tools/forest-atlas/pkg/models/domain"
)

// csvColumns is the canonical column order for tree records.
var csvColumns = []string{
	"plot_id", "tree_id", "species_code", "species_name", "dbh",
	"height", "crown_ratio", "status", "expansion_factor", "age",
	"defect", "plot_size_acres", "slope_percent", "aspect_degrees",
	"elevation_ft",
}

var requiredColumns = []string{
	"plot_id", "tree_id", "species_code", "species_name", "dbh",
	"status", "expansion_factor",
}

// ReadCSV reads a strict inventory from CSV: the first validation
// failure (or unknown status) is an error.
func ReadCSV(r io.Reader, name string) (*domain.ForestInventory, error) {
	rows, issues, err := parseCSV(r)
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

// ParseCSVLenient parses CSV collecting every validation issue instead
// of failing on the first. CSV format errors (missing columns, type
// mismatches) are still fatal. All rows are returned, valid or not.
func ParseCSVLenient(r io.Reader) ([]EditableRow, []domain.ValidationIssue, error) {
	return parseCSV(r)
}

func parseCSV(r io.Reader) ([]EditableRow, []domain.ValidationIssue, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols, err := mapColumns(header)
	if err != nil {
		return nil, nil, err
	}

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		records = append(records, record)
	}

	return parseRecords(cols, records)
}

// mapColumns resolves header names to field indexes, checking that
// every required column is present.
func mapColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range requiredColumns {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}
	return cols, nil
}

// parseRecords converts raw string records into editable rows plus all
// validation issues found. Type mismatches are fatal.
func parseRecords(cols map[string]int, records [][]string) ([]EditableRow, []domain.ValidationIssue, error) {
	rows := make([]EditableRow, 0, len(records))
	for rowIndex, record := range records {
		row, err := parseRecord(cols, record, rowIndex)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", rowIndex, err)
		}
		rows = append(rows, row)
	}
	return rows, ValidateRows(rows), nil
}

func parseRecord(cols map[string]int, record []string, rowIndex int) (EditableRow, error) {
	cell := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	row := EditableRow{RowIndex: rowIndex}

	var err error
	if row.PlotID, err = strconv.Atoi(cell("plot_id")); err != nil {
		return row, fmt.Errorf("invalid plot_id %q", cell("plot_id"))
	}
	if row.TreeID, err = strconv.Atoi(cell("tree_id")); err != nil {
		return row, fmt.Errorf("invalid tree_id %q", cell("tree_id"))
	}
	row.SpeciesCode = cell("species_code")
	row.SpeciesName = cell("species_name")
	if row.DBH, err = strconv.ParseFloat(cell("dbh"), 64); err != nil {
		return row, fmt.Errorf("invalid dbh %q", cell("dbh"))
	}
	row.Status = cell("status")
	if row.ExpansionFactor, err = strconv.ParseFloat(cell("expansion_factor"), 64); err != nil {
		return row, fmt.Errorf("invalid expansion_factor %q", cell("expansion_factor"))
	}

	if row.Height, err = optionalFloat(cell("height")); err != nil {
		return row, fmt.Errorf("invalid height %q", cell("height"))
	}
	if row.CrownRatio, err = optionalFloat(cell("crown_ratio")); err != nil {
		return row, fmt.Errorf("invalid crown_ratio %q", cell("crown_ratio"))
	}
	if row.Age, err = optionalInt(cell("age")); err != nil {
		return row, fmt.Errorf("invalid age %q", cell("age"))
	}
	if row.Defect, err = optionalFloat(cell("defect")); err != nil {
		return row, fmt.Errorf("invalid defect %q", cell("defect"))
	}
	if row.PlotSizeAcres, err = optionalFloat(cell("plot_size_acres")); err != nil {
		return row, fmt.Errorf("invalid plot_size_acres %q", cell("plot_size_acres"))
	}
	if row.SlopePercent, err = optionalFloat(cell("slope_percent")); err != nil {
		return row, fmt.Errorf("invalid slope_percent %q", cell("slope_percent"))
	}
	if row.AspectDegrees, err = optionalFloat(cell("aspect_degrees")); err != nil {
		return row, fmt.Errorf("invalid aspect_degrees %q", cell("aspect_degrees"))
	}
	if row.ElevationFt, err = optionalFloat(cell("elevation_ft")); err != nil {
		return row, fmt.Errorf("invalid elevation_ft %q", cell("elevation_ft"))
	}

	return row, nil
}

func optionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func optionalInt(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// WriteCSV writes the inventory's tree records as CSV.
func WriteCSV(inv *domain.ForestInventory, w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvColumns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range InventoryToRows(inv) {
		record := []string{
			strconv.Itoa(row.PlotID),
			strconv.Itoa(row.TreeID),
			row.SpeciesCode,
			row.SpeciesName,
			formatFloat(row.DBH),
			formatOptionalFloat(row.Height),
			formatOptionalFloat(row.CrownRatio),
			row.Status,
			formatFloat(row.ExpansionFactor),
			formatOptionalInt(row.Age),
			formatOptionalFloat(row.Defect),
			formatOptionalFloat(row.PlotSizeAcres),
			formatOptionalFloat(row.SlopePercent),
			formatOptionalFloat(row.AspectDegrees),
			formatOptionalFloat(row.ElevationFt),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptionalFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatOptionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
