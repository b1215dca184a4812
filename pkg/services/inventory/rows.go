package inventory

import (
	"fmt"
	"sort"

	"github.com/ft-tools/forest-atlas/pkg/models/domain"
)

// EditableRow is the flat, editable representation of one tree record,
// as exchanged with the web editor and as laid out in CSV/XLSX files.
type EditableRow struct {
	RowIndex        int      `json:"row_index"`
	PlotID          int      `json:"plot_id"`
	TreeID          int      `json:"tree_id"`
	SpeciesCode     string   `json:"species_code"`
	SpeciesName     string   `json:"species_name"`
	DBH             float64  `json:"dbh"`
	Height          *float64 `json:"height,omitempty"`
	CrownRatio      *float64 `json:"crown_ratio,omitempty"`
	Status          string   `json:"status"`
	ExpansionFactor float64  `json:"expansion_factor"`
	Age             *int     `json:"age,omitempty"`
	Defect          *float64 `json:"defect,omitempty"`
	PlotSizeAcres   *float64 `json:"plot_size_acres,omitempty"`
	SlopePercent    *float64 `json:"slope_percent,omitempty"`
	AspectDegrees   *float64 `json:"aspect_degrees,omitempty"`
	ElevationFt     *float64 `json:"elevation_ft,omitempty"`
}

// defaultPlotSizeAcres is assumed when a row carries no plot size.
const defaultPlotSizeAcres = 0.2

// rowToTree converts a row to a domain tree. An unparseable status is
// reported through the returned issue and defaults to Live.
func rowToTree(row EditableRow) (domain.Tree, *domain.ValidationIssue) {
	var issue *domain.ValidationIssue
	status, err := domain.ParseTreeStatus(row.Status)
	if err != nil {
		issue = &domain.ValidationIssue{
			PlotID:   row.PlotID,
			TreeID:   row.TreeID,
			RowIndex: row.RowIndex,
			Field:    "status",
			Message:  fmt.Sprintf("unknown tree status %q, defaulting to Live", row.Status),
		}
		status = domain.StatusLive
	}

	return domain.Tree{
		TreeID:          row.TreeID,
		PlotID:          row.PlotID,
		Species:         domain.Species{CommonName: row.SpeciesName, Code: row.SpeciesCode},
		DBH:             row.DBH,
		Height:          row.Height,
		CrownRatio:      row.CrownRatio,
		Status:          status,
		ExpansionFactor: row.ExpansionFactor,
		Age:             row.Age,
		Defect:          row.Defect,
	}, issue
}

// RowsToInventory assembles flat rows into an inventory: trees grouped
// into plots by plot id, plots sorted ascending.
func RowsToInventory(name string, rows []EditableRow) *domain.ForestInventory {
	plots := make(map[int]*domain.Plot)

	for _, row := range rows {
		tree, _ := rowToTree(row)

		plot, ok := plots[row.PlotID]
		if !ok {
			size := defaultPlotSizeAcres
			if row.PlotSizeAcres != nil {
				size = *row.PlotSizeAcres
			}
			plot = &domain.Plot{
				PlotID:        row.PlotID,
				PlotSizeAcres: size,
				SlopePercent:  row.SlopePercent,
				AspectDegrees: row.AspectDegrees,
				ElevationFt:   row.ElevationFt,
			}
			plots[row.PlotID] = plot
		}
		plot.Trees = append(plot.Trees, tree)
	}

	inv := domain.NewForestInventory(name)
	for _, plot := range plots {
		inv.Plots = append(inv.Plots, *plot)
	}
	sort.Slice(inv.Plots, func(a, b int) bool { return inv.Plots[a].PlotID < inv.Plots[b].PlotID })
	return inv
}

// ValidateRows collects every validation issue across a set of rows,
// including unknown statuses.
func ValidateRows(rows []EditableRow) []domain.ValidationIssue {
	var issues []domain.ValidationIssue
	for _, row := range rows {
		tree, statusIssue := rowToTree(row)
		if statusIssue != nil {
			issues = append(issues, *statusIssue)
		}
		issues = append(issues, tree.ValidateAll(row.RowIndex)...)
	}
	return issues
}

// InventoryToRows flattens an inventory back to editable rows, in plot
// and tree order.
func InventoryToRows(inv *domain.ForestInventory) []EditableRow {
	var rows []EditableRow
	for i := range inv.Plots {
		plot := &inv.Plots[i]
		size := plot.PlotSizeAcres
		for j := range plot.Trees {
			tree := &plot.Trees[j]
			rows = append(rows, EditableRow{
				RowIndex:        len(rows),
				PlotID:          tree.PlotID,
				TreeID:          tree.TreeID,
				SpeciesCode:     tree.Species.Code,
				SpeciesName:     tree.Species.CommonName,
				DBH:             tree.DBH,
				Height:          tree.Height,
				CrownRatio:      tree.CrownRatio,
				Status:          tree.Status.String(),
				ExpansionFactor: tree.ExpansionFactor,
				Age:             tree.Age,
				Defect:          tree.Defect,
				PlotSizeAcres:   &size,
				SlopePercent:    plot.SlopePercent,
				AspectDegrees:   plot.AspectDegrees,
				ElevationFt:     plot.ElevationFt,
			})
		}
	}
	return rows
}
