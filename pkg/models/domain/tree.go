package domain

import (
	"fmt"
	"math"
)

// Tree is a single tree measurement record. Trees are validated at
// ingestion and treated as immutable by the analysis layer.
type Tree struct {
	// Unique tree identifier within the plot
	TreeID int `json:"tree_id"`
	// Plot this tree belongs to
	PlotID int `json:"plot_id"`
	// Species information
	Species Species `json:"species"`
	// Diameter at breast height in inches
	DBH float64 `json:"dbh"`
	// Total height in feet
	Height *float64 `json:"height,omitempty"`
	// Crown ratio (0.0 - 1.0)
	CrownRatio *float64 `json:"crown_ratio,omitempty"`
	// Tree status
	Status TreeStatus `json:"status"`
	// Number of trees per acre this sample tree represents
	ExpansionFactor float64 `json:"expansion_factor"`
	// Age at breast height (if cored)
	Age *int `json:"age,omitempty"`
	// Defect proportion (0.0 - 1.0)
	Defect *float64 `json:"defect,omitempty"`
}

// IsLive reports whether the tree is alive.
func (t *Tree) IsLive() bool {
	return t.Status == StatusLive
}

// BasalAreaSqft is the cross-sectional stem area at breast height in
// square feet.
func (t *Tree) BasalAreaSqft() float64 {
	return math.Pi * math.Pow(t.DBH/2.0, 2) / 144.0
}

// BasalAreaPerAcre scales basal area by the expansion factor.
func (t *Tree) BasalAreaPerAcre() float64 {
	return t.BasalAreaSqft() * t.ExpansionFactor
}

// VolumeCuft estimates cubic foot volume with a combined variable
// equation. The second return value is false when the tree has no
// height measurement and no volume can be estimated.
func (t *Tree) VolumeCuft(eq VolumeEquation) (float64, bool) {
	if t.Height == nil {
		return 0, false
	}
	h := *t.Height
	if t.DBH <= 0 || h <= 0 {
		return 0, true
	}
	gross := eq.CuftB1 * t.DBH * t.DBH * h
	return gross * t.defectFactor(), true
}

// VolumeBdft estimates Scribner board foot volume. Trees below the
// merchantability limit carry zero board foot volume. The second
// return value is false when the tree has no height measurement.
func (t *Tree) VolumeBdft(eq VolumeEquation) (float64, bool) {
	if t.Height == nil {
		return 0, false
	}
	h := *t.Height
	if t.DBH < eq.BdftMinDBH || h <= 0 {
		return 0, true
	}
	gross := eq.BdftB1*t.DBH*t.DBH*h - eq.BdftB2*t.DBH
	return math.Max(gross, 0) * t.defectFactor(), true
}

func (t *Tree) defectFactor() float64 {
	if t.Defect == nil {
		return 1.0
	}
	return 1.0 - *t.Defect
}

// ValidationIssue describes a single problem found on an ingested row.
type ValidationIssue struct {
	PlotID   int    `json:"plot_id"`
	TreeID   int    `json:"tree_id"`
	RowIndex int    `json:"row_index"`
	Field    string `json:"field"`
	Message  string `json:"message"`
}

// Validate checks the tree's measurement invariants and returns the
// first violation found.
func (t *Tree) Validate() error {
	for _, issue := range t.ValidateAll(0) {
		return fmt.Errorf("plot %d tree %d: %s: %s", issue.PlotID, issue.TreeID, issue.Field, issue.Message)
	}
	return nil
}

// ValidateAll checks every measurement invariant and collects all
// violations instead of stopping at the first, tagging each with the
// given source row index.
func (t *Tree) ValidateAll(rowIndex int) []ValidationIssue {
	var issues []ValidationIssue
	add := func(field, msg string) {
		issues = append(issues, ValidationIssue{
			PlotID:   t.PlotID,
			TreeID:   t.TreeID,
			RowIndex: rowIndex,
			Field:    field,
			Message:  msg,
		})
	}

	if t.DBH <= 0 {
		add("dbh", fmt.Sprintf("DBH must be positive, got %g", t.DBH))
	}
	if t.ExpansionFactor <= 0 {
		add("expansion_factor", fmt.Sprintf("expansion factor must be positive, got %g", t.ExpansionFactor))
	}
	if t.Height != nil && *t.Height <= 0 {
		add("height", fmt.Sprintf("height must be positive, got %g", *t.Height))
	}
	if t.CrownRatio != nil && (*t.CrownRatio < 0 || *t.CrownRatio > 1) {
		add("crown_ratio", fmt.Sprintf("crown ratio must be within [0, 1], got %g", *t.CrownRatio))
	}
	if t.Defect != nil && (*t.Defect < 0 || *t.Defect > 1) {
		add("defect", fmt.Sprintf("defect must be within [0, 1], got %g", *t.Defect))
	}
	return issues
}
