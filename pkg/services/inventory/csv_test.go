package inventory

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ft-tools/forest-atlas/pkg/models/domain"
)

const sampleCSV = `plot_id,tree_id,species_code,species_name,dbh,height,crown_ratio,status,expansion_factor,age,defect,plot_size_acres,slope_percent,aspect_degrees,elevation_ft
1,1,DF,Douglas Fir,14.0,90.0,0.5,Live,5.0,,,0.2,,,
1,2,WRC,Western Red Cedar,12.0,80.0,,Live,5.0,45,0.1,0.2,,,
2,1,DF,Douglas Fir,18.0,110.0,0.4,L,5.0,,,0.2,10.0,180.0,1500.0
2,2,DF,Douglas Fir,8.0,,,Dead,5.0,,,0.2,,,
`

func TestReadCSV(t *testing.T) {
	inv, err := ReadCSV(strings.NewReader(sampleCSV), "sample")
	require.NoError(t, err)

	assert.Equal(t, "sample", inv.Name)
	require.Equal(t, 2, inv.NumPlots())
	assert.Equal(t, 4, inv.NumTrees())

	assert.Equal(t, 1, inv.Plots[0].PlotID)
	assert.Equal(t, 2, inv.Plots[1].PlotID)
	assert.Equal(t, 0.2, inv.Plots[0].PlotSizeAcres)

	require.Len(t, inv.Plots[1].Trees, 2)
	// status short code "L" parses as Live
	assert.Equal(t, domain.StatusLive, inv.Plots[1].Trees[0].Status)
	assert.Equal(t, domain.StatusDead, inv.Plots[1].Trees[1].Status)
	assert.Nil(t, inv.Plots[1].Trees[1].Height)

	require.NotNil(t, inv.Plots[1].SlopePercent)
	assert.Equal(t, 10.0, *inv.Plots[1].SlopePercent)
}

func TestReadCSVMissingColumn(t *testing.T) {
	csv := "plot_id,tree_id,species_code\n1,1,DF\n"
	_, err := ReadCSV(strings.NewReader(csv), "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required column")
}

func TestReadCSVBadType(t *testing.T) {
	csv := strings.Replace(sampleCSV, "14.0", "fourteen", 1)
	_, err := ReadCSV(strings.NewReader(csv), "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid dbh")
}

func TestReadCSVRejectsInvalidMeasurement(t *testing.T) {
	csv := strings.Replace(sampleCSV, "14.0", "-1.0", 1)
	_, err := ReadCSV(strings.NewReader(csv), "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dbh")
}

func TestParseCSVLenient(t *testing.T) {
	bad := strings.Replace(sampleCSV, "Live,5.0,,,0.2,,,\n1,2", "Standing,5.0,,,0.2,,,\n1,2", 1)
	bad = strings.Replace(bad, "14.0", "-2.0", 1)

	rows, issues, err := ParseCSVLenient(strings.NewReader(bad))
	require.NoError(t, err)
	require.Len(t, rows, 4)

	// one unknown status + one negative DBH
	require.Len(t, issues, 2)
	fields := []string{issues[0].Field, issues[1].Field}
	assert.ElementsMatch(t, []string{"dbh", "status"}, fields)
}

func TestCSVRoundTrip(t *testing.T) {
	inv, err := ReadCSV(strings.NewReader(sampleCSV), "sample")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(inv, &buf))

	again, err := ReadCSV(&buf, "sample")
	require.NoError(t, err)

	assert.Equal(t, inv.NumPlots(), again.NumPlots())
	assert.Equal(t, inv.NumTrees(), again.NumTrees())
	assert.InDelta(t, inv.MeanTPA(), again.MeanTPA(), 1e-9)
}

func TestRowsToInventorySortsPlots(t *testing.T) {
	rows := []EditableRow{
		{RowIndex: 0, PlotID: 3, TreeID: 1, SpeciesCode: "DF", SpeciesName: "Douglas Fir",
			DBH: 10, Status: "Live", ExpansionFactor: 5},
		{RowIndex: 1, PlotID: 1, TreeID: 1, SpeciesCode: "DF", SpeciesName: "Douglas Fir",
			DBH: 12, Status: "Live", ExpansionFactor: 5},
	}
	inv := RowsToInventory("sorted", rows)
	require.Equal(t, 2, inv.NumPlots())
	assert.Equal(t, 1, inv.Plots[0].PlotID)
	assert.Equal(t, 3, inv.Plots[1].PlotID)
}

func TestValidateRows(t *testing.T) {
	rows := []EditableRow{
		{RowIndex: 0, PlotID: 1, TreeID: 1, SpeciesCode: "DF", SpeciesName: "Douglas Fir",
			DBH: 10, Status: "Live", ExpansionFactor: 5},
		{RowIndex: 1, PlotID: 1, TreeID: 2, SpeciesCode: "DF", SpeciesName: "Douglas Fir",
			DBH: 0, Status: "Snag", ExpansionFactor: 5},
	}
	issues := ValidateRows(rows)
	require.Len(t, issues, 2)
	for _, issue := range issues {
		assert.Equal(t, 1, issue.RowIndex)
	}
}
