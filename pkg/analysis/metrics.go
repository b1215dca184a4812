package analysis

import (
	"sort"

	"github.com/ft-tools/forest-atlas/pkg/models/domain"
)

// SpeciesComposition summarizes one species' share of the stand.
type SpeciesComposition struct {
	Species          domain.Species `json:"species"`
	TPA              float64        `json:"tpa"`
	BasalArea        float64        `json:"basal_area"`
	PercentTPA       float64        `json:"percent_tpa"`
	PercentBasalArea float64        `json:"percent_basal_area"`
	MeanDBH          float64        `json:"mean_dbh"`
	MeanHeight       *float64       `json:"mean_height,omitempty"`
}

// StandMetrics holds overall stand-level metrics.
type StandMetrics struct {
	TotalTPA              float64              `json:"total_tpa"`
	TotalBasalArea        float64              `json:"total_basal_area"`
	TotalVolumeCuft       float64              `json:"total_volume_cuft"`
	TotalVolumeBdft       float64              `json:"total_volume_bdft"`
	QuadraticMeanDiameter float64              `json:"quadratic_mean_diameter"`
	MeanHeight            *float64             `json:"mean_height,omitempty"`
	NumSpecies            int                  `json:"num_species"`
	SpeciesComposition    []SpeciesComposition `json:"species_composition"`
}

type speciesAccum struct {
	species     domain.Species
	tpaSum      float64
	baSum       float64
	dbhSum      float64 // DBH weighted by expansion factor
	treeCount   int
	heightSum   float64
	heightCount int
}

// ComputeStandMetrics aggregates live trees into per-acre stand totals
// and species composition. An inventory with zero plots yields an
// all-zero result with an empty composition list.
func ComputeStandMetrics(inv *domain.ForestInventory, eq domain.VolumeEquation) StandMetrics {
	numPlots := float64(inv.NumPlots())
	if numPlots == 0 {
		return StandMetrics{}
	}

	totalTPA := inv.MeanTPA()
	totalBA := inv.MeanBasalArea()

	var sumQMD float64
	for i := range inv.Plots {
		sumQMD += inv.Plots[i].QuadraticMeanDiameter()
	}

	var heightSum float64
	var heightCount int
	accums := make(map[string]*speciesAccum)
	var order []string // encounter order keeps the composition sort stable

	for i := range inv.Plots {
		for _, tree := range inv.Plots[i].LiveTrees() {
			if tree.Height != nil {
				heightSum += *tree.Height
				heightCount++
			}

			acc, ok := accums[tree.Species.Code]
			if !ok {
				acc = &speciesAccum{species: tree.Species}
				accums[tree.Species.Code] = acc
				order = append(order, tree.Species.Code)
			}
			acc.tpaSum += tree.ExpansionFactor
			acc.baSum += tree.BasalAreaPerAcre()
			acc.dbhSum += tree.DBH * tree.ExpansionFactor
			acc.treeCount++
			if tree.Height != nil {
				acc.heightSum += *tree.Height
				acc.heightCount++
			}
		}
	}

	var meanHeight *float64
	if heightCount > 0 {
		h := heightSum / float64(heightCount)
		meanHeight = &h
	}

	composition := make([]SpeciesComposition, 0, len(order))
	for _, code := range order {
		acc := accums[code]
		tpa := acc.tpaSum / numPlots
		ba := acc.baSum / numPlots

		var meanDBH float64
		if acc.tpaSum > 0 {
			meanDBH = acc.dbhSum / acc.tpaSum
		}
		var percentTPA, percentBA float64
		if totalTPA > 0 {
			percentTPA = tpa / totalTPA * 100.0
		}
		if totalBA > 0 {
			percentBA = ba / totalBA * 100.0
		}
		var spMeanHeight *float64
		if acc.heightCount > 0 {
			h := acc.heightSum / float64(acc.heightCount)
			spMeanHeight = &h
		}

		composition = append(composition, SpeciesComposition{
			Species:          acc.species,
			TPA:              tpa,
			BasalArea:        ba,
			PercentTPA:       percentTPA,
			PercentBasalArea: percentBA,
			MeanDBH:          meanDBH,
			MeanHeight:       spMeanHeight,
		})
	}

	// Descending by basal area; table renderers depend on this order.
	sort.SliceStable(composition, func(a, b int) bool {
		return composition[a].BasalArea > composition[b].BasalArea
	})

	return StandMetrics{
		TotalTPA:              totalTPA,
		TotalBasalArea:        totalBA,
		TotalVolumeCuft:       inv.MeanVolumeCuft(eq),
		TotalVolumeBdft:       inv.MeanVolumeBdft(eq),
		QuadraticMeanDiameter: sumQMD / numPlots,
		MeanHeight:            meanHeight,
		NumSpecies:            len(composition),
		SpeciesComposition:    composition,
	}
}
