package domain

import "sort"

// ForestInventory is a complete inventory dataset: an ordered set of
// sample plots under a single name.
type ForestInventory struct {
	// Name or identifier for this inventory
	Name string `json:"name"`
	// Total area in acres
	TotalAcres *float64 `json:"total_acres,omitempty"`
	// All plots in the inventory
	Plots []Plot `json:"plots"`
}

// NewForestInventory creates an empty inventory.
func NewForestInventory(name string) *ForestInventory {
	return &ForestInventory{Name: name}
}

// SpeciesList returns every species in the inventory, deduplicated by
// code and sorted by code. Species that occur only on dead, cut, or
// missing trees are included: the roster is about what was observed,
// not what is standing.
func (inv *ForestInventory) SpeciesList() []Species {
	seen := make(map[string]bool)
	var species []Species
	for i := range inv.Plots {
		for j := range inv.Plots[i].Trees {
			sp := inv.Plots[i].Trees[j].Species
			if !seen[sp.Code] {
				seen[sp.Code] = true
				species = append(species, sp)
			}
		}
	}
	sort.Slice(species, func(a, b int) bool { return species[a].Code < species[b].Code })
	return species
}

// NumPlots is the number of plots in the inventory.
func (inv *ForestInventory) NumPlots() int {
	return len(inv.Plots)
}

// NumTrees is the total number of measured trees.
func (inv *ForestInventory) NumTrees() int {
	var n int
	for i := range inv.Plots {
		n += len(inv.Plots[i].Trees)
	}
	return n
}

// MeanTPA is the arithmetic mean of per-plot trees per acre across all
// plots, unweighted by plot size. Zero when there are no plots.
func (inv *ForestInventory) MeanTPA() float64 {
	return inv.meanOverPlots(func(p *Plot) float64 { return p.TreesPerAcre() })
}

// MeanBasalArea is the mean per-plot basal area per acre (sq ft/acre).
func (inv *ForestInventory) MeanBasalArea() float64 {
	return inv.meanOverPlots(func(p *Plot) float64 { return p.BasalAreaPerAcre() })
}

// MeanVolumeCuft is the mean per-plot cubic foot volume per acre.
func (inv *ForestInventory) MeanVolumeCuft(eq VolumeEquation) float64 {
	return inv.meanOverPlots(func(p *Plot) float64 { return p.VolumeCuftPerAcre(eq) })
}

// MeanVolumeBdft is the mean per-plot board foot volume per acre.
func (inv *ForestInventory) MeanVolumeBdft(eq VolumeEquation) float64 {
	return inv.meanOverPlots(func(p *Plot) float64 { return p.VolumeBdftPerAcre(eq) })
}

func (inv *ForestInventory) meanOverPlots(metric func(*Plot) float64) float64 {
	if len(inv.Plots) == 0 {
		return 0
	}
	var sum float64
	for i := range inv.Plots {
		sum += metric(&inv.Plots[i])
	}
	return sum / float64(len(inv.Plots))
}
