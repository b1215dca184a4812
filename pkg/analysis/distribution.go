package analysis

import (
	"math"

	"github.com/ft-tools/forest-atlas/pkg/models/domain"
)

// DiameterClass is one bin of the diameter distribution. Lower is
// inclusive, Upper exclusive; the final class is built past the
// maximum DBH so the largest tree always lands inside a bin.
type DiameterClass struct {
	Lower     float64 `json:"lower"`
	Upper     float64 `json:"upper"`
	Midpoint  float64 `json:"midpoint"`
	TPA       float64 `json:"tpa"`
	BasalArea float64 `json:"basal_area"`
	TreeCount int     `json:"tree_count"`
}

// DiameterDistribution bins the stand's live trees into fixed-width
// diameter classes. Classes holding no trees are omitted.
type DiameterDistribution struct {
	ClassWidth float64         `json:"class_width"`
	Classes    []DiameterClass `json:"classes"`
}

// DistributionFromInventory builds a diameter distribution with the
// given class width in inches (commonly 2).
func DistributionFromInventory(inv *domain.ForestInventory, classWidth float64) DiameterDistribution {
	dist := DiameterDistribution{ClassWidth: classWidth}
	numPlots := float64(inv.NumPlots())
	if numPlots == 0 {
		return dist
	}

	minDBH := math.Inf(1)
	maxDBH := math.Inf(-1)
	var liveCount int
	for i := range inv.Plots {
		for _, tree := range inv.Plots[i].LiveTrees() {
			liveCount++
			minDBH = math.Min(minDBH, tree.DBH)
			maxDBH = math.Max(maxDBH, tree.DBH)
		}
	}
	if liveCount == 0 {
		return dist
	}

	start := math.Floor(minDBH/classWidth) * classWidth
	end := (math.Floor(maxDBH/classWidth) + 1.0) * classWidth

	for lower := start; lower < end; lower += classWidth {
		upper := lower + classWidth

		var tpaSum, baSum float64
		var count int
		for i := range inv.Plots {
			for _, tree := range inv.Plots[i].LiveTrees() {
				if tree.DBH >= lower && tree.DBH < upper {
					tpaSum += tree.ExpansionFactor
					baSum += tree.BasalAreaPerAcre()
					count++
				}
			}
		}

		if count > 0 {
			dist.Classes = append(dist.Classes, DiameterClass{
				Lower:     lower,
				Upper:     upper,
				Midpoint:  lower + classWidth/2.0,
				TPA:       tpaSum / numPlots,
				BasalArea: baSum / numPlots,
				TreeCount: count,
			})
		}
	}

	return dist
}
