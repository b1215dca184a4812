package analysis

import "github.com/ft-tools/forest-atlas/pkg/models/domain"

// Analyzer binds one inventory (and a volume equation) to the analysis
// operations so callers hold a single handle. It owns nothing and
// never mutates the inventory; multiple Analyzers over the same
// inventory may run on separate goroutines as long as nobody mutates
// the inventory underneath them.
type Analyzer struct {
	inventory *domain.ForestInventory
	equation  domain.VolumeEquation
}

// NewAnalyzer creates an Analyzer using the default volume equation.
func NewAnalyzer(inv *domain.ForestInventory) *Analyzer {
	return NewAnalyzerWithEquation(inv, domain.DefaultVolumeEquation())
}

// NewAnalyzerWithEquation creates an Analyzer with custom volume
// coefficients.
func NewAnalyzerWithEquation(inv *domain.ForestInventory, eq domain.VolumeEquation) *Analyzer {
	return &Analyzer{inventory: inv, equation: eq}
}

// StandMetrics computes TPA, basal area, volume, QMD, and species
// composition.
func (a *Analyzer) StandMetrics() StandMetrics {
	return ComputeStandMetrics(a.inventory, a.equation)
}

// SamplingStatistics computes confidence intervals at the given
// confidence level (e.g. 0.95).
func (a *Analyzer) SamplingStatistics(confidence float64) (SamplingStatistics, error) {
	return ComputeSamplingStatistics(a.inventory, a.equation, confidence)
}

// DiameterDistribution bins live trees with the given class width in
// inches.
func (a *Analyzer) DiameterDistribution(classWidth float64) DiameterDistribution {
	return DistributionFromInventory(a.inventory, classWidth)
}

// ProjectGrowth projects stand growth over the given number of years.
func (a *Analyzer) ProjectGrowth(model GrowthModel, years int) ([]GrowthProjection, error) {
	return ProjectGrowth(a.inventory, a.equation, model, years)
}
