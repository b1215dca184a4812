package domain

import "math"

// Plot is a sample plot within a forest inventory. Every per-acre
// statistic is computed over its live trees only.
type Plot struct {
	// Unique plot identifier
	PlotID int `json:"plot_id"`
	// Plot size in acres
	PlotSizeAcres float64 `json:"plot_size_acres"`
	// Slope percentage
	SlopePercent *float64 `json:"slope_percent,omitempty"`
	// Aspect in degrees (0-360)
	AspectDegrees *float64 `json:"aspect_degrees,omitempty"`
	// Elevation in feet
	ElevationFt *float64 `json:"elevation_ft,omitempty"`
	// Trees measured on this plot
	Trees []Tree `json:"trees"`
}

// LiveTrees returns the plot's live trees.
func (p *Plot) LiveTrees() []*Tree {
	var live []*Tree
	for i := range p.Trees {
		if p.Trees[i].IsLive() {
			live = append(live, &p.Trees[i])
		}
	}
	return live
}

// TreesPerAcre sums expansion factors over live trees.
func (p *Plot) TreesPerAcre() float64 {
	var tpa float64
	for _, t := range p.LiveTrees() {
		tpa += t.ExpansionFactor
	}
	return tpa
}

// BasalAreaPerAcre sums per-acre basal area over live trees.
func (p *Plot) BasalAreaPerAcre() float64 {
	var ba float64
	for _, t := range p.LiveTrees() {
		ba += t.BasalAreaPerAcre()
	}
	return ba
}

// VolumeCuftPerAcre sums per-acre cubic foot volume over live trees.
// Trees without a height measurement contribute nothing.
func (p *Plot) VolumeCuftPerAcre(eq VolumeEquation) float64 {
	var vol float64
	for _, t := range p.LiveTrees() {
		if v, ok := t.VolumeCuft(eq); ok {
			vol += v * t.ExpansionFactor
		}
	}
	return vol
}

// VolumeBdftPerAcre sums per-acre board foot volume over live trees.
// Trees without a height measurement contribute nothing.
func (p *Plot) VolumeBdftPerAcre(eq VolumeEquation) float64 {
	var vol float64
	for _, t := range p.LiveTrees() {
		if v, ok := t.VolumeBdft(eq); ok {
			vol += v * t.ExpansionFactor
		}
	}
	return vol
}

// QuadraticMeanDiameter is the expansion-factor-weighted RMS diameter
// of the plot's live trees, or 0 when there are none.
func (p *Plot) QuadraticMeanDiameter() float64 {
	live := p.LiveTrees()
	if len(live) == 0 {
		return 0
	}
	var sumDBHSq, totalTPA float64
	for _, t := range live {
		sumDBHSq += t.DBH * t.DBH * t.ExpansionFactor
		totalTPA += t.ExpansionFactor
	}
	if totalTPA == 0 {
		return 0
	}
	return math.Sqrt(sumDBHSq / totalTPA)
}
