package analysis

import (
	"github.com/ft-tools/forest-atlas/pkg/models/domain"
)

func fptr(v float64) *float64 { return &v }

func liveTree(plotID int, sp domain.Species, dbh float64) domain.Tree {
	return domain.Tree{
		TreeID:          1,
		PlotID:          plotID,
		Species:         sp,
		DBH:             dbh,
		Height:          fptr(100.0),
		CrownRatio:      fptr(0.5),
		Status:          domain.StatusLive,
		ExpansionFactor: 5.0,
	}
}

func deadTree(plotID int, sp domain.Species, dbh float64) domain.Tree {
	t := liveTree(plotID, sp, dbh)
	t.Status = domain.StatusDead
	return t
}

func plotOf(plotID int, trees ...domain.Tree) domain.Plot {
	return domain.Plot{PlotID: plotID, PlotSizeAcres: 0.2, Trees: trees}
}

var (
	df  = domain.Species{CommonName: "Douglas Fir", Code: "DF"}
	wrc = domain.Species{CommonName: "Western Red Cedar", Code: "WRC"}
)

// Two plots, each one live 12" and one live 16" Douglas Fir at
// expansion factor 5.0 with 100 ft heights.
func twoPlotInventory() *domain.ForestInventory {
	inv := domain.NewForestInventory("Two Plot")
	inv.Plots = append(inv.Plots,
		plotOf(1, liveTree(1, df, 12.0), liveTree(1, df, 16.0)),
		plotOf(2, liveTree(2, df, 12.0), liveTree(2, df, 16.0)),
	)
	return inv
}

func mixedInventory() *domain.ForestInventory {
	inv := domain.NewForestInventory("Mixed")
	inv.Plots = append(inv.Plots,
		plotOf(1, liveTree(1, df, 16.0), liveTree(1, wrc, 12.0)),
		plotOf(2, liveTree(2, df, 18.0), deadTree(2, df, 8.0)),
	)
	return inv
}

func deadOnlyInventory() *domain.ForestInventory {
	inv := domain.NewForestInventory("Dead Only")
	inv.Plots = append(inv.Plots,
		plotOf(1, deadTree(1, df, 14.0)),
		plotOf(2, deadTree(2, wrc, 10.0)),
	)
	return inv
}

var defaultEq = domain.DefaultVolumeEquation()
