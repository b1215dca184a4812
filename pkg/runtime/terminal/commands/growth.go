package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ft-tools/forest-atlas/pkg/analysis"
	"github.com/ft-tools/forest-atlas/pkg/models/domain"
	"github.com/ft-tools/forest-atlas/pkg/runtime/terminal/export"
	"github.com/ft-tools/forest-atlas/pkg/services/inventory"
)

type GrowthCmd struct {
	input     string
	years     int
	model     string
	rate      float64
	capacity  float64
	mortality float64

	equation domain.VolumeEquation
	reporter *export.Reporter
}

func NewGrowthCmd(equation domain.VolumeEquation, reporter *export.Reporter) *cobra.Command {
	gc := &GrowthCmd{equation: equation, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "growth",
		Short: "Project stand growth over time",
		RunE:  gc.run,
	}

	cmd.Flags().StringVarP(&gc.input, "input", "i", "", "Path to input file (CSV, JSON, or XLSX)")
	cmd.Flags().IntVarP(&gc.years, "years", "y", 20, "Number of years to project")
	cmd.Flags().StringVarP(&gc.model, "model", "m", "logistic",
		"Growth model: exponential, logistic, or linear")
	cmd.Flags().Float64VarP(&gc.rate, "rate", "r", 0.03,
		"Annual growth rate (annual increment for the linear model)")
	cmd.Flags().Float64VarP(&gc.capacity, "capacity", "c", 300.0,
		"Carrying capacity for basal area (logistic model, sq ft/acre)")
	cmd.Flags().Float64Var(&gc.mortality, "mortality", -1,
		"Annual mortality rate (proportion for exponential/logistic, TPA/year for linear)")

	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func (gc *GrowthCmd) growthModel() (analysis.GrowthModel, error) {
	mortality := func(fallback float64) float64 {
		if gc.mortality >= 0 {
			return gc.mortality
		}
		return fallback
	}

	switch strings.ToLower(gc.model) {
	case "exponential", "exp":
		return analysis.Exponential(gc.rate, mortality(0.005)), nil
	case "logistic", "log":
		return analysis.Logistic(gc.rate, gc.capacity, mortality(0.005)), nil
	case "linear", "lin":
		return analysis.Linear(gc.rate, mortality(0.5)), nil
	default:
		return analysis.GrowthModel{}, fmt.Errorf(
			"unknown growth model %q: use exponential, logistic, or linear", gc.model)
	}
}

func (gc *GrowthCmd) run(cmd *cobra.Command, args []string) error {
	inv, err := inventory.ReadFile(gc.input)
	if err != nil {
		return err
	}

	model, err := gc.growthModel()
	if err != nil {
		return err
	}

	cmd.Printf("Growth Projection: %d years (%s)\n", gc.years, gc.model)

	analyzer := analysis.NewAnalyzerWithEquation(inv, gc.equation)
	projections, err := analyzer.ProjectGrowth(model, gc.years)
	if err != nil {
		return err
	}
	return gc.reporter.GrowthProjections(projections)
}
