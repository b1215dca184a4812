package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ft-tools/forest-atlas/pkg/analysis"
	"github.com/ft-tools/forest-atlas/pkg/models/domain"
	"github.com/ft-tools/forest-atlas/pkg/runtime/terminal/export"
	"github.com/ft-tools/forest-atlas/pkg/services/inventory"
)

type AnalyzeCmd struct {
	input        string
	confidence   float64
	classWidth   float64
	species      bool
	distribution bool

	equation domain.VolumeEquation
	reporter *export.Reporter
}

func NewAnalyzeCmd(equation domain.VolumeEquation, reporter *export.Reporter) *cobra.Command {
	ac := &AnalyzeCmd{equation: equation, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze inventory data and display stand metrics",
		RunE:  ac.run,
	}

	cmd.Flags().StringVarP(&ac.input, "input", "i", "", "Path to input file (CSV, JSON, or XLSX)")
	cmd.Flags().Float64VarP(&ac.confidence, "confidence", "c", 0.95,
		"Confidence level for statistical analysis (0.0-1.0)")
	cmd.Flags().Float64VarP(&ac.classWidth, "diameter-class-width", "d", 2.0,
		"Diameter class width in inches for distribution")
	cmd.Flags().BoolVar(&ac.species, "species", true, "Show detailed species composition")
	cmd.Flags().BoolVar(&ac.distribution, "distribution", true, "Show diameter distribution histogram")

	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func (ac *AnalyzeCmd) run(cmd *cobra.Command, args []string) error {
	if ac.classWidth <= 0 {
		return fmt.Errorf("diameter class width must be positive, got %g", ac.classWidth)
	}

	inv, err := inventory.ReadFile(ac.input)
	if err != nil {
		return err
	}
	cmd.Printf("Forest Inventory Analysis: %s\n", ac.input)
	cmd.Printf("  Loaded %d plots with %d trees\n", inv.NumPlots(), inv.NumTrees())

	analyzer := analysis.NewAnalyzerWithEquation(inv, ac.equation)

	metrics := analyzer.StandMetrics()
	if err := ac.reporter.StandSummary(&metrics); err != nil {
		return err
	}

	if ac.species {
		if err := ac.reporter.SpeciesComposition(&metrics); err != nil {
			return err
		}
	}

	if ac.distribution {
		dist := analyzer.DiameterDistribution(ac.classWidth)
		if err := ac.reporter.DiameterHistogram(&dist); err != nil {
			return err
		}
	}

	// Too few plots is not fatal for an analysis run, the summary
	// tables above are still valid.
	stats, err := analyzer.SamplingStatistics(ac.confidence)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
		return nil
	}
	return ac.reporter.SamplingStatistics(&stats)
}
