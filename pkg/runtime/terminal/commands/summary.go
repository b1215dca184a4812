package commands

import (
	"github.com/spf13/cobra"

	"github.com/ft-tools/forest-atlas/pkg/models/domain"
	"github.com/ft-tools/forest-atlas/pkg/runtime/terminal/export"
	"github.com/ft-tools/forest-atlas/pkg/services/inventory"
)

type SummaryCmd struct {
	input string

	equation domain.VolumeEquation
	reporter *export.Reporter
}

func NewSummaryCmd(equation domain.VolumeEquation, reporter *export.Reporter) *cobra.Command {
	sc := &SummaryCmd{equation: equation, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Display a quick summary of the inventory",
		RunE:  sc.run,
	}

	cmd.Flags().StringVarP(&sc.input, "input", "i", "", "Path to input file")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func (sc *SummaryCmd) run(cmd *cobra.Command, args []string) error {
	inv, err := inventory.ReadFile(sc.input)
	if err != nil {
		return err
	}
	return sc.reporter.InventorySummary(inv, sc.equation)
}
