package commands

import (
	"github.com/spf13/cobra"

	"github.com/ft-tools/forest-atlas/pkg/services/inventory"
)

type ConvertCmd struct {
	input  string
	output string
	pretty bool
}

func NewConvertCmd() *cobra.Command {
	cc := &ConvertCmd{}
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert inventory data between formats",
		RunE:  cc.run,
	}

	cmd.Flags().StringVarP(&cc.input, "input", "i", "", "Input file path")
	cmd.Flags().StringVarP(&cc.output, "output", "o", "", "Output file path")
	cmd.Flags().BoolVar(&cc.pretty, "pretty", false, "Pretty-print JSON output")

	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func (cc *ConvertCmd) run(cmd *cobra.Command, args []string) error {
	inv, err := inventory.ReadFile(cc.input)
	if err != nil {
		return err
	}
	if err := inventory.WriteFile(inv, cc.output, cc.pretty); err != nil {
		return err
	}
	cmd.Printf("Success: converted %s -> %s\n", cc.input, cc.output)
	return nil
}
