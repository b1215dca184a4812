package terminal

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ft-tools/forest-atlas/pkg/models/domain"
	"github.com/ft-tools/forest-atlas/pkg/runtime/terminal/commands"
	"github.com/ft-tools/forest-atlas/pkg/runtime/terminal/export"
)

// CLI represents the command-line interface
type CLI struct {
	equation domain.VolumeEquation
	reporter *export.Reporter
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Equation domain.VolumeEquation
	Output   io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		equation: opts.Equation,
		reporter: export.NewReporter(opts.Output),
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forest-atlas",
		Short: "Forest inventory analysis tool",
	}

	cmd.AddCommand(commands.NewAnalyzeCmd(cli.equation, cli.reporter))
	cmd.AddCommand(commands.NewGrowthCmd(cli.equation, cli.reporter))
	cmd.AddCommand(commands.NewConvertCmd())
	cmd.AddCommand(commands.NewSummaryCmd(cli.equation, cli.reporter))

	return cmd
}
