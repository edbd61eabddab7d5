package main

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/trezcool/marksengine/apps/shared"
	"github.com/trezcool/marksengine/core"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf   *core.Config
	logger core.Logger
	out    io.Writer

	newApp func(ctx context.Context) (*shared.App, error) // mockable
}

func newCommandLine(conf *core.Config, logger core.Logger, out io.Writer) *commandLine {
	cli := &commandLine{conf: conf, logger: logger, out: out}
	cli.newApp = func(ctx context.Context) (*shared.App, error) {
		return shared.NewApp(ctx, cli.conf, cli.logger)
	}
	return cli
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Marks engine administration",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Usage()
			return errHelp
		},
	}
	root.SetOut(cli.out)
	root.SetErr(cli.out)

	root.AddCommand(
		cli.migrateCmd(),
		cli.seedCmd(),
		cli.computeCmd(),
	)
	return root
}

// run executes the command in `args` (program name included).
func (cli *commandLine) run(args []string) error {
	root := cli.rootCmd()
	if len(args) > 1 {
		root.SetArgs(args[1:])
	} else {
		root.SetArgs([]string{})
	}
	return root.ExecuteContext(context.Background())
}
