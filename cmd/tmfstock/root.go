package main

import (
	"io"

	"github.com/spf13/cobra"

	"tmfstock/internal/config"
)

type rootOptions struct {
	envFiles []string
	trace    bool
	out      io.Writer
	errOut   io.Writer
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	opts := &rootOptions{out: out, errOut: errOut}
	root := &cobra.Command{
		Use:           "tmfstock",
		Short:         "Inventory and tool-loan tracking for field technicians",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return config.LoadEnv(opts.envFiles...)
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", nil, "dotenv files to load (default .env)")
	root.PersistentFlags().BoolVar(&opts.trace, "trace", false, "write one JSON span per operation to stderr")

	root.AddCommand(
		newServeCmd(opts),
		newHashPasswordCmd(opts),
		newReportCmd(opts),
		newSweepCmd(opts),
	)
	return root
}
