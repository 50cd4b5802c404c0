package cli

import (
	"github.com/spf13/cobra"
)

func newStartCmd(ctx *context) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the worker and stream its output",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sup, err := ctx.getSupervisor(cmd)
			if err != nil {
				return err
			}
			return sup.Start(cmd.Context())
		},
	}
}
