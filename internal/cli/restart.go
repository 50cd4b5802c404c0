package cli

import (
	"github.com/spf13/cobra"
)

func newRestartCmd(ctx *context) *cobra.Command {
	return &cobra.Command{
		Use:   "restart",
		Short: "Stop every running worker, then start a fresh one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sup, err := ctx.getSupervisor(cmd)
			if err != nil {
				return err
			}
			return sup.Restart(cmd.Context())
		},
	}
}
