package cli

import (
	"github.com/spf13/cobra"
)

func newLogsCmd(ctx *context) *cobra.Command {
	return &cobra.Command{
		Use:   "logs",
		Short: "Watch running workers until they exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sup, err := ctx.getSupervisor(cmd)
			if err != nil {
				return err
			}
			return sup.Logs(cmd.Context())
		},
	}
}
