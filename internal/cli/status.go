package cli

import (
	"github.com/spf13/cobra"
)

func newStatusCmd(ctx *context) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show credential, configuration and process status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sup, err := ctx.getSupervisor(cmd)
			if err != nil {
				return err
			}
			sup.Status(cmd.Context())
			return nil
		},
	}
}
