package cli

import (
	"github.com/spf13/cobra"
)

func newStopCmd(ctx *context) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Terminate every running worker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sup, err := ctx.getSupervisor(cmd)
			if err != nil {
				return err
			}
			_, err = sup.Stop(cmd.Context())
			return err
		},
	}
}
