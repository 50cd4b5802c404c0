package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/botctl/internal/process"
	"github.com/Paintersrp/botctl/internal/supervisor"
)

func newKillCmd(ctx *context) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "kill",
		Short: "Force kill all worker processes after confirmation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return killWorkers(cmd, ctx, yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func killWorkers(cmd *cobra.Command, ctx *context, yes bool) error {
	sup, err := ctx.getSupervisor(cmd)
	if err != nil {
		return err
	}
	var confirm supervisor.ConfirmFunc
	if !yes {
		confirm = func([]process.Match) bool {
			out := cmd.OutOrStdout()
			fmt.Fprint(out, "\nKill existing processes? (y/N): ")
			answer, err := ctx.lines(cmd).ReadLine(cmd.Context())
			if err != nil {
				fmt.Fprintln(out)
				return false
			}
			switch strings.ToLower(strings.TrimSpace(answer)) {
			case "y", "yes":
				return true
			default:
				return false
			}
		}
	}
	_, err = sup.Terminate(cmd.Context(), confirm)
	return err
}
