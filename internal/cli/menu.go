package cli

import (
	stdcontext "context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Paintersrp/botctl/internal/cliutil"
	"github.com/Paintersrp/botctl/internal/supervisor"
	"github.com/Paintersrp/botctl/internal/tui"
)

var menuItems = []tui.Item{
	{Key: '1', Command: "start", Description: "Start the bot"},
	{Key: '2', Command: "stop", Description: "Stop the bot"},
	{Key: '3', Command: "restart", Description: "Restart the bot"},
	{Key: '4', Command: "status", Description: "Show bot status"},
	{Key: '5', Command: "logs", Description: "Monitor bot logs"},
	{Key: '6', Command: "kill", Description: "Force kill all bot processes"},
	{Key: '7', Command: tui.ExitCommand, Description: "Exit manager"},
}

func newMenuCmd(ctx *context) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Open the interactive menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMenu(cmd, ctx)
		},
	}
}

// runMenu loops until the operator exits, stdin reaches EOF or botctl is
// interrupted. Failed commands are reported and the menu continues.
func runMenu(cmd *cobra.Command, ctx *context) error {
	sup, err := ctx.getSupervisor(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	runCtx := cmd.Context()
	if runCtx == nil {
		runCtx = stdcontext.Background()
	}

	for {
		choice, err := chooseCommand(runCtx, cmd, ctx, sup.Target().Name)
		if err != nil {
			if errors.Is(err, io.EOF) || runCtx.Err() != nil {
				fmt.Fprintln(out, "\nGoodbye!")
				return nil
			}
			return err
		}
		fmt.Fprintln(out)

		command, ok := resolveChoice(choice)
		if !ok {
			fmt.Fprintln(out, "Invalid choice. Please try again.")
		} else if command == tui.ExitCommand {
			fmt.Fprintln(out, "Goodbye!")
			return nil
		} else if err := runMenuCommand(runCtx, cmd, ctx, sup, command); err != nil {
			ctx.logger.WithError(err).WithField("command", command).Debug("menu command failed")
		}

		if runCtx.Err() != nil {
			fmt.Fprintln(out, "\nGoodbye!")
			return nil
		}
		// start and logs block until the worker exits; no pause after them.
		if command == "start" || command == "logs" {
			continue
		}
		fmt.Fprint(out, "\nPress Enter to continue...")
		if _, err := ctx.lines(cmd).ReadLine(runCtx); err != nil {
			fmt.Fprintln(out, "\nGoodbye!")
			return nil
		}
	}
}

func chooseCommand(runCtx stdcontext.Context, cmd *cobra.Command, ctx *context, title string) (string, error) {
	if ctx.isInteractive(cmd) {
		return tui.NewMenu(title+" Manager", menuItems).Choose(runCtx)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s Manager\n", title)
	fmt.Fprintln(out, cliutil.Rule(30))
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	for _, item := range menuItems {
		fmt.Fprintf(out, "  %c) %-9s - %s\n", item.Key, item.Command, item.Description)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Enter your choice (1-%d or command name): ", len(menuItems))
	return ctx.lines(cmd).ReadLine(runCtx)
}

// resolveChoice maps a menu number, command name or exit synonym to a
// command name.
func resolveChoice(choice string) (string, bool) {
	choice = strings.ToLower(strings.TrimSpace(choice))
	switch choice {
	case "quit", "q":
		return tui.ExitCommand, true
	}
	for _, item := range menuItems {
		if choice == item.Command || choice == string(item.Key) {
			return item.Command, true
		}
	}
	return "", false
}

func runMenuCommand(runCtx stdcontext.Context, cmd *cobra.Command, ctx *context, sup *supervisor.Supervisor, command string) error {
	switch command {
	case "start":
		return sup.Start(runCtx)
	case "stop":
		_, err := sup.Stop(runCtx)
		return err
	case "restart":
		return sup.Restart(runCtx)
	case "status":
		sup.Status(runCtx)
		return nil
	case "logs":
		return sup.Logs(runCtx)
	case "kill":
		return killWorkers(cmd, ctx, false)
	default:
		return fmt.Errorf("unknown menu command %q", command)
	}
}
