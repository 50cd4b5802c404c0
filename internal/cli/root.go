package cli

import (
	stdcontext "context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Paintersrp/botctl/internal/config"
	"github.com/Paintersrp/botctl/internal/metrics"
	"github.com/Paintersrp/botctl/internal/process"
	"github.com/Paintersrp/botctl/internal/supervisor"
)

const metricsFileEnv = "BOTCTL_METRICS_FILE"

func NewRootCmd() *cobra.Command {
	root, _ := newRootCommand()
	return root
}

func newRootCommand() (*cobra.Command, *context) {
	var (
		configFile  string
		envFile     string
		logLevel    string
		metricsFile = os.Getenv(metricsFileEnv)
	)

	cobra.EnableCaseInsensitive = true

	ctx := &context{
		configFile:  &configFile,
		envFile:     &envFile,
		logLevel:    &logLevel,
		metricsFile: &metricsFile,
	}

	root := &cobra.Command{
		Use:   "botctl",
		Short: "Start, stop and monitor a single bot worker process",
		Long: "botctl supervises one long-running worker program. Run it without a\n" +
			"command to open the interactive menu.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMenu(cmd, ctx)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", config.DefaultManifest, "Path to the target manifest")
	flags.StringVar(&envFile, "env-file", "", "Environment file to load (overrides the manifest)")
	flags.StringVar(&logLevel, "log-level", logrus.WarnLevel.String(), "Diagnostic log level")
	flags.StringVar(&metricsFile, "metrics-file", metricsFile, "Write Prometheus metrics to this textfile on exit (env "+metricsFileEnv+")")

	root.AddCommand(newStartCmd(ctx))
	root.AddCommand(newStopCmd(ctx))
	root.AddCommand(newRestartCmd(ctx))
	root.AddCommand(newStatusCmd(ctx))
	root.AddCommand(newLogsCmd(ctx))
	root.AddCommand(newKillCmd(ctx))
	root.AddCommand(newMenuCmd(ctx))
	root.AddCommand(newConfigCmd(ctx))

	root.SilenceUsage = true
	root.SilenceErrors = true

	return root, ctx
}

// Execute runs the CLI entrypoint.
func Execute() {
	ctx, stop := signal.NotifyContext(stdcontext.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, cliCtx := newRootCommand()
	root.SetContext(ctx)

	err := root.ExecuteContext(ctx)
	cliCtx.flushMetrics(root.ErrOrStderr())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type context struct {
	configFile  *string
	envFile     *string
	logLevel    *string
	metricsFile *string

	// newDirectory and interactive are replaced in tests.
	newDirectory func(kind config.DirectoryKind) (process.Directory, error)
	interactive  func(cmd *cobra.Command) bool

	logger *logrus.Logger
	sup    *supervisor.Supervisor
	input  *lineReader
}

func (c *context) log(cmd *cobra.Command) (*logrus.Logger, error) {
	if c.logger != nil {
		return c.logger, nil
	}
	level, err := logrus.ParseLevel(*c.logLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level: %w", err)
	}
	logger := logrus.New()
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	c.logger = logger
	return logger, nil
}

// getSupervisor loads the target and environment once per invocation. A
// missing manifest is only an error when --config was given explicitly.
func (c *context) getSupervisor(cmd *cobra.Command) (*supervisor.Supervisor, error) {
	if c.sup != nil {
		return c.sup, nil
	}
	logger, err := c.log(cmd)
	if err != nil {
		return nil, err
	}

	required := false
	if flag := cmd.Flag("config"); flag != nil {
		required = flag.Changed
	}
	target, err := config.LoadOrDefault(*c.configFile, required)
	if err != nil {
		return nil, err
	}
	if *c.envFile != "" {
		target.EnvFile = *c.envFile
	}
	logger.WithFields(logrus.Fields{"target": target.Name, "manifest": target.Source}).Debug("target loaded")

	out := cmd.OutOrStdout()
	found, err := config.LoadEnvFile(target.EnvFile)
	switch {
	case err != nil:
		return nil, err
	case found:
		fmt.Fprintf(out, "Loaded environment variables from %s\n", target.EnvFile)
	default:
		fmt.Fprintf(out, "No %s file found. Using system environment variables only.\n", target.EnvFile)
	}

	newDirectory := c.newDirectory
	if newDirectory == nil {
		newDirectory = func(kind config.DirectoryKind) (process.Directory, error) {
			return process.NewDirectory(string(kind))
		}
	}
	dir, err := newDirectory(target.Directory)
	if err != nil {
		return nil, err
	}

	c.sup = supervisor.New(target, dir, supervisor.WithOutput(out), supervisor.WithLogger(logger))
	return c.sup, nil
}

func (c *context) lines(cmd *cobra.Command) *lineReader {
	if c.input == nil {
		c.input = newLineReader(cmd.InOrStdin())
	}
	return c.input
}

func (c *context) isInteractive(cmd *cobra.Command) bool {
	if c.interactive != nil {
		return c.interactive(cmd)
	}
	return isTerminal(cmd.InOrStdin()) && isTerminal(cmd.OutOrStdout())
}

func (c *context) flushMetrics(errOut io.Writer) {
	if c.metricsFile == nil || *c.metricsFile == "" {
		return
	}
	if err := metrics.WriteTextfile(*c.metricsFile); err != nil {
		fmt.Fprintf(errOut, "write metrics: %v\n", err)
	}
}
