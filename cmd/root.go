package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/templay/internal/formatter"
	"github.com/oakwood-commons/templay/pkg/logger"
	"github.com/oakwood-commons/templay/pkg/settings"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configFile string
	logLevel   string
	logFormat  string
	noColor    bool
}

func cliVersionString() string {
	v := settings.VersionInformation
	return fmt.Sprintf("%s %s (commit %s, built %s)", settings.CliBinaryName, v.BuildVersion, v.Commit, v.BuildTime)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   settings.CliBinaryName,
		Short: "Manage templay configuration: the external editor and named templates",
		Long: `templay keeps a small configuration file describing an external editor and an
ordered list of named text templates.

The effective configuration is the built-in defaults with the user file merged on
top. The user file is found via --config-file, $TEMPLAY_CONFIG, or
$XDG_CONFIG_HOME/templay/config.toml (~/.config/templay/config.toml).`,
		Example: `  templay config init
  templay templates list --where 'name.startsWith("Bug")'
  templay templates add Notes --content '- '
  templay editor set --name "VS Code" --command code --args "--wait {FilePath}"
  templay config migrate old.json --write`,
		Version:       cliVersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.SetVersionTemplate("{{.Version}}\n")

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configFile, "config-file", "", "path to the config file (.toml, .yaml, .yml or .json)")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug|info|warn|error")
	pf.StringVar(&opts.logFormat, "log-format", logger.FormatConsole, "log format: console|json")
	pf.BoolVar(&opts.noColor, "no-color", false, "disable color output")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newTemplatesCmd())
	cmd.AddCommand(newEditorCmd())
	return cmd
}

// setup builds the run settings and the logger and stores both in the command context.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	level, err := logger.ParseLevel(o.logLevel)
	if err != nil {
		return err
	}
	if o.logFormat != logger.FormatConsole && o.logFormat != logger.FormatJSON {
		return fmt.Errorf("unknown log format %q (use console|json)", o.logFormat)
	}

	run := settings.NewCliParams()
	run.MinLogLevel = level
	run.LogFormat = o.logFormat
	run.ConfigPath = o.configFile
	run.NoColor = o.noColor || os.Getenv(settings.EnvNoColor) != "" || !outputIsTerminal(cmd)

	lgr := logger.SetupFromSettings(run).WithValues("command", cmd.CommandPath())
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = settings.IntoContext(ctx, run)
	ctx = logger.WithLogger(ctx, &lgr)
	cmd.SetContext(ctx)

	lgr.V(1).Info("starting", "configFile", run.ConfigPath, "noColor", run.NoColor)
	return nil
}

func outputIsTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && formatter.IsTerminal(f)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print templay version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), cliVersionString())
			return err
		},
	}
}

// Execute runs the CLI until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}
