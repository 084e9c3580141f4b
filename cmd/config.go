package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/templay/internal/config"
	"github.com/oakwood-commons/templay/internal/formatter"
	"github.com/oakwood-commons/templay/pkg/logger"
)

// newConfigCmd groups the subcommands that operate on the config file as a whole.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect, validate and migrate the configuration file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigValidateCmd())
	cmd.AddCommand(newConfigMigrateCmd())
	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigPathCmd())
	cmd.AddCommand(newConfigWatchCmd())
	return cmd
}

func newConfigGetCmd() *cobra.Command {
	var (
		output   string
		revision int
	)
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show the effective configuration (defaults merged with the user file)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseOutput(output, outputTOML, outputYAML, outputJSON, outputTable)
			if err != nil {
				return err
			}
			cfg, _, err := loadEffective(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("revision") {
				rev := config.Revision(revision)
				if !rev.Valid() {
					return &config.UnsupportedVersionError{Version: revision}
				}
				cfg.Version = revision
			}
			if format == outputTable {
				return writeKeyValue(cmd, configRows(cfg))
			}
			f, err := config.ParseFormat(format)
			if err != nil {
				return err
			}
			data, err := config.Encode(cfg, f)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputTOML, "output format: toml|yaml|json|table")
	cmd.Flags().IntVar(&revision, "revision", int(config.CurrentRevision), "wire shape to print: 1|2")
	return cmd
}

func configRows(cfg config.Configuration) [][]string {
	rows := [][]string{
		{"version", strconv.Itoa(cfg.Version)},
		{"external_editor.name", cfg.ExternalEditor.Name},
		{"external_editor.command", cfg.ExternalEditor.Command},
		{"external_editor.args", cfg.ExternalEditor.Args},
	}
	for i, t := range cfg.Templates {
		rows = append(rows, []string{fmt.Sprintf("templates[%d] %s", i, t.Name), formatter.Preview(t.Content)})
	}
	return rows
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file|-]",
		Short: "Check a config file (or the effective configuration) and report issues",
		Long: `Validate decodes the given file, or the effective configuration when no file is
given, and reports every issue found. Errors make the command exit non-zero;
warnings (unnamed or duplicate templates) do not.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			var cfg config.Configuration
			if len(args) == 1 {
				data, f, err := readSource(cmd, args[0])
				if err != nil {
					return err
				}
				rev, err := config.DetectRevision(data, f)
				if err != nil {
					return err
				}
				if cfg, err = config.Decode(data, f); err != nil {
					return err
				}
				fmt.Fprintf(out, "%s: %s, revision %d\n", args[0], f, rev)
			} else {
				var (
					path string
					err  error
				)
				if cfg, path, err = loadEffective(cmd); err != nil {
					return err
				}
				if path == "" {
					path = "built-in defaults"
				}
				fmt.Fprintf(out, "%s: effective configuration\n", path)
			}

			res := config.Validate(cfg)
			for _, is := range res.Issues {
				fmt.Fprintf(out, "%-7s %s\n", is.Severity, is)
			}
			if err := res.Err(); err != nil {
				return err
			}
			fmt.Fprintf(out, "ok: %d templates, %d warnings\n", len(cfg.Templates), len(res.Warnings()))
			return nil
		},
	}
}

func newConfigMigrateCmd() *cobra.Command {
	var (
		write  bool
		format string
	)
	cmd := &cobra.Command{
		Use:   "migrate [file|-]",
		Short: "Upgrade a config file to the current revision",
		Long: `Migrate reads a config file written in any supported revision and prints it in
the current revision's shape. With --write the file is replaced atomically.
Without a file argument the resolved user config file is migrated.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.Component(cmd.Context(), "cli")

			path := config.ResolvePath(runSettings(cmd).ConfigPath)
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return errors.New("no config file found; pass a file or --config-file")
			}
			if write && path == stdinPath {
				return errors.New("--write cannot be used with stdin")
			}

			data, srcFormat, err := readSource(cmd, path)
			if err != nil {
				return err
			}
			outFormat := srcFormat
			if format != "" {
				if outFormat, err = config.ParseFormat(format); err != nil {
					return err
				}
			}

			rev, err := config.DetectRevision(data, srcFormat)
			if err != nil {
				return err
			}
			cfg, err := config.Decode(data, srcFormat)
			if err != nil {
				return err
			}
			upgraded := config.Upgrade(cfg)
			log.V(1).Info("migrating config", logger.PathKey, path, "from", int(rev), "to", upgraded.Version)

			if !write {
				out, err := config.Encode(upgraded, outFormat)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}

			if outFormat != srcFormat {
				return fmt.Errorf("--format %s does not match %s; write to a new file by redirecting output instead", outFormat, path)
			}
			if rev == config.CurrentRevision {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is already at revision %d\n", path, rev)
				return nil
			}
			if err := config.SaveFile(cmd.Context(), path, upgraded); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrated %s from revision %d to %d\n", path, rev, upgraded.Version)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "replace the file instead of printing the result")
	cmd.Flags().StringVar(&format, "format", "", "output format: toml|yaml|json (default: the input format)")
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the built-in default configuration to the config path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := writablePath(cmd)
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists; use --force to overwrite", path)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("stat %s: %w", path, err)
			}
			if err := config.WriteDefault(cmd.Context(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote default configuration to %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if p := config.ResolvePath(runSettings(cmd).ConfigPath); p != "" {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), p)
				return err
			}
			p, err := writablePath(cmd)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "no config file yet; built-in defaults are in effect")
			_, err = fmt.Fprintln(cmd.OutOrStdout(), p)
			return err
		},
	}
}

func newConfigWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Reload the config file whenever it changes and report each reload",
		Long: `Watch keeps the effective configuration loaded and reloads it whenever the
user config file changes. Invalid edits are reported and the previous
configuration stays in effect. Stop with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			initial, path, err := loadEffective(cmd)
			if err != nil {
				return err
			}
			if path == "" {
				return errors.New("no config file to watch; run `templay config init` first")
			}

			holder := config.NewHolder(ctx, initial, path)
			updates := make(chan config.Configuration, 1)
			holder.Subscribe(updates)
			if err := holder.Watch(ctx); err != nil {
				return err
			}
			defer holder.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "watching %s (editor %q, %d templates)\n", holder.Path(), initial.ExternalEditor.Command, len(initial.Templates))
			for {
				select {
				case <-ctx.Done():
					return nil
				case cfg := <-updates:
					fmt.Fprintf(out, "reloaded %s: version %d, editor %q, %d templates\n",
						holder.Path(), cfg.Version, cfg.ExternalEditor.Command, len(cfg.Templates))
				}
			}
		},
	}
}
