package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// editorView is the json/yaml shape of the external editor.
type editorView struct {
	Name    string `json:"name" yaml:"name"`
	Command string `json:"command" yaml:"command"`
	Args    string `json:"args" yaml:"args"`
}

func newEditorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "editor",
		Short: "Show or change the external editor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newEditorGetCmd())
	cmd.AddCommand(newEditorSetCmd())
	return cmd
}

func newEditorGetCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show the effective external editor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseOutput(output, outputTable, outputJSON, outputYAML)
			if err != nil {
				return err
			}
			cfg, _, err := loadEffective(cmd)
			if err != nil {
				return err
			}
			e := cfg.ExternalEditor
			switch format {
			case outputJSON:
				return writeJSON(cmd.OutOrStdout(), editorView(e))
			case outputYAML:
				return writeYAML(cmd.OutOrStdout(), editorView(e))
			default:
				return writeKeyValue(cmd, [][]string{
					{"name", e.Name},
					{"command", e.Command},
					{"args", e.Args},
				})
			}
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table|json|yaml")
	return cmd
}

func newEditorSetCmd() *cobra.Command {
	var name, command, args string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change the external editor in the user config file",
		Long: `Set updates only the fields whose flags are given. The editor is stored, never
launched. Changing the command without --name clears the old editor's name.
Setting a name on a revision 1 file upgrades it to the current revision.`,
		Example: `  templay editor set --name "VS Code" --command code --args "--wait {FilePath}"
  templay editor set --args ""`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uf, err := loadUserFile(cmd)
			if err != nil {
				return err
			}
			prev := uf.cfg.ExternalEditor
			e := prev
			changed := 0
			cmd.Flags().Visit(func(f *pflag.Flag) {
				switch f.Name {
				case "name":
					e.Name = name
				case "command":
					e.Command = command
				case "args":
					e.Args = args
				default:
					return
				}
				changed++
			})
			if changed == 0 {
				return errors.New("nothing to change; pass --name, --command or --args")
			}
			// a name describes its command and does not carry over to another one
			if e.Command != prev.Command && !cmd.Flags().Changed("name") {
				e.Name = ""
			}
			if err := uf.save(cmd.Context(), uf.cfg.WithEditor(e)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "external editor updated in %s\n", uf.path)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "human-readable editor name")
	cmd.Flags().StringVar(&command, "command", "", "editor executable or path")
	cmd.Flags().StringVar(&args, "args", "", "argument string passed to the editor")
	return cmd
}
