package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/templay/internal/config"
	"github.com/oakwood-commons/templay/internal/formatter"
	"github.com/oakwood-commons/templay/internal/query"
)

// templateView is the json/yaml shape of a listed template.
type templateView struct {
	Index   int    `json:"index" yaml:"index"`
	Name    string `json:"name" yaml:"name"`
	Content string `json:"content" yaml:"content"`
}

func newTemplatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "templates",
		Aliases: []string{"template", "tpl"},
		Short:   "List and edit named templates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newTemplatesListCmd())
	cmd.AddCommand(newTemplatesShowCmd())
	cmd.AddCommand(newTemplatesAddCmd())
	cmd.AddCommand(newTemplatesRemoveCmd())
	return cmd
}

func newTemplatesListCmd() *cobra.Command {
	var (
		where  string
		search string
		output string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List templates in configuration order",
		Long: `List prints the effective templates in order. --where filters them with a CEL
expression over name (string), content (string) and index (int), for example:

  templay templates list --where 'name.lowerAscii().contains("bug")'
  templay templates list --where 'index < 3 && content.contains("{name}")'

--search ranks templates by a fuzzy match on their names instead of listing them
in configuration order; --where still applies to the hits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseOutput(output, outputTable, outputJSON, outputYAML)
			if err != nil {
				return err
			}
			filter, err := query.Compile(where)
			if err != nil {
				return err
			}
			cfg, _, err := loadEffective(cmd)
			if err != nil {
				return err
			}

			candidates := make([]query.Match, 0, len(cfg.Templates))
			if search != "" {
				candidates = query.Search(search, cfg.Templates)
			} else {
				for i, t := range cfg.Templates {
					candidates = append(candidates, query.Match{Index: i, Template: t})
				}
			}

			views := make([]templateView, 0, len(candidates))
			for _, c := range candidates {
				ok, err := filter.Match(c.Index, c.Template)
				if err != nil {
					return err
				}
				if ok {
					views = append(views, templateView{Index: c.Index, Name: c.Template.Name, Content: c.Template.Content})
				}
			}

			switch format {
			case outputJSON:
				return writeJSON(cmd.OutOrStdout(), views)
			case outputYAML:
				return writeYAML(cmd.OutOrStdout(), views)
			default:
				rows := make([][]string, 0, len(views))
				for _, v := range views {
					rows = append(rows, []string{strconv.Itoa(v.Index), v.Name, formatter.Preview(v.Content)})
				}
				return writeTable(cmd, []string{"#", "NAME", "CONTENT"}, rows)
			}
		},
	}
	cmd.Flags().StringVar(&where, "where", "", "CEL filter over name, content and index")
	cmd.Flags().StringVarP(&search, "search", "s", "", "fuzzy match on template names, best match first")
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table|json|yaml")
	return cmd
}

func newTemplatesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Print a template's raw content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadEffective(cmd)
			if err != nil {
				return err
			}
			t, ok := cfg.FindTemplate(args[0])
			if !ok {
				return templateNotFound(args[0], cfg.Templates)
			}
			_, err = io.WriteString(cmd.OutOrStdout(), t.Content)
			return err
		},
	}
}

func newTemplatesAddCmd() *cobra.Command {
	var (
		content  string
		fromFile string
		replace  bool
	)
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a template to the user config file",
		Long: `Add stores a template under <name>. The content comes from --content,
--from-file, or standard input when neither is given. Content is stored verbatim.
Adding a name that already exists fails unless --replace is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if strings.TrimSpace(name) == "" {
				return errors.New("template name must not be empty")
			}
			if cmd.Flags().Changed("content") && fromFile != "" {
				return errors.New("--content and --from-file are mutually exclusive")
			}

			body := content
			switch {
			case fromFile != "":
				data, err := os.ReadFile(fromFile)
				if err != nil {
					return fmt.Errorf("read template: %w", err)
				}
				body = string(data)
			case !cmd.Flags().Changed("content"):
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read template from stdin: %w", err)
				}
				body = string(data)
			}

			effective, _, err := loadEffective(cmd)
			if err != nil {
				return err
			}
			_, exists := effective.FindTemplate(name)
			if exists && !replace {
				return fmt.Errorf("%w: %q (use --replace)", config.ErrTemplateExists, name)
			}

			uf, err := loadUserFile(cmd)
			if err != nil {
				return err
			}
			if err := uf.save(cmd.Context(), uf.cfg.WithTemplate(config.Template{Name: name, Content: body})); err != nil {
				return err
			}
			verb := "added"
			if exists {
				verb = "replaced"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s template %q in %s\n", verb, name, uf.path)
			return nil
		},
	}
	cmd.Flags().StringVar(&content, "content", "", "template content")
	cmd.Flags().StringVar(&fromFile, "from-file", "", "read template content from a file")
	cmd.Flags().BoolVar(&replace, "replace", false, "replace an existing template of the same name")
	return cmd
}

func newTemplatesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Remove a template from the user config file",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			uf, err := loadUserFile(cmd)
			if err != nil {
				return err
			}
			next, removed := uf.cfg.WithoutTemplate(name)
			if !removed {
				if def, err := config.Default(); err == nil {
					if _, ok := def.FindTemplate(name); ok {
						return fmt.Errorf("template %q is built in and cannot be removed; override it with `templates add --replace`", name)
					}
				}
				return templateNotFound(name, uf.cfg.Templates)
			}
			if err := uf.save(cmd.Context(), next); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed template %q from %s\n", name, uf.path)
			return nil
		},
	}
}

func templateNotFound(name string, templates []config.Template) error {
	if hints := query.Suggest(name, templates, 3); len(hints) > 0 {
		return fmt.Errorf("%w: %q (did you mean %s?)", config.ErrTemplateNotFound, name, quoteJoin(hints))
	}
	return fmt.Errorf("%w: %q", config.ErrTemplateNotFound, name)
}

func quoteJoin(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = strconv.Quote(n)
	}
	return strings.Join(quoted, ", ")
}
