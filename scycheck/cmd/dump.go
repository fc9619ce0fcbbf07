package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/WJQSERVER/scy"
)

func newDumpCmd(a *app) *cobra.Command {
	var (
		jsonOutput bool
		indent     string
		spans      bool
	)
	cmd := &cobra.Command{
		Use:   "dump FILE...",
		Short: "Print the syntax tree of each file",
		Long: `dump parses each file and prints its tree. By default the tree is
written on one line; --indent selects a multi-line layout using the given
indent unit.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if cmd.Flags().Changed("indent") {
				cfg.Indent = indent
			}
			if spans {
				cfg.Spans = true
			}

			var trees []parsedFile
			for _, path := range args {
				root, err := scy.ParseFile(path, cfg.parseMode(), a.parseOptions()...)
				if err != nil {
					return reportDiagnostic(cmd, err)
				}
				trees = append(trees, parsedFile{path: path, root: root})
			}

			out := cmd.OutOrStdout()
			if jsonOutput || cfg.JSON {
				if err := writeTrees(out, trees, cfg.Spans); err != nil {
					return fmt.Errorf("could not encode json: %w", err)
				}
				return nil
			}
			opts := cfg.formatOptions()
			for _, t := range trees {
				if len(trees) > 1 {
					fmt.Fprintf(out, "==> %s <==\n", t.path)
				}
				fmt.Fprintln(out, scy.Dump(t.root, opts))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output the tree in JSON format")
	cmd.Flags().StringVar(&indent, "indent", "", "indent unit; selects the multi-line layout")
	cmd.Flags().BoolVar(&spans, "spans", false, "append source spans to every node")
	return cmd
}

type parsedFile struct {
	path string
	root scy.Root
}
