package cmd

import (
	"fmt"
	"os"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/spf13/cobra"

	"github.com/WJQSERVER/scy"
)

type tokenRecord struct {
	Type   scy.TokenType `json:"type"`
	Lexeme string        `json:"lexeme"`
	Line   int           `json:"line"`
	Column int           `json:"column"`
	Index  int           `json:"index"`
}

type fileTokens struct {
	File   string        `json:"file"`
	Tokens []tokenRecord `json:"tokens"`
}

func newTokensCmd(a *app) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "tokens FILE...",
		Short: "Print the token stream of each file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var all []fileTokens
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("could not read file %s: %w", path, err)
				}
				tokens, err := scy.Tokenize(string(data), path)
				if err != nil {
					return reportDiagnostic(cmd, err)
				}
				a.logger.Debug("tokenized file", "file", path, "tokens", len(tokens))

				ft := fileTokens{File: path, Tokens: make([]tokenRecord, len(tokens))}
				for i, tok := range tokens {
					ft.Tokens[i] = tokenRecord{Type: tok.Type, Lexeme: tok.Lexeme, Line: tok.Line, Column: tok.Column, Index: tok.Index}
				}
				all = append(all, ft)
			}

			out := cmd.OutOrStdout()
			if jsonOutput || a.cfg.JSON {
				if err := json.MarshalWrite(out, all, jsontext.Multiline(true), jsontext.WithIndent("  ")); err != nil {
					return fmt.Errorf("could not marshal json: %w", err)
				}
				fmt.Fprintln(out)
				return nil
			}
			for _, ft := range all {
				if len(all) > 1 {
					fmt.Fprintf(out, "==> %s <==\n", ft.File)
				}
				for _, tok := range ft.Tokens {
					fmt.Fprintf(out, "%d:%d\t%s\t%q\n", tok.Line, tok.Column, tok.Type, tok.Lexeme)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output tokens in JSON format")
	return cmd
}
