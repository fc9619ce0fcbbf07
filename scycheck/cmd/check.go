package cmd

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/spf13/cobra"

	"github.com/WJQSERVER/scy"
)

var errCheckFailed = errors.New("check failed")

// checkResult is the outcome for one file. Diagnostic is set for lexical
// and syntax errors, Problem for everything else.
type checkResult struct {
	File       string          `json:"file"`
	OK         bool            `json:"ok"`
	Kind       string          `json:"kind,omitempty"`
	Diagnostic *scy.Diagnostic `json:"diagnostic,omitempty"`
	Problem    string          `json:"problem,omitempty"`
}

func newCheckCmd(a *app) *cobra.Command {
	var (
		jsonOutput bool
		concurrent bool
	)
	cmd := &cobra.Command{
		Use:   "check FILE...",
		Short: "Parse and verify files, reporting the first error in each",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workers := 1
			if concurrent {
				workers = a.cfg.Workers
			}
			results := a.checkFiles(args, workers)

			failed := 0
			for _, r := range results {
				if !r.OK {
					failed++
				}
			}

			if jsonOutput || a.cfg.JSON {
				err := json.MarshalWrite(cmd.OutOrStdout(), results, jsontext.Multiline(true), jsontext.WithIndent("  "))
				if err != nil {
					return fmt.Errorf("could not marshal json: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout())
			} else {
				errOut := cmd.ErrOrStderr()
				for _, r := range results {
					switch {
					case r.Diagnostic != nil:
						fmt.Fprintln(errOut, r.Diagnostic.Error())
						fmt.Fprintln(errOut, r.Diagnostic.Caret())
					case !r.OK:
						fmt.Fprintf(errOut, "%s: %s\n", r.File, r.Problem)
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d file(s) checked, %d failed\n", len(results), failed)
			}

			if failed > 0 {
				return fmt.Errorf("%w: %d of %d file(s)", errCheckFailed, failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output results in JSON format")
	cmd.Flags().BoolVar(&concurrent, "concurrent", false, "check files in parallel")
	return cmd
}

// checkFiles returns one result per path, in the order given.
func (a *app) checkFiles(paths []string, workers int) []checkResult {
	results := make([]checkResult, len(paths))
	if workers <= 1 {
		for i, path := range paths {
			results[i] = a.checkFile(path)
		}
		return results
	}

	if workers > len(paths) {
		workers = len(paths)
	}
	jobs := make(chan int, len(paths))
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = a.checkFile(paths[idx])
			}
		}()
	}
	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return results
}

func (a *app) checkFile(path string) checkResult {
	start := time.Now()
	res := checkResult{File: path}
	root, err := scy.ParseFile(path, a.cfg.parseMode(), a.parseOptions()...)
	if err == nil {
		err = scy.Verify(root)
	}

	var diag *scy.Diagnostic
	var verr *scy.VerifyError
	switch {
	case err == nil:
		res.OK = true
	case errors.As(err, &diag):
		res.Kind = diag.Kind.String()
		res.Diagnostic = diag
	case errors.As(err, &verr):
		res.Kind = "invalid tree"
		res.Problem = verr.Error()
	default:
		res.Kind = "io error"
		res.Problem = err.Error()
	}
	a.logger.Debug("checked file", "file", path, "ok", res.OK, "duration", time.Since(start))
	return res
}

// reportDiagnostic prints a caret diagnostic for err when it is one and
// returns the error for cobra to report.
func reportDiagnostic(cmd *cobra.Command, err error) error {
	var diag *scy.Diagnostic
	if errors.As(err, &diag) {
		fmt.Fprintln(cmd.ErrOrStderr(), diag.Caret())
	}
	return err
}
