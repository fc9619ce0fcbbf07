package cmd

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/WJQSERVER/scy"
)

// app carries the state shared by all subcommands of one invocation.
type app struct {
	cfgFile  string
	mode     string
	maxDepth int
	verbose  bool

	cfg    Config
	logger *slog.Logger
}

// NewRootCommand builds the scycheck command tree. Each call returns an
// independent tree, so tests can run commands side by side.
func NewRootCommand() *cobra.Command {
	a := &app{cfg: DefaultConfig()}
	rootCmd := &cobra.Command{
		Use:   "scycheck",
		Short: "Inspect and check scy source files",
		Long: `scycheck runs the scy front end over source files.

Commands:
  tokens   - print the token stream
  dump     - print the syntax tree
  check    - parse and verify files, reporting diagnostics`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (.toml, .yaml or .yml)")
	flags.StringVar(&a.mode, "mode", "", "parse mode: module or expression (default module)")
	flags.IntVar(&a.maxDepth, "max-depth", 0, fmt.Sprintf("nesting limit (default %d)", scy.DefaultMaxDepth))
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(newTokensCmd(a), newDumpCmd(a), newCheckCmd(a), newVersionCmd())
	return rootCmd
}

func Execute() error {
	return NewRootCommand().Execute()
}

// setup loads the config file, applies flag overrides and builds the
// logger.
func (a *app) setup(cmd *cobra.Command) error {
	if a.cfgFile != "" {
		cfg, err := LoadConfig(a.cfgFile)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	if cmd.Flags().Changed("mode") {
		a.cfg.Mode = a.mode
	}
	if cmd.Flags().Changed("max-depth") {
		a.cfg.MaxDepth = a.maxDepth
	}
	if a.verbose {
		a.cfg.LogLevel = "debug"
	}
	a.cfg.fillDefaults()
	if err := a.cfg.validate(); err != nil {
		return err
	}

	level, _ := a.cfg.level()
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	a.logger = slog.New(handler).With("run", uuid.NewString())
	a.logger.Debug("configuration loaded", "config", a.cfgFile, "mode", a.cfg.Mode, "max_depth", a.cfg.MaxDepth)
	return nil
}

func (a *app) parseOptions() []scy.ParseOption {
	return []scy.ParseOption{scy.WithMaxDepth(a.cfg.MaxDepth), scy.WithLogger(a.logger)}
}
