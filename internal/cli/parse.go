package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ben-ranford/cjslexer/internal/app"
	"github.com/ben-ranford/cjslexer/internal/config"
	"github.com/ben-ranford/cjslexer/internal/report"
	"github.com/spf13/cobra"
)

var ErrHelpRequested = errors.New("help requested")

type globalFlags struct {
	configPath      string
	verbose         bool
	wd              string
	nodeEnv         string
	callMode        bool
	dropConditional bool
	format          string
	concurrency     int
	pkg             string
}

// ParseArgs turns command-line arguments into an app.Request. The cobra
// commands only capture the request; running it is left to the Runner.
func ParseArgs(args []string) (app.Request, error) {
	req := app.DefaultRequest()
	flags := &globalFlags{}
	helpRequested := false
	captured := false

	root := newRootCommand(flags, func(cmd *cobra.Command, mode app.Mode, positional []string) error {
		parsed, err := buildRequest(cmd, flags, mode, positional)
		if err != nil {
			return err
		}
		req = parsed
		captured = true
		return nil
	})
	root.SetHelpFunc(func(*cobra.Command, []string) {
		helpRequested = true
	})
	if args == nil {
		args = []string{}
	}
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		return req, err
	}
	if helpRequested || !captured {
		return req, ErrHelpRequested
	}
	return req, nil
}

type captureFunc func(cmd *cobra.Command, mode app.Mode, positional []string) error

func newRootCommand(flags *globalFlags, capture captureFunc) *cobra.Command {
	root := &cobra.Command{
		Use:           "cjslexer",
		Short:         "List the named exports of CommonJS modules",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	persistent := root.PersistentFlags()
	persistent.StringVar(&flags.configPath, "config", "", "config file path")
	persistent.BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")
	persistent.StringVar(&flags.wd, "wd", ".", "working directory for config discovery and package lookup")
	persistent.StringVar(&flags.nodeEnv, "node-env", config.DefaultNodeEnv, "NODE_ENV to assume: production, development or none")
	persistent.BoolVar(&flags.callMode, "call-mode", false, "recognize star-export helper calls")
	persistent.BoolVar(&flags.dropConditional, "drop-conditional", false, "omit names only found under runtime guards")
	persistent.StringVar(&flags.format, "format", string(report.FormatText), "output format: text or json")

	parseCmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Print the exports and reexports of one file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return capture(cmd, app.ModeParse, args)
		},
	}

	exportsCmd := &cobra.Command{
		Use:   "exports SPECIFIER",
		Short: "Resolve a package entry and list its exports with reexports followed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return capture(cmd, app.ModeExports, args)
		},
	}
	exportsCmd.Flags().StringVar(&flags.pkg, "package", "", "package that . and ./sub refer to")

	batchCmd := &cobra.Command{
		Use:   "batch FILE...",
		Short: "Parse many files concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return capture(cmd, app.ModeBatch, args)
		},
	}
	batchCmd.Flags().IntVar(&flags.concurrency, "concurrency", 0, "maximum files parsed at once")

	root.AddCommand(parseCmd, exportsCmd, batchCmd)
	return root
}

func buildRequest(cmd *cobra.Command, flags *globalFlags, mode app.Mode, positional []string) (app.Request, error) {
	req := app.DefaultRequest()
	req.Mode = mode
	req.WorkingDir = flags.wd
	req.ConfigPath = flags.configPath
	req.Verbose = flags.verbose

	format, err := report.ParseFormat(flags.format)
	if err != nil {
		return req, err
	}
	req.Format = format

	overrides, err := flagOverrides(cmd, flags)
	if err != nil {
		return req, err
	}
	req.Overrides = overrides

	switch mode {
	case app.ModeParse:
		req.File = positional[0]
	case app.ModeExports:
		req.Specifier = positional[0]
		req.Package = strings.TrimSpace(flags.pkg)
	case app.ModeBatch:
		req.Files = append([]string{}, positional...)
	}
	return req, nil
}

func flagOverrides(cmd *cobra.Command, flags *globalFlags) (config.Overrides, error) {
	overrides := config.Overrides{}
	changed := cmd.Flags().Changed
	if changed("node-env") {
		nodeEnv := strings.ToLower(strings.TrimSpace(flags.nodeEnv))
		overrides.NodeEnv = &nodeEnv
	}
	if changed("call-mode") {
		overrides.CallMode = &flags.callMode
	}
	if changed("drop-conditional") {
		overrides.DropConditional = &flags.dropConditional
	}
	if changed("concurrency") {
		overrides.Concurrency = &flags.concurrency
	}
	if err := overrides.Validate(); err != nil {
		return config.Overrides{}, fmt.Errorf("invalid flag: %w", err)
	}
	return overrides, nil
}
