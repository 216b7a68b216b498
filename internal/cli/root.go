package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/r9s-ai/sexpfmt/internal/config"
	"github.com/r9s-ai/sexpfmt/internal/pretty"
)

type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

type Options struct {
	Stdin       io.Reader
	Stdout      io.Writer
	Stderr      io.Writer
	BuildInfo   BuildInfo
	ServeRunner ServeRunner
	// WorkDir is searched for a config file when --config is not given.
	WorkDir string
}

// globalFlags holds persistent flags shared by all subcommands.
type globalFlags struct {
	configPath string
}

func Run(args []string, opts Options) error {
	resolved := normalizeOptions(opts)
	root := newRootCmd(resolved)
	root.SetArgs(args)
	return root.Execute()
}

func normalizeOptions(opts Options) Options {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.ServeRunner == nil {
		opts.ServeRunner = defaultServeRunner
	}
	if opts.WorkDir == "" {
		if wd, err := os.Getwd(); err == nil {
			opts.WorkDir = wd
		}
	}
	return opts
}

func newRootCmd(opts Options) *cobra.Command {
	flags := &globalFlags{}
	cmd := &cobra.Command{
		Use:           "sexpfmt",
		Short:         "Re-indent nested parenthesized text",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServeWithOptions(opts, flags)
		},
	}
	cmd.SetIn(opts.Stdin)
	cmd.SetOut(opts.Stdout)
	cmd.SetErr(opts.Stderr)
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default: "+config.FileName+" in the working directory)")
	cmd.AddCommand(
		newServeCmd(opts, flags),
		newFormatCmd(opts, flags),
		newVersionCmd(opts),
	)
	return cmd
}

func loadFormatOptions(opts Options, flags *globalFlags) (pretty.Options, error) {
	cfg, err := config.Resolve(flags.configPath, opts.WorkDir)
	if err != nil {
		return pretty.Options{}, err
	}
	return cfg.Options(), nil
}
