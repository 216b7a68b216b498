package cli

import (
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"

	"github.com/r9s-ai/sexpfmt/internal/lsp"
	"github.com/r9s-ai/sexpfmt/internal/pretty"
)

type ServeRuntimeOptions struct {
	Stdin     io.Reader
	Stdout    io.Writer
	Stderr    io.Writer
	BuildInfo BuildInfo
	Format    pretty.Options
}

type ServeRunner func(opts ServeRuntimeOptions) error

func newServeCmd(opts Options, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the sexpfmt language server over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServeWithOptions(opts, flags)
		},
	}
}

func runServeWithOptions(opts Options, flags *globalFlags) error {
	formatOpts, err := loadFormatOptions(opts, flags)
	if err != nil {
		return err
	}
	return opts.ServeRunner(ServeRuntimeOptions{
		Stdin:     opts.Stdin,
		Stdout:    opts.Stdout,
		Stderr:    opts.Stderr,
		BuildInfo: opts.BuildInfo,
		Format:    formatOpts,
	})
}

func defaultServeRunner(opts ServeRuntimeOptions) error {
	if opts.BuildInfo.Version != "" {
		lsp.ServerVersion = opts.BuildInfo.Version
	}
	logger := log.New(opts.Stderr, "sexpfmt: ", log.LstdFlags|log.Lshortfile)
	srv := lsp.NewServer(opts.Stdin, opts.Stdout, logger, opts.Format)
	if err := srv.Run(); err != nil {
		return fmt.Errorf("server exited with error: %w", err)
	}
	return nil
}
