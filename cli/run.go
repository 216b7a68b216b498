// Package cli exposes the sexpfmt command tree for embedding in other
// binaries.
package cli

import internalcli "github.com/r9s-ai/sexpfmt/internal/cli"

type BuildInfo = internalcli.BuildInfo
type Options = internalcli.Options

func Run(args []string, opts Options) error {
	return internalcli.Run(args, opts)
}
