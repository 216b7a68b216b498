package main

import (
	"io"
	"log"
	"os"

	"github.com/r9s-ai/sexpfmt/cli"
)

// Set at build time via -ldflags.
var (
	version   = "dev"
	commit    = ""
	buildDate = ""
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	logger := log.New(stderr, "sexpfmt: ", 0)
	err := cli.Run(args, cli.Options{
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
		BuildInfo: cli.BuildInfo{
			Version:   version,
			Commit:    commit,
			BuildDate: buildDate,
		},
	})
	if err != nil {
		logger.Print(err)
		return 1
	}
	return 0
}
