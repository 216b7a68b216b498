package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/r9s-ai/sexpfmt/internal/pretty"
	"github.com/r9s-ai/sexpfmt/internal/render"
)

const stdinPath = "-"

type formatOptions struct {
	tabSize   int
	useTabs   bool
	policy    string
	normalize bool
	write     bool
	output    string
	check     bool
	color     string
	jobs      int
}

type formatResult struct {
	path      string
	src       []byte
	formatted string
}

func (r formatResult) changed() bool {
	return r.formatted != string(r.src)
}

func (r formatResult) displayPath() string {
	if r.path == stdinPath {
		return "<stdin>"
	}
	return r.path
}

func newFormatCmd(opts Options, flags *globalFlags) *cobra.Command {
	formatOpts := formatOptions{tabSize: pretty.DefaultIndentSize, normalize: true, color: "auto"}
	cmd := &cobra.Command{
		Use:   "format [file|-]...",
		Short: "Re-indent parenthesized text files",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := normalizePaths(args)
			if err := formatOpts.validate(paths); err != nil {
				return err
			}
			base, err := loadFormatOptions(opts, flags)
			if err != nil {
				return err
			}
			prettyOpts, err := formatOpts.apply(cmd.Flags(), base)
			if err != nil {
				return err
			}

			results, err := formatSources(cmd.Context(), paths, opts.Stdin, prettyOpts, formatOpts)
			if err != nil {
				return err
			}

			switch {
			case formatOpts.check:
				return reportUnformatted(opts.Stdout, results)
			case formatOpts.write:
				return nil
			case formatOpts.output != "":
				return writeOutputFile(formatOpts.output, results[0].formatted)
			}

			colorizer := newColorizer(formatOpts.color, opts.Stdout)
			for _, res := range results {
				if _, err := io.WriteString(opts.Stdout, colorizer.Colorize(res.formatted)); err != nil {
					return err
				}
			}
			return nil
		},
	}

	fs := cmd.Flags()
	fs.IntVar(&formatOpts.tabSize, "tab-size", pretty.DefaultIndentSize, "spaces per nesting level")
	fs.BoolVar(&formatOpts.useTabs, "tabs", false, "use tabs for indentation")
	fs.StringVar(&formatOpts.policy, "policy", "line-stack", "closing paren placement (line-stack|depth)")
	fs.BoolVar(&formatOpts.normalize, "normalize", true, "strip stray whitespace and blank lines (--normalize=false keeps raw output)")
	fs.BoolVarP(&formatOpts.write, "write", "w", false, "write result back to file")
	fs.StringVarP(&formatOpts.output, "output", "o", "", "write result to this file")
	fs.BoolVar(&formatOpts.check, "check", false, "list inputs whose formatting differs and fail if any")
	fs.StringVar(&formatOpts.color, "color", "auto", "color parens by depth on stdout (auto|always|never)")
	fs.IntVarP(&formatOpts.jobs, "jobs", "j", 0, "number of inputs formatted in parallel (default GOMAXPROCS)")
	return cmd
}

func normalizePaths(args []string) []string {
	if len(args) == 0 {
		return []string{stdinPath}
	}
	paths := make([]string, 0, len(args))
	for _, arg := range args {
		path := strings.TrimSpace(arg)
		if path == "" {
			path = stdinPath
		}
		paths = append(paths, path)
	}
	return paths
}

func (o formatOptions) validate(paths []string) error {
	stdinCount := 0
	for _, p := range paths {
		if p == stdinPath {
			stdinCount++
		}
	}
	if stdinCount > 1 {
		return errors.New("stdin can be formatted only once")
	}
	if o.write && o.check {
		return errors.New("--check cannot be used with --write")
	}
	if o.write && stdinCount > 0 {
		return errors.New("--write requires a file path")
	}
	if o.output != "" {
		if o.write || o.check {
			return errors.New("--output cannot be used with --write or --check")
		}
		if len(paths) != 1 {
			return errors.New("--output accepts exactly one input")
		}
	}
	switch o.color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("unsupported color mode %q (want auto, always or never)", o.color)
	}
	if o.jobs < 0 {
		return fmt.Errorf("--jobs must not be negative, got %d", o.jobs)
	}
	return nil
}

// apply layers explicitly set flags over base.
func (o formatOptions) apply(fs *pflag.FlagSet, base pretty.Options) (pretty.Options, error) {
	out := base
	if fs.Changed("tab-size") {
		if o.tabSize < 1 || o.tabSize > 16 {
			return pretty.Options{}, fmt.Errorf("--tab-size must be between 1 and 16, got %d", o.tabSize)
		}
		out.IndentSize = o.tabSize
	}
	if fs.Changed("tabs") {
		out.UseTabs = o.useTabs
	}
	if fs.Changed("policy") {
		policy, err := pretty.ParsePolicy(o.policy)
		if err != nil {
			return pretty.Options{}, err
		}
		out.Policy = policy
	}
	if fs.Changed("normalize") {
		out.NormalizeSpace = o.normalize
	}
	return out, nil
}

// formatSources reads and formats every input in parallel. With --write,
// changed files are rewritten by the same worker. Results keep input order.
func formatSources(ctx context.Context, paths []string, in io.Reader, prettyOpts pretty.Options, o formatOptions) ([]formatResult, error) {
	jobs := o.jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]formatResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			src, err := readFormatSource(path, in)
			if err != nil {
				return err
			}
			res := formatResult{
				path:      path,
				src:       src,
				formatted: pretty.FormatText(string(src), prettyOpts),
			}
			if o.write {
				if err := writeFormattedOutput(path, src, res.formatted); err != nil {
					return err
				}
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func reportUnformatted(out io.Writer, results []formatResult) error {
	unformatted := 0
	for _, res := range results {
		if !res.changed() {
			continue
		}
		unformatted++
		if _, err := fmt.Fprintln(out, res.displayPath()); err != nil {
			return err
		}
	}
	if unformatted > 0 {
		return fmt.Errorf("formatting changes required in %d input(s)", unformatted)
	}
	return nil
}

func newColorizer(mode string, out io.Writer) *render.Colorizer {
	switch mode {
	case "always":
		return render.NewColorizer(true)
	case "never":
		return render.NewColorizer(false)
	}
	f, ok := out.(*os.File)
	return render.NewColorizer(ok && f == os.Stdout && !color.NoColor)
}

func readFormatSource(path string, in io.Reader) ([]byte, error) {
	if path == stdinPath {
		src, err := io.ReadAll(in)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return src, nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %q: %w", path, err)
	}
	return src, nil
}

func writeFormattedOutput(path string, src []byte, formatted string) error {
	if path == stdinPath {
		return errors.New("--write requires a file path")
	}
	if formatted == string(src) {
		return nil
	}
	return writeOutputFile(path, formatted)
}

func writeOutputFile(path, formatted string) error {
	mode := os.FileMode(0o644)
	if st, statErr := os.Stat(path); statErr == nil {
		mode = st.Mode().Perm()
	}
	if err := os.WriteFile(path, []byte(formatted), mode); err != nil {
		return fmt.Errorf("write file %q: %w", path, err)
	}
	return nil
}
