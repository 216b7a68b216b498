// Package pretty re-indents nested parenthesized text such as s-expression
// debug logs. It works on characters only and never builds a tree, so it
// accepts any input, including unbalanced parens.
package pretty

import (
	"fmt"
	"strings"
)

// DefaultIndentSize is the number of spaces per nesting level.
const DefaultIndentSize = 2

const maxIndentSize = 16

// Policy selects where line breaks go around parens.
type Policy int

const (
	// PolicyLineStack starts every group on a new line and keeps the closing
	// paren on the same line as long as no line break was emitted inside the
	// group.
	PolicyLineStack Policy = iota
	// PolicyDepth breaks before a paren that directly nests in another and
	// after every closing paren that leaves the text nested.
	PolicyDepth
)

func (p Policy) String() string {
	switch p {
	case PolicyLineStack:
		return "line-stack"
	case PolicyDepth:
		return "depth"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy maps a policy name to its Policy.
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "line-stack", "linestack":
		return PolicyLineStack, nil
	case "depth":
		return PolicyDepth, nil
	default:
		return 0, fmt.Errorf("unknown policy %q (want line-stack or depth)", name)
	}
}

// Options controls indentation and line-break placement.
type Options struct {
	IndentSize int
	UseTabs    bool
	Policy     Policy
	// NormalizeSpace drops leading and trailing whitespace on each line and
	// collapses empty lines, which makes the output stable under
	// reformatting. Only used by PolicyLineStack.
	NormalizeSpace bool
}

// DefaultOptions returns two-space, line-stack formatting.
func DefaultOptions() Options {
	return Options{IndentSize: DefaultIndentSize}
}

// Format re-indents text with indentSize spaces per level using the
// line-stack policy.
func Format(text string, indentSize int) string {
	return FormatText(text, Options{IndentSize: indentSize})
}

// FormatText re-indents text according to opts.
func FormatText(text string, opts Options) string {
	if text == "" {
		return ""
	}
	unit := opts.indentUnit()
	if opts.Policy == PolicyDepth {
		return formatDepth(text, unit)
	}
	return formatLineStack(text, unit, opts.NormalizeSpace)
}

func (o Options) indentUnit() string {
	if o.UseTabs {
		return "\t"
	}
	n := o.IndentSize
	if n <= 0 || n > maxIndentSize {
		n = DefaultIndentSize
	}
	return strings.Repeat(" ", n)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r'
}

func trimTrailingSpace(b []byte) []byte {
	for len(b) > 0 && isSpace(b[len(b)-1]) {
		b = b[:len(b)-1]
	}
	return b
}
