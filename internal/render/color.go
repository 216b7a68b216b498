// Package render paints formatter output for terminals.
package render

import (
	"strings"

	"github.com/fatih/color"
)

// Colorizer wraps parens in a color picked by nesting depth.
type Colorizer struct {
	palette []*color.Color
	enabled bool
}

// NewColorizer returns a Colorizer. A disabled Colorizer returns text
// unchanged regardless of the terminal.
func NewColorizer(enabled bool) *Colorizer {
	palette := []*color.Color{
		color.New(color.FgYellow),
		color.New(color.FgMagenta),
		color.New(color.FgCyan),
		color.New(color.FgGreen),
		color.New(color.FgBlue),
		color.New(color.FgRed),
	}
	for _, c := range palette {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return &Colorizer{palette: palette, enabled: enabled}
}

// Colorize returns text with each paren colored by its depth. A closing
// paren takes the color of the paren it closes; excess closers use the
// outermost color.
func (c *Colorizer) Colorize(text string) string {
	if !c.enabled || text == "" {
		return text
	}
	var sb strings.Builder
	sb.Grow(len(text) + len(text)/2)
	depth := 0
	start := 0
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if ch != '(' && ch != ')' {
			continue
		}
		sb.WriteString(text[start:i])
		start = i + 1
		if ch == '(' {
			sb.WriteString(c.colorFor(depth).Sprint("("))
			depth++
			continue
		}
		if depth > 0 {
			depth--
		}
		sb.WriteString(c.colorFor(depth).Sprint(")"))
	}
	sb.WriteString(text[start:])
	return sb.String()
}

func (c *Colorizer) colorFor(depth int) *color.Color {
	return c.palette[depth%len(c.palette)]
}
