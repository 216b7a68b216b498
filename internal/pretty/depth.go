package pretty

import "strings"

func formatDepth(text, unit string) string {
	out := make([]byte, 0, len(text)+len(text)/4)
	depth := 0
	afterOpen := false
	// Spaces right after '(' or a newline from the input are dropped. Spaces
	// after the break that follows ')' are kept.
	skipSpace := false

	lineBreak := func() {
		out = append(out, '\n')
		if depth > 0 {
			out = append(out, strings.Repeat(unit, depth)...)
		}
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '(':
			if afterOpen {
				lineBreak()
			}
			out = append(out, c)
			depth++
			afterOpen = true
			skipSpace = true
		case c == ')':
			depth--
			out = append(out, c)
			skipSpace = false
			if depth > 0 {
				lineBreak()
			}
			afterOpen = false
		case c == ' ' && skipSpace:
			continue
		default:
			out = append(out, c)
			skipSpace = c == '\n'
		}
	}

	lines := strings.Split(string(out), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	return strings.Join(lines, "\n")
}
