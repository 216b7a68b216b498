package pretty

// lineStack remembers, for every open paren, the output line it was written
// on. A closing paren that pops its own line closes a group that never
// broke and stays inline.
type lineStack struct {
	unit      string
	normalize bool

	out    []byte
	indent string
	line   int
	opens  []int
	// pending means a line break was written but its indent was not; only
	// set in normalize mode.
	pending bool
}

func formatLineStack(text, unit string, normalize bool) string {
	f := &lineStack{
		unit:      unit,
		normalize: normalize,
		out:       make([]byte, 0, len(text)+len(text)/4),
		pending:   normalize,
	}
	for i := 0; i < len(text); i++ {
		switch c := text[i]; c {
		case '(':
			f.open()
		case ')':
			f.close()
		case '\n':
			f.newline()
		default:
			f.other(c)
		}
	}
	if normalize {
		f.out = trimTrailingSpace(f.out)
	}
	return string(f.out)
}

func (f *lineStack) open() {
	if !f.pending {
		f.lineBreak()
	}
	f.flushIndent()
	f.opens = append(f.opens, f.line)
	f.indent += f.unit
	f.out = append(f.out, '(')
}

func (f *lineStack) close() {
	if len(f.indent) >= len(f.unit) {
		f.indent = f.indent[:len(f.indent)-len(f.unit)]
	} else {
		f.indent = ""
	}
	opened, ok := f.pop()
	if (!ok || opened != f.line) && !f.pending {
		f.lineBreak()
	}
	f.flushIndent()
	f.out = append(f.out, ')')
}

func (f *lineStack) newline() {
	if f.pending {
		return
	}
	f.lineBreak()
}

func (f *lineStack) other(c byte) {
	if f.pending && isSpace(c) {
		return
	}
	f.flushIndent()
	f.out = append(f.out, c)
}

func (f *lineStack) pop() (int, bool) {
	n := len(f.opens)
	if n == 0 {
		return 0, false
	}
	line := f.opens[n-1]
	f.opens = f.opens[:n-1]
	return line, true
}

func (f *lineStack) lineBreak() {
	if f.normalize {
		f.out = trimTrailingSpace(f.out)
	}
	f.out = append(f.out, '\n')
	f.line++
	if f.normalize {
		f.pending = true
		return
	}
	f.out = append(f.out, f.indent...)
}

func (f *lineStack) flushIndent() {
	if !f.pending {
		return
	}
	f.out = append(f.out, f.indent...)
	f.pending = false
}
