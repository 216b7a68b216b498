package lsp

import (
	"strings"

	"github.com/r9s-ai/sexpfmt/internal/pretty"
)

// formattingEdits replaces the whole document in one edit. An unchanged
// document yields no edits.
func formattingEdits(text string, opts pretty.Options) []TextEdit {
	formatted := pretty.FormatText(text, opts)
	if formatted == text {
		return []TextEdit{}
	}
	return []TextEdit{{
		Range: Range{
			Start: Position{Line: 0, Character: 0},
			End:   endPosition(text),
		},
		NewText: formatted,
	}}
}

// depthAt counts the parens left open before pos. Character is a byte
// offset into the line.
func depthAt(text string, pos Position) int {
	end := offsetAt(text, pos)
	depth := 0
	for i := 0; i < end; i++ {
		switch text[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		}
	}
	return depth
}

func offsetAt(text string, pos Position) int {
	if pos.Line < 0 {
		return 0
	}
	line := 0
	start := 0
	for line < pos.Line {
		i := indexByteFrom(text, '\n', start)
		if i < 0 {
			return len(text)
		}
		start = i + 1
		line++
	}
	lineEnd := indexByteFrom(text, '\n', start)
	if lineEnd < 0 {
		lineEnd = len(text)
	}
	ch := pos.Character
	if ch < 0 {
		ch = 0
	}
	if start+ch > lineEnd {
		return lineEnd
	}
	return start + ch
}

func indexByteFrom(s string, b byte, from int) int {
	i := strings.IndexByte(s[from:], b)
	if i < 0 {
		return -1
	}
	return from + i
}

func endPosition(text string) Position {
	line := 0
	col := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			line++
			col = 0
			continue
		}
		col++
	}
	return Position{Line: line, Character: col}
}
