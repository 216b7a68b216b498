package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

type tmLanguage struct {
	Schema    string                 `json:"$schema"`
	Name      string                 `json:"name"`
	ScopeName string                 `json:"scopeName"`
	FileTypes []string               `json:"fileTypes,omitempty"`
	Patterns  []map[string]string    `json:"patterns"`
	Repo      map[string]interface{} `json:"repository"`
}

type tmPattern struct {
	Name  string `json:"name,omitempty"`
	Match string `json:"match,omitempty"`
	Begin string `json:"begin,omitempty"`
	End   string `json:"end,omitempty"`

	Patterns []tmPattern `json:"patterns,omitempty"`
}

type tmRepositoryEntry struct {
	Patterns []tmPattern `json:"patterns"`
}

var output = flag.String("output", "editors/vscode/syntaxes/sexp-log.tmLanguage.json", "output grammar file path")

// specialForms are highlighted as keywords in report debug logs.
var specialForms = []string{
	"define", "lambda", "let", "let*", "letrec", "if", "cond", "case",
	"begin", "quote", "quasiquote", "unquote", "and", "or", "list", "vector",
}

func main() {
	flag.Parse()

	b, err := encodeGrammar(buildGrammar())
	if err != nil {
		fatalf("marshal grammar: %v", err)
	}

	outPath := *output
	if !filepath.IsAbs(outPath) {
		wd, err := os.Getwd()
		if err != nil {
			fatalf("getwd: %v", err)
		}
		outPath = filepath.Join(wd, outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		fatalf("mkdir output dir: %v", err)
	}
	if err := os.WriteFile(outPath, b, 0o644); err != nil {
		fatalf("write grammar: %v", err)
	}
}

func buildGrammar() tmLanguage {
	return tmLanguage{
		Schema:    "https://raw.githubusercontent.com/martinring/tmlanguage/master/tmlanguage.json",
		Name:      "S-expression log",
		ScopeName: "source.sexp-log",
		FileTypes: []string{"log", "sexp", "scm"},
		Patterns: []map[string]string{
			{"include": "#comments"},
			{"include": "#strings"},
			{"include": "#constants"},
			{"include": "#keywords"},
			{"include": "#numbers"},
			{"include": "#parens"},
		},
		Repo: map[string]interface{}{
			"comments": tmRepositoryEntry{Patterns: []tmPattern{
				{Name: "comment.line.semicolon.sexp-log", Match: ";.*$"},
			}},
			"strings": tmRepositoryEntry{Patterns: []tmPattern{
				{
					Name:  "string.quoted.double.sexp-log",
					Begin: `"`,
					End:   `"`,
					Patterns: []tmPattern{
						{Name: "constant.character.escape.sexp-log", Match: `\\.`},
					},
				},
			}},
			"constants": tmRepositoryEntry{Patterns: []tmPattern{
				{Name: "constant.language.boolean.sexp-log", Match: `#(?:t|f|true|false)\b`},
				{Name: "constant.other.symbol.sexp-log", Match: `'[^\s()"]+`},
			}},
			"keywords": tmRepositoryEntry{Patterns: []tmPattern{
				{Name: "keyword.control.sexp-log", Match: formRegex(specialForms)},
			}},
			"numbers": tmRepositoryEntry{Patterns: []tmPattern{
				{Name: "constant.numeric.sexp-log", Match: `(?<![\w-])-?\d+(?:\.\d+)?(?:/\d+)?(?![\w-])`},
			}},
			"parens": tmRepositoryEntry{Patterns: []tmPattern{
				{Name: "punctuation.section.parens.begin.sexp-log", Match: `\(`},
				{Name: "punctuation.section.parens.end.sexp-log", Match: `\)`},
			}},
		},
	}
}

func encodeGrammar(g tmLanguage) ([]byte, error) {
	var sb strings.Builder
	enc := json.NewEncoder(&sb)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

// formRegex matches any of words right after an opening paren.
func formRegex(words []string) string {
	if len(words) == 0 {
		return `\b\B`
	}
	sorted := append([]string(nil), words...)
	// Longest first so "let*" wins over "let".
	sort.Slice(sorted, func(i, j int) bool {
		if len(sorted[i]) != len(sorted[j]) {
			return len(sorted[i]) > len(sorted[j])
		}
		return sorted[i] < sorted[j]
	})
	escaped := make([]string, 0, len(sorted))
	for _, w := range sorted {
		escaped = append(escaped, regexp.QuoteMeta(w))
	}
	return `(?<=\()\s*(?:` + strings.Join(escaped, "|") + `)(?=[\s()]|$)`
}

func fatalf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(os.Stderr, "sexpfmt-tmgen: "+format+"\n", args...)
	os.Exit(1)
}
