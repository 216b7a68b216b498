package pretty

import (
	"strings"
	"testing"
)

func TestFormat_EmptyInput(t *testing.T) {
	if got := Format("", 2); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
	if got := FormatText("", Options{Policy: PolicyDepth}); got != "" {
		t.Fatalf("expected empty output for depth policy, got %q", got)
	}
}

func TestFormat_SameLineGroupStaysInline(t *testing.T) {
	got := Format("(a b)", 2)
	if got != "\n(a b)" {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestFormat_InnerGroupInlineOuterCloseBreaks(t *testing.T) {
	got := Format("(a (b) c)", 2)
	want := "\n(a \n  (b) c\n)"
	if got != want {
		t.Fatalf("unexpected formatting output\n--- got ---\n%q\n--- want ---\n%q", got, want)
	}
}

func TestFormat_LiteralNewlineForcesCloseOnOwnLine(t *testing.T) {
	got := Format("((a\nb))", 2)
	want := "\n(\n  (a\n    b\n  )\n)"
	if got != want {
		t.Fatalf("unexpected formatting output\n--- got ---\n%q\n--- want ---\n%q", got, want)
	}
}

func TestFormat_IndentSizeParameter(t *testing.T) {
	got := Format("(a (b))", 4)
	want := "\n(a \n    (b)\n)"
	if got != want {
		t.Fatalf("unexpected formatting output\n--- got ---\n%q\n--- want ---\n%q", got, want)
	}
}

func TestFormat_InvalidIndentSizeFallsBackToDefault(t *testing.T) {
	want := Format("(a (b))", DefaultIndentSize)
	for _, n := range []int{0, -3, 17} {
		if got := Format("(a (b))", n); got != want {
			t.Fatalf("indent %d: got %q, want %q", n, got, want)
		}
	}
}

func TestFormat_UseTabs(t *testing.T) {
	got := FormatText("(a (b))", Options{UseTabs: true})
	want := "\n(a \n\t(b)\n)"
	if got != want {
		t.Fatalf("unexpected tab output: %q", got)
	}
}

func TestFormat_UnmatchedCloseTolerated(t *testing.T) {
	got := Format(")", 2)
	if got != "\n)" {
		t.Fatalf("unexpected output for lone close paren: %q", got)
	}
	got = Format("(a))b", 2)
	if got != "\n(a)\n)b" {
		t.Fatalf("unexpected output for excess close paren: %q", got)
	}
}

func TestFormat_UnclosedOpenKeepsIndent(t *testing.T) {
	got := Format("(a\nb", 3)
	if got != "\n(a\n   b" {
		t.Fatalf("unexpected output for unclosed group: %q", got)
	}
}

func TestFormat_DepthInvariant(t *testing.T) {
	in := "(top (mid (leaf x)\n(leaf y)) z)"
	got := Format(in, 2)
	depth := 0
	for i, line := range strings.Split(got, "\n") {
		if i == 0 {
			continue
		}
		lead := len(line) - len(strings.TrimLeft(line, " "))
		want := depth * 2
		if strings.HasPrefix(strings.TrimLeft(line, " "), ")") {
			want = (depth - 1) * 2
		}
		if lead != want {
			t.Fatalf("line %d %q: indent %d, want %d\n%s", i, line, lead, want, got)
		}
		depth += strings.Count(line, "(") - strings.Count(line, ")")
	}
}

func TestFormat_MultiByteTextPassesThrough(t *testing.T) {
	got := Format("(πρόγραμμα «x»)", 2)
	if got != "\n(πρόγραμμα «x»)" {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestFormat_NormalizeSpace(t *testing.T) {
	in := "  (a (b\n   c))  \n\n"
	got := FormatText(in, Options{IndentSize: 2, NormalizeSpace: true})
	want := "(a\n  (b\n    c\n  )\n)\n"
	if got != want {
		t.Fatalf("unexpected normalized output\n--- got ---\n%q\n--- want ---\n%q", got, want)
	}
}

func TestFormat_NormalizeSpaceIsStable(t *testing.T) {
	inputs := []string{
		"(a b)",
		"(a (b\nc))",
		"(define (f x) (g x))\n",
		"(report (options (opt \"a\") (opt \"b\"))\n(body (row 1) (row 2)))",
	}
	opts := Options{IndentSize: 2, NormalizeSpace: true}
	for _, in := range inputs {
		once := FormatText(in, opts)
		twice := FormatText(once, opts)
		if once != twice {
			t.Fatalf("normalized output not stable for %q\n--- once ---\n%s\n--- twice ---\n%s", in, once, twice)
		}
	}
}

func TestFormat_NormalizeSpaceNoLeadingNewline(t *testing.T) {
	got := FormatText("(a b)", Options{NormalizeSpace: true})
	if got != "(a b)" {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestFormat_DepthPolicy(t *testing.T) {
	got := FormatText("(a (b) c)", Options{Policy: PolicyDepth})
	want := "(a\n  (b)\n   c)"
	if got != want {
		t.Fatalf("unexpected depth output\n--- got ---\n%q\n--- want ---\n%q", got, want)
	}

	got = FormatText("(define (f) (g))", Options{Policy: PolicyDepth})
	want = "(define\n  (f)\n   (g)\n  )"
	if got != want {
		t.Fatalf("unexpected depth output\n--- got ---\n%q\n--- want ---\n%q", got, want)
	}
}

func TestFormat_DepthPolicyDropsSpaceAfterInputNewline(t *testing.T) {
	got := FormatText("(a\n   b (c)\n  d)", Options{Policy: PolicyDepth})
	want := "(a\nb\n  (c)\n\nd)"
	if got != want {
		t.Fatalf("unexpected depth output\n--- got ---\n%q\n--- want ---\n%q", got, want)
	}
}

func TestFormat_DepthPolicyToleratesNegativeDepth(t *testing.T) {
	got := FormatText("))((a", Options{Policy: PolicyDepth})
	if got != "))(\n(a" {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestParsePolicy(t *testing.T) {
	for name, want := range map[string]Policy{
		"":           PolicyLineStack,
		"line-stack": PolicyLineStack,
		"Depth":      PolicyDepth,
	} {
		got, err := ParsePolicy(name)
		if err != nil {
			t.Fatalf("ParsePolicy(%q): %v", name, err)
		}
		if got != want {
			t.Fatalf("ParsePolicy(%q) = %v, want %v", name, got, want)
		}
	}
	if _, err := ParsePolicy("stack"); err == nil || !strings.Contains(err.Error(), "unknown policy") {
		t.Fatalf("expected unknown policy error, got: %v", err)
	}
	if PolicyDepth.String() != "depth" || Policy(9).String() != "Policy(9)" {
		t.Fatalf("unexpected policy names: %s %s", PolicyDepth, Policy(9))
	}
}
