package lsp

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"testing"

	"github.com/r9s-ai/sexpfmt/internal/pretty"
)

func TestRun_InitializeShutdownExit(t *testing.T) {
	var in bytes.Buffer
	writeLSPMessage(&in, map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "initialize",
		"params":  map[string]any{},
	})
	writeLSPMessage(&in, map[string]any{
		"jsonrpc": "2.0",
		"id":      2,
		"method":  "shutdown",
		"params":  map[string]any{},
	})
	writeLSPMessage(&in, map[string]any{
		"jsonrpc": "2.0",
		"method":  "exit",
		"params":  map[string]any{},
	})
	// Never reached: exit stops the loop.
	writeLSPMessage(&in, map[string]any{
		"jsonrpc": "2.0",
		"id":      3,
		"method":  "initialize",
		"params":  map[string]any{},
	})

	var out bytes.Buffer
	s := newTestServer(&in, &out)
	if err := s.Run(); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	msgs := readAllLSPMessages(t, out.Bytes())
	if len(msgs) != 2 {
		t.Fatalf("expected 2 responses, got %d: %+v", len(msgs), msgs)
	}
	if msgs[0]["id"] == nil || msgs[0]["result"] == nil {
		t.Fatalf("initialize response missing id/result: %+v", msgs[0])
	}
	if msgs[1]["id"] == nil || msgs[1]["result"] == nil {
		t.Fatalf("shutdown response missing id/result: %+v", msgs[1])
	}

	result := msgs[0]["result"].(map[string]any)
	caps := result["capabilities"].(map[string]any)
	if caps["documentFormattingProvider"] != true || caps["hoverProvider"] != true {
		t.Fatalf("unexpected capabilities: %+v", caps)
	}
	info := result["serverInfo"].(map[string]any)
	if info["name"] != "sexpfmt" || info["version"] != ServerVersion {
		t.Fatalf("unexpected server info: %+v", info)
	}
}

func TestRun_FormattingRoundTrip(t *testing.T) {
	uri := "file:///tmp/report-debug.log"
	var in bytes.Buffer
	writeLSPMessage(&in, map[string]any{
		"jsonrpc": "2.0",
		"method":  "textDocument/didOpen",
		"params": map[string]any{
			"textDocument": map[string]any{"uri": uri, "text": "(a (b\nc))"},
		},
	})
	writeLSPMessage(&in, map[string]any{
		"jsonrpc": "2.0",
		"id":      5,
		"method":  "textDocument/formatting",
		"params": map[string]any{
			"textDocument": map[string]any{"uri": uri},
			"options":      map[string]any{"tabSize": 4, "insertSpaces": true},
		},
	})

	var out bytes.Buffer
	s := newTestServer(&in, &out)
	if err := s.Run(); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	msgs := readAllLSPMessages(t, out.Bytes())
	if len(msgs) != 1 {
		t.Fatalf("expected one formatting response, got %d", len(msgs))
	}
	edits, ok := msgs[0]["result"].([]any)
	if !ok || len(edits) != 1 {
		t.Fatalf("expected one text edit, got: %+v", msgs[0])
	}
	edit := edits[0].(map[string]any)
	want := "\n(a \n    (b\n        c\n    )\n)"
	if edit["newText"] != want {
		t.Fatalf("unexpected formatted text\n--- got ---\n%q\n--- want ---\n%q", edit["newText"], want)
	}
}

func writeLSPMessage(w *bytes.Buffer, payload any) {
	b, _ := json.Marshal(payload)
	_, _ = w.WriteString(fmt.Sprintf("Content-Length: %d\r\n\r\n", len(b)))
	_, _ = w.Write(b)
}

func readAllLSPMessages(t *testing.T, raw []byte) []map[string]any {
	t.Helper()
	r := bufio.NewReader(bytes.NewReader(raw))
	out := make([]map[string]any, 0, 4)
	for {
		msg, err := readMessage(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("readMessage: %v", err)
		}
		var obj map[string]any
		if err := json.Unmarshal(msg, &obj); err != nil {
			t.Fatalf("unmarshal LSP message: %v", err)
		}
		out = append(out, obj)
	}
	return out
}

func newTestServer(in io.Reader, out io.Writer) *Server {
	return NewServer(in, out, log.New(io.Discard, "", 0), pretty.DefaultOptions())
}

func stringsReader(s string) *bytes.Reader { return bytes.NewReader([]byte(s)) }
