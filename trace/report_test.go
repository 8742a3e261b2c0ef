package trace

import (
	"bytes"
	"testing"
	"time"

	"github.com/Comcast/sheens/term"
	"github.com/Comcast/sheens/transport"
)

func TestMarkdownEmptyReport(t *testing.T) {
	r := NewReport("empty")
	md := r.Markdown()
	if !bytes.Contains(md, []byte("no events recorded")) {
		t.Fatalf("expected placeholder text, got %s", md)
	}
}

func TestMarkdownAndHTMLWithEvents(t *testing.T) {
	r := NewReport("dispatch trace")
	node, _ := term.AtomTerm("a@h")
	pid, _ := term.Pid(node, 1, 1, 0)
	msg := transport.New(transport.Send, pid, pid).WithPayload(term.Long(42))

	r.Record(time.Unix(0, 0).UTC(), pid, msg)

	md := r.Markdown()
	if !bytes.Contains(md, []byte("SEND")) {
		t.Fatalf("expected control type in markdown, got %s", md)
	}
	if !bytes.Contains(md, []byte("42")) {
		t.Fatalf("expected payload in markdown, got %s", md)
	}

	html := r.HTML()
	if len(html) == 0 {
		t.Fatal("expected non-empty HTML rendering")
	}
}
