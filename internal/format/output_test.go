package format

import (
	"bytes"
	"testing"
)

type greeting struct {
	Name string `json:"name"`
}

func (g greeting) Text() string { return "hello " + g.Name }

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, greeting{Name: "ann"}, "", false); err != nil {
		t.Fatalf("Write json: %v", err)
	}
	if got := buf.String(); got != "{\"name\":\"ann\"}\n" {
		t.Fatalf("json = %q", got)
	}

	buf.Reset()
	if err := Write(&buf, greeting{Name: "ann"}, Text, false); err != nil {
		t.Fatalf("Write text: %v", err)
	}
	if got := buf.String(); got != "hello ann\n" {
		t.Fatalf("text = %q", got)
	}

	buf.Reset()
	if err := Write(&buf, map[string]int{"n": 1}, Text, false); err != nil {
		t.Fatalf("Write text fallback: %v", err)
	}
	if got := buf.String(); got != "{\n  \"n\": 1\n}\n" {
		t.Fatalf("fallback = %q", got)
	}

	if err := Write(&buf, nil, "edn", false); err == nil {
		t.Fatalf("expected unknown format error")
	}
}
