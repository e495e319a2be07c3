package xmlio

import (
	"io"
	"strings"
	"testing"
)

func TestCursor_WalksTokensAndAttrs(t *testing.T) {
	doc := `<row r="2"><c r="A2" s="3" t="s"><v>5</v></c></row>`
	c := NewCursor(strings.NewReader(doc))

	tok, err := c.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if LocalName(tok) != "row" {
		t.Fatalf("LocalName = %q, want row", LocalName(tok))
	}
	r, ok := AttrValue(tok, "r")
	if !ok || r != "2" {
		t.Fatalf("AttrValue(r) = %q, %v", r, ok)
	}

	cellTok, err := c.Next()
	if err != nil {
		t.Fatalf("Next (c): %v", err)
	}
	if LocalName(cellTok) != "c" {
		t.Fatalf("LocalName = %q, want c", LocalName(cellTok))
	}
	if s, ok := AttrValue(cellTok, "s"); !ok || s != "3" {
		t.Fatalf("AttrValue(s) = %q, %v", s, ok)
	}
	if tt, ok := AttrValue(cellTok, "t"); !ok || tt != "s" {
		t.Fatalf("AttrValue(t) = %q, %v", tt, ok)
	}

	vTok, err := c.Next()
	if err != nil {
		t.Fatalf("Next (v): %v", err)
	}
	if LocalName(vTok) != "v" {
		t.Fatalf("LocalName = %q, want v", LocalName(vTok))
	}
	if CharData(vTok) != "5" {
		t.Fatalf("CharData(v) = %q, want 5", CharData(vTok))
	}
}

func TestCursor_EOF(t *testing.T) {
	c := NewCursor(strings.NewReader(""))
	_, err := c.Next()
	if err != io.EOF {
		t.Fatalf("expected io.EOF on empty input, got %v", err)
	}
}
