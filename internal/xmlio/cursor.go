package xmlio

import (
	"io"

	"github.com/muktihari/xmltokenizer"
)

// Cursor wraps an xmltokenizer.Tokenizer with the small set of helpers the
// core components need: attribute lookup by local name, local-element-name
// comparison, and pooled child-token descent.
type Cursor struct {
	tok *xmltokenizer.Tokenizer
}

// NewCursor creates a Cursor reading from r.
func NewCursor(r io.Reader) *Cursor {
	return &Cursor{tok: xmltokenizer.New(r)}
}

// Next returns the next token in document order, or io.EOF when exhausted.
func (c *Cursor) Next() (*xmltokenizer.Token, error) {
	return c.tok.Token()
}

// Descend copies se (which the caller must not mutate afterwards) into a
// pooled token and hands it to fn, releasing the pooled copy on return.
// This mirrors the muktihari/xmltokenizer convention of using
// GetToken().Copy(token) before recursing into a child element, since the
// tokenizer reuses its internal buffer between calls to Token().
func (c *Cursor) Descend(se *xmltokenizer.Token, fn func(child *xmltokenizer.Token) error) error {
	child := xmltokenizer.GetToken().Copy(se)
	defer xmltokenizer.PutToken(child)
	return fn(child)
}

// LocalName returns a token's local element name as a string.
func LocalName(t *xmltokenizer.Token) string {
	return string(t.Name.Local)
}

// AttrValue returns the value of the attribute named local, or "" with
// ok=false if absent.
func AttrValue(t *xmltokenizer.Token, local string) (string, bool) {
	for i := range t.Attrs {
		if string(t.Attrs[i].Name.Local) == local {
			return string(t.Attrs[i].Value), true
		}
	}
	return "", false
}

// CharData returns a token's character data as a string.
func CharData(t *xmltokenizer.Token) string {
	return string(t.CharData)
}
