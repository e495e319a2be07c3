// Package mergemap builds and consults the merged-cell anchor/slave map: a
// pre-pass over a worksheet's <mergeCell> elements followed by a lookup
// consulted during row streaming.
package mergemap

import (
	"io"

	"github.com/xlsxstream/xlsxstream/internal/cellmodel"
	"github.com/xlsxstream/xlsxstream/internal/cellref"
	"github.com/xlsxstream/xlsxstream/internal/xmlio"
)

// Map records merged ranges: anchor cells hold the authoritative value,
// slave cells resolve through Anchor to find it.
type Map struct {
	values map[cellref.Ref]cellmodel.CellValue
	slaves map[cellref.Ref]cellref.Ref
}

// Build streams r once looking for <mergeCell ref="A1:B3"> elements,
// registering the top-left corner as the anchor and every other cell in
// the rectangle as a slave pointing at it.
func Build(r io.Reader) (*Map, error) {
	m := &Map{
		values: make(map[cellref.Ref]cellmodel.CellValue),
		slaves: make(map[cellref.Ref]cellref.Ref),
	}
	cur := xmlio.NewCursor(r)
	for {
		tok, err := cur.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if tok.IsEndElement() || xmlio.LocalName(tok) != "mergeCell" {
			continue
		}
		ref, ok := xmlio.AttrValue(tok, "ref")
		if !ok {
			continue
		}
		start, end, err := cellref.ParseRange(ref)
		if err != nil {
			continue // malformed merge range: skip, don't fail the whole document
		}
		m.values[start] = cellmodel.Null
		for row := start.Row; row <= end.Row; row++ {
			for col := start.Col; col <= end.Col; col++ {
				slave := cellref.Ref{Col: col, Row: row}
				if slave == start {
					continue
				}
				m.slaves[slave] = start
			}
		}
	}
	return m, nil
}

// IsAnchor reports whether ref is a merge anchor.
func (m *Map) IsAnchor(ref cellref.Ref) bool {
	_, ok := m.values[ref]
	return ok
}

// IsSlave reports whether ref is a merge slave and returns its anchor.
func (m *Map) IsSlave(ref cellref.Ref) (cellref.Ref, bool) {
	anchor, ok := m.slaves[ref]
	return anchor, ok
}

// SetAnchorValue records the value written at an anchor cell.
func (m *Map) SetAnchorValue(anchor cellref.Ref, v cellmodel.CellValue) {
	m.values[anchor] = v
}

// AnchorValue returns the value stored at anchor. This may still be Null if
// the anchor has not yet been written when a slave asks for it, which
// never happens in practice: OOXML worksheet XML always lists a merge's
// anchor cell before its slaves within the same row-major document order.
func (m *Map) AnchorValue(anchor cellref.Ref) cellmodel.CellValue {
	return m.values[anchor]
}

// Resolve applies the merge substitution rule to a cell read at ref
// carrying value v: an anchor records v and returns it unchanged; a slave
// discards v and returns whatever the anchor holds; any other cell passes
// v through untouched.
func (m *Map) Resolve(ref cellref.Ref, v cellmodel.CellValue) cellmodel.CellValue {
	if m.IsAnchor(ref) {
		m.SetAnchorValue(ref, v)
		return v
	}
	if anchor, ok := m.IsSlave(ref); ok {
		return m.AnchorValue(anchor)
	}
	return v
}
