// Package dimension derives the (maxRow, maxCol) extent of a worksheet from
// its <dimension> element when present, or by streaming the sheet once
// when it is absent or unreliable.
package dimension

import (
	"io"
	"strconv"

	"github.com/muktihari/xmltokenizer"

	"github.com/xlsxstream/xlsxstream/internal/cellref"
	"github.com/xlsxstream/xlsxstream/internal/xmlio"
)

// Result is the probed extent of a worksheet.
type Result struct {
	MaxRow int
	MaxCol int
	// ReferenceLess is true when cells in the sheet omit the r= attribute,
	// meaning SheetStreamer must assign columns positionally.
	ReferenceLess bool
}

// Probe streams r once (a fresh decompression pass; the caller is expected
// to open a new stream per pass since deflate is not randomly seekable),
// preferring the worksheet's own <dimension ref> when present and falling
// back to counting rows/cells directly, with or without r= references.
func Probe(r io.Reader) (Result, error) {
	cur := xmlio.NewCursor(r)

	for {
		tok, err := cur.Next()
		if err == io.EOF {
			return Result{}, nil
		}
		if err != nil {
			return Result{}, err
		}
		if tok.IsEndElement() {
			continue
		}

		switch xmlio.LocalName(tok) {
		case "dimension":
			ref, ok := xmlio.AttrValue(tok, "ref")
			if !ok {
				continue
			}
			start, end, err := cellref.ParseRange(ref)
			if err != nil {
				continue
			}
			maxRow, maxCol := end.Row, end.Col
			if start.Row > maxRow {
				maxRow = start.Row
			}
			if start.Col > maxCol {
				maxCol = start.Col
			}
			return Result{MaxRow: maxRow, MaxCol: maxCol}, nil
		case "c":
			if _, ok := xmlio.AttrValue(tok, "r"); !ok {
				return probeReferenceLess(cur)
			}
			return probeByReferences(cur, tok)
		}
	}
}

// probeByReferences tracks the maximum row/col seen across every
// <c r="..."> element, having already consumed the first one as first.
func probeByReferences(cur *xmlio.Cursor, first *xmltokenizer.Token) (Result, error) {
	res := Result{}
	applyCellRef := func(tok *xmltokenizer.Token) {
		r, ok := xmlio.AttrValue(tok, "r")
		if !ok {
			return
		}
		ref, err := cellref.Parse(r)
		if err != nil {
			return
		}
		if ref.Row > res.MaxRow {
			res.MaxRow = ref.Row
		}
		if ref.Col > res.MaxCol {
			res.MaxCol = ref.Col
		}
	}
	applyCellRef(first)

	for {
		tok, err := cur.Next()
		if err == io.EOF {
			return res, nil
		}
		if err != nil {
			return res, err
		}
		if tok.IsEndElement() || xmlio.LocalName(tok) != "c" {
			continue
		}
		applyCellRef(tok)
	}
}

// probeReferenceLess counts rows and, per row, the maximum number of <c>
// children, since reference-less columns are assigned positionally. The
// caller has already consumed the enclosing <row> and its first <c>, so
// both are seeded here rather than dropped.
func probeReferenceLess(cur *xmlio.Cursor) (Result, error) {
	res := Result{ReferenceLess: true}
	rowCount := 1
	colsInRow := 1
	inRow := true

	for {
		tok, err := cur.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return res, err
		}
		name := xmlio.LocalName(tok)

		if tok.IsEndElement() {
			if name == "row" {
				if colsInRow > res.MaxCol {
					res.MaxCol = colsInRow
				}
				colsInRow = 0
				inRow = false
			}
			continue
		}

		switch name {
		case "row":
			inRow = true
			rowCount++
			if r, ok := xmlio.AttrValue(tok, "r"); ok {
				if n, err := strconv.Atoi(r); err == nil && n > rowCount {
					rowCount = n
				}
			}
		case "c":
			if inRow {
				colsInRow++
			}
		}
	}
	res.MaxRow = rowCount
	return res, nil
}
