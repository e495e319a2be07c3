// Package rowstream implements the row generator that walks a worksheet's
// XML payload after the dimension and merge-map pre-passes, fills skipped
// rows/columns as empty, resolves each cell's value through the
// style/shared-string/merge machinery, and yields dense Row records.
package rowstream

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xlsxstream/xlsxstream/internal/cellmodel"
	"github.com/xlsxstream/xlsxstream/internal/cellref"
	"github.com/xlsxstream/xlsxstream/internal/mergemap"
	"github.com/xlsxstream/xlsxstream/internal/sharedstrings"
	"github.com/xlsxstream/xlsxstream/internal/styles"
	"github.com/xlsxstream/xlsxstream/internal/xmlio"
)

// ByteArrayResolver loads the bytes for a part path named by a
// "@@@fileid@@@,<path>" cell sentinel. It is supplied by the caller (the
// document, which owns the archive) so this package stays free of
// archive-lifetime concerns.
type ByteArrayResolver func(partPath string) ([]byte, error)

// Config controls Streamer's behaviour. A Config with a zero EndCell walks
// the whole sheet; setting EndCell bounds the walk to a rectangular range.
type Config struct {
	UseHeaderRow           bool
	StartCell              cellref.Ref // zero value defaults to A1
	EndCell                cellref.Ref // zero value disables the end bound
	MaxRow                 int
	MaxCol                 int
	IgnoreEmptyRows        bool
	FillMergedCells        bool
	TrimColumnNames        bool
	EnableConvertByteArray bool
	ReferenceLess          bool
}

// Streamer is a lazy, bounded-or-unbounded sequence of Row values over one
// worksheet. It follows the pull-iterator idiom of database/sql.Rows: call
// Next until it returns false, then check Err, reading the current Row via
// Row() in between.
type Streamer struct {
	cfg               Config
	rc                io.ReadCloser
	cur               *xmlio.Cursor
	sst               sharedstrings.Store
	sty               *styles.Table
	merge             *mergemap.Map
	byteArrayResolver ByteArrayResolver

	startRow, startCol int
	endRow, endCol     int // 0 == unbounded

	headerCaptured bool
	headerLabels   map[int]string
	hasYielded     bool
	lastYielded    int
	done           bool
	err            error

	queue   []queuedRow
	current Row
}

type queuedRow struct {
	idx int
	row Row
}

// New constructs a Streamer reading from rc (an already-opened worksheet
// XML stream). The caller retains ownership of sst/sty/merge, which are
// safe to share, read-only, across concurrent queries.
func New(rc io.ReadCloser, cfg Config, sst sharedstrings.Store, sty *styles.Table, merge *mergemap.Map, resolver ByteArrayResolver) *Streamer {
	startRow, startCol := 1, 1
	if !cfg.StartCell.IsZero() {
		startRow, startCol = cfg.StartCell.Row, cfg.StartCell.Col
	}
	var endRow, endCol int
	if !cfg.EndCell.IsZero() {
		endRow, endCol = cfg.EndCell.Row, cfg.EndCell.Col
	}
	// Config's own MaxRow bound combines with EndCell's row bound:
	// whichever is tighter wins.
	if cfg.MaxRow > 0 && (endRow == 0 || cfg.MaxRow < endRow) {
		endRow = cfg.MaxRow
	}
	return &Streamer{
		cfg:               cfg,
		rc:                rc,
		cur:               xmlio.NewCursor(rc),
		sst:               sst,
		sty:               sty,
		merge:             merge,
		byteArrayResolver: resolver,
		startRow:          startRow,
		startCol:          startCol,
		endRow:            endRow,
		endCol:            endCol,
		headerLabels:      make(map[int]string),
	}
}

// Close releases the underlying XML stream. Safe to call after Next
// returns false, and safe to call more than once.
func (s *Streamer) Close() error {
	if s.rc == nil {
		return nil
	}
	err := s.rc.Close()
	s.rc = nil
	return err
}

// Err returns the first error encountered, if any, after Next returns
// false.
func (s *Streamer) Err() error { return s.err }

// Row returns the most recently yielded Row. Only valid after Next
// returns true.
func (s *Streamer) Row() Row { return s.current }

// Next advances the stream, buffering gap-fill empty rows and cancellation
// checks between elements. It returns false at end of stream or on error;
// distinguish the two via Err.
func (s *Streamer) Next(cancel <-chan struct{}) bool {
	if s.err != nil || s.done {
		return false
	}
	select {
	case <-cancel:
		s.err = errCancelled
		s.done = true
		_ = s.Close()
		return false
	default:
	}

	for len(s.queue) == 0 {
		rowIdx, cells, ok, err := s.readNextRow()
		if err != nil {
			s.err = err
			s.done = true
			_ = s.Close()
			return false
		}
		if !ok {
			s.done = true
			_ = s.Close()
			return false
		}
		if s.endRow > 0 && rowIdx > s.endRow {
			s.done = true
			_ = s.Close()
			return false
		}
		if rowIdx < s.startRow {
			// Advance the running row index even though this row is
			// skipped, so a reference-less sheet (which derives the next
			// row number from lastYielded) still reaches startRow instead
			// of recomputing the same index forever.
			s.lastYielded = rowIdx
			continue
		}

		if s.cfg.UseHeaderRow && !s.headerCaptured {
			s.captureHeader(cells)
			s.headerCaptured = true
			s.lastYielded = rowIdx
			s.hasYielded = true
			continue
		}

		if !s.cfg.IgnoreEmptyRows {
			gapFrom := s.startRow
			if s.hasYielded {
				gapFrom = s.lastYielded + 1
			}
			for i := gapFrom; i < rowIdx; i++ {
				s.queue = append(s.queue, queuedRow{idx: i, row: s.emptyRow(i)})
			}
		}
		s.queue = append(s.queue, queuedRow{idx: rowIdx, row: s.buildRow(rowIdx, cells)})
	}

	qr := s.queue[0]
	s.queue = s.queue[1:]
	s.current = qr.row
	s.lastYielded = qr.idx
	s.hasYielded = true
	return true
}

var errCancelled = errors.New("rowstream: cancelled")

// rawCell is the intermediate representation of a <c> element collected
// during readNextRow, before shared-string/style/merge resolution.
type rawCell struct {
	col      int
	hasStyle bool
	styleID  int
	typeAttr string
	value    string
}

// readNextRow scans forward to the next <row> element and fully consumes
// it, returning its 1-based row index and raw cell data. Returns ok=false
// at end of the sheetData/worksheet element (normal end of stream).
func (s *Streamer) readNextRow() (rowIdx int, cells []rawCell, ok bool, err error) {
	for {
		tok, terr := s.cur.Next()
		if terr == io.EOF {
			return 0, nil, false, nil
		}
		if terr != nil {
			return 0, nil, false, fmt.Errorf("rowstream: %w", terr)
		}
		if tok.IsEndElement() {
			if xmlio.LocalName(tok) == "sheetData" || xmlio.LocalName(tok) == "worksheet" {
				return 0, nil, false, nil
			}
			continue
		}
		if xmlio.LocalName(tok) != "row" {
			continue
		}

		if r, has := xmlio.AttrValue(tok, "r"); has {
			n, perr := strconv.Atoi(r)
			if perr != nil {
				return 0, nil, false, fmt.Errorf("rowstream: row attribute %q is not an integer", r)
			}
			if n <= s.lastYielded && s.hasYielded {
				return 0, nil, false, fmt.Errorf("rowstream: row numbers are not strictly increasing (%d after %d)", n, s.lastYielded)
			}
			rowIdx = n
		} else {
			rowIdx = s.lastYielded + 1
		}
		if tok.SelfClosing {
			return rowIdx, nil, true, nil
		}

		cells, err = s.readRowCells()
		return rowIdx, cells, true, err
	}
}

func (s *Streamer) readRowCells() ([]rawCell, error) {
	var cells []rawCell
	positional := 0

	for {
		tok, terr := s.cur.Next()
		if terr == io.EOF {
			return cells, nil
		}
		if terr != nil {
			return cells, fmt.Errorf("rowstream: %w", terr)
		}
		if tok.IsEndElement() {
			if xmlio.LocalName(tok) == "row" {
				return cells, nil
			}
			continue
		}
		if xmlio.LocalName(tok) != "c" {
			continue
		}

		rc := rawCell{typeAttr: "n"}
		if t, ok := xmlio.AttrValue(tok, "t"); ok && t != "" {
			rc.typeAttr = t
		}
		if sAttr, ok := xmlio.AttrValue(tok, "s"); ok {
			if id, perr := strconv.Atoi(sAttr); perr == nil {
				rc.hasStyle = true
				rc.styleID = id
			}
		}

		if s.cfg.ReferenceLess {
			positional++
			rc.col = positional
		} else if refAttr, ok := xmlio.AttrValue(tok, "r"); ok {
			ref, perr := cellref.Parse(refAttr)
			if perr != nil {
				// InvalidReference: recovered locally, cell dropped, stream continues.
				if !tok.SelfClosing {
					s.skipElement("c")
				}
				continue
			}
			rc.col = ref.Col
		} else {
			positional++
			rc.col = positional
		}

		if tok.SelfClosing {
			cells = append(cells, rc)
			continue
		}

		val, verr := s.readCellPayload(rc.typeAttr)
		if verr != nil {
			return cells, verr
		}
		rc.value = val
		cells = append(cells, rc)
	}
}

// readCellPayload consumes a <c>'s children (<v> or <is><t>...</t></is>)
// until the matching </c>, returning the resolved textual payload.
func (s *Streamer) readCellPayload(typeAttr string) (string, error) {
	var v string
	var isBuilder strings.Builder
	inIs := false

	for {
		tok, terr := s.cur.Next()
		if terr == io.EOF {
			return v, nil
		}
		if terr != nil {
			return v, fmt.Errorf("rowstream: %w", terr)
		}
		name := xmlio.LocalName(tok)
		if tok.IsEndElement() {
			switch name {
			case "c":
				if inIs {
					return isBuilder.String(), nil
				}
				return v, nil
			case "is":
				inIs = false
				return isBuilder.String(), nil
			}
			continue
		}
		switch name {
		case "v":
			v = xmlio.CharData(tok)
		case "is":
			inIs = true
		case "t":
			if inIs {
				isBuilder.WriteString(xmlio.CharData(tok))
			}
		}
	}
}

// skipElement consumes tokens until the matching end element named local
// is seen (used to discard a malformed cell without desynchronising the
// cursor).
func (s *Streamer) skipElement(local string) {
	for {
		tok, err := s.cur.Next()
		if err != nil {
			return
		}
		if tok.IsEndElement() && xmlio.LocalName(tok) == local {
			return
		}
	}
}

func (s *Streamer) captureHeader(cells []rawCell) {
	for _, c := range cells {
		if c.col < s.startCol {
			continue
		}
		label := c.value
		if s.cfg.TrimColumnNames {
			label = strings.TrimSpace(label)
		}
		if label == "" {
			label = cellref.ColumnLabel(c.col)
		}
		s.headerLabels[c.col] = label
	}
}

func (s *Streamer) columnLabels() []string {
	maxCol := s.effectiveMaxCol()
	labels := make([]string, 0, maxCol-s.startCol+1)
	for col := s.startCol; col <= maxCol; col++ {
		label := cellref.ColumnLabel(col)
		if s.cfg.UseHeaderRow {
			if hl, ok := s.headerLabels[col]; ok {
				label = hl
			}
		}
		labels = append(labels, label)
	}
	return labels
}

func (s *Streamer) emptyRow(idx int) Row {
	labels := s.columnLabels()
	values := make(map[string]cellmodel.CellValue, len(labels))
	for _, l := range labels {
		values[l] = cellmodel.Null
	}
	return Row{Index: idx, Labels: labels, Values: values}
}

func (s *Streamer) effectiveMaxCol() int {
	maxCol := s.cfg.MaxCol
	if s.endCol > 0 && s.endCol < maxCol {
		maxCol = s.endCol
	}
	return maxCol
}

func (s *Streamer) buildRow(idx int, cells []rawCell) Row {
	labels := s.columnLabels()
	values := make(map[string]cellmodel.CellValue, len(labels))
	for _, l := range labels {
		values[l] = cellmodel.Null
	}
	maxCol := s.effectiveMaxCol()

	for _, c := range cells {
		if c.col < s.startCol || c.col > maxCol {
			continue
		}
		if s.endCol > 0 && c.col > s.endCol {
			continue
		}
		v := s.resolveCellValue(c)
		if s.cfg.FillMergedCells && s.merge != nil {
			ref := cellref.Ref{Col: c.col, Row: idx}
			v = s.merge.Resolve(ref, v)
		}
		label := cellref.ColumnLabel(c.col)
		if s.cfg.UseHeaderRow {
			if hl, ok := s.headerLabels[c.col]; ok {
				label = hl
			}
		}
		values[label] = v
	}

	// Merge slaves whose own <c> element was entirely absent from the XML
	// (a common case: only the anchor cell is serialised) still need their
	// fill applied when FillMergedCells is enabled.
	if s.cfg.FillMergedCells && s.merge != nil {
		for i, label := range labels {
			col := s.startCol + i
			if !values[label].IsNull() {
				continue
			}
			ref := cellref.Ref{Col: col, Row: idx}
			if anchor, isSlave := s.merge.IsSlave(ref); isSlave {
				values[label] = s.merge.AnchorValue(anchor)
			}
		}
	}

	return Row{Index: idx, Labels: labels, Values: values}
}

func (s *Streamer) resolveCellValue(c rawCell) cellmodel.CellValue {
	if c.value == "" {
		return cellmodel.Null
	}
	switch c.typeAttr {
	case "s":
		idx, err := strconv.Atoi(c.value)
		if err != nil {
			return cellmodel.NewRaw(c.value)
		}
		if str, ok := s.sst.Get(idx); ok {
			return cellmodel.NewText(str)
		}
		return cellmodel.Null
	case "inlineStr", "str":
		if s.cfg.EnableConvertByteArray && strings.HasPrefix(c.value, "@@@fileid@@@,") {
			path := strings.TrimPrefix(c.value, "@@@fileid@@@,")
			if s.byteArrayResolver != nil {
				if b, err := s.byteArrayResolver(path); err == nil {
					return cellmodel.NewBytes(b)
				}
			}
		}
		return cellmodel.NewText(c.value)
	case "b":
		return cellmodel.NewBool(c.value == "1")
	case "d":
		t, err := time.Parse("2006-01-02", c.value)
		if err != nil {
			return cellmodel.NewRaw(c.value)
		}
		return cellmodel.NewDateTime(cellmodel.DateTime{Year: t.Year(), Month: int(t.Month()), Day: t.Day()})
	case "e":
		return cellmodel.NewRaw(c.value)
	default:
		f, err := strconv.ParseFloat(c.value, 64)
		if err != nil {
			return cellmodel.NewRaw(c.value)
		}
		if c.hasStyle && s.sty != nil {
			return s.sty.Classify(c.styleID, f)
		}
		return cellmodel.NewNumber(f)
	}
}
