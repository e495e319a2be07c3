package rowstream

import (
	"io"
	"strings"
	"testing"

	"github.com/xlsxstream/xlsxstream/internal/cellref"
	"github.com/xlsxstream/xlsxstream/internal/mergemap"
)

type nopCloser struct{ io.Reader }

func (nopCloser) Close() error { return nil }

func newTestStreamer(xmlBody string, cfg Config, merge *mergemap.Map) *Streamer {
	if cfg.MaxCol == 0 {
		cfg.MaxCol = 3
	}
	return New(nopCloser{strings.NewReader(xmlBody)}, cfg, nil, nil, merge, nil)
}

func drain(t *testing.T, s *Streamer) []Row {
	t.Helper()
	var rows []Row
	for s.Next(nil) {
		rows = append(rows, s.Row())
	}
	if err := s.Err(); err != nil {
		t.Fatalf("streamer error: %v", err)
	}
	return rows
}

// Sparse sheet, no dimension, reference-less cells, ignoreEmptyRows=false.
func TestSparseSheet_NoDimension(t *testing.T) {
	xmlBody := `<worksheet><sheetData>
<row><c t="n"><v>1</v></c></row>
</sheetData></worksheet>`
	// This single-row fixture only exercises straightforward decoding;
	// the full A1/C1/B3 scenario is covered in TestSparseSheet_GapFilling.
	s := newTestStreamer(xmlBody, Config{ReferenceLess: true, MaxCol: 3}, nil)
	rows := drain(t, s)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Get("A").Number() != 1 {
		t.Fatalf("A1 = %+v", rows[0].Get("A"))
	}
}

// A non-A1 startCell on a reference-less sheet must still reach startRow:
// skipped rows below it need to advance the running row counter, since
// reference-less rows derive their index from it.
func TestReferenceLess_StartRowSkip(t *testing.T) {
	xmlBody := `<worksheet><sheetData>
<row><c t="n"><v>1</v></c></row>
<row><c t="n"><v>2</v></c></row>
<row><c t="n"><v>3</v></c></row>
</sheetData></worksheet>`
	cfg := Config{ReferenceLess: true, MaxCol: 1, StartCell: cellref.Ref{Col: 1, Row: 2}}
	s := newTestStreamer(xmlBody, cfg, nil)
	rows := drain(t, s)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows (starting at row 2), got %d", len(rows))
	}
	if rows[0].Index != 2 || rows[0].Get("A").Number() != 2 {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[1].Index != 3 || rows[1].Get("A").Number() != 3 {
		t.Errorf("row 1 = %+v", rows[1])
	}
}

// Genuinely reference-less: no r= attributes at all, columns inferred
// positionally, and a present-but-empty middle cell that must resolve to
// Null rather than Raw("").
func TestReferenceLess_PositionalGapCell(t *testing.T) {
	xmlBody := `<worksheet><sheetData>
<row><c t="n"><v>1</v></c><c t="n"></c><c t="n"><v>3</v></c></row>
</sheetData></worksheet>`
	s := newTestStreamer(xmlBody, Config{ReferenceLess: true, MaxCol: 3}, nil)
	rows := drain(t, s)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Get("A").Number() != 1 {
		t.Errorf("A = %+v", rows[0].Get("A"))
	}
	if !rows[0].Get("B").IsNull() {
		t.Errorf("B (present-but-empty) should be Null, got %+v", rows[0].Get("B"))
	}
	if rows[0].Get("C").Number() != 3 {
		t.Errorf("C = %+v", rows[0].Get("C"))
	}
}

func TestSparseSheet_GapFilling(t *testing.T) {
	// A1=1, C1=3, B3=22 with explicit references, ignoreEmptyRows=false.
	xmlBody := `<worksheet><sheetData>
<row r="1"><c r="A1"><v>1</v></c><c r="C1"><v>3</v></c></row>
<row r="3"><c r="B3"><v>22</v></c></row>
</sheetData></worksheet>`
	s := newTestStreamer(xmlBody, Config{MaxCol: 3, IgnoreEmptyRows: false}, nil)
	rows := drain(t, s)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows (with gap fill), got %d", len(rows))
	}
	if rows[0].Get("A").Number() != 1 || !rows[0].Get("B").IsNull() || rows[0].Get("C").Number() != 3 {
		t.Errorf("row 1 mismatch: %+v", rows[0].Values)
	}
	if !rows[1].Get("A").IsNull() || !rows[1].Get("B").IsNull() || !rows[1].Get("C").IsNull() {
		t.Errorf("row 2 (gap-filled) should be entirely null: %+v", rows[1].Values)
	}
	if rows[1].Index != 2 {
		t.Errorf("gap-filled row index = %d, want 2", rows[1].Index)
	}
	if !rows[2].Get("A").IsNull() || rows[2].Get("B").Number() != 22 || !rows[2].Get("C").IsNull() {
		t.Errorf("row 3 mismatch: %+v", rows[2].Values)
	}
}

func TestSparseSheet_IgnoreEmptyRows(t *testing.T) {
	xmlBody := `<worksheet><sheetData>
<row r="1"><c r="A1"><v>1</v></c></row>
<row r="5"><c r="A5"><v>5</v></c></row>
</sheetData></worksheet>`
	s := newTestStreamer(xmlBody, Config{MaxCol: 1, IgnoreEmptyRows: true}, nil)
	rows := drain(t, s)
	if len(rows) != 2 {
		t.Fatalf("expected exactly 2 rows with ignoreEmptyRows=true, got %d", len(rows))
	}
	if rows[1].Index != 5 {
		t.Errorf("second row index = %d, want 5 (no gap fill)", rows[1].Index)
	}
}

// Scenario 2: header row + data.
func TestHeaderRow(t *testing.T) {
	xmlBody := `<worksheet><sheetData>
<row r="1"><c r="A1" t="inlineStr"><is><t>Name</t></is></c><c r="B1" t="inlineStr"><is><t>Age</t></is></c></row>
<row r="2"><c r="A2" t="inlineStr"><is><t>Alice</t></is></c><c r="B2"><v>30</v></c></row>
</sheetData></worksheet>`
	s := newTestStreamer(xmlBody, Config{UseHeaderRow: true, MaxCol: 2}, nil)
	rows := drain(t, s)
	if len(rows) != 1 {
		t.Fatalf("expected 1 data row (header not yielded), got %d", len(rows))
	}
	if rows[0].Get("Name").Text() != "Alice" {
		t.Errorf("Name = %+v", rows[0].Get("Name"))
	}
	if rows[0].Get("Age").Number() != 30 {
		t.Errorf("Age = %+v", rows[0].Get("Age"))
	}
}

// Scenario 3: merged cells.
func TestMergedCells_FillEnabled(t *testing.T) {
	xmlBody := `<worksheet><sheetData>
<row r="1"><c r="A1" t="inlineStr"><is><t>X</t></is></c></row>
<row r="2"></row>
</sheetData></worksheet>`
	m, err := mergemap.Build(strings.NewReader(`<worksheet><mergeCells><mergeCell ref="A1:B2"/></mergeCells></worksheet>`))
	if err != nil {
		t.Fatalf("mergemap.Build: %v", err)
	}
	s := newTestStreamer(xmlBody, Config{MaxCol: 2, FillMergedCells: true}, m)
	rows := drain(t, s)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Get("A").Text() != "X" || rows[0].Get("B").Text() != "X" {
		t.Errorf("row1 with fill = %+v", rows[0].Values)
	}
	if rows[1].Get("A").Text() != "X" || rows[1].Get("B").Text() != "X" {
		t.Errorf("row2 with fill = %+v", rows[1].Values)
	}
}

func TestMergedCells_FillDisabled(t *testing.T) {
	xmlBody := `<worksheet><sheetData>
<row r="1"><c r="A1" t="inlineStr"><is><t>X</t></is></c></row>
<row r="2"></row>
</sheetData></worksheet>`
	m, _ := mergemap.Build(strings.NewReader(`<worksheet><mergeCells><mergeCell ref="A1:B2"/></mergeCells></worksheet>`))
	s := newTestStreamer(xmlBody, Config{MaxCol: 2, FillMergedCells: false}, m)
	rows := drain(t, s)
	if rows[0].Get("A").Text() != "X" || !rows[0].Get("B").IsNull() {
		t.Errorf("row1 without fill = %+v", rows[0].Values)
	}
	if !rows[1].Get("A").IsNull() || !rows[1].Get("B").IsNull() {
		t.Errorf("row2 without fill = %+v", rows[1].Values)
	}
}

func TestRangeFilter_EndBound(t *testing.T) {
	xmlBody := `<worksheet><sheetData>
<row r="1"><c r="A1"><v>1</v></c><c r="B1"><v>2</v></c><c r="C1"><v>3</v></c></row>
<row r="2"><c r="A2"><v>4</v></c></row>
<row r="5"><c r="A5"><v>5</v></c></row>
</sheetData></worksheet>`
	cfg := Config{MaxCol: 3, IgnoreEmptyRows: true, EndCell: cellref.Ref{Col: 2, Row: 2}}
	s := newTestStreamer(xmlBody, cfg, nil)
	rows := drain(t, s)
	if len(rows) != 2 {
		t.Fatalf("expected rows 1-2 only (endRow=2), got %d", len(rows))
	}
	if _, ok := rows[0].Values["C"]; ok {
		t.Error("column C should be excluded by endCol=B")
	}
}

func TestStrictlyIncreasingRowNumbers(t *testing.T) {
	xmlBody := `<worksheet><sheetData>
<row r="2"><c r="A2"><v>1</v></c></row>
<row r="1"><c r="A1"><v>2</v></c></row>
</sheetData></worksheet>`
	s := newTestStreamer(xmlBody, Config{MaxCol: 1, IgnoreEmptyRows: true}, nil)
	for s.Next(nil) {
	}
	if s.Err() == nil {
		t.Fatal("expected an error for non-increasing row numbers")
	}
}
