package dimension

import (
	"strings"
	"testing"
)

func TestProbe_ExplicitDimension(t *testing.T) {
	sheet := `<worksheet><dimension ref="A1:D10"/><sheetData/></worksheet>`
	res, err := Probe(strings.NewReader(sheet))
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if res.MaxRow != 10 || res.MaxCol != 4 {
		t.Fatalf("Probe(dimension) = %+v, want row=10 col=4", res)
	}
}

func TestProbe_SingleCellDimension(t *testing.T) {
	sheet := `<worksheet><dimension ref="B2"/></worksheet>`
	res, err := Probe(strings.NewReader(sheet))
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if res.MaxRow != 2 || res.MaxCol != 2 {
		t.Fatalf("Probe(single-cell dimension) = %+v", res)
	}
}

func TestProbe_ByReferences(t *testing.T) {
	sheet := `<worksheet><sheetData>
<row r="1"><c r="A1"/><c r="C1"/></row>
<row r="3"><c r="B3"/></row>
</sheetData></worksheet>`
	res, err := Probe(strings.NewReader(sheet))
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if res.MaxRow != 3 || res.MaxCol != 3 {
		t.Fatalf("Probe(by references) = %+v, want row=3 col=3", res)
	}
	if res.ReferenceLess {
		t.Error("cells carrying r= must not be treated as reference-less")
	}
}

func TestProbe_ReferenceLess(t *testing.T) {
	sheet := `<worksheet><sheetData>
<row><c/><c/><c/></row>
<row><c/></row>
</sheetData></worksheet>`
	res, err := Probe(strings.NewReader(sheet))
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if !res.ReferenceLess {
		t.Fatal("cells without r= must be detected as reference-less")
	}
	if res.MaxRow != 2 || res.MaxCol != 3 {
		t.Fatalf("Probe(reference-less) = %+v, want row=2 col=3", res)
	}
}

func TestProbe_EmptySheet(t *testing.T) {
	res, err := Probe(strings.NewReader(`<worksheet><sheetData/></worksheet>`))
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if res.MaxRow != 0 || res.MaxCol != 0 {
		t.Fatalf("Probe(empty) = %+v, want zero value", res)
	}
}
