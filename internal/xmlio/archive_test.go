package xmlio

import (
	"archive/zip"
	"bytes"
	"testing"
)

func buildTestZip(t *testing.T, files map[string]string) *zip.Reader {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("Create(%q): %v", name, err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("Write(%q): %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("zip.Writer.Close: %v", err)
	}
	r, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("zip.NewReader: %v", err)
	}
	return r
}

func TestPart_ExactMatch(t *testing.T) {
	zr := buildTestZip(t, map[string]string{"xl/workbook.xml": "<workbook/>"})
	a := NewArchive(zr)
	if a.Part("xl/workbook.xml") == nil {
		t.Fatal("expected exact-match part to be found")
	}
}

func TestPart_CaseInsensitiveFallback(t *testing.T) {
	zr := buildTestZip(t, map[string]string{"xl/Worksheets/Sheet1.xml": "<worksheet/>"})
	a := NewArchive(zr)
	if a.Part("xl/worksheets/sheet1.xml") == nil {
		t.Fatal("expected case-insensitive fallback to find the part")
	}
}

func TestPart_Missing(t *testing.T) {
	zr := buildTestZip(t, map[string]string{"xl/workbook.xml": "<workbook/>"})
	a := NewArchive(zr)
	if a.Part("xl/sharedStrings.xml") != nil {
		t.Fatal("expected nil for a part that does not exist")
	}
	if a.Has("xl/sharedStrings.xml") {
		t.Fatal("Has() should report false for a missing part")
	}
}

func TestOpenBytes(t *testing.T) {
	zr := buildTestZip(t, map[string]string{"xl/workbook.xml": "<workbook>hi</workbook>"})
	a := NewArchive(zr)
	b, err := a.OpenBytes("xl/workbook.xml")
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	if string(b) != "<workbook>hi</workbook>" {
		t.Fatalf("OpenBytes content = %q", b)
	}
}

func TestOpen_MissingPartErrors(t *testing.T) {
	zr := buildTestZip(t, map[string]string{"xl/workbook.xml": "<workbook/>"})
	a := NewArchive(zr)
	if _, err := a.Open("xl/nope.xml"); err == nil {
		t.Fatal("expected error opening a missing part")
	}
}
