// Package styles loads the styles.xml part and maps a cell's xf (style)
// index to a parsed number-format, classifying raw cell values through it.
package styles

import (
	"encoding/xml"

	"github.com/xlsxstream/xlsxstream/internal/cellmodel"
	"github.com/xlsxstream/xlsxstream/internal/numfmt"
	"github.com/xlsxstream/xlsxstream/internal/xldate"
	"github.com/xlsxstream/xlsxstream/internal/xmlio"
)

type xmlStyleSheet struct {
	CellXfs xmlCellXfs `xml:"cellXfs"`
	NumFmts xmlNumFmts `xml:"numFmts"`
}

type xmlCellXfs struct {
	Xf []xmlXf `xml:"xf"`
}

type xmlXf struct {
	NumFmtId int `xml:"numFmtId,attr"`
}

type xmlNumFmts struct {
	NumFmt []xmlNumFmt `xml:"numFmt"`
}

type xmlNumFmt struct {
	NumFmtId   int    `xml:"numFmtId,attr"`
	FormatCode string `xml:"formatCode,attr"`
}

// Table maps a cell's xf (style) index to a parsed number-format. Every
// format string reachable from an xf entry is parsed once at Load time, so
// a built Table is an immutable, read-only lookup safe for concurrent use.
type Table struct {
	style2numFmtID []int
	numFmtCustom   map[int]string
	cache          map[int]numfmt.Format
	epoch          xldate.Epoch
}

// Load parses styles.xml from arc. A missing part (styles.xml is optional)
// yields a Table where every style resolves to General.
func Load(arc *xmlio.Archive, partName string, epoch xldate.Epoch) (*Table, error) {
	t := &Table{
		numFmtCustom: make(map[int]string),
		cache:        make(map[int]numfmt.Format),
		epoch:        epoch,
	}

	if !arc.Has(partName) {
		return t, nil
	}
	rc, err := arc.Open(partName)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var sheet xmlStyleSheet
	if err := xml.NewDecoder(rc).Decode(&sheet); err != nil {
		return nil, err
	}

	for _, nf := range sheet.NumFmts.NumFmt {
		t.numFmtCustom[nf.NumFmtId] = nf.FormatCode
	}
	t.style2numFmtID = make([]int, len(sheet.CellXfs.Xf))
	for i, xf := range sheet.CellXfs.Xf {
		t.style2numFmtID[i] = xf.NumFmtId
		t.parseAndCache(xf.NumFmtId)
	}
	t.parseAndCache(0) // General: the fallback for unstyled and out-of-range xf indices
	return t, nil
}

// parseAndCache resolves and parses numFmtID's format string once, at Load
// time. Every distinct numFmtID reachable from style2numFmtID is populated
// here so FormatFor becomes a plain, concurrency-safe map read once Load
// returns: Table is shared read-only across concurrent queries.
func (t *Table) parseAndCache(numFmtID int) numfmt.Format {
	if f, ok := t.cache[numFmtID]; ok {
		return f
	}
	raw, ok := t.numFmtCustom[numFmtID]
	if !ok || raw == "" {
		raw = numfmt.BuiltInNumFmt[numFmtID]
	}
	f := numfmt.Parse(raw)
	t.cache[numFmtID] = f
	return f
}

// FormatFor returns the parsed Format for a given xf/style index, falling
// back to General for indices with no format string or an out-of-range
// style id.
func (t *Table) FormatFor(styleID int) numfmt.Format {
	numFmtID := 0
	if styleID >= 0 && styleID < len(t.style2numFmtID) {
		numFmtID = t.style2numFmtID[styleID]
	}
	if f, ok := t.cache[numFmtID]; ok {
		return f
	}
	// Every numFmtID reachable from style2numFmtID (plus 0/General, when
	// styles.xml is present) was cached in Load; a miss here means an id
	// outside that set or a workbook without styles.xml. Parse it
	// fresh without writing back, since Table is shared read-only across
	// concurrent queries and a map write here would race.
	raw, ok := t.numFmtCustom[numFmtID]
	if !ok || raw == "" {
		raw = numfmt.BuiltInNumFmt[numFmtID]
	}
	return numfmt.Parse(raw)
}

// Classify resolves a raw numeric cell value through the Format selected
// by styleID: a Date/Duration active section reinterprets the number as a
// calendar instant, otherwise it stays a Number.
func (t *Table) Classify(styleID int, raw float64) cellmodel.CellValue {
	f := t.FormatFor(styleID)
	switch f.ActiveType() {
	case numfmt.Date, numfmt.Duration:
		ed := xldate.FromOLE(raw, t.epoch)
		return cellmodel.NewDateTime(cellmodel.DateTime{
			Year: ed.Civil.Year, Month: ed.Civil.Month, Day: ed.Civil.Day,
			Hour: ed.Civil.Hour, Minute: ed.Civil.Minute, Second: ed.Civil.Second,
			Millisecond:    ed.Civil.Millisecond,
			AdjustDaysPost: ed.AdjustDaysPost,
			IsDuration:     f.ActiveType() == numfmt.Duration,
		})
	default:
		return cellmodel.NewNumber(raw)
	}
}
