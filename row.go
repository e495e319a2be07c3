package xlsxstream

import (
	"github.com/xlsxstream/xlsxstream/internal/cellmodel"
	"github.com/xlsxstream/xlsxstream/internal/rowstream"
)

// Row is a single reconstructed worksheet row: an ordered mapping from
// column label (alphabetic, or header-derived when UseHeaderRow is set) to
// CellValue, densely covering every column in [startCol, maxCol]. It is a
// plain data record — mapping rows onto caller-defined structs is left to
// the caller.
type Row = rowstream.Row

// CellValue is the tagged union every resolved cell reduces to: exactly one
// of Null/Bool/Number/Text/DateTime/Bytes/Raw.
type CellValue = cellmodel.CellValue

// DateTime is the civil calendar representation carried by a CellValue of
// Kind DateTime.
type DateTime = cellmodel.DateTime

// Null is the shared zero-value CellValue: an empty grid slot or an
// unfilled merge slave.
var Null = cellmodel.Null

// Cell value kinds, re-exported for callers that switch on Kind().
const (
	KindNull     = cellmodel.KindNull
	KindBool     = cellmodel.KindBool
	KindNumber   = cellmodel.KindNumber
	KindText     = cellmodel.KindText
	KindDateTime = cellmodel.KindDateTime
	KindBytes    = cellmodel.KindBytes
	KindRaw      = cellmodel.KindRaw
)
