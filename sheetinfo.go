package xlsxstream

import "github.com/xlsxstream/xlsxstream/internal/workbookindex"

// Visibility mirrors the OOXML sheet @state attribute: visible, hidden, or
// very hidden (recoverable only by editing the workbook XML directly).
type Visibility = workbookindex.Visibility

const (
	Visible    = workbookindex.Visible
	Hidden     = workbookindex.Hidden
	VeryHidden = workbookindex.VeryHidden
)

// SheetInfo describes one sheet named in workbook.xml, informational only:
// GetDimensions and Query still operate on hidden sheets, exactly as Excel
// does.
type SheetInfo struct {
	Name       string
	Visibility Visibility
	Active     bool
}

// SheetDimensions is the return shape of GetDimensions: the probed extent
// of one sheet plus the range it was probed over.
type SheetDimensions struct {
	Sheet     string
	MaxRow    int
	MaxCol    int
	StartCell string
	EndCell   string
}
