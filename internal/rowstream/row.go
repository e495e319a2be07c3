package rowstream

import "github.com/xlsxstream/xlsxstream/internal/cellmodel"

// Row is a single reconstructed worksheet row: an ordered mapping from
// column label (alphabetic or header-derived) to CellValue, densely
// covering [startCol, maxCol].
type Row struct {
	Index  int // 1-based worksheet row number
	Labels []string
	Values map[string]cellmodel.CellValue
}

// Get returns the value under label, or Null if the row has no such
// column (should not happen for a well-formed Row, but keeps callers
// panic-free).
func (r Row) Get(label string) cellmodel.CellValue {
	if v, ok := r.Values[label]; ok {
		return v
	}
	return cellmodel.Null
}
