package xlsxstream

import (
	"context"
	"fmt"
	"io"

	"github.com/xlsxstream/xlsxstream/internal/cellref"
	"github.com/xlsxstream/xlsxstream/internal/dimension"
	"github.com/xlsxstream/xlsxstream/internal/mergemap"
	"github.com/xlsxstream/xlsxstream/internal/rowstream"
)

// RowIterator is the Go realisation of "lazy sequence of Row": a pull
// cursor with Next/Row/Err/Close, the idiomatic shape used by
// database/sql.Rows.
type RowIterator struct {
	s *rowstream.Streamer
}

// Next advances the iterator. It returns false at end of stream or on
// error; distinguish the two via Err.
func (it *RowIterator) Next() bool { return it.s.Next(nil) }

// NextContext is Next with a cooperative cancellation point: cancelling ctx
// stops the iterator before its next row is yielded, releasing the
// underlying XML reader, part stream and zip entry.
func (it *RowIterator) NextContext(ctx context.Context) bool { return it.s.Next(ctx.Done()) }

// Row returns the most recently yielded Row. Only valid after Next/
// NextContext returns true.
func (it *RowIterator) Row() Row { return it.s.Row() }

// Err returns the first error encountered, if any, after Next returns
// false.
func (it *RowIterator) Err() error { return it.s.Err() }

// Close releases the iterator's zip part reader. Idempotent; also called
// automatically once Next exhausts the stream.
func (it *RowIterator) Close() error { return it.s.Close() }

// RowOrError is the element type of the channels returned by QueryAsync/
// QueryRangeAsync.
type RowOrError struct {
	Row Row
	Err error
}

// Query opens a lazy sequence of Row over sheet (or the active sheet, if
// sheet is ""), starting at startCell (or "A1" if empty).
func (d *Document) Query(sheet, startCell string, useHeaderRow bool) (*RowIterator, error) {
	return d.query(sheet, startCell, "", useHeaderRow)
}

// QueryRange is Query bounded to the rectangle [startCell, endCell].
func (d *Document) QueryRange(sheet, startCell, endCell string, useHeaderRow bool) (*RowIterator, error) {
	if endCell == "" {
		return nil, fmt.Errorf("%w: QueryRange requires a non-empty endCell", ErrInvalidReference)
	}
	return d.query(sheet, startCell, endCell, useHeaderRow)
}

func (d *Document) query(sheet, startCell, endCell string, useHeaderRow bool) (*RowIterator, error) {
	sd, err := d.resolveSheet(sheet)
	if err != nil {
		d.log.Warn("query failed to resolve sheet", "sheet", sheet, "error", err)
		return nil, err
	}
	d.log.Debug("starting query", "sheet", sd.Name, "startCell", startCell, "endCell", endCell, "useHeaderRow", useHeaderRow)
	if !d.arc.Has(sd.PartPath) {
		return nil, fmt.Errorf("%w: worksheet part %q for sheet %q", ErrMalformedArchive, sd.PartPath, sd.Name)
	}

	start := cellref.Ref{Col: 1, Row: 1}
	if startCell != "" {
		start, err = cellref.Parse(startCell)
		if err != nil {
			return nil, fmt.Errorf("%w: startCell %q: %v", ErrInvalidReference, startCell, err)
		}
	}
	var end cellref.Ref
	if endCell != "" {
		end, err = cellref.Parse(endCell)
		if err != nil {
			return nil, fmt.Errorf("%w: endCell %q: %v", ErrInvalidReference, endCell, err)
		}
	}

	dim, err := d.probeDimension(sd.PartPath)
	if err != nil {
		return nil, err
	}

	var merge *mergemap.Map
	if d.opts.fillMergedCells {
		merge, err = d.buildMergeMap(sd.PartPath)
		if err != nil {
			return nil, err
		}
	}

	rc, err := d.arc.Open(sd.PartPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedArchive, err)
	}

	maxCol := dim.MaxCol
	if !end.IsZero() && end.Col < maxCol {
		maxCol = end.Col
	}
	if maxCol == 0 {
		maxCol = start.Col
	}
	maxRow := dim.MaxRow

	cfg := rowstream.Config{
		UseHeaderRow:           useHeaderRow,
		StartCell:              start,
		EndCell:                end,
		MaxRow:                 maxRow,
		MaxCol:                 maxCol,
		IgnoreEmptyRows:        d.opts.ignoreEmptyRows,
		FillMergedCells:        d.opts.fillMergedCells,
		TrimColumnNames:        d.opts.trimColumnNames,
		EnableConvertByteArray: d.opts.enableConvertByteArray,
		ReferenceLess:          dim.ReferenceLess,
	}

	streamer := rowstream.New(rc, cfg, d.sst, d.sty, merge, d.byteArrayResolverFunc())
	return &RowIterator{s: streamer}, nil
}

// GetDimensions probes every sheet in the workbook, returning each sheet's
// name alongside its probed extent; StartCell is always "A1" and EndCell is
// the probed bottom-right corner.
func (d *Document) GetDimensions() ([]SheetDimensions, error) {
	out := make([]SheetDimensions, 0, len(d.idx.Sheets))
	for _, sd := range d.idx.Sheets {
		if !d.arc.Has(sd.PartPath) {
			return nil, fmt.Errorf("%w: worksheet part %q for sheet %q", ErrMalformedArchive, sd.PartPath, sd.Name)
		}
		dim, err := d.probeDimension(sd.PartPath)
		if err != nil {
			return nil, newExtractionError(sd.Name, "dimension", err)
		}
		end := cellref.Ref{Col: dim.MaxCol, Row: dim.MaxRow}
		out = append(out, SheetDimensions{
			Sheet:     sd.Name,
			MaxRow:    dim.MaxRow,
			MaxCol:    dim.MaxCol,
			StartCell: "A1",
			EndCell:   end.String(),
		})
	}
	return out, nil
}

func (d *Document) probeDimension(partPath string) (dimension.Result, error) {
	rc, err := d.arc.Open(partPath)
	if err != nil {
		return dimension.Result{}, fmt.Errorf("%w: %v", ErrMalformedArchive, err)
	}
	defer rc.Close()
	res, err := dimension.Probe(rc)
	if err != nil {
		return dimension.Result{}, fmt.Errorf("%w: dimension: %v", ErrInvalidDimension, err)
	}
	return res, nil
}

func (d *Document) buildMergeMap(partPath string) (*mergemap.Map, error) {
	rc, err := d.arc.Open(partPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedArchive, err)
	}
	defer rc.Close()
	m, err := mergemap.Build(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: merge map: %v", ErrMalformedArchive, err)
	}
	return m, nil
}

func (d *Document) byteArrayResolverFunc() rowstream.ByteArrayResolver {
	if d.opts.byteArrayResolver == nil {
		return d.resolveByteArray
	}
	custom := d.opts.byteArrayResolver
	return func(path string) ([]byte, error) {
		rc, err := custom(path)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
}

// QueryAsync adapts Query to a channel-based push model for callers that
// prefer to range over rows instead of driving Next themselves; it
// introduces no new semantics over Query.
func (d *Document) QueryAsync(ctx context.Context, sheet, startCell string, useHeaderRow bool) (<-chan RowOrError, error) {
	it, err := d.Query(sheet, startCell, useHeaderRow)
	if err != nil {
		return nil, err
	}
	return streamAsync(ctx, it), nil
}

// QueryRangeAsync is QueryRange's async counterpart.
func (d *Document) QueryRangeAsync(ctx context.Context, sheet, startCell, endCell string, useHeaderRow bool) (<-chan RowOrError, error) {
	it, err := d.QueryRange(sheet, startCell, endCell, useHeaderRow)
	if err != nil {
		return nil, err
	}
	return streamAsync(ctx, it), nil
}

func streamAsync(ctx context.Context, it *RowIterator) <-chan RowOrError {
	out := make(chan RowOrError)
	go func() {
		defer close(out)
		defer it.Close()
		for it.NextContext(ctx) {
			select {
			case out <- RowOrError{Row: it.Row()}:
			case <-ctx.Done():
				return
			}
		}
		if err := it.Err(); err != nil {
			select {
			case out <- RowOrError{Err: err}:
			case <-ctx.Done():
			}
		}
	}()
	return out
}
