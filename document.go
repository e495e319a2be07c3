package xlsxstream

import (
	"archive/zip"
	"fmt"
	"io"
	"log/slog"

	"github.com/xlsxstream/xlsxstream/internal/sharedstrings"
	"github.com/xlsxstream/xlsxstream/internal/styles"
	"github.com/xlsxstream/xlsxstream/internal/workbookindex"
	"github.com/xlsxstream/xlsxstream/internal/xldate"
	"github.com/xlsxstream/xlsxstream/internal/xmlio"
)

const (
	workbookPath = "xl/workbook.xml"
	relsPath     = "xl/_rels/workbook.xml.rels"
)

// Document is the top-level owner of one open .xlsx container: its zip
// archive, WorkbookIndex, SharedStringStore and StyleTable, all built once
// and shared read-only across concurrent Query/QueryRange calls.
type Document struct {
	opts Options

	arc    *xmlio.Archive
	closer io.Closer // zip.OpenReader's ReadCloser, nil for OpenReader(io.ReaderAt)

	idx *workbookindex.Index
	sst sharedstrings.Store
	sty *styles.Table

	log *slog.Logger
}

// Open opens the .xlsx file at path, grounded on tablescanner.xlsx.go's
// zip.OpenReader-based construction.
func Open(path string, opts ...Option) (*Document, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedArchive, err)
	}
	doc, err := newDocument(&zr.Reader, opts)
	if err != nil {
		zr.Close()
		return nil, err
	}
	doc.closer = zr
	return doc, nil
}

// OpenReader opens an .xlsx container already resident in r (an in-memory
// buffer, an *os.File, or anything implementing io.ReaderAt), sized size
// bytes. The caller retains ownership of r; Close does not close it.
func OpenReader(r io.ReaderAt, size int64, opts ...Option) (*Document, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedArchive, err)
	}
	return newDocument(zr, opts)
}

func newDocument(zr *zip.Reader, optFuncs []Option) (*Document, error) {
	o := defaultOptions()
	for _, f := range optFuncs {
		f(&o)
	}

	arc := xmlio.NewArchive(zr)
	if !arc.Has(workbookPath) {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformedArchive, workbookPath)
	}

	idx, err := workbookindex.Load(arc, workbookPath, relsPath, o.dynamicSheets)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedArchive, err)
	}
	if o.date1904Override != nil {
		if *o.date1904Override {
			idx.Epoch = xldate.Epoch1904
		} else {
			idx.Epoch = xldate.Epoch1900
		}
	}

	sst, err := sharedstrings.Build(arc, idx.SharedStringPart, sharedstrings.Options{
		EnableCache:    o.enableSharedStringCache,
		CacheThreshold: o.sharedStringCacheSize,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: shared strings: %v", ErrMalformedArchive, err)
	}

	sty, err := styles.Load(arc, idx.StylesPart, idx.Epoch)
	if err != nil {
		return nil, fmt.Errorf("%w: styles: %v", ErrMalformedArchive, err)
	}

	o.logger.Debug("opened workbook", "sheets", len(idx.Sheets), "sharedStrings", sst.Len())

	return &Document{
		opts: o,
		arc:  arc,
		idx:  idx,
		sst:  sst,
		sty:  sty,
		log:  o.logger,
	}, nil
}

// Close releases the SharedStringStore's temp file (if any) and the
// underlying zip.ReadCloser opened by Open. Safe to call once. For
// documents built with OpenReader it releases only the SharedStringStore;
// the caller-owned io.ReaderAt is left open.
func (d *Document) Close() error {
	d.log.Debug("closing document")
	var err error
	if d.sst != nil {
		err = d.sst.Close()
	}
	if d.closer != nil {
		if cerr := d.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// GetSheets lists every sheet named in workbook.xml, including hidden and
// very-hidden ones (informational only — Query still operates on them).
func (d *Document) GetSheets() []SheetInfo {
	out := make([]SheetInfo, len(d.idx.Sheets))
	for i, s := range d.idx.Sheets {
		out[i] = SheetInfo{Name: s.Name, Visibility: s.Visibility, Active: s.Active}
	}
	return out
}

func (d *Document) resolveSheet(name string) (workbookindex.SheetDescriptor, error) {
	sd, ok := d.idx.Resolve(name)
	if !ok {
		return workbookindex.SheetDescriptor{}, fmt.Errorf("%w: %q", ErrUnknownSheet, name)
	}
	return sd, nil
}

func (d *Document) resolveByteArray(path string) ([]byte, error) {
	return d.arc.OpenBytes(path)
}
