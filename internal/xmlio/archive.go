// Package xmlio wraps zip-part lookup and the muktihari/xmltokenizer
// streaming tokenizer used for the two high-volume forward-only passes
// (shared strings, sheet data). It is the leaf every other core component
// re-opens streams through.
package xmlio

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"
)

// Archive is a read-only view over an already-opened zip container. Each
// call to Open re-opens a fresh decompression stream for the named part,
// since the underlying compressed bytes are not randomly accessible.
type Archive struct {
	r     *zip.Reader
	byLow map[string]*zip.File
}

// NewArchive indexes r's files by exact and lower-cased path so that Part
// lookup can fall back to a case-insensitive match, which some producers
// require (e.g. "xl/Worksheets/sheet1.xml").
func NewArchive(r *zip.Reader) *Archive {
	a := &Archive{r: r, byLow: make(map[string]*zip.File, len(r.File))}
	for _, f := range r.File {
		a.byLow[strings.ToLower(f.Name)] = f
	}
	return a
}

// Part returns the zip.File for name, trying an exact match first, then a
// case-insensitive one. Returns nil if the part does not exist.
func (a *Archive) Part(name string) *zip.File {
	for _, f := range a.r.File {
		if f.Name == name {
			return f
		}
	}
	if f, ok := a.byLow[strings.ToLower(name)]; ok {
		return f
	}
	return nil
}

// Has reports whether name exists in the archive.
func (a *Archive) Has(name string) bool {
	return a.Part(name) != nil
}

// Open opens a fresh decompression stream for the named part. The caller
// must Close the returned ReadCloser.
func (a *Archive) Open(name string) (io.ReadCloser, error) {
	f := a.Part(name)
	if f == nil {
		return nil, fmt.Errorf("xmlio: part %q not found in archive", name)
	}
	return f.Open()
}

// OpenBytes reads a part fully into memory; used for byte-array cell
// payloads ("@@@fileid@@@,<path>" sentinels).
func (a *Archive) OpenBytes(name string) ([]byte, error) {
	rc, err := a.Open(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
