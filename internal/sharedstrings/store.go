// Package sharedstrings builds the read-only index→string table backing
// cells with t="s", choosing between an in-memory slice and an on-disk
// spill file depending on the source segment's size and configuration.
package sharedstrings

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xlsxstream/xlsxstream/internal/xmlio"
)

// Store is the narrow read-only contract every shared-string backing
// implementation satisfies: get(i)/len(), plus Close to release any
// temporary resources.
type Store interface {
	Get(i int) (string, bool)
	Len() int
	Close() error
}

// Options controls how Build chooses a Store implementation.
type Options struct {
	EnableCache    bool
	CacheThreshold int64 // bytes; a source segment at or above this spills to disk
	TempDir        string
}

// Build reads the sharedStrings.xml part (if present) from arc and returns
// a Store. xl/sharedStrings.xml is optional in OOXML — workbooks with no
// string cells omit it entirely — so a nil/absent part yields an empty
// in-memory Store.
func Build(arc *xmlio.Archive, partName string, opts Options) (Store, error) {
	f := arc.Part(partName)
	if f == nil {
		return &memoryStore{}, nil
	}

	if opts.EnableCache && int64(f.UncompressedSize64) >= opts.CacheThreshold {
		return buildDiskStore(arc, partName, opts)
	}
	return buildMemoryStore(arc, partName)
}

type memoryStore struct {
	strs []string
}

func (m *memoryStore) Get(i int) (string, bool) {
	if i < 0 || i >= len(m.strs) {
		return "", false
	}
	return m.strs[i], true
}

func (m *memoryStore) Len() int    { return len(m.strs) }
func (m *memoryStore) Close() error { return nil }

func buildMemoryStore(arc *xmlio.Archive, partName string) (Store, error) {
	rc, err := arc.Open(partName)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var strs []string
	if err := decodeEach(rc, func(s string) error {
		strs = append(strs, s)
		return nil
	}); err != nil {
		return nil, err
	}
	return &memoryStore{strs: strs}, nil
}

// decodeEach walks the whole <sst> document via the streaming tokenizer,
// invoking fn with each <si> entry's resolved text in order. Entries are
// handed to fn one at a time rather than collected, so a caller that needs
// to keep only a bounded amount resident (buildDiskStore) never has to hold
// the whole table in memory at once.
func decodeEach(r io.Reader, fn func(s string) error) error {
	cur := xmlio.NewCursor(r)

	inSI := false
	var entry strings.Builder

	for {
		tok, err := cur.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("sharedstrings: %w", err)
		}
		name := xmlio.LocalName(tok)

		if tok.IsEndElement() {
			if name == "si" {
				if err := fn(unescapeXLSX(entry.String())); err != nil {
					return err
				}
				entry.Reset()
				inSI = false
			}
			continue
		}

		switch name {
		case "si":
			inSI = true
			if tok.SelfClosing {
				if err := fn(""); err != nil {
					return err
				}
				inSI = false
			}
		case "t":
			if inSI && !tok.SelfClosing {
				entry.WriteString(xmlio.CharData(tok))
			}
		}
	}
	return nil
}

// unescapeXLSX resolves the `_x00HH_` escape sequence OOXML uses for
// control characters that cannot appear literally in XML text.
func unescapeXLSX(s string) string {
	if !strings.Contains(s, "_x") {
		return s
	}
	var b strings.Builder
	i := 0
	for i < len(s) {
		if i+7 <= len(s) && s[i] == '_' && s[i+1] == 'x' && s[i+6] == '_' {
			hex := s[i+2 : i+6]
			if isHex4(hex) {
				var v int
				fmt.Sscanf(hex, "%x", &v)
				b.WriteRune(rune(v))
				i += 7
				continue
			}
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

func isHex4(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

// diskStore spills decoded strings to a flat temp file and keeps only a
// byte-offset index in memory. No third-party embedded-KV library exists
// anywhere in the retrieval pack, so this is a small hand-rolled flat file
// of concatenated entries; each entry's offset and length are held in
// memory.
type diskStore struct {
	file    *os.File
	offsets []int64
	lens    []int32
}

// buildDiskStore writes each decoded <si> entry to the spill file as it is
// produced by decodeEach, so peak memory holds one entry at a time rather
// than the whole table — the point of spilling to disk in the first place.
func buildDiskStore(arc *xmlio.Archive, partName string, opts Options) (Store, error) {
	rc, err := arc.Open(partName)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	tmp, err := os.CreateTemp(opts.TempDir, "xlsxstream-sst-*.bin")
	if err != nil {
		return nil, fmt.Errorf("sharedstrings: creating spill file: %w", err)
	}

	ds := &diskStore{file: tmp}
	var off int64
	i := 0
	decodeErr := decodeEach(rc, func(s string) error {
		n, err := tmp.WriteString(s)
		if err != nil {
			return fmt.Errorf("sharedstrings: writing spill entry %d: %w", i, err)
		}
		ds.offsets = append(ds.offsets, off)
		ds.lens = append(ds.lens, int32(n))
		off += int64(n)
		i++
		return nil
	})
	if decodeErr != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, decodeErr
	}
	return ds, nil
}

func (d *diskStore) Get(i int) (string, bool) {
	if i < 0 || i >= len(d.offsets) {
		return "", false
	}
	buf := make([]byte, d.lens[i])
	if _, err := d.file.ReadAt(buf, d.offsets[i]); err != nil && err != io.EOF {
		return "", false
	}
	return string(buf), true
}

func (d *diskStore) Len() int { return len(d.offsets) }

func (d *diskStore) Close() error {
	name := d.file.Name()
	err := d.file.Close()
	if rmErr := os.Remove(name); rmErr != nil && err == nil {
		err = rmErr
	}
	return err
}
