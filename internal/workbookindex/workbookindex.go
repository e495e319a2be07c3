// Package workbookindex parses workbook.xml and its relationships part to
// map sheet names to worksheet part paths and record the active-sheet
// index, plus resolve well-known relationship targets (styles, shared
// strings).
package workbookindex

import (
	"encoding/xml"
	"fmt"
	"path"
	"strings"

	"github.com/xlsxstream/xlsxstream/internal/xldate"
	"github.com/xlsxstream/xlsxstream/internal/xmlio"
)

// Visibility mirrors the OOXML sheet @state attribute.
type Visibility int

const (
	Visible Visibility = iota
	Hidden
	VeryHidden
)

type xmlWorkbook struct {
	WorkbookPr xmlWorkbookPr `xml:"workbookPr"`
	BookViews  xmlBookViews  `xml:"bookViews"`
	Sheets     xmlSheets     `xml:"sheets"`
}

type xmlWorkbookPr struct {
	Date1904 bool `xml:"date1904,attr"`
}

type xmlBookViews struct {
	WorkBookView []xmlWorkBookView `xml:"workbookView"`
}

type xmlWorkBookView struct {
	ActiveTab int `xml:"activeTab,attr"`
}

type xmlSheets struct {
	Sheet []xmlSheet `xml:"sheet"`
}

type xmlSheet struct {
	Name    string `xml:"name,attr"`
	SheetID string `xml:"sheetId,attr"`
	RID     string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	State   string `xml:"state,attr"`
}

type xmlRelationships struct {
	Relationship []xmlRelationship `xml:"Relationship"`
}

type xmlRelationship struct {
	ID     string `xml:"Id,attr"`
	Target string `xml:"Target,attr"`
	Type   string `xml:"Type,attr"`
}

// SheetDescriptor is one entry from workbook.xml, resolved to its payload
// part path via the relationships file.
type SheetDescriptor struct {
	Name       string
	SheetID    string
	RelID      string
	Visibility Visibility
	PartPath   string
	Active     bool
}

// Index is the parsed workbook descriptor plus relationship resolution.
type Index struct {
	Sheets           []SheetDescriptor
	ActiveTab        int
	Epoch            xldate.Epoch
	StylesPart       string
	SharedStringPart string
	// Aliases maps a caller-defined alias to the real sheet name it stands
	// in for, consulted by Resolve after an exact-name match fails.
	Aliases map[string]string
}

const (
	stateHidden     = "hidden"
	stateVeryHidden = "veryHidden"
)

// Load parses workbookPath and relsPath from arc.
func Load(arc *xmlio.Archive, workbookPath, relsPath string, aliases map[string]string) (*Index, error) {
	relations, stylesPart, sstPart, err := loadRelationships(arc, workbookPath, relsPath)
	if err != nil {
		return nil, err
	}

	rc, err := arc.Open(workbookPath)
	if err != nil {
		return nil, fmt.Errorf("workbookindex: %w", err)
	}
	defer rc.Close()

	var wb xmlWorkbook
	if err := xml.NewDecoder(rc).Decode(&wb); err != nil {
		return nil, fmt.Errorf("workbookindex: decoding %s: %w", workbookPath, err)
	}

	idx := &Index{
		StylesPart:       stylesPart,
		SharedStringPart: sstPart,
		Aliases:          aliases,
	}
	if wb.WorkbookPr.Date1904 {
		idx.Epoch = xldate.Epoch1904
	}

	idx.Sheets = make([]SheetDescriptor, len(wb.Sheets.Sheet))
	for i, s := range wb.Sheets.Sheet {
		d := SheetDescriptor{
			Name:       s.Name,
			SheetID:    s.SheetID,
			RelID:      s.RID,
			Visibility: Visible,
			PartPath:   relations[s.RID],
		}
		switch s.State {
		case stateHidden:
			d.Visibility = Hidden
		case stateVeryHidden:
			d.Visibility = VeryHidden
		}
		idx.Sheets[i] = d
	}

	idx.ActiveTab = 0
	if len(wb.BookViews.WorkBookView) > 0 {
		idx.ActiveTab = wb.BookViews.WorkBookView[0].ActiveTab
	}
	if idx.ActiveTab < 0 {
		idx.ActiveTab = 0
	}
	if idx.ActiveTab > len(idx.Sheets)-1 && len(idx.Sheets) > 0 {
		idx.ActiveTab = len(idx.Sheets) - 1
	}
	if len(idx.Sheets) > 0 {
		idx.Sheets[idx.ActiveTab].Active = true
	}

	return idx, nil
}

func loadRelationships(arc *xmlio.Archive, workbookPath, relsPath string) (relations map[string]string, stylesPart, sstPart string, err error) {
	stylesPart = "xl/styles.xml"
	sstPart = "xl/sharedStrings.xml"
	relations = make(map[string]string)

	if !arc.Has(relsPath) {
		return relations, stylesPart, sstPart, nil
	}
	rc, err := arc.Open(relsPath)
	if err != nil {
		return nil, "", "", fmt.Errorf("workbookindex: %w", err)
	}
	defer rc.Close()

	var rels xmlRelationships
	if err := xml.NewDecoder(rc).Decode(&rels); err != nil {
		return nil, "", "", fmt.Errorf("workbookindex: decoding %s: %w", relsPath, err)
	}

	base := path.Dir(workbookPath) // xl/workbook.xml -> xl
	for _, rel := range rels.Relationship {
		target := rel.Target
		if strings.HasPrefix(target, "/") {
			relations[rel.ID] = target[1:]
		} else if base != "." && base != "" {
			relations[rel.ID] = base + "/" + target
		} else {
			relations[rel.ID] = target
		}

		switch strings.ToLower(path.Base(rel.Type)) {
		case "styles":
			stylesPart = relations[rel.ID]
		case "sharedstrings":
			sstPart = relations[rel.ID]
		}
	}
	return relations, stylesPart, sstPart, nil
}

// Resolve looks up a sheet by exact name, falling back to the alias table.
// Returns false if no sheet matches.
func (idx *Index) Resolve(name string) (SheetDescriptor, bool) {
	if name == "" {
		if len(idx.Sheets) == 0 {
			return SheetDescriptor{}, false
		}
		return idx.Sheets[idx.ActiveTab], true
	}
	for _, s := range idx.Sheets {
		if s.Name == name {
			return s, true
		}
	}
	if real, ok := idx.Aliases[name]; ok {
		for _, s := range idx.Sheets {
			if s.Name == real {
				return s, true
			}
		}
	}
	return SheetDescriptor{}, false
}
