package table

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LoadXLSX reads one worksheet of a .xlsx workbook into a table. The sheet is
// chosen by opt.SheetName (case-insensitive) or, when empty, by the 1-based
// opt.SheetIndex. The first row is the header.
func LoadXLSX(path string, opt LoadOptions) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read xlsx: %w", err)
	}
	wb, err := openWorkbook(b)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	target, err := wb.resolveSheet(opt.SheetName, opt.SheetIndex)
	if err != nil {
		return nil, fmt.Errorf("%w in workbook '%s'", err, filepath.Base(path))
	}
	data := wb.file(target)
	if data == nil {
		return nil, fmt.Errorf("worksheet %s missing from workbook '%s'", target, filepath.Base(path))
	}
	rr := newSheetRowReader(data, wb.shared)
	var records [][]string
	for {
		row, ok := rr.Next()
		if !ok {
			break
		}
		records = append(records, row)
	}
	return FromRecords(records, opt)
}

type workbook struct {
	zr     *zip.Reader
	sheets []wbSheet
	rels   map[string]string
	shared []string
}

type wbSheet struct {
	Name    string
	SheetID int
	RID     string
}

func openWorkbook(b []byte) (*workbook, error) {
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, err
	}
	wb := &workbook{zr: zr}
	wb.sheets = parseWorkbook(wb.file("xl/workbook.xml"))
	wb.rels = parseRelationships(wb.file("xl/_rels/workbook.xml.rels"))
	wb.shared = parseSharedStrings(wb.file("xl/sharedStrings.xml"))
	return wb, nil
}

func (wb *workbook) sheetNames() []string {
	names := make([]string, len(wb.sheets))
	for i, s := range wb.sheets {
		names[i] = s.Name
	}
	return names
}

// resolveSheet maps a sheet name or 1-based index to its ZIP entry.
func (wb *workbook) resolveSheet(name string, index int) (string, error) {
	if name != "" {
		for _, s := range wb.sheets {
			if strings.EqualFold(s.Name, name) {
				if rel, ok := wb.rels[s.RID]; ok {
					return normalizeRelPath(rel), nil
				}
				break
			}
		}
		return "", fmt.Errorf("sheet '%s' not found (available sheets: %s)", name, strings.Join(wb.sheetNames(), ", "))
	}
	if index <= 0 {
		index = 1
	}
	if index <= len(wb.sheets) {
		if rel, ok := wb.rels[wb.sheets[index-1].RID]; ok {
			return normalizeRelPath(rel), nil
		}
	} else if len(wb.sheets) > 0 {
		return "", fmt.Errorf("sheet index %d out of range (workbook has %d sheets: %s)", index, len(wb.sheets), strings.Join(wb.sheetNames(), ", "))
	}
	// Workbooks without relationship data still follow the sheetN naming.
	return fmt.Sprintf("xl/worksheets/sheet%d.xml", index), nil
}

func (wb *workbook) file(name string) []byte {
	for _, f := range wb.zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil
		}
		defer rc.Close()
		b, _ := io.ReadAll(rc)
		return b
	}
	return nil
}

// xmlTokens walks every token of data, stopping at the first decode error.
func xmlTokens(data []byte, fn func(xml.Token)) {
	if len(data) == 0 {
		return
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return
		}
		fn(tok)
	}
}

func parseWorkbook(data []byte) []wbSheet {
	var sheets []wbSheet
	xmlTokens(data, func(tok xml.Token) {
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "sheet" {
			return
		}
		var s wbSheet
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "name":
				s.Name = a.Value
			case "sheetId":
				s.SheetID = atoiSafe(a.Value)
			case "id":
				s.RID = a.Value // r: namespace
			}
		}
		sheets = append(sheets, s)
	})
	return sheets
}

// parseRelationships returns map[r:id]Target.
func parseRelationships(data []byte) map[string]string {
	out := map[string]string{}
	xmlTokens(data, func(tok xml.Token) {
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Relationship" {
			return
		}
		var id, target string
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "Id":
				id = a.Value
			case "Target":
				target = a.Value
			}
		}
		if id != "" && target != "" {
			out[id] = target
		}
	})
	return out
}

func parseSharedStrings(data []byte) []string {
	var out []string
	var buf strings.Builder
	var inT bool
	xmlTokens(data, func(tok xml.Token) {
		switch se := tok.(type) {
		case xml.StartElement:
			switch se.Name.Local {
			case "si":
				buf.Reset()
			case "t":
				inT = true
			}
		case xml.EndElement:
			switch se.Name.Local {
			case "t":
				inT = false
			case "si":
				out = append(out, buf.String())
				buf.Reset()
			}
		case xml.CharData:
			if inT {
				buf.Write(se)
			}
		}
	})
	return out
}

type sheetRowReader struct {
	dec    *xml.Decoder
	shared []string
	row    []string
	width  int
}

func newSheetRowReader(data []byte, shared []string) *sheetRowReader {
	return &sheetRowReader{dec: xml.NewDecoder(bytes.NewReader(data)), shared: shared}
}

// Next returns the next <row> as a dense slice; gaps left by sparse cells are
// empty strings.
func (r *sheetRowReader) Next() ([]string, bool) {
	inRow := false
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return nil, false
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch {
			case se.Name.Local == "row":
				inRow = true
				r.row = nil
			case inRow && se.Name.Local == "c":
				var ref, typ string
				for _, a := range se.Attr {
					switch a.Name.Local {
					case "r":
						ref = a.Value
					case "t":
						typ = a.Value
					}
				}
				col := len(r.row)
				if ref != "" {
					col = colIndexFromRef(ref)
				}
				val := r.readCellValue(typ)
				if col < 0 {
					continue
				}
				if len(r.row) <= col {
					grown := make([]string, col+1)
					copy(grown, r.row)
					r.row = grown
				}
				r.row[col] = val
			}
		case xml.EndElement:
			if se.Name.Local == "row" && inRow {
				if len(r.row) > r.width {
					r.width = len(r.row)
				}
				if len(r.row) < r.width {
					grown := make([]string, r.width)
					copy(grown, r.row)
					r.row = grown
				}
				return r.row, true
			}
		}
	}
}

// readCellValue consumes tokens up to </c>, returning the <v> or inline <t>
// text with shared strings resolved.
func (r *sheetRowReader) readCellValue(typ string) string {
	var val string
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return val
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "v" || se.Name.Local == "t" {
				var sb strings.Builder
				for {
					tk, er := r.dec.Token()
					if er != nil {
						break
					}
					if ed, ok := tk.(xml.EndElement); ok && (ed.Name.Local == "v" || ed.Name.Local == "t") {
						break
					}
					if ch, ok := tk.(xml.CharData); ok {
						sb.Write(ch)
					}
				}
				val = sb.String()
			}
		case xml.EndElement:
			if se.Name.Local != "c" {
				continue
			}
			if typ == "s" {
				idx := atoiSafe(val)
				if idx >= 0 && idx < len(r.shared) {
					return r.shared[idx]
				}
				return ""
			}
			return val
		}
	}
}

var errBadRef = errors.New("bad cell reference")

// colIndexFromRef maps refs like "C12" to a 0-based column index (2), or -1.
func colIndexFromRef(ref string) int {
	idx, err := columnLetters(ref)
	if err != nil {
		return -1
	}
	return idx
}

func columnLetters(ref string) (int, error) {
	i := 0
	for i < len(ref) && (ref[i] >= 'A' && ref[i] <= 'Z' || ref[i] >= 'a' && ref[i] <= 'z') {
		i++
	}
	if i == 0 {
		return 0, errBadRef
	}
	letters := strings.ToUpper(ref[:i])
	idx := 0
	for j := 0; j < len(letters); j++ {
		idx = idx*26 + int(letters[j]-'A'+1)
	}
	return idx - 1, nil
}

func atoiSafe(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// normalizeRelPath converts relationship targets ("/xl/worksheets/sheet1.xml",
// "worksheets/sheet1.xml") to ZIP entry names ("xl/worksheets/sheet1.xml").
func normalizeRelPath(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if strings.HasPrefix(rel, "xl/") {
		return rel
	}
	return "xl/" + rel
}
