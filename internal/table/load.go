package table

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// LoadOptions controls how delimited and spreadsheet files become tables.
type LoadOptions struct {
	// Delimiter for CSV. If 0, picks '\t' for .tsv files, otherwise the most
	// frequent of ',', ';', '\t' in the header line.
	Delimiter rune
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune // optional; if 0, auto-detect common separators (',' '.' space)
	// SheetName selects an XLSX sheet by name (case-insensitive).
	SheetName string
	// SheetIndex selects an XLSX sheet by 1-based index when SheetName is empty.
	SheetIndex int
}

// DefaultLoadOptions returns auto-detecting options reading the first sheet.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{SheetIndex: 1}
}

// missingTokens are cell values read as the missing sentinel.
var missingTokens = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"#N/A": true,
	"NaN":  true,
	"nan":  true,
	"-nan": true,
	"null": true,
	"NULL": true,
	"None": true,
	"<NA>": true,
}

// Load reads a CSV, TSV or XLSX file, choosing the reader by extension.
func Load(path string, opt LoadOptions) (*Table, error) {
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return LoadXLSX(path, opt)
	}
	return LoadCSV(path, opt)
}

// LoadCSV reads a delimited file with a header row.
func LoadCSV(path string, opt LoadOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	if opt.Delimiter == 0 && strings.HasSuffix(strings.ToLower(path), ".tsv") {
		opt.Delimiter = '\t'
	}
	return ReadCSV(f, opt)
}

// ReadCSV reads delimited records with a header row from r.
func ReadCSV(r io.Reader, opt LoadOptions) (*Table, error) {
	br := bufio.NewReader(r)
	delim := opt.Delimiter
	if delim == 0 {
		head, _ := br.Peek(4096)
		delim = sniffDelimiter(head)
	}
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comma = delim

	var records [][]string
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(records), err)
		}
		records = append(records, rec)
	}
	return FromRecords(records, opt)
}

// FromRecords builds a table from string records whose first record is the
// header. Short rows are padded with missing values, missing tokens become
// NA, and columns whose every value parses as a number under the locale
// options are loaded as numeric.
func FromRecords(records [][]string, opt LoadOptions) (*Table, error) {
	if len(records) == 0 || len(records[0]) == 0 {
		return &Table{}, nil
	}
	ncol := len(records[0])
	rows := make([][]string, len(records))
	header := make([]string, ncol)
	for i, h := range records[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		header[i] = h
	}
	rows[0] = header
	if len(records) == 1 {
		cols := make([]series.Series, ncol)
		for i, h := range header {
			cols[i] = series.New([]string{}, series.String, h)
		}
		return New(cols...)
	}
	for i := 1; i < len(records); i++ {
		row := make([]string, ncol)
		copy(row, records[i])
		for j := range row {
			v := strings.TrimSpace(row[j])
			if missingTokens[v] {
				v = "NaN"
			}
			row[j] = v
		}
		rows[i] = row
	}
	for j := 0; j < ncol; j++ {
		canonicalizeNumbers(rows[1:], j, opt)
	}
	df := dataframe.LoadRecords(rows, dataframe.HasHeader(true), dataframe.DetectTypes(true))
	if df.Err != nil {
		return nil, fmt.Errorf("load records: %w", df.Err)
	}
	return &Table{df: df}, nil
}

// canonicalizeNumbers rewrites column j to plain Go float syntax when every
// non-missing cell parses as a number. Mixed columns are left as text.
func canonicalizeNumbers(rows [][]string, j int, opt LoadOptions) {
	parsed := make([]string, len(rows))
	changed := false
	// plain Go syntax is only trusted when '.' is the decimal point
	plain := (opt.DecimalSeparator == 0 || opt.DecimalSeparator == '.') && opt.ThousandsSeparator != '.'
	for i, row := range rows {
		v := row[j]
		if v == "NaN" {
			parsed[i] = v
			continue
		}
		if _, err := strconv.ParseFloat(v, 64); plain && err == nil {
			parsed[i] = v
			continue
		}
		x, ok := parseNumeric(v, opt)
		if !ok {
			return
		}
		parsed[i] = strconv.FormatFloat(x, 'f', -1, 64)
		changed = true
	}
	if !changed {
		return
	}
	for i, row := range rows {
		row[j] = parsed[i]
	}
}

func sniffDelimiter(head []byte) rune {
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}
	best, bestCount := ',', 0
	for _, d := range []rune{',', ';', '\t'} {
		if c := bytes.Count(head, []byte(string(d))); c > bestCount {
			best, bestCount = d, c
		}
	}
	return best
}

func parseNumeric(s string, opt LoadOptions) (float64, bool) {
	raw := strings.TrimSpace(s)
	if strings.HasSuffix(raw, "%") {
		raw = strings.TrimSuffix(raw, "%")
	}
	// Normalize spaces
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		if cpos >= 0 && dpos >= 0 {
			if cpos > dpos {
				dec = ','
				thou = '.'
			} else {
				dec = '.'
				thou = ','
			}
		} else if cpos >= 0 {
			dec = ','
		} else {
			dec = '.'
		}
	}
	// Remove thousands separators if they differ from decimal
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParseDelimiter maps a user-facing delimiter name to a rune. Empty means
// auto-detect (0).
func ParseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case ",", "comma":
		return ',', nil
	case "\t", `\t`, "tab":
		return '\t', nil
	case ";", "semicolon":
		return ';', nil
	case "|", "pipe":
		return '|', nil
	default:
		return 0, fmt.Errorf("unsupported delimiter: %s (use ','|';'|'tab'|'|')", s)
	}
}

// ParseDecimalSeparator accepts '.', 'dot', ',' and 'comma'. Empty means
// auto-detect (0).
func ParseDecimalSeparator(s string) (rune, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return 0, nil
	case ",", "comma":
		return ',', nil
	case ".", "dot":
		return '.', nil
	default:
		return 0, fmt.Errorf("unsupported decimal separator: %s (use '.'|'comma')", s)
	}
}

// ParseThousandsSeparator accepts ',', '.', and ' ' or 'space'. Empty means
// auto-detect (0).
func ParseThousandsSeparator(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case ",":
		return ',', nil
	case ".":
		return '.', nil
	case " ", "space":
		return ' ', nil
	default:
		return 0, fmt.Errorf("unsupported thousands separator: %s (use ','|'.'|'space')", s)
	}
}
