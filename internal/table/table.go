// Package table wraps a gota DataFrame as the caller-owned, mutable table the
// cleaning and testing helpers operate on.
package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Table is a set of equally long named columns. Mutating methods replace the
// wrapped frame, so every holder of the *Table observes the change.
// A Table is not safe for concurrent mutation.
type Table struct {
	df dataframe.DataFrame
}

// New builds a table from the given columns. Columns must share one length
// and have distinct names.
func New(cols ...series.Series) (*Table, error) {
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		if c.Err != nil {
			return nil, fmt.Errorf("column %q: %w", c.Name, c.Err)
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("duplicate column name %q", c.Name)
		}
		seen[c.Name] = true
	}
	if len(cols) == 0 {
		return &Table{}, nil
	}
	df := dataframe.New(cols...)
	if df.Err != nil {
		return nil, fmt.Errorf("build table: %w", df.Err)
	}
	return &Table{df: df}, nil
}

func (t *Table) Names() []string {
	if t.df.Ncol() == 0 {
		return nil
	}
	return t.df.Names()
}

func (t *Table) Nrow() int { return t.df.Nrow() }
func (t *Table) Ncol() int { return t.df.Ncol() }

// Has reports whether a column with exactly this name exists.
func (t *Table) Has(name string) bool {
	_, err := t.Index(name)
	return err == nil
}

// Index returns the position of the named column.
func (t *Table) Index(name string) (int, error) {
	for i, n := range t.Names() {
		if n == name {
			return i, nil
		}
	}
	return -1, &ColumnNotFoundError{Column: name, Available: t.Names()}
}

// Column returns a copy of the named column.
func (t *Table) Column(name string) (series.Series, error) {
	if !t.Has(name) {
		return series.Series{}, &ColumnNotFoundError{Column: name, Available: t.Names()}
	}
	return t.df.Col(name), nil
}

// Floats returns the named column as float64 values with NaN for missing
// entries. Text columns holding any value are a *TypeError.
func (t *Table) Floats(name string) ([]float64, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if err := RequireNumeric(col); err != nil {
		return nil, err
	}
	return col.Float(), nil
}

// Replace swaps in a column with the same name as an existing one.
func (t *Table) Replace(s series.Series) error {
	if s.Err != nil {
		return fmt.Errorf("replace column %q: %w", s.Name, s.Err)
	}
	if !t.Has(s.Name) {
		return &ColumnNotFoundError{Column: s.Name, Available: t.Names()}
	}
	if s.Len() != t.Nrow() {
		return fmt.Errorf("replace column %q: got %d rows, table has %d", s.Name, s.Len(), t.Nrow())
	}
	df := t.df.Mutate(s)
	if df.Err != nil {
		return fmt.Errorf("replace column %q: %w", s.Name, df.Err)
	}
	t.df = df
	return nil
}

// Rename assigns new names positionally. The table is untouched on error.
func (t *Table) Rename(names []string) error {
	if len(names) != t.Ncol() {
		return fmt.Errorf("rename: got %d names for %d columns", len(names), t.Ncol())
	}
	if len(names) == 0 {
		return nil
	}
	cols := make([]series.Series, len(names))
	for i, old := range t.Names() {
		c := t.df.Col(old)
		c.Name = names[i]
		cols[i] = c
	}
	nt, err := New(cols...)
	if err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	t.df = nt.df
	return nil
}

// Drop removes the named columns.
func (t *Table) Drop(names ...string) error {
	if len(names) == 0 {
		return nil
	}
	for _, n := range names {
		if !t.Has(n) {
			return &ColumnNotFoundError{Column: n, Available: t.Names()}
		}
	}
	if len(names) == t.Ncol() {
		t.df = dataframe.DataFrame{}
		return nil
	}
	df := t.df.Drop(names)
	if df.Err != nil {
		return fmt.Errorf("drop columns: %w", df.Err)
	}
	t.df = df
	return nil
}

// Filter returns a new table holding the rows whose column equals label.
// The label is converted to the column's type before comparison.
func (t *Table) Filter(column, label string) (*Table, error) {
	if !t.Has(column) {
		return nil, &ColumnNotFoundError{Column: column, Available: t.Names()}
	}
	df := t.df.Filter(dataframe.F{Colname: column, Comparator: series.Eq, Comparando: label})
	if df.Err != nil {
		return nil, fmt.Errorf("filter %s == %q: %w", column, label, df.Err)
	}
	return &Table{df: df}, nil
}

// Count returns how many rows of column equal label.
func (t *Table) Count(column, label string) (int, error) {
	col, err := t.Column(column)
	if err != nil {
		return 0, err
	}
	mask, err := col.Compare(series.Eq, label).Bool()
	if err != nil {
		return 0, fmt.Errorf("compare %s == %q: %w", column, label, err)
	}
	n := 0
	for _, ok := range mask {
		if ok {
			n++
		}
	}
	return n, nil
}

// Records renders the table as string records, header first. Missing values
// become empty strings and floats use the shortest exact representation.
func (t *Table) Records() [][]string {
	names := t.Names()
	out := make([][]string, 0, t.Nrow()+1)
	out = append(out, append([]string(nil), names...))
	cols := make([]series.Series, len(names))
	for j, n := range names {
		cols[j] = t.df.Col(n)
	}
	for i := 0; i < t.Nrow(); i++ {
		row := make([]string, len(cols))
		for j, c := range cols {
			row[j] = formatElement(c.Type(), c.Elem(i))
		}
		out = append(out, row)
	}
	return out
}

// WriteCSV writes Records as comma-separated values.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(t.Records()); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func formatElement(typ series.Type, e series.Element) string {
	if Missing(e) {
		return ""
	}
	switch typ {
	case series.Float:
		f := e.Float()
		if math.IsInf(f, 0) {
			if f > 0 {
				return "inf"
			}
			return "-inf"
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	case series.Int:
		if n, err := e.Int(); err == nil {
			return strconv.Itoa(n)
		}
	}
	return e.String()
}

// Missing reports whether e is the missing sentinel. Float NaN counts as
// missing whether or not gota flagged it.
func Missing(e series.Element) bool {
	if e.IsNA() {
		return true
	}
	return e.Type() == series.Float && math.IsNaN(e.Float())
}

// IsNumeric reports whether the series holds ints or floats.
func IsNumeric(s series.Series) bool {
	return s.Type() == series.Int || s.Type() == series.Float
}

// RequireNumeric fails with a *TypeError when s is not numeric and holds at
// least one non-missing value. An all-missing column of any type passes.
func RequireNumeric(s series.Series) error {
	if IsNumeric(s) {
		return nil
	}
	for i := 0; i < s.Len(); i++ {
		e := s.Elem(i)
		if Missing(e) {
			continue
		}
		return &TypeError{Column: s.Name, Row: i, Value: e.String(), Reason: fmt.Sprintf("expected numeric value, column type is %s", s.Type())}
	}
	return nil
}
