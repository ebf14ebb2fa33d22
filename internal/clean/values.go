package clean

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/KaramelBytes/tabclean/internal/table"
	"github.com/go-gota/gota/series"
)

// AbsColumn replaces every non-missing value of a numeric column with its
// absolute value. Int columns stay Int and Float columns stay Float.
func AbsColumn(t *table.Table, column string) error {
	col, err := t.Column(column)
	if err != nil {
		return err
	}
	if err := table.RequireNumeric(col); err != nil {
		return err
	}
	typ := col.Type()
	if !table.IsNumeric(col) {
		// all-missing text column: nothing to transform
		return nil
	}
	vals := col.Float()
	for i, v := range vals {
		if !math.IsNaN(v) {
			vals[i] = math.Abs(v)
		}
	}
	return t.Replace(series.New(vals, typ, column))
}

// FloatToInt truncates x toward zero. ok is false when x is the missing
// sentinel (NaN). Infinite or out-of-range values are a *table.TypeError.
func FloatToInt(x float64) (n int, ok bool, err error) {
	if math.IsNaN(x) {
		return 0, false, nil
	}
	if math.IsInf(x, 0) || x >= math.MaxInt || x < math.MinInt {
		return 0, false, &table.TypeError{Row: -1, Value: strconv.FormatFloat(x, 'g', -1, 64), Reason: "cannot convert to integer"}
	}
	return int(x), true, nil
}

// TruncateValues applies FloatToInt to each element and returns a new slice
// holding the truncated integers, with NaN kept for missing entries.
func TruncateValues(vals []float64) ([]float64, error) {
	out := make([]float64, len(vals))
	for i, v := range vals {
		n, ok, err := FloatToInt(v)
		if err != nil {
			var te *table.TypeError
			if errors.As(err, &te) {
				te.Row = i
			}
			return nil, err
		}
		if !ok {
			out[i] = math.NaN()
			continue
		}
		out[i] = float64(n)
	}
	return out, nil
}

// TruncateSeries converts month-like numbers to an Int series of the same
// name, length and order. The input is not modified.
func TruncateSeries(s series.Series) (series.Series, error) {
	if err := table.RequireNumeric(s); err != nil {
		return series.Series{}, err
	}
	vals, err := TruncateValues(s.Float())
	if err != nil {
		var te *table.TypeError
		if errors.As(err, &te) {
			te.Column = s.Name
		}
		return series.Series{}, err
	}
	return series.New(vals, series.Int, s.Name), nil
}

// TruncateColumn replaces a table column with its TruncateSeries form.
func TruncateColumn(t *table.Table, column string) error {
	col, err := t.Column(column)
	if err != nil {
		return err
	}
	out, err := TruncateSeries(col)
	if err != nil {
		return fmt.Errorf("truncate %s: %w", column, err)
	}
	return t.Replace(out)
}
