// Package clean holds the in-place normalizers applied to a table before
// analysis: column-name lower-casing, sign normalization, year coercion and
// month truncation.
package clean

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/KaramelBytes/tabclean/internal/table"
	"github.com/go-gota/gota/series"
	"go.uber.org/zap"
)

// DefaultYear replaces missing years before coercion.
const DefaultYear = 1900

// yearLayout is the year-only layout rows must parse against.
const yearLayout = "2006"

// Options configures a Cleaner.
type Options struct {
	DefaultYear int
	Collision   CollisionPolicy
}

// DefaultOptions returns the 1900 default year and the fail-fast collision
// policy.
func DefaultOptions() Options {
	return Options{DefaultYear: DefaultYear, Collision: CollisionFail}
}

// Cleaner applies normalizers and logs recoverable problems.
type Cleaner struct {
	logger *zap.Logger
	opt    Options
}

// NewCleaner returns a Cleaner. A nil logger discards output.
func NewCleaner(logger *zap.Logger, opt Options) *Cleaner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opt.Collision == "" {
		opt.Collision = CollisionFail
	}
	return &Cleaner{logger: logger, opt: opt}
}

// Options returns the effective options.
func (c *Cleaner) Options() Options { return c.opt }

// RowError is a row that could not become a valid year.
type RowError struct {
	Row    int    `json:"row"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

// YearResult describes the outcome of a year coercion.
type YearResult struct {
	Column    string     `json:"column"`
	Rows      int        `json:"rows"`
	Defaulted []int      `json:"defaulted,omitempty"` // rows whose missing value took the default year
	Invalid   []RowError `json:"invalid,omitempty"`   // rows left missing because no valid year could be formed
}

// Partial reports whether any row ended up invalid.
func (r *YearResult) Partial() bool { return len(r.Invalid) > 0 }

// Valid returns the number of rows holding a year.
func (r *YearResult) Valid() int { return r.Rows - len(r.Invalid) }

// CoerceYear turns a numeric year column into integer years. Missing values
// take the default year first; every value is then truncated and parsed with
// a four-digit year layout, and rows that fail become missing and are listed
// in YearResult.Invalid. Column-level failures (missing or text column) are
// logged, returned, and leave the table unchanged.
func (c *Cleaner) CoerceYear(t *table.Table, column string) (*YearResult, error) {
	res, err := c.coerceYear(t, column)
	if err != nil {
		c.logger.Error("error converting column to date",
			zap.String("column", column),
			zap.Error(err))
		return nil, fmt.Errorf("error converting column %s to date: %w", column, err)
	}
	for _, re := range res.Invalid {
		c.logger.Warn("invalid year",
			zap.String("column", column),
			zap.Int("row", re.Row),
			zap.String("value", re.Value),
			zap.String("reason", re.Reason))
	}
	c.logger.Debug("coerced year column",
		zap.String("column", column),
		zap.Int("rows", res.Rows),
		zap.Int("defaulted", len(res.Defaulted)),
		zap.Int("invalid", len(res.Invalid)))
	return res, nil
}

func (c *Cleaner) coerceYear(t *table.Table, column string) (*YearResult, error) {
	col, err := t.Column(column)
	if err != nil {
		return nil, err
	}
	if err := table.RequireNumeric(col); err != nil {
		return nil, err
	}
	vals := col.Float()
	res := &YearResult{Column: column, Rows: len(vals)}
	years := make([]float64, len(vals))
	for i, v := range vals {
		n, ok, ferr := FloatToInt(v)
		if ferr != nil {
			res.Invalid = append(res.Invalid, RowError{Row: i, Value: formatValue(v), Reason: "not a finite number"})
			years[i] = math.NaN()
			continue
		}
		if !ok {
			n = c.opt.DefaultYear
		}
		y, perr := parseYear(n)
		if perr != nil {
			res.Invalid = append(res.Invalid, RowError{Row: i, Value: formatValue(v), Reason: perr.Error()})
			years[i] = math.NaN()
			continue
		}
		if !ok {
			res.Defaulted = append(res.Defaulted, i)
		}
		years[i] = float64(y)
	}
	if err := t.Replace(series.New(years, series.Int, column)); err != nil {
		return nil, err
	}
	return res, nil
}

// parseYear parses n with the year-only layout and returns the resulting
// date's year. Every four-digit year parses, including ones outside the
// nanosecond timestamp range (1677..2262).
func parseYear(n int) (int, error) {
	ts, err := time.Parse(yearLayout, strconv.Itoa(n))
	if err != nil {
		return 0, fmt.Errorf("year %d does not match layout %q", n, yearLayout)
	}
	return ts.Year(), nil
}

func formatValue(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
