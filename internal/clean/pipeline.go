package clean

import (
	"fmt"

	"github.com/KaramelBytes/tabclean/internal/table"
	"go.uber.org/zap"
)

// Plan lists the normalizers to run. Steps run in field order: Lowercase,
// Abs, Years, Months. Column names are matched case-insensitively so a plan
// written against the original header still applies after lower-casing.
type Plan struct {
	Lowercase bool
	Abs       []string
	Years     []string
	Months    []string
}

// Empty reports whether the plan has no steps.
func (p Plan) Empty() bool {
	return !p.Lowercase && len(p.Abs) == 0 && len(p.Years) == 0 && len(p.Months) == 0
}

// Summary records what Apply changed.
type Summary struct {
	Lowercased bool         `json:"lowercased"`
	Dropped    []string     `json:"dropped,omitempty"`
	Abs        []string     `json:"abs,omitempty"`
	Years      []YearResult `json:"years,omitempty"`
	Months     []string     `json:"months,omitempty"`
}

// Apply runs the plan against t. It stops at the first column-level error;
// steps already applied stay applied and are reflected in the returned
// Summary.
func (c *Cleaner) Apply(t *table.Table, p Plan) (*Summary, error) {
	sum := &Summary{}
	if p.Lowercase {
		dropped, err := LowercaseColumns(t, c.opt.Collision)
		if err != nil {
			return sum, fmt.Errorf("lowercase columns: %w", err)
		}
		for _, d := range dropped {
			c.logger.Warn("dropped colliding column", zap.String("column", d))
		}
		sum.Lowercased = true
		sum.Dropped = dropped
	}
	for _, name := range p.Abs {
		col, err := ResolveColumn(t, name)
		if err != nil {
			return sum, fmt.Errorf("abs: %w", err)
		}
		if err := AbsColumn(t, col); err != nil {
			return sum, fmt.Errorf("abs %s: %w", col, err)
		}
		sum.Abs = append(sum.Abs, col)
	}
	for _, name := range p.Years {
		col, err := ResolveColumn(t, name)
		if err != nil {
			return sum, fmt.Errorf("year: %w", err)
		}
		res, err := c.CoerceYear(t, col)
		if err != nil {
			return sum, err
		}
		sum.Years = append(sum.Years, *res)
	}
	for _, name := range p.Months {
		col, err := ResolveColumn(t, name)
		if err != nil {
			return sum, fmt.Errorf("month: %w", err)
		}
		if err := TruncateColumn(t, col); err != nil {
			return sum, err
		}
		sum.Months = append(sum.Months, col)
	}
	c.logger.Info("cleaning finished",
		zap.Int("rows", t.Nrow()),
		zap.Int("columns", t.Ncol()),
		zap.Int("year_columns", len(sum.Years)))
	return sum, nil
}
