package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/tabclean/internal/table"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/stat"
)

// OutlierThreshold is the robust |z| (MAD-based) above which a value counts
// as an outlier in a column profile.
const OutlierThreshold = 3.5

// Profile summarizes a table, one entry per column.
type Profile struct {
	Rows    int             `json:"rows"`
	Columns []ColumnProfile `json:"columns"`
}

// ColumnProfile captures inferred kind and statistics for one column.
type ColumnProfile struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"` // integer|numeric|categorical|empty
	NonNull int    `json:"non_null"`
	Missing int    `json:"missing"`
	Unique  int    `json:"unique"`
	// Set for integer and numeric columns only.
	Numeric *NumericSummary `json:"numeric,omitempty"`
	// Categorical top values
	TopValues []CategoryCount `json:"top_values,omitempty"`
}

// NumericSummary holds the statistics of a column's non-missing values.
type NumericSummary struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Mean     float64 `json:"mean"`
	Std      float64 `json:"std"`
	Median   float64 `json:"median"`
	Outliers int     `json:"outliers"`
}

type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ProfileTable builds a Profile listing up to top frequent values for
// categorical columns.
func ProfileTable(t *table.Table, top int) (*Profile, error) {
	p := &Profile{Rows: t.Nrow()}
	for _, name := range t.Names() {
		col, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		p.Columns = append(p.Columns, profileColumn(col, top))
	}
	return p, nil
}

func profileColumn(col series.Series, top int) ColumnProfile {
	cp := ColumnProfile{Name: col.Name}
	counts := map[string]int{}
	for i := 0; i < col.Len(); i++ {
		e := col.Elem(i)
		if table.Missing(e) {
			cp.Missing++
			continue
		}
		cp.NonNull++
		counts[e.String()]++
	}
	cp.Unique = len(counts)
	switch {
	case cp.NonNull == 0:
		cp.Kind = "empty"
		return cp
	case col.Type() == series.Int:
		cp.Kind = "integer"
	case col.Type() == series.Float:
		cp.Kind = "numeric"
	default:
		cp.Kind = "categorical"
		cp.TopValues = topValues(counts, top)
		return cp
	}

	vals := make([]float64, 0, cp.NonNull)
	for _, v := range col.Float() {
		if !math.IsNaN(v) {
			vals = append(vals, v)
		}
	}
	sort.Float64s(vals)
	ns := &NumericSummary{Min: vals[0], Max: vals[len(vals)-1]}
	ns.Mean, ns.Std = stat.MeanStdDev(vals, nil)
	if len(vals) < 2 {
		ns.Std = 0
	}
	med, mad := medianMAD(vals)
	ns.Median = med
	if mad > 0 {
		for _, v := range vals {
			// 0.6745 scales MAD to the normal standard deviation
			if math.Abs(0.6745*(v-med)/mad) > OutlierThreshold {
				ns.Outliers++
			}
		}
	}
	cp.Numeric = ns
	return cp
}

func topValues(counts map[string]int, top int) []CategoryCount {
	out := make([]CategoryCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, CategoryCount{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if top > 0 && len(out) > top {
		out = out[:top]
	}
	return out
}

// medianMAD computes median and MAD (median absolute deviation) of sorted values.
func medianMAD(sorted []float64) (median, mad float64) {
	median = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	dev := make([]float64, len(sorted))
	for i, v := range sorted {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = stat.Quantile(0.5, stat.Empirical, dev, nil)
	return
}

// Markdown renders the profile as [DATASET SUMMARY] and [SCHEMA] sections.
func (p *Profile) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	b.WriteString(fmt.Sprintf("Rows: %d\n", p.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(p.Columns)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range p.Columns {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", safeName(c.Name), c.Kind, c.NonNull, missPct))
		switch c.Kind {
		case "integer", "numeric":
			ns := c.Numeric
			b.WriteString(fmt.Sprintf(" - min %.4g, max %.4g, mean %.4g, median %.4g, std %.4g", ns.Min, ns.Max, ns.Mean, ns.Median, ns.Std))
			if ns.Outliers > 0 {
				b.WriteString(fmt.Sprintf("; outliers: %d above |z|>%.1f", ns.Outliers, OutlierThreshold))
			}
		case "categorical":
			b.WriteString(" - top: ")
			for i, kv := range c.TopValues {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
			}
			if c.Unique > len(c.TopValues) {
				b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
