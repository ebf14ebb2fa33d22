// Package stats runs the hypothesis tests behind the normality and group
// comparison reports.
package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/tabclean/internal/table"
	mstats "github.com/aclements/go-moremath/stats"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

// DefaultAlpha is the significance level used when none is configured.
const DefaultAlpha = 0.05

// Tester runs tests against table columns at a fixed significance level.
// It never modifies the tables it reads.
type Tester struct {
	logger *zap.Logger
	alpha  float64
}

// NewTester returns a Tester. A nil logger discards output and an alpha
// outside (0, 1) falls back to DefaultAlpha.
func NewTester(logger *zap.Logger, alpha float64) *Tester {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !(alpha > 0 && alpha < 1) {
		alpha = DefaultAlpha
	}
	return &Tester{logger: logger, alpha: alpha}
}

// Alpha returns the significance level.
func (t *Tester) Alpha() float64 { return t.alpha }

// NormalityResult is the Shapiro-Wilk outcome for one column.
type NormalityResult struct {
	Column    string  `json:"column"`
	N         int     `json:"n"`
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
	Alpha     float64 `json:"alpha"`
	Normal    bool    `json:"normal"`
	Mean      float64 `json:"mean"`
	StdDev    float64 `json:"std_dev"`
}

// Normality runs Shapiro-Wilk over the non-missing values of column.
// Normal is true when the p-value exceeds alpha.
func (t *Tester) Normality(tb *table.Table, column string) (*NormalityResult, error) {
	vals, err := tb.Floats(column)
	if err != nil {
		return nil, err
	}
	x := dropMissing(vals)
	if len(x) > MaxShapiroN {
		t.logger.Warn("sample exceeds shapiro-wilk calibration range; p-value may be inaccurate",
			zap.String("column", column),
			zap.Int("n", len(x)),
			zap.Int("max", MaxShapiroN))
	}
	w, p, err := ShapiroWilk(x)
	if err != nil {
		var pe *PreconditionError
		if errors.As(err, &pe) {
			pe.Column = column
		}
		return nil, err
	}
	mean, sd := stat.MeanStdDev(x, nil)
	res := &NormalityResult{
		Column:    column,
		N:         len(x),
		Statistic: w,
		PValue:    p,
		Alpha:     t.alpha,
		Normal:    p > t.alpha,
		Mean:      mean,
		StdDev:    sd,
	}
	t.logger.Debug("shapiro-wilk",
		zap.String("column", column),
		zap.Int("n", res.N),
		zap.Float64("w", w),
		zap.Float64("p", p))
	return res, nil
}

// GroupComparison is the Mann-Whitney U outcome for one metric.
type GroupComparison struct {
	Metric        string  `json:"metric"`
	U             float64 `json:"u"`
	PValue        float64 `json:"p_value"`
	Alpha         float64 `json:"alpha"`
	NControl      int     `json:"n_control"`
	NTest         int     `json:"n_test"`
	MedianControl float64 `json:"median_control"`
	MedianTest    float64 `json:"median_test"`
	Differ        bool    `json:"differ"`
}

// CompareGroups splits tb into the rows labelled control and test in
// groupColumn and runs a two-sided Mann-Whitney U test per metric, in the
// order given. Differ is true when the p-value is below alpha.
func (t *Tester) CompareGroups(tb *table.Table, metrics []string, control, test, groupColumn string) ([]GroupComparison, error) {
	for _, g := range []struct{ role, label string }{{"control", control}, {"test", test}} {
		n, err := tb.Count(groupColumn, g.label)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, &PreconditionError{Test: "mann-whitney", Column: groupColumn, Reason: fmt.Sprintf("no rows with %s label %q", g.role, g.label)}
		}
	}
	ctl, err := tb.Filter(groupColumn, control)
	if err != nil {
		return nil, err
	}
	trt, err := tb.Filter(groupColumn, test)
	if err != nil {
		return nil, err
	}
	t.logger.Debug("split groups",
		zap.String("group_column", groupColumn),
		zap.Int("control_rows", ctl.Nrow()),
		zap.Int("test_rows", trt.Nrow()))

	out := make([]GroupComparison, 0, len(metrics))
	for _, m := range metrics {
		gc, err := t.compare(ctl, trt, m)
		if err != nil {
			return nil, err
		}
		out = append(out, *gc)
	}
	return out, nil
}

func (t *Tester) compare(ctl, trt *table.Table, metric string) (*GroupComparison, error) {
	cv, err := ctl.Floats(metric)
	if err != nil {
		return nil, err
	}
	tv, err := trt.Floats(metric)
	if err != nil {
		return nil, err
	}
	x1, x2 := dropMissing(cv), dropMissing(tv)
	if len(x1) == 0 || len(x2) == 0 {
		return nil, &PreconditionError{Test: "mann-whitney", Column: metric, N: len(x1) + len(x2), Reason: "a group has no non-missing values"}
	}
	gc := &GroupComparison{
		Metric:        metric,
		Alpha:         t.alpha,
		NControl:      len(x1),
		NTest:         len(x2),
		MedianControl: median(x1),
		MedianTest:    median(x2),
	}
	res, err := mstats.MannWhitneyUTest(x1, x2, mstats.LocationDiffers)
	switch {
	case errors.Is(err, mstats.ErrSamplesEqual):
		// every value identical: no evidence of a shift
		gc.U = float64(len(x1)*len(x2)) / 2
		gc.PValue = 1
	case errors.Is(err, mstats.ErrSampleSize):
		return nil, &PreconditionError{Test: "mann-whitney", Column: metric, N: len(x1) + len(x2), Reason: err.Error()}
	case err != nil:
		return nil, fmt.Errorf("mann-whitney on %s: %w", metric, err)
	default:
		gc.U = res.U
		gc.PValue = math.Min(1, res.P)
	}
	gc.Differ = gc.PValue < t.alpha
	t.logger.Debug("mann-whitney",
		zap.String("metric", metric),
		zap.Float64("u", gc.U),
		zap.Float64("p", gc.PValue))
	return gc, nil
}

func dropMissing(vals []float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// median uses the empirical quantile, so even-sized samples report the
// lower middle value.
func median(x []float64) float64 {
	s := append([]float64(nil), x...)
	sort.Float64s(s)
	return stat.Quantile(0.5, stat.Empirical, s, nil)
}
