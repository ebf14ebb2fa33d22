package clean

import (
	"math"
	"testing"

	"github.com/KaramelBytes/tabclean/internal/table"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestCoerceYear(t *testing.T) {
	tb := newTable(t, series.New([]float64{2020, math.NaN(), 1999.7}, series.Float, "anio"))
	res, err := NewCleaner(nil, DefaultOptions()).CoerceYear(tb, "anio")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"anio"}, {"2020"}, {"1900"}, {"1999"}}, tb.Records())
	assert.Equal(t, []int{1}, res.Defaulted)
	assert.Empty(t, res.Invalid)
	assert.False(t, res.Partial())
	assert.Equal(t, 3, res.Valid())

	col, _ := tb.Column("anio")
	assert.Equal(t, series.Int, col.Type())
}

func TestCoerceYear_CustomDefault(t *testing.T) {
	tb := newTable(t, series.New([]float64{math.NaN()}, series.Float, "anio"))
	_, err := NewCleaner(nil, Options{DefaultYear: 2000}).CoerceYear(tb, "anio")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"anio"}, {"2000"}}, tb.Records())
}

func TestCoerceYear_InvalidRows(t *testing.T) {
	logger, logs := observed()
	tb := newTable(t, series.New([]float64{2021, 99, 12345, math.Inf(1), -2020}, series.Float, "anio"))
	res, err := NewCleaner(logger, DefaultOptions()).CoerceYear(tb, "anio")
	require.NoError(t, err)
	assert.True(t, res.Partial())
	rows := make([]int, len(res.Invalid))
	for i, re := range res.Invalid {
		rows[i] = re.Row
	}
	assert.Equal(t, []int{1, 2, 3, 4}, rows)
	assert.Equal(t, "+Inf", res.Invalid[2].Value)
	assert.Equal(t, [][]string{{"anio"}, {"2021"}, {""}, {""}, {""}, {""}}, tb.Records())
	assert.Equal(t, 4, logs.FilterMessage("invalid year").Len())
}

func TestCoerceYear_FourDigitRange(t *testing.T) {
	tb := newTable(t, series.New([]float64{1000, 1500, 1677, 2262, 2500, 9999, 999, 10000}, series.Float, "anio"))
	res, err := NewCleaner(nil, DefaultOptions()).CoerceYear(tb, "anio")
	require.NoError(t, err)
	rows := make([]int, len(res.Invalid))
	for i, re := range res.Invalid {
		rows[i] = re.Row
	}
	assert.Equal(t, []int{6, 7}, rows)
	assert.Equal(t, [][]string{
		{"anio"}, {"1000"}, {"1500"}, {"1677"}, {"2262"}, {"2500"}, {"9999"}, {""}, {""},
	}, tb.Records())
}

func TestCoerceYear_ColumnErrorsLeaveTableUnchanged(t *testing.T) {
	logger, logs := observed()
	tb := newTable(t,
		series.New([]string{"dos mil", "1999"}, series.String, "anio"),
		series.New([]float64{1, 2}, series.Float, "x"),
	)
	before := tb.Records()
	c := NewCleaner(logger, DefaultOptions())

	_, err := c.CoerceYear(tb, "anio")
	require.ErrorIs(t, err, table.ErrType)
	assert.Contains(t, err.Error(), "error converting column anio to date")

	_, err = c.CoerceYear(tb, "missing")
	require.ErrorIs(t, err, table.ErrColumnNotFound)

	assert.Equal(t, before, tb.Records())
	assert.Equal(t, 2, logs.FilterMessage("error converting column to date").Len())
}

func TestApply(t *testing.T) {
	tb := newTable(t,
		series.New([]float64{2020, math.NaN(), 1999.7}, series.Float, "Año"),
		series.New([]float64{-5.5, 10, -3}, series.Float, "Ventas"),
		series.New([]float64{3.7, 12, 1}, series.Float, "Mes"),
	)
	plan := Plan{Lowercase: true, Abs: []string{"Ventas"}, Years: []string{"AÑO"}, Months: []string{"mes"}}
	sum, err := NewCleaner(nil, DefaultOptions()).Apply(tb, plan)
	require.NoError(t, err)
	assert.True(t, sum.Lowercased)
	assert.Equal(t, []string{"ventas"}, sum.Abs)
	assert.Equal(t, []string{"mes"}, sum.Months)
	require.Len(t, sum.Years, 1)
	assert.Equal(t, "año", sum.Years[0].Column)
	assert.Equal(t, [][]string{
		{"año", "ventas", "mes"},
		{"2020", "5.5", "3"},
		{"1900", "10", "12"},
		{"1999", "3", "1"},
	}, tb.Records())
}

func TestApply_StopsAtFirstError(t *testing.T) {
	tb := newTable(t, series.New([]float64{-1}, series.Float, "x"))
	sum, err := NewCleaner(nil, DefaultOptions()).Apply(tb, Plan{Abs: []string{"x", "y"}})
	require.ErrorIs(t, err, table.ErrColumnNotFound)
	assert.Equal(t, []string{"x"}, sum.Abs)
	assert.Equal(t, [][]string{{"x"}, {"1"}}, tb.Records())
}

func TestPlanEmpty(t *testing.T) {
	assert.True(t, Plan{}.Empty())
	assert.False(t, Plan{Months: []string{"m"}}.Empty())
}
