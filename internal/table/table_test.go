package table

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/go-gota/gota/series"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(t *testing.T) *Table {
	t.Helper()
	tb, err := New(
		series.New([]string{"A", "B", "A"}, series.String, "grupo"),
		series.New([]float64{1.5, math.NaN(), -2}, series.Float, "ventas"),
		series.New([]int{2020, 2021, 2022}, series.Int, "anio"),
	)
	require.NoError(t, err)
	return tb
}

func TestNew(t *testing.T) {
	tb := sample(t)
	assert.Equal(t, []string{"grupo", "ventas", "anio"}, tb.Names())
	assert.Equal(t, 3, tb.Nrow())
	assert.Equal(t, 3, tb.Ncol())

	_, err := New(series.New([]int{1}, series.Int, "x"), series.New([]int{2}, series.Int, "x"))
	require.Error(t, err)

	empty, err := New()
	require.NoError(t, err)
	assert.Nil(t, empty.Names())
	assert.Equal(t, 0, empty.Nrow())
}

func TestColumnNotFound(t *testing.T) {
	tb := sample(t)
	_, err := tb.Column("precio")
	require.ErrorIs(t, err, ErrColumnNotFound)
	var cnf *ColumnNotFoundError
	require.True(t, errors.As(err, &cnf))
	assert.Equal(t, "precio", cnf.Column)
	assert.Equal(t, tb.Names(), cnf.Available)
	assert.Contains(t, err.Error(), "available: grupo, ventas, anio")
}

func TestFloats(t *testing.T) {
	tb := sample(t)
	got, err := tb.Floats("ventas")
	require.NoError(t, err)
	if diff := cmp.Diff([]float64{1.5, math.NaN(), -2}, got, cmpopts.EquateNaNs()); diff != "" {
		t.Fatalf("floats mismatch (-want +got):\n%s", diff)
	}

	_, err = tb.Floats("grupo")
	require.ErrorIs(t, err, ErrType)
	var te *TypeError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "grupo", te.Column)
	assert.Equal(t, 0, te.Row)
	assert.Equal(t, "A", te.Value)
}

func TestRequireNumeric_AllMissingText(t *testing.T) {
	s := series.New([]string{"NaN", "NaN"}, series.String, "vacia")
	require.NoError(t, RequireNumeric(s))
}

func TestReplace(t *testing.T) {
	tb := sample(t)
	require.NoError(t, tb.Replace(series.New([]int{1, 2, 3}, series.Int, "ventas")))
	col, err := tb.Column("ventas")
	require.NoError(t, err)
	assert.Equal(t, series.Int, col.Type())
	assert.Equal(t, []string{"grupo", "ventas", "anio"}, tb.Names(), "position is kept")

	err = tb.Replace(series.New([]int{1}, series.Int, "ventas"))
	require.Error(t, err)
	err = tb.Replace(series.New([]int{1, 2, 3}, series.Int, "nueva"))
	require.ErrorIs(t, err, ErrColumnNotFound)
}

func TestRenameAndDrop(t *testing.T) {
	tb := sample(t)
	require.NoError(t, tb.Rename([]string{"g", "v", "a"}))
	assert.Equal(t, []string{"g", "v", "a"}, tb.Names())

	require.Error(t, tb.Rename([]string{"x", "x", "y"}))
	assert.Equal(t, []string{"g", "v", "a"}, tb.Names(), "failed rename leaves names untouched")

	require.NoError(t, tb.Drop("v"))
	assert.Equal(t, []string{"g", "a"}, tb.Names())
	require.ErrorIs(t, tb.Drop("zzz"), ErrColumnNotFound)
	require.NoError(t, tb.Drop("g", "a"))
	assert.Equal(t, 0, tb.Ncol())
}

func TestFilterAndCount(t *testing.T) {
	tb := sample(t)
	n, err := tb.Count("grupo", "A")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	a, err := tb.Filter("grupo", "A")
	require.NoError(t, err)
	assert.Equal(t, 2, a.Nrow())
	vals, err := a.Floats("ventas")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, -2}, vals)

	n, err = tb.Count("anio", "2021")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = tb.Filter("nope", "A")
	require.ErrorIs(t, err, ErrColumnNotFound)
	assert.Equal(t, 3, tb.Nrow(), "filter does not mutate")
}

func TestRecordsAndWriteCSV(t *testing.T) {
	tb, err := New(
		series.New([]float64{1.25, math.NaN(), math.Inf(1)}, series.Float, "f"),
		series.New([]float64{1, math.NaN(), 3}, series.Int, "i"),
		series.New([]string{"a,b", "c", "NaN"}, series.String, "s"),
	)
	require.NoError(t, err)
	want := [][]string{
		{"f", "i", "s"},
		{"1.25", "1", "a,b"},
		{"", "", "c"},
		{"inf", "3", ""},
	}
	assert.Equal(t, want, tb.Records())

	var buf bytes.Buffer
	require.NoError(t, tb.WriteCSV(&buf))
	assert.Equal(t, "f,i,s\n1.25,1,\"a,b\"\n,,c\ninf,3,\n", buf.String())
}
