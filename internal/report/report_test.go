package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/KaramelBytes/tabclean/internal/clean"
	"github.com/KaramelBytes/tabclean/internal/stats"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalityLine(t *testing.T) {
	r := stats.NormalityResult{Column: "altura", Normal: true}
	assert.Equal(t, "Para la columna altura los datos siguen una distribución normal.", NormalityLine(Spanish, r))
	assert.Equal(t, "For column altura the data follow a normal distribution.", NormalityLine(English, r))
	r.Normal = false
	assert.Equal(t, "Para la columna altura los datos no siguen una distribución normal.", NormalityLine(Spanish, r))
	assert.Equal(t, "For column altura the data do not follow a normal distribution.", NormalityLine(English, r))
}

func TestComparisonLine(t *testing.T) {
	c := stats.GroupComparison{Metric: "ventas", Differ: true}
	assert.Equal(t, "Para la métrica ventas, las medianas son diferentes.", ComparisonLine(Spanish, c))
	assert.Equal(t, "For metric ventas, the medians are different.", ComparisonLine(English, c))
	c.Differ = false
	assert.Equal(t, "Para la métrica ventas, las medianas son iguales.", ComparisonLine(Spanish, c))
	assert.Equal(t, "For metric ventas, the medians are equal.", ComparisonLine(English, c))
}

func TestParseLanguage(t *testing.T) {
	for in, want := range map[string]Language{"": Spanish, "ES": Spanish, "english": English, " en ": English} {
		got, err := ParseLanguage(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLanguage("fr")
	require.Error(t, err)
}

func TestEnvelope_Render(t *testing.T) {
	env := New(KindNormality, "data.csv", "")
	require.NotEqual(t, uuid.Nil, env.ID)
	env.Normality = []stats.NormalityResult{
		{Column: "a", N: 10, Statistic: 0.98, PValue: 0.7, Alpha: 0.05, Normal: true},
		{Column: "b", N: 10, Statistic: 0.71, PValue: 0.001, Alpha: 0.05, Normal: false},
	}
	env.Comparisons = []stats.GroupComparison{{Metric: "m", PValue: 0.01, Alpha: 0.05, Differ: true}}
	env.Cleaning = &clean.Summary{Lowercased: true, Abs: []string{"x"}}

	var text bytes.Buffer
	require.NoError(t, env.Write(&text, FormatText))
	assert.Equal(t, []string{
		"Para la columna a los datos siguen una distribución normal.",
		"Para la columna b los datos no siguen una distribución normal.",
		"Para la métrica m, las medianas son diferentes.",
	}, strings.Split(strings.TrimSpace(text.String()), "\n"))

	md := env.Markdown()
	for _, want := range []string{"[NORMALITY]", "[MANN-WHITNEY U]", "[CLEANING]", "File: data.csv", "absolute values: x"} {
		assert.Contains(t, md, want)
	}

	var js bytes.Buffer
	require.NoError(t, env.Write(&js, FormatJSON))
	var back Envelope
	require.NoError(t, json.Unmarshal(js.Bytes(), &back))
	assert.Equal(t, env.ID, back.ID)
	assert.Equal(t, KindNormality, back.Kind)
	assert.Len(t, back.Normality, 2)
	assert.True(t, back.Cleaning.Lowercased)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("md")
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, f)
	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)
	_, err = ParseFormat("xml")
	require.Error(t, err)
}
