package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/KaramelBytes/tabclean/internal/table"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag to its default so state does not leak
// between invocations of the shared rootCmd.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		if sv, ok := fl.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = fl.Value.Set(fl.DefValue)
		}
		fl.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd executes the root command with args and returns its stdout.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := runCmdStreams(t, args...)
	return out, err
}

// runCmdStreams returns stdout and stderr separately; log lines land on stderr.
func runCmdStreams(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCmd(t, args...)
	require.NoError(t, err, "command %v failed", args)
	return out
}

func withHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestCLI_Clean(t *testing.T) {
	home := withHome(t)
	in := writeFile(t, home, "ventas.csv", "Año,Ventas,Mes,Grupo\n2020,-5.5,3.7,A\n,10,12,B\n1999.7,-3,1,A\n")
	out := filepath.Join(home, "out", "ventas.csv")
	sum := filepath.Join(home, "summary.json")

	stdout := mustRun(t, "clean", in, "--lowercase", "--abs", "ventas", "--year", "año", "--month", "mes", "-o", out, "--summary-json", sum)
	assert.Contains(t, stdout, "Wrote cleaned table")

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "año,ventas,mes,grupo\n2020,5.5,3,A\n1900,10,12,B\n1999,3,1,A\n", string(b))

	js, err := os.ReadFile(sum)
	require.NoError(t, err)
	var env struct {
		Kind     string `json:"kind"`
		Cleaning struct {
			Lowercased bool `json:"lowercased"`
			Years      []struct {
				Column    string `json:"column"`
				Defaulted []int  `json:"defaulted"`
			} `json:"years"`
		} `json:"cleaning"`
	}
	require.NoError(t, json.Unmarshal(js, &env))
	assert.Equal(t, "clean", env.Kind)
	assert.True(t, env.Cleaning.Lowercased)
	require.Len(t, env.Cleaning.Years, 1)
	assert.Equal(t, []int{1}, env.Cleaning.Years[0].Defaulted)
}

func TestCLI_Clean_LogsToCommandStderr(t *testing.T) {
	home := withHome(t)
	in := writeFile(t, home, "datos.csv", "a,b\n1,2\n")
	stdout, stderr, err := runCmdStreams(t, "clean", in, "-o", "-")
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", stdout)
	assert.Contains(t, stderr, "WARN")
	assert.Contains(t, stderr, "no cleaning steps requested")
	assert.NotContains(t, stdout, "no cleaning steps requested")
}

func TestCLI_Clean_CollisionFails(t *testing.T) {
	home := withHome(t)
	in := writeFile(t, home, "dup.csv", "Name,name\n1,2\n")
	_, err := runCmd(t, "clean", in, "--lowercase", "-o", "-")
	require.Error(t, err)

	stdout := mustRun(t, "clean", in, "--lowercase", "--collision", "last-wins", "-o", "-")
	assert.Equal(t, "name\n2\n", stdout)
}

func TestCLI_Clean_SemicolonCommaDecimal(t *testing.T) {
	home := withHome(t)
	in := writeFile(t, home, "eu.csv", "Valor;Mes\n-1.234,5;2,9\n7,25;11\n")
	stdout := mustRun(t, "clean", in, "--abs", "valor", "--month", "mes", "--decimal", "comma", "--thousands", ".", "-o", "-")
	assert.Equal(t, "Valor,Mes\n1234.5,2\n7.25,11\n", stdout)
}

func normalityCSV(t *testing.T, dir string) string {
	t.Helper()
	weights := []string{"148", "154", "158", "160", "161", "162", "166", "170", "182", "195", "236"}
	var sb strings.Builder
	sb.WriteString("peso,n\n")
	for i := 1; i <= 20; i++ {
		w := ""
		if i <= len(weights) {
			w = weights[i-1]
		}
		sb.WriteString(w + "," + strconv.Itoa(i) + "\n")
	}
	return writeFile(t, dir, "peso.csv", sb.String())
}

func TestCLI_Normality(t *testing.T) {
	home := withHome(t)
	in := normalityCSV(t, home)

	stdout := mustRun(t, "normality", in, "--column", "peso", "--column", "n")
	assert.Equal(t,
		"Para la columna peso los datos no siguen una distribución normal.\n"+
			"Para la columna n los datos siguen una distribución normal.\n",
		stdout)

	stdout = mustRun(t, "normality", in, "-c", "peso", "--lang", "en")
	assert.Equal(t, "For column peso the data do not follow a normal distribution.\n", stdout)

	stdout = mustRun(t, "normality", in, "-c", "PESO", "--format", "json")
	var env struct {
		Normality []struct {
			Column string  `json:"column"`
			N      int     `json:"n"`
			PValue float64 `json:"p_value"`
		} `json:"normality"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &env))
	require.Len(t, env.Normality, 1)
	assert.Equal(t, "peso", env.Normality[0].Column)
	assert.Equal(t, 11, env.Normality[0].N)
	assert.InDelta(t, 0.0067, env.Normality[0].PValue, 1e-3)
}

func TestCLI_Normality_TextColumnFails(t *testing.T) {
	home := withHome(t)
	in := writeFile(t, home, "t.csv", "nombre,x\nana,1\nluis,2\neva,3\n")
	_, err := runCmd(t, "normality", in, "-c", "nombre")
	require.ErrorIs(t, err, table.ErrType)
}

func TestCLI_Compare(t *testing.T) {
	home := withHome(t)
	var sb strings.Builder
	sb.WriteString("grupo,ventas,visitas\n")
	for i := 0; i < 5; i++ {
		sb.WriteString("A," + strconv.Itoa(1+i) + "," + strconv.Itoa(10+i) + "\n")
		sb.WriteString("B," + strconv.Itoa(90+i) + "," + strconv.Itoa(10+i) + "\n")
	}
	in := writeFile(t, home, "ab.csv", sb.String())

	stdout := mustRun(t, "compare", in, "--metric", "ventas", "--metric", "visitas", "--group-column", "grupo", "--control", "A", "--test", "B")
	assert.Equal(t,
		"Para la métrica ventas, las medianas son diferentes.\n"+
			"Para la métrica visitas, las medianas son iguales.\n",
		stdout)

	stdout = mustRun(t, "compare", in, "-m", "ventas", "-g", "grupo", "--control", "A", "--test", "B", "--format", "markdown")
	assert.Contains(t, stdout, "[MANN-WHITNEY U]")

	_, err := runCmd(t, "compare", in, "-m", "ventas", "-g", "grupo", "--control", "A", "--test", "Z")
	require.Error(t, err)
}

func TestCLI_Describe(t *testing.T) {
	home := withHome(t)
	in := writeFile(t, home, "d.csv", "grupo,ventas\nA,1\nB,2\nA,\n")
	stdout := mustRun(t, "describe", in)
	assert.Contains(t, stdout, "[SCHEMA]")
	assert.Contains(t, stdout, "- ventas: integer (non-null 2, missing 33.3%)")
}

func TestCLI_ConfigSetShow(t *testing.T) {
	home := withHome(t)
	mustRun(t, "config", "set", "language", "en")
	mustRun(t, "config", "set", "alpha", "0.01")
	_, err := os.Stat(filepath.Join(home, ".tabclean", "config.yaml"))
	require.NoError(t, err)

	stdout := mustRun(t, "config", "show")
	assert.Contains(t, stdout, "language: en")
	assert.Contains(t, stdout, "alpha: 0.01")

	_, err = runCmd(t, "config", "set", "alpha", "2")
	require.Error(t, err)
	_, err = runCmd(t, "config", "set", "nope", "1")
	require.Error(t, err)

	in := normalityCSV(t, home)
	stdout = mustRun(t, "normality", in, "-c", "peso")
	assert.True(t, strings.HasPrefix(stdout, "For column peso"))
}
