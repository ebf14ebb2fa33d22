package cmd

import (
	"fmt"

	"github.com/KaramelBytes/tabclean/internal/clean"
	"github.com/KaramelBytes/tabclean/internal/report"
	"github.com/KaramelBytes/tabclean/internal/stats"
	"github.com/spf13/cobra"
)

var (
	norColumns []string
	norFormat  string
)

var normalityCmd = &cobra.Command{
	Use:   "normality <file>",
	Short: "Run Shapiro-Wilk on numeric columns and report whether they look normal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if len(norColumns) == 0 {
			return fmt.Errorf("at least one --column is required")
		}
		t, c, err := loadTable(path)
		if err != nil {
			return err
		}
		env, format, err := newEnvelope(cmd, c.Language, c.OutputFormat, norFormat, report.KindNormality, path)
		if err != nil {
			return err
		}
		tester := stats.NewTester(logger, c.Alpha)
		for _, name := range norColumns {
			col, err := clean.ResolveColumn(t, name)
			if err != nil {
				return err
			}
			res, err := tester.Normality(t, col)
			if err != nil {
				return err
			}
			env.Normality = append(env.Normality, *res)
		}
		return env.Write(cmd.OutOrStdout(), format)
	},
}

// newEnvelope resolves language and output format, with the command's
// --format flag taking precedence over config.
func newEnvelope(cmd *cobra.Command, language, cfgFormat, flagFormat string, kind report.Kind, source string) (*report.Envelope, report.Format, error) {
	lang, err := report.ParseLanguage(language)
	if err != nil {
		return nil, "", err
	}
	f := cfgFormat
	if cmd.Flags().Changed("format") {
		f = flagFormat
	}
	format, err := report.ParseFormat(f)
	if err != nil {
		return nil, "", err
	}
	return report.New(kind, source, lang), format, nil
}

func init() {
	rootCmd.AddCommand(normalityCmd)
	normalityCmd.Flags().StringSliceVarP(&norColumns, "column", "c", nil, "numeric column to test (repeatable)")
	normalityCmd.Flags().StringVarP(&norFormat, "format", "f", "", "output format: text | markdown | json (overrides config)")
}
