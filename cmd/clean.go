package cmd

import (
	"bytes"
	"fmt"

	"github.com/KaramelBytes/tabclean/internal/clean"
	"github.com/KaramelBytes/tabclean/internal/report"
	"github.com/KaramelBytes/tabclean/internal/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	clnLowercase   bool
	clnAbs         []string
	clnYears       []string
	clnMonths      []string
	clnCollision   string
	clnDefaultYear int
	clnOutputPath  string
	clnSummaryJSON string
	clnReport      bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean <file>",
	Short: "Normalize column names, signs, years and months and write CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		t, c, err := loadTable(path)
		if err != nil {
			return err
		}
		opt := clean.Options{DefaultYear: c.DefaultYear}
		policy := c.CollisionPolicy
		if cmd.Flags().Changed("collision") {
			policy = clnCollision
		}
		if opt.Collision, err = clean.ParseCollisionPolicy(policy); err != nil {
			return err
		}
		if cmd.Flags().Changed("default-year") {
			opt.DefaultYear = clnDefaultYear
		}
		plan := clean.Plan{Lowercase: clnLowercase, Abs: clnAbs, Years: clnYears, Months: clnMonths}
		if plan.Empty() {
			logger.Warn("no cleaning steps requested; table is written unchanged")
		}
		sum, err := clean.NewCleaner(logger, opt).Apply(t, plan)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := t.WriteCSV(&buf); err != nil {
			return err
		}
		out := clnOutputPath
		if out == "" {
			out = utils.DerivedPath(path, ".clean.csv")
		}
		if out == "-" {
			if _, err := cmd.OutOrStdout().Write(buf.Bytes()); err != nil {
				return err
			}
		} else {
			if err := utils.SafeWriteFile(out, buf.Bytes()); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote cleaned table to %s (%d rows, %d columns)\n", out, t.Nrow(), t.Ncol())
		}
		logger.Info("clean done", zap.String("output", out), zap.Int("rows", t.Nrow()))

		if clnSummaryJSON != "" || clnReport {
			lang, _ := report.ParseLanguage(c.Language)
			env := report.New(report.KindClean, path, lang)
			env.Cleaning = sum
			if clnSummaryJSON != "" {
				b, err := env.JSON()
				if err != nil {
					return err
				}
				if err := utils.SafeWriteFile(clnSummaryJSON, b); err != nil {
					return fmt.Errorf("write summary: %w", err)
				}
			}
			if clnReport && out != "-" {
				fmt.Fprint(cmd.OutOrStdout(), env.Markdown())
			}
		}
		for _, y := range sum.Years {
			if y.Partial() {
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: column %s has %d invalid year(s)\n", y.Column, len(y.Invalid))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().BoolVar(&clnLowercase, "lowercase", false, "lower-case all column names")
	cleanCmd.Flags().StringSliceVar(&clnAbs, "abs", nil, "columns to replace with absolute values (repeatable)")
	cleanCmd.Flags().StringSliceVar(&clnYears, "year", nil, "columns to coerce to four-digit years (repeatable)")
	cleanCmd.Flags().StringSliceVar(&clnMonths, "month", nil, "columns to truncate to integer months (repeatable)")
	cleanCmd.Flags().StringVar(&clnCollision, "collision", "", "on lower-case name collisions: fail | last-wins (overrides config)")
	cleanCmd.Flags().IntVar(&clnDefaultYear, "default-year", 0, "year used for missing values (overrides config)")
	cleanCmd.Flags().StringVarP(&clnOutputPath, "output", "o", "", "output CSV path ('-' for stdout; default <file>.clean.csv)")
	cleanCmd.Flags().StringVar(&clnSummaryJSON, "summary-json", "", "optional path to write the cleaning summary as JSON")
	cleanCmd.Flags().BoolVar(&clnReport, "report", false, "print a markdown cleaning summary")
}
