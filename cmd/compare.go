package cmd

import (
	"fmt"

	"github.com/KaramelBytes/tabclean/internal/clean"
	"github.com/KaramelBytes/tabclean/internal/report"
	"github.com/KaramelBytes/tabclean/internal/stats"
	"github.com/spf13/cobra"
)

var (
	cmpMetrics     []string
	cmpGroupColumn string
	cmpControl     string
	cmpTest        string
	cmpFormat      string
)

var compareCmd = &cobra.Command{
	Use:   "compare <file>",
	Short: "Compare control and test groups per metric with Mann-Whitney U",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if len(cmpMetrics) == 0 {
			return fmt.Errorf("at least one --metric is required")
		}
		if cmpGroupColumn == "" || cmpControl == "" || cmpTest == "" {
			return fmt.Errorf("--group-column, --control and --test are required")
		}
		t, c, err := loadTable(path)
		if err != nil {
			return err
		}
		env, format, err := newEnvelope(cmd, c.Language, c.OutputFormat, cmpFormat, report.KindCompare, path)
		if err != nil {
			return err
		}
		group, err := clean.ResolveColumn(t, cmpGroupColumn)
		if err != nil {
			return err
		}
		metrics := make([]string, 0, len(cmpMetrics))
		for _, m := range cmpMetrics {
			col, err := clean.ResolveColumn(t, m)
			if err != nil {
				return err
			}
			metrics = append(metrics, col)
		}
		res, err := stats.NewTester(logger, c.Alpha).CompareGroups(t, metrics, cmpControl, cmpTest, group)
		if err != nil {
			return err
		}
		env.Comparisons = res
		return env.Write(cmd.OutOrStdout(), format)
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
	compareCmd.Flags().StringSliceVarP(&cmpMetrics, "metric", "m", nil, "numeric metric column to compare (repeatable)")
	compareCmd.Flags().StringVarP(&cmpGroupColumn, "group-column", "g", "", "column holding the group labels")
	compareCmd.Flags().StringVar(&cmpControl, "control", "", "label of the control group")
	compareCmd.Flags().StringVar(&cmpTest, "test", "", "label of the test group")
	compareCmd.Flags().StringVarP(&cmpFormat, "format", "f", "", "output format: text | markdown | json (overrides config)")
}
