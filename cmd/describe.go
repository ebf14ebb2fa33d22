package cmd

import (
	"github.com/KaramelBytes/tabclean/internal/report"
	"github.com/spf13/cobra"
)

var (
	dscTop    int
	dscFormat string
)

var describeCmd = &cobra.Command{
	Use:   "describe <file>",
	Short: "Profile a table: column kinds, missing values and basic statistics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		t, c, err := loadTable(path)
		if err != nil {
			return err
		}
		env, format, err := newEnvelope(cmd, c.Language, c.OutputFormat, dscFormat, report.KindDescribe, path)
		if err != nil {
			return err
		}
		if env.Profile, err = report.ProfileTable(t, dscTop); err != nil {
			return err
		}
		return env.Write(cmd.OutOrStdout(), format)
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().IntVar(&dscTop, "top", 5, "number of frequent values listed for categorical columns")
	describeCmd.Flags().StringVarP(&dscFormat, "format", "f", "", "output format: text | markdown | json (overrides config)")
}
