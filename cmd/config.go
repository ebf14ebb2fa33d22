package cmd

import (
	"fmt"
	"strconv"

	"github.com/KaramelBytes/tabclean/internal/clean"
	cfgpkg "github.com/KaramelBytes/tabclean/internal/config"
	"github.com/KaramelBytes/tabclean/internal/report"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set tabclean configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "alpha: %g\n", cfg.Alpha)
		fmt.Fprintf(out, "default_year: %d\n", cfg.DefaultYear)
		fmt.Fprintf(out, "collision_policy: %s\n", cfg.CollisionPolicy)
		fmt.Fprintf(out, "language: %s\n", cfg.Language)
		fmt.Fprintf(out, "output_format: %s\n", cfg.OutputFormat)
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		if cfg.Delimiter != "" {
			fmt.Fprintf(out, "delimiter: %q\n", cfg.Delimiter)
		}
		if cfg.DecimalSeparator != "" {
			fmt.Fprintf(out, "decimal_separator: %q\n", cfg.DecimalSeparator)
		}
		if cfg.ThousandsSeparator != "" {
			fmt.Fprintf(out, "thousands_separator: %q\n", cfg.ThousandsSeparator)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		// reload from disk so flag overrides are not persisted
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return err
		}
		switch key {
		case "alpha":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f <= 0 || f >= 1 {
				return fmt.Errorf("invalid float for alpha: %v (must be in (0, 1))", val)
			}
			c.Alpha = f
		case "default_year":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for default_year: %w", err)
			}
			c.DefaultYear = i
		case "collision_policy":
			p, err := clean.ParseCollisionPolicy(val)
			if err != nil {
				return err
			}
			c.CollisionPolicy = string(p)
		case "language":
			l, err := report.ParseLanguage(val)
			if err != nil {
				return err
			}
			c.Language = string(l)
		case "output_format":
			f, err := report.ParseFormat(val)
			if err != nil {
				return err
			}
			c.OutputFormat = string(f)
		case "log_level":
			c.LogLevel = val
		case "delimiter":
			c.Delimiter = val
		case "decimal_separator":
			c.DecimalSeparator = val
		case "thousands_separator":
			c.ThousandsSeparator = val
		default:
			return fmt.Errorf("unknown key: %s (known: %v)", key, cfgpkg.Keys)
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		cfg = c
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
