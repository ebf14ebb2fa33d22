package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/tabclean/internal/config"
	"github.com/KaramelBytes/tabclean/internal/logging"
	"github.com/KaramelBytes/tabclean/internal/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Overrides for config values
	flagAlpha      float64
	flagLang       string
	flagDelimiter  string
	flagDecimal    string
	flagThousands  string
	flagSheetName  string
	flagSheetIndex int

	// Loaded configuration and logger
	cfg    *cfgpkg.Global
	cfgErr error
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "tabclean",
	Short: "tabclean: clean tabular data and run normality and group tests",
	Long: `tabclean normalizes CSV/TSV/XLSX tables (column names, signs, years, months)
and reports Shapiro-Wilk normality and Mann-Whitney U group comparisons.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	f := rootCmd.PersistentFlags()
	f.StringVar(&cfgFile, "config", "", "config file (default is ~/.tabclean/config.yaml)")
	f.BoolVar(&debug, "debug", false, "enable debug logging")
	f.Float64Var(&flagAlpha, "alpha", 0, "significance level for tests (overrides config)")
	f.StringVar(&flagLang, "lang", "", "verdict language: es | en (overrides config)")
	f.StringVar(&flagDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (auto-detect if omitted)")
	f.StringVar(&flagDecimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	f.StringVar(&flagThousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted)")
	f.StringVar(&flagSheetName, "sheet-name", "", "XLSX: sheet name to read")
	f.IntVar(&flagSheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal here: `config set` can still repair a broken file
		fmt.Fprintf(rootCmd.ErrOrStderr(), "⚠ Warning: failed to load config: %v\n", err)
		cfg, cfgErr = nil, err
		return
	}
	cfg, cfgErr = c, nil

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("alpha") {
		cfg.Alpha = flagAlpha
	}
	if f.Changed("lang") {
		cfg.Language = flagLang
	}
	if f.Changed("delimiter") {
		cfg.Delimiter = flagDelimiter
	}
	if f.Changed("decimal") {
		cfg.DecimalSeparator = flagDecimal
	}
	if f.Changed("thousands") {
		cfg.ThousandsSeparator = flagThousands
	}

	l, err := logging.New(rootCmd.ErrOrStderr(), cfg.LogLevel, debug)
	if err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "⚠ Warning: %v\n", err)
		return
	}
	logger = l
}

// settings returns the validated effective configuration.
func settings() (*cfgpkg.Global, error) {
	if cfg == nil {
		if cfgErr != nil {
			return nil, cfgErr
		}
		return nil, fmt.Errorf("configuration not loaded")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadOptions maps the configured locale and sheet flags to table options.
func loadOptions(c *cfgpkg.Global) (table.LoadOptions, error) {
	opt := table.DefaultLoadOptions()
	var err error
	if opt.Delimiter, err = table.ParseDelimiter(c.Delimiter); err != nil {
		return opt, err
	}
	if opt.DecimalSeparator, err = table.ParseDecimalSeparator(c.DecimalSeparator); err != nil {
		return opt, err
	}
	if opt.ThousandsSeparator, err = table.ParseThousandsSeparator(c.ThousandsSeparator); err != nil {
		return opt, err
	}
	opt.SheetName = flagSheetName
	if flagSheetIndex > 0 {
		opt.SheetIndex = flagSheetIndex
	}
	return opt, nil
}

// loadTable reads path using the effective configuration.
func loadTable(path string) (*table.Table, *cfgpkg.Global, error) {
	c, err := settings()
	if err != nil {
		return nil, nil, err
	}
	opt, err := loadOptions(c)
	if err != nil {
		return nil, nil, err
	}
	t, err := table.Load(path, opt)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("loaded table",
		zap.String("path", path),
		zap.Int("rows", t.Nrow()),
		zap.Int("columns", t.Ncol()))
	return t, c, nil
}
