// Package report turns test results into the console verdict lines and the
// JSON or markdown envelopes written by the CLI.
package report

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/tabclean/internal/stats"
)

// Language selects the wording of verdict lines.
type Language string

const (
	Spanish Language = "es"
	English Language = "en"
)

// DefaultLanguage keeps the historical Spanish console output.
const DefaultLanguage = Spanish

// ParseLanguage accepts "es"/"en" in any case and common long forms. An
// empty string yields DefaultLanguage.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultLanguage, nil
	case "es", "spa", "spanish", "español", "espanol":
		return Spanish, nil
	case "en", "eng", "english":
		return English, nil
	default:
		return "", fmt.Errorf("unsupported language %q (use es or en)", s)
	}
}

// NormalityLine renders the verdict for one normality result.
func NormalityLine(lang Language, r stats.NormalityResult) string {
	if lang == English {
		if r.Normal {
			return fmt.Sprintf("For column %s the data follow a normal distribution.", r.Column)
		}
		return fmt.Sprintf("For column %s the data do not follow a normal distribution.", r.Column)
	}
	if r.Normal {
		return fmt.Sprintf("Para la columna %s los datos siguen una distribución normal.", r.Column)
	}
	return fmt.Sprintf("Para la columna %s los datos no siguen una distribución normal.", r.Column)
}

// ComparisonLine renders the verdict for one group comparison.
func ComparisonLine(lang Language, c stats.GroupComparison) string {
	if lang == English {
		if c.Differ {
			return fmt.Sprintf("For metric %s, the medians are different.", c.Metric)
		}
		return fmt.Sprintf("For metric %s, the medians are equal.", c.Metric)
	}
	if c.Differ {
		return fmt.Sprintf("Para la métrica %s, las medianas son diferentes.", c.Metric)
	}
	return fmt.Sprintf("Para la métrica %s, las medianas son iguales.", c.Metric)
}
