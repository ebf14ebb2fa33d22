package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/KaramelBytes/tabclean/internal/clean"
	"github.com/KaramelBytes/tabclean/internal/stats"
	"github.com/KaramelBytes/tabclean/internal/utils"
	"github.com/google/uuid"
)

// Kind names the command that produced an envelope.
type Kind string

const (
	KindNormality Kind = "normality"
	KindCompare   Kind = "compare"
	KindClean     Kind = "clean"
	KindDescribe  Kind = "describe"
)

// Format selects how an envelope is rendered.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat accepts text, markdown (or md) and json. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported format %q (use text, markdown or json)", s)
	}
}

// Envelope wraps the results of one run.
type Envelope struct {
	ID          uuid.UUID               `json:"id"`
	Kind        Kind                    `json:"kind"`
	Source      string                  `json:"source,omitempty"`
	Language    Language                `json:"language"`
	CreatedAt   time.Time               `json:"created_at"`
	Normality   []stats.NormalityResult `json:"normality,omitempty"`
	Comparisons []stats.GroupComparison `json:"comparisons,omitempty"`
	Cleaning    *clean.Summary          `json:"cleaning,omitempty"`
	Profile     *Profile                `json:"profile,omitempty"`
}

// New returns an empty envelope with a fresh ID.
func New(kind Kind, source string, lang Language) *Envelope {
	if lang == "" {
		lang = DefaultLanguage
	}
	return &Envelope{
		ID:        uuid.New(),
		Kind:      kind,
		Source:    source,
		Language:  lang,
		CreatedAt: time.Now().UTC(),
	}
}

// Lines returns the verdict lines, normality first.
func (e *Envelope) Lines() []string {
	out := make([]string, 0, len(e.Normality)+len(e.Comparisons))
	for _, r := range e.Normality {
		out = append(out, NormalityLine(e.Language, r))
	}
	for _, c := range e.Comparisons {
		out = append(out, ComparisonLine(e.Language, c))
	}
	return out
}

// JSON renders the envelope as indented JSON.
func (e *Envelope) JSON() ([]byte, error) {
	b, err := utils.PrettyJSON(e)
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return b, nil
}

// Markdown renders a compact bracketed report.
func (e *Envelope) Markdown() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Report: %s (%s)\n", e.Kind, e.ID))
	if e.Source != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", e.Source))
	}
	if e.Profile != nil {
		b.WriteString("\n")
		b.WriteString(e.Profile.Markdown())
	}
	if len(e.Normality) > 0 {
		b.WriteString("\n[NORMALITY]\n")
		for _, r := range e.Normality {
			b.WriteString(fmt.Sprintf("- %s: W=%.4f, p=%.4g, n=%d, mean %.4g, std %.4g\n",
				r.Column, r.Statistic, r.PValue, r.N, r.Mean, r.StdDev))
			b.WriteString(fmt.Sprintf("  %s\n", NormalityLine(e.Language, r)))
		}
	}
	if len(e.Comparisons) > 0 {
		b.WriteString("\n[MANN-WHITNEY U]\n")
		for _, c := range e.Comparisons {
			b.WriteString(fmt.Sprintf("- %s: U=%.4g, p=%.4g, median control %.4g (n=%d), median test %.4g (n=%d)\n",
				c.Metric, c.U, c.PValue, c.MedianControl, c.NControl, c.MedianTest, c.NTest))
			b.WriteString(fmt.Sprintf("  %s\n", ComparisonLine(e.Language, c)))
		}
	}
	if s := e.Cleaning; s != nil {
		b.WriteString("\n[CLEANING]\n")
		if s.Lowercased {
			b.WriteString("- column names lower-cased\n")
		}
		if len(s.Dropped) > 0 {
			b.WriteString(fmt.Sprintf("- dropped colliding columns: %s\n", strings.Join(s.Dropped, ", ")))
		}
		if len(s.Abs) > 0 {
			b.WriteString(fmt.Sprintf("- absolute values: %s\n", strings.Join(s.Abs, ", ")))
		}
		for _, y := range s.Years {
			b.WriteString(fmt.Sprintf("- year %s: %d/%d valid, %d defaulted\n", y.Column, y.Valid(), y.Rows, len(y.Defaulted)))
			for _, re := range y.Invalid {
				b.WriteString(fmt.Sprintf("  • row %d value %s: %s\n", re.Row, re.Value, re.Reason))
			}
		}
		if len(s.Months) > 0 {
			b.WriteString(fmt.Sprintf("- months truncated: %s\n", strings.Join(s.Months, ", ")))
		}
	}
	return b.String()
}

// Write renders the envelope to w in the given format. Text writes one
// verdict line per result, or the profile sections when there are none.
func (e *Envelope) Write(w io.Writer, f Format) error {
	var out string
	switch f {
	case FormatJSON:
		b, err := e.JSON()
		if err != nil {
			return err
		}
		out = string(b) + "\n"
	case FormatMarkdown:
		out = e.Markdown()
	default:
		lines := e.Lines()
		switch {
		case len(lines) > 0:
			out = strings.Join(lines, "\n") + "\n"
		case e.Profile != nil:
			out = e.Profile.Markdown()
		}
	}
	_, err := io.WriteString(w, out)
	return err
}
