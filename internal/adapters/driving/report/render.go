package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/provenance-cli/internal/core/domain"
)

// excerptWidth bounds the excerpt printed under each match.
const excerptWidth = 100

// Render formats a detection result as a styled multi-line report.
func Render(r *domain.DetectionResult, s *Styles) string {
	if s == nil {
		s = DefaultStyles()
	}

	var b strings.Builder

	title := "Analysis"
	if r.Label != "" {
		title += ": " + r.Label
	}
	b.WriteString(s.Title.Render(title))
	b.WriteString("\n")

	rows := []string{
		row(s, "Plagiarism", plagiarismValue(r)),
		row(s, "AI", aiValue(r)),
		row(s, "Risk", s.Risk(r.RiskLevel).Render(strings.ToUpper(string(r.RiskLevel)))),
		row(s, "Confidence", string(r.Confidence)),
		row(s, "Backend", backendValue(r)),
	}
	b.WriteString(s.Box.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))
	b.WriteString("\n")

	if r.Degraded {
		b.WriteString(s.Warning.Render("No backend produced a usable score; the figures above are placeholders."))
		b.WriteString("\n")
	}

	if len(r.Matches) > 0 {
		b.WriteString("\n")
		b.WriteString(s.Title.Render("Matches"))
		b.WriteString("\n")
		for i, m := range r.Matches {
			label := m.SourceLabel
			if label == "" {
				label = m.SourceID
			}
			fmt.Fprintf(&b, "  [%d] %s  %.1f%%  %s\n", i+1, label, m.MatchedPercent, s.Muted.Render(string(m.Layer)))
			if m.Excerpt != "" {
				b.WriteString("      ")
				b.WriteString(s.Muted.Render(fmt.Sprintf("%q", clip(m.Excerpt, excerptWidth))))
				b.WriteString("\n")
			}
		}
	}

	if len(r.Attempts) > 1 || r.Degraded {
		b.WriteString("\n")
		b.WriteString(s.Title.Render("Attempts"))
		b.WriteString("\n")
		for _, a := range r.Attempts {
			line := fmt.Sprintf("  %-16s %-10s %s", a.Backend, a.Outcome, a.Elapsed.Round(time.Millisecond))
			if a.Error != "" {
				line += "  " + s.Muted.Render(a.Error)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n")
		for _, w := range r.Warnings {
			b.WriteString(s.Warning.Render("! " + w))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func row(s *Styles, label, value string) string {
	return s.Label.Render(label) + s.Value.Render(value)
}

func plagiarismValue(r *domain.DetectionResult) string {
	if !r.Measured.Has(domain.MeasurePlagiarism) {
		return "not measured"
	}
	sources := "sources"
	if r.SourcesFound == 1 {
		sources = "source"
	}
	return fmt.Sprintf("%.1f%% (%d %s)", r.PlagiarismPercent, r.SourcesFound, sources)
}

func aiValue(r *domain.DetectionResult) string {
	if !r.Measured.Has(domain.MeasureAI) {
		return "not measured"
	}
	return fmt.Sprintf("%.1f%% (%s confidence)", r.AIPercent, r.AIConfidence)
}

func backendValue(r *domain.DetectionResult) string {
	name := r.Backend
	if name == "" {
		name = "none"
	}
	return fmt.Sprintf("%s [%s] in %s", name, r.Method, r.Elapsed.Round(time.Millisecond))
}

// clip shortens s to at most width runes.
func clip(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
