// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/career-planner/internal/planner"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintCompatibility outputs the headline score, band, and reasons for the
// top candidate.
func (p *Printer) PrintCompatibility(report *planner.Report) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Score:  %d/100 (%s)\n", report.Compatibility.Score, report.Compatibility.Band))
	if report.Bottleneck != "" {
		sb.WriteString(fmt.Sprintf("Focus:  %s\n", report.Bottleneck))
	}

	if len(report.Compatibility.Reasons) > 0 {
		sb.WriteString("\nWhy:\n")
		count := min(len(report.Compatibility.Reasons), 3)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", report.Compatibility.Reasons[i]))
		}
		if len(report.Compatibility.Reasons) > 3 {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(report.Compatibility.Reasons)-3))
		}
	}

	p.printBox("COMPATIBILITY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSuggestedCareers outputs the ranked occupation candidates with their
// score breakdowns.
func (p *Printer) PrintSuggestedCareers(matches []planner.RankedMatch) {
	if len(matches) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Candidates ranked: %d\n\n", len(matches)))

	count := min(len(matches), maxItemsToShow)
	for i := 0; i < count; i++ {
		m := matches[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, m.Title))
		sb.WriteString(fmt.Sprintf("    Score: %d (%s)", m.Score, m.Band))
		if m.Regulated {
			sb.WriteString(" [regulated]")
		}
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("    Skills %.1f  Exp %.1f  Edu %.1f  Cert %.1f  Time %.1f\n",
			m.Breakdown.SkillOverlap, m.Breakdown.ExperienceSimilarity,
			m.Breakdown.EducationAlignment, m.Breakdown.CertificationGap,
			m.Breakdown.TimelineFeasibility))
		if len(m.MatchedSkills) > 0 {
			skills := strings.Join(m.MatchedSkills, ", ")
			if len(skills) > 40 {
				skills = skills[:37] + "..."
			}
			sb.WriteString(fmt.Sprintf("    Matched: %s\n", skills))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(matches) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more candidates", len(matches)-maxItemsToShow))
	}

	p.printBox("SUGGESTED CAREERS", sb.String())
}

// PrintSkillGaps outputs the actionable gaps for the top candidate.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintSkillGaps(gaps []planner.SkillGap) {
	if len(gaps) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NO SKILL GAPS FOUND")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d gaps:\n\n", len(gaps)))

	for i, g := range gaps {
		label := g.Label
		if len(label) > 45 {
			label = label[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("⚠ %s\n", label))
		sb.WriteString(fmt.Sprintf("  %s, seen in %d postings\n", g.Type, g.Frequency))
		if i < len(gaps)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("SKILL GAPS", sb.String())
}

// PrintRoadmap outputs the phased preparation plan.
func (p *Printer) PrintRoadmap(roadmap planner.Roadmap) {
	total := len(roadmap.Immediate) + len(roadmap.ShortTerm) + len(roadmap.MediumTerm)
	if total == 0 {
		return
	}

	var sb strings.Builder
	writePhase := func(name string, items []string) {
		if len(items) == 0 {
			return
		}
		sb.WriteString(fmt.Sprintf("%s:\n", name))
		count := min(len(items), 3)
		for i := 0; i < count; i++ {
			item := items[i]
			if len(item) > 50 {
				item = item[:47] + "..."
			}
			sb.WriteString(fmt.Sprintf("  • %s\n", item))
		}
		if len(items) > 3 {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-3))
		}
		sb.WriteString("\n")
	}

	writePhase("Immediate", roadmap.Immediate)
	writePhase("Short term", roadmap.ShortTerm)
	writePhase("Medium term", roadmap.MediumTerm)

	p.printBox("ROADMAP", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintEvidence outputs the transparency block describing where the
// requirement evidence came from.
func (p *Printer) PrintEvidence(ev planner.MarketEvidence, sources []string) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Postings analyzed: %d\n", ev.PostingsCount))

	flags := []string{}
	if ev.UsedAdzuna {
		flags = append(flags, "live market")
	}
	if ev.UsedCache {
		flags = append(flags, "cached")
	}
	if ev.BaselineOnly {
		flags = append(flags, "baseline only")
	}
	if ev.Partial {
		flags = append(flags, "partial fetch")
	}
	if len(flags) > 0 {
		sb.WriteString(fmt.Sprintf("Mode:              %s\n", strings.Join(flags, ", ")))
	}
	if len(sources) > 0 {
		sb.WriteString(fmt.Sprintf("Sources:           %s\n", strings.Join(sources, ", ")))
	}

	p.printBox("MARKET EVIDENCE", strings.TrimSuffix(sb.String(), "\n"))
}
