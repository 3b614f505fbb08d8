// Package observability provides formatted output utilities for the
// interactive CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/interview-coach/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for the interactive session.
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

// PrintGapAnalysis outputs the prioritized skill gaps before the session starts.
func (p *Printer) PrintGapAnalysis(gaps []types.GapEntry) {
	if len(gaps) == 0 {
		return
	}

	var sb strings.Builder

	missing := 0
	for _, g := range gaps {
		if !g.CandidateHasSkill {
			missing++
		}
	}
	sb.WriteString(fmt.Sprintf("Required skills: %d  missing: %d\n\n", len(gaps), missing))

	count := min(len(gaps), maxItemsToShow)
	for i := 0; i < count; i++ {
		g := gaps[i]
		marker := "✗"
		if g.CandidateHasSkill {
			marker = "✓"
		}
		sb.WriteString(fmt.Sprintf("%s %s", marker, g.Skill.CanonicalName))
		if g.Importance == types.ImportanceMustHave {
			sb.WriteString(" (must have)")
		}
		if !g.CandidateHasSkill {
			sb.WriteString(fmt.Sprintf("  priority %.1f", g.PriorityScore))
		}
		sb.WriteString("\n")
	}
	if len(gaps) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more\n", len(gaps)-maxItemsToShow))
	}

	p.printBox("SKILL GAP ANALYSIS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintQuestion outputs the question awaiting an answer.
func (p *Printer) PrintQuestion(number, total int, q *types.Question) {
	if q == nil {
		return
	}

	title := fmt.Sprintf("QUESTION %d/%d", number, total)
	if q.FollowUp {
		title += " (follow-up)"
	}

	var sb strings.Builder
	sb.WriteString(wrap(q.Text, boxWidth-4))
	if q.TargetSkill != "" {
		sb.WriteString(fmt.Sprintf("\n\nTarget skill: %s", q.TargetSkill))
	}

	p.printBox(title, sb.String())
}

// PrintEvaluation outputs the critique of the latest answer.
func (p *Printer) PrintEvaluation(ev *types.Evaluation) {
	if ev == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Score: %.0f/100\n", ev.Score*100))

	if len(ev.Strengths) > 0 {
		sb.WriteString("\nStrengths:\n")
		count := min(len(ev.Strengths), 3)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  ✓ %s\n", ev.Strengths[i]))
		}
	}
	if len(ev.Weaknesses) > 0 {
		sb.WriteString("\nAreas to improve:\n")
		count := min(len(ev.Weaknesses), 3)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  ⚠ %s\n", ev.Weaknesses[i]))
		}
	}
	if ev.Feedback != "" {
		sb.WriteString("\n")
		sb.WriteString(wrap(ev.Feedback, boxWidth-4))
	}

	p.printBox("ANSWER EVALUATION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSummary outputs the final session report.
func (p *Printer) PrintSummary(summary *types.SessionSummary) {
	if summary == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Interview type:  %s\n", summary.Type))
	sb.WriteString(fmt.Sprintf("Questions asked: %d\n", summary.QuestionCount))
	sb.WriteString(fmt.Sprintf("Overall score:   %.0f/100\n", summary.MeanScore*100))

	if len(summary.WeakestSkills) > 0 {
		sb.WriteString("\nWeakest areas:\n")
		count := min(len(summary.WeakestSkills), maxItemsToShow)
		for i := 0; i < count; i++ {
			ws := summary.WeakestSkills[i]
			sb.WriteString(fmt.Sprintf("  • %s  %.0f/100 over %d question(s)\n", ws.Skill, ws.MeanScore*100, ws.Questions))
		}
	}

	p.printBox("SESSION SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRecommendations outputs the ranked learning resources.
func (p *Printer) PrintRecommendations(recs []types.Recommendation) {
	if len(recs) == 0 {
		return
	}

	var sb strings.Builder
	count := min(len(recs), maxItemsToShow)
	for i := 0; i < count; i++ {
		rec := recs[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", rec.Rank, rec.Title))
		if rec.RelatedSkill != "" {
			sb.WriteString(fmt.Sprintf("    Skill: %s\n", rec.RelatedSkill))
		}
		sb.WriteString(fmt.Sprintf("    %s\n", rec.Resource))
		if i < count-1 {
			sb.WriteString("\n")
		}
	}
	if len(recs) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more resources", len(recs)-maxItemsToShow))
	}

	p.printBox("RECOMMENDED RESOURCES", sb.String())
}

// wrap breaks text into lines no longer than width.
func wrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	var sb strings.Builder
	lineLen := 0
	for i, word := range words {
		if lineLen > 0 && lineLen+1+len(word) > width {
			sb.WriteString("\n")
			lineLen = 0
		} else if i > 0 {
			sb.WriteString(" ")
			lineLen++
		}
		sb.WriteString(word)
		lineLen += len(word)
	}
	return sb.String()
}
