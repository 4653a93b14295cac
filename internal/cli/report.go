package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/HendryAvila/storykeeper/internal/knowledge"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	badStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func renderReference(r *knowledge.ReferenceCheck) string {
	var b strings.Builder
	verdict := okStyle.Render("CAN REFERENCE")
	if !r.CanReference {
		verdict = badStyle.Render("CANNOT REFERENCE")
	}
	fmt.Fprintf(&b, "%s  %q\n", verdict, r.KnowledgeItem)
	fmt.Fprintf(&b, "%s character %d at chapter %d\n", dimStyle.Render("for"), r.CharacterID, r.AtChapter)
	if r.State != "" {
		fmt.Fprintf(&b, "state: %s", r.State)
		if r.Confidence != "" {
			fmt.Fprintf(&b, " (%s)", r.Confidence)
		}
		if r.AsOf != nil {
			fmt.Fprintf(&b, " as of %s", r.AsOf)
		}
		b.WriteString("\n")
	}
	if r.Reason != "" {
		fmt.Fprintf(&b, "reason: %s\n", r.Reason)
	}
	if r.Limitation != "" {
		fmt.Fprintf(&b, "%s %s\n", warnStyle.Render("limitation:"), r.Limitation)
	}
	if r.DialogueRestriction != "" {
		fmt.Fprintf(&b, "dialogue: %s\n", r.DialogueRestriction)
	}
	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func renderValidation(r *knowledge.ValidationResult) string {
	var b strings.Builder
	if r.Valid {
		fmt.Fprintf(&b, "%s %s\n", okStyle.Render("VALID"), dimStyle.Render(string(r.ContentType)))
	} else {
		fmt.Fprintf(&b, "%s %s\n", badStyle.Render("INVALID"), dimStyle.Render(string(r.ContentType)))
	}
	writeFindings(&b, "Violations", badStyle, r.Violations)
	writeFindings(&b, "Warnings", warnStyle, r.Warnings)
	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func writeFindings(b *strings.Builder, title string, style lipgloss.Style, findings []knowledge.Finding) {
	if len(findings) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s\n", titleStyle.Render(title))
	for _, f := range findings {
		fmt.Fprintf(b, "  %s %q %s\n", style.Render(string(f.Severity)), f.KnowledgeItem, dimStyle.Render(f.Type))
		fmt.Fprintf(b, "    %s\n", f.Suggestion)
	}
}

func renderState(s *knowledge.EffectiveState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s character %d at %s\n", titleStyle.Render("Knowledge"), s.CharacterID, s.Position)
	if s.Len() == 0 {
		b.WriteString(dimStyle.Render("nothing recorded yet"))
		return boxStyle.Render(b.String())
	}
	writeBucket(&b, "Knows", okStyle, s.Confirmed)
	writeBucket(&b, "Suspects", warnStyle, s.Suspected)
	writeBucket(&b, "Doesn't know", badStyle, s.Unaware)
	writeBucket(&b, "Forgot", dimStyle, s.MemoryGaps)
	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func writeBucket(b *strings.Builder, title string, style lipgloss.Style, facts []knowledge.Fact) {
	if len(facts) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s\n", style.Render(title))
	for _, f := range facts {
		fmt.Fprintf(b, "  %s %s\n", f.KnowledgeItem, dimStyle.Render(f.StoryPosition.String()))
	}
}
