package knowledge

import "fmt"

// Validator checks narrative content against a resolved knowledge state.
type Validator struct {
	scanner ContentScanner
}

// NewValidator creates a Validator. A nil scanner selects SubstringScanner.
func NewValidator(scanner ContentScanner) *Validator {
	if scanner == nil {
		scanner = SubstringScanner{}
	}
	return &Validator{scanner: scanner}
}

// Validate scans content once per restricted item of state. Only tracked
// items are considered; an unconstrained confirmed item is never flagged.
func (v *Validator) Validate(state *EffectiveState, content string, ct ContentType) *ValidationResult {
	result := &ValidationResult{
		Valid:       true,
		ContentType: ct,
		Violations:  []Finding{},
		Warnings:    []Finding{},
	}

	for _, f := range candidates(state, ct) {
		if !v.scanner.ContainsItem(content, f.KnowledgeItem) {
			continue
		}
		switch {
		case f.State.Restricted():
			result.Violations = append(result.Violations, Finding{
				KnowledgeItem: f.KnowledgeItem,
				Type:          FindingReferencingUnknown,
				Severity:      SeverityCritical,
				Suggestion:    fmt.Sprintf("Character does not know about '%s' at this point", f.KnowledgeItem),
			})
		case ct == ContentDialogue && !f.InternalThoughtOK:
			result.Violations = append(result.Violations, Finding{
				KnowledgeItem: f.KnowledgeItem,
				Type:          FindingInappropriateDialogue,
				Severity:      SeverityHigh,
				Suggestion:    fmt.Sprintf("Character cannot discuss '%s' in dialogue, only in thoughts", f.KnowledgeItem),
			})
		case !f.CanReferenceDirectly:
			result.Warnings = append(result.Warnings, Finding{
				KnowledgeItem: f.KnowledgeItem,
				Type:          FindingDirectRestricted,
				Severity:      SeverityMedium,
				Suggestion:    fmt.Sprintf("Character should be more vague when referencing '%s'", f.KnowledgeItem),
			})
		}
	}

	result.Valid = len(result.Violations) == 0
	return result
}

// candidates lists the facts worth scanning for, in reporting order:
// unaware, memory gaps, constrained confirmed items, uncertain suspicions.
func candidates(state *EffectiveState, ct ContentType) []Fact {
	out := make([]Fact, 0, state.Len())
	out = append(out, state.Unaware...)
	out = append(out, state.MemoryGaps...)
	for _, f := range state.Confirmed {
		if !f.CanReferenceDirectly || (ct == ContentDialogue && !f.InternalThoughtOK) {
			out = append(out, f)
		}
	}
	for _, f := range state.Suspected {
		if f.Confidence != ConfidenceCertain {
			out = append(out, f)
		}
	}
	return out
}

// CheckReference answers whether the character may reference item given the
// resolved state.
func CheckReference(state *EffectiveState, item string) *ReferenceCheck {
	check := &ReferenceCheck{
		CharacterID:   state.CharacterID,
		KnowledgeItem: item,
		AtChapter:     state.AtChapter,
	}

	f, ok := state.Lookup(item)
	if !ok {
		check.Reason = "Character does not have this knowledge at this point in the story"
		check.DialogueRestriction = "cannot_reference_at_all"
		return check
	}

	knows := f.State.Confirmed()
	pos := f.StoryPosition
	check.CanReference = knows && (f.CanReferenceDirectly || f.CanReferenceIndirectly)
	check.Limitation = f.Restrictions
	check.InternalThoughtOK = f.InternalThoughtOK
	check.DialogueRestriction = f.DialogueRestriction
	check.State = f.State
	check.Confidence = f.Confidence
	check.AsOf = &pos

	if !knows && check.DialogueRestriction == "" {
		check.DialogueRestriction = "cannot_reference"
	}
	switch {
	case !knows:
		check.Reason = fmt.Sprintf("Character's knowledge state is '%s' as of %s", f.State, pos)
	case !check.CanReference:
		check.Reason = "Character knows this but may not reference it directly or indirectly"
	}
	return check
}
