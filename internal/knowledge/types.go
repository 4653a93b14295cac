// Package knowledge implements the character knowledge state engine.
//
// A character's knowledge is recorded as a ledger of facts, each pinned to a
// story position (book ordinal, chapter ordinal). The engine answers three
// questions over that ledger:
//   - what does the character know as of a chapter (Resolve)
//   - may the character reference one item there (CanReference)
//   - does a piece of scene content stay inside those boundaries (Validate)
//
// Storage and the series registry are ports (Ledger, Registry); this package
// holds no database code and performs no logging.
package knowledge

import "fmt"

// ─── Enums ───────────────────────────────────────────────────────────────────

// State describes a character's relationship to one knowledge item.
type State string

const (
	StateKnows               State = "knows"
	StateKnowsWithProtection State = "knows_with_protection"
	StateSuspects            State = "suspects"
	StateUnaware             State = "unaware"
	StateMemoryGap           State = "memory_gap"
)

// StateValues returns the enum values for tool definitions.
func StateValues() []string {
	return []string{
		string(StateKnows), string(StateKnowsWithProtection), string(StateSuspects),
		string(StateUnaware), string(StateMemoryGap),
	}
}

// Confirmed reports whether the state counts as knowing the item.
func (s State) Confirmed() bool {
	return s == StateKnows || s == StateKnowsWithProtection
}

// Restricted reports whether the item must never surface in content.
func (s State) Restricted() bool {
	return s == StateUnaware || s == StateMemoryGap
}

// ParseState validates a knowledge_state value.
func ParseState(s string) (State, error) {
	switch st := State(s); st {
	case StateKnows, StateKnowsWithProtection, StateSuspects, StateUnaware, StateMemoryGap:
		return st, nil
	case "":
		return "", invalidInput("knowledge_state", "is required")
	default:
		return "", invalidInput("knowledge_state", "%q is not one of: knows, knows_with_protection, suspects, unaware, memory_gap", s)
	}
}

// Confidence qualifies how sure a character is, independent of State.
type Confidence string

const (
	ConfidenceCertain   Confidence = "certain"
	ConfidenceProbable  Confidence = "probable"
	ConfidenceSuspected Confidence = "suspected"
)

// ConfidenceValues returns the enum values for tool definitions.
func ConfidenceValues() []string {
	return []string{string(ConfidenceCertain), string(ConfidenceProbable), string(ConfidenceSuspected)}
}

// ParseConfidence validates a confidence_level value. Empty is allowed and
// means "not stated".
func ParseConfidence(s string) (Confidence, error) {
	switch c := Confidence(s); c {
	case "", ConfidenceCertain, ConfidenceProbable, ConfidenceSuspected:
		return c, nil
	default:
		return "", invalidInput("confidence_level", "%q is not one of: certain, probable, suspected", s)
	}
}

// ContentType says what kind of narrative text is being validated.
type ContentType string

const (
	ContentDialogue        ContentType = "dialogue"
	ContentInternalThought ContentType = "internal_thought"
	ContentNarration       ContentType = "narration"
)

// ContentTypeValues returns the enum values for tool definitions.
func ContentTypeValues() []string {
	return []string{string(ContentDialogue), string(ContentInternalThought), string(ContentNarration)}
}

// ParseContentType validates a content_type value, defaulting to dialogue.
func ParseContentType(s string) (ContentType, error) {
	switch ct := ContentType(s); ct {
	case "":
		return ContentDialogue, nil
	case ContentDialogue, ContentInternalThought, ContentNarration:
		return ct, nil
	default:
		return "", invalidInput("content_type", "%q is not one of: dialogue, internal_thought, narration", s)
	}
}

// ─── Story position ──────────────────────────────────────────────────────────

// StoryPosition locates a chapter in the series' reading order. Ordering
// uses the ordinals only; the ids identify the registry rows.
type StoryPosition struct {
	BookID        int64 `json:"book_id"`
	ChapterID     int64 `json:"chapter_id"`
	BookNumber    int   `json:"book_number"`
	ChapterNumber int   `json:"chapter_number"`
}

// Compare returns -1, 0 or +1 as p sorts before, with, or after q.
func (p StoryPosition) Compare(q StoryPosition) int {
	switch {
	case p.BookNumber < q.BookNumber:
		return -1
	case p.BookNumber > q.BookNumber:
		return 1
	case p.ChapterNumber < q.ChapterNumber:
		return -1
	case p.ChapterNumber > q.ChapterNumber:
		return 1
	}
	return 0
}

// AtOrBefore reports whether p precedes or equals q.
func (p StoryPosition) AtOrBefore(q StoryPosition) bool {
	return p.Compare(q) <= 0
}

func (p StoryPosition) String() string {
	return fmt.Sprintf("book %d, chapter %d", p.BookNumber, p.ChapterNumber)
}

// ─── Ledger records ──────────────────────────────────────────────────────────

// Fact is one assertion about what a character knows as of a story position.
// At most one Fact exists per (character, knowledge item, position).
type Fact struct {
	ID          int64 `json:"id"`
	CharacterID int64 `json:"character_id"`
	StoryPosition
	KnowledgeItem          string     `json:"knowledge_item"`
	State                  State      `json:"knowledge_state"`
	Confidence             Confidence `json:"confidence_level,omitempty"`
	Source                 string     `json:"source,omitempty"`
	CanActOn               bool       `json:"can_act_on"`
	CanReferenceDirectly   bool       `json:"can_reference_directly"`
	CanReferenceIndirectly bool       `json:"can_reference_indirectly"`
	InternalThoughtOK      bool       `json:"internal_thought_ok"`
	Restrictions           string     `json:"restrictions,omitempty"`
	DialogueRestriction    string     `json:"dialogue_restriction,omitempty"`
	RevisionCount          int        `json:"revision_count"`
	CreatedAt              string     `json:"created_at,omitempty"`
	UpdatedAt              string     `json:"updated_at,omitempty"`
}

// SetFactParams is the input of set_character_knowledge_state. Nil flags
// default to true.
type SetFactParams struct {
	CharacterID            int64
	BookID                 int64
	ChapterID              int64
	KnowledgeItem          string
	State                  string
	Source                 string
	Confidence             string
	CanActOn               *bool
	CanReferenceDirectly   *bool
	CanReferenceIndirectly *bool
	InternalThoughtOK      *bool
	Restrictions           string
	DialogueRestriction    string
}

// SetResult is what SetKnowledgeState returns to transports.
type SetResult struct {
	Fact    Fact   `json:"knowledge_state"`
	Created bool   `json:"created"`
	Message string `json:"message"`
}

// ─── Derived views ───────────────────────────────────────────────────────────

// EffectiveState is a character's knowledge as of one position: the latest
// fact per item, partitioned by state.
type EffectiveState struct {
	CharacterID int64         `json:"character_id"`
	AtChapter   int64         `json:"at_chapter"`
	Position    StoryPosition `json:"position"`
	Confirmed   []Fact        `json:"confirmed_knowledge"`
	Suspected   []Fact        `json:"suspected_but_unconfirmed"`
	Unaware     []Fact        `json:"explicitly_doesnt_know"`
	MemoryGaps  []Fact        `json:"memory_gaps"`
}

// Lookup returns the effective fact for item, if one is tracked.
func (s *EffectiveState) Lookup(item string) (Fact, bool) {
	for _, bucket := range [][]Fact{s.Confirmed, s.Suspected, s.Unaware, s.MemoryGaps} {
		for _, f := range bucket {
			if f.KnowledgeItem == item {
				return f, true
			}
		}
	}
	return Fact{}, false
}

// Len returns the number of tracked items.
func (s *EffectiveState) Len() int {
	return len(s.Confirmed) + len(s.Suspected) + len(s.Unaware) + len(s.MemoryGaps)
}

// ReferenceCheck answers check_character_can_reference.
type ReferenceCheck struct {
	CharacterID         int64          `json:"character_id"`
	KnowledgeItem       string         `json:"knowledge_item"`
	AtChapter           int64          `json:"at_chapter"`
	CanReference        bool           `json:"can_reference"`
	Reason              string         `json:"reason,omitempty"`
	Limitation          string         `json:"limitation,omitempty"`
	InternalThoughtOK   bool           `json:"internal_thought_ok"`
	DialogueRestriction string         `json:"dialogue_restriction,omitempty"`
	State               State          `json:"knowledge_state,omitempty"`
	Confidence          Confidence     `json:"confidence_level,omitempty"`
	AsOf                *StoryPosition `json:"as_of,omitempty"`
}

// Severity ranks validator findings.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
)

// Finding types reported by the validator.
const (
	FindingReferencingUnknown    = "referencing_unknown_information"
	FindingInappropriateDialogue = "inappropriate_dialogue_reference"
	FindingDirectRestricted      = "direct_reference_to_restricted_knowledge"
)

// Finding is one violation or warning.
type Finding struct {
	KnowledgeItem string   `json:"knowledge_item"`
	Type          string   `json:"violation_type"`
	Severity      Severity `json:"severity"`
	Suggestion    string   `json:"suggestion"`
}

// ValidationResult is the outcome of validating scene content. Valid is
// false only when Violations is non-empty; warnings never flip it.
type ValidationResult struct {
	Valid       bool        `json:"valid"`
	ContentType ContentType `json:"content_type"`
	Violations  []Finding   `json:"violations"`
	Warnings    []Finding   `json:"warnings"`
}
