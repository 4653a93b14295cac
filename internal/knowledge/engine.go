package knowledge

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Engine exposes the knowledge operations to transports. It is stateless;
// the ledger's atomic upsert is the only concurrency control.
type Engine struct {
	ledger    Ledger
	registry  Registry
	validator *Validator
	timeout   time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithScanner selects the content scanner used by ValidateScene.
func WithScanner(s ContentScanner) Option {
	return func(e *Engine) { e.validator = NewValidator(s) }
}

// WithTimeout bounds every operation. Zero leaves the caller's context alone.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// NewEngine creates an Engine over the given storage ports.
func NewEngine(ledger Ledger, registry Registry, opts ...Option) *Engine {
	e := &Engine{
		ledger:    ledger,
		registry:  registry,
		validator: NewValidator(nil),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, e.timeout)
}

// SetKnowledgeState records what a character knows at a chapter, replacing
// any fact already stored for the same item and position.
func (e *Engine) SetKnowledgeState(ctx context.Context, p SetFactParams) (*SetResult, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	fact, err := buildFact(p)
	if err != nil {
		return nil, err
	}

	for _, ref := range []struct {
		kind EntityKind
		id   int64
	}{
		{EntityCharacter, p.CharacterID},
		{EntityBook, p.BookID},
		{EntityChapter, p.ChapterID},
	} {
		if err := e.mustExist(ctx, ref.kind, ref.id); err != nil {
			return nil, err
		}
	}

	pos, err := e.registry.ChapterPosition(ctx, p.ChapterID)
	if err != nil {
		return nil, classify("resolve chapter", err)
	}
	if pos.BookID != p.BookID {
		return nil, invalidInput("chapter_id", "chapter %d belongs to book %d, not book %d", p.ChapterID, pos.BookID, p.BookID)
	}
	if err := e.sameSeries(ctx, p.CharacterID, p.BookID); err != nil {
		return nil, err
	}
	fact.StoryPosition = pos

	stored, created, err := e.ledger.SetFact(ctx, fact)
	if err != nil {
		return nil, classify("store knowledge fact", err)
	}

	verb := "updated"
	if created {
		verb = "created"
	}
	return &SetResult{
		Fact:    stored,
		Created: created,
		Message: fmt.Sprintf("Character knowledge state for '%s' successfully %s", stored.KnowledgeItem, verb),
	}, nil
}

// KnowledgeState resolves a character's knowledge as of a chapter.
func (e *Engine) KnowledgeState(ctx context.Context, characterID, chapterID int64) (*EffectiveState, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()
	return e.resolve(ctx, characterID, chapterID)
}

// CanReference checks one item ahead of writing content.
func (e *Engine) CanReference(ctx context.Context, characterID int64, item string, atChapter int64) (*ReferenceCheck, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	item = strings.TrimSpace(item)
	if item == "" {
		return nil, invalidInput("knowledge_item", "is required")
	}
	state, err := e.resolve(ctx, characterID, atChapter)
	if err != nil {
		return nil, err
	}
	return CheckReference(state, item), nil
}

// ValidateScene checks scene content against the character's knowledge at
// the chapter where the scene occurs.
func (e *Engine) ValidateScene(ctx context.Context, characterID, chapterID int64, content string, ct ContentType) (*ValidationResult, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	if strings.TrimSpace(content) == "" {
		return nil, invalidInput("scene_content", "is required")
	}
	if ct == "" {
		ct = ContentDialogue
	}
	if _, err := ParseContentType(string(ct)); err != nil {
		return nil, err
	}
	state, err := e.resolve(ctx, characterID, chapterID)
	if err != nil {
		return nil, err
	}
	return e.validator.Validate(state, content, ct), nil
}

// History returns the character's full ledger history, optionally for a
// single item.
func (e *Engine) History(ctx context.Context, characterID int64, item string) ([]Fact, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	if characterID <= 0 {
		return nil, invalidInput("character_id", "is required")
	}
	if err := e.mustExist(ctx, EntityCharacter, characterID); err != nil {
		return nil, err
	}
	facts, err := e.ledger.History(ctx, characterID, strings.TrimSpace(item))
	if err != nil {
		return nil, classify("load knowledge history", err)
	}
	if facts == nil {
		facts = []Fact{}
	}
	return facts, nil
}

func (e *Engine) resolve(ctx context.Context, characterID, chapterID int64) (*EffectiveState, error) {
	if characterID <= 0 {
		return nil, invalidInput("character_id", "is required")
	}
	if chapterID <= 0 {
		return nil, invalidInput("chapter_id", "is required")
	}
	if err := e.mustExist(ctx, EntityCharacter, characterID); err != nil {
		return nil, err
	}
	pos, err := e.registry.ChapterPosition(ctx, chapterID)
	if err != nil {
		return nil, classify("resolve chapter", err)
	}
	facts, err := e.ledger.FactsForCharacter(ctx, characterID, pos)
	if err != nil {
		return nil, classify("load knowledge facts", err)
	}
	return Resolve(characterID, pos, facts), nil
}

// sameSeries rejects a fact that places a character in another series' book.
func (e *Engine) sameSeries(ctx context.Context, characterID, bookID int64) error {
	charSeries, err := e.registry.SeriesOf(ctx, EntityCharacter, characterID)
	if err != nil {
		return classify("resolve character series", err)
	}
	bookSeries, err := e.registry.SeriesOf(ctx, EntityBook, bookID)
	if err != nil {
		return classify("resolve book series", err)
	}
	if charSeries != bookSeries {
		return invalidInput("book_id", "book %d belongs to series %d, but character %d belongs to series %d",
			bookID, bookSeries, characterID, charSeries)
	}
	return nil
}

func (e *Engine) mustExist(ctx context.Context, kind EntityKind, id int64) error {
	ok, err := e.registry.Exists(ctx, kind, id)
	if err != nil {
		return classify(fmt.Sprintf("check %s exists", kind), err)
	}
	if !ok {
		return NotFound(kind, id)
	}
	return nil
}

// buildFact validates the request and applies flag defaults. Position
// fields are filled in by the caller.
func buildFact(p SetFactParams) (Fact, error) {
	if p.CharacterID <= 0 {
		return Fact{}, invalidInput("character_id", "is required")
	}
	if p.BookID <= 0 {
		return Fact{}, invalidInput("book_id", "is required")
	}
	if p.ChapterID <= 0 {
		return Fact{}, invalidInput("chapter_id", "is required")
	}
	item := strings.TrimSpace(p.KnowledgeItem)
	if item == "" {
		return Fact{}, invalidInput("knowledge_item", "is required")
	}
	state, err := ParseState(p.State)
	if err != nil {
		return Fact{}, err
	}
	confidence, err := ParseConfidence(p.Confidence)
	if err != nil {
		return Fact{}, err
	}

	return Fact{
		CharacterID:            p.CharacterID,
		KnowledgeItem:          item,
		State:                  state,
		Confidence:             confidence,
		Source:                 p.Source,
		CanActOn:               flag(p.CanActOn),
		CanReferenceDirectly:   flag(p.CanReferenceDirectly),
		CanReferenceIndirectly: flag(p.CanReferenceIndirectly),
		InternalThoughtOK:      flag(p.InternalThoughtOK),
		Restrictions:           p.Restrictions,
		DialogueRestriction:    p.DialogueRestriction,
	}, nil
}

func flag(b *bool) bool {
	if b == nil {
		return true
	}
	return *b
}
