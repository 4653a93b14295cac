package knowledge

import "context"

// Ledger is durable storage for knowledge facts.
type Ledger interface {
	// SetFact inserts the fact, or overwrites every field of the existing
	// fact with the same (character, item, book, chapter). created is false
	// on overwrite.
	SetFact(ctx context.Context, f Fact) (stored Fact, created bool, err error)

	// FactsForCharacter returns the character's facts positioned at or before
	// at, ordered by position ascending and then by insertion order.
	FactsForCharacter(ctx context.Context, characterID int64, at StoryPosition) ([]Fact, error)

	// History returns every fact for the character, optionally limited to
	// one item, in the same order as FactsForCharacter.
	History(ctx context.Context, characterID int64, item string) ([]Fact, error)
}

// Registry answers existence and position questions about the series.
type Registry interface {
	Exists(ctx context.Context, kind EntityKind, id int64) (bool, error)

	// ChapterPosition resolves a chapter id to its story position. A missing
	// chapter yields a *NotFoundError.
	ChapterPosition(ctx context.Context, chapterID int64) (StoryPosition, error)

	// SeriesOf returns the series an entity belongs to.
	SeriesOf(ctx context.Context, kind EntityKind, id int64) (int64, error)
}
