package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/HendryAvila/storykeeper/internal/knowledge"
)

const factColumns = `
	k.id, k.character_id, k.book_id, k.chapter_id, b.book_number, c.chapter_number,
	k.knowledge_item, k.knowledge_state, k.confidence_level, k.source,
	k.can_act_on, k.can_reference_directly, k.can_reference_indirectly, k.internal_thought_ok,
	k.restrictions, k.dialogue_restriction, k.revision_count, k.created_at, k.updated_at`

const factFrom = `
	FROM character_knowledge_states k
	JOIN books b    ON b.id = k.book_id
	JOIN chapters c ON c.id = k.chapter_id`

// SetFact upserts a knowledge fact keyed by (character, item, book, chapter).
// The write and the read-back share one transaction, so a failed call
// leaves the ledger untouched.
func (s *Store) SetFact(ctx context.Context, f knowledge.Fact) (knowledge.Fact, bool, error) {
	tx, err := s.beginTxHook(ctx)
	if err != nil {
		return knowledge.Fact{}, false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var (
		id       int64
		revision int
	)
	err = tx.QueryRowContext(ctx,
		`INSERT INTO character_knowledge_states (
			character_id, book_id, chapter_id, knowledge_item, knowledge_state,
			source, confidence_level, can_act_on, can_reference_directly,
			can_reference_indirectly, internal_thought_ok, restrictions, dialogue_restriction
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (character_id, knowledge_item, book_id, chapter_id) DO UPDATE SET
			knowledge_state          = excluded.knowledge_state,
			source                   = excluded.source,
			confidence_level         = excluded.confidence_level,
			can_act_on               = excluded.can_act_on,
			can_reference_directly   = excluded.can_reference_directly,
			can_reference_indirectly = excluded.can_reference_indirectly,
			internal_thought_ok      = excluded.internal_thought_ok,
			restrictions             = excluded.restrictions,
			dialogue_restriction     = excluded.dialogue_restriction,
			revision_count           = character_knowledge_states.revision_count + 1,
			updated_at               = datetime('now')
		RETURNING id, revision_count`,
		f.CharacterID, f.BookID, f.ChapterID, f.KnowledgeItem, string(f.State),
		nullableString(f.Source), nullableString(string(f.Confidence)),
		f.CanActOn, f.CanReferenceDirectly, f.CanReferenceIndirectly, f.InternalThoughtOK,
		nullableString(f.Restrictions), nullableString(f.DialogueRestriction),
	).Scan(&id, &revision)
	if err != nil {
		return knowledge.Fact{}, false, fmt.Errorf("upsert knowledge fact: %w", err)
	}

	rows, err := tx.QueryContext(ctx, `SELECT `+factColumns+factFrom+` WHERE k.id = ?`, id)
	if err != nil {
		return knowledge.Fact{}, false, fmt.Errorf("read back knowledge fact: %w", err)
	}
	facts, err := scanFacts(rows)
	if err != nil {
		return knowledge.Fact{}, false, fmt.Errorf("read back knowledge fact: %w", err)
	}
	if len(facts) != 1 {
		return knowledge.Fact{}, false, fmt.Errorf("read back knowledge fact %d: got %d rows", id, len(facts))
	}

	if err := s.commitHook(tx); err != nil {
		return knowledge.Fact{}, false, fmt.Errorf("commit: %w", err)
	}
	return facts[0], revision == 1, nil
}

// FactsForCharacter returns the character's facts at or before position at,
// ordered by book number, chapter number, then insertion order.
func (s *Store) FactsForCharacter(ctx context.Context, characterID int64, at knowledge.StoryPosition) ([]knowledge.Fact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+factColumns+factFrom+`
		 WHERE k.character_id = ?
		   AND (b.book_number < ? OR (b.book_number = ? AND c.chapter_number <= ?))
		 ORDER BY b.book_number, c.chapter_number, k.id`,
		characterID, at.BookNumber, at.BookNumber, at.ChapterNumber,
	)
	if err != nil {
		return nil, err
	}
	return scanFacts(rows)
}

// History returns every fact for the character in story order. A non-empty
// item limits the result to that knowledge item.
func (s *Store) History(ctx context.Context, characterID int64, item string) ([]knowledge.Fact, error) {
	query := `SELECT ` + factColumns + factFrom + ` WHERE k.character_id = ?`
	args := []any{characterID}
	if item != "" {
		query += " AND k.knowledge_item = ?"
		args = append(args, item)
	}
	query += " ORDER BY b.book_number, c.chapter_number, k.id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanFacts(rows)
}

// scanFacts reads and closes rows selected with factColumns.
func scanFacts(rows *sql.Rows) ([]knowledge.Fact, error) {
	defer func() { _ = rows.Close() }()

	var out []knowledge.Fact
	for rows.Next() {
		var (
			f                            knowledge.Fact
			state                        string
			confidence, source           sql.NullString
			restrictions, dialogueRestrn sql.NullString
		)
		if err := rows.Scan(
			&f.ID, &f.CharacterID, &f.BookID, &f.ChapterID, &f.BookNumber, &f.ChapterNumber,
			&f.KnowledgeItem, &state, &confidence, &source,
			&f.CanActOn, &f.CanReferenceDirectly, &f.CanReferenceIndirectly, &f.InternalThoughtOK,
			&restrictions, &dialogueRestrn, &f.RevisionCount, &f.CreatedAt, &f.UpdatedAt,
		); err != nil {
			return nil, err
		}
		f.State = knowledge.State(state)
		f.Confidence = knowledge.Confidence(confidence.String)
		f.Source = source.String
		f.Restrictions = restrictions.String
		f.DialogueRestriction = dialogueRestrn.String
		out = append(out, f)
	}
	return out, rows.Err()
}

var (
	_ knowledge.Ledger   = (*Store)(nil)
	_ knowledge.Registry = (*Store)(nil)
)
