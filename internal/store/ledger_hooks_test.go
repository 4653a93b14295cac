package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/HendryAvila/storykeeper/internal/knowledge"
)

func seedPosition(t *testing.T, s *Store) (characterID int64, pos knowledge.StoryPosition) {
	t.Helper()
	ctx := context.Background()
	sr, err := s.CreateSeries(ctx, "Hooks", "")
	if err != nil {
		t.Fatalf("CreateSeries: %v", err)
	}
	ch, err := s.CreateCharacter(ctx, sr.ID, "Ada", "")
	if err != nil {
		t.Fatalf("CreateCharacter: %v", err)
	}
	b, err := s.CreateBook(ctx, sr.ID, "One", 1)
	if err != nil {
		t.Fatalf("CreateBook: %v", err)
	}
	c, err := s.CreateChapter(ctx, b.ID, 1, "")
	if err != nil {
		t.Fatalf("CreateChapter: %v", err)
	}
	pos, err = s.ChapterPosition(ctx, c.ID)
	if err != nil {
		t.Fatalf("ChapterPosition: %v", err)
	}
	return ch.ID, pos
}

func TestSetFact_CommitFailureLeavesLedgerUnchanged(t *testing.T) {
	s, err := New(Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	characterID, pos := seedPosition(t, s)
	fact := knowledge.Fact{
		CharacterID:   characterID,
		StoryPosition: pos,
		KnowledgeItem: "the vault code",
		State:         knowledge.StateKnows,
	}

	s.hooks.commit = func(tx *sql.Tx) error {
		_ = tx.Rollback()
		return errors.New("disk full")
	}
	_, _, err = s.SetFact(context.Background(), fact)
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected commit error, got %v", err)
	}

	facts, err := s.History(context.Background(), characterID, "")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(facts) != 0 {
		t.Fatalf("ledger changed after failed commit: %+v", facts)
	}

	s.hooks = defaultStoreHooks()
	if _, created, err := s.SetFact(context.Background(), fact); err != nil || !created {
		t.Fatalf("SetFact after recovery: created=%v err=%v", created, err)
	}
}

func TestSetFact_BeginFailure(t *testing.T) {
	s, err := New(Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	s.hooks.beginTx = func(context.Context, *sql.DB) (*sql.Tx, error) {
		return nil, errors.New("locked")
	}
	_, _, err = s.SetFact(context.Background(), knowledge.Fact{CharacterID: 1, KnowledgeItem: "x", State: knowledge.StateKnows})
	if err == nil || !strings.Contains(err.Error(), "begin tx") {
		t.Fatalf("expected begin error, got %v", err)
	}
}

func TestNew_OpenFailure(t *testing.T) {
	orig := openDB
	t.Cleanup(func() { openDB = orig })
	openDB = func(string, string) (*sql.DB, error) {
		return nil, errors.New("boom")
	}

	if _, err := New(Config{DataDir: t.TempDir()}); err == nil || !strings.Contains(err.Error(), "open database") {
		t.Fatalf("expected open error, got %v", err)
	}
}
