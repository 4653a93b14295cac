package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/storykeeper/internal/knowledge"
	"github.com/HendryAvila/storykeeper/internal/store"
)

// ─── Test helpers ────────────────────────────────────────────────────────────

// newTestStore creates a store.Store in a temp directory for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(store.Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// makeReq builds a mcp.CallToolRequest with the given arguments.
func makeReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// resultText extracts the text content from a tool result.
func resultText(r *mcp.CallToolResult) string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func call(t *testing.T, tool Tool, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	res, err := tool.Handle(context.Background(), makeReq(args))
	if err != nil {
		t.Fatalf("%s: unexpected Go error: %v", tool.Definition().Name, err)
	}
	return res
}

func decode(t *testing.T, r *mcp.CallToolResult, v any) {
	t.Helper()
	if r.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(r))
	}
	if err := json.Unmarshal([]byte(resultText(r)), v); err != nil {
		t.Fatalf("decoding %q: %v", resultText(r), err)
	}
}

// seeded holds ids created through the registry tools.
type seeded struct {
	series, book, character float64
	chapters                []float64
}

func seed(t *testing.T, s *store.Store) seeded {
	t.Helper()
	var sr store.Series
	decode(t, call(t, NewCreateSeriesTool(s), map[string]interface{}{"title": "Oz Mysteries"}), &sr)

	var b store.Book
	decode(t, call(t, NewCreateBookTool(s), map[string]interface{}{
		"series_id": float64(sr.ID), "title": "The Yellow Road", "book_number": float64(1),
	}), &b)

	var ch store.Character
	decode(t, call(t, NewCreateCharacterTool(s), map[string]interface{}{
		"series_id": float64(sr.ID), "name": "Dorothy",
	}), &ch)

	out := seeded{series: float64(sr.ID), book: float64(b.ID), character: float64(ch.ID)}
	for n := 1; n <= 10; n++ {
		var c store.Chapter
		decode(t, call(t, NewCreateChapterTool(s), map[string]interface{}{
			"book_id": float64(b.ID), "chapter_number": float64(n),
		}), &c)
		out.chapters = append(out.chapters, float64(c.ID))
	}
	return out
}

// ─── Definitions ─────────────────────────────────────────────────────────────

func TestDefinitions_RequiredParams(t *testing.T) {
	s := newTestStore(t)
	engine := knowledge.NewEngine(s, s)

	tests := []struct {
		tool     Tool
		name     string
		required []string
	}{
		{NewSetKnowledgeStateTool(engine), SetKnowledgeStateName,
			[]string{"character_id", "book_id", "chapter_id", "knowledge_item", "knowledge_state"}},
		{NewCanReferenceTool(engine), CanReferenceName, []string{"character_id", "knowledge_item", "at_chapter"}},
		{NewKnowledgeStateTool(engine), KnowledgeStateName, []string{"character_id", "chapter_id"}},
		{NewValidateSceneTool(engine), ValidateSceneName, []string{"character_id", "chapter_id", "scene_content"}},
		{NewKnowledgeHistoryTool(engine), KnowledgeHistoryName, []string{"character_id"}},
		{NewCreateBookTool(s), CreateBookName, []string{"series_id", "title", "book_number"}},
	}
	for _, tt := range tests {
		def := tt.tool.Definition()
		if def.Name != tt.name {
			t.Errorf("tool name = %q, want %q", def.Name, tt.name)
		}
		req := map[string]bool{}
		for _, r := range def.InputSchema.Required {
			req[r] = true
		}
		for _, r := range tt.required {
			if _, ok := def.InputSchema.Properties[r]; !ok {
				t.Errorf("%s: missing %q parameter", def.Name, r)
			}
			if !req[r] {
				t.Errorf("%s: %q should be required", def.Name, r)
			}
		}
	}
}

// ─── Knowledge tools ─────────────────────────────────────────────────────────

func TestKnowledgeTools_EndToEnd(t *testing.T) {
	s := newTestStore(t)
	ids := seed(t, s)
	engine := knowledge.NewEngine(s, s)

	set := NewSetKnowledgeStateTool(engine)
	var first knowledge.SetResult
	decode(t, call(t, set, map[string]interface{}{
		"character_id": ids.character, "book_id": ids.book, "chapter_id": ids.chapters[2],
		"knowledge_item": "killer's identity", "knowledge_state": "unaware",
	}), &first)
	if !first.Created || !strings.Contains(first.Message, "successfully created") {
		t.Errorf("first set = %+v", first)
	}
	decode(t, call(t, set, map[string]interface{}{
		"character_id": ids.character, "book_id": ids.book, "chapter_id": ids.chapters[8],
		"knowledge_item": "killer's identity", "knowledge_state": "knows", "confidence_level": "certain",
	}), &first)

	check := NewCanReferenceTool(engine)
	var early, late knowledge.ReferenceCheck
	decode(t, call(t, check, map[string]interface{}{
		"character_id": ids.character, "knowledge_item": "killer's identity", "at_chapter": ids.chapters[4],
	}), &early)
	decode(t, call(t, check, map[string]interface{}{
		"character_id": ids.character, "knowledge_item": "killer's identity", "at_chapter": ids.chapters[9],
	}), &late)
	if early.CanReference {
		t.Error("chapter 5: expected can_reference=false")
	}
	if !late.CanReference {
		t.Error("chapter 10: expected can_reference=true")
	}

	var state map[string]json.RawMessage
	decode(t, call(t, NewKnowledgeStateTool(engine), map[string]interface{}{
		"character_id": ids.character, "chapter_id": ids.chapters[4],
	}), &state)
	for _, key := range []string{"confirmed_knowledge", "suspected_but_unconfirmed", "explicitly_doesnt_know", "memory_gaps"} {
		if _, ok := state[key]; !ok {
			t.Errorf("state missing bucket %q", key)
		}
	}
	if string(state["confirmed_knowledge"]) != "[]" {
		t.Errorf("confirmed_knowledge at chapter 5 = %s, want []", state["confirmed_knowledge"])
	}

	var history []knowledge.Fact
	decode(t, call(t, NewKnowledgeHistoryTool(engine), map[string]interface{}{
		"character_id": ids.character,
	}), &history)
	if len(history) != 2 || history[0].ChapterNumber != 3 || history[1].ChapterNumber != 9 {
		t.Errorf("history = %+v", history)
	}
}

func TestValidateSceneTool_DefaultsToDialogue(t *testing.T) {
	s := newTestStore(t)
	ids := seed(t, s)
	engine := knowledge.NewEngine(s, s)

	call(t, NewSetKnowledgeStateTool(engine), map[string]interface{}{
		"character_id": ids.character, "book_id": ids.book, "chapter_id": ids.chapters[0],
		"knowledge_item": "the wizard's secret", "knowledge_state": "knows", "internal_thought_ok": false,
	})

	tool := NewValidateSceneTool(engine)
	var dialogue knowledge.ValidationResult
	decode(t, call(t, tool, map[string]interface{}{
		"character_id": ids.character, "chapter_id": ids.chapters[1],
		"scene_content": "\"I know the Wizard's Secret,\" Dorothy said.",
	}), &dialogue)
	if dialogue.Valid || dialogue.ContentType != knowledge.ContentDialogue {
		t.Fatalf("dialogue result = %+v", dialogue)
	}
	if dialogue.Violations[0].Severity != knowledge.SeverityHigh {
		t.Errorf("severity = %q, want high", dialogue.Violations[0].Severity)
	}

	var thought knowledge.ValidationResult
	decode(t, call(t, tool, map[string]interface{}{
		"character_id": ids.character, "chapter_id": ids.chapters[1],
		"scene_content": "She thought about the wizard's secret.", "content_type": "internal_thought",
	}), &thought)
	if !thought.Valid {
		t.Errorf("internal thought should be valid: %+v", thought)
	}
}

func TestKnowledgeTools_ErrorsAreToolErrors(t *testing.T) {
	s := newTestStore(t)
	ids := seed(t, s)
	engine := knowledge.NewEngine(s, s)

	tests := []struct {
		name string
		tool Tool
		args map[string]interface{}
		want string
	}{
		{"missing character", NewSetKnowledgeStateTool(engine), map[string]interface{}{
			"book_id": ids.book, "chapter_id": ids.chapters[0], "knowledge_item": "x", "knowledge_state": "knows",
		}, "'character_id' is required"},
		{"bad state", NewSetKnowledgeStateTool(engine), map[string]interface{}{
			"character_id": ids.character, "book_id": ids.book, "chapter_id": ids.chapters[0],
			"knowledge_item": "x", "knowledge_state": "guesses",
		}, "'knowledge_state'"},
		{"unknown character", NewKnowledgeStateTool(engine), map[string]interface{}{
			"character_id": float64(404), "chapter_id": ids.chapters[0],
		}, "character with ID 404 not found"},
		{"unknown chapter", NewCanReferenceTool(engine), map[string]interface{}{
			"character_id": ids.character, "knowledge_item": "x", "at_chapter": float64(9999),
		}, "chapter with ID 9999 not found"},
		{"empty scene", NewValidateSceneTool(engine), map[string]interface{}{
			"character_id": ids.character, "chapter_id": ids.chapters[0],
		}, "'scene_content' is required"},
		{"bad content type", NewValidateSceneTool(engine), map[string]interface{}{
			"character_id": ids.character, "chapter_id": ids.chapters[0],
			"scene_content": "text", "content_type": "song",
		}, "'content_type'"},
		{"fractional character id", NewKnowledgeStateTool(engine), map[string]interface{}{
			"character_id": float64(1.9), "chapter_id": ids.chapters[0],
		}, "'character_id' must be a whole number"},
		{"fractional chapter id", NewSetKnowledgeStateTool(engine), map[string]interface{}{
			"character_id": ids.character, "book_id": ids.book, "chapter_id": float64(2.5),
			"knowledge_item": "x", "knowledge_state": "knows",
		}, "'chapter_id' must be a whole number"},
		{"fractional series id", NewSeriesOutlineTool(s), map[string]interface{}{
			"series_id": float64(1.1),
		}, "'series_id' must be a whole number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := call(t, tt.tool, tt.args)
			if !res.IsError {
				t.Fatalf("expected tool error, got %s", resultText(res))
			}
			if !strings.Contains(resultText(res), tt.want) {
				t.Errorf("error = %q, want to contain %q", resultText(res), tt.want)
			}
		})
	}
}

// ─── Registry tools ──────────────────────────────────────────────────────────

func TestRegistryTools_Outline(t *testing.T) {
	s := newTestStore(t)
	ids := seed(t, s)

	var out store.SeriesOutline
	decode(t, call(t, NewSeriesOutlineTool(s), map[string]interface{}{"series_id": ids.series}), &out)
	if len(out.Books) != 1 || len(out.Books[0].Chapters) != 10 {
		t.Fatalf("outline = %+v", out)
	}
	if out.Books[0].Chapters[9].ChapterNumber != 10 {
		t.Errorf("last chapter number = %d", out.Books[0].Chapters[9].ChapterNumber)
	}

	var chars []store.Character
	decode(t, call(t, NewGetCharactersTool(s), map[string]interface{}{"series_id": ids.series}), &chars)
	if len(chars) != 1 || chars[0].Name != "Dorothy" {
		t.Errorf("characters = %+v", chars)
	}
}

func TestRegistryTools_Validation(t *testing.T) {
	s := newTestStore(t)
	ids := seed(t, s)

	tests := []struct {
		name string
		tool Tool
		args map[string]interface{}
		want string
	}{
		{"series title", NewCreateSeriesTool(s), map[string]interface{}{"title": "  "}, "'title' is required"},
		{"book number", NewCreateBookTool(s), map[string]interface{}{
			"series_id": ids.series, "title": "B", "book_number": float64(0),
		}, "'book_number'"},
		{"book unknown series", NewCreateBookTool(s), map[string]interface{}{
			"series_id": float64(77), "title": "B", "book_number": float64(2),
		}, "series with ID 77 not found"},
		{"chapter number", NewCreateChapterTool(s), map[string]interface{}{"book_id": ids.book}, "'chapter_number'"},
		{"character name", NewCreateCharacterTool(s), map[string]interface{}{"series_id": ids.series}, "'name' is required"},
		{"characters unknown series", NewGetCharactersTool(s), map[string]interface{}{"series_id": float64(77)}, "series with ID 77 not found"},
		{"duplicate chapter", NewCreateChapterTool(s), map[string]interface{}{
			"book_id": ids.book, "chapter_number": float64(1),
		}, "storage error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := call(t, tt.tool, tt.args)
			if !res.IsError {
				t.Fatalf("expected tool error, got %s", resultText(res))
			}
			if !strings.Contains(resultText(res), tt.want) {
				t.Errorf("error = %q, want to contain %q", resultText(res), tt.want)
			}
		})
	}
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func TestOptionalBool(t *testing.T) {
	req := makeReq(map[string]interface{}{"yes": true, "no": false, "text": "true"})
	if v := optionalBool(req, "yes"); v == nil || !*v {
		t.Errorf("yes = %v", v)
	}
	if v := optionalBool(req, "no"); v == nil || *v {
		t.Errorf("no = %v", v)
	}
	if v := optionalBool(req, "text"); v != nil {
		t.Errorf("non-bool should be nil, got %v", *v)
	}
	if v := optionalBool(req, "missing"); v != nil {
		t.Errorf("missing should be nil, got %v", *v)
	}
}
